package repository

import (
	"levelup_backend/internal/model"

	"gorm.io/gorm"
)

type ContentRepository struct {
	DB *gorm.DB
}

func NewContentRepository(db *gorm.DB) *ContentRepository {
	return &ContentRepository{DB: db}
}

func (r *ContentRepository) ListActivePaths() ([]model.LearningPath, error) {
	var paths []model.LearningPath
	err := r.DB.Where("is_active = ?", true).Order("created_at").Find(&paths).Error
	return paths, err
}

func (r *ContentRepository) FindPathByID(id uint) (*model.LearningPath, error) {
	var path model.LearningPath
	err := r.DB.Preload("Modules", func(db *gorm.DB) *gorm.DB {
		return db.Order("sort_order")
	}).Preload("Modules.Lessons", func(db *gorm.DB) *gorm.DB {
		return db.Order("sort_order")
	}).First(&path, id).Error
	return &path, err
}

func (r *ContentRepository) FindLessonByID(id uint) (*model.Lesson, error) {
	var lesson model.Lesson
	err := r.DB.First(&lesson, id).Error
	return &lesson, err
}

func (r *ContentRepository) CountLessons() (int64, error) {
	var count int64
	err := r.DB.Model(&model.Lesson{}).Count(&count).Error
	return count, err
}

func (r *ContentRepository) CreatePath(path *model.LearningPath) error {
	return r.DB.Create(path).Error
}

func (r *ContentRepository) UpdatePath(path *model.LearningPath) error {
	return r.DB.Save(path).Error
}

func (r *ContentRepository) CreateModule(module *model.LearningModule) error {
	return r.DB.Create(module).Error
}

func (r *ContentRepository) CreateLesson(lesson *model.Lesson) error {
	return r.DB.Create(lesson).Error
}

func (r *ContentRepository) UpdateLesson(lesson *model.Lesson) error {
	return r.DB.Save(lesson).Error
}
