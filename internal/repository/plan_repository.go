package repository

import (
	"levelup_backend/internal/model"

	"gorm.io/gorm"
)

type PlanRepository struct {
	DB *gorm.DB
}

func NewPlanRepository(db *gorm.DB) *PlanRepository {
	return &PlanRepository{DB: db}
}

func (r *PlanRepository) Create(plan *model.GeneratedPlan) error {
	return r.DB.Create(plan).Error
}

func (r *PlanRepository) ListByUser(userID uint, limit int) ([]model.GeneratedPlan, error) {
	var plans []model.GeneratedPlan
	err := r.DB.Where("user_id = ?", userID).Order("created_at desc").Limit(limit).Find(&plans).Error
	return plans, err
}
