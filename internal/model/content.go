package model

import "gorm.io/datatypes"

type Difficulty string

const (
	Beginner     Difficulty = "beginner"
	Intermediate Difficulty = "intermediate"
	Advanced     Difficulty = "advanced"
)

// LearningPath 学习路径（课程），包含若干模块和一棵技能树
type LearningPath struct {
	BaseModel
	Title             string     `gorm:"size:200;not null" json:"title"`
	Description       string     `gorm:"type:text" json:"description"`
	Category          string     `gorm:"size:100" json:"category"`
	DifficultyLevel   Difficulty `gorm:"type:enum('beginner','intermediate','advanced');default:'beginner'" json:"difficultyLevel"`
	EstimatedDuration string     `gorm:"size:50" json:"estimatedDuration"`
	IsActive          bool       `gorm:"default:true" json:"isActive"`

	Modules []LearningModule `gorm:"foreignKey:PathID" json:"modules,omitempty"`
}

func (LearningPath) TableName() string {
	return "learning_paths"
}

type LearningModule struct {
	BaseModel
	PathID      uint   `gorm:"index;not null" json:"pathId"`
	Title       string `gorm:"size:200;not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`
	Order       int    `gorm:"column:sort_order" json:"order"`

	Lessons []Lesson `gorm:"foreignKey:ModuleID" json:"lessons,omitempty"`
}

func (LearningModule) TableName() string {
	return "learning_modules"
}

type LessonType string

const (
	LessonTypeLesson  LessonType = "lesson"
	LessonTypeQuiz    LessonType = "quiz"
	LessonTypeProject LessonType = "project"
)

// Lesson 课时。奖励字段在被进度记录引用后视为不可变：
// 已发放的奖励不随内容编辑回溯变更（完成记录里固化发放值）。
type Lesson struct {
	BaseModel
	ModuleID      uint           `gorm:"index;not null" json:"moduleId"`
	Title         string         `gorm:"size:200;not null" json:"title"`
	Content       string         `gorm:"type:text" json:"content"`
	LessonType    LessonType     `gorm:"type:enum('lesson','quiz','project');default:'lesson'" json:"lessonType"`
	QuizData      datatypes.JSON `json:"quizData,omitempty"`
	XPReward      int            `gorm:"default:50" json:"xpReward"`
	SPReward      int            `gorm:"default:10" json:"spReward"`
	Order         int            `gorm:"column:sort_order" json:"order"`
	EstimatedTime int            `json:"estimatedTime"` // 预计用时（分钟）
}

func (Lesson) TableName() string {
	return "lessons"
}
