package model

import "gorm.io/datatypes"

type PlanSource string

const (
	PlanSourceAI       PlanSource = "ai"
	PlanSourceFallback PlanSource = "fallback"
)

// GeneratedPlan AI 合成（或回退生成）的学习计划的留存记录
type GeneratedPlan struct {
	UUIDBase
	UserID          uint           `gorm:"index;not null" json:"userId"`
	Goal            string         `gorm:"size:255;not null" json:"goal"`
	HoursPerWeek    int            `json:"hoursPerWeek"`
	ExperienceLevel string         `gorm:"size:20" json:"experienceLevel"`
	Source          PlanSource     `gorm:"size:10;not null" json:"source"`
	Plan            datatypes.JSON `json:"plan"`
}

func (GeneratedPlan) TableName() string {
	return "generated_plans"
}
