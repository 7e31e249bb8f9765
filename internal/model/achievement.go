package model

import "time"

type AchievementCondition string

const (
	CondLessonsCompleted AchievementCondition = "lessons_completed" // 完成课时数 >= Threshold
	CondTotalXP          AchievementCondition = "total_xp"          // 总经验 >= Threshold
	CondLevelReached     AchievementCondition = "level"             // 等级 >= Threshold
	CondSkillUnlocked    AchievementCondition = "skill_unlocked"    // 解锁了指定技能节点
)

// Achievement 成就的静态定义，触发条件针对用户变更后的完整进度状态求值
type Achievement struct {
	BaseModel
	Code        string               `gorm:"size:50;uniqueIndex;not null" json:"code"`
	Name        string               `gorm:"size:100;not null" json:"name"`
	Description string               `gorm:"size:255" json:"description"`
	Icon        string               `gorm:"size:255" json:"icon"`
	Condition   AchievementCondition `gorm:"size:30;not null" json:"condition"`
	Threshold   int                  `gorm:"default:0" json:"threshold"`
	SkillNodeID *uint                `json:"skillNodeId,omitempty"` // 仅 skill_unlocked 条件使用
	XPReward    int                  `gorm:"default:0" json:"xpReward"`
	SPReward    int                  `gorm:"default:0" json:"spReward"`
}

func (Achievement) TableName() string {
	return "achievements"
}

// UserAchievement 用户已获得的成就，user+achievement 唯一，保证只发放一次
type UserAchievement struct {
	BaseModel
	UserID        uint      `gorm:"uniqueIndex:idx_user_achievement;not null" json:"userId"`
	AchievementID uint      `gorm:"uniqueIndex:idx_user_achievement;not null" json:"achievementId"`
	EarnedAt      time.Time `json:"earnedAt"`
}

func (UserAchievement) TableName() string {
	return "user_achievements"
}
