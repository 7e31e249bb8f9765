package model

import "time"

// LessonCompletion 课时完成记录，追加写入。
// user+lesson 唯一索引是“已完成”判定的事实来源，重复提交天然幂等。
// 发放的奖励值在记录里固化，课程内容后续修改不回溯影响。
type LessonCompletion struct {
	BaseModel
	UserID      uint      `gorm:"uniqueIndex:idx_user_lesson;not null" json:"userId"`
	LessonID    uint      `gorm:"uniqueIndex:idx_user_lesson;not null" json:"lessonId"`
	XPGranted   int       `json:"xpGranted"`
	SPGranted   int       `json:"spGranted"`
	Score       *int      `json:"score,omitempty"` // 测验课时的得分
	CompletedAt time.Time `json:"completedAt"`
}

func (LessonCompletion) TableName() string {
	return "lesson_completions"
}

// SkillUnlock 技能解锁记录，追加写入，user+node 唯一
type SkillUnlock struct {
	BaseModel
	UserID      uint      `gorm:"uniqueIndex:idx_user_node;not null" json:"userId"`
	SkillNodeID uint      `gorm:"uniqueIndex:idx_user_node;not null" json:"skillNodeId"`
	SPSpent     int       `json:"spSpent"`
	UnlockedAt  time.Time `json:"unlockedAt"`
}

func (SkillUnlock) TableName() string {
	return "skill_unlocks"
}

// ProgressionState 用户进度的内存快照：等级恒由 XP 推导，
// 两个集合只增不减，由追加记录聚合而来。变更操作对快照读改写后整体落库。
type ProgressionState struct {
	UserID             uint          `json:"userId"`
	XP                 int           `json:"xp"`
	SP                 int           `json:"sp"`
	Level              int           `json:"level"`
	CompletedLessons   map[uint]bool `json:"-"`
	UnlockedSkills     map[uint]bool `json:"-"`
	EarnedAchievements map[uint]bool `json:"-"`
}

func NewProgressionState(userID uint) *ProgressionState {
	return &ProgressionState{
		UserID:             userID,
		Level:              1,
		CompletedLessons:   make(map[uint]bool),
		UnlockedSkills:     make(map[uint]bool),
		EarnedAchievements: make(map[uint]bool),
	}
}

func (s *ProgressionState) Clone() *ProgressionState {
	c := &ProgressionState{
		UserID:             s.UserID,
		XP:                 s.XP,
		SP:                 s.SP,
		Level:              s.Level,
		CompletedLessons:   make(map[uint]bool, len(s.CompletedLessons)),
		UnlockedSkills:     make(map[uint]bool, len(s.UnlockedSkills)),
		EarnedAchievements: make(map[uint]bool, len(s.EarnedAchievements)),
	}
	for id := range s.CompletedLessons {
		c.CompletedLessons[id] = true
	}
	for id := range s.UnlockedSkills {
		c.UnlockedSkills[id] = true
	}
	for id := range s.EarnedAchievements {
		c.EarnedAchievements[id] = true
	}
	return c
}
