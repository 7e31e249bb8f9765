package repository

import (
	"levelup_backend/internal/model"

	"gorm.io/gorm"
)

type ProgressRepository struct {
	DB *gorm.DB
}

func NewProgressRepository(db *gorm.DB) *ProgressRepository {
	return &ProgressRepository{DB: db}
}

// GetState 从用户行和追加记录聚合出进度快照。
// 集合成员资格以记录表为准，而不是用户行上的冗余字段。
func (r *ProgressRepository) GetState(userID uint) (*model.ProgressionState, error) {
	var user model.User
	if err := r.DB.First(&user, userID).Error; err != nil {
		return nil, err
	}

	state := model.NewProgressionState(userID)
	state.XP = user.XP
	state.SP = user.SP
	state.Level = user.Level

	var completions []model.LessonCompletion
	if err := r.DB.Where("user_id = ?", userID).Find(&completions).Error; err != nil {
		return nil, err
	}
	for _, c := range completions {
		state.CompletedLessons[c.LessonID] = true
	}

	var unlocks []model.SkillUnlock
	if err := r.DB.Where("user_id = ?", userID).Find(&unlocks).Error; err != nil {
		return nil, err
	}
	for _, u := range unlocks {
		state.UnlockedSkills[u.SkillNodeID] = true
	}

	var earned []model.UserAchievement
	if err := r.DB.Where("user_id = ?", userID).Find(&earned).Error; err != nil {
		return nil, err
	}
	for _, e := range earned {
		state.EarnedAchievements[e.AchievementID] = true
	}

	return state, nil
}

// ApplyCompletion 在单个事务里落库一次课时完成：
// 完成记录、成就发放记录、用户行上的 XP/SP/等级。
func (r *ProgressRepository) ApplyCompletion(state *model.ProgressionState, record *model.LessonCompletion, awards []model.UserAchievement) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(record).Error; err != nil {
			return err
		}
		for i := range awards {
			if err := tx.Create(&awards[i]).Error; err != nil {
				return err
			}
		}
		return tx.Model(&model.User{}).
			Where("id = ?", state.UserID).
			Updates(map[string]interface{}{
				"xp":    state.XP,
				"sp":    state.SP,
				"level": state.Level,
			}).Error
	})
}

// ApplyUnlock 在单个事务里落库一次技能解锁
func (r *ProgressRepository) ApplyUnlock(state *model.ProgressionState, record *model.SkillUnlock, awards []model.UserAchievement) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(record).Error; err != nil {
			return err
		}
		for i := range awards {
			if err := tx.Create(&awards[i]).Error; err != nil {
				return err
			}
		}
		return tx.Model(&model.User{}).
			Where("id = ?", state.UserID).
			Updates(map[string]interface{}{
				"xp":    state.XP,
				"sp":    state.SP,
				"level": state.Level,
			}).Error
	})
}

func (r *ProgressRepository) CountCompletions(userID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.LessonCompletion{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

func (r *ProgressRepository) ListCompletions(userID uint) ([]model.LessonCompletion, error) {
	var completions []model.LessonCompletion
	err := r.DB.Where("user_id = ?", userID).Order("completed_at desc").Find(&completions).Error
	return completions, err
}

func (r *ProgressRepository) ListUnlocks(userID uint) ([]model.SkillUnlock, error) {
	var unlocks []model.SkillUnlock
	err := r.DB.Where("user_id = ?", userID).Order("unlocked_at desc").Find(&unlocks).Error
	return unlocks, err
}
