package service

import "levelup_backend/internal/model"

// EvaluateAchievements 对变更后的进度状态求值所有成就定义，
// 返回本次新满足的成就。已在 earned 集合里的定义直接跳过，保证只发放一次。
//
// 级联深度为单轮：只针对触发事件落账后的状态求值一次，成就自身的奖励
// 不会再次触发求值。这是有意的有界策略，是否放开需产品确认。
func EvaluateAchievements(state *model.ProgressionState, definitions []model.Achievement) []model.Achievement {
	var newly []model.Achievement
	for _, def := range definitions {
		if state.EarnedAchievements[def.ID] {
			continue
		}
		if achievementSatisfied(&def, state) {
			newly = append(newly, def)
		}
	}
	return newly
}

func achievementSatisfied(def *model.Achievement, state *model.ProgressionState) bool {
	switch def.Condition {
	case model.CondLessonsCompleted:
		return len(state.CompletedLessons) >= def.Threshold
	case model.CondTotalXP:
		return state.XP >= def.Threshold
	case model.CondLevelReached:
		return state.Level >= def.Threshold
	case model.CondSkillUnlocked:
		return def.SkillNodeID != nil && state.UnlockedSkills[*def.SkillNodeID]
	}
	return false
}
