package service

import (
	"testing"

	"levelup_backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluateLessonsCompletedCondition(t *testing.T) {
	state := model.NewProgressionState(1)
	state.CompletedLessons[1] = true
	state.CompletedLessons[2] = true

	defs := []model.Achievement{
		achievementDef(1, "two_lessons", model.CondLessonsCompleted, 2, 0, 0),
		achievementDef(2, "ten_lessons", model.CondLessonsCompleted, 10, 0, 0),
	}

	newly := EvaluateAchievements(state, defs)
	require.Len(t, newly, 1)
	assert.Equal(t, "two_lessons", newly[0].Code)
}

func TestEvaluateTotalXPCondition(t *testing.T) {
	state := model.NewProgressionState(1)
	state.XP = 1000

	defs := []model.Achievement{
		achievementDef(1, "xp_1000", model.CondTotalXP, 1000, 0, 0),
		achievementDef(2, "xp_1001", model.CondTotalXP, 1001, 0, 0),
	}

	newly := EvaluateAchievements(state, defs)
	require.Len(t, newly, 1)
	assert.Equal(t, "xp_1000", newly[0].Code)
}

func TestEvaluateLevelCondition(t *testing.T) {
	state := model.NewProgressionState(1)
	state.Level = 5

	defs := []model.Achievement{
		achievementDef(1, "level_5", model.CondLevelReached, 5, 0, 0),
		achievementDef(2, "level_6", model.CondLevelReached, 6, 0, 0),
	}

	newly := EvaluateAchievements(state, defs)
	require.Len(t, newly, 1)
	assert.Equal(t, "level_5", newly[0].Code)
}

func TestEvaluateSkillUnlockedCondition(t *testing.T) {
	state := model.NewProgressionState(1)
	state.UnlockedSkills[42] = true

	nodeID := uint(42)
	otherID := uint(43)
	withNode := achievementDef(1, "unlocked_42", model.CondSkillUnlocked, 0, 0, 0)
	withNode.SkillNodeID = &nodeID
	withOther := achievementDef(2, "unlocked_43", model.CondSkillUnlocked, 0, 0, 0)
	withOther.SkillNodeID = &otherID
	// SkillNodeID 缺失的定义永远不满足
	withNil := achievementDef(3, "broken", model.CondSkillUnlocked, 0, 0, 0)

	newly := EvaluateAchievements(state, []model.Achievement{withNode, withOther, withNil})
	require.Len(t, newly, 1)
	assert.Equal(t, "unlocked_42", newly[0].Code)
}

func TestEvaluateSkipsEarned(t *testing.T) {
	state := model.NewProgressionState(1)
	state.XP = 5000
	state.EarnedAchievements[1] = true

	defs := []model.Achievement{
		achievementDef(1, "xp_1000", model.CondTotalXP, 1000, 0, 0),
	}

	assert.Empty(t, EvaluateAchievements(state, defs))
}

func TestEvaluateUnknownConditionNeverSatisfied(t *testing.T) {
	state := model.NewProgressionState(1)
	state.XP = 5000

	defs := []model.Achievement{
		achievementDef(1, "mystery", model.AchievementCondition("unknown"), 0, 0, 0),
	}

	assert.Empty(t, EvaluateAchievements(state, defs))
}
