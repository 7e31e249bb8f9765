package service

import (
	"testing"

	"levelup_backend/internal/config"
	"levelup_backend/internal/model"
	"levelup_backend/internal/util"
	"levelup_backend/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func init() {
	logger.Log = zap.NewNop()
}

type fakeLessonStore struct {
	lessons map[uint]*model.Lesson
}

func (f *fakeLessonStore) FindLessonByID(id uint) (*model.Lesson, error) {
	if l, ok := f.lessons[id]; ok {
		return l, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type fakeNodeStore struct {
	nodes map[uint]*model.SkillNode
}

func (f *fakeNodeStore) FindNodeByID(id uint) (*model.SkillNode, error) {
	if n, ok := f.nodes[id]; ok {
		return n, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type fakeProgressStore struct {
	state       *model.ProgressionState
	completions []*model.LessonCompletion
	unlocks     []*model.SkillUnlock
	awards      []model.UserAchievement
}

func (f *fakeProgressStore) GetState(userID uint) (*model.ProgressionState, error) {
	return f.state, nil
}

func (f *fakeProgressStore) ApplyCompletion(state *model.ProgressionState, record *model.LessonCompletion, awards []model.UserAchievement) error {
	f.state = state
	f.completions = append(f.completions, record)
	f.awards = append(f.awards, awards...)
	return nil
}

func (f *fakeProgressStore) ApplyUnlock(state *model.ProgressionState, record *model.SkillUnlock, awards []model.UserAchievement) error {
	f.state = state
	f.unlocks = append(f.unlocks, record)
	f.awards = append(f.awards, awards...)
	return nil
}

type fakeAchievementStore struct {
	defs []model.Achievement
}

func (f *fakeAchievementStore) ListDefinitions() ([]model.Achievement, error) {
	return f.defs, nil
}

func defaultCurve() config.ProgressionConfig {
	return config.ProgressionConfig{LevelBaseXP: 1000, LevelGrowth: 1, MaxLevel: 100}
}

func newTestService(lessons map[uint]*model.Lesson, nodes map[uint]*model.SkillNode, state *model.ProgressionState, defs []model.Achievement) (*ProgressionService, *fakeProgressStore) {
	progress := &fakeProgressStore{state: state}
	svc := NewProgressionService(
		&fakeLessonStore{lessons: lessons},
		&fakeNodeStore{nodes: nodes},
		progress,
		&fakeAchievementStore{defs: defs},
		defaultCurve(),
	)
	return svc, progress
}

func lessonWithRewards(id uint, xp, sp int) *model.Lesson {
	l := &model.Lesson{Title: "test lesson", XPReward: xp, SPReward: sp}
	l.ID = id
	return l
}

func nodeWithCost(id uint, cost int, prereqs ...uint) *model.SkillNode {
	n := &model.SkillNode{Title: "test node", SPCost: cost}
	n.ID = id
	if len(prereqs) > 0 {
		n.Prerequisites = datatypes.NewJSONSlice(prereqs)
	}
	return n
}

func TestLevelForXPLinear(t *testing.T) {
	curve := defaultCurve()

	assert.Equal(t, 1, LevelForXP(0, curve))
	assert.Equal(t, 1, LevelForXP(999, curve))
	assert.Equal(t, 2, LevelForXP(1000, curve))
	assert.Equal(t, 5, LevelForXP(4500, curve))
	assert.Equal(t, 100, LevelForXP(99000, curve))

	// 封顶
	assert.Equal(t, 100, LevelForXP(1000000000, curve))

	// 负数按零处理
	assert.Equal(t, 1, LevelForXP(-50, curve))
}

func TestLevelForXPMonotonic(t *testing.T) {
	curve := defaultCurve()
	prev := 0
	for xp := 0; xp <= 200000; xp += 137 {
		level := LevelForXP(xp, curve)
		assert.GreaterOrEqual(t, level, prev, "level must never decrease as xp grows")
		prev = level
	}
}

func TestLevelForXPGeometric(t *testing.T) {
	curve := config.ProgressionConfig{LevelBaseXP: 100, LevelGrowth: 2, MaxLevel: 10}

	assert.Equal(t, 1, LevelForXP(0, curve))
	assert.Equal(t, 1, LevelForXP(99, curve))
	assert.Equal(t, 2, LevelForXP(100, curve))  // 100
	assert.Equal(t, 3, LevelForXP(300, curve))  // 100+200
	assert.Equal(t, 4, LevelForXP(700, curve))  // 100+200+400
	assert.Equal(t, 10, LevelForXP(1000000, curve))
}

func TestXPForNextLevel(t *testing.T) {
	curve := defaultCurve()

	assert.Equal(t, 1000, XPForNextLevel(0, curve))
	assert.Equal(t, 1, XPForNextLevel(999, curve))
	assert.Equal(t, 1000, XPForNextLevel(1000, curve))

	// 满级为 0
	capped := config.ProgressionConfig{LevelBaseXP: 100, LevelGrowth: 1, MaxLevel: 2}
	assert.Equal(t, 0, XPForNextLevel(500, capped))
}

func TestXPForNextLevelZeroValueCurve(t *testing.T) {
	// 未配置的曲线与 LevelForXP 用同一套缺省值（1000/级，100 级封顶）
	var curve config.ProgressionConfig

	assert.Equal(t, 1000, XPForNextLevel(0, curve))
	assert.Equal(t, 750, XPForNextLevel(250, curve))
	assert.Equal(t, 1000, XPForNextLevel(1000, curve))
	assert.Equal(t, 0, XPForNextLevel(1000*100, curve))
}

func TestCompleteLessonAwardsRewards(t *testing.T) {
	state := model.NewProgressionState(1)
	state.SP = 10
	svc, progress := newTestService(
		map[uint]*model.Lesson{7: lessonWithRewards(7, 50, 5)},
		nil, state, nil,
	)

	result, err := svc.CompleteLesson(1, 7, nil)
	require.NoError(t, err)

	assert.Equal(t, 50, result.XPGained)
	assert.Equal(t, 5, result.SPGained)
	assert.Equal(t, 50, result.State.XP)
	assert.Equal(t, 15, result.State.SP)
	assert.Equal(t, 1, result.State.Level)
	assert.False(t, result.LevelUp)
	assert.False(t, result.AlreadyCompleted)
	assert.True(t, result.State.CompletedLessons[7])
	require.Len(t, progress.completions, 1)
	assert.Equal(t, 50, progress.completions[0].XPGranted)
}

func TestCompleteLessonLevelUp(t *testing.T) {
	state := model.NewProgressionState(1)
	state.XP = 900
	svc, _ := newTestService(
		map[uint]*model.Lesson{7: lessonWithRewards(7, 200, 0)},
		nil, state, nil,
	)

	result, err := svc.CompleteLesson(1, 7, nil)
	require.NoError(t, err)

	assert.Equal(t, 2, result.State.Level)
	assert.True(t, result.LevelUp)
}

func TestCompleteLessonIdempotent(t *testing.T) {
	state := model.NewProgressionState(1)
	svc, progress := newTestService(
		map[uint]*model.Lesson{7: lessonWithRewards(7, 50, 5)},
		nil, state, nil,
	)

	first, err := svc.CompleteLesson(1, 7, nil)
	require.NoError(t, err)
	require.False(t, first.AlreadyCompleted)

	second, err := svc.CompleteLesson(1, 7, nil)
	require.NoError(t, err)
	assert.True(t, second.AlreadyCompleted)
	assert.Equal(t, 0, second.XPGained)
	assert.Equal(t, first.State.XP, second.State.XP)
	assert.Equal(t, first.State.SP, second.State.SP)

	// 不产生第二条记录
	assert.Len(t, progress.completions, 1)
}

func TestCompleteLessonNotFound(t *testing.T) {
	svc, _ := newTestService(nil, nil, model.NewProgressionState(1), nil)

	_, err := svc.CompleteLesson(1, 99, nil)
	assert.ErrorIs(t, err, util.ErrLessonNotFound)
}

func TestCompleteLessonRecordsScore(t *testing.T) {
	state := model.NewProgressionState(1)
	svc, progress := newTestService(
		map[uint]*model.Lesson{7: lessonWithRewards(7, 50, 5)},
		nil, state, nil,
	)

	score := 85
	_, err := svc.CompleteLesson(1, 7, &score)
	require.NoError(t, err)
	require.Len(t, progress.completions, 1)
	require.NotNil(t, progress.completions[0].Score)
	assert.Equal(t, 85, *progress.completions[0].Score)
}

func TestUnlockSkillSpendsPoints(t *testing.T) {
	state := model.NewProgressionState(1)
	state.SP = 30
	svc, progress := newTestService(nil,
		map[uint]*model.SkillNode{3: nodeWithCost(3, 20)},
		state, nil,
	)

	result, err := svc.UnlockSkill(1, 3)
	require.NoError(t, err)

	assert.Equal(t, 20, result.SPSpent)
	assert.Equal(t, 10, result.State.SP)
	assert.True(t, result.State.UnlockedSkills[3])
	require.Len(t, progress.unlocks, 1)
	assert.Equal(t, 20, progress.unlocks[0].SPSpent)
}

func TestUnlockSkillInsufficientPoints(t *testing.T) {
	state := model.NewProgressionState(1)
	state.SP = 15
	svc, progress := newTestService(nil,
		map[uint]*model.SkillNode{3: nodeWithCost(3, 20)},
		state, nil,
	)

	_, err := svc.UnlockSkill(1, 3)
	assert.ErrorIs(t, err, util.ErrInsufficientPoints)

	// 状态不变，无记录产生
	assert.Equal(t, 15, progress.state.SP)
	assert.False(t, progress.state.UnlockedSkills[3])
	assert.Empty(t, progress.unlocks)
}

func TestUnlockSkillPrerequisitesNotMet(t *testing.T) {
	state := model.NewProgressionState(1)
	state.SP = 100
	svc, _ := newTestService(nil,
		map[uint]*model.SkillNode{
			1: nodeWithCost(1, 10),
			2: nodeWithCost(2, 10, 1),
		},
		state, nil,
	)

	_, err := svc.UnlockSkill(1, 2)
	assert.ErrorIs(t, err, util.ErrPrerequisitesNotMet)
}

// 前置未满足且余额不足时，前置错误优先
func TestUnlockSkillErrorPrecedence(t *testing.T) {
	state := model.NewProgressionState(1)
	state.SP = 0
	svc, _ := newTestService(nil,
		map[uint]*model.SkillNode{
			1: nodeWithCost(1, 10),
			2: nodeWithCost(2, 10, 1),
		},
		state, nil,
	)

	_, err := svc.UnlockSkill(1, 2)
	assert.ErrorIs(t, err, util.ErrPrerequisitesNotMet)
}

func TestUnlockSkillIdempotent(t *testing.T) {
	state := model.NewProgressionState(1)
	state.SP = 30
	svc, progress := newTestService(nil,
		map[uint]*model.SkillNode{3: nodeWithCost(3, 20)},
		state, nil,
	)

	_, err := svc.UnlockSkill(1, 3)
	require.NoError(t, err)

	second, err := svc.UnlockSkill(1, 3)
	require.NoError(t, err)
	assert.True(t, second.AlreadyUnlocked)
	assert.Equal(t, 0, second.SPSpent)
	assert.Equal(t, 10, second.State.SP)
	assert.Len(t, progress.unlocks, 1)
}

func TestUnlockSkillNotFound(t *testing.T) {
	svc, _ := newTestService(nil, nil, model.NewProgressionState(1), nil)

	_, err := svc.UnlockSkill(1, 99)
	assert.ErrorIs(t, err, util.ErrSkillNodeNotFound)
}

func TestUnlockSkillChainRequiresEachStep(t *testing.T) {
	state := model.NewProgressionState(1)
	state.SP = 100
	svc, _ := newTestService(nil,
		map[uint]*model.SkillNode{
			1: nodeWithCost(1, 10),
			2: nodeWithCost(2, 10, 1),
			3: nodeWithCost(3, 10, 2),
		},
		state, nil,
	)

	// 链上每个节点单独解锁，解锁 1 不隐式打通 3
	_, err := svc.UnlockSkill(1, 1)
	require.NoError(t, err)

	_, err = svc.UnlockSkill(1, 3)
	assert.ErrorIs(t, err, util.ErrPrerequisitesNotMet)

	_, err = svc.UnlockSkill(1, 2)
	require.NoError(t, err)

	result, err := svc.UnlockSkill(1, 3)
	require.NoError(t, err)
	assert.True(t, result.State.UnlockedSkills[3])
}

func achievementDef(id uint, code string, cond model.AchievementCondition, threshold, xp, sp int) model.Achievement {
	a := model.Achievement{Code: code, Condition: cond, Threshold: threshold, XPReward: xp, SPReward: sp}
	a.ID = id
	return a
}

func TestCompleteLessonGrantsAchievement(t *testing.T) {
	state := model.NewProgressionState(1)
	defs := []model.Achievement{
		achievementDef(1, "first_lesson", model.CondLessonsCompleted, 1, 50, 5),
	}
	svc, progress := newTestService(
		map[uint]*model.Lesson{7: lessonWithRewards(7, 10, 0)},
		nil, state, defs,
	)

	result, err := svc.CompleteLesson(1, 7, nil)
	require.NoError(t, err)

	require.Len(t, result.NewAchievements, 1)
	assert.Equal(t, "first_lesson", result.NewAchievements[0].Code)
	// 成就奖励叠加到状态里
	assert.Equal(t, 60, result.State.XP)
	assert.Equal(t, 5, result.State.SP)
	assert.True(t, result.State.EarnedAchievements[1])
	require.Len(t, progress.awards, 1)
}

// 成就求值是单轮的：成就自身的 XP 奖励不会在同一次变更里触发下一个成就
func TestAchievementCascadeIsSinglePass(t *testing.T) {
	state := model.NewProgressionState(1)
	defs := []model.Achievement{
		achievementDef(1, "first_lesson", model.CondLessonsCompleted, 1, 50, 0),
		achievementDef(2, "xp_50", model.CondTotalXP, 50, 0, 0),
	}
	svc, _ := newTestService(
		map[uint]*model.Lesson{7: lessonWithRewards(7, 10, 0)},
		nil, state, defs,
	)

	result, err := svc.CompleteLesson(1, 7, nil)
	require.NoError(t, err)

	// 事件落账时 xp=10，xp_50 未满足；first_lesson 的 +50 不触发复评
	require.Len(t, result.NewAchievements, 1)
	assert.Equal(t, "first_lesson", result.NewAchievements[0].Code)
	assert.Equal(t, 60, result.State.XP)
}

func TestAchievementGrantedExactlyOnce(t *testing.T) {
	state := model.NewProgressionState(1)
	defs := []model.Achievement{
		achievementDef(1, "first_lesson", model.CondLessonsCompleted, 1, 50, 5),
	}
	svc, progress := newTestService(
		map[uint]*model.Lesson{
			7: lessonWithRewards(7, 10, 0),
			8: lessonWithRewards(8, 10, 0),
		},
		nil, state, defs,
	)

	first, err := svc.CompleteLesson(1, 7, nil)
	require.NoError(t, err)
	require.Len(t, first.NewAchievements, 1)

	second, err := svc.CompleteLesson(1, 8, nil)
	require.NoError(t, err)
	assert.Empty(t, second.NewAchievements)
	assert.Len(t, progress.awards, 1)
}

func TestMultipleAchievementsInOneEvaluation(t *testing.T) {
	state := model.NewProgressionState(1)
	defs := []model.Achievement{
		achievementDef(1, "first_lesson", model.CondLessonsCompleted, 1, 0, 0),
		achievementDef(2, "xp_100", model.CondTotalXP, 100, 0, 0),
	}
	svc, _ := newTestService(
		map[uint]*model.Lesson{7: lessonWithRewards(7, 150, 0)},
		nil, state, defs,
	)

	result, err := svc.CompleteLesson(1, 7, nil)
	require.NoError(t, err)

	// 两个条件都在事件落账后的状态上满足，同轮一起发放
	assert.Len(t, result.NewAchievements, 2)
}
