package service

import (
	"errors"
	"sync"
	"time"

	"levelup_backend/internal/config"
	"levelup_backend/internal/model"
	"levelup_backend/internal/util"
	"levelup_backend/pkg/logger"
	"levelup_backend/pkg/monitoring"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// LessonStore / SkillNodeStore 进度引擎消费的只读内容接口
type LessonStore interface {
	FindLessonByID(id uint) (*model.Lesson, error)
}

type SkillNodeStore interface {
	FindNodeByID(id uint) (*model.SkillNode, error)
}

// ProgressionStore 进度状态的读取与事务性落库
type ProgressionStore interface {
	GetState(userID uint) (*model.ProgressionState, error)
	ApplyCompletion(state *model.ProgressionState, record *model.LessonCompletion, awards []model.UserAchievement) error
	ApplyUnlock(state *model.ProgressionState, record *model.SkillUnlock, awards []model.UserAchievement) error
}

// AchievementStore 成就静态定义的读取接口
type AchievementStore interface {
	ListDefinitions() ([]model.Achievement, error)
}

// ProgressionService 进度引擎：把课时完成、技能解锁事件转化为
// 对用户 XP/SP/等级/集合的一致变更。同一用户的变更串行执行，
// 不同用户互不阻塞。
type ProgressionService struct {
	LessonRepo   LessonStore
	NodeRepo     SkillNodeStore
	ProgressRepo ProgressionStore
	AchieveRepo  AchievementStore
	Curve        config.ProgressionConfig

	userLocks sync.Map // userID -> *sync.Mutex
}

func NewProgressionService(
	lessonRepo LessonStore,
	nodeRepo SkillNodeStore,
	progressRepo ProgressionStore,
	achieveRepo AchievementStore,
	curve config.ProgressionConfig,
) *ProgressionService {
	return &ProgressionService{
		LessonRepo:   lessonRepo,
		NodeRepo:     nodeRepo,
		ProgressRepo: progressRepo,
		AchieveRepo:  achieveRepo,
		Curve:        curve,
	}
}

// WithUserLock 让其它需要串行变更同一用户余额的操作（如主题购买）
// 复用进度引擎的按用户互斥
func (s *ProgressionService) WithUserLock(userID uint, fn func() error) error {
	unlock := s.lockUser(userID)
	defer unlock()
	return fn()
}

func (s *ProgressionService) lockUser(userID uint) func() {
	v, _ := s.userLocks.LoadOrStore(userID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// LevelForXP 由 XP 推导等级的纯函数，对任意非负 XP 单调且确定。
// growth == 1 时每 base XP 升一级；growth > 1 时每级所需 XP 按几何级数递增。
func LevelForXP(xp int, curve config.ProgressionConfig) int {
	if xp < 0 {
		xp = 0
	}
	base, maxLevel := curveDefaults(curve)

	if curve.LevelGrowth <= 1 {
		level := xp/base + 1
		if level > maxLevel {
			return maxLevel
		}
		return level
	}

	level := 1
	cost := float64(base)
	remaining := float64(xp)
	for level < maxLevel && remaining >= cost {
		remaining -= cost
		cost *= curve.LevelGrowth
		level++
	}
	return level
}

// curveDefaults 对未配置的曲线参数取与 LevelForXP 一致的缺省值
func curveDefaults(curve config.ProgressionConfig) (base, maxLevel int) {
	base = curve.LevelBaseXP
	if base <= 0 {
		base = 1000
	}
	maxLevel = curve.MaxLevel
	if maxLevel <= 0 {
		maxLevel = 100
	}
	return base, maxLevel
}

// XPForNextLevel 距下一级还差的 XP，满级返回 0
func XPForNextLevel(xp int, curve config.ProgressionConfig) int {
	if xp < 0 {
		xp = 0
	}
	base, maxLevel := curveDefaults(curve)
	level := LevelForXP(xp, curve)
	if level >= maxLevel {
		return 0
	}
	// 下一级门槛：线性为 level*base；几何为前 level 级费用之和
	if curve.LevelGrowth <= 1 {
		return level*base - xp
	}
	threshold := 0.0
	cost := float64(base)
	for i := 1; i <= level; i++ {
		threshold += cost
		cost *= curve.LevelGrowth
	}
	return int(threshold) - xp
}

type CompletionResult struct {
	State            *model.ProgressionState `json:"state"`
	XPGained         int                     `json:"xpGained"`
	SPGained         int                     `json:"spGained"`
	LevelUp          bool                    `json:"levelUp"`
	AlreadyCompleted bool                    `json:"alreadyCompleted"`
	NewAchievements  []model.Achievement     `json:"newAchievements"`
}

// CompleteLesson 记录一次课时完成并发放奖励。
// 重复提交是无副作用的幂等操作，返回当前状态且不重复发放。
func (s *ProgressionService) CompleteLesson(userID, lessonID uint, score *int) (*CompletionResult, error) {
	unlock := s.lockUser(userID)
	defer unlock()

	lesson, err := s.LessonRepo.FindLessonByID(lessonID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrLessonNotFound
		}
		return nil, err
	}

	state, err := s.ProgressRepo.GetState(userID)
	if err != nil {
		return nil, err
	}

	if state.CompletedLessons[lessonID] {
		return &CompletionResult{State: state, AlreadyCompleted: true}, nil
	}

	next := state.Clone()
	next.CompletedLessons[lessonID] = true
	next.XP += lesson.XPReward
	next.SP += lesson.SPReward
	next.Level = LevelForXP(next.XP, s.Curve)

	newAchievements, awards := s.applyAchievements(next)

	record := &model.LessonCompletion{
		UserID:      userID,
		LessonID:    lessonID,
		XPGranted:   lesson.XPReward,
		SPGranted:   lesson.SPReward,
		Score:       score,
		CompletedAt: time.Now(),
	}

	if err := s.ProgressRepo.ApplyCompletion(next, record, awards); err != nil {
		return nil, err
	}

	monitoring.LessonCompletions.Inc()

	return &CompletionResult{
		State:           next,
		XPGained:        lesson.XPReward,
		SPGained:        lesson.SPReward,
		LevelUp:         next.Level > state.Level,
		NewAchievements: newAchievements,
	}, nil
}

type UnlockResult struct {
	State           *model.ProgressionState `json:"state"`
	SPSpent         int                     `json:"spSpent"`
	AlreadyUnlocked bool                    `json:"alreadyUnlocked"`
	NewAchievements []model.Achievement     `json:"newAchievements"`
}

// UnlockSkill 花费 SP 解锁技能节点。四项检查固定顺序执行，
// 错误优先级可预期：存在性 → 已解锁 → 前置条件 → 余额。
func (s *ProgressionService) UnlockSkill(userID, nodeID uint) (*UnlockResult, error) {
	unlock := s.lockUser(userID)
	defer unlock()

	node, err := s.NodeRepo.FindNodeByID(nodeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrSkillNodeNotFound
		}
		return nil, err
	}

	state, err := s.ProgressRepo.GetState(userID)
	if err != nil {
		return nil, err
	}

	if state.UnlockedSkills[nodeID] {
		return &UnlockResult{State: state, AlreadyUnlocked: true}, nil
	}

	if !Unlockable(node, state.UnlockedSkills) {
		return nil, util.ErrPrerequisitesNotMet
	}

	if state.SP < node.SPCost {
		return nil, util.ErrInsufficientPoints
	}

	next := state.Clone()
	next.SP -= node.SPCost
	next.UnlockedSkills[nodeID] = true

	newAchievements, awards := s.applyAchievements(next)

	record := &model.SkillUnlock{
		UserID:      userID,
		SkillNodeID: nodeID,
		SPSpent:     node.SPCost,
		UnlockedAt:  time.Now(),
	}

	if err := s.ProgressRepo.ApplyUnlock(next, record, awards); err != nil {
		return nil, err
	}

	monitoring.SkillUnlocks.Inc()

	return &UnlockResult{
		State:           next,
		SPSpent:         node.SPCost,
		NewAchievements: newAchievements,
	}, nil
}

// applyAchievements 对变更后的状态做一轮成就求值并叠加奖励。
// 单轮有界：成就自身的奖励不会再次触发求值。
func (s *ProgressionService) applyAchievements(state *model.ProgressionState) ([]model.Achievement, []model.UserAchievement) {
	definitions, err := s.AchieveRepo.ListDefinitions()
	if err != nil {
		// 成就定义读不出来不阻断主流程，只丢失本次评估
		logger.Log.Error("failed to load achievement definitions", zap.Error(err))
		return nil, nil
	}

	newly := EvaluateAchievements(state, definitions)
	if len(newly) == 0 {
		return nil, nil
	}

	now := time.Now()
	awards := make([]model.UserAchievement, 0, len(newly))
	for _, a := range newly {
		state.EarnedAchievements[a.ID] = true
		state.XP += a.XPReward
		state.SP += a.SPReward
		awards = append(awards, model.UserAchievement{
			UserID:        state.UserID,
			AchievementID: a.ID,
			EarnedAt:      now,
		})
	}
	state.Level = LevelForXP(state.XP, s.Curve)

	return newly, awards
}
