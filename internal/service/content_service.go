package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"levelup_backend/internal/model"
	"levelup_backend/internal/repository"
	"levelup_backend/internal/util"
	"levelup_backend/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const skillTreeCacheTTL = 10 * time.Minute

// ContentService 内容的浏览与编排。技能树视图按路径缓存在 redis，
// 编排写入时失效。引擎侧对内容只读，变更只发生在编排接口。
type ContentService struct {
	ContentRepo  *repository.ContentRepository
	SkillRepo    *repository.SkillRepository
	ProgressRepo *repository.ProgressRepository
	RDB          *redis.Client
}

func NewContentService(
	contentRepo *repository.ContentRepository,
	skillRepo *repository.SkillRepository,
	progressRepo *repository.ProgressRepository,
	rdb *redis.Client,
) *ContentService {
	return &ContentService{
		ContentRepo:  contentRepo,
		SkillRepo:    skillRepo,
		ProgressRepo: progressRepo,
		RDB:          rdb,
	}
}

func (s *ContentService) ListPaths() ([]model.LearningPath, error) {
	return s.ContentRepo.ListActivePaths()
}

func (s *ContentService) GetPath(id uint) (*model.LearningPath, error) {
	path, err := s.ContentRepo.FindPathByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrPathNotFound
		}
		return nil, err
	}
	return path, nil
}

type SkillNodeView struct {
	model.SkillNode
	Unlocked   bool `json:"unlocked"`
	Unlockable bool `json:"unlockable"`
}

type SkillTreeView struct {
	ID          uint            `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Nodes       []SkillNodeView `json:"nodes"`
}

// GetSkillTree 返回带当前用户解锁标记的技能树视图
func (s *ContentService) GetSkillTree(userID, pathID uint) (*SkillTreeView, error) {
	tree, err := s.loadTree(pathID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrSkillTreeNotFound
		}
		return nil, err
	}

	state, err := s.ProgressRepo.GetState(userID)
	if err != nil {
		return nil, err
	}

	view := &SkillTreeView{
		ID:          tree.ID,
		Title:       tree.Title,
		Description: tree.Description,
		Nodes:       make([]SkillNodeView, len(tree.Nodes)),
	}
	for i := range tree.Nodes {
		node := tree.Nodes[i]
		view.Nodes[i] = SkillNodeView{
			SkillNode:  node,
			Unlocked:   state.UnlockedSkills[node.ID],
			Unlockable: !state.UnlockedSkills[node.ID] && Unlockable(&node, state.UnlockedSkills),
		}
	}
	return view, nil
}

func skillTreeCacheKey(pathID uint) string {
	return fmt.Sprintf("skilltree:path:%d", pathID)
}

func (s *ContentService) loadTree(pathID uint) (*model.SkillTree, error) {
	ctx := context.Background()

	if s.RDB != nil {
		cached, err := s.RDB.Get(ctx, skillTreeCacheKey(pathID)).Result()
		if err == nil {
			var tree model.SkillTree
			if err := json.Unmarshal([]byte(cached), &tree); err == nil {
				return &tree, nil
			}
		}
	}

	tree, err := s.SkillRepo.FindTreeByPathID(pathID)
	if err != nil {
		return nil, err
	}

	if s.RDB != nil {
		if data, err := json.Marshal(tree); err == nil {
			if err := s.RDB.Set(ctx, skillTreeCacheKey(pathID), data, skillTreeCacheTTL).Err(); err != nil {
				logger.Log.Warn("failed to cache skill tree", zap.Uint("pathId", pathID), zap.Error(err))
			}
		}
	}
	return tree, nil
}

func (s *ContentService) invalidateTreeCache(pathID uint) {
	if s.RDB == nil {
		return
	}
	if err := s.RDB.Del(context.Background(), skillTreeCacheKey(pathID)).Err(); err != nil {
		logger.Log.Warn("failed to invalidate skill tree cache", zap.Uint("pathId", pathID), zap.Error(err))
	}
}

type CreatePathRequest struct {
	Title             string           `json:"title" binding:"required"`
	Description       string           `json:"description"`
	Category          string           `json:"category"`
	DifficultyLevel   model.Difficulty `json:"difficultyLevel" binding:"required,oneof=beginner intermediate advanced"`
	EstimatedDuration string           `json:"estimatedDuration"`
}

func (s *ContentService) CreatePath(req CreatePathRequest) (*model.LearningPath, error) {
	path := &model.LearningPath{
		Title:             req.Title,
		Description:       req.Description,
		Category:          req.Category,
		DifficultyLevel:   req.DifficultyLevel,
		EstimatedDuration: req.EstimatedDuration,
		IsActive:          true,
	}
	if err := s.ContentRepo.CreatePath(path); err != nil {
		return nil, err
	}
	return path, nil
}

type UpdatePathRequest struct {
	Title             *string           `json:"title"`
	Description       *string           `json:"description"`
	Category          *string           `json:"category"`
	DifficultyLevel   *model.Difficulty `json:"difficultyLevel" binding:"omitempty,oneof=beginner intermediate advanced"`
	EstimatedDuration *string           `json:"estimatedDuration"`
	IsActive          *bool             `json:"isActive"`
}

func (s *ContentService) UpdatePath(id uint, req UpdatePathRequest) (*model.LearningPath, error) {
	path, err := s.ContentRepo.FindPathByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrPathNotFound
		}
		return nil, err
	}

	if req.Title != nil {
		path.Title = *req.Title
	}
	if req.Description != nil {
		path.Description = *req.Description
	}
	if req.Category != nil {
		path.Category = *req.Category
	}
	if req.DifficultyLevel != nil {
		path.DifficultyLevel = *req.DifficultyLevel
	}
	if req.EstimatedDuration != nil {
		path.EstimatedDuration = *req.EstimatedDuration
	}
	if req.IsActive != nil {
		path.IsActive = *req.IsActive
	}

	if err := s.ContentRepo.UpdatePath(path); err != nil {
		return nil, err
	}
	return path, nil
}

type CreateModuleRequest struct {
	PathID      uint   `json:"pathId" binding:"required"`
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Order       int    `json:"order"`
}

func (s *ContentService) CreateModule(req CreateModuleRequest) (*model.LearningModule, error) {
	if _, err := s.ContentRepo.FindPathByID(req.PathID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrPathNotFound
		}
		return nil, err
	}
	module := &model.LearningModule{
		PathID:      req.PathID,
		Title:       req.Title,
		Description: req.Description,
		Order:       req.Order,
	}
	if err := s.ContentRepo.CreateModule(module); err != nil {
		return nil, err
	}
	return module, nil
}

type CreateLessonRequest struct {
	ModuleID      uint             `json:"moduleId" binding:"required"`
	Title         string           `json:"title" binding:"required"`
	Content       string           `json:"content"`
	LessonType    model.LessonType `json:"lessonType" binding:"omitempty,oneof=lesson quiz project"`
	QuizData      json.RawMessage  `json:"quizData"`
	XPReward      int              `json:"xpReward" binding:"min=0"`
	SPReward      int              `json:"spReward" binding:"min=0"`
	Order         int              `json:"order"`
	EstimatedTime int              `json:"estimatedTime"`
}

func (s *ContentService) CreateLesson(req CreateLessonRequest) (*model.Lesson, error) {
	lessonType := req.LessonType
	if lessonType == "" {
		lessonType = model.LessonTypeLesson
	}
	lesson := &model.Lesson{
		ModuleID:      req.ModuleID,
		Title:         req.Title,
		Content:       req.Content,
		LessonType:    lessonType,
		QuizData:      datatypes.JSON(req.QuizData),
		XPReward:      req.XPReward,
		SPReward:      req.SPReward,
		Order:         req.Order,
		EstimatedTime: req.EstimatedTime,
	}
	if err := s.ContentRepo.CreateLesson(lesson); err != nil {
		return nil, err
	}
	return lesson, nil
}

type UpdateLessonRequest struct {
	Title         *string         `json:"title"`
	Content       *string         `json:"content"`
	QuizData      json.RawMessage `json:"quizData"`
	Order         *int            `json:"order"`
	EstimatedTime *int            `json:"estimatedTime"`
}

// UpdateLesson 课时内容可编辑，但奖励值不可变：
// 已发放的奖励固化在完成记录里，不随编辑回溯
func (s *ContentService) UpdateLesson(id uint, req UpdateLessonRequest) (*model.Lesson, error) {
	lesson, err := s.ContentRepo.FindLessonByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrLessonNotFound
		}
		return nil, err
	}

	if req.Title != nil {
		lesson.Title = *req.Title
	}
	if req.Content != nil {
		lesson.Content = *req.Content
	}
	if req.QuizData != nil {
		lesson.QuizData = datatypes.JSON(req.QuizData)
	}
	if req.Order != nil {
		lesson.Order = *req.Order
	}
	if req.EstimatedTime != nil {
		lesson.EstimatedTime = *req.EstimatedTime
	}

	if err := s.ContentRepo.UpdateLesson(lesson); err != nil {
		return nil, err
	}
	return lesson, nil
}

type CreateSkillTreeRequest struct {
	PathID      uint                   `json:"pathId" binding:"required"`
	Title       string                 `json:"title" binding:"required"`
	Description string                 `json:"description"`
	Nodes       []CreateSkillNodeInput `json:"nodes"`
}

type CreateSkillNodeInput struct {
	Title         string              `json:"title" binding:"required"`
	Description   string              `json:"description"`
	NodeType      model.SkillNodeType `json:"nodeType" binding:"omitempty,oneof=passive active"`
	SPCost        int                 `json:"spCost" binding:"min=0"`
	Prerequisites []int               `json:"prerequisites"` // 下标引用本请求内的其他节点
	PositionX     float64             `json:"positionX"`
	PositionY     float64             `json:"positionY"`
}

// CreateSkillTree 建树并写入全部节点。请求内用下标表达前置关系，
// 入库拿到 ID 后再固化；写入前跑一遍图校验，畸形图整体拒绝。
func (s *ContentService) CreateSkillTree(req CreateSkillTreeRequest) (*model.SkillTree, error) {
	for i, n := range req.Nodes {
		for _, ref := range n.Prerequisites {
			if ref < 0 || ref >= len(req.Nodes) || ref == i {
				return nil, fmt.Errorf("%w: node %d references invalid index %d", util.ErrMalformedGraph, i, ref)
			}
		}
	}

	tree := &model.SkillTree{
		PathID:      req.PathID,
		Title:       req.Title,
		Description: req.Description,
	}
	if err := s.SkillRepo.CreateTree(tree); err != nil {
		return nil, err
	}

	nodes := make([]model.SkillNode, len(req.Nodes))
	for i, n := range req.Nodes {
		nodeType := n.NodeType
		if nodeType == "" {
			nodeType = model.SkillNodePassive
		}
		nodes[i] = model.SkillNode{
			SkillTreeID: tree.ID,
			Title:       n.Title,
			Description: n.Description,
			NodeType:    nodeType,
			SPCost:      n.SPCost,
			PositionX:   n.PositionX,
			PositionY:   n.PositionY,
		}
		if err := s.SkillRepo.CreateNode(&nodes[i]); err != nil {
			return nil, err
		}
	}

	for i, n := range req.Nodes {
		if len(n.Prerequisites) == 0 {
			continue
		}
		prereqs := make([]uint, len(n.Prerequisites))
		for j, ref := range n.Prerequisites {
			prereqs[j] = nodes[ref].ID
		}
		nodes[i].Prerequisites = datatypes.NewJSONSlice(prereqs)
		if err := s.SkillRepo.UpdateNode(&nodes[i]); err != nil {
			return nil, err
		}
	}

	if err := ValidateTree(nodes); err != nil {
		// 不应该发生：下标引用在上面已经校验过自引用和越界
		logger.Log.Error("skill graph consistency violation", zap.Uint("treeId", tree.ID), zap.Error(err))
		return nil, err
	}

	s.invalidateTreeCache(req.PathID)
	tree.Nodes = nodes
	return tree, nil
}

type AddSkillNodeRequest struct {
	Title         string              `json:"title" binding:"required"`
	Description   string              `json:"description"`
	NodeType      model.SkillNodeType `json:"nodeType" binding:"omitempty,oneof=passive active"`
	SPCost        int                 `json:"spCost" binding:"min=0"`
	Prerequisites []uint              `json:"prerequisites"`
	PositionX     float64             `json:"positionX"`
	PositionY     float64             `json:"positionY"`
}

// AddSkillNode 向已有树追加节点，前置引用的是树内已存在的节点 ID。
// 先对“现有节点 + 新节点”组成的图做校验再落库。
func (s *ContentService) AddSkillNode(treeID uint, req AddSkillNodeRequest) (*model.SkillNode, error) {
	tree, err := s.SkillRepo.FindTreeByID(treeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrSkillTreeNotFound
		}
		return nil, err
	}

	nodeType := req.NodeType
	if nodeType == "" {
		nodeType = model.SkillNodePassive
	}
	node := model.SkillNode{
		SkillTreeID:   treeID,
		Title:         req.Title,
		Description:   req.Description,
		NodeType:      nodeType,
		SPCost:        req.SPCost,
		Prerequisites: datatypes.NewJSONSlice(req.Prerequisites),
		PositionX:     req.PositionX,
		PositionY:     req.PositionY,
	}

	// 新节点尚无 ID，用临时 ID 参与图校验
	candidate := node
	candidate.ID = maxNodeID(tree.Nodes) + 1
	if err := ValidateTree(append(append([]model.SkillNode{}, tree.Nodes...), candidate)); err != nil {
		return nil, err
	}

	if err := s.SkillRepo.CreateNode(&node); err != nil {
		return nil, err
	}

	s.invalidateTreeCache(tree.PathID)
	return &node, nil
}

func maxNodeID(nodes []model.SkillNode) uint {
	var max uint
	for _, n := range nodes {
		if n.ID > max {
			max = n.ID
		}
	}
	return max
}
