package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"levelup_backend/internal/model"
	"levelup_backend/pkg/logger"
	"levelup_backend/pkg/monitoring"

	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// PathGenerator 外部 AI 协作方的最小接口，便于在测试中替换
type PathGenerator interface {
	Chat(ctx context.Context, prompt string) (string, error)
}

// PlanStore 生成计划的留存接口
type PlanStore interface {
	Create(plan *model.GeneratedPlan) error
	ListByUser(userID uint, limit int) ([]model.GeneratedPlan, error)
}

// LearningPathService 学习计划合成器：构造提示词调用外部 AI，
// 对响应做严格解析与结构校验；任何一步失败都本地降级到确定性模板，
// 调用方永远拿到一份结构合法的计划，外部失败只体现在 source 标记上。
type LearningPathService struct {
	AI       PathGenerator
	PlanRepo PlanStore
}

func NewLearningPathService(ai PathGenerator, planRepo PlanStore) *LearningPathService {
	return &LearningPathService{AI: ai, PlanRepo: planRepo}
}

type GeneratePathRequest struct {
	Goal            string `json:"goal" binding:"required"`
	HoursPerWeek    int    `json:"hoursPerWeek" binding:"required,min=1"`
	ExperienceLevel string `json:"experienceLevel" binding:"required,oneof=beginner intermediate advanced"`
}

type PlanPhase struct {
	Week      int      `json:"week"`
	Title     string   `json:"title"`
	Topics    []string `json:"topics"`
	Resources []string `json:"resources"`
	Time      string   `json:"time"`
}

type LearningPlan struct {
	Duration string           `json:"duration"`
	Phases   []PlanPhase      `json:"phases"`
	Source   model.PlanSource `json:"source"`
}

// GenerateLearningPath 永不失败：AI 路径或回退路径二选一
func (s *LearningPathService) GenerateLearningPath(ctx context.Context, userID uint, req GeneratePathRequest) *LearningPlan {
	plan, err := s.generateFromAI(ctx, req)
	if err != nil {
		// GenerationUnavailable：超时、传输失败、非 JSON、结构不合法，统一本地降级
		logger.Log.Warn("learning path generation unavailable, using fallback",
			zap.Uint("userId", userID),
			zap.String("goal", req.Goal),
			zap.Error(err))
		plan = fallbackPlan(req)
	}

	monitoring.PlanGenerations.WithLabelValues(string(plan.Source)).Inc()
	s.persistPlan(userID, req, plan)
	return plan
}

func (s *LearningPathService) generateFromAI(ctx context.Context, req GeneratePathRequest) (*LearningPlan, error) {
	raw, err := s.AI.Chat(ctx, buildPrompt(req))
	if err != nil {
		return nil, err
	}

	cleaned := stripMarkdownFences(raw)

	var plan LearningPlan
	if err := json.Unmarshal([]byte(cleaned), &plan); err != nil {
		return nil, fmt.Errorf("non-JSON response: %w", err)
	}

	if err := validatePlan(&plan); err != nil {
		return nil, err
	}

	plan.Source = model.PlanSourceAI
	return &plan, nil
}

func (s *LearningPathService) persistPlan(userID uint, req GeneratePathRequest, plan *LearningPlan) {
	raw, err := json.Marshal(plan)
	if err != nil {
		logger.Log.Error("failed to marshal generated plan", zap.Error(err))
		return
	}
	record := &model.GeneratedPlan{
		UserID:          userID,
		Goal:            req.Goal,
		HoursPerWeek:    req.HoursPerWeek,
		ExperienceLevel: req.ExperienceLevel,
		Source:          plan.Source,
		Plan:            datatypes.JSON(raw),
	}
	if err := s.PlanRepo.Create(record); err != nil {
		// 留存失败不影响返回结果
		logger.Log.Error("failed to persist generated plan", zap.Error(err))
	}
}

func (s *LearningPathService) ListPlans(userID uint, limit int) ([]model.GeneratedPlan, error) {
	if limit <= 0 || limit > 50 {
		limit = 20
	}
	return s.PlanRepo.ListByUser(userID, limit)
}

func buildPrompt(req GeneratePathRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Create a comprehensive personalized learning path for the following:\n")
	fmt.Fprintf(&b, "- Goal: %s\n", req.Goal)
	fmt.Fprintf(&b, "- Time available per week: %d hours\n", req.HoursPerWeek)
	fmt.Fprintf(&b, "- Prior experience: %s\n\n", req.ExperienceLevel)
	b.WriteString("Create a detailed week-by-week learning plan with at least 4-8 weeks. Each week should build upon the previous one.\n\n")
	b.WriteString("Provide the plan in exactly the following JSON format:\n")
	fmt.Fprintf(&b, `{
  "duration": "X weeks",
  "phases": [
    {"week": 1, "title": "...", "topics": ["topic1", "topic2"], "resources": ["resource1"], "time": "%d hours"}
  ]
}`, req.HoursPerWeek)
	b.WriteString("\n\nImportant:\n")
	b.WriteString("1. Include multiple weeks (at least 4-8 weeks)\n")
	b.WriteString("2. Make sure each week builds on previous knowledge\n")
	b.WriteString("3. Provide practical resources for each week\n")
	b.WriteString("4. Return ONLY valid JSON, no additional text or markdown\n")
	return b.String()
}

// stripMarkdownFences 去掉模型时常附带的 ```json 代码块包裹
func stripMarkdownFences(raw string) string {
	cleaned := strings.TrimSpace(raw)
	if strings.HasPrefix(cleaned, "```json") {
		cleaned = cleaned[len("```json"):]
	} else if strings.HasPrefix(cleaned, "```") {
		cleaned = cleaned[len("```"):]
	}
	cleaned = strings.TrimSuffix(strings.TrimSpace(cleaned), "```")
	return strings.TrimSpace(cleaned)
}

func validatePlan(plan *LearningPlan) error {
	if plan.Duration == "" {
		return fmt.Errorf("schema violation: missing duration")
	}
	if len(plan.Phases) == 0 {
		return fmt.Errorf("schema violation: empty phase list")
	}
	for i, phase := range plan.Phases {
		if phase.Week <= 0 {
			return fmt.Errorf("schema violation: phase %d has invalid week", i)
		}
		if phase.Title == "" {
			return fmt.Errorf("schema violation: phase %d missing title", i)
		}
		if len(phase.Topics) == 0 {
			return fmt.Errorf("schema violation: phase %d has no topics", i)
		}
		if phase.Time == "" {
			return fmt.Errorf("schema violation: phase %d missing time", i)
		}
	}
	return nil
}

var fallbackStages = []struct {
	title  string
	topics []string
}{
	{"Getting started", []string{"Basic concepts and setup", "Core terminology"}},
	{"Building foundations", []string{"Fundamental techniques", "Guided exercises"}},
	{"Intermediate concepts", []string{"Hands-on practice", "Common patterns"}},
	{"Advanced topics", []string{"Real-world applications", "Deep dives"}},
	{"Building your first project", []string{"Project planning", "Best practices"}},
	{"Testing and debugging", []string{"Testing strategies", "Code optimization"}},
	{"Consolidation", []string{"Review and practice", "Filling knowledge gaps"}},
	{"Final project", []string{"Capstone project", "Portfolio development"}},
}

// fallbackPlan 确定性模板计划，只依赖输入参数，不做任何外部调用。
// 周数由每周可用时长推导：时间越少，计划越长，范围固定在 4-8 周。
func fallbackPlan(req GeneratePathRequest) *LearningPlan {
	weeks := 48 / req.HoursPerWeek
	if weeks < 4 {
		weeks = 4
	}
	if weeks > 8 {
		weeks = 8
	}

	// 有经验的学习者跳过最前面的入门阶段
	offset := 0
	switch req.ExperienceLevel {
	case "intermediate":
		offset = 1
	case "advanced":
		offset = 2
	}

	phases := make([]PlanPhase, weeks)
	for i := 0; i < weeks; i++ {
		stage := fallbackStages[(offset+i)%len(fallbackStages)]
		topics := make([]string, 0, len(stage.topics)+1)
		topics = append(topics, fmt.Sprintf("%s: %s", stage.title, req.Goal))
		topics = append(topics, stage.topics...)
		phases[i] = PlanPhase{
			Week:      i + 1,
			Title:     stage.title,
			Topics:    topics,
			Resources: []string{"Official documentation", "Practice exercises"},
			Time:      fmt.Sprintf("%d hours", req.HoursPerWeek),
		}
	}

	return &LearningPlan{
		Duration: fmt.Sprintf("%d weeks", weeks),
		Phases:   phases,
		Source:   model.PlanSourceFallback,
	}
}
