package controller

import (
	"strconv"

	"levelup_backend/internal/service"
	"levelup_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type LearningPathController struct {
	LearningPathService *service.LearningPathService
}

func NewLearningPathController(learningPathService *service.LearningPathService) *LearningPathController {
	return &LearningPathController{LearningPathService: learningPathService}
}

// GeneratePath godoc
// @Summary 生成个性化学习计划
// @Description AI 生成周计划，外部不可用时本地降级为模板计划，响应的 source 字段区分来源
// @Tags 学习计划
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body service.GeneratePathRequest true "学习目标与可用时间"
// @Success 200 {object} util.Response{data=service.LearningPlan} "成功"
// @Failure 400 {object} util.Response "请求参数错误"
// @Router /api/learning-path/generate [post]
func (c *LearningPathController) GeneratePath(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.GeneratePathRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	plan := c.LearningPathService.GenerateLearningPath(ctx.Request.Context(), claims.UserID, req)
	util.Success(ctx, plan)
}

// ListPlans godoc
// @Summary 获取历史生成的学习计划
// @Tags 学习计划
// @Produce  json
// @Security ApiKeyAuth
// @Param   limit query int false "返回条数，默认20，最大50"
// @Success 200 {object} util.Response{data=[]model.GeneratedPlan} "成功"
// @Router /api/learning-path/history [get]
func (c *LearningPathController) ListPlans(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))

	plans, err := c.LearningPathService.ListPlans(claims.UserID, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, plans)
}
