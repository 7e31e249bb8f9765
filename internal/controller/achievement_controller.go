package controller

import (
	"strconv"

	"levelup_backend/internal/service"
	"levelup_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AchievementController struct {
	AchievementService *service.AchievementService
}

func NewAchievementController(achievementService *service.AchievementService) *AchievementController {
	return &AchievementController{AchievementService: achievementService}
}

// GetUserAchievements godoc
// @Summary 获取成就与排行榜
// @Description 当前用户的 XP/SP/等级、已获徽章与 XP 排行榜
// @Tags 成就
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=service.UserAchievements} "成功"
// @Failure 401 {object} util.Response "未授权"
// @Router /api/achievements [get]
func (c *AchievementController) GetUserAchievements(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	achievements, err := c.AchievementService.GetUserAchievements(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, achievements)
}

// ListDefinitions godoc
// @Summary 获取全部成就定义
// @Tags 成就
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.Achievement} "成功"
// @Router /api/achievements/definitions [get]
func (c *AchievementController) ListDefinitions(ctx *gin.Context) {
	definitions, err := c.AchievementService.ListDefinitions()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, definitions)
}

// GetLeaderboard godoc
// @Summary 获取 XP 排行榜
// @Tags 成就
// @Produce  json
// @Security ApiKeyAuth
// @Param   limit query int false "榜单长度，默认10"
// @Success 200 {object} util.Response{data=[]service.LeaderboardEntry} "成功"
// @Router /api/leaderboard [get]
func (c *AchievementController) GetLeaderboard(ctx *gin.Context) {
	limit, err := strconv.Atoi(ctx.DefaultQuery("limit", "10"))
	if err != nil || limit <= 0 || limit > 100 {
		limit = 10
	}

	leaderboard, err := c.AchievementService.GetLeaderboard(limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, leaderboard)
}
