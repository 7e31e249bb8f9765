package controller

import (
	"errors"
	"strconv"

	"levelup_backend/internal/service"
	"levelup_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ProgressionController struct {
	ProgressionService *service.ProgressionService
}

func NewProgressionController(progressionService *service.ProgressionService) *ProgressionController {
	return &ProgressionController{ProgressionService: progressionService}
}

type CompleteLessonRequest struct {
	Score *int `json:"score" binding:"omitempty,min=0,max=100"`
}

// CompleteLesson godoc
// @Summary 完成课时
// @Description 记录课时完成并发放 XP/SP 奖励；重复提交幂等返回当前状态
// @Tags 进度
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "课时ID"
// @Param   body body CompleteLessonRequest false "可选的测验得分"
// @Success 200 {object} util.Response{data=service.CompletionResult} "成功"
// @Failure 404 {object} util.Response "课时不存在"
// @Router /api/lessons/{id}/complete [post]
func (c *ProgressionController) CompleteLesson(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	lessonID, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "无效的课时ID")
		return
	}

	var req CompleteLessonRequest
	if err := ctx.ShouldBindJSON(&req); err != nil && ctx.Request.ContentLength > 0 {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.ProgressionService.CompleteLesson(claims.UserID, uint(lessonID), req.Score)
	if err != nil {
		if errors.Is(err, util.ErrLessonNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	if result.AlreadyCompleted {
		util.SuccessWithMessage(ctx, util.ErrAlreadyCompleted.Error(), result)
		return
	}
	util.Success(ctx, result)
}

// UnlockSkill godoc
// @Summary 解锁技能节点
// @Description 花费 SP 解锁；检查顺序固定：存在性、已解锁、前置条件、余额
// @Tags 进度
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "技能节点ID"
// @Success 200 {object} util.Response{data=service.UnlockResult} "成功"
// @Failure 400 {object} util.Response "前置未满足或技能点不足"
// @Failure 404 {object} util.Response "节点不存在"
// @Router /api/skills/{id}/unlock [post]
func (c *ProgressionController) UnlockSkill(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	nodeID, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "无效的节点ID")
		return
	}

	result, err := c.ProgressionService.UnlockSkill(claims.UserID, uint(nodeID))
	if err != nil {
		switch {
		case errors.Is(err, util.ErrSkillNodeNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrPrerequisitesNotMet):
			util.BadRequest(ctx, "前置技能未解锁")
		case errors.Is(err, util.ErrInsufficientPoints):
			util.BadRequest(ctx, "技能点不足")
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	if result.AlreadyUnlocked {
		util.SuccessWithMessage(ctx, util.ErrAlreadyUnlocked.Error(), result)
		return
	}
	util.Success(ctx, result)
}
