package controller

import (
	"errors"
	"strconv"

	"levelup_backend/internal/service"
	"levelup_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ContentController struct {
	ContentService *service.ContentService
}

func NewContentController(contentService *service.ContentService) *ContentController {
	return &ContentController{ContentService: contentService}
}

// ListPaths godoc
// @Summary 获取学习路径列表
// @Tags 内容
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.LearningPath} "成功"
// @Router /api/paths [get]
func (c *ContentController) ListPaths(ctx *gin.Context) {
	paths, err := c.ContentService.ListPaths()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, paths)
}

// GetPath godoc
// @Summary 获取学习路径详情
// @Description 含模块与课时的完整结构
// @Tags 内容
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "路径ID"
// @Success 200 {object} util.Response{data=model.LearningPath} "成功"
// @Failure 404 {object} util.Response "路径不存在"
// @Router /api/paths/{id} [get]
func (c *ContentController) GetPath(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "无效的路径ID")
		return
	}

	path, err := c.ContentService.GetPath(uint(id))
	if err != nil {
		if errors.Is(err, util.ErrPathNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, path)
}

// GetSkillTree godoc
// @Summary 获取技能树
// @Description 返回路径对应的技能树，节点带当前用户的解锁与可解锁标记
// @Tags 内容
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "路径ID"
// @Success 200 {object} util.Response{data=service.SkillTreeView} "成功"
// @Failure 404 {object} util.Response "技能树不存在"
// @Router /api/paths/{id}/skill-tree [get]
func (c *ContentController) GetSkillTree(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	pathID, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "无效的路径ID")
		return
	}

	view, err := c.ContentService.GetSkillTree(claims.UserID, uint(pathID))
	if err != nil {
		if errors.Is(err, util.ErrSkillTreeNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, view)
}

// CreatePath godoc
// @Summary 创建学习路径
// @Tags 编排
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body service.CreatePathRequest true "路径信息"
// @Success 201 {object} util.Response{data=model.LearningPath} "创建成功"
// @Failure 400 {object} util.Response "请求参数错误"
// @Failure 403 {object} util.Response "权限不足"
// @Router /api/admin/paths [post]
func (c *ContentController) CreatePath(ctx *gin.Context) {
	var req service.CreatePathRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	path, err := c.ContentService.CreatePath(req)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Created(ctx, path)
}

// UpdatePath godoc
// @Summary 更新学习路径
// @Tags 编排
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "路径ID"
// @Param   body body service.UpdatePathRequest true "字段更新"
// @Success 200 {object} util.Response{data=model.LearningPath} "成功"
// @Failure 404 {object} util.Response "路径不存在"
// @Router /api/admin/paths/{id} [put]
func (c *ContentController) UpdatePath(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "无效的路径ID")
		return
	}

	var req service.UpdatePathRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	path, err := c.ContentService.UpdatePath(uint(id), req)
	if err != nil {
		if errors.Is(err, util.ErrPathNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, path)
}

// CreateModule godoc
// @Summary 创建学习模块
// @Tags 编排
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body service.CreateModuleRequest true "模块信息"
// @Success 201 {object} util.Response{data=model.LearningModule} "创建成功"
// @Failure 404 {object} util.Response "路径不存在"
// @Router /api/admin/modules [post]
func (c *ContentController) CreateModule(ctx *gin.Context) {
	var req service.CreateModuleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	module, err := c.ContentService.CreateModule(req)
	if err != nil {
		if errors.Is(err, util.ErrPathNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Created(ctx, module)
}

// CreateLesson godoc
// @Summary 创建课时
// @Tags 编排
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body service.CreateLessonRequest true "课时信息"
// @Success 201 {object} util.Response{data=model.Lesson} "创建成功"
// @Failure 400 {object} util.Response "请求参数错误"
// @Router /api/admin/lessons [post]
func (c *ContentController) CreateLesson(ctx *gin.Context) {
	var req service.CreateLessonRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	lesson, err := c.ContentService.CreateLesson(req)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Created(ctx, lesson)
}

// UpdateLesson godoc
// @Summary 更新课时
// @Description 内容字段可编辑；奖励值不可变，已发放奖励不回溯
// @Tags 编排
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "课时ID"
// @Param   body body service.UpdateLessonRequest true "字段更新"
// @Success 200 {object} util.Response{data=model.Lesson} "成功"
// @Failure 404 {object} util.Response "课时不存在"
// @Router /api/admin/lessons/{id} [put]
func (c *ContentController) UpdateLesson(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "无效的课时ID")
		return
	}

	var req service.UpdateLessonRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	lesson, err := c.ContentService.UpdateLesson(uint(id), req)
	if err != nil {
		if errors.Is(err, util.ErrLessonNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, lesson)
}

// CreateSkillTree godoc
// @Summary 创建技能树
// @Description 整树建立，节点间前置关系用请求内下标表达；畸形图整体拒绝
// @Tags 编排
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body service.CreateSkillTreeRequest true "技能树结构"
// @Success 201 {object} util.Response{data=model.SkillTree} "创建成功"
// @Failure 400 {object} util.Response "图结构不合法"
// @Router /api/admin/skill-trees [post]
func (c *ContentController) CreateSkillTree(ctx *gin.Context) {
	var req service.CreateSkillTreeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	tree, err := c.ContentService.CreateSkillTree(req)
	if err != nil {
		if errors.Is(err, util.ErrMalformedGraph) {
			util.BadRequest(ctx, err.Error())
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Created(ctx, tree)
}

// AddSkillNode godoc
// @Summary 向技能树追加节点
// @Tags 编排
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "技能树ID"
// @Param   body body service.AddSkillNodeRequest true "节点信息"
// @Success 201 {object} util.Response{data=model.SkillNode} "创建成功"
// @Failure 400 {object} util.Response "图结构不合法"
// @Failure 404 {object} util.Response "技能树不存在"
// @Router /api/admin/skill-trees/{id}/nodes [post]
func (c *ContentController) AddSkillNode(ctx *gin.Context) {
	treeID, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "无效的技能树ID")
		return
	}

	var req service.AddSkillNodeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	node, err := c.ContentService.AddSkillNode(uint(treeID), req)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrSkillTreeNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrMalformedGraph):
			util.BadRequest(ctx, err.Error())
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Created(ctx, node)
}
