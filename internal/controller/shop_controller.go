package controller

import (
	"errors"

	"levelup_backend/internal/service"
	"levelup_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ShopController struct {
	ShopService *service.ShopService
}

func NewShopController(shopService *service.ShopService) *ShopController {
	return &ShopController{ShopService: shopService}
}

// ListThemes godoc
// @Summary 获取主题商店列表
// @Description 全部上架主题，带当前用户的已购与激活标记
// @Tags 商店
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=service.ShopThemesResponse} "成功"
// @Router /api/shop/themes [get]
func (c *ShopController) ListThemes(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	themes, err := c.ShopService.ListThemes(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, themes)
}

type ThemeActionRequest struct {
	ThemeID string `json:"themeId" binding:"required"`
}

// PurchaseTheme godoc
// @Summary 购买主题
// @Description 花费 SP 购买主题；重复购买幂等返回
// @Tags 商店
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body ThemeActionRequest true "主题标识"
// @Success 200 {object} util.Response{data=service.PurchaseResult} "成功"
// @Failure 400 {object} util.Response "技能点不足"
// @Failure 404 {object} util.Response "主题不存在"
// @Router /api/shop/themes/purchase [post]
func (c *ShopController) PurchaseTheme(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req ThemeActionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.ShopService.PurchaseTheme(claims.UserID, req.ThemeID)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrThemeNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrInsufficientPoints):
			util.BadRequest(ctx, "技能点不足")
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	if result.AlreadyPurchased {
		util.SuccessWithMessage(ctx, util.ErrThemePurchased.Error(), result)
		return
	}
	util.Success(ctx, result)
}

// ActivateTheme godoc
// @Summary 激活主题
// @Description 切换当前激活主题，仅限已购主题（默认主题恒可用）
// @Tags 商店
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body ThemeActionRequest true "主题标识"
// @Success 200 {object} util.Response{data=object} "成功"
// @Failure 400 {object} util.Response "主题未购买"
// @Failure 404 {object} util.Response "主题不存在"
// @Router /api/shop/themes/activate [post]
func (c *ShopController) ActivateTheme(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req ThemeActionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.ShopService.ActivateTheme(claims.UserID, req.ThemeID); err != nil {
		switch {
		case errors.Is(err, util.ErrThemeNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrThemeNotPurchased):
			util.BadRequest(ctx, "主题未购买")
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, gin.H{"activeTheme": req.ThemeID})
}
