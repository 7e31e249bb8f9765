package app

import (
	"levelup_backend/docs"
	"levelup_backend/internal/config"
	"levelup_backend/internal/middleware"
	"levelup_backend/internal/model"
	"levelup_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	a.registerPublicRoutes(router, c)

	// 2. 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg), middleware.ActivityMiddleware(repos.user))
	{
		a.registerStudentRoutes(authGroup, c)
		a.registerAdminRoutes(authGroup, c)
	}
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)
	}
}

func (a *App) registerStudentRoutes(rg *gin.RouterGroup, c *controllers) {
	// 用户资料与进度概览
	rg.GET("/profile", c.user.GetProfile)
	rg.PUT("/profile", c.user.UpdateProfile)
	rg.POST("/profile/avatar", c.user.UploadAvatar)
	rg.GET("/progress/summary", c.user.GetProgressSummary)

	// 内容浏览
	rg.GET("/paths", c.content.ListPaths)
	rg.GET("/paths/:id", c.content.GetPath)
	rg.GET("/paths/:id/skill-tree", c.content.GetSkillTree)

	// 进度引擎
	rg.POST("/lessons/:id/complete", c.progression.CompleteLesson)
	rg.POST("/skills/:id/unlock", c.progression.UnlockSkill)

	// 成就与排行榜
	rg.GET("/achievements", c.achievement.GetUserAchievements)
	rg.GET("/achievements/definitions", c.achievement.ListDefinitions)
	rg.GET("/leaderboard", c.achievement.GetLeaderboard)

	// 学习计划合成
	rg.POST("/learning-path/generate", c.learningPath.GeneratePath)
	rg.GET("/learning-path/history", c.learningPath.ListPlans)

	// 主题商店
	rg.GET("/shop/themes", c.shop.ListThemes)
	rg.POST("/shop/themes/purchase", c.shop.PurchaseTheme)
	rg.POST("/shop/themes/activate", c.shop.ActivateTheme)
}

func (a *App) registerAdminRoutes(rg *gin.RouterGroup, c *controllers) {
	admin := rg.Group("/admin")
	admin.Use(middleware.RoleMiddleware(model.Admin))
	{
		admin.POST("/paths", c.content.CreatePath)
		admin.PUT("/paths/:id", c.content.UpdatePath)
		admin.POST("/modules", c.content.CreateModule)
		admin.POST("/lessons", c.content.CreateLesson)
		admin.PUT("/lessons/:id", c.content.UpdateLesson)
		admin.POST("/skill-trees", c.content.CreateSkillTree)
		admin.POST("/skill-trees/:id/nodes", c.content.AddSkillNode)
	}
}
