package app

import (
	"math_edu_backend/docs"
	"math_edu_backend/internal/config"
	"math_edu_backend/internal/middleware"
	"math_edu_backend/internal/model"
	"math_edu_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 公共路由(无需登录)
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
	}

	// 调度接口：学习者身份来自 JWT
	scheduler := router.Group("/api/scheduler")
	scheduler.Use(middleware.AuthMiddleware(cfg))
	{
		scheduler.POST("/learners", c.scheduler.InitializeLearner)
		scheduler.GET("/state", c.scheduler.GetState)
		scheduler.GET("/next", c.scheduler.GetNextUnit)
		scheduler.POST("/rounds", c.scheduler.CompleteRound)
		scheduler.PUT("/paths/:pathId/difficulty", c.scheduler.UpdateDifficulty)

		scheduler.GET("/boundary-levels", c.mastery.ListBoundaryLevels)
		scheduler.GET("/boundary-levels/:level", c.mastery.GetBoundaryLevel)
		scheduler.GET("/mastery/:factId", c.mastery.GetMastery)
	}

	// 课程管理接口：仅管理员
	admin := router.Group("/api/admin")
	admin.Use(middleware.AuthMiddleware(cfg), middleware.RoleMiddleware(model.RoleAdmin))
	{
		admin.POST("/units", c.curriculum.CreateUnit)
		admin.POST("/paths/:pathId/compress", c.curriculum.CompressPath)
		admin.POST("/curriculum/import", c.curriculum.ImportPack)
	}
}
