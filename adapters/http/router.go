package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/khoahotran/skillora/pkg/auth"
	"github.com/khoahotran/skillora/pkg/logger"
)

type RouterDeps struct {
	Goals           *GoalHandler
	Achievements    *AchievementHandler
	Recommendations *RecommendHandler
	Stats           *StatsHandler
	// Files is nil when no file storage is configured.
	Files *FileHandler
	// JWT is nil when bearer verification is disabled.
	JWT     *auth.JWTService
	Metrics http.Handler
	Logger  logger.Logger
}

func NewRouter(d RouterDeps) *gin.Engine {
	router := gin.New()
	// Titles in paths may contain escaped slashes.
	router.UseRawPath = true
	router.UnescapePathValues = true
	router.MaxMultipartMemory = 32 << 20

	router.Use(gin.Recovery(), RequestLogger(d.Logger), ErrorMiddleware(d.Logger))

	api := router.Group("/api")
	{
		public := api.Group("/")
		{
			public.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "UP"}) })
			if d.Metrics != nil {
				public.GET("/metrics", gin.WrapH(d.Metrics))
			}
			public.POST("/recommendations", d.Recommendations.Recommend)
			public.GET("/stats/skills", d.Stats.TopSkills)
		}

		private := api.Group("/")
		if d.JWT != nil {
			private.Use(AuthMiddleware(d.JWT, d.Logger))
		}
		{
			goals := private.Group("/goals")
			{
				goals.POST("/save", d.Goals.SaveGoals)
				goals.GET("/:userKey", d.Goals.ListGoals)
				goals.DELETE("/:userKey/:title", d.Goals.RemoveGoal)
			}

			achievements := private.Group("/achievements")
			{
				achievements.POST("/complete-skill", d.Achievements.CompleteSkill)
				achievements.POST("/add", d.Achievements.AddAchievement)
				achievements.GET("/:userKey", d.Achievements.ListAchievements)
				achievements.DELETE("/:userKey/:title", d.Achievements.RemoveAchievement)
			}

			if d.Files != nil {
				files := private.Group("/files")
				{
					files.POST("", d.Files.UploadFiles)
					files.DELETE("/:userKey/:publicId", d.Files.DeleteFile)
				}
			}
		}
	}

	return router
}
