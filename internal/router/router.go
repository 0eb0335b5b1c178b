package router

import (
	"github.com/gin-gonic/gin"
	"github.com/habitlog/internal/handler"
)

// Setup 配置 Gin 引擎和路由
// 本服务只暴露 JSON API，页面渲染由外部消费方负责
func Setup(api *handler.API) *gin.Engine {
	r := gin.Default()

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	group := r.Group("/api")
	{
		group.GET("/habits", api.ListHabits)
		group.POST("/habits", api.CreateHabit)
		group.GET("/habits/:id", api.GetHabit)
		group.PUT("/habits/:id", api.UpdateHabit)
		group.POST("/habits/:id/deactivate", api.DeactivateHabit)

		group.PUT("/habits/:id/logs/:date", api.SetCompletion)
		group.GET("/habits/:id/logs", api.GetHabitLogs)
		group.GET("/logs/:date", api.GetDailyLogs)

		group.GET("/metrics/daily/:date", api.GetDailyCompletion)
		group.GET("/metrics/habits/:id", api.GetHabitMetrics)
		group.GET("/metrics/summary", api.GetPeriodSummary)
		group.GET("/metrics/weekly", api.GetWeeklyStats)
		group.GET("/metrics/monthly", api.GetMonthlyStats)

		group.GET("/export", api.ExportLogs)
	}

	return r
}
