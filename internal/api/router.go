package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter wires every route onto a fresh gin engine.
func NewRouter(app App) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(AccessLogMiddleware(app.Logger()))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.POST("/api/nutrition", PostNutrition(app))
	r.GET("/api/history", GetHistory(app))
	r.GET("/api/history/daily", GetDailyTotals(app))
	r.PATCH("/api/history/:id", PatchHistory(app))
	r.GET("/api/summary", GetSummary(app))
	r.GET("/api/goals", GetGoals(app))
	r.PUT("/api/goals", PutGoals(app))

	return r
}
