package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Kanaan7/NutritionTracker/internal"
	"github.com/Kanaan7/NutritionTracker/internal/service"
)

func GetGoals(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		goals, err := app.Goals().Goals(c.Request.Context())
		if err != nil {
			HandleError(c, app.Logger(), err, "Failed to fetch goals")
			return
		}
		HandleSuccess(c, app.Logger(), http.StatusOK, gin.H{"goals": goals})
	}
}

func PutGoals(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req service.GoalRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleError(c, app.Logger(), &internal.ValidationError{Message: "Invalid JSON: " + err.Error()}, "Invalid request")
			return
		}

		goals, err := app.Goals().Set(c.Request.Context(), &req)
		if err != nil {
			HandleError(c, app.Logger(), err, "Failed to save goals")
			return
		}
		HandleSuccess(c, app.Logger(), http.StatusOK, gin.H{"goals": goals})
	}
}
