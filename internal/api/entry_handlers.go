package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Kanaan7/NutritionTracker/internal"
	"github.com/Kanaan7/NutritionTracker/internal/service"
)

// PostNutrition logs a meal described in free text.
func PostNutrition(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body service.LogRequest
		if err := c.ShouldBindJSON(&body); err != nil {
			HandleError(c, app.Logger(), &internal.ValidationError{Message: "Invalid JSON: " + err.Error()}, "Invalid request")
			return
		}

		entry, err := app.Entries().Log(c.Request.Context(), &body)
		if err != nil {
			HandleError(c, app.Logger(), err, "Failed to log meal")
			return
		}

		HandleSuccess(c, app.Logger(), http.StatusOK, entry)
	}
}

func GetHistory(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		entries, err := app.Entries().History(c.Request.Context())
		if err != nil {
			HandleError(c, app.Logger(), err, "Failed to fetch history")
			return
		}
		HandleSuccess(c, app.Logger(), http.StatusOK, entries)
	}
}

func PatchHistory(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil {
			HandleError(c, app.Logger(), internal.NewValidationError("id", "%q is not an integer", c.Param("id")), "Invalid entry id")
			return
		}

		var body service.PatchRequest
		if err := c.ShouldBindJSON(&body); err != nil {
			HandleError(c, app.Logger(), &internal.ValidationError{Message: "Invalid JSON: " + err.Error()}, "Invalid request")
			return
		}

		entry, err := app.Entries().Patch(c.Request.Context(), id, body)
		if err != nil {
			HandleError(c, app.Logger(), err, "Failed to update entry")
			return
		}
		HandleSuccess(c, app.Logger(), http.StatusOK, entry)
	}
}

func GetDailyTotals(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		daily, err := app.Entries().DailyTotals(c.Request.Context())
		if err != nil {
			HandleError(c, app.Logger(), err, "Failed to aggregate history")
			return
		}
		HandleSuccess(c, app.Logger(), http.StatusOK, daily)
	}
}

// GetSummary totals a window of days against the goals. Query parameters:
// days (default 7), end (YYYY-MM-DD, default today) and keys (comma list).
func GetSummary(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		req := service.SummaryRequest{End: c.Query("end")}
		if v := c.Query("days"); v != "" {
			days, err := strconv.Atoi(v)
			if err != nil || days <= 0 {
				HandleError(c, app.Logger(), internal.NewValidationError("days", "%q is not a positive integer", v), "Invalid summary window")
				return
			}
			req.Days = days
		}
		if v := c.Query("keys"); v != "" {
			req.Keys = strings.Split(v, ",")
		}

		summary, err := app.Entries().Summary(c.Request.Context(), req)
		if err != nil {
			HandleError(c, app.Logger(), err, "Failed to build summary")
			return
		}
		HandleSuccess(c, app.Logger(), http.StatusOK, summary)
	}
}
