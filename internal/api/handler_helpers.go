package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Kanaan7/NutritionTracker/internal"
	"github.com/Kanaan7/NutritionTracker/internal/response"
)

// HandleError classifies err and writes it as a structured failure.
func HandleError(c *gin.Context, logger internal.Logger, err error, msg string) {
	requestID := c.GetString("request_id")
	appErr := internal.ToAppError(err)
	if appErr.Code >= http.StatusInternalServerError {
		logger.Errorf("[request_id=%s] %s: %v", requestID, msg, err)
	} else {
		logger.Warnf("[request_id=%s] %s: %v", requestID, msg, err)
	}
	c.JSON(appErr.Code, response.Failure(appErr, requestID))
}

func HandleSuccess(c *gin.Context, logger internal.Logger, status int, data interface{}) {
	requestID := c.GetString("request_id")
	logger.Debugf("[request_id=%s] Success", requestID)
	c.JSON(status, data)
}
