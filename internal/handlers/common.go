package handlers

import (
	"github.com/cyphera/remote-accounts/internal/middleware"
	"github.com/cyphera/remote-accounts/internal/types"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// sendError logs err and writes a JSON error body.
func sendError(c *gin.Context, statusCode int, message string, err error) {
	log := middleware.LogWithCorrelationID(c.Request.Context())
	fields := []zap.Field{
		zap.String("path", c.Request.URL.Path),
		zap.String("method", c.Request.Method),
		zap.Int("status", statusCode),
	}
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	if statusCode >= 500 {
		log.Error(message, fields...)
	} else {
		log.Warn(message, fields...)
	}
	resp := types.ErrorResponse{
		Error:         message,
		CorrelationID: middleware.GetCorrelationID(c),
	}
	if err != nil && statusCode < 500 {
		resp.Details = err.Error()
	}
	c.JSON(statusCode, resp)
}

func sendSuccess(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, data)
}
