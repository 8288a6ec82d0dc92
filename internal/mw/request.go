package mw

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"silant-backend/internal/logger"
)

// RequestIDHeader is the HTTP header for request tracing.
const RequestIDHeader = "X-Request-ID"

const ctxKeyRequestID = "request_id"

// RequestID reuses the caller's X-Request-ID or assigns a new one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(RequestIDHeader)
		if rid == "" {
			id, err := uuid.NewV7()
			if err != nil {
				id = uuid.New()
			}
			rid = id.String()
		}
		c.Set(ctxKeyRequestID, rid)
		c.Writer.Header().Set(RequestIDHeader, rid)
		c.Next()
	}
}

// GetRequestID returns the request id assigned by RequestID.
func GetRequestID(c *gin.Context) string {
	return c.GetString(ctxKeyRequestID)
}

// AccessLog writes one line per request.
func AccessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.String("uri", c.Request.URL.RequestURI()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
			zap.String("request_id", GetRequestID(c)),
		}
		if actor := Actor(c); actor != nil {
			fields = append(fields, zap.Uint("actor_id", actor.ID))
		}
		switch status := c.Writer.Status(); {
		case status >= 500:
			logger.L().Error("request", fields...)
		case status >= 400:
			logger.L().Warn("request", fields...)
		default:
			logger.L().Info("request", fields...)
		}
	}
}
