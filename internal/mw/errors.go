package mw

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"silant-backend/internal/apperr"
	"silant-backend/internal/logger"
)

// ErrorHandler renders the last error a handler attached with c.Error.
// Validation failures are rendered as their field map; every other error as
// {"detail": message}.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		appErr := apperr.From(c.Errors.Last().Err)
		if appErr.HTTPStatus >= http.StatusInternalServerError {
			logger.L().Error("request failed",
				zap.String("code", appErr.Code),
				zap.String("request_id", GetRequestID(c)),
				zap.Error(appErr.Err),
			)
		}

		switch appErr.HTTPStatus {
		case http.StatusBadRequest:
			if len(appErr.Fields) > 0 {
				c.JSON(appErr.HTTPStatus, appErr.Fields)
				return
			}
		case http.StatusUnauthorized:
			c.Header("WWW-Authenticate", `Bearer realm="api"`)
		}
		c.JSON(appErr.HTTPStatus, gin.H{"detail": appErr.Message})
	}
}
