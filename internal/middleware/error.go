package middleware

import (
	"net/http"

	"github.com/adminsys/backoffice/internal/pkg/apperrors"
	"github.com/adminsys/backoffice/internal/pkg/logger"
	"github.com/gin-gonic/gin"
)

const genericServerError = "internal server error"

// ErrorHandler renders the last error attached with c.Error as the standard
// failure envelope. In release mode 5xx messages are replaced with a generic one.
func ErrorHandler(release bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		// Only handle if there are errors
		if len(c.Errors) == 0 {
			return
		}

		appErr := apperrors.Wrap(c.Errors.Last().Err)

		logFields := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"code", appErr.Type,
			"client_ip", c.ClientIP(),
		}
		if appErr.HTTPStatus >= http.StatusInternalServerError {
			logger.LogError(c.Request.Context(), appErr, "Internal Server Error", logFields...)
		} else {
			logger.Warn(appErr.Message, logFields...)
		}

		if c.Writer.Written() {
			return
		}

		message := appErr.Message
		if release && appErr.HTTPStatus >= http.StatusInternalServerError {
			message = genericServerError
		}
		body := gin.H{
			"success": false,
			"message": message,
			"code":    appErr.Type,
		}
		if len(appErr.Fields) > 0 {
			body["errors"] = appErr.Fields
		}
		c.JSON(appErr.HTTPStatus, body)
	}
}
