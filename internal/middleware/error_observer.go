package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/adminsys/backoffice/internal/model"
	"github.com/adminsys/backoffice/internal/pkg/apperrors"
	"github.com/adminsys/backoffice/internal/service"
	"github.com/gin-gonic/gin"
)

// ErrorObserver records unhandled failures in the audit log. A recovered panic
// is turned into a 500 for ErrorHandler to render. Client errors (4xx AppError)
// are not recorded here.
func ErrorObserver(audit *service.AuditService) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			err, ok := r.(error)
			if !ok {
				err = fmt.Errorf("%v", r)
			}
			audit.LogError(RequestMeta(c), CurrentUser(c), err, model.ModuleSystem, string(debug.Stack()))
			_ = c.Error(apperrors.NewInternal(genericServerError, err))
			c.Abort()
		}()

		c.Next()

		for _, ge := range c.Errors {
			var appErr *apperrors.AppError
			if errors.As(ge.Err, &appErr) && appErr.HTTPStatus < http.StatusInternalServerError {
				continue
			}
			cause := ge.Err
			if appErr != nil && appErr.Cause != nil {
				cause = appErr.Cause
			}
			audit.LogError(RequestMeta(c), CurrentUser(c), cause, model.ModuleSystem, "")
		}
	}
}
