package handler

import (
	"errors"
	"net/http"
	"sync"

	"github.com/adminsys/backoffice/internal/model"
	"github.com/adminsys/backoffice/internal/pkg/apperrors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var bindingOnce sync.Once

// useJSONFieldNames makes gin's binding errors name fields as they appear in JSON.
func useJSONFieldNames() {
	bindingOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			model.UseJSONFieldNames(v)
		}
	})
}

func ok(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": data})
}

func okMessage(c *gin.Context, message string, data any) {
	body := gin.H{"success": true, "message": message}
	if data != nil {
		body["data"] = data
	}
	c.JSON(http.StatusOK, body)
}

func created(c *gin.Context, message string, data any) {
	c.JSON(http.StatusCreated, gin.H{"success": true, "message": message, "data": data})
}

// bindJSON binds the body into v. On failure the error is attached to c and false returned.
func bindJSON(c *gin.Context, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		_ = c.Error(bindError(err))
		return false
	}
	return true
}

func bindError(err error) *apperrors.AppError {
	var verr *model.ValidationError
	if errors.As(model.FieldErrors(err), &verr) {
		return apperrors.NewValidation("validation failed", verr.Fields)
	}
	return apperrors.NewInvalidRequest("invalid request body")
}
