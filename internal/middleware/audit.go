package middleware

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/adminsys/backoffice/internal/model"
	"github.com/adminsys/backoffice/internal/service"
	"github.com/gin-gonic/gin"
)

// 路径前缀到模块的映射，按顺序匹配
var modulePrefixes = []struct {
	prefix string
	module model.Module
}{
	{"/api/auth", model.ModuleAuth},
	{"/api/users", model.ModuleUser},
	{"/api/todos", model.ModuleTodo},
	{"/api/notices", model.ModuleNotice},
	{"/api/logs", model.ModuleSystem},
}

// RequestLogger records one audit entry per completed request. It must be the
// first middleware so the final status code, including rendered errors, is seen.
// The write is asynchronous and never alters the response.
func RequestLogger(audit *service.AuditService, skipPaths []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if skipped(path, skipPaths) {
			c.Next()
			return
		}
		start := time.Now()

		// === 执行业务逻辑 ===
		c.Next()

		code := c.Writer.Status()
		elapsed := time.Since(start).Milliseconds()
		method := c.Request.Method

		entry := &model.AuditEntry{
			ActionType:  actionFor(method),
			Module:      moduleFor(path, code),
			Description: fmt.Sprintf("%s %s - %d (%dms)", method, path, code, elapsed),
			Status:      statusFor(code),
			IP:          c.ClientIP(),
			UserAgent:   c.Request.UserAgent(),
			Details: model.NewRequestDetails(model.RequestDetails{
				Method:     method,
				Path:       path,
				Query:      queryOf(c),
				StatusCode: code,
				DurationMs: elapsed,
				Timestamp:  start.UTC(),
			}),
		}
		if user := CurrentUser(c); user != nil {
			id := user.ID
			entry.UserID = &id
			entry.Username = user.Username
		}

		// 异步写入，不阻塞响应
		audit.Submit(entry)
	}
}

// moduleFor maps the request path to a module. Authentication rejections are
// attributed to AUTH whatever the path.
func moduleFor(path string, code int) model.Module {
	if code == http.StatusUnauthorized {
		return model.ModuleAuth
	}
	for _, p := range modulePrefixes {
		if hasPathPrefix(path, p.prefix) {
			return p.module
		}
	}
	return model.ModuleOther
}

// actionFor maps the HTTP method. Reads are recorded as SYSTEM.
func actionFor(method string) model.ActionType {
	switch method {
	case http.MethodGet:
		return model.ActionSystem
	case http.MethodPost:
		return model.ActionCreate
	case http.MethodPut, http.MethodPatch:
		return model.ActionUpdate
	case http.MethodDelete:
		return model.ActionDelete
	default:
		return model.ActionOther
	}
}

func statusFor(code int) model.Status {
	return model.StatusFromSuccess(code >= 200 && code < 400)
}

func queryOf(c *gin.Context) map[string][]string {
	q := c.Request.URL.Query()
	if len(q) == 0 {
		return nil
	}
	return q
}

func skipped(path string, skipPaths []string) bool {
	for _, p := range skipPaths {
		if p != "" && hasPathPrefix(path, p) {
			return true
		}
	}
	return false
}

func hasPathPrefix(path, prefix string) bool {
	return path == prefix || strings.HasPrefix(path, strings.TrimSuffix(prefix, "/")+"/")
}
