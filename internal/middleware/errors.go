package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apperrors "github.com/charlesng35/notesd/pkg/errors"
	"github.com/charlesng35/notesd/pkg/logger"
	"github.com/charlesng35/notesd/pkg/response"
)

// ErrorHandler renders the last error recorded with c.Error. Authentication
// failures always clear both credential cookies.
func ErrorHandler(jar *CookieJar) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		appErr := apperrors.FromError(c.Errors.Last().Err)
		if appErr.Kind == apperrors.KindUnauthorized && jar != nil {
			jar.Clear(c)
		}

		if appErr.StatusCode >= http.StatusInternalServerError {
			logger.WithModule("http").Error("request failed",
				zap.String("method", c.Request.Method),
				zap.String("path", c.Request.URL.Path),
				zap.Error(appErr),
			)
		}

		if c.Writer.Written() {
			return
		}
		response.Error(c, appErr)
	}
}
