package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/the1323/cs166-project-the033-hbai013/pkg/logger"
)

const (
	HeaderXRequestID = "X-Request-ID"
	ContextRequestID = "request_id"

	maxRequestIDLen = 64
)

// RequestID tags each ops request with an id, reusing X-Request-ID when the
// caller sent a usable one. The id is echoed on the response and carried by
// a request-scoped logger that Logger and Recovery write through.
func RequestID(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := strings.TrimSpace(c.GetHeader(HeaderXRequestID))
		if rid == "" || len(rid) > maxRequestIDLen {
			rid = uuid.NewString()
		}

		c.Set(ContextRequestID, rid)
		c.Header(HeaderXRequestID, rid)

		reqLog := log.With(ContextRequestID, rid)
		c.Request = c.Request.WithContext(reqLog.WithContext(c.Request.Context()))
		c.Next()
	}
}

func requestLogger(c *gin.Context, fallback *logger.Logger) *logger.Logger {
	return logger.FromContext(c.Request.Context(), fallback)
}
