package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/the1323/cs166-project-the033-hbai013/pkg/logger"
)

// Logger returns a middleware that logs ops requests. Successful probes
// are logged at debug level so a scraping Prometheus does not flood the log.
func Logger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		reqLog := requestLogger(c, log)
		status := c.Writer.Status()
		event := reqLog.ZL.Debug()
		switch {
		case status >= 500:
			event = reqLog.ZL.Error()
		case status >= 400:
			event = reqLog.ZL.Warn()
		}
		event.
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Msg("Request processed")
	}
}
