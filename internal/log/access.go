package log

import (
	"io"
	"time"

	"github.com/gorilla/handlers"
	"go.uber.org/zap"
)

// AccessLogger returns a gorilla/handlers log formatter that writes one
// structured entry per HTTP request to logger.
func AccessLogger(logger *zap.SugaredLogger) handlers.LogFormatter {
	return func(_ io.Writer, p handlers.LogFormatterParams) {
		logger.Infow("http request",
			"method", p.Request.Method,
			"path", p.URL.Path,
			"status", p.StatusCode,
			"size", p.Size,
			"remote_addr", p.Request.RemoteAddr,
			"user_agent", p.Request.UserAgent(),
			"duration_ms", time.Since(p.TimeStamp).Milliseconds(),
		)
	}
}
