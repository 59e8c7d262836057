package logging

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
)

// New builds a timestamped logger at the named level ("debug", "info", "warn", "error").
func New(w io.Writer, level, prefix string) (*log.Logger, error) {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("parse log level %q: %w", level, err)
	}
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Level:           lvl,
		Prefix:          prefix,
	}), nil
}

// Gin logs one line per request through logger, replacing gin's default access log.
func Gin(logger *log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		kv := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"dur", time.Since(start).Round(time.Microsecond),
		}
		if len(c.Errors) > 0 {
			kv = append(kv, "errors", c.Errors.String())
		}
		switch {
		case status >= 500:
			logger.Error("request", kv...)
		case status >= 400:
			logger.Warn("request", kv...)
		default:
			logger.Debug("request", kv...)
		}
	}
}
