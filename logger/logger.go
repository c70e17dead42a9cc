package logger

import (
	"io"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

var globalLogger = zerolog.New(os.Stdout).With().Timestamp().Logger()

// Init configures the process wide logger. Unknown levels fall back to info.
func Init(level string, pretty bool) {
	logLevel, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		logLevel = zerolog.InfoLevel
	}
	var output io.Writer = os.Stdout
	if pretty {
		output = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: "15:04:05"}
	}
	globalLogger = zerolog.New(output).Level(logLevel).With().Timestamp().Logger()
}

// SetOutput redirects the logger, keeping its level
func SetOutput(w io.Writer) {
	globalLogger = globalLogger.Output(w)
}

func Get() *zerolog.Logger {
	return &globalLogger
}

// Component returns a child logger tagged with the component name
func Component(name string) zerolog.Logger {
	return globalLogger.With().Str("component", name).Logger()
}

// GinMiddleware replaces gin's default request logger
func GinMiddleware() gin.HandlerFunc {
	log := Component("http")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		status := c.Writer.Status()
		event := log.Info()
		if status >= 500 {
			event = log.Error()
		} else if status >= 400 {
			event = log.Warn()
		}
		event.
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("duration", time.Since(start)).
			Str("request_id", c.GetString("request_id")).
			Msg("handled")
	}
}
