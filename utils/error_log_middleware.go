package utils

import (
	"favplaces/logger"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type errorLogWriter struct {
	gin.ResponseWriter
	gc  *gin.Context
	log *zerolog.Logger
}

func (w errorLogWriter) Write(b []byte) (int, error) {
	status := w.gc.Writer.Status()
	if status >= 400 {
		event := w.log.Warn()
		if status >= 500 {
			event = w.log.Error()
		}
		event.Int("status", status).Str("path", w.gc.Request.URL.Path).Bytes("body", b).Msg("error response")
	}
	return w.ResponseWriter.Write(b)
}

// ErrorLogMiddleware logs the body of error responses. Register it after gzip, it needs the plain body.
func ErrorLogMiddleware(c *gin.Context) {
	log := logger.Component("http")
	blw := &errorLogWriter{gc: c, ResponseWriter: c.Writer, log: &log}
	c.Writer = blw
	c.Next()
}
