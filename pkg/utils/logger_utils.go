package utils

import (
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// InitLogger initializes the global zerolog logger. LOG_FORMAT=json switches
// to raw JSON output for log collectors; the default console writer is for
// the terminals the association runs the server from. LOG_LEVEL accepts the
// usual zerolog level names.
func InitLogger() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMs

	if level, err := zerolog.ParseLevel(Getenv("LOG_LEVEL", "info")); err == nil {
		zerolog.SetGlobalLevel(level)
	}

	if Getenv("LOG_FORMAT", "console") == "json" {
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	} else {
		output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
		log.Logger = zerolog.New(output).With().Timestamp().Logger()
	}

	log.Info().Msg("Logger initialized")
}

// GinLogger is a middleware for Gin that logs requests using zerolog.
func GinLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		var event *zerolog.Event
		statusCode := c.Writer.Status()
		switch {
		case statusCode >= 500:
			event = log.Error()
		case statusCode >= 400:
			event = log.Warn()
		default:
			event = log.Info()
		}

		event.Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status_code", statusCode).
			Str("client_ip", c.ClientIP()).
			Str("latency", time.Since(start).String()).
			Str("user_agent", c.Request.UserAgent()).
			Msg("Request processed")
	}
}

// LogError logs an error with a context message. Nil errors are ignored.
func LogError(err error, message string) {
	if err != nil {
		log.Error().Err(err).Msg(message)
	}
}

// LogInfo logs an informational message with optional structured fields.
func LogInfo(message string, fields ...map[string]interface{}) {
	event := log.Info()
	for _, f := range fields {
		event = event.Fields(f)
	}
	event.Msg(message)
}

// LogDebug logs a debug message with optional structured fields.
func LogDebug(message string, fields ...map[string]interface{}) {
	event := log.Debug()
	for _, f := range fields {
		event = event.Fields(f)
	}
	event.Msg(message)
}
