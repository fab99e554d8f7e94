package http

import (
	"fmt"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"go.uber.org/zap"
)

// Options tune the Echo instance built by NewEcho.
type Options struct {
	RequestTimeout time.Duration
	// LogLevel sets the level of Echo's own gommon logger.
	LogLevel string
}

// NewEcho builds the HTTP server: request ids, zap request logging, panic
// recovery, request timeout and contract validation in front of the routes.
func NewEcho(s *Server, logger *zap.Logger, opts Options) (*echo.Echo, error) {
	doc, err := LoadOpenAPI()
	if err != nil {
		return nil, err
	}
	validator, err := RequestValidator(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to create request validator: %w", err)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Logger.SetLevel(gommonLevel(opts.LogLevel))

	e.Use(
		middleware.RequestID(),
		RequestLogger(logger),
		middleware.Recover(),
		RequestTimeout(opts.RequestTimeout),
		validator,
	)

	RegisterHandlers(e, s)
	return e, nil
}

func gommonLevel(level string) log.Lvl {
	switch strings.ToLower(level) {
	case "debug":
		return log.DEBUG
	case "warn", "warning":
		return log.WARN
	case "error":
		return log.ERROR
	case "off":
		return log.OFF
	default:
		return log.INFO
	}
}
