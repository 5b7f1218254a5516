package api

import (
	"context"
	"log/slog"
	"time"

	"salesdash/internal/config"
	"salesdash/internal/log"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	gommonlog "github.com/labstack/gommon/log"
	"golang.org/x/time/rate"
)

// NewServer builds the echo instance with middleware and routes registered.
func NewServer(cfg *config.Config, h *Handler, logger *log.Logger) *echo.Echo {
	httpLog := logger.WithComponent(log.ComponentHTTP)

	// 1. Initialize Echo
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.JSONSerializer = jsonSerializer{}
	level, _ := log.ParseLevel(cfg.Log.Level)
	e.Logger.SetLevel(gommonLevel(level))

	// 2. Middleware: request id first so every later log line can carry it
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			lvl := slog.LevelInfo
			if v.Status >= 500 {
				lvl = slog.LevelError
			}
			attrs := []slog.Attr{
				slog.String(log.FieldRequestID, v.RequestID),
				slog.String(log.FieldMethod, v.Method),
				slog.String(log.FieldPath, v.URI),
				slog.Int(log.FieldStatus, v.Status),
				slog.Int64(log.FieldDuration, v.Latency.Milliseconds()),
			}
			if v.Error != nil {
				attrs = append(attrs, slog.String(log.FieldError, v.Error.Error()))
			}
			httpLog.LogAttrs(context.Background(), lvl, "request", attrs...)
			return nil
		},
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{AllowOrigins: cfg.Server.AllowOrigins}))
	if cfg.Server.RateLimit > 0 {
		burst := max(1, int(cfg.Server.RateLimit))
		e.Use(middleware.RateLimiter(middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(cfg.Server.RateLimit),
			Burst:     burst,
			ExpiresIn: 3 * time.Minute,
		})))
	}

	// 3. Routes
	h.RegisterRoutes(e)
	return e
}

func gommonLevel(l slog.Level) gommonlog.Lvl {
	switch {
	case l <= slog.LevelDebug:
		return gommonlog.DEBUG
	case l <= slog.LevelInfo:
		return gommonlog.INFO
	case l <= slog.LevelWarn:
		return gommonlog.WARN
	default:
		return gommonlog.ERROR
	}
}
