// Package logger provides the shop's structured, levelled logger built on
// log/slog.
//
// WithCtx returns the per-request logger installed by the access-log
// middleware, so handler log lines carry the request_id:
//
//	log := logger.WithCtx(r.Context())
//	log.Info("role changed", "user_id", id, "role", role)
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/shashiranjanraj/laundry/config"
)

var (
	mu sync.RWMutex
	L  *slog.Logger
)

func init() {
	L = New(os.Stdout, config.AppEnv())
	slog.SetDefault(L)
}

// New builds a logger for env: JSON at INFO in production, text at DEBUG
// everywhere else.
func New(w io.Writer, env string) *slog.Logger {
	switch env {
	case "production", "prod":
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo}))
	case "test":
		return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelWarn}))
	default:
		return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
}

// Use replaces the base logger, e.g. to fan out to a MongoHandler.
func Use(l *slog.Logger) {
	mu.Lock()
	L = l
	mu.Unlock()
	slog.SetDefault(l)
}

// Base returns the current base logger.
func Base() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return L
}

// Tee adds h next to the current base handler.
func Tee(h slog.Handler) {
	Use(slog.New(NewMultiHandler(Base().Handler(), h)))
}

// ─────────────────────────────────────────────
// Context-aware logger
// ─────────────────────────────────────────────

type ctxKey struct{}

// WithCtx returns the logger stored in ctx by InjectLogger, or the base
// logger when none is present.
func WithCtx(ctx context.Context) *slog.Logger {
	if ctx != nil {
		if log, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok && log != nil {
			return log
		}
	}
	return Base()
}

// InjectLogger stores a *slog.Logger (pre-tagged with request_id) into ctx.
func InjectLogger(ctx context.Context, log *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, log)
}

// ─────────────────────────────────────────────
// Short-hand helpers (use base logger)
// ─────────────────────────────────────────────

func Debug(msg string, args ...any) { Base().Debug(msg, args...) }
func Info(msg string, args ...any)  { Base().Info(msg, args...) }
func Warn(msg string, args ...any)  { Base().Warn(msg, args...) }
func Error(msg string, args ...any) { Base().Error(msg, args...) }
