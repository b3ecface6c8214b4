package middleware

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/aretw0/pfc/pkg/ports"
	"github.com/aretw0/pfc/pkg/schema"
)

type loggingMiddleware struct {
	next   ports.ChartStore
	logger *slog.Logger
}

// NewLoggingMiddleware logs every store call at debug level and failures at
// warn level. A missing chart is not a failure.
func NewLoggingMiddleware(logger *slog.Logger) Middleware {
	return func(next ports.ChartStore) ports.ChartStore {
		return &loggingMiddleware{next: next, logger: logger}
	}
}

func (m *loggingMiddleware) log(ctx context.Context, op, name string, began time.Time, err error) {
	level := slog.LevelDebug
	if err != nil && !errors.Is(err, ports.ErrChartNotFound) {
		level = slog.LevelWarn
	}
	attrs := []any{"op", op, "elapsed", time.Since(began)}
	if name != "" {
		attrs = append(attrs, "chart", name)
	}
	if err != nil {
		attrs = append(attrs, "error", err)
	}
	m.logger.Log(ctx, level, "store call", attrs...)
}

func (m *loggingMiddleware) Save(ctx context.Context, rec *schema.Chart) error {
	began := time.Now()
	err := m.next.Save(ctx, rec)
	m.log(ctx, "save", rec.Name, began, err)
	return err
}

func (m *loggingMiddleware) Load(ctx context.Context, name string) (*schema.Chart, error) {
	began := time.Now()
	rec, err := m.next.Load(ctx, name)
	m.log(ctx, "load", name, began, err)
	return rec, err
}

func (m *loggingMiddleware) Delete(ctx context.Context, name string) error {
	began := time.Now()
	err := m.next.Delete(ctx, name)
	m.log(ctx, "delete", name, began, err)
	return err
}

func (m *loggingMiddleware) List(ctx context.Context) ([]string, error) {
	began := time.Now()
	names, err := m.next.List(ctx)
	m.log(ctx, "list", "", began, err)
	return names, err
}
