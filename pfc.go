package pfc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/pfc/internal/logging"
	"github.com/aretw0/pfc/pkg/adapters/memory"
	"github.com/aretw0/pfc/pkg/chart"
	"github.com/aretw0/pfc/pkg/expression"
	"github.com/aretw0/pfc/pkg/ports"
	"github.com/aretw0/pfc/pkg/validator"
	"golang.org/x/sync/errgroup"
)

// DefaultLockTTL bounds how long a structural edit may hold a chart lock.
const DefaultLockTTL = 30 * time.Second

// Engine is the high-level entry point for the pfc library. It loads charts
// from a ChartStore, validates them and persists structural edits.
type Engine struct {
	store         ports.ChartStore
	locker        ports.ChartLocker
	logger        *slog.Logger
	chartOpts     []chart.Option
	validatorOpts []validator.Option
	validator     *validator.Validator
	workers       int
	lockTTL       time.Duration
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithStore sets the chart store. Defaults to an in-memory store.
func WithStore(s ports.ChartStore) Option {
	return func(e *Engine) {
		e.store = s
	}
}

// WithLocker serializes Reduce and Flatten across processes sharing a store.
func WithLocker(l ports.ChartLocker) Option {
	return func(e *Engine) {
		e.locker = l
	}
}

// WithLockTTL sets the expiry of chart locks.
func WithLockTTL(ttl time.Duration) Option {
	return func(e *Engine) {
		e.lockTTL = ttl
	}
}

// WithLogger sets a custom structured logger for the engine, its charts and
// its validator.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithChartOptions sets the options used when charts are restored.
func WithChartOptions(opts ...chart.Option) Option {
	return func(e *Engine) {
		e.chartOpts = append(e.chartOpts, opts...)
	}
}

// WithValidatorOptions configures the validator (hooks, nesting).
func WithValidatorOptions(opts ...validator.Option) Option {
	return func(e *Engine) {
		e.validatorOpts = append(e.validatorOpts, opts...)
	}
}

// WithWorkers bounds the number of concurrent validations in ValidateAll.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		e.workers = n
	}
}

// New initializes a new Engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		workers: 4,
		lockTTL: DefaultLockTTL,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = logging.NewNop()
	}
	if e.store == nil {
		e.store = memory.NewStore()
	}
	if e.workers < 1 {
		e.workers = 1
	}
	e.validator = validator.New(append([]validator.Option{validator.WithLogger(e.logger)}, e.validatorOpts...)...)
	return e
}

// Store returns the underlying chart store.
func (e *Engine) Store() ports.ChartStore {
	return e.store
}

// Load restores the chart stored under name.
func (e *Engine) Load(ctx context.Context, name string) (*chart.Chart, error) {
	rec, err := e.store.Load(ctx, name)
	if err != nil {
		return nil, err
	}
	opts := append([]chart.Option{
		chart.WithLogger(e.logger),
		chart.WithExpressionParser(expression.Parser),
	}, e.chartOpts...)
	c, err := chart.Restore(rec, opts...)
	if err != nil {
		return nil, fmt.Errorf("restore %s: %w", name, err)
	}
	return c, nil
}

// Save snapshots c and stores it under its name.
func (e *Engine) Save(ctx context.Context, c *chart.Chart) error {
	if err := e.store.Save(ctx, c.Snapshot()); err != nil {
		e.logger.Error("failed to save chart", "chart", c.Name(), "error", err)
		return err
	}
	return nil
}

// Delete removes the chart stored under name.
func (e *Engine) Delete(ctx context.Context, name string) error {
	return e.store.Delete(ctx, name)
}

// List returns the stored chart names in ascending order.
func (e *Engine) List(ctx context.Context) ([]string, error) {
	return e.store.List(ctx)
}

// ValidateChart validates an in-memory chart. c is not modified.
func (e *Engine) ValidateChart(ctx context.Context, c *chart.Chart) *validator.Report {
	return e.validator.Validate(ctx, c)
}

// Validate loads and validates the chart stored under name.
func (e *Engine) Validate(ctx context.Context, name string) (*validator.Report, error) {
	c, err := e.Load(ctx, name)
	if err != nil {
		return nil, err
	}
	return e.validator.Validate(ctx, c), nil
}

// ValidateAll validates the named charts concurrently, or every stored chart
// when no name is given. Reports come back in the order of names.
func (e *Engine) ValidateAll(ctx context.Context, names ...string) ([]*validator.Report, error) {
	if len(names) == 0 {
		var err error
		if names, err = e.store.List(ctx); err != nil {
			return nil, err
		}
	}
	reports := make([]*validator.Report, len(names))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i, name := range names {
		g.Go(func() error {
			r, err := e.Validate(gctx, name)
			if err != nil {
				return fmt.Errorf("validate %s: %w", name, err)
			}
			reports[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}

// Reduce removes the null nodes of the stored chart and saves the result.
// It returns the number of nodes removed.
func (e *Engine) Reduce(ctx context.Context, name string) (int, error) {
	removed := 0
	err := e.edit(ctx, name, func(c *chart.Chart) (bool, error) {
		removed = c.Reduce()
		return removed > 0, nil
	})
	return removed, err
}

// Flatten splices the nested action charts of the stored chart into it and
// saves the result.
func (e *Engine) Flatten(ctx context.Context, name string) error {
	return e.edit(ctx, name, func(c *chart.Chart) (bool, error) {
		return true, c.Flatten()
	})
}

// edit runs fn between a load and a save of the named chart, under its lock
// when a locker is configured. fn reports whether the chart changed.
func (e *Engine) edit(ctx context.Context, name string, fn func(*chart.Chart) (bool, error)) (err error) {
	if e.locker != nil {
		unlock, lerr := e.locker.Lock(ctx, "chart:"+name, e.lockTTL)
		if lerr != nil {
			return fmt.Errorf("lock %s: %w", name, lerr)
		}
		defer func() {
			err = errors.Join(err, unlock(context.WithoutCancel(ctx)))
		}()
	}

	c, err := e.Load(ctx, name)
	if err != nil {
		return err
	}
	changed, err := fn(c)
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}
	return e.Save(ctx, c)
}
