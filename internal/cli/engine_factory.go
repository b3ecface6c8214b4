package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/pfc"
	"github.com/aretw0/pfc/internal/config"
	"github.com/aretw0/pfc/pkg/adapters/file"
	"github.com/aretw0/pfc/pkg/adapters/memory"
	"github.com/aretw0/pfc/pkg/adapters/postgres"
	"github.com/aretw0/pfc/pkg/adapters/redis"
	"github.com/aretw0/pfc/pkg/adapters/sqlite"
	"github.com/aretw0/pfc/pkg/observability"
	"github.com/aretw0/pfc/pkg/persistence/middleware"
	"github.com/aretw0/pfc/pkg/ports"
	"github.com/aretw0/pfc/pkg/schema"
	"github.com/aretw0/pfc/pkg/validator"
	"github.com/prometheus/client_golang/prometheus"
)

// Backend is an opened chart store together with its optional lock service
// and the function releasing its connections.
type Backend struct {
	Store  ports.ChartStore
	Locker ports.ChartLocker
	Close  func() error
}

func noClose() error { return nil }

// OpenStore opens the store backend selected by cfg.
func OpenStore(ctx context.Context, cfg *config.Config) (*Backend, error) {
	sc := cfg.Store
	codec, err := schema.CodecFor(sc.Codec)
	if err != nil {
		return nil, err
	}

	switch sc.Backend {
	case config.BackendMemory:
		return &Backend{Store: memory.NewStore(), Close: noClose}, nil

	case config.BackendFile:
		return &Backend{Store: file.New(sc.Dir, file.WithCodec(codec)), Close: noClose}, nil

	case config.BackendRedis:
		opts := []redis.Option{redis.WithCodec(codec)}
		if sc.Redis.Prefix != "" {
			opts = append(opts, redis.WithPrefix(sc.Redis.Prefix))
		}
		if sc.Redis.TTL > 0 {
			opts = append(opts, redis.WithTTL(sc.Redis.TTL))
		}
		store := redis.New(sc.Redis.Addr, sc.Redis.Password, sc.Redis.DB, opts...)
		if err := store.Client().Ping(ctx).Err(); err != nil {
			store.Close()
			return nil, fmt.Errorf("redis %s: %w", sc.Redis.Addr, err)
		}
		return &Backend{
			Store:  store,
			Locker: redis.NewLocker(store.Client(), sc.Redis.Prefix),
			Close:  store.Close,
		}, nil

	case config.BackendSQLite:
		store, err := sqlite.Open(sc.SQLite.Path, sqlite.WithCodec(codec))
		if err != nil {
			return nil, fmt.Errorf("sqlite %s: %w", sc.SQLite.Path, err)
		}
		return &Backend{Store: store, Close: store.Close}, nil

	case config.BackendPostgres:
		store, err := postgres.Connect(ctx, sc.Postgres.DSN)
		if err != nil {
			return nil, fmt.Errorf("postgres: %w", err)
		}
		return &Backend{Store: store, Close: func() error { store.Close(); return nil }}, nil
	}
	return nil, fmt.Errorf("unknown store backend %q", sc.Backend)
}

// NewEngine initializes a pfc engine over backend with the settings of cfg.
// When reg is non-nil, validation metrics are registered with it.
func NewEngine(cfg *config.Config, backend *Backend, logger *slog.Logger, reg prometheus.Registerer, hooks ...validator.Hooks) *pfc.Engine {
	validatorOpts := []validator.Option{validator.WithNested(cfg.Validate.Nested)}
	if reg != nil {
		hooks = append(hooks, observability.NewMetrics(reg).Hooks())
	}
	if len(hooks) > 0 {
		validatorOpts = append(validatorOpts, validator.WithHooks(chainHooks(hooks)))
	}

	mws := []middleware.Middleware{middleware.NewLoggingMiddleware(logger)}
	if cfg.Store.CacheTTL > 0 {
		mws = append(mws, middleware.NewCacheMiddleware(cfg.Store.CacheTTL))
	}

	opts := []pfc.Option{
		pfc.WithStore(middleware.Chain(backend.Store, mws...)),
		pfc.WithLogger(logger),
		pfc.WithChartOptions(cfg.ChartOptions()...),
		pfc.WithValidatorOptions(validatorOpts...),
		pfc.WithWorkers(cfg.Validate.Workers),
	}
	if backend.Locker != nil {
		opts = append(opts, pfc.WithLocker(backend.Locker))
	}
	return pfc.New(opts...)
}

// chainHooks fans every callback out to each of hs in order.
func chainHooks(hs []validator.Hooks) validator.Hooks {
	return validator.Hooks{
		OnFinding: func(ctx context.Context, f validator.Finding) {
			for _, h := range hs {
				if h.OnFinding != nil {
					h.OnFinding(ctx, f)
				}
			}
		},
		OnComplete: func(ctx context.Context, r *validator.Report) {
			for _, h := range hs {
				if h.OnComplete != nil {
					h.OnComplete(ctx, r)
				}
			}
		},
	}
}
