// Package config loads pfc settings from defaults, pfc.yaml, PFC_ environment
// variables and command-line flags, in increasing order of precedence.
package config

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/aretw0/pfc/pkg/chart"
)

// Store backends.
const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendRedis    = "redis"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// Backends lists the supported store backends.
var Backends = []string{BackendMemory, BackendFile, BackendRedis, BackendSQLite, BackendPostgres}

// Config holds all pfc configuration options.
type Config struct {
	Store     StoreConfig     `koanf:"store"`
	Naming    NamingConfig    `koanf:"naming"`
	Structure StructureConfig `koanf:"structure"`
	Log       LogConfig       `koanf:"log"`
	HTTP      HTTPConfig      `koanf:"http"`
	Validate  ValidateConfig  `koanf:"validate"`
}

// StoreConfig selects and parameterizes the chart store.
type StoreConfig struct {
	Backend string `koanf:"backend"`
	Dir     string `koanf:"dir"`
	Codec   string `koanf:"codec"`
	// CacheTTL keeps loaded charts in memory for this long when positive.
	CacheTTL time.Duration  `koanf:"cache_ttl"`
	Redis    RedisConfig    `koanf:"redis"`
	SQLite   SQLiteConfig   `koanf:"sqlite"`
	Postgres PostgresConfig `koanf:"postgres"`
}

// RedisConfig configures the Redis store.
type RedisConfig struct {
	Addr     string        `koanf:"addr"`
	Password string        `koanf:"password"`
	DB       int           `koanf:"db"`
	Prefix   string        `koanf:"prefix"`
	TTL      time.Duration `koanf:"ttl"`
}

// SQLiteConfig configures the SQLite store.
type SQLiteConfig struct {
	Path string `koanf:"path"`
}

// PostgresConfig configures the Postgres store.
type PostgresConfig struct {
	DSN string `koanf:"dsn"`
}

// NamingConfig drives the element factory.
type NamingConfig struct {
	StepPrefix       string `koanf:"step_prefix"`
	TransitionPrefix string `koanf:"transition_prefix"`
	LinkPrefix       string `koanf:"link_prefix"`
	// Seed enables repeatable identifiers when non-zero.
	Seed uint64 `koanf:"seed"`
}

// StructureConfig tunes structure updates.
type StructureConfig struct {
	BreadthFirst bool `koanf:"breadth_first"`
	PruneOrphans bool `koanf:"prune_orphans"`
}

// LogConfig configures the application logger.
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// HTTPConfig configures the chart API server.
type HTTPConfig struct {
	Addr string `koanf:"addr"`
}

// ValidateConfig configures batch validation.
type ValidateConfig struct {
	Workers int  `koanf:"workers"`
	Nested  bool `koanf:"nested"`
}

// Defaults returns the default settings as a flat koanf map.
func Defaults() map[string]any {
	return map[string]any{
		"store.backend":            BackendFile,
		"store.dir":                ".pfc/charts",
		"store.codec":              "yaml",
		"store.cache_ttl":          "0s",
		"store.redis.addr":         "localhost:6379",
		"store.redis.prefix":       "pfc:chart:",
		"store.redis.ttl":          "0s",
		"store.sqlite.path":        ".pfc/charts.db",
		"naming.step_prefix":       chart.DefaultStepPrefix,
		"naming.transition_prefix": chart.DefaultTransitionPrefix,
		"naming.link_prefix":       chart.DefaultLinkPrefix,
		"naming.seed":              0,
		"structure.breadth_first":  true,
		"structure.prune_orphans":  true,
		"log.level":                "info",
		"log.format":               "text",
		"http.addr":                ":8080",
		"validate.workers":         4,
		"validate.nested":          true,
	}
}

// Check checks the settings for values no component can work with.
func (c *Config) Check() error {
	if !slices.Contains(Backends, c.Store.Backend) {
		return fmt.Errorf("unknown store backend %q (want one of %s)", c.Store.Backend, strings.Join(Backends, ", "))
	}
	if c.Store.Backend == BackendPostgres && c.Store.Postgres.DSN == "" {
		return fmt.Errorf("store.postgres.dsn is required for the postgres backend")
	}
	if c.Validate.Workers < 1 {
		return fmt.Errorf("validate.workers must be at least 1, got %d", c.Validate.Workers)
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.Log.Format)
	}
	return nil
}

// ChartOptions translates naming and structure settings into chart options.
func (c *Config) ChartOptions() []chart.Option {
	factoryOpts := []chart.FactoryOption{
		chart.WithPrefixes(c.Naming.StepPrefix, c.Naming.TransitionPrefix, c.Naming.LinkPrefix),
	}
	if c.Naming.Seed != 0 {
		factoryOpts = append(factoryOpts, chart.WithRepeatableIDs(c.Naming.Seed))
	}
	return []chart.Option{
		chart.WithFactory(chart.NewFactory(factoryOpts...)),
		chart.WithBreadthFirst(c.Structure.BreadthFirst),
		chart.WithOrphanPruning(c.Structure.PruneOrphans),
	}
}
