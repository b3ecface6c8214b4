package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/pfc"
	"github.com/aretw0/pfc/internal/cli"
	"github.com/aretw0/pfc/internal/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "pfc",
	Short: "pfc validates Procedure Function Charts",
	Long: `pfc stores Procedure Function Charts and proves that they are
structurally executable: every node is reachable, every parallel branch
completes and every serial join is consistent.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	f := rootCmd.PersistentFlags()
	f.String("config", "", "Config file (default pfc.yaml)")
	f.String("store", config.BackendFile, "Chart store backend: memory, file, redis, sqlite or postgres")
	f.String("dir", ".pfc/charts", "Directory of the file store")
	f.String("codec", "yaml", "Record format: json, yaml or msgpack")
	f.String("redis-addr", "localhost:6379", "Redis address")
	f.String("sqlite-path", ".pfc/charts.db", "SQLite database path")
	f.String("postgres-dsn", "", "Postgres connection string")
	f.Uint64("seed", 0, "Seed for repeatable identifiers")
	f.Bool("breadth-first", true, "Assign ordinals breadth first (false for depth first)")
	f.String("log-level", "info", "Log level: debug, info, warn or error")
	f.String("log-format", "text", "Log format: text or json")
	f.Bool("debug", false, "Shorthand for --log-level=debug")
}

// session bundles what every command needs once flags are parsed.
type session struct {
	cfg     *config.Config
	logger  *slog.Logger
	backend *cli.Backend
	engine  *pfc.Engine
}

func (s *session) Close() {
	if err := s.backend.Close(); err != nil {
		s.logger.Warn("closing store failed", "error", err)
	}
}

type sessionOptions struct {
	registerer prometheus.Registerer
}

type sessionOption func(*sessionOptions)

// withMetrics registers validation metrics with reg.
func withMetrics(reg prometheus.Registerer) sessionOption {
	return func(o *sessionOptions) { o.registerer = reg }
}

// open loads the configuration of cmd and opens its store.
func open(cmd *cobra.Command, opts ...sessionOption) (*session, error) {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, used, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return nil, err
	}
	logger := cli.NewLogger(cfg)
	if used != "" {
		logger.Debug("config loaded", "file", used)
	}

	backend, err := cli.OpenStore(cmd.Context(), cfg)
	if err != nil {
		return nil, err
	}
	s := &session{cfg: cfg, logger: logger, backend: backend}
	var so sessionOptions
	for _, opt := range opts {
		opt(&so)
	}
	s.engine = cli.NewEngine(cfg, backend, logger, so.registerer)
	logger.Debug("store opened", "backend", cfg.Store.Backend)
	return s, nil
}
