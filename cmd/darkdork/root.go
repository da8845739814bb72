package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rsclarke/darkdork/internal/config"
	"github.com/rsclarke/darkdork/internal/events"
	"github.com/rsclarke/darkdork/internal/library"
	"github.com/rsclarke/darkdork/internal/logging"
	"github.com/rsclarke/darkdork/internal/repository"
)

var (
	logger     *zap.Logger
	cfg        *config.Config
	configPath string
	sessionID  = uuid.NewString()
)

var rootCmd = &cobra.Command{
	Use:   "darkdork",
	Short: "Search-query template library and reconnaissance tracker",
	Long: `darkdork manages a tagged catalog of search-query templates ("dorks")
and keeps a local record of the searches run with them, the results they
returned and the findings raised from those results.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		logger, err = logging.New(cfg.Logging())
		if err != nil {
			return fmt.Errorf("initializing logger: %w", err)
		}
		logger = logger.With(zap.String("session", sessionID))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			logging.Sync(logger)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default: ./darkdork.yaml or ~/.darkdork/darkdork.yaml)")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// openLibrary loads the dork catalog, seeding it on first use when enabled.
// An unreadable document is never seeded over.
func openLibrary() (*library.Library, error) {
	lib := library.New(cfg.LibraryPath, logger)
	if err := lib.LoadErr(); err != nil {
		logger.Warn("library unreadable, skipping seed", logging.Path(lib.Path()), zap.Error(err))
		return lib, nil
	}
	if cfg.Seed && lib.Len() == 0 {
		if _, err := lib.Seed(); err != nil {
			return nil, fmt.Errorf("seed library: %w", err)
		}
	}
	return lib, nil
}

func openRepository() (*repository.Repository, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o700); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}
	repo, err := repository.Open(cfg.DBPath, logger)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return repo, nil
}

// recordEvent appends an analytics event. Failures are logged, not returned.
func recordEvent(repo *repository.Repository, t events.Type, data events.Data) {
	if _, err := repo.RecordAnalytics(t, data.With("session", sessionID)); err != nil {
		logger.Warn("failed to record analytics event", logging.EventType(string(t)), zap.Error(err))
	}
}

func printJSON(w io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}

func parseID(arg, what string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s id %q", what, arg)
	}
	return id, nil
}

// optionalID maps an unset (zero) id flag to nil.
func optionalID(id int64) *int64 {
	if id <= 0 {
		return nil
	}
	return &id
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
