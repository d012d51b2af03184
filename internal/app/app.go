package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/five82/collfilter/internal/catalog"
	"github.com/five82/collfilter/internal/config"
	"github.com/five82/collfilter/internal/session"
)

// Options configure the collfilter application.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/collfilter/prefs.toml
	CompareTo  string // overrides compare_to from the config file
	PagePath   string // saved comparison page; skips the download
	Verbose    bool

	// Logger replaces the file logger built from the config.
	Logger *zap.Logger
	// HTTPClient replaces the catalog's default client.
	HTTPClient *http.Client
}

// App holds what every command needs: config, logger, catalog client and the
// session cache.
type App struct {
	cfg     config.Config
	opts    Options
	logger  *zap.Logger
	catalog *catalog.Client
	cache   *session.Store
}

// New loads the config and opens the shared resources. Callers must Close the
// returned App.
func New(opts Options) (*App, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if v := strings.TrimSpace(opts.CompareTo); v != "" {
		cfg.CompareTo = v
	}

	logger := opts.Logger
	if logger == nil {
		logger, err = newLogger(cfg.LogPath, opts.Verbose)
		if err != nil {
			return nil, fmt.Errorf("init logger: %w", err)
		}
	}

	client, err := catalog.NewClient(catalog.Options{
		BaseURL:           cfg.BaseURL,
		Cookie:            cfg.Cookie,
		Timeout:           cfg.RequestTimeout,
		RequestsPerSecond: cfg.RequestsPerSecond,
		HTTPClient:        opts.HTTPClient,
	})
	if err != nil {
		return nil, fmt.Errorf("init catalog client: %w", err)
	}

	cache, err := session.Open(cfg.SessionDB, cfg.SessionTTL)
	if err != nil {
		return nil, fmt.Errorf("open session cache: %w", err)
	}

	logger.Debug("collfilter started",
		zap.String("base_url", client.BaseURL()),
		zap.String("compare_to", cfg.CompareTo),
		zap.String("session_db", cfg.SessionDB))

	return &App{
		cfg:     cfg,
		opts:    opts,
		logger:  logger,
		catalog: client,
		cache:   cache,
	}, nil
}

// Config returns the effective configuration.
func (a *App) Config() config.Config {
	return a.cfg
}

// Close releases the session cache and flushes the log.
func (a *App) Close() error {
	err := a.cache.Close()
	_ = a.logger.Sync()
	return err
}

// KnownTags returns the tag list, from the session cache when it is fresh.
func (a *App) KnownTags(ctx context.Context) ([]string, error) {
	return session.KnownTags(ctx, a.cache, a.catalog, a.logger)
}

// ForgetTags drops the cached tag list so the next start fetches it again.
func (a *App) ForgetTags(ctx context.Context) error {
	if err := a.cache.Delete(ctx, session.TagsKey); err != nil {
		return err
	}
	a.logger.Info("tag cache cleared")
	return nil
}

// newLogger writes JSON entries to path. The terminal belongs to the UI, so
// nothing is logged to stderr.
func newLogger(path string, verbose bool) (*zap.Logger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{path}
	cfg.ErrorOutputPaths = []string{path}
	cfg.Sampling = nil
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return cfg.Build()
}
