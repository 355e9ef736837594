package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/marco/movieFinder/internal/catalog"
	"github.com/marco/movieFinder/internal/catalog/cache"
	"github.com/marco/movieFinder/internal/config"
	"github.com/marco/movieFinder/internal/discover"
	"github.com/marco/movieFinder/internal/ui"
)

var (
	configPath   = flag.String("config", "", "Path to an optional YAML configuration file")
	forceRefresh = flag.Bool("force-refresh", false, "Ignore cached catalog responses")
	clearCache   = flag.Bool("clear-cache", false, "Remove all cached catalog responses before starting")
	verbose      = flag.Bool("verbose", false, "Log at debug level")
)

func main() {
	flag.Parse()

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logFile, err := setupLogging(cfg.Log, *verbose)
	if err != nil {
		return err
	}
	defer logFile.Close()

	slog.Info("configuration loaded",
		"config", *configPath,
		"base_url", cfg.API.BaseURL,
		"cache_backend", cfg.Cache.Backend,
		"max_attempts", cfg.Options.MaxAttempts,
	)

	responseCache, err := openCache(cfg.Cache)
	if err != nil {
		return err
	}
	if responseCache != nil {
		defer responseCache.Close()
		if *clearCache {
			if err := responseCache.Clear(); err != nil {
				return err
			}
			slog.Info("response cache cleared")
		}
	}

	client := catalog.NewClientWithConfig(catalog.ClientConfig{
		BaseURL:        cfg.API.BaseURL,
		APIKey:         cfg.API.APIKey,
		Timeout:        cfg.API.Timeout,
		MaxAttempts:    cfg.Options.MaxAttempts,
		InitialBackoff: cfg.Options.InitialBackoff,
		RateLimit:      cfg.Options.RateLimit,
		Cache:          responseCache,
		CacheTTL:       cfg.Cache.TTL,
		ForceRefresh:   *forceRefresh,
		RetryLogFunc: func(attempt, maxAttempts int, backoff time.Duration, err error) {
			slog.Warn("retrying catalog request",
				"attempt", attempt,
				"max_attempts", maxAttempts,
				"backoff_ms", backoff.Milliseconds(),
				"error", err,
			)
		},
		CacheLogFunc: func(operation, key string, hit bool, err error) {
			if err != nil {
				slog.Warn("catalog cache failed", "op", operation, "key", key, "error", err)
				return
			}
			slog.Debug("catalog cache", "op", operation, "key", key, "hit", hit)
		},
	})

	updates := ui.NewUpdates()
	defer updates.Close()

	ctrl, err := discover.New(discover.Options{
		Fetcher:       client,
		DebounceDelay: cfg.Search.Debounce,
		TrendingSize:  cfg.Search.TrendingSize,
		Logger:        slog.Default(),
		OnChange:      updates.Publish,
	})
	if err != nil {
		return err
	}
	defer ctrl.Close()

	model := ui.New(ctrl, catalog.PosterResolver{
		BaseURL:     cfg.API.ImageBaseURL,
		Placeholder: cfg.Display.Placeholder,
	}, updates)
	program := tea.NewProgram(model, tea.WithAltScreen())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Options.RefreshInterval > 0 {
		go ctrl.RunAutoRefresh(ctx, cfg.Options.RefreshInterval)
	}

	if cfg.Options.WatchConfig && *configPath != "" {
		watcher, err := config.NewWatcher(*configPath, 250*time.Millisecond, func(next *config.Config) {
			client.Reconfigure(next.API.BaseURL, next.API.APIKey)
			ctrl.Refresh()
		})
		if err != nil {
			return err
		}
		if err := watcher.Start(); err != nil {
			return err
		}
		defer watcher.Stop()
	}

	if _, err := program.Run(); err != nil {
		return fmt.Errorf("running UI: %w", err)
	}
	slog.Info("movie finder exited")
	return nil
}

// openCache returns the configured response cache, or nil when disabled.
func openCache(cfg config.CacheConfig) (cache.Cache, error) {
	switch cfg.Backend {
	case "memory":
		c, err := cache.NewMemoryCache(cfg.Size)
		if err != nil {
			return nil, err
		}
		return c, nil
	case "sqlite":
		c, err := cache.NewSQLiteCache(cfg.Path)
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		return nil, nil
	}
}
