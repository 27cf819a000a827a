// layoutd serves the presentation layout API over HTTP.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/slidekit/layout"
	"github.com/slidekit/layout/internal/httpapi"
	"github.com/slidekit/layout/internal/logging"
)

type fileConfig struct {
	Addr     string `toml:"addr"`
	BasePath string `toml:"base_path"`

	Storage struct {
		Provider string `toml:"provider"`
		DSN      string `toml:"dsn"`
	} `toml:"storage"`

	Cache struct {
		Enabled  *bool  `toml:"enabled"`
		Provider string `toml:"provider"`
		TTL      string `toml:"ttl"`
		Redis    struct {
			Addr     string `toml:"addr"`
			Password string `toml:"password"`
			DB       int    `toml:"db"`
		} `toml:"redis"`
	} `toml:"cache"`

	Mirror struct {
		Enabled       bool   `toml:"enabled"`
		Provider      string `toml:"provider"`
		Path          string `toml:"path"`
		URI           string `toml:"uri"`
		Database      string `toml:"database"`
		Bucket        string `toml:"bucket"`
		UploadTimeout string `toml:"upload_timeout"`
	} `toml:"mirror"`

	Share struct {
		BaseURL string `toml:"base_url"`
	} `toml:"share"`

	Logging struct {
		Provider  string `toml:"provider"`
		Level     string `toml:"level"`
		Format    string `toml:"format"`
		AddSource bool   `toml:"add_source"`
	} `toml:"logging"`

	Features struct {
		Versioning    *bool `toml:"versioning"`
		Mirroring     bool  `toml:"mirroring"`
		AdvancedCache bool  `toml:"advanced_cache"`
	} `toml:"features"`
}

func main() {
	configPath := flag.String("config", "", "path to TOML configuration file")
	addr := flag.String("addr", ":8080", "listen address")
	flag.Parse()

	cfg := layout.DefaultConfig()
	cfg.Features.Logger = true

	listenAddr := *addr
	basePath := ""

	if *configPath != "" {
		fc, err := loadConfigFile(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "layoutd: %v\n", err)
			os.Exit(1)
		}
		applyFileConfig(&cfg, fc)
		if fc.Addr != "" {
			listenAddr = fc.Addr
		}
		basePath = fc.BasePath
	}

	module, err := layout.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "layoutd: %v\n", err)
		os.Exit(1)
	}

	logger := logging.ModuleLogger(module.LoggerProvider(), "layout")

	mux := http.NewServeMux()
	api := module.HTTPAPI()
	if basePath != "" {
		api = httpapi.NewAPI(
			httpapi.WithBasePath(basePath),
			httpapi.WithStoreService(module.Presentations()),
			httpapi.WithLedgerService(module.Versions()),
			httpapi.WithLogger(logging.HTTPLogger(module.LoggerProvider())),
		)
	}
	if err := api.Register(mux); err != nil {
		logger.Fatal("register routes failed", "error", err)
		os.Exit(1)
	}

	server := &http.Server{
		Addr:              listenAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", listenAddr)
		errCh <- server.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-stop:
		logger.Info("shutting down", "signal", sig.String())
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("shutdown failed", "error", err)
	}
	if err := module.Close(ctx); err != nil {
		logger.Error("close failed", "error", err)
	}
}

func loadConfigFile(path string) (*fileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	var fc fileConfig
	if err := toml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return &fc, nil
}

func applyFileConfig(cfg *layout.Config, fc *fileConfig) {
	if fc.Storage.Provider != "" {
		cfg.Storage.Provider = fc.Storage.Provider
	}
	if fc.Storage.DSN != "" {
		cfg.Storage.DSN = fc.Storage.DSN
	}

	if fc.Cache.Enabled != nil {
		cfg.Cache.Enabled = *fc.Cache.Enabled
	}
	if fc.Cache.Provider != "" {
		cfg.Cache.Provider = fc.Cache.Provider
	}
	if d := parseDuration(fc.Cache.TTL); d > 0 {
		cfg.Cache.TTL = d
	}
	cfg.Cache.Redis.Addr = fc.Cache.Redis.Addr
	cfg.Cache.Redis.Password = fc.Cache.Redis.Password
	cfg.Cache.Redis.DB = fc.Cache.Redis.DB

	cfg.Mirror.Enabled = fc.Mirror.Enabled
	if fc.Mirror.Provider != "" {
		cfg.Mirror.Provider = fc.Mirror.Provider
	}
	cfg.Mirror.Path = fc.Mirror.Path
	cfg.Mirror.URI = fc.Mirror.URI
	cfg.Mirror.Database = fc.Mirror.Database
	cfg.Mirror.Bucket = fc.Mirror.Bucket
	if d := parseDuration(fc.Mirror.UploadTimeout); d > 0 {
		cfg.Mirror.UploadTimeout = d
	}

	if fc.Share.BaseURL != "" {
		cfg.Share.BaseURL = fc.Share.BaseURL
	}

	if fc.Logging.Provider != "" {
		cfg.Logging.Provider = fc.Logging.Provider
	}
	if fc.Logging.Level != "" {
		cfg.Logging.Level = fc.Logging.Level
	}
	if fc.Logging.Format != "" {
		cfg.Logging.Format = fc.Logging.Format
	}
	cfg.Logging.AddSource = fc.Logging.AddSource

	if fc.Features.Versioning != nil {
		cfg.Features.Versioning = *fc.Features.Versioning
	}
	cfg.Features.Mirroring = fc.Features.Mirroring
	cfg.Features.AdvancedCache = fc.Features.AdvancedCache
}

func parseDuration(value string) time.Duration {
	if value == "" {
		return 0
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
}
