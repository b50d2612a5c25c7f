package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/baditaflorin/go_fit_predictor/internal/adapters/catalog"
	"github.com/baditaflorin/go_fit_predictor/internal/adapters/logger"
	"github.com/baditaflorin/go_fit_predictor/internal/adapters/mock"
	"github.com/baditaflorin/go_fit_predictor/internal/adapters/normalizer"
	"github.com/baditaflorin/go_fit_predictor/internal/adapters/store"
	"github.com/baditaflorin/go_fit_predictor/internal/config"
	"github.com/baditaflorin/go_fit_predictor/internal/core/fit"
	"github.com/baditaflorin/go_fit_predictor/internal/metrics"
	"github.com/baditaflorin/go_fit_predictor/internal/ports"
	"github.com/baditaflorin/go_fit_predictor/internal/profile"
	"github.com/baditaflorin/go_fit_predictor/internal/warmup"
	"github.com/valyala/fasthttp"
)

func main() {
	configPath := flag.String("config", "", "Path to a YAML config file (FIT_* env vars override it)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	log, err := createLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	if err := run(cfg, log); err != nil {
		log.Error("Server error", "error", err)
		log.Close()
		os.Exit(1)
	}
}

func run(cfg *config.Config, log ports.Logger) error {
	log.Info("Starting fit prediction server",
		"port", cfg.Server.Port,
		"read_timeout", cfg.Server.ReadTimeout,
		"write_timeout", cfg.Server.WriteTimeout,
		"store", cfg.Store.Driver,
		"cpus", runtime.NumCPU(),
	)

	norm := normalizer.NewNormalizerFactory().CreateNormalizer(normalizer.AliasNormalizerType)
	cat, err := loadCatalog(cfg.Catalog, norm)
	if err != nil {
		return err
	}

	predictor, err := fit.NewPredictor(fit.ScoringConfig{
		TightThreshold:   cfg.Scoring.TightThreshold,
		LooseThreshold:   cfg.Scoring.LooseThreshold,
		PerfectTolerance: cfg.Scoring.PerfectTolerance,
		TightPenalty:     cfg.Scoring.TightPenalty,
		LoosePenalty:     cfg.Scoring.LoosePenalty,
		PerfectFitScore:  cfg.Scoring.PerfectFitScore,
		MaxScore:         cfg.Scoring.MaxScore,
	}, log)
	if err != nil {
		return fmt.Errorf("invalid scoring config: %w", err)
	}

	kv, closeStore, err := openStore(cfg.Store)
	if err != nil {
		return err
	}
	defer closeStore()

	if cfg.WarmUp {
		mgr := warmup.NewManager(log, warmup.DefaultWarmupConfig())
		mgr.RegisterPredictor(predictor)
		mgr.RegisterNormalizer(norm)
		mgr.WarmUp(context.Background())
	}

	generator := mock.NewAvatarGenerator(cfg.Avatar.Delay, cfg.Avatar.BaseURL, log)
	profiles := profile.NewService(profile.NewRepository(kv), generator, predictor, log)
	srv := NewServer(predictor, cat, profiles, metrics.New(), log)

	server := &fasthttp.Server{
		Handler:               srv.Handle,
		ReadTimeout:           cfg.Server.ReadTimeout,
		WriteTimeout:          cfg.Server.WriteTimeout,
		MaxRequestBodySize:    cfg.Server.MaxRequestSize,
		Concurrency:           cfg.Server.Concurrency,
		TCPKeepalive:          true,
		TCPKeepalivePeriod:    3 * time.Minute,
		MaxIdleWorkerDuration: 10 * time.Second,
	}

	idleConnsClosed := make(chan struct{})
	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt, syscall.SIGTERM)
		<-sigint

		log.Info("Shutting down server...")
		if err := server.Shutdown(); err != nil {
			log.Error("Error during server shutdown", "error", err)
		}
		close(idleConnsClosed)
	}()

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Info("Server listening", "address", addr, "guides", cat.Len())
	if err := server.ListenAndServe(addr); err != nil {
		return err
	}

	<-idleConnsClosed
	log.Info("Server stopped")
	return nil
}

func loadCatalog(cfg config.CatalogConfig, norm ports.Normalizer) (*catalog.Catalog, error) {
	if cfg.Path == "" {
		return catalog.Default()
	}
	return catalog.LoadFile(cfg.Path, norm)
}

// openStore returns the configured profile store and its close function.
func openStore(cfg config.StoreConfig) (ports.KeyValueStore, func(), error) {
	if cfg.Driver != "redis" {
		return store.NewMemoryStore(), func() {}, nil
	}

	rs := store.NewRedisStore(store.RedisConfig{
		Address:   cfg.Redis.Address,
		Password:  cfg.Redis.Password,
		DB:        cfg.Redis.DB,
		KeyPrefix: cfg.Redis.KeyPrefix,
		TTL:       cfg.Redis.TTL,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rs.Ping(ctx); err != nil {
		rs.Close()
		return nil, nil, err
	}
	return rs, func() { rs.Close() }, nil
}

// createLogger creates and configures a logger
func createLogger(cfg config.LoggingConfig) (ports.Logger, error) {
	var output io.Writer = os.Stdout
	if cfg.File != "" {
		file, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		output = file
	}

	lc := logger.DefaultConfig(output, cfg.JSON)
	lc.MaxFileSize = 100 * 1024 * 1024 // 100MB
	log, err := logger.NewCustomStdLogger(lc)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return log, nil
}
