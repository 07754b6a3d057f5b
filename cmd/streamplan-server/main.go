package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Guilhem-Bonnet/streamplan/internal/adapters/amqpsink"
	"github.com/Guilhem-Bonnet/streamplan/internal/adapters/csvsource"
	"github.com/Guilhem-Bonnet/streamplan/internal/adapters/httpapi"
	"github.com/Guilhem-Bonnet/streamplan/internal/adapters/memorybus"
	"github.com/Guilhem-Bonnet/streamplan/internal/adapters/sqlstore"
	"github.com/Guilhem-Bonnet/streamplan/internal/app"
	"github.com/Guilhem-Bonnet/streamplan/internal/buildinfo"
	"github.com/Guilhem-Bonnet/streamplan/internal/config"
	"github.com/Guilhem-Bonnet/streamplan/internal/ports"
	"github.com/Guilhem-Bonnet/streamplan/internal/solver"
)

func main() {
	configPath := flag.String("config", os.Getenv("STREAMPLAN_CONFIG"), "Fichier de configuration YAML (optionnel)")
	addr := flag.String("addr", "", "Adresse d'écoute (ex: 127.0.0.1:8080)")
	dataDir := flag.String("data", "", "Dossier des CSV du catalogue")
	dbDriver := flag.String("db-driver", "", "Driver SQL: sqlite ou postgres")
	dsn := flag.String("db", "", "DSN de la base (active la source sql)")
	flag.Parse()

	logger := zerolog.New(os.Stdout).With().Timestamp().Str("app", "streamplan-server").Logger()
	log.Logger = logger

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}
	// Les flags priment sur le fichier et l'environnement.
	if *addr != "" {
		cfg.Addr = *addr
	}
	if *dataDir != "" {
		cfg.Catalog.DataDir = *dataDir
	}
	if *dbDriver != "" {
		cfg.Catalog.Driver = *dbDriver
	}
	if *dsn != "" {
		cfg.Catalog.DSN = *dsn
		cfg.Catalog.Source = config.SourceSQL
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		logger = logger.Level(lvl)
		log.Logger = logger
	}
	logger.Info().Interface("build", buildinfo.Current()).Str("source", cfg.Catalog.Source).Msg("starting")

	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var src ports.CatalogSource = csvsource.New(cfg.Catalog.DataDir)
	if cfg.Catalog.Source == config.SourceSQL {
		db, err := sqlstore.Open(shutdownCtx, cfg.Catalog.Driver, cfg.Catalog.DSN)
		if err != nil {
			logger.Fatal().Err(err).Str("driver", cfg.Catalog.Driver).Msg("failed to open db")
		}
		defer func() { _ = db.Close() }()

		repo := sqlstore.NewCatalogRepository(db)
		if cfg.Catalog.ImportOnStart {
			if err := app.SyncCatalog(shutdownCtx, csvsource.New(cfg.Catalog.DataDir), repo, logger); err != nil {
				logger.Fatal().Err(err).Msg("failed to import catalog")
			}
		}
		src = repo
	}

	// Un catalogue incohérent est fatal: aucune requête ne serait fiable.
	cat, err := app.LoadCatalog(shutdownCtx, src, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load catalog")
	}

	bus := memorybus.New()
	defer bus.Close()

	if cfg.AMQP.URL != "" {
		fwd, err := amqpsink.Dial(amqpsink.Config{
			URL:        cfg.AMQP.URL,
			Exchange:   cfg.AMQP.Exchange,
			RoutingKey: cfg.AMQP.RoutingKey,
		}, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to rabbitmq")
		}
		defer func() { _ = fwd.Close() }()
		go fwd.Run(shutdownCtx, bus)
	}

	planner, err := app.NewPlannerService(logger, cat, bus, app.PlannerConfig{
		Options: solver.Options{
			RarityThreshold: cfg.Solver.RarityThreshold,
			MaxExpansions:   cfg.Solver.MaxExpansions,
			DominanceOrder:  solver.DominanceOrder(cfg.Solver.DominanceOrder),
		},
		Timeout:       cfg.Solver.Timeout,
		MaxConcurrent: cfg.Solver.MaxConcurrent,
		CacheSize:     cfg.Cache.Size,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create planner")
	}
	defer planner.Close()

	srv := httpapi.NewServer(logger, planner, bus, cfg.CORS.AllowedOrigins)
	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", cfg.Addr).Msg("listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("http server crashed")
			stop()
		}
	}()

	<-shutdownCtx.Done()
	logger.Info().Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = httpServer.Shutdown(ctx)
	logger.Info().Msg("bye")
}
