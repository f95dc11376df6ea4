package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"movierec-service/internal/config"
	"movierec-service/internal/fileio"
	"movierec-service/internal/poster"
	recHnd "movierec-service/internal/recommend/handler"
	"movierec-service/internal/recommend/model"
	recSvc "movierec-service/internal/recommend/service"
	serverhttp "movierec-service/server/http"
)

func main() {
	if runtime.GOMAXPROCS(0) < runtime.NumCPU() {
		runtime.GOMAXPROCS(runtime.NumCPU())
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}
	logger := config.SetupLogger(cfg)

	svc := recSvc.New(serviceConfig(cfg), logger)

	var posters recHnd.PosterEnricher
	if cfg.Poster.Enabled {
		client := poster.NewClient(poster.ClientConfig{
			BaseURL:       cfg.Poster.BaseURL,
			APIKey:        cfg.Poster.APIKey,
			Timeout:       cfg.Poster.Timeout,
			RatePerSecond: cfg.Poster.RatePerSec,
		}, logger)
		posters = poster.NewResolver(client, poster.ResolverConfig{
			Fallback:    cfg.Poster.Fallback,
			Timeout:     cfg.Poster.Timeout,
			CacheTTL:    cfg.Poster.CacheTTL,
			Concurrency: cfg.Poster.Concurrency,
		}, logger)
	}

	h := recHnd.New(svc, posters, recHnd.Options{
		Mapping:      mapping(cfg),
		MaxUploadMB:  cfg.MaxUploadMB,
		PosterBudget: cfg.Poster.Budget,
	}, logger)
	r := serverhttp.NewRouter(cfg, h, svc.Status, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// сервер поднимается сразу; до окончания сборки запросы получают 503
	go loadCatalog(ctx, svc, cfg, logger)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	logger.Info().Str("addr", cfg.Addr()).Msg("server starting")

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("listen")
		}
	}()

	// graceful shutdown
	<-ctx.Done()
	logger.Info().Msg("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	logger.Info().Msg("bye")
}

func loadCatalog(ctx context.Context, svc *recSvc.Service, cfg config.Config, logger zerolog.Logger) {
	if cfg.Catalog.Path == "" {
		logger.Warn().Msg("catalog path is empty, waiting for upload via POST /catalog")
		return
	}
	m := mapping(cfg)
	rows, err := fileio.ReadFile(cfg.Catalog.Path, m.HeaderRow)
	if err != nil {
		logger.Error().Err(err).Str("path", cfg.Catalog.Path).Msg("read catalog")
		return
	}
	if _, err := svc.Build(ctx, fileio.ToRecords(rows, m)); err != nil {
		// подробности уже залогированы сервисом
		return
	}
}

func mapping(cfg config.Config) model.Mapping {
	return model.Mapping{
		TitleKey:  cfg.Catalog.TitleCol,
		GenresKey: cfg.Catalog.GenresCol,
		IDKey:     cfg.Catalog.IDCol,
		HeaderRow: cfg.Catalog.HeaderRow,
	}
}

func serviceConfig(cfg config.Config) recSvc.Config {
	return recSvc.Config{
		GenreSep:       cfg.Catalog.GenreSep,
		MaxRows:        cfg.Catalog.MaxRows,
		MaxFeatures:    cfg.Recommend.MaxFeatures,
		TitleThreshold: cfg.Recommend.TitleThreshold,
		TitleLimit:     cfg.Recommend.TitleLimit,
		GenreLimit:     cfg.Recommend.GenreLimit,
		Workers:        cfg.Recommend.Workers,
	}
}
