package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/MKhiriev/go-pseudo-ledger/internal/cache"
	"github.com/MKhiriev/go-pseudo-ledger/internal/config"
	"github.com/MKhiriev/go-pseudo-ledger/internal/handler"
	"github.com/MKhiriev/go-pseudo-ledger/internal/logger"
	"github.com/MKhiriev/go-pseudo-ledger/internal/server"
	"github.com/MKhiriev/go-pseudo-ledger/internal/service"
	"github.com/MKhiriev/go-pseudo-ledger/internal/store"
	"github.com/MKhiriev/go-pseudo-ledger/models"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	buildInfo := printBuildInfo()

	log := logger.NewLogger("pseudo-ledger-server")
	cfg, err := config.GetStructuredConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("error getting configs")
	}
	if !buildInfo.Known() {
		log.Warn().Msg("binary built without version metadata")
	}
	if cfg.App.Version == "" {
		cfg.App.Version = buildInfo.BuildVersion()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)
	defer stop()

	storages, err := store.NewStorages(ctx, cfg.Storage, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating storages")
	}
	defer storages.Close()

	readCache := cache.NewMemoryCache()
	if cfg.Storage.Cache.RedisURL != "" {
		client, err := cache.NewRedisClient(ctx, cfg.Storage.Cache.RedisURL)
		if err != nil {
			log.Fatal().Err(err).Msg("error connecting to redis")
		}
		defer client.Close()

		readCache = cache.NewRedisCache(client)
		log.Info().Msg("using redis read cache")
	}

	services, err := service.NewServices(storages, service.NewCore(cfg.App, readCache, log), *cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating services")
	}

	handlers, err := handler.NewHandlers(services, cfg.Server, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating handlers")
	}

	srv, err := server.NewServer(handlers, cfg.Server, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating server")
	}

	if err := srv.RunServer(ctx); err != nil {
		log.Error().Err(err).Msg("server stopped with error")
	}
}

func printBuildInfo() models.AppBuildInfo {
	info := models.NewAppBuildInfo(buildVersion, buildDate, buildCommit)
	fmt.Println(info)
	return info
}
