package main

import (
	"github.com/amaumene/goanistream/internal/cache"
	"github.com/amaumene/goanistream/internal/config"
	"github.com/amaumene/goanistream/internal/constants"
	"github.com/amaumene/goanistream/internal/database"
	"github.com/amaumene/goanistream/internal/handlers"
	"github.com/amaumene/goanistream/internal/services"
	"github.com/amaumene/goanistream/pkg/logger"
)

var (
	Logger           logger.Logger
	Cfg              *config.Config
	DB               database.Database
	apiMemoryCache   *cache.LRUCache
	handler          *handlers.Handler
	serviceContainer *services.Container
)

func InitializeConfig() {
	var err error
	Cfg, err = config.Load()
	if err != nil {
		Logger.Fatalf("[App] failed to load configuration: %v", err)
	}
}

func InitializeLogger() {
	Logger = logger.NewWithLevel(logger.ParseLevel(Cfg.LogLevel))
}

func InitializeDatabase() {
	var err error
	DB, err = database.NewBolt(Cfg.DatabasePath, constants.MaxWatchProgressEntries, constants.MaxViewingHistoryEntries)
	if err != nil {
		Logger.Fatalf("[App] failed to initialize database: %v", err)
	}

	Logger.Infof("[App] BoltHold database initialized at %s", Cfg.DatabasePath)
}

func InitializeServices() {
	apiMemoryCache = cache.New(Cfg.CacheSize, Cfg.CacheTTL)

	jikanService := services.NewJikan(apiMemoryCache)
	tmdbService := services.NewTMDB(Cfg.TMDBAPIKey, apiMemoryCache)
	cleanupService := services.NewCleanupService(DB, apiMemoryCache)

	serviceContainer = &services.Container{
		Jikan:   jikanService,
		TMDB:    tmdbService,
		Cache:   apiMemoryCache,
		DB:      DB,
		Logger:  Logger,
		Cleanup: cleanupService,
	}

	handler = handlers.New(serviceContainer, Cfg)

	if Cfg.TMDBAPIKey == "" {
		Logger.Warnf("[App] TMDB_API_KEY not set; identity-resolution fallbacks disabled")
	}
	Logger.Infof("[App] services initialized successfully")
}
