package main

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/amaumene/goanistream/internal/middleware"
	"github.com/amaumene/goanistream/pkg/logger"
)

func main() {
	// Optional .env for local development; absence is fine.
	_ = godotenv.Load()

	Logger = logger.New()
	InitializeConfig()
	InitializeLogger()
	InitializeDatabase()
	InitializeServices()

	if err := serviceContainer.Cleanup.Start(); err != nil {
		Logger.Fatalf("[App] failed to start cleanup service: %v", err)
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Gzip())
	r.Use(middleware.CORS())
	r.Use(middleware.AccessLog(Logger))

	handler.RegisterRoutes(r)

	Logger.Infof("[App] starting HTTP server on port %s", Cfg.Port)
	log.Fatal(http.ListenAndServe(":"+Cfg.Port, r))
}
