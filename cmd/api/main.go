package main

import (
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/lightera/bundokai/internal/config"
	"github.com/lightera/bundokai/internal/export"
	"github.com/lightera/bundokai/internal/handlers"
	"github.com/lightera/bundokai/internal/repository"
	"github.com/lightera/bundokai/internal/services"
	xhttp "github.com/lightera/bundokai/pkg/http"
	"github.com/lightera/bundokai/pkg/logger"
	"github.com/lightera/bundokai/pkg/pg"
	"github.com/lightera/bundokai/pkg/prom"
	"github.com/lightera/bundokai/pkg/redis"
)

func main() {
	defer logger.Sync()

	err := config.Load(argContainsEnvPath())
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return
	}

	// transport (tcp for now)
	s := xhttp.NewServer(xhttp.DefaultServerOption)
	s.Server.ReadBufferSize = 1024 * 16
	s.Server.WriteBufferSize = 1024 * 16
	s.Use(xhttp.CORSMiddleware(config.Get().CorsAllowOrigin))
	s.Use(xhttp.CompressMiddleware(6))
	s.Use(xhttp.TimeoutMiddleware(time.Second * 5))
	s.Use(xhttp.RequestLoggerMiddleware)
	s.Use(xhttp.RecoverMiddleware)
	s.Router = xhttp.CreateDefaultRouter()

	readConf := pg.Config{
		User:     config.Get().PostgresReadUser,
		Host:     config.Get().PostgresReadHost,
		Port:     config.Get().PostgresReadPort,
		Password: config.Get().PostgresReadPassword,
		Database: config.Get().PostgresReadDatabase,
	}
	writeConf := pg.Config{
		User:     config.Get().PostgresWriteUser,
		Host:     config.Get().PostgresWriteHost,
		Port:     config.Get().PostgresWritePort,
		Password: config.Get().PostgresWritePassword,
		Database: config.Get().PostgresWriteDatabase,
	}

	pgDebug := false
	if config.Get().AppEnv == "dev" {
		pgDebug = true
	}
	db, err := pg.CreateReadWrite(readConf, writeConf, pgDebug)
	if err != nil {
		logger.Error("failed connecting to pg", "error", err)
		return
	}

	redisAdap, err := redis.NewRedisAdapter("default", config.Get().RedisUniversalKeyPrefix, &redis.Options{
		Addrs:      []string{config.Get().RedisAddr},
		ClientName: "default",
		DB:         config.Get().RedisDatabase,
		Username:   config.Get().RedisUsername,
		Password:   config.Get().RedisPassword,
	})
	if err != nil {
		logger.Error("failed connecting to redis", "error", err)
		return
	}

	if config.Get().PromNamespace != "" {
		if err := prom.Create("", config.Get().AppEnv, config.Get().PromNamespace); err != nil {
			logger.Error("failed creating metrics registry", "error", err)
		}
		if config.Get().AppDebugMetricsAddr != "" {
			prom.ListenAndServer(config.Get().AppDebugMetricsAddr, config.Get().AppDebugMetricsURI)
		}
	}

	participantRepo := repository.NewParticipantRepository(db)
	checkinRepo := repository.NewCheckInRepository(db)
	deliveryRepo := repository.NewDeliveryRepository(db)
	emailRepo := repository.NewEmailRepository(db)

	// services
	registrationService := services.NewRegistrationService(participantRepo)
	checkinService := services.NewCheckinService(participantRepo, checkinRepo)
	inventoryService := services.NewInventoryService(participantRepo, deliveryRepo)
	statsService := services.NewStatsService(participantRepo, checkinRepo, deliveryRepo, redisAdap, config.Get().StatsCacheTTL)
	authService := services.NewAuthService(
		config.Get().AdminUsername,
		config.Get().AdminPasswordHash,
		config.Get().JwtSecret,
		config.Get().JwtTTL,
	)
	healthService := services.NewHealthService(db)
	exporter := export.NewExporter(participantRepo)

	// v1 handlers
	participantHandler := handlers.NewParticipantHandler(registrationService)
	checkinHandler := handlers.NewCheckinHandler(checkinService)
	inventoryHandler := handlers.NewInventoryHandler(inventoryService)
	statsHandler := handlers.NewStatsHandler(statsService)
	exportHandler := handlers.NewExportHandler(exporter)
	authHandler := handlers.NewAuthHandler(authService)
	healthHandler := handlers.NewHealthHandler(healthService)
	trackingHandler := handlers.NewTrackingHandler(emailRepo)

	g := s.Router.Group("/api/v1")
	handlers.RegisterParticipantRoutes(g, participantHandler)
	handlers.RegisterAuthRoutes(g, authHandler)
	handlers.RegisterHealthRoutes(g, healthHandler)

	// management surfaces hand the auth service in so their admin-only
	// routes sit behind the bearer token
	handlers.RegisterCheckinRoutes(g, checkinHandler, authService)
	handlers.RegisterInventoryRoutes(g, inventoryHandler, authService)
	handlers.RegisterStatsRoutes(g, statsHandler, authService)
	handlers.RegisterExportRoutes(g, exportHandler, authService)

	// open tracking lives outside the api prefix; mail clients hit it directly
	handlers.RegisterTrackingRoutes(s.Router, trackingHandler)

	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		var err = s.ListenAndServe(config.Get().HttpListenAddr)
		if err != nil {
			logger.Error("error in running http-server", "error", err)
		}
	}()

	<-c
	s.Shutdown()
}

func argContainsEnvPath() string {
	for _, v := range os.Args {
		if strings.Contains(v, "--env=") {
			s := strings.Split(v, "=")
			if _, err := os.Open(s[1]); err != nil {
				logger.Error("failed to open the passed env file, got error" + err.Error())
				return ""
			}
			return s[1]
		}
	}
	return ""
}
