package main

import (
	"context"
	"expvar"
	"log"
	"runtime"
	"time"

	"go.uber.org/zap"

	"github.com/quizdefense/quizdefense/internal/infrastructure/configs"
	"github.com/quizdefense/quizdefense/internal/infrastructure/ratelimiter"
	"github.com/quizdefense/quizdefense/internal/infrastructure/tracing"
	"github.com/quizdefense/quizdefense/internal/infrastructure/ws"
	"github.com/quizdefense/quizdefense/internal/presentation/api"
	"github.com/quizdefense/quizdefense/internal/presentation/handler/health"
	"github.com/quizdefense/quizdefense/internal/presentation/handler/rooms"
	"github.com/quizdefense/quizdefense/internal/presentation/handler/session"
	"github.com/quizdefense/quizdefense/internal/registry"
)

func main() {
	logger := zap.Must(zap.NewProduction()).Sugar()
	defer logger.Sync()

	configPath := configs.DetermineConfigPath()
	cfg, err := configs.Load(configPath)
	if err != nil {
		log.Fatal(err)
	}

	if cfg.Tracing.Enabled {
		shutdownTracer, err := tracing.InitTracer(tracing.NewDefaultConfig("relay", cfg.Tracing.Endpoint))
		if err != nil {
			logger.Fatalw("tracing init failed", "error", err)
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = shutdownTracer(ctx)
		}()
	}

	reg := registry.New(cfg.Rooms.Capacity, logger)
	hub := ws.NewHub(reg, logger)
	reg.SetSender(hub)
	go hub.Run()

	upgrader := ws.NewUpgrader(cfg.HTTP.AllowedOrigins)
	sessionHandler := session.NewHandler(hub, upgrader, logger)
	roomsHandler := rooms.NewHandler(reg)
	healthHandler := health.NewHandler()

	rateLimiter := ratelimiter.NewFixedWindowRateLimiter(cfg.RateLimiter.RequestsPerTimeFrame, cfg.RateLimiter.TimeFrame)
	defer rateLimiter.Close()

	app := api.NewApplication(*cfg, *sessionHandler, *roomsHandler, *healthHandler, logger, rateLimiter)

	expvar.Publish("goroutines", expvar.Func(func() any {
		return runtime.NumGoroutine()
	}))
	expvar.Publish("rooms", expvar.Func(func() any {
		return reg.RoomCount()
	}))

	mux := app.Mount()
	logger.Fatal(app.Run(mux))
}
