package main

import (
	"context"
	"crm/database"
	"crm/entities"
	"crm/entities/realtime"
	"crm/middlewares"
	"crm/services"
	"crm/utils"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
)

const SHUTDOWN_TIMEOUT = 15 * time.Second

func main() {
	utils.LoadEnvVariables()

	env := os.Getenv(utils.ENV)
	logger := utils.NewLogger(env)
	defer logger.Sync()

	if env == utils.ENV_RELEASE {
		logger.Warn("[ATENÇÃO] Rodando em ambiente de PRODUÇÃO!")
	} else {
		logger.Info("ambiente atual", zap.String("env", env))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	connectCtx, cancel := context.WithTimeout(ctx, database.MONGO_TIMEOUT)
	store, err := database.NewMongoStore(connectCtx, os.Getenv(utils.MONGODB_URI), database.GetDB(), logger)
	cancel()
	if err != nil {
		logger.Fatal("mongodb unavailable", zap.Int("code", utils.CANNOT_CONNECT_TO_MONGODB), zap.Error(err))
	}
	defer store.Disconnect(context.Background())

	redisCtx, cancel := context.WithTimeout(ctx, database.MONGO_TIMEOUT)
	rdb, err := database.NewRedisClient(redisCtx, os.Getenv(utils.REDIS_URI))
	cancel()
	if err != nil {
		logger.Warn("redis unavailable, websocket events stay local to this instance", zap.Error(err))
		rdb = nil
	}
	if rdb != nil {
		defer rdb.Close()
	}

	svc := services.New(store, logger, services.Config{
		Consistency: services.ParseConsistencyMode(os.Getenv(utils.STATS_CONSISTENCY)),
	})

	hub := realtime.NewHub(rdb, logger)
	go hub.Run(ctx)

	reconciler, err := services.NewReconciler(svc.Stats, os.Getenv(utils.STATS_RECONCILE_SCHEDULE), logger)
	if err != nil {
		logger.Fatal("stats reconciler not scheduled", zap.Error(err))
	}
	reconciler.Start()
	defer reconciler.Stop()

	mux := http.NewServeMux()
	entities.Register(mux, svc, hub, logger)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", os.Getenv(utils.PORT)),
		Handler: middlewares.RequestID(logger)(middlewares.SecurityHeaders(middlewares.Cors(mux))),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), SHUTDOWN_TIMEOUT)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	logger.Info("servidor iniciado",
		zap.String("port", os.Getenv(utils.PORT)),
		zap.String("stats_consistency", string(svc.Stats.Mode())),
	)

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server stopped", zap.Error(err))
	}
}
