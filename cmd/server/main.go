package main

import (
	"net/http"

	"kideats-be/internal/config"
	"kideats-be/internal/db"
	"kideats-be/internal/logger"
	"kideats-be/internal/transport"

	"go.uber.org/zap"
)

func main() {
	cfg := config.LoadConfig()

	logger.Init(cfg.AppEnv)
	defer logger.Sync()

	database := db.InitDB(cfg)
	defer database.Close()

	router := transport.NewRouter(cfg, database)

	port := cfg.AppPort
	if port == "" {
		port = "8080"
	}

	logger.L().Info("server starting",
		zap.String("port", port),
		zap.String("env", cfg.AppEnv),
		zap.Bool("midtrans_production", cfg.MidtransProduction),
	)

	if err := http.ListenAndServe(":"+port, router); err != nil {
		logger.L().Fatal("server exited", zap.Error(err))
	}
}
