package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"mindfulcompanion/internal/app"
	"mindfulcompanion/internal/config"
	"mindfulcompanion/internal/server"
	"mindfulcompanion/internal/util"
)

func main() {
	cfg, err := config.Load(config.ConfigPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := util.InitLogger(cfg.LogLevel)

	appCore, err := app.New(app.Config{
		DatabaseURL:   cfg.DatabaseURL,
		RedisAddr:     cfg.RedisAddr,
		RedisPassword: cfg.RedisPassword,
		JWTSecret:     cfg.JWTSecret,
		SessionTTL:    time.Duration(cfg.SessionTTLHours) * time.Hour,
		AIBaseURL:     cfg.AIBaseURL,
		AIAPIKey:      cfg.AIAPIKey,
		AIModel:       cfg.AIModel,
	})
	if err != nil {
		util.Fatal("failed to init app", "err", err)
	}

	httpServer, err := server.New(server.Config{
		App:            appCore,
		RedisAddr:      cfg.RedisAddr,
		RedisPassword:  cfg.RedisPassword,
		SignupLimit:    cfg.SignupRateLimitPerMinute,
		LoginLimit:     cfg.LoginRateLimitPerMinute,
		SubmitLimit:    cfg.SubmitRateLimitPerMinute,
		TrustedProxies: cfg.TrustedProxies,
	})
	if err != nil {
		util.Fatal("failed to init http server", "err", err)
	}

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:         addr,
		Handler:      httpServer.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	slog.Info("server listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server error", "err", err)
	}
}
