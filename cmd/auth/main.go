package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	authhttp "github.com/AlibekovAA/bearer-auth/internal/auth/http"
	"github.com/AlibekovAA/bearer-auth/internal/common/bootstrap"
	commonhttp "github.com/AlibekovAA/bearer-auth/internal/common/http"
	srv "github.com/AlibekovAA/bearer-auth/internal/common/server"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app, err := bootstrap.NewAuthApp(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to start auth service: %v\n", err)
		os.Exit(1)
	}
	log := app.Log
	cfg := app.Config

	handler := authhttp.NewHandler(app.AuthService, cfg, app.Verifier, log, app.Store)

	mux := http.NewServeMux()
	mux.Handle("/", handler)
	mux.Handle("/metrics", promhttp.Handler())

	baseHandler := commonhttp.BuildBaseHandler("auth", log, commonhttp.BaseOptions{
		AllowedOrigins: cfg.AllowedOrigins,
	}, mux)

	serverConfig := srv.DefaultServerConfig(cfg.HTTPPort)
	server := srv.NewServer(serverConfig, baseHandler)

	shutdownHooks := []srv.ShutdownHook{
		func(ctx context.Context) error {
			log.Infof("auth service: stopping background workers")
			cancel()
			return nil
		},
		func(ctx context.Context) error {
			log.Infof("auth service: closing credential store and hash pool")
			return app.Close()
		},
	}

	srv.StartWithGracefulShutdownAndHooks(server, log, "auth", shutdownHooks)
	_ = log.Close()
}
