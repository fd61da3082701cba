// shepherd es el API server del sistema de gestión de iglesias.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/dropDatabas3/shepherd/internal/app"
	"github.com/dropDatabas3/shepherd/internal/config"
	httpserver "github.com/dropDatabas3/shepherd/internal/http"
	"github.com/dropDatabas3/shepherd/internal/observability/logger"
)

func main() {
	var configPath = flag.String("config", envOr("SHEPHERD_CONFIG", "configs/config.yaml"), "Path to YAML config")
	flag.Parse()

	// .env es cortesía para dev local; en deploy las vars vienen del entorno.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config load: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatalf("app init: %v", err)
	}
	defer a.Close()

	if err := a.Bootstrap(ctx); err != nil {
		log.Fatalf("bootstrap: %v", err)
	}
	if err := a.Start(); err != nil {
		log.Fatalf("background jobs: %v", err)
	}

	srv := httpserver.NewServer(httpserver.ServerConfig{
		Addr:            cfg.Server.Addr,
		ShutdownTimeout: cfg.ShutdownTimeout(),
	}, a.Handler)

	if err := srv.Run(ctx, cfg.ShutdownTimeout()); err != nil {
		logger.L().Error("server exited with error", logger.Err(err))
		os.Exit(1)
	}
	logger.L().Info("server stopped")
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
