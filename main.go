package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/giygas/openfda-gateway/config"
	"github.com/giygas/openfda-gateway/data"
	"github.com/giygas/openfda-gateway/handlers"
	"github.com/giygas/openfda-gateway/health"
	"github.com/giygas/openfda-gateway/logging"
	"github.com/giygas/openfda-gateway/openfda"
	"github.com/giygas/openfda-gateway/pages"
	"github.com/giygas/openfda-gateway/render"
	"github.com/giygas/openfda-gateway/scheduler"
	"github.com/giygas/openfda-gateway/server"
	"github.com/giygas/openfda-gateway/validation"
	"github.com/joho/godotenv"
)

func main() {
	// Read .env from the working directory, then from the executable's
	// directory so the html/ paths resolve when started by a service manager
	if err := godotenv.Load(); err != nil {
		if ex, err := os.Executable(); err == nil {
			exPath := filepath.Dir(ex)
			if err := os.Chdir(exPath); err != nil {
				fmt.Fprintf(os.Stderr, "Failed to change directory: %v\n", err)
				os.Exit(1)
			}
			_ = godotenv.Load()
		}
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}

	logging.InitLogger(cfg)
	defer func() {
		if err := logging.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to close log file: %v\n", err)
		}
	}()

	logging.Info("Configuration loaded",
		"env", cfg.Env.String(),
		"upstream", cfg.UpstreamHost,
		"upstream_timeout", cfg.UpstreamTimeout.String(),
		"escape_terms", cfg.UpstreamEscapeTerms,
		"html_escape", cfg.HTMLEscape,
	)

	client := openfda.NewClient(cfg.UpstreamHost, cfg.UpstreamTimeout, cfg.UpstreamEscapeTerms)
	gateway := handlers.NewRouter(
		client,
		pages.NewFilePages(cfg.HomePage, cfg.NotFoundPage),
		render.Renderer{EscapeItems: cfg.HTMLEscape},
		validation.NewInputValidator(),
		cfg.PublicBaseURL,
	)

	status := data.NewStatusContainer()
	probeInterval := time.Duration(cfg.ProbeIntervalMinutes) * time.Minute
	probe := scheduler.NewScheduler(client, status, probeInterval)
	if err := probe.Start(); err != nil {
		logging.Error("Failed to start upstream probe", "error", err)
		os.Exit(1)
	}

	srv := server.NewServer(cfg, gateway, health.NewHealthChecker(status, probeInterval))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-quit

	probe.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logging.Error("Shutdown error", "error", err)
	}
}
