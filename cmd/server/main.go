package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/adrianliechti/threadsmith/pkg/app"
	"github.com/adrianliechti/threadsmith/pkg/config"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	addr := flag.String("addr", "", "address to listen on (default from MCP_ADDR or :8080)")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, cfgErr := config.Load(*configPath)

	if *addr != "" {
		cfg.Server.Addr = *addr
	}

	logger := cfg.Logger()

	if cfgErr != nil {
		logger.Warn("configuration problems, continuing with defaults", "error", cfgErr)
	}

	s := app.New(cfg, logger)

	if cfg.Server.Token == "" {
		logger.Warn("MCP_TOKEN not set; /mcp is open")
	}

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: s.Router(cfg.Server.Token),

		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		srv.Shutdown(shutdownCtx)
	}()

	logger.Info("server listening", "addr", cfg.Server.Addr, "endpoint", "/mcp")

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}
