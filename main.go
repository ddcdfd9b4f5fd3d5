package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/adrianliechti/threadsmith/pkg/app"
	"github.com/adrianliechti/threadsmith/pkg/config"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	// stdout carries the protocol; anything else printing there would corrupt it
	stdout := os.Stdout
	os.Stdout = os.Stderr

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, cfgErr := config.Load(*configPath)

	logger := cfg.Logger()

	if cfgErr != nil {
		logger.Warn("configuration problems, continuing with defaults", "error", cfgErr)
	}

	s := app.New(cfg, logger)

	session, err := s.Connect(ctx, &mcp.IOTransport{
		Reader: os.Stdin,
		Writer: stdout,
	})

	if err != nil {
		logger.Error("failed to start stdio transport", "error", err)
		os.Exit(1)
	}

	logger.Info("server running on stdio", "name", app.Name, "version", app.Version)

	if err := session.Wait(); err != nil {
		logger.Info("session closed", "error", err)
	}
}
