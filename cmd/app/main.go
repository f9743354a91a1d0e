package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"swapflow/internal/app"
	"swapflow/internal/infra"
)

func main() {
	bootstrap := app.NewBootstrap()
	if err := bootstrap.Initialize(); err != nil {
		slog.Error("bootstrapping failed", slog.Any("error", err))
		os.Exit(1)
	}

	infra.PrintBanner(bootstrap.Config)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := bootstrap.Server.Run(ctx); err != nil {
		slog.Error("server terminated", slog.Any("error", err))
		os.Exit(1)
	}

	slog.Info("shut down gracefully")
}
