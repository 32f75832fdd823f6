package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"legal-analyzer-be/internal/bootstrap"
	"legal-analyzer-be/internal/config"
	"legal-analyzer-be/internal/pkg/logger"
	"legal-analyzer-be/internal/server"
	"legal-analyzer-be/internal/tracer"

	"golang.org/x/sync/errgroup"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())
	defer sysLogger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Tracing
	shutdownTracer := tracer.InitTracer(cfg.App, sysLogger)

	// 3. Bootstrap Dependencies (Container)
	container, err := bootstrap.NewContainer(ctx, cfg, sysLogger)
	if err != nil {
		sysLogger.Error("main", "Failed to bootstrap application", map[string]interface{}{"error": err})
		_ = sysLogger.Sync()
		os.Exit(1)
	}

	// 4. Start Background Services
	if err := container.ConsumerService.Consume(ctx); err != nil {
		sysLogger.Error("main", "Failed to start consumer service", map[string]interface{}{"error": err})
	}

	// 5. Run Server until a signal arrives
	srv := server.New(cfg, container)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(srv.Run)
	g.Go(func() error {
		<-gctx.Done()
		sysLogger.Info("main", "Shutting down", nil)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			sysLogger.Warn("main", "Server shutdown incomplete", map[string]interface{}{"error": err.Error()})
		}
		if err := shutdownTracer(shutdownCtx); err != nil {
			sysLogger.Warn("main", "Tracer shutdown failed", map[string]interface{}{"error": err.Error()})
		}
		return container.Close()
	})

	if err := g.Wait(); err != nil {
		sysLogger.Error("main", "Server stopped with error", map[string]interface{}{"error": err})
	}
}
