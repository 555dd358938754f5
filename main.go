package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/wfunc/minesduel/config"
	"github.com/wfunc/minesduel/logger"
	"github.com/wfunc/minesduel/monitor"
	"github.com/wfunc/minesduel/persistence"
	"github.com/wfunc/minesduel/server"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Load configuration
	cfg, err := config.LoadConfig(".")
	if err != nil {
		logger.Init("info")
		logger.Log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Init(cfg.Log.Level)
	defer logger.Sync()

	// Initialize Database
	db, err := persistence.Open(cfg.Database)
	if err != nil {
		logger.Log.Fatalf("Failed to connect to database: %v", err)
	}
	if db != nil {
		logger.Log.Infof("Database connection successful (driver %s).", cfg.Database.Driver)
		defer db.Close()
	} else {
		logger.Log.Info("Match history database disabled.")
	}

	mon := monitor.NewMonitor("minesduel")
	mon.StartServer(cfg.Server.MetricsAddress)

	// Initialize Game Server
	gameServer, err := server.NewGameServer(cfg.Server, db, mon)
	if err != nil {
		logger.Log.Fatalf("Failed to create game server: %v", err)
	}

	errChan := make(chan error, 1)
	go func() {
		errChan <- gameServer.Start()
	}()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-signals:
		logger.Log.Infof("Received %s, shutting down", sig)
	case err := <-errChan:
		if err != nil {
			logger.Log.Errorf("Game server failed: %v", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := gameServer.Shutdown(ctx); err != nil {
		logger.Log.Warnf("Game server shutdown: %v", err)
	}
	if err := mon.Shutdown(ctx); err != nil {
		logger.Log.Warnf("Metrics server shutdown: %v", err)
	}
}
