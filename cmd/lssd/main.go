// Command lssd runs the local skill service broker as a standalone daemon.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/dbros-oss/lss-broker/pkg/broker"
	"github.com/dbros-oss/lss-broker/pkg/logging"
	"github.com/dbros-oss/lss-broker/pkg/storage"
)

func getEnvDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	configPath := flag.String("config", getEnvDefault("LSSD_CONFIG", ""), "path to the JSON configuration file")
	boltPath := flag.String("storage", getEnvDefault("LSSD_STORAGE", ""), "path to a bbolt database file; empty uses an in-memory store")
	plainLogs := flag.Bool("plain-logs", getEnvDefault("LSSD_PLAIN_LOGS", "") != "", "disable colored console output")
	flag.Parse()

	logger, err := logging.New(!*plainLogs)
	if err != nil {
		panic(err)
	}

	if *configPath == "" {
		logger.Error(logging.ComponentBroker, "missing -config/LSSD_CONFIG")
		os.Exit(1)
	}
	raw, err := os.ReadFile(*configPath)
	if err != nil {
		logger.Error(logging.ComponentBroker, "failed to read configuration file", zap.Error(err))
		os.Exit(1)
	}

	kv, closeKV := openStorage(logger, *boltPath)
	defer closeKV()

	b := broker.New(logger, kv)
	if err := b.Configure(raw); err != nil {
		logger.Error(logging.ComponentBroker, "configure failed", zap.Error(err))
		os.Exit(1)
	}
	if err := b.Start(); err != nil {
		logger.Error(logging.ComponentBroker, "start failed", zap.Error(err))
		os.Exit(1)
	}
	logger.Info(logging.ComponentBroker, "broker started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	logger.Info(logging.ComponentBroker, "shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := b.Stop(ctx); err != nil {
		logger.Error(logging.ComponentBroker, "stop error", zap.Error(err))
	}
	logger.Info(logging.ComponentBroker, "shutdown complete")
}

func openStorage(logger *logging.Logger, boltPath string) (storage.KV, func()) {
	if boltPath == "" {
		return storage.NewMemKV(), func() {}
	}
	bolt, err := storage.OpenBoltKV(boltPath)
	if err != nil {
		logger.Error(logging.ComponentStorage, "failed to open bolt storage", zap.Error(err))
		os.Exit(1)
	}
	return bolt, func() { _ = bolt.Close() }
}
