package main

import (
	"fmt"
	"log"

	"go.uber.org/zap"

	"github.com/printfarm/dashboard-server/internal/api"
	"github.com/printfarm/dashboard-server/internal/broker"
	"github.com/printfarm/dashboard-server/internal/config"
	"github.com/printfarm/dashboard-server/internal/ingest"
	"github.com/printfarm/dashboard-server/internal/logger"
	"github.com/printfarm/dashboard-server/internal/notify"
	"github.com/printfarm/dashboard-server/internal/printer"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Warning: could not load config file: %v\n", err)
		fmt.Println("Using default configuration")
		cfg = config.Default()
		cfg.ConfigPath = "config.yaml"
	}

	if err := logger.Init(cfg.Environment); err != nil {
		log.Fatalf("logger init failed: %v", err)
	}
	defer logger.Sync()

	resolver := printer.NewResolver(cfg.Thresholds.PrintingMm, cfg.Thresholds.OfflineMm)
	registry := printer.NewRegistry(resolver)
	for _, p := range cfg.Printers {
		registry.Seed(p.ID, p.Name)
	}

	hub := api.NewHub()
	registry.AddListener(hub.Broadcast)

	if cfg.Discord.Enabled {
		notifier := notify.NewDiscordNotifier(&cfg.Discord)
		registry.AddListener(notifier.HandleUpdate)
	}

	activity := api.NewActivityBuffer(200)

	manager := broker.NewManager(cfg, registry)
	manager.OnEvent = activity.Add
	manager.Start()
	defer manager.Stop()

	if cfg.MQTT.Enabled {
		source := ingest.NewMQTTSource(&cfg.MQTT, cfg.Printers, registry)
		if err := source.Start(); err != nil {
			logger.Warn("mqtt source unavailable", zap.Error(err))
		} else {
			defer source.Stop()
		}
	}

	server := api.NewServer(cfg, registry, manager, hub, activity)

	logger.Info("dashboard server starting",
		zap.String("addr", fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)),
		zap.Int("printers", len(cfg.Printers)),
		zap.Bool("websocket", cfg.Broker.UseWebSocket))

	if err := server.Start(); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}
