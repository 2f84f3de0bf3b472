package main

import (
	"context"
	"log"
	"os"
	"os/signal"

	"github.com/avhal/scout/service"
)

// handleTermination processes context cancellation signals or interrupt signals from the OS.
func handleTermination(ctx context.Context, cancel context.CancelFunc) {
	// Listen for interrupt signals.
	signals := []os.Signal{os.Interrupt}
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, signals...)

	// Wait for the context to be cancelled or an interrupt signal.
	for {
		select {
		case <-ctx.Done():
			return

		case <-interrupt:
			cancel()
		}
	}
}

func main() {
	var cfg Config
	err := loadConfig(&cfg, "")
	if err != nil {
		log.Printf("loading config: %v", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	scoutCfg := service.ScoutConfig{
		Mode:           cfg.Mode,
		Instruments:    cfg.Instruments,
		Timeframe:      cfg.Timeframe,
		StrategyNames:  cfg.Strategies,
		OandaAPIKey:    cfg.OandaAPIKey,
		OandaEnv:       cfg.OandaEnv,
		WebhookURL:     cfg.WebhookURL,
		StartDate:      cfg.StartDate,
		EndDate:        cfg.EndDate,
		DataFilepath:   cfg.DataFilepath,
		ReportFilepath: cfg.ReportFilepath,
		DBEndpoint:     cfg.DBEndpoint,
		DBUser:         cfg.DBUser,
		DBPass:         cfg.DBPass,
		Cancel:         cancel,
	}
	scout, err := service.NewScout(ctx, &scoutCfg)
	if err != nil {
		log.Printf("creating scout service: %v", err)
		os.Exit(1)
	}

	go handleTermination(ctx, cancel)
	err = scout.Run(ctx)
	if err != nil {
		log.Printf("running scout service: %v", err)
		os.Exit(1)
	}
}
