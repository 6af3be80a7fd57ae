package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/staceybot/stacey/internal/api"
	"github.com/staceybot/stacey/internal/bot"
	"github.com/staceybot/stacey/internal/calling"
	"github.com/staceybot/stacey/internal/completion"
	"github.com/staceybot/stacey/internal/config"
	"github.com/staceybot/stacey/internal/conversation"
	"github.com/staceybot/stacey/internal/events"
	"github.com/staceybot/stacey/internal/graph"
)

func main() {
	cfg := config.Load()
	setupLogging(cfg.LogLevel)

	slog.Info("stacey starting", "port", cfg.Port)

	if cfg.CompletionURL == "" {
		slog.Error("COMPLETION_URL is required")
		os.Exit(1)
	}
	completer := completion.NewClient(cfg.CompletionURL)
	slog.Info("completion client ready", "model", cfg.CompletionModel)

	graphClient := graph.NewClient(cfg.GraphBaseURL, cfg.GraphToken, slog.Default())
	registry := calling.NewRegistry(cfg.IncidentTTL)
	contexts := conversation.NewStore()

	// NATS is optional — without it Stacey serves the webhook only and
	// incident events are not announced.
	var eventsClient *events.Client
	var publisher calling.Publisher
	if cfg.NatsURL != "" {
		var err error
		eventsClient, err = events.NewClient(cfg.NatsURL, cfg.NatsToken, slog.Default())
		if err != nil {
			slog.Error("failed to connect to NATS", "error", err)
			os.Exit(1)
		}
		defer eventsClient.Close()
		publisher = eventsClient
		slog.Info("NATS connected", "url", cfg.NatsURL)
	} else {
		slog.Warn("NATS not configured — webhook transport only")
	}

	orchestrator := calling.NewOrchestrator(
		graphClient,
		graphClient.Meetings(),
		graphClient,
		registry,
		graphClient,
		publisher,
		cfg.CatalogAppID,
		slog.Default(),
	)

	botRouter := bot.NewRouter(contexts, completer, orchestrator, cfg.CompletionModel, cfg.CompletionToken, slog.Default())

	if eventsClient != nil {
		err := eventsClient.SubscribeTurns(func(data []byte) any {
			var turn bot.Turn
			if err := json.Unmarshal(data, &turn); err != nil {
				slog.Error("failed to parse turn event", "error", err)
				return bot.Reply{Text: "Sorry, I couldn't read that."}
			}
			return botRouter.Route(context.Background(), turn)
		})
		if err != nil {
			slog.Error("failed to subscribe to turn events", "error", err)
			os.Exit(1)
		}
	}

	srv := api.NewServer(cfg.Port, botRouter)
	go func() {
		if err := srv.Start(); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()

	slog.Info("stacey ready", "port", cfg.Port)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	slog.Info("shutting down")
	slog.Info("stacey stopped")
}

func setupLogging(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
}
