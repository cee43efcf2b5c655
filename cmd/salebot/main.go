package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/adelgado/salebot/config"
	"github.com/adelgado/salebot/internal/adapters/notify"
	"github.com/adelgado/salebot/internal/adapters/pricing"
	"github.com/adelgado/salebot/internal/adapters/reservoir"
	"github.com/adelgado/salebot/internal/adapters/storage"
	"github.com/adelgado/salebot/internal/adapters/twitter"
	"github.com/adelgado/salebot/internal/announce"
	"github.com/adelgado/salebot/internal/bot"
	"github.com/adelgado/salebot/internal/ports"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	once := flag.Bool("once", false, "process the single most recent sale and exit")
	dryRun := flag.Bool("dry-run", false, "print announcements instead of posting them")
	verbose := flag.Bool("verbose", false, "set log level to debug")
	logFormat := flag.String("format", "", "log format: text|json (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err, "path", *configPath)
		os.Exit(1)
	}

	if *verbose {
		cfg.Log.Level = "debug"
	}
	if *logFormat != "" {
		cfg.Log.Format = *logFormat
	}
	setupLogger(cfg.Log)

	slog.Info("salebot starting",
		"config", *configPath,
		"contract", cfg.Bot.Contract,
		"interval", cfg.PollInterval(),
		"dry_run", *dryRun,
		"once", *once,
	)

	if !*dryRun {
		if err := cfg.Validate(); err != nil {
			slog.Error("missing credentials", "err", err)
			os.Exit(1)
		}
	}

	client := reservoir.NewClient(cfg.API.ReservoirBase, cfg.Credentials.ReservoirAPIKey)
	images := reservoir.NewImageResolver(client, cfg.API.OpenSeaBase)
	composer := announce.NewComposer(cfg.Bot.Collection, cfg.Bot.DeepLinkBase, images)

	prices, err := pricing.NewEthUSD()
	if err != nil {
		slog.Error("failed to build price source", "err", err)
		os.Exit(1)
	}

	var publisher ports.Publisher
	if *dryRun {
		publisher = notify.NewConsole()
	} else {
		publisher = twitter.NewPublisher(twitter.Credentials{
			APIKey:      cfg.Credentials.TwitterAPIKey,
			APISecret:   cfg.Credentials.TwitterAPISecret,
			Token:       cfg.Credentials.TwitterToken,
			TokenSecret: cfg.Credentials.TwitterTokenSecret,
		}, "", "")
	}

	dsn := cfg.Storage.DSN
	if *dryRun {
		dsn = ":memory:" // no contaminar el dedup real con publishes falsos
	}
	store, err := storage.NewSQLiteStore(dsn)
	if err != nil {
		slog.Error("failed to open dedup store", "err", err, "dsn", dsn)
		os.Exit(1)
	}
	defer store.Close()

	botCfg := bot.DefaultConfig()
	botCfg.Contract = cfg.Bot.Contract
	botCfg.FetchLimit = cfg.Bot.FetchLimit
	botCfg.PollInterval = cfg.PollInterval()
	botCfg.Cooldown = cfg.Cooldown()

	p := bot.New(botCfg, client, store, prices, composer, publisher)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if *once {
		if err := p.RunLatest(ctx); err != nil {
			slog.Error("diagnostic run failed", "err", err)
			os.Exit(1)
		}
		return
	}

	if err := p.Run(ctx); err != nil {
		slog.Error("poller exited with error", "err", err)
		os.Exit(1)
	}

	slog.Info("salebot stopped cleanly")
}

func setupLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}
