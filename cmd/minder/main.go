package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"minder/internal/bot"
	"minder/internal/calendar"
	"minder/internal/config"
	"minder/internal/digest"
	"minder/internal/ledger"
	appLog "minder/internal/log"
	"minder/internal/pending"
)

type flagConfig struct {
	configPath string
	digestNow  bool
}

func main() {
	flags := parseFlags()

	// Secrets come from the environment; .env is optional sugar for
	// local runs.
	if err := godotenv.Load(); err != nil {
		appLog.Debug("no .env file loaded", "reason", err)
	}

	conf, err := config.Load(flags.configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", flags.configPath)
		os.Exit(1)
	}
	conf.ApplyEnv()
	appLog.SetLevel(appLog.ParseLevel(conf.LogLevel))

	loc, err := conf.Location()
	if err != nil {
		appLog.Error("invalid timezone", err, "timezone", conf.Timezone)
		os.Exit(1)
	}

	appLog.Info("minder starting",
		"timezone", conf.Timezone,
		"provider", conf.Provider,
		"calendar_id", conf.CalendarID,
		"digest_cron", conf.DigestCron,
		"known_users", len(conf.KnownUsers),
	)

	// Root context with cancellation on SIGINT/SIGTERM.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		appLog.Info("signal received, shutting down", "signal", sig.String())
		cancel()
	}()

	provider, err := calendar.NewProvider(ctx, conf, loc)
	if err != nil {
		appLog.Error("failed to create calendar provider", err, "provider", conf.Provider)
		os.Exit(1)
	}

	telegram, err := bot.NewTelegram(conf.TelegramToken)
	if err != nil {
		appLog.Error("failed to connect to Telegram", err)
		os.Exit(1)
	}
	appLog.Info("connected to Telegram", "username", telegram.Username())

	users := pending.NewRegistry(conf.KnownUsers)
	dg := digest.New(provider, telegram, users, loc)

	if flags.digestNow {
		// One-shot mode: run a single digest pass and exit.
		dg.Run(ctx)
		return
	}

	handler := bot.NewHandler(
		telegram,
		provider,
		ledger.NewAirtable(conf.Airtable),
		pending.NewStore(),
		users,
		loc,
	)

	if err := dg.Start(conf.DigestCron); err != nil {
		appLog.Error("failed to schedule digest", err, "spec", conf.DigestCron)
		os.Exit(1)
	}
	defer dg.Stop()

	if err := telegram.Run(ctx, handler); err != nil && err != context.Canceled {
		appLog.Error("update loop stopped", err)
		os.Exit(1)
	}

	appLog.Info("minder exiting")
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", "minder.yaml", "Path to config file")
	flag.BoolVar(&cfg.digestNow, "digest-now", false, "Send the daily digest once and exit")

	flag.Parse()

	return cfg
}
