package main

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/zulandar/hangar/internal/config"
	"github.com/zulandar/hangar/internal/db"
	"github.com/zulandar/hangar/internal/logging"
	"github.com/zulandar/hangar/internal/notify"
	"github.com/zulandar/hangar/internal/notify/discord"
	"github.com/zulandar/hangar/internal/notify/natsbus"
	"github.com/zulandar/hangar/internal/notify/slack"
	"github.com/zulandar/hangar/internal/pirep"
	"github.com/zulandar/hangar/internal/rank"
	"github.com/zulandar/hangar/internal/setting"
	"gorm.io/gorm"
)

// connectFromConfig loads the config file and opens the database.
func connectFromConfig(configPath string) (*config.Config, *gorm.DB, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	gormDB, err := db.Connect(cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	return cfg, gormDB, nil
}

// env is everything a lifecycle command needs.
type env struct {
	cfg     *config.Config
	db      *gorm.DB
	svc     *pirep.Service
	log     *slog.Logger
	closers []func()
}

// Close flushes pending notifications and releases resources, in reverse
// order of acquisition.
func (e *env) Close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		e.closers[i]()
	}
}

// openEnv connects to the database and builds the report service with its
// notification channels, stored settings and rank table.
func openEnv(configPath string) (*env, error) {
	cfg, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return nil, err
	}
	e := &env{cfg: cfg, db: gormDB}
	e.closers = append(e.closers, func() {
		if sqlDB, err := gormDB.DB(); err == nil {
			sqlDB.Close()
		}
	})

	log, logCloser, err := logging.New(cfg.Log)
	if err != nil {
		e.Close()
		return nil, err
	}
	e.log = log
	e.closers = append(e.closers, func() { logCloser.Close() })

	settings, err := setting.Load(gormDB, cfg.Settings)
	if err != nil {
		e.Close()
		return nil, err
	}
	ranks, err := rank.Load(gormDB)
	if err != nil {
		e.Close()
		return nil, err
	}

	fanout, closeChannels, err := buildNotifier(cfg.Notify, gormDB, log)
	if err != nil {
		e.Close()
		return nil, err
	}
	e.closers = append(e.closers, closeChannels)

	svc, err := pirep.New(pirep.Opts{
		DB:       gormDB,
		Settings: settings,
		Ranks:    ranks,
		Notifier: fanout,
		Logger:   log,
	})
	if err != nil {
		e.Close()
		return nil, err
	}
	e.svc = svc
	return e, nil
}

// buildNotifier wires the pilot inbox and every configured remote channel
// into one Fanout. The returned func waits for in-flight deliveries and
// closes the channels.
func buildNotifier(cfg config.NotifyConfig, gormDB *gorm.DB, log *slog.Logger) (*notify.Fanout, func(), error) {
	remote := make(map[string]notify.Notifier)
	var closers []io.Closer

	if cfg.Slack.BotToken != "" {
		ch, err := slack.New(slack.Opts{BotToken: cfg.Slack.BotToken, ChannelID: cfg.Slack.ChannelID})
		if err != nil {
			return nil, nil, err
		}
		remote["slack"] = ch
	}
	if cfg.Discord.BotToken != "" {
		ch, err := discord.New(discord.Opts{BotToken: cfg.Discord.BotToken, ChannelID: cfg.Discord.ChannelID})
		if err != nil {
			return nil, nil, err
		}
		remote["discord"] = ch
	}
	if cfg.NATS.URL != "" {
		bus, err := natsbus.New(natsbus.Opts{URL: cfg.NATS.URL, Subject: cfg.NATS.Subject})
		if err != nil {
			// The bus is optional; reports still flow without it.
			log.Warn("event bus unavailable", "url", cfg.NATS.URL, "err", err)
		} else {
			remote["nats"] = bus
			closers = append(closers, bus)
		}
	}

	fanout := notify.NewFanout(notify.FanoutOpts{
		Local:   []notify.Notifier{notify.NewInbox(gormDB)},
		Remote:  remote,
		Timeout: cfg.Timeout,
		Logger:  log,
	})
	closeAll := func() {
		fanout.Wait()
		for _, c := range closers {
			if err := c.Close(); err != nil {
				log.Warn("close notification channel", "err", err)
			}
		}
	}
	return fanout, closeAll, nil
}

// formatMinutes renders a minute count as "1h 05m".
func formatMinutes(m int) string {
	sign := ""
	if m < 0 {
		sign = "-"
		m = -m
	}
	return fmt.Sprintf("%s%dh %02dm", sign, m/60, m%60)
}

// formatTime renders t in UTC, or "-" for nil.
func formatTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return "-"
	}
	return t.UTC().Format("2006-01-02 15:04")
}
