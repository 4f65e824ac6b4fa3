// Copyright 2026 The GLPI Notifier Authors
// SPDX-License-Identifier: Apache-2.0

// glpi-notifier polls a GLPI server for new tickets and raises a
// desktop toast for each one it has not announced before.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/glpinotify/glpinotify/lib/binhash"
	"github.com/glpinotify/glpinotify/lib/config"
	"github.com/glpinotify/glpinotify/lib/glpi"
	"github.com/glpinotify/glpinotify/lib/heartbeat"
	"github.com/glpinotify/glpinotify/lib/notify"
	"github.com/glpinotify/glpinotify/lib/poller"
	"github.com/glpinotify/glpinotify/lib/process"
	"github.com/glpinotify/glpinotify/lib/seenstate"
	"github.com/glpinotify/glpinotify/lib/toastdef"
)

const version = "1.0.0"

func main() {
	if err := run(); err != nil {
		process.Fatal(err)
	}
}

func run() error {
	configPath := pflag.String("config", "", "path to the YAML configuration file")
	testToast := pflag.Bool("test-toast", false, "deliver one test notification and exit")
	verbose := pflag.BoolP("verbose", "v", false, "enable debug logging")
	showVersion := pflag.Bool("version", false, "print the version and exit")
	pflag.Parse()

	if *showVersion {
		fmt.Println("glpi-notifier " + version)
		return nil
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	var cfg *config.Config
	var err error
	if *configPath != "" {
		cfg, err = config.LoadFile(*configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := cfg.EnsurePaths(); err != nil {
		return err
	}

	profile, err := toastdef.ReadFile(cfg.Toast.ProfileFile)
	if err != nil {
		return err
	}
	helperPath, err := notify.ResolveHelper(cfg.Toast.HelperDir)
	if err != nil {
		return err
	}
	logoPath := notify.ResolveLogo(cfg.Toast.LogoPath, cfg.CachedLogoPath())

	notifier, err := notify.New(notify.Config{
		AppID:       cfg.Toast.AppID,
		URLTemplate: cfg.Toast.URLTemplate,
		LogoPath:    logoPath,
		HelperPath:  helperPath,
		Profile:     profile,
		Logger:      logger,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *testToast {
		outcome, err := notifier.Deliver(ctx, notify.Notification{
			TicketID:  1,
			Title:     "Test notification",
			Requester: "glpi-notifier",
		})
		if err != nil {
			return err
		}
		logger.Info("test toast delivered", "outcome", outcome.String())
		return nil
	}

	client, err := glpi.NewClient(glpi.Config{
		BaseURL:            cfg.Server.BaseURL,
		UserToken:          cfg.Server.UserToken,
		AppToken:           cfg.Server.AppToken,
		InsecureSkipVerify: cfg.Server.InsecureSkipVerify,
		Logger:             logger,
	})
	if err != nil {
		return err
	}

	store, loadErr := seenstate.Load(cfg.StatePath())
	if loadErr != nil {
		logger.Warn("prior state unreadable, starting fresh", "error", loadErr)
	}

	binaryDigest, err := binhash.SelfDigest()
	if err != nil {
		logger.Warn("could not hash own executable", "error", err)
		binaryDigest = ""
	}

	loop, err := poller.New(poller.Config{
		Transport:      client,
		Notifier:       notifier,
		Store:          store,
		StatePath:      cfg.StatePath(),
		Heartbeat:      heartbeat.NewWriter(cfg.HeartbeatPath(), binaryDigest),
		Interval:       cfg.Interval(),
		BatchLimit:     cfg.Polling.BatchLimit,
		FirstRunNotify: cfg.Polling.FirstRunNotify,
		DebugList:      cfg.Polling.DebugList,
		Logger:         logger,
	})
	if err != nil {
		return err
	}

	logger.Info("glpi-notifier starting",
		"version", version,
		"base_url", cfg.Server.BaseURL,
		"interval", cfg.Interval().String(),
		"first_run", store.FirstRun(),
		"seen", store.Len())

	return loop.Run(ctx)
}
