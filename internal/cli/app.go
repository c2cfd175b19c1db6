// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jeranaias/friendsfixer-tui/internal/chat"
	"github.com/jeranaias/friendsfixer-tui/internal/config"
	"github.com/jeranaias/friendsfixer-tui/internal/fixer"
	"github.com/jeranaias/friendsfixer-tui/internal/logging"
	"github.com/jeranaias/friendsfixer-tui/internal/monitor"
)

// globalFlags are the persistent flags shared by every command.
type globalFlags struct {
	url        string
	configPath string
	verbose    bool
	noColor    bool
}

// app carries the resolved configuration and logger between the root
// command's hooks and the subcommands.
type app struct {
	flags  globalFlags
	cfg    *config.Config
	logger *zap.Logger
}

// interactive commands log to a file so the screen stays clean
var fileLoggedCommands = map[string]bool{
	"friendsfixer": true,
	"tui":          true,
	"chat":         true,
}

func (a *app) setup(cmd *cobra.Command) error {
	if a.flags.noColor {
		ForceColorsEnabled(false)
	}

	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}

	if a.flags.url != "" {
		if err := config.ValidateBaseURL(a.flags.url); err != nil {
			return fmt.Errorf("--url: %w", err)
		}
		cfg.Server.BaseURL = a.flags.url
		cfg.Migrate()
	}
	a.cfg = cfg

	opts := logging.Options{Level: cfg.Log.Level, Verbose: a.flags.verbose}
	if fileLoggedCommands[cmd.Name()] {
		if path, err := cfg.LogPath(); err == nil {
			opts.File = path
		}
	} else if !a.flags.verbose && cmd.Name() != "stub" {
		opts.Level = "warn"
	}
	a.logger = logging.NewOrNop(opts)
	a.logger.Debug("configuration loaded",
		zap.String("command", cmd.Name()),
		zap.String("base_url", cfg.Server.BaseURL),
	)
	return nil
}

func (a *app) loadConfig() (*config.Config, error) {
	if a.flags.configPath != "" {
		return config.LoadFromPath(a.flags.configPath)
	}
	cfg, err := config.Load()
	if cfg == nil {
		return nil, err
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, warnColor.Sprint("Warning:"), err)
	}
	return cfg, nil
}

func (a *app) teardown() {
	if a.logger != nil {
		_ = a.logger.Sync()
	}
}

// =============================================================================
// CORE CONSTRUCTION
// =============================================================================

// newClient builds a service client from the loaded configuration.
func (a *app) newClient() *fixer.Client {
	return fixer.NewClientWithConfig(&fixer.ClientConfig{
		BaseURL:       a.cfg.Server.BaseURL,
		HealthTimeout: a.cfg.HealthTimeout(),
		ChatTimeout:   a.cfg.ChatTimeout(),
		ShowHints:     a.cfg.Chat.ShowHints,
	}).WithLogger(a.logger)
}

// newCore builds the client, a stopped monitor and a fresh session.
func (a *app) newCore() (*fixer.Client, *monitor.Monitor, *chat.Session) {
	client := a.newClient()
	mon := monitor.New(client, monitor.Config{
		PollInterval: a.cfg.PollInterval(),
		Logger:       a.logger,
	})
	sess := chat.New(client, mon, chat.Config{
		Greeting:  a.cfg.Chat.Greeting,
		ServerURL: client.BaseURL(),
		Logger:    a.logger,
	})
	return client, mon, sess
}
