// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jeranaias/friendsfixer-tui/internal/stub"
)

func newStubCmd(a *app) *cobra.Command {
	cfg := stub.DefaultConfig()
	var failWith string
	cmd := &cobra.Command{
		Use:   "stub",
		Short: "Run a local stand-in correction service",
		Long: `Runs a small correction service that speaks the same HTTP API as the
real one, with a built-in Konglish phrase table. It reports "loading" for
--warm-up after start, then "ready".

  friendsfixer stub --addr 127.0.0.1:8000
  friendsfixer --url http://127.0.0.1:8000`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			cfg.Logger = a.logger
			s := stub.New(cfg)
			if failWith != "" {
				s.SetFailure(failWith)
			}
			err := s.ListenAndServe(ctx)
			a.logger.Info("stub service stopped", zap.Int("chat_requests", s.Requests()))
			return err
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&cfg.Addr, "addr", cfg.Addr, "listen address")
	flags.DurationVar(&cfg.WarmUp, "warm-up", cfg.WarmUp, "how long the model reports loading")
	flags.DurationVar(&cfg.Latency, "latency", cfg.Latency, "delay added to every reply")
	flags.Float64Var(&cfg.RatePerSecond, "rate", cfg.RatePerSecond, "chat requests per second before 503 (0 = unlimited)")
	flags.IntVar(&cfg.Burst, "burst", cfg.Burst, "chat request burst size")
	flags.StringVar(&failWith, "fail", "", "answer every chat request with HTTP 500 and this detail")
	return cmd
}
