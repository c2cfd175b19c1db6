// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/jeranaias/friendsfixer-tui/internal/fixer"
	"github.com/jeranaias/friendsfixer-tui/internal/model"
	"github.com/jeranaias/friendsfixer-tui/internal/monitor"
)

type statusOptions struct {
	json bool
	wait time.Duration
}

// statusReport is the --json form of the status command.
type statusReport struct {
	BaseURL   string              `json:"base_url"`
	Status    string              `json:"status"`
	CheckedAt time.Time           `json:"checked_at"`
	Error     string              `json:"error,omitempty"`
	Files     map[string]any      `json:"files,omitempty"`
	Info      *fixer.InfoResponse `json:"info,omitempty"`
}

func newStatusCmd(a *app) *cobra.Command {
	var opts statusOptions
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Check the correction service",
		Long: `Checks the correction service once and prints its status.

With --wait the command keeps polling until the service is ready or the
wait expires, and fails if it never becomes ready.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(cmd, a, opts)
		},
	}
	cmd.Flags().BoolVar(&opts.json, "json", false, "print the report as JSON")
	cmd.Flags().DurationVar(&opts.wait, "wait", 0, "poll until ready or this long has passed")
	return cmd
}

func runStatus(cmd *cobra.Command, a *app, opts statusOptions) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	client, mon, sess := a.newCore()
	sess.Close()

	status := mon.RetryNow(ctx)
	if opts.wait > 0 && !status.IsReady() {
		status = waitReady(ctx, mon, opts.wait)
	}

	snap := mon.Snapshot()
	report := statusReport{
		BaseURL:   client.BaseURL(),
		Status:    snap.Status.String(),
		CheckedAt: snap.CheckedAt,
	}
	if snap.Err != nil {
		report.Error = snap.Err.Error()
	}
	if snap.Health != nil {
		report.Files = snap.Health.Files
	}
	if status != model.StatusError {
		if info, err := client.Info(ctx); err == nil {
			report.Info = info
		}
	}

	out := cmd.OutOrStdout()
	if opts.json {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return err
		}
	} else {
		fmt.Fprintf(out, "%s %s\n", labelColor.Sprint("Server:"), report.BaseURL)
		fmt.Fprintf(out, "%s %s\n", labelColor.Sprint("Status:"), colorStatus(snap.Status))
		if report.Error != "" {
			fmt.Fprintf(out, "%s %s\n", labelColor.Sprint("Error:"), report.Error)
		}
		keys := make([]string, 0, len(report.Files))
		for k := range report.Files {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(out, "  %s %v\n", labelColor.Sprint(k+":"), report.Files[k])
		}
		if report.Info != nil {
			fmt.Fprintf(out, "%s %s\n", labelColor.Sprint("Service:"), report.Info.Message)
		}
	}

	if opts.wait > 0 && !status.IsReady() {
		return fmt.Errorf("service not ready after %s", opts.wait)
	}
	return nil
}

// waitReady polls until the monitor reports ready or wait expires.
func waitReady(ctx context.Context, mon *monitor.Monitor, wait time.Duration) model.ConnectionStatus {
	ctx, cancel := context.WithTimeout(ctx, wait)
	defer cancel()

	changes, unsubscribe := mon.Subscribe()
	defer unsubscribe()
	mon.Start(ctx)
	defer mon.Stop()

	for {
		if status := mon.Status(); status.IsReady() {
			return status
		}
		select {
		case <-changes:
		case <-ctx.Done():
			return mon.Status()
		}
	}
}
