// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

func newStatsCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show correction service statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			stats, err := a.newClient().Stats(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(stats)
			}

			row := func(label string, v any) {
				fmt.Fprintf(out, "%s %v\n", labelColor.Sprintf("%-18s", label+":"), v)
			}
			row("Model initialized", stats.ModelInitialized)
			row("Model loaded", stats.ModelLoaded)
			row("ML available", stats.MLAvailable)
			row("Device", stats.Device)
			row("Phrase database", stats.RAGDatabaseSize)
			for _, section := range []struct {
				name   string
				values map[string]any
			}{{"Model config", stats.ModelConfig}, {"RAG config", stats.RAGConfig}} {
				if len(section.values) == 0 {
					continue
				}
				titleColor.Fprintln(out, section.name)
				keys := make([]string, 0, len(section.values))
				for k := range section.values {
					keys = append(keys, k)
				}
				sort.Strings(keys)
				for _, k := range keys {
					fmt.Fprintf(out, "  %s %v\n", labelColor.Sprint(k+":"), section.values[k])
				}
			}
			if stats.Timestamp != "" {
				row("Timestamp", stats.Timestamp)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")
	return cmd
}
