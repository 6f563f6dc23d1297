/*
 * Copyright 2026 The Stagegate Authors. All rights reserved.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/stagegate/stagegate/api/types"
	"github.com/stagegate/stagegate/cmd/stagegate/config"
)

var (
	previewAt    string
	previewStage string
)

func newPreviewCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "preview [document id]",
		Short:   "Show the document as it resolves at the given instant",
		PreRunE: config.Preload,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("document id is required")
			}

			var at time.Time
			if previewAt != "" {
				parsed, err := time.Parse(time.RFC3339, previewAt)
				if err != nil {
					return fmt.Errorf("parse --at: %w", err)
				}
				at = parsed
			}

			cli, err := config.Dial()
			if err != nil {
				return err
			}
			defer cli.Close()

			summary, err := cli.GetDocument(cmd.Context(), types.ID(args[0]), types.Stage(previewStage), at)
			if err != nil {
				return err
			}

			return printSummary(cmd, viper.GetString("output"), summary)
		},
	}
}

func printSummary(cmd *cobra.Command, output string, summary *types.DocumentSummary) error {
	switch output {
	case "":
		tw := table.NewWriter()
		tw.Style().Options.DrawBorder = false
		tw.Style().Options.SeparateColumns = false
		tw.Style().Options.SeparateFooter = false
		tw.Style().Options.SeparateHeader = false
		tw.Style().Options.SeparateRows = false
		tw.AppendHeader(table.Row{
			"ID",
			"STAGE",
			"SNAPSHOT",
			"VERSION",
			"TITLE",
			"EMBARGO",
			"EXPIRY",
			"AT",
		})
		var version int64
		var title string
		if s := summary.Resolution.Snapshot; s != nil {
			version = s.Version
			title = s.Title
		}
		tw.AppendRow(table.Row{
			summary.ID,
			summary.Stage,
			summary.Resolution.Kind,
			version,
			title,
			formatTime(summary.EmbargoAt),
			formatTime(summary.ExpiryAt),
			summary.EvaluatedAt.Format(time.RFC3339),
		})
		cmd.Printf("%s\n", tw.Render())
	case "json":
		jsonOutput, err := json.MarshalIndent(summary, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal JSON: %w", err)
		}
		cmd.Println(string(jsonOutput))
	case "yaml":
		yamlOutput, err := yaml.Marshal(summary)
		if err != nil {
			return fmt.Errorf("marshal YAML: %w", err)
		}
		cmd.Println(string(yamlOutput))
	default:
		return fmt.Errorf("unknown output format: %s", output)
	}

	return nil
}

func formatTime(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format(time.RFC3339)
}

func init() {
	cmd := newPreviewCmd()
	cmd.Flags().StringVar(
		&previewAt,
		"at",
		"",
		"RFC 3339 instant to resolve at, the server's current instant if empty",
	)
	cmd.Flags().StringVar(
		&previewStage,
		"stage",
		string(types.StageLive),
		"Stage to resolve: live or draft",
	)

	rootCmd.AddCommand(cmd)
}
