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

package requests

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/stagegate/stagegate/admin"
	"github.com/stagegate/stagegate/api/types"
	"github.com/stagegate/stagegate/cmd/stagegate/config"
)

var (
	kind     string
	author   string
	approver string
	statuses []string
)

func newListCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "ls",
		Short:   "List requests, most recently edited documents first",
		PreRunE: config.Preload,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := admin.RequestFilter{
				Kind:     types.RequestKind(kind),
				Author:   author,
				Approver: approver,
			}
			for _, s := range statuses {
				status := types.RequestStatus(s)
				if err := status.Validate(); err != nil {
					return err
				}
				filter.Statuses = append(filter.Statuses, status)
			}

			cli, err := config.Dial()
			if err != nil {
				return err
			}
			defer cli.Close()

			summaries, err := cli.ListRequests(cmd.Context(), filter)
			if err != nil {
				return err
			}

			return printRequests(cmd, viper.GetString("output"), summaries, time.Now())
		},
	}
}

func printRequests(cmd *cobra.Command, output string, summaries []*types.RequestSummary, now time.Time) error {
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
			"KIND",
			"STATUS",
			"DOCUMENT",
			"AUTHOR",
			"PUBLISHER",
			"EDITED",
		})
		for _, summary := range summaries {
			tw.AppendRow(table.Row{
				summary.ID,
				summary.Kind,
				summary.Status,
				summary.DocumentTitle,
				summary.AuthorID,
				summary.PublisherID,
				now.Sub(summary.DocumentUpdatedAt).Truncate(time.Second).String() + " ago",
			})
		}
		cmd.Printf("%s\n", tw.Render())
	case "json":
		jsonOutput, err := json.MarshalIndent(summaries, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal JSON: %w", err)
		}
		cmd.Println(string(jsonOutput))
	case "yaml":
		yamlOutput, err := yaml.Marshal(summaries)
		if err != nil {
			return fmt.Errorf("marshal YAML: %w", err)
		}
		cmd.Println(string(yamlOutput))
	default:
		return fmt.Errorf("unknown output format: %s", output)
	}

	return nil
}

func init() {
	cmd := newListCommand()
	cmd.Flags().StringVar(
		&kind,
		"kind",
		"",
		"Kind of the requests: publication or deletion",
	)
	cmd.Flags().StringVar(
		&author,
		"author",
		"",
		"List the requests filed by this actor",
	)
	cmd.Flags().StringVar(
		&approver,
		"approver",
		"",
		"List the requests this actor may approve",
	)
	cmd.Flags().StringSliceVar(
		&statuses,
		"status",
		nil,
		"Statuses to include, all if empty",
	)
	SubCmd.AddCommand(cmd)
}
