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
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/stagegate/stagegate/admin"
	"github.com/stagegate/stagegate/api/types"
	"github.com/stagegate/stagegate/cmd/stagegate/config"
	"github.com/stagegate/stagegate/internal/version"
)

var (
	clientOnly bool
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "version",
		Short:   "Print the version number of Stagegate",
		PreRunE: config.Preload,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := viper.GetString("output")
			if err := validateOutput(output); err != nil {
				return err
			}

			var versionInfo types.VersionInfo
			versionInfo.ClientVersion = clientVersion()

			var serverErr error
			if !clientOnly {
				versionInfo.ServerVersion, serverErr = serverVersion(cmd.Context())
			}

			switch output {
			case "":
				cmd.Printf("Stagegate Client: %s\n", versionInfo.ClientVersion.StagegateVersion)
				cmd.Printf("Go: %s\n", versionInfo.ClientVersion.GoVersion)
				cmd.Printf("Build Date: %s\n", versionInfo.ClientVersion.BuildDate)
				if versionInfo.ServerVersion != nil {
					cmd.Printf("Stagegate Server: %s\n", versionInfo.ServerVersion.StagegateVersion)
					cmd.Printf("Go: %s\n", versionInfo.ServerVersion.GoVersion)
					cmd.Printf("Build Date: %s\n", versionInfo.ServerVersion.BuildDate)
				}
			case "yaml":
				marshalled, err := yaml.Marshal(&versionInfo)
				if err != nil {
					return errors.New("failed to marshal YAML")
				}
				cmd.Println(string(marshalled))
			case "json":
				marshalled, err := json.MarshalIndent(&versionInfo, "", "  ")
				if err != nil {
					return errors.New("failed to marshal JSON")
				}
				cmd.Println(string(marshalled))
			}

			if serverErr != nil {
				cmd.Printf("Error fetching server version: %v\n", serverErr)
			}

			return nil
		},
	}
}

func serverVersion(ctx context.Context) (*types.VersionDetail, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	cli, err := admin.Dial(viper.GetString("rpcAddr"), admin.WithInsecure(viper.GetBool("insecure")))
	if err != nil {
		return nil, err
	}
	defer cli.Close()

	return cli.ServerVersion(ctx)
}

// validateOutput validates the output format option.
func validateOutput(output string) error {
	if output != "" && output != "yaml" && output != "json" {
		return fmt.Errorf("--output must be 'yaml' or 'json', given %q", output)
	}

	return nil
}

func clientVersion() *types.VersionDetail {
	return &types.VersionDetail{
		StagegateVersion: version.Version,
		GoVersion:        runtime.Version(),
		BuildDate:        version.BuildDate,
	}
}

func init() {
	cmd := newVersionCmd()
	cmd.Flags().BoolVar(
		&clientOnly,
		"client",
		clientOnly,
		"Shows client version only. (no server required)",
	)

	rootCmd.AddCommand(cmd)
}
