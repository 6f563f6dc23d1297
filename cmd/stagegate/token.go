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
	"errors"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/stagegate/stagegate/cmd/stagegate/config"
	"github.com/stagegate/stagegate/server"
	"github.com/stagegate/stagegate/server/rpc/auth"
)

var (
	tokenSecretKey string
	tokenLifetime  time.Duration
	tokenSave      bool
)

func newTokenCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "token [actor]",
		Short:   "Issue an API token for the actor",
		Long:    "Issue an API token for the actor, signed with the secret key the server is configured with.",
		PreRunE: config.Preload,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("actor is required")
			}

			token, err := auth.NewTokenManager(tokenSecretKey, tokenLifetime).Generate(args[0])
			if err != nil {
				return err
			}

			if tokenSave {
				conf, err := config.Load()
				if err != nil {
					return err
				}
				conf.Auths[viper.GetString("rpcAddr")] = token
				if err := config.Save(conf); err != nil {
					return err
				}
			}

			cmd.Println(token)
			return nil
		},
	}
}

func init() {
	cmd := newTokenCmd()
	cmd.Flags().StringVar(
		&tokenSecretKey,
		"secret-key",
		server.DefaultSecretKey,
		"The secret key the server signs tokens with",
	)
	cmd.Flags().DurationVar(
		&tokenLifetime,
		"duration",
		server.DefaultTokenDuration,
		"The lifetime of the token",
	)
	cmd.Flags().BoolVar(
		&tokenSave,
		"save",
		false,
		"Store the token for the server of --rpc-addr",
	)

	rootCmd.AddCommand(cmd)
}
