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
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/stagegate/stagegate/server"
	"github.com/stagegate/stagegate/server/backend/database/mongo"
	"github.com/stagegate/stagegate/server/backend/messagebroker"
	"github.com/stagegate/stagegate/server/logging"
)

var (
	gracefulTimeout = 10 * time.Second
)

var (
	flagConfPath string
	flagLogLevel string

	tokenDuration        time.Duration
	capabilityTimeout    time.Duration
	housekeepingInterval time.Duration
	rpcReadTimeout       time.Duration
	rpcWriteTimeout      time.Duration
	notificationTimeout  time.Duration

	mongoConnectionURI     string
	mongoConnectionTimeout time.Duration
	mongoStagegateDatabase string
	mongoPingTimeout       time.Duration

	kafkaAddresses    string
	kafkaTopic        string
	kafkaWriteTimeout time.Duration

	conf = server.NewConfig()
)

func newServerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "server [options]",
		Short: "Start Stagegate server",
		RunE: func(cmd *cobra.Command, args []string) error {
			conf.Backend.TokenDuration = tokenDuration.String()
			conf.Backend.CapabilityTimeout = capabilityTimeout.String()
			conf.Housekeeping.Interval = housekeepingInterval.String()
			conf.RPC.ReadTimeout = rpcReadTimeout.String()
			conf.RPC.WriteTimeout = rpcWriteTimeout.String()
			conf.Notification.Timeout = notificationTimeout.String()

			if mongoConnectionURI != "" {
				conf.Mongo = &mongo.Config{
					ConnectionURI:     mongoConnectionURI,
					ConnectionTimeout: mongoConnectionTimeout.String(),
					StagegateDatabase: mongoStagegateDatabase,
					PingTimeout:       mongoPingTimeout.String(),
				}
			}

			if kafkaAddresses != "" {
				conf.Kafka = &messagebroker.Config{
					Addresses:    kafkaAddresses,
					Topic:        kafkaTopic,
					WriteTimeout: kafkaWriteTimeout.String(),
				}
			}

			// If config file is given, command-line arguments will be overwritten.
			if flagConfPath != "" {
				parsed, err := server.NewConfigFromFile(flagConfPath)
				if err != nil {
					return err
				}
				conf = parsed
			}

			if err := logging.SetLogLevel(flagLogLevel); err != nil {
				return err
			}

			s, err := server.New(conf)
			if err != nil {
				return err
			}

			if err := s.Start(); err != nil {
				return err
			}

			if code := handleSignal(s); code != 0 {
				return fmt.Errorf("exit code: %d", code)
			}

			return nil
		},
	}
}

func handleSignal(r *server.Stagegate) int {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	var sig os.Signal
	select {
	case s := <-sigCh:
		sig = s
	case <-r.ShutdownCh():
		// stagegate is already shutdown
		return 0
	}

	graceful := false
	if sig == syscall.SIGINT || sig == syscall.SIGTERM {
		graceful = true
	}

	gracefulCh := make(chan struct{})
	go func() {
		if err := r.Shutdown(graceful); err != nil {
			return
		}
		close(gracefulCh)
	}()

	select {
	case <-sigCh:
		return 1
	case <-time.After(gracefulTimeout):
		return 1
	case <-gracefulCh:
		return 0
	}
}

func init() {
	cmd := newServerCmd()
	cmd.Flags().StringVarP(
		&flagConfPath,
		"config",
		"c",
		"",
		"Config path",
	)
	cmd.Flags().StringVarP(
		&flagLogLevel,
		"log-level",
		"l",
		"info",
		"Log level: debug, info, warn, error, panic, fatal",
	)
	cmd.Flags().IntVar(
		&conf.RPC.Port,
		"rpc-port",
		server.DefaultRPCPort,
		"RPC port",
	)
	cmd.Flags().StringVar(
		&conf.RPC.CertFile,
		"rpc-cert-file",
		"",
		"RPC certification file's path",
	)
	cmd.Flags().StringVar(
		&conf.RPC.KeyFile,
		"rpc-key-file",
		"",
		"RPC key file's path",
	)
	cmd.Flags().Int64Var(
		&conf.RPC.MaxRequestBytes,
		"rpc-max-request-bytes",
		0,
		"Maximum client request size in bytes the server will accept, 0 for no limit.",
	)
	cmd.Flags().DurationVar(
		&rpcReadTimeout,
		"rpc-read-timeout",
		server.DefaultRPCReadTimeout,
		"Maximum duration for reading one request.",
	)
	cmd.Flags().DurationVar(
		&rpcWriteTimeout,
		"rpc-write-timeout",
		server.DefaultRPCWriteTimeout,
		"Maximum duration for writing one response.",
	)
	cmd.Flags().IntVar(
		&conf.Profiling.Port,
		"profiling-port",
		server.DefaultProfilingPort,
		"Profiling port",
	)
	cmd.Flags().BoolVar(
		&conf.Profiling.EnablePprof,
		"enable-pprof",
		false,
		"Enable runtime profiling data via HTTP server.",
	)
	cmd.Flags().DurationVar(
		&housekeepingInterval,
		"housekeeping-interval",
		server.DefaultHousekeepingInterval,
		"housekeeping interval between housekeeping runs",
	)
	cmd.Flags().IntVar(
		&conf.Housekeeping.CandidatesLimit,
		"housekeeping-candidates-limit",
		server.DefaultHousekeepingCandidatesLimit,
		"due documents limit for a single housekeeping run",
	)
	cmd.Flags().StringVar(
		&mongoConnectionURI,
		"mongo-connection-uri",
		"",
		"MongoDB's connection URI",
	)
	cmd.Flags().DurationVar(
		&mongoConnectionTimeout,
		"mongo-connection-timeout",
		server.DefaultMongoConnectionTimeout,
		"Mongo DB's connection timeout",
	)
	cmd.Flags().StringVar(
		&mongoStagegateDatabase,
		"mongo-stagegate-database",
		server.DefaultMongoStagegateDatabase,
		"Stagegate's database name in MongoDB",
	)
	cmd.Flags().DurationVar(
		&mongoPingTimeout,
		"mongo-ping-timeout",
		server.DefaultMongoPingTimeout,
		"Mongo DB's ping timeout",
	)
	cmd.Flags().StringVar(
		&kafkaAddresses,
		"kafka-addresses",
		"",
		"Comma separated Kafka brokers the workflow events are forwarded to",
	)
	cmd.Flags().StringVar(
		&kafkaTopic,
		"kafka-topic",
		server.DefaultKafkaTopic,
		"Kafka topic of the workflow events",
	)
	cmd.Flags().DurationVar(
		&kafkaWriteTimeout,
		"kafka-write-timeout",
		server.DefaultKafkaWriteTimeout,
		"Timeout of one Kafka write",
	)
	cmd.Flags().StringVar(
		&conf.Backend.SecretKey,
		"backend-secret-key",
		server.DefaultSecretKey,
		"The secret key for signing actor tokens.",
	)
	cmd.Flags().DurationVar(
		&tokenDuration,
		"backend-token-duration",
		server.DefaultTokenDuration,
		"The lifetime of actor tokens.",
	)
	cmd.Flags().DurationVar(
		&capabilityTimeout,
		"backend-capability-timeout",
		server.DefaultCapabilityTimeout,
		"Timeout of one capability check. A late check counts as not permitted.",
	)
	cmd.Flags().BoolVar(
		&conf.Backend.PublishersCanCreateRequests,
		"backend-publishers-can-create-requests",
		false,
		"Whether actors holding the approver capability may still file requests.",
	)
	cmd.Flags().StringSliceVar(
		&conf.Permission.Editors,
		"permission-editors",
		[]string{"*"},
		"Actors allowed to edit documents, '*' for everyone",
	)
	cmd.Flags().StringSliceVar(
		&conf.Permission.Publishers,
		"permission-publishers",
		nil,
		"Actors allowed to publish documents. They are the default approvers.",
	)
	cmd.Flags().StringSliceVar(
		&conf.Permission.Deleters,
		"permission-deleters",
		nil,
		"Actors allowed to delete documents from live",
	)
	cmd.Flags().StringVar(
		&conf.Permission.WebhookURL,
		"permission-webhook-url",
		"",
		"URL of the service answering capability checks",
	)
	cmd.Flags().StringVar(
		&conf.Notification.Sender,
		"notification-sender",
		server.DefaultNotificationSender,
		"Notification sender: log or webhook",
	)
	cmd.Flags().StringVar(
		&conf.Notification.WebhookURL,
		"notification-webhook-url",
		"",
		"URL notifications are posted to by the webhook sender",
	)
	cmd.Flags().DurationVar(
		&notificationTimeout,
		"notification-timeout",
		server.DefaultNotificationTimeout,
		"Timeout of one notification delivery",
	)
	cmd.Flags().StringVar(
		&conf.Backend.Hostname,
		"hostname",
		server.DefaultHostname,
		"Stagegate Server Hostname",
	)

	rootCmd.AddCommand(cmd)
}
