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

// Package backend holds the resources shared by every workflow operation:
// storage, locks, clock, capability checks, notifications and event
// delivery.
package backend

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/stagegate/stagegate/api/types/events"
	"github.com/stagegate/stagegate/server/backend/background"
	"github.com/stagegate/stagegate/server/backend/database"
	memdb "github.com/stagegate/stagegate/server/backend/database/memory"
	"github.com/stagegate/stagegate/server/backend/database/mongo"
	"github.com/stagegate/stagegate/server/backend/housekeeping"
	"github.com/stagegate/stagegate/server/backend/messagebroker"
	"github.com/stagegate/stagegate/server/backend/pubsub"
	"github.com/stagegate/stagegate/server/backend/sync"
	"github.com/stagegate/stagegate/server/logging"
	"github.com/stagegate/stagegate/server/notification"
	"github.com/stagegate/stagegate/server/permission"
	"github.com/stagegate/stagegate/server/profiling/prometheus"
	"github.com/stagegate/stagegate/server/visibility"
)

// Backend manages the database and the in-process services of the server.
type Backend struct {
	Config *Config

	// DB is the database instance.
	DB database.Database
	// Lockers serializes the transitions of one document.
	Lockers *sync.LockerManager
	// Clock is the process-wide evaluation instant.
	Clock *visibility.Clock

	// Permission resolves capabilities and default approvers.
	Permission permission.Checker
	// Notifier delivers notifications.
	Notifier *notification.Notifier

	// PubSub is used to publish workflow events to subscribers.
	PubSub *pubsub.PubSub
	// MsgBroker forwards workflow events out of the process.
	MsgBroker messagebroker.Broker

	// Background is used to manage background tasks.
	Background *background.Background
	// Housekeeping materializes due schedules.
	Housekeeping *housekeeping.Housekeeping

	// Metrics is used to expose metrics.
	Metrics *prometheus.Metrics
}

// New creates a new instance of Backend.
func New(
	conf *Config,
	mongoConf *mongo.Config,
	housekeepingConf *housekeeping.Config,
	permissionConf *permission.Config,
	notificationConf *notification.Config,
	kafkaConf *messagebroker.Config,
	metrics *prometheus.Metrics,
) (*Backend, error) {
	// 01. Resolve the hostname of this server.
	if conf.Hostname == "" {
		hostname, err := os.Hostname()
		if err != nil {
			return nil, fmt.Errorf("os.Hostname: %w", err)
		}
		conf.Hostname = hostname
	}

	// 02. Create the database instance. If the MongoDB configuration is given,
	// create a MongoDB instance. Otherwise, create a memory database instance.
	var db database.Database
	var err error
	if mongoConf != nil {
		db, err = mongo.Dial(mongoConf)
	} else {
		db, err = memdb.New()
	}
	if err != nil {
		return nil, err
	}

	// 03. Create the housekeeping service. Tasks are registered by the server.
	housekeeper, err := housekeeping.New(housekeepingConf)
	if err != nil {
		return nil, closeOnError(db, err)
	}

	ps := pubsub.New()
	if metrics != nil {
		if err := metrics.ObserveSubscriptions(ps.Len); err != nil {
			return nil, closeOnError(db, err)
		}
	}

	// 04. Create the collaborators of the workflow.
	checker := permission.New(permissionConf)
	notifier := notification.NewNotifier(
		notification.NewSender(notificationConf),
		notificationConf.ParseTimeout(),
		metrics,
	)

	dbInfo := "memory"
	if mongoConf != nil {
		dbInfo = mongoConf.ConnectionURI
	}
	logging.DefaultLogger().Infof("backend created: db: %s", dbInfo)

	return &Backend{
		Config: conf,

		DB:      db,
		Lockers: sync.New(),
		Clock:   visibility.NewClock(),

		Permission: checker,
		Notifier:   notifier,

		PubSub:    ps,
		MsgBroker: messagebroker.Ensure(kafkaConf),

		Background:   background.New(metrics),
		Housekeeping: housekeeper,

		Metrics: metrics,
	}, nil
}

// closeOnError closes the database opened for a backend that failed to come
// up and returns the cause.
func closeOnError(db database.Database, cause error) error {
	if err := db.Close(); err != nil {
		return errors.Join(cause, fmt.Errorf("close database: %w", err))
	}
	return cause
}

// Start starts the backend.
func (b *Backend) Start() error {
	if err := b.Housekeeping.Start(); err != nil {
		return err
	}

	logging.DefaultLogger().Infof("backend started")
	return nil
}

// Shutdown closes all resources of this instance.
func (b *Backend) Shutdown() error {
	var errs []error

	if err := b.Housekeeping.Stop(); err != nil {
		errs = append(errs, err)
	}

	b.Background.Close()

	if err := b.MsgBroker.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := b.DB.Close(); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	logging.DefaultLogger().Infof("backend stopped")
	return nil
}

// PublishEvent hands the event to in-process subscribers and to the message
// broker. Broker failures are logged.
func (b *Backend) PublishEvent(ctx context.Context, event events.WorkflowEvent) {
	b.PubSub.Publish(ctx, event)

	if err := b.MsgBroker.Produce(ctx, messagebroker.WorkflowEventMessage{WorkflowEvent: event}); err != nil {
		logging.From(ctx).Warnf("produce %s event of %s: %v", event.Type, event.DocumentID, err)
	}

	if b.Metrics != nil {
		b.Metrics.AddEventPublished(string(event.Type))
	}
}

// Can reports whether the actor holds the capability on the document. The
// check is bounded by the capability timeout; a failed or late check counts
// as not permitted.
func (b *Backend) Can(
	ctx context.Context,
	actor string,
	capability permission.Capability,
	doc *database.DocInfo,
) bool {
	ctx, cancel := context.WithTimeout(ctx, b.Config.ParseCapabilityTimeout())
	defer cancel()

	allowed, err := b.Permission.Check(ctx, actor, capability, doc)
	if err != nil {
		logging.From(ctx).Warnf("check %s of %s: %v", capability, actor, err)
		if b.Metrics != nil {
			b.Metrics.AddCapabilityCheckFailure()
		}
		return false
	}

	return allowed
}
