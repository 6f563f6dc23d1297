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

// Package server provides the Stagegate server which is the main entry point
// of the system. The server is responsible for starting the API server, the
// profiling server and the housekeeping of scheduled documents.
package server

import (
	"context"
	gosync "sync"
	"time"

	"github.com/stagegate/stagegate/server/backend"
	"github.com/stagegate/stagegate/server/profiling"
	"github.com/stagegate/stagegate/server/profiling/prometheus"
	"github.com/stagegate/stagegate/server/rpc"
	"github.com/stagegate/stagegate/server/workflow"
)

// Stagegate is a server of Stagegate. It serves the workflow API and
// materializes embargoes and expiries as they fall due.
type Stagegate struct {
	lock gosync.Mutex

	conf            *Config
	backend         *backend.Backend
	rpcServer       *rpc.Server
	profilingServer *profiling.Server

	shutdown   bool
	shutdownCh chan struct{}
}

// New creates a new instance of Stagegate.
func New(conf *Config) (*Stagegate, error) {
	if err := conf.Validate(); err != nil {
		return nil, err
	}

	metrics, err := prometheus.NewMetrics()
	if err != nil {
		return nil, err
	}

	be, err := backend.New(
		conf.Backend,
		conf.Mongo,
		conf.Housekeeping,
		conf.Permission,
		conf.Notification,
		conf.Kafka,
		metrics,
	)
	if err != nil {
		return nil, err
	}

	var profilingServer *profiling.Server
	if conf.Profiling != nil {
		profilingServer = profiling.NewServer(conf.Profiling, metrics)
	}

	return &Stagegate{
		conf:            conf,
		backend:         be,
		rpcServer:       rpc.NewServer(conf.RPC, be),
		profilingServer: profilingServer,
		shutdownCh:      make(chan struct{}),
	}, nil
}

// Start starts the server by opening the rpc port.
func (r *Stagegate) Start() error {
	r.lock.Lock()
	defer r.lock.Unlock()

	RegisterHousekeepingTasks(r.backend)

	if err := r.backend.Start(); err != nil {
		return err
	}

	if r.profilingServer != nil {
		if err := r.profilingServer.Start(); err != nil {
			return err
		}
	}

	return r.rpcServer.Start()
}

// Shutdown shuts down this Stagegate server.
func (r *Stagegate) Shutdown(graceful bool) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	if r.shutdown {
		return nil
	}

	r.rpcServer.Shutdown(graceful)
	if r.profilingServer != nil {
		r.profilingServer.Shutdown(graceful)
	}

	if err := r.backend.Shutdown(); err != nil {
		return err
	}

	close(r.shutdownCh)
	r.shutdown = true
	return nil
}

// ShutdownCh returns the shutdown channel.
func (r *Stagegate) ShutdownCh() <-chan struct{} {
	return r.shutdownCh
}

// RPCAddr returns the address of the RPC.
func (r *Stagegate) RPCAddr() string {
	return r.conf.RPCAddr()
}

// RegisterHousekeepingTasks registers the materialization of due embargoes
// and expiries.
func RegisterHousekeepingTasks(be *backend.Backend) {
	be.Housekeeping.RegisterTask("materialization", func(ctx context.Context, now time.Time, limit int) (int, error) {
		return workflow.MaterializeDue(ctx, be, now, limit)
	})
}
