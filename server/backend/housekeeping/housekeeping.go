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

package housekeeping

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/stagegate/stagegate/server/logging"
)

// Task is one unit of housekeeping work. It receives the wall-clock time of
// the run and the candidates limit, and returns the number of items it
// processed.
type Task func(ctx context.Context, now time.Time, limit int) (int, error)

type namedTask struct {
	name string
	fn   Task
}

// Housekeeping is the housekeeping service. It periodically runs the
// registered tasks with the real clock.
type Housekeeping struct {
	interval        time.Duration
	candidatesLimit int
	now             func() time.Time

	mu    sync.Mutex
	tasks []namedTask

	ctx        context.Context
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
}

// New creates a new housekeeping instance.
func New(conf *Config) (*Housekeeping, error) {
	interval, err := conf.ParseInterval()
	if err != nil {
		return nil, err
	}

	ctx, cancelFunc := context.WithCancel(context.Background())

	return &Housekeeping{
		interval:        interval,
		candidatesLimit: conf.CandidatesLimit,
		now:             time.Now,

		ctx:        ctx,
		cancelFunc: cancelFunc,
	}, nil
}

// RegisterTask registers a task that runs on every tick.
func (h *Housekeeping) RegisterTask(name string, fn Task) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.tasks = append(h.tasks, namedTask{name: name, fn: fn})
}

// Start starts the housekeeping service.
func (h *Housekeeping) Start() error {
	h.wg.Add(1)
	go h.run()
	return nil
}

// Stop stops the housekeeping service and waits for the running tick.
func (h *Housekeeping) Stop() error {
	h.cancelFunc()
	h.wg.Wait()

	return nil
}

// RunOnce runs every registered task once and returns the number of
// processed items.
func (h *Housekeeping) RunOnce(ctx context.Context) (int, error) {
	h.mu.Lock()
	tasks := make([]namedTask, len(h.tasks))
	copy(tasks, h.tasks)
	h.mu.Unlock()

	total := 0
	now := h.now()
	for _, task := range tasks {
		count, err := task.fn(ctx, now, h.candidatesLimit)
		if err != nil {
			return total, fmt.Errorf("run %s: %w", task.name, err)
		}
		if count > 0 {
			logging.From(ctx).Infof("HSKP: %s processed %d", task.name, count)
		}
		total += count
	}

	return total, nil
}

// run is the housekeeping loop.
func (h *Housekeeping) run() {
	defer h.wg.Done()

	for {
		if _, err := h.RunOnce(h.ctx); err != nil {
			logging.From(h.ctx).Error(err)
		}

		select {
		case <-time.After(h.interval):
		case <-h.ctx.Done():
			return
		}
	}
}
