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

package visibility

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/stagegate/stagegate/pkg/errors"
)

// ErrPreviewInProgress is returned when another preview session holds the
// simulated instant.
var ErrPreviewInProgress = errors.FailedPrecond("preview already in progress").WithCode("ErrPreviewInProgress")

// Clock is the process-wide source of the evaluation instant. It returns the
// real time unless a simulated instant is set.
type Clock struct {
	now       func() time.Time
	simulated atomic.Pointer[time.Time]
	session   atomic.Pointer[Preview]
}

// NewClock creates a clock backed by the wall clock.
func NewClock() *Clock {
	return NewClockWithSource(time.Now)
}

// NewClockWithSource creates a clock backed by the given time source.
func NewClockWithSource(now func() time.Time) *Clock {
	return &Clock{now: now}
}

// Now returns the real time, ignoring any simulated instant.
func (c *Clock) Now() time.Time {
	return c.now()
}

// SetSimulatedInstant overrides the evaluation instant of every read. Passing
// nil clears the override.
func (c *Clock) SetSimulatedInstant(t *time.Time) {
	if t == nil {
		c.simulated.Store(nil)
		return
	}

	instant := *t
	c.simulated.Store(&instant)
}

// SimulatedInstant returns the override, or nil when none is set.
func (c *Clock) SimulatedInstant() *time.Time {
	t := c.simulated.Load()
	if t == nil {
		return nil
	}

	instant := *t
	return &instant
}

// CurrentInstant returns the simulated instant when set, the real time
// otherwise.
func (c *Clock) CurrentInstant() time.Time {
	if t := c.simulated.Load(); t != nil {
		return *t
	}

	return c.now()
}

// Preview is an exclusive session over the simulated instant.
type Preview struct {
	clock *Clock
	ended atomic.Bool
}

// BeginPreview sets the simulated instant for the duration of a session. It
// fails with ErrPreviewInProgress while another session is active.
func (c *Clock) BeginPreview(t time.Time) (*Preview, error) {
	p := &Preview{clock: c}
	if !c.session.CompareAndSwap(nil, p) {
		return nil, ErrPreviewInProgress
	}

	c.SetSimulatedInstant(&t)
	return p, nil
}

// ActivePreview reports whether a preview session holds the clock.
func (c *Clock) ActivePreview() bool {
	return c.session.Load() != nil
}

// End clears the simulated instant and releases the session. Calling End
// more than once has no effect.
func (p *Preview) End() {
	if !p.ended.CompareAndSwap(false, true) {
		return
	}

	p.clock.SetSimulatedInstant(nil)
	p.clock.session.CompareAndSwap(p, nil)
}

type instantKey struct{}

// WithInstant returns a context that carries an explicit evaluation instant.
// Reads under this context ignore the process-wide clock.
func WithInstant(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, instantKey{}, t)
}

// InstantFrom returns the instant carried by the context, falling back to
// the clock's current instant.
func InstantFrom(ctx context.Context, clock *Clock) time.Time {
	if t, ok := ctx.Value(instantKey{}).(time.Time); ok {
		return t
	}

	return clock.CurrentInstant()
}
