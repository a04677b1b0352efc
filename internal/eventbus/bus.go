//
// Copyright 2024 Bytedance Ltd. and/or its affiliates
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package eventbus

import (
	"context"
	"sync"
	"time"

	"github.com/avast/retry-go"
	"github.com/go-logr/logr"

	"github.com/bytedance/promokit/internal/domain/event"
	"github.com/bytedance/promokit/internal/infrastructure/repo"
)

type Handler func(ctx context.Context, evt *event.Event) error

type Options struct {
	PollInterval time.Duration
	BatchSize    int
	MaxRetry     int
	RetryBackoff time.Duration
}

func defaultOptions() Options {
	return Options{
		PollInterval: time.Second,
		BatchSize:    100,
		MaxRetry:     5,
		RetryBackoff: 30 * time.Second,
	}
}

// Bus drains the transactional outbox and delivers events to registered
// handlers, at least once. Handlers must tolerate redelivery.
type Bus struct {
	mu       sync.Mutex
	handlers map[event.Type][]Handler

	outbox *repo.OutboxRepo
	opts   Options
	logger logr.Logger
	clock  func() time.Time
}

func New(outbox *repo.OutboxRepo, logger logr.Logger, opts ...func(*Options)) *Bus {
	o := defaultOptions()
	for _, f := range opts {
		f(&o)
	}
	return &Bus{
		handlers: map[event.Type][]Handler{},
		outbox:   outbox,
		opts:     o,
		logger:   logger.WithName("eventbus"),
		clock:    time.Now,
	}
}

// Register adds a handler for an event type. Registration is expected at
// startup, before Start.
func (b *Bus) Register(t event.Type, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[t] = append(b.handlers[t], h)
}

// Publish persists externally produced events (e.g. order.completed from the
// checkout service) into the outbox for dispatch.
func (b *Bus) Publish(ctx context.Context, events ...*event.Event) error {
	return b.outbox.Append(ctx, events...)
}

// Start launches the polling dispatcher; it stops when ctx is cancelled.
func (b *Bus) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(b.opts.PollInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				b.dispatchOnce(ctx)
			}
		}
	}()
}

// dispatchOnce drains one batch. A failing event is rescheduled with backoff
// and never blocks the others.
func (b *Bus) dispatchOnce(ctx context.Context) {
	pending, err := b.outbox.FetchPending(ctx, b.clock(), b.opts.BatchSize)
	if err != nil {
		b.logger.Error(err, "fetch pending events failed")
		return
	}
	for _, p := range pending {
		evt := p.ToEvent()
		if err := b.handle(ctx, evt); err != nil {
			b.logger.Error(err, "event handler failed", "event_id", evt.ID, "type", evt.Type, "retry", p.RetryCount)
			next := b.clock().Add(b.opts.RetryBackoff)
			if mErr := b.outbox.MarkRetry(ctx, p.ID, p.RetryCount+1, b.opts.MaxRetry, next); mErr != nil {
				b.logger.Error(mErr, "mark retry failed", "event_id", evt.ID)
			}
			continue
		}
		if err := b.outbox.MarkSent(ctx, p.ID); err != nil {
			b.logger.Error(err, "mark sent failed", "event_id", evt.ID)
		}
	}
}

func (b *Bus) handle(ctx context.Context, evt *event.Event) error {
	b.mu.Lock()
	handlers := b.handlers[evt.Type]
	b.mu.Unlock()

	for _, h := range handlers {
		h := h
		err := retry.Do(
			func() error { return h(ctx, evt) },
			retry.Attempts(3),
			retry.Delay(100*time.Millisecond),
			retry.LastErrorOnly(true),
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func WithPollInterval(d time.Duration) func(*Options) {
	return func(o *Options) { o.PollInterval = d }
}

func WithMaxRetry(n int) func(*Options) {
	return func(o *Options) { o.MaxRetry = n }
}
