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
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bytedance/promokit/internal/domain/event"
	"github.com/bytedance/promokit/internal/infrastructure/repo"
	"github.com/bytedance/promokit/internal/testsuit"
)

func newBus(t *testing.T) (*Bus, *repo.OutboxRepo) {
	t.Helper()
	uow := repo.NewUnitOfWork(testsuit.InitDB())
	outbox := repo.NewOutboxRepo(uow)
	return New(outbox, logr.Discard(), WithPollInterval(10*time.Millisecond)), outbox
}

func TestBusDeliversPublishedEvents(t *testing.T) {
	bus, _ := newBus(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var delivered atomic.Int32
	bus.Register(event.TypeCouponRedeemed, func(ctx context.Context, evt *event.Event) error {
		var payload event.CouponRedeemed
		if err := evt.Decode(&payload); err != nil {
			return err
		}
		assert.Equal(t, "c1", payload.CouponID)
		delivered.Add(1)
		return nil
	})

	bus.Start(ctx)
	require.NoError(t, bus.Publish(ctx, event.New(&event.CouponRedeemed{CouponID: "c1", OrderID: "o1"})))

	assert.Eventually(t, func() bool { return delivered.Load() == 1 }, 2*time.Second, 10*time.Millisecond)

	// a delivered event is not delivered again
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(1), delivered.Load())
}

func TestBusFailingHandlerDoesNotBlockOthers(t *testing.T) {
	bus, _ := newBus(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var ok atomic.Int32
	bus.Register(event.TypeCouponRedeemed, func(ctx context.Context, evt *event.Event) error {
		return errors.New("boom")
	})
	bus.Register(event.TypeGiftCardIssued, func(ctx context.Context, evt *event.Event) error {
		ok.Add(1)
		return nil
	})

	bus.Start(ctx)
	require.NoError(t, bus.Publish(ctx,
		event.New(&event.CouponRedeemed{CouponID: "c1"}),
		event.New(&event.GiftCardIssued{CardID: "g1"}),
	))

	assert.Eventually(t, func() bool { return ok.Load() == 1 }, 2*time.Second, 10*time.Millisecond)
}

func TestBusEventWithoutHandlerIsSent(t *testing.T) {
	bus, outbox := newBus(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bus.Start(ctx)
	require.NoError(t, bus.Publish(ctx, event.New(&event.UnitsReleased{SaleID: "s1"})))

	assert.Eventually(t, func() bool {
		pending, err := outbox.FetchPending(ctx, time.Now().Add(time.Second), 10)
		return err == nil && len(pending) == 0
	}, 2*time.Second, 10*time.Millisecond)
}
