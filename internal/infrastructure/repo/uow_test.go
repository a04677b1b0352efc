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

package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bytedance/promokit/internal/domain"
	"github.com/bytedance/promokit/internal/domain/event"
	"github.com/bytedance/promokit/internal/testsuit"
)

func TestTransactionRollsBackAllWrites(t *testing.T) {
	uow := NewUnitOfWork(testsuit.InitDB())
	coupons := NewCouponRepo(uow)
	outbox := NewOutboxRepo(uow)
	ctx := context.Background()

	boom := errors.New("boom")
	c := newCoupon(t, "tx1", 10)
	err := uow.Transaction(ctx, func(ctx context.Context) error {
		if err := coupons.Create(ctx, c); err != nil {
			return err
		}
		if err := outbox.Append(ctx, event.New(&event.CouponRedeemed{CouponID: c.GetID()})); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = coupons.GetByID(ctx, c.GetID())
	assert.ErrorIs(t, err, domain.ErrNotFound)

	pending, err := outbox.FetchPending(ctx, time.Now().Add(time.Minute), 10)
	require.NoError(t, err)
	assert.Empty(t, pending, "a rolled back event must never become visible")
}

func TestTransactionNestedJoins(t *testing.T) {
	uow := NewUnitOfWork(testsuit.InitDB())
	coupons := NewCouponRepo(uow)
	ctx := context.Background()

	c := newCoupon(t, "tx2", 10)
	err := uow.Transaction(ctx, func(ctx context.Context) error {
		return uow.Transaction(ctx, func(ctx context.Context) error {
			return coupons.Create(ctx, c)
		})
	})
	require.NoError(t, err)

	_, err = coupons.GetByID(ctx, c.GetID())
	assert.NoError(t, err)
}

func TestOutboxRetryBookkeeping(t *testing.T) {
	uow := NewUnitOfWork(testsuit.InitDB())
	outbox := NewOutboxRepo(uow)
	ctx := context.Background()
	now := time.Now()

	evt := event.New(&event.CouponRedeemed{CouponID: "c1", OrderID: "o1"})
	require.NoError(t, outbox.Append(ctx, evt))

	pending, err := outbox.FetchPending(ctx, now.Add(time.Second), 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	row := pending[0]

	// schedule a retry in the future: not due yet
	require.NoError(t, outbox.MarkRetry(ctx, row.ID, 1, 5, now.Add(time.Minute)))
	pending, err = outbox.FetchPending(ctx, now.Add(time.Second), 10)
	require.NoError(t, err)
	assert.Empty(t, pending)

	// due again after the backoff
	pending, err = outbox.FetchPending(ctx, now.Add(2*time.Minute), 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)

	// retry budget exhausted: parked as failed
	require.NoError(t, outbox.MarkRetry(ctx, row.ID, 5, 5, now))
	pending, err = outbox.FetchPending(ctx, now.Add(time.Hour), 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestOutboxMarkSent(t *testing.T) {
	uow := NewUnitOfWork(testsuit.InitDB())
	outbox := NewOutboxRepo(uow)
	ctx := context.Background()

	require.NoError(t, outbox.Append(ctx, event.New(&event.CouponRedeemed{CouponID: "c1"})))
	pending, err := outbox.FetchPending(ctx, time.Now().Add(time.Second), 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)

	require.NoError(t, outbox.MarkSent(ctx, pending[0].ID))
	pending, err = outbox.FetchPending(ctx, time.Now().Add(time.Hour), 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
}
