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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bytedance/promokit/internal/domain"
	"github.com/bytedance/promokit/internal/testsuit"
)

func newCoupon(t *testing.T, code string, usageLimit int) *domain.Coupon {
	t.Helper()
	now := time.Now()
	c, err := domain.NewCoupon(domain.CouponSpec{
		Code:          code,
		DiscountType:  domain.DiscountPercentage,
		DiscountValue: domain.MustMoney("10"),
		UsageLimit:    usageLimit,
		ValidFrom:     now.Add(-time.Hour),
		ValidTo:       now.Add(time.Hour),
	})
	require.NoError(t, err)
	return c
}

func TestCouponRepoCRUD(t *testing.T) {
	uow := NewUnitOfWork(testsuit.InitDB())
	r := NewCouponRepo(uow)
	ctx := context.Background()

	c := newCoupon(t, "save10", 100)
	require.NoError(t, r.Create(ctx, c))

	got, err := r.GetByCode(ctx, "  save10 ")
	require.NoError(t, err)
	assert.Equal(t, c.GetID(), got.GetID())

	got.IsActive = false
	require.NoError(t, r.Save(ctx, got))
	assert.Equal(t, int64(1), got.GetVersion())

	// stale writer loses
	c.IsActive = true
	assert.ErrorIs(t, r.Save(ctx, c), domain.ErrConflict)

	require.NoError(t, r.Delete(ctx, c.GetID()))
	_, err = r.GetByID(ctx, c.GetID())
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, r.Delete(ctx, c.GetID()), domain.ErrNotFound)
}

func TestCouponRepoUsageIdempotent(t *testing.T) {
	uow := NewUnitOfWork(testsuit.InitDB())
	r := NewCouponRepo(uow)
	ctx := context.Background()

	c := newCoupon(t, "once", 100)
	require.NoError(t, r.Create(ctx, c))

	u1, err := domain.NewCouponUsage(c.GetID(), "u1", "o1", time.Now())
	require.NoError(t, err)
	already, err := r.InsertUsage(ctx, u1)
	require.NoError(t, err)
	assert.False(t, already)

	// same coupon, same order: duplicate row reports alreadyUsed
	u2, err := domain.NewCouponUsage(c.GetID(), "u1", "o1", time.Now())
	require.NoError(t, err)
	already, err = r.InsertUsage(ctx, u2)
	require.NoError(t, err)
	assert.True(t, already)

	n, err := r.CountUsageByUser(ctx, c.GetID(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestCouponRepoIncrementUsage(t *testing.T) {
	uow := NewUnitOfWork(testsuit.InitDB())
	r := NewCouponRepo(uow)
	ctx := context.Background()

	c := newCoupon(t, "scarce", 2)
	require.NoError(t, r.Create(ctx, c))

	require.NoError(t, r.IncrementUsage(ctx, c.GetID()))
	require.NoError(t, r.IncrementUsage(ctx, c.GetID()))
	assert.ErrorIs(t, r.IncrementUsage(ctx, c.GetID()), domain.ErrLimitExceeded)

	got, err := r.GetByID(ctx, c.GetID())
	require.NoError(t, err)
	assert.Equal(t, 2, got.UsageCount)

	assert.ErrorIs(t, r.IncrementUsage(ctx, "missing"), domain.ErrNotFound)
}

func TestCouponRepoIncrementUsageUnlimited(t *testing.T) {
	uow := NewUnitOfWork(testsuit.InitDB())
	r := NewCouponRepo(uow)
	ctx := context.Background()

	c := newCoupon(t, "free", 0)
	require.NoError(t, r.Create(ctx, c))
	for i := 0; i < 5; i++ {
		require.NoError(t, r.IncrementUsage(ctx, c.GetID()))
	}
}
