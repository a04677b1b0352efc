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

package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bytedance/promokit/internal/domain"
)

func TestCouponServiceValidate(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.seedCoupon(t, "SAVE10", 100, 1)

	q, err := e.coupons.Validate(ctx, "save10", "u1", domain.MustMoney("100"), nil)
	require.NoError(t, err)
	assert.True(t, q.Discount.Equal(domain.MustMoney("10")))

	_, err = e.coupons.Validate(ctx, "save10", "u1", domain.MustMoney("20"), nil)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = e.coupons.Validate(ctx, "unknown", "u1", domain.MustMoney("100"), nil)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCouponServiceRedeemIdempotent(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	c := e.seedCoupon(t, "SAVE10", 100, 5)

	d1, err := e.coupons.Redeem(ctx, "SAVE10", "u1", "o1", domain.MustMoney("100"), nil)
	require.NoError(t, err)
	assert.True(t, d1.Equal(domain.MustMoney("10")))

	// replay with the same order: same discount, nothing consumed twice
	d2, err := e.coupons.Redeem(ctx, "SAVE10", "u1", "o1", domain.MustMoney("100"), nil)
	require.NoError(t, err)
	assert.True(t, d2.Equal(d1))

	got, err := e.coupons.Get(ctx, c.GetID())
	require.NoError(t, err)
	assert.Equal(t, 1, got.UsageCount)
}

// A replay must stay a no-op even when the first redemption consumed the
// last allowed use, for the per-user and the global limit alike.
func TestCouponServiceRedeemReplayAtLimit(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	c := e.seedCoupon(t, "ONCE", 1, 1)

	d1, err := e.coupons.Redeem(ctx, "ONCE", "u1", "o1", domain.MustMoney("200"), nil)
	require.NoError(t, err)
	assert.True(t, d1.Equal(domain.MustMoney("20")))

	// per-user limit 1 is now consumed; the identical call replays, it does
	// not count against the limit
	d2, err := e.coupons.Redeem(ctx, "ONCE", "u1", "o1", domain.MustMoney("200"), nil)
	require.NoError(t, err)
	assert.True(t, d2.Equal(d1))

	// the global limit is also exhausted; still a replay for the same order
	d3, err := e.coupons.Redeem(ctx, "ONCE", "u1", "o1", domain.MustMoney("200"), nil)
	require.NoError(t, err)
	assert.True(t, d3.Equal(d1))

	got, err := e.coupons.Get(ctx, c.GetID())
	require.NoError(t, err)
	assert.Equal(t, 1, got.UsageCount)

	// a genuinely new order is still rejected
	_, err = e.coupons.Redeem(ctx, "ONCE", "u1", "o2", domain.MustMoney("200"), nil)
	assert.ErrorIs(t, err, domain.ErrLimitExceeded)
	_, err = e.coupons.Redeem(ctx, "ONCE", "u2", "o3", domain.MustMoney("200"), nil)
	assert.ErrorIs(t, err, domain.ErrLimitExceeded)
}

func TestCouponServiceRedeemLimits(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.seedCoupon(t, "TIGHT", 2, 1)

	_, err := e.coupons.Redeem(ctx, "TIGHT", "u1", "o1", domain.MustMoney("100"), nil)
	require.NoError(t, err)

	// second order for the same user hits the per-user limit
	_, err = e.coupons.Redeem(ctx, "TIGHT", "u1", "o2", domain.MustMoney("100"), nil)
	assert.ErrorIs(t, err, domain.ErrLimitExceeded)

	_, err = e.coupons.Redeem(ctx, "TIGHT", "u2", "o3", domain.MustMoney("100"), nil)
	require.NoError(t, err)

	// global limit reached
	_, err = e.coupons.Redeem(ctx, "TIGHT", "u3", "o4", domain.MustMoney("100"), nil)
	assert.ErrorIs(t, err, domain.ErrLimitExceeded)
}

func TestCouponServiceExpiredCoupon(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.seedCoupon(t, "SOON", 100, 0)

	e.clock.Advance(48 * time.Hour)
	_, err := e.coupons.Redeem(ctx, "SOON", "u1", "o1", domain.MustMoney("100"), nil)
	assert.ErrorIs(t, err, domain.ErrExpired)
}
