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

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bytedance/promokit/internal/domain"
)

func TestLoyaltyServiceAccrueIdempotent(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	earned, err := e.loyalty.Accrue(ctx, "u1", "o1", domain.MustMoney("99.99"))
	require.NoError(t, err)
	assert.Equal(t, int64(99), earned)

	// outbox redelivery of the same order earns nothing more
	earned, err = e.loyalty.Accrue(ctx, "u1", "o1", domain.MustMoney("99.99"))
	require.NoError(t, err)
	assert.Equal(t, int64(0), earned)

	acc, err := e.loyalty.GetAccount(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(99), acc.PointsBalance)

	ok, err := e.loyalty.Reconcile(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLoyaltyServiceRedeemCapped(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.loyalty.Accrue(ctx, "u1", "o1", domain.MustMoney("10000"))
	require.NoError(t, err)

	// 6000 points are worth 60, more than half of a 100 order
	_, err = e.loyalty.Redeem(ctx, "u1", "o2", 6000, domain.MustMoney("100"))
	assert.ErrorIs(t, err, domain.ErrLimitExceeded)

	discount, err := e.loyalty.Redeem(ctx, "u1", "o2", 5000, domain.MustMoney("100"))
	require.NoError(t, err)
	assert.True(t, discount.Equal(domain.MustMoney("50")))

	acc, err := e.loyalty.GetAccount(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(5000), acc.PointsBalance)

	// replay of the same order spends nothing more
	_, err = e.loyalty.Redeem(ctx, "u1", "o2", 5000, domain.MustMoney("100"))
	require.NoError(t, err)
	acc, err = e.loyalty.GetAccount(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(5000), acc.PointsBalance)
}

func TestLoyaltyServiceRedeemInsufficient(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.loyalty.Redeem(ctx, "u1", "o1", 100, domain.MustMoney("1000"))
	assert.ErrorIs(t, err, domain.ErrInsufficientPoints)
}

func TestLoyaltyServiceAdjustAndTier(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	acc, err := e.loyalty.Adjust(ctx, "u1", 1200, "migration credit")
	require.NoError(t, err)
	assert.Equal(t, "silver", acc.Tier)

	_, err = e.loyalty.Adjust(ctx, "u1", -5000, "too deep")
	assert.ErrorIs(t, err, domain.ErrInsufficientPoints)

	ok, err := e.loyalty.Reconcile(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestReferralServiceSettleRewardsOnce(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	code, err := e.referrals.GetOrCreateCode(ctx, "referrer")
	require.NoError(t, err)

	// idempotent mint
	again, err := e.referrals.GetOrCreateCode(ctx, "referrer")
	require.NoError(t, err)
	assert.Equal(t, code.Code, again.Code)

	_, err = e.referrals.Apply(ctx, code.Code, "referrer")
	assert.ErrorIs(t, err, domain.ErrValidation, "self-referral")

	ref, err := e.referrals.Apply(ctx, code.Code, "newbie")
	require.NoError(t, err)
	assert.Equal(t, domain.ReferralPending, ref.Status)

	// second application for the same referred user, any code
	_, err = e.referrals.Apply(ctx, code.Code, "newbie")
	assert.ErrorIs(t, err, domain.ErrConflict)

	// first completed order settles the reward
	require.NoError(t, e.referrals.Settle(ctx, "newbie"))
	acc, err := e.loyalty.GetAccount(ctx, "referrer")
	require.NoError(t, err)
	assert.Equal(t, int64(500), acc.PointsBalance)

	// redelivery settles nothing more
	require.NoError(t, e.referrals.Settle(ctx, "newbie"))
	acc, err = e.loyalty.GetAccount(ctx, "referrer")
	require.NoError(t, err)
	assert.Equal(t, int64(500), acc.PointsBalance)

	// a user with no referral is a quiet no-op
	require.NoError(t, e.referrals.Settle(ctx, "stranger"))
}
