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

func TestGiftCardServicePurchaseAndRedeem(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	card, err := e.giftCards.Purchase(ctx, PurchaseGiftCardCmd{
		PurchasedBy: "u1",
		Amount:      domain.MustMoney("50"),
	})
	require.NoError(t, err)

	// order of 70: the whole 50 applies
	applied, err := e.giftCards.Redeem(ctx, card.Code, "u1", "o1", domain.MustMoney("70"))
	require.NoError(t, err)
	assert.True(t, applied.Equal(domain.MustMoney("50")))

	got, err := e.giftCards.GetByCode(ctx, card.Code)
	require.NoError(t, err)
	assert.True(t, got.Balance.IsZero())
	assert.Equal(t, domain.GiftCardRedeemed, got.Status)
}

func TestGiftCardServiceRedeemIdempotentPerOrder(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	card, err := e.giftCards.Purchase(ctx, PurchaseGiftCardCmd{
		PurchasedBy: "u1",
		Amount:      domain.MustMoney("50"),
	})
	require.NoError(t, err)

	applied, err := e.giftCards.Redeem(ctx, card.Code, "u1", "o1", domain.MustMoney("20"))
	require.NoError(t, err)
	assert.True(t, applied.Equal(domain.MustMoney("20")))

	// replay of the same order charges nothing further
	applied, err = e.giftCards.Redeem(ctx, card.Code, "u1", "o1", domain.MustMoney("20"))
	require.NoError(t, err)
	assert.True(t, applied.IsZero())

	got, err := e.giftCards.GetByCode(ctx, card.Code)
	require.NoError(t, err)
	assert.True(t, got.Balance.Equal(domain.MustMoney("30")))
}

func TestGiftCardServiceAssignOnce(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	card, err := e.giftCards.Purchase(ctx, PurchaseGiftCardCmd{
		PurchasedBy: "buyer",
		Amount:      domain.MustMoney("25"),
	})
	require.NoError(t, err)

	_, err = e.giftCards.Assign(ctx, card.Code, "u2")
	require.NoError(t, err)
	_, err = e.giftCards.Assign(ctx, card.Code, "u3")
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestGiftCardServiceExpireDue(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	card, err := e.giftCards.Purchase(ctx, PurchaseGiftCardCmd{
		PurchasedBy: "u1",
		Amount:      domain.MustMoney("10"),
	})
	require.NoError(t, err)

	n, err := e.giftCards.ExpireDue(ctx, 100)
	require.NoError(t, err)
	assert.Equal(t, 0, n, "nothing due yet")

	e.clock.Advance(366 * 24 * time.Hour)
	n, err = e.giftCards.ExpireDue(ctx, 100)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := e.giftCards.GetByCode(ctx, card.Code)
	require.NoError(t, err)
	assert.Equal(t, domain.GiftCardExpired, got.Status)

	_, err = e.giftCards.Redeem(ctx, card.Code, "u1", "o1", domain.MustMoney("5"))
	assert.ErrorIs(t, err, domain.ErrExpired)
}
