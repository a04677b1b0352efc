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

// Coupon on the full amount, then points, then gift card on the remainder.
func TestCheckoutQuoteStacksInstruments(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.seedCoupon(t, "SAVE10", 100, 0)

	_, err := e.loyalty.Accrue(ctx, "u1", "seed", domain.MustMoney("2000"))
	require.NoError(t, err)
	card, err := e.giftCards.Purchase(ctx, PurchaseGiftCardCmd{
		PurchasedBy: "u1", Amount: domain.MustMoney("30"),
	})
	require.NoError(t, err)

	b, err := e.checkout.Quote(ctx, CheckoutRequest{
		UserID:       "u1",
		OrderAmount:  domain.MustMoney("100"),
		CouponCode:   "SAVE10",
		PointsToUse:  1000, // worth 10
		GiftCardCode: card.Code,
	})
	require.NoError(t, err)
	assert.True(t, b.CouponDiscount.Equal(domain.MustMoney("10")))
	assert.True(t, b.PointsDiscount.Equal(domain.MustMoney("10")))
	assert.True(t, b.GiftCardApplied.Equal(domain.MustMoney("30")))
	assert.True(t, b.TotalDiscount.Equal(domain.MustMoney("50")))
	assert.True(t, b.AmountDue.Equal(domain.MustMoney("50")))

	// a quote consumes nothing
	got, err := e.giftCards.GetByCode(ctx, card.Code)
	require.NoError(t, err)
	assert.True(t, got.Balance.Equal(domain.MustMoney("30")))
}

func TestCheckoutSettleConsumesAndPublishes(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.seedCoupon(t, "SAVE10", 100, 0)
	card, err := e.giftCards.Purchase(ctx, PurchaseGiftCardCmd{
		PurchasedBy: "u1", Amount: domain.MustMoney("30"),
	})
	require.NoError(t, err)

	req := CheckoutRequest{
		UserID:       "u1",
		OrderID:      "o1",
		OrderAmount:  domain.MustMoney("100"),
		CouponCode:   "SAVE10",
		GiftCardCode: card.Code,
	}
	b, err := e.checkout.Settle(ctx, req)
	require.NoError(t, err)
	assert.True(t, b.CouponDiscount.Equal(domain.MustMoney("10")))
	assert.True(t, b.GiftCardApplied.Equal(domain.MustMoney("30")))
	assert.True(t, b.AmountDue.Equal(domain.MustMoney("60")))

	got, err := e.giftCards.GetByCode(ctx, card.Code)
	require.NoError(t, err)
	assert.True(t, got.Balance.IsZero())

	// a retry of the same order consumes nothing further
	b2, err := e.checkout.Settle(ctx, req)
	require.NoError(t, err)
	assert.True(t, b2.CouponDiscount.Equal(domain.MustMoney("10")))
	assert.True(t, b2.GiftCardApplied.IsZero())
	c, err := e.coupons.GetByCode(ctx, "SAVE10")
	require.NoError(t, err)
	assert.Equal(t, 1, c.UsageCount)
}

func TestCheckoutSettleRequiresOrder(t *testing.T) {
	e := newEnv(t)
	_, err := e.checkout.Settle(context.Background(), CheckoutRequest{UserID: "u1"})
	assert.ErrorIs(t, err, domain.ErrValidation)
}
