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

	"github.com/go-logr/logr"

	"github.com/bytedance/promokit/internal/domain"
	"github.com/bytedance/promokit/internal/eventbus"
	"github.com/bytedance/promokit/internal/infrastructure/repo"
	"github.com/bytedance/promokit/internal/lock"
	"github.com/bytedance/promokit/internal/notify"
	"github.com/bytedance/promokit/internal/testsuit"
)

// env wires every service over a fresh in-memory database, a local lock and
// a controllable clock.
type env struct {
	uow       *repo.UnitOfWork
	outbox    *repo.OutboxRepo
	bus       *eventbus.Bus
	clock     *testsuit.Clock
	coupons   *CouponService
	sales     *FlashSaleService
	giftCards *GiftCardService
	loyalty   *LoyaltyService
	preorders *PreOrderService
	referrals *ReferralService
	checkout  *CheckoutService
}

type stubPlacer struct{ orderID string }

func (s stubPlacer) PlaceOrder(ctx context.Context, p *domain.PreOrder) (string, error) {
	return s.orderID, nil
}

func newEnv(t *testing.T) *env {
	t.Helper()
	uow := repo.NewUnitOfWork(testsuit.InitDB())
	outbox := repo.NewOutboxRepo(uow)
	clock := testsuit.NewClock(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	logger := logr.Discard()
	locker := lock.NewMemLock()
	notifier := notify.New(nil, logger)
	bus := eventbus.New(outbox, logger)

	loyaltyCfg := LoyaltyConfig{
		EarnRate:          domain.MustMoney("1"),
		PointValue:        domain.MustMoney("0.01"),
		MaxRedeemFraction: domain.MustMoney("0.5"),
		Tiers: []domain.LoyaltyTier{
			{Name: "silver", Threshold: 1000},
			{Name: "gold", Threshold: 5000},
		},
	}

	e := &env{uow: uow, outbox: outbox, bus: bus, clock: clock}
	e.coupons = NewCouponService(uow, repo.NewCouponRepo(uow), outbox, clock, logger)
	e.sales = NewFlashSaleService(uow, repo.NewFlashSaleRepo(uow), outbox, nil, clock, logger)
	e.giftCards = NewGiftCardService(uow, repo.NewGiftCardRepo(uow), outbox, notifier, clock, 365*24*time.Hour, logger)
	e.loyalty = NewLoyaltyService(uow, repo.NewLoyaltyRepo(uow), outbox, loyaltyCfg, clock, logger)
	e.preorders = NewPreOrderService(uow, repo.NewPreOrderRepo(uow), outbox, locker, stubPlacer{orderID: "ord-1"}, notifier, clock, 48*time.Hour, logger)
	e.referrals = NewReferralService(uow, repo.NewReferralRepo(uow), e.loyalty, outbox, 500, clock, logger)
	e.checkout = NewCheckoutService(e.coupons, e.loyalty, e.giftCards, bus, logger)
	return e
}

func (e *env) seedCoupon(t *testing.T, code string, usageLimit, perUserLimit int) *domain.Coupon {
	t.Helper()
	now := e.clock.Now()
	c, err := e.coupons.Create(context.Background(), domain.CouponSpec{
		Code:            code,
		DiscountType:    domain.DiscountPercentage,
		DiscountValue:   domain.MustMoney("10"),
		MinimumPurchase: domain.MustMoney("50"),
		UsageLimit:      usageLimit,
		PerUserLimit:    perUserLimit,
		ValidFrom:       now.Add(-time.Hour),
		ValidTo:         now.Add(24 * time.Hour),
	})
	if err != nil {
		t.Fatal(err)
	}
	return c
}
