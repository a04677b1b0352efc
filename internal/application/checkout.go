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
	"errors"

	"github.com/go-logr/logr"

	"github.com/bytedance/promokit/internal/domain"
	"github.com/bytedance/promokit/internal/domain/event"
	"github.com/bytedance/promokit/internal/eventbus"
)

// CheckoutService stacks the discount instruments in a fixed order:
// coupon first on the full amount, then loyalty points against the
// remainder, then gift card against what is left. Each stage sees the
// amount the previous stages left over, so the total never exceeds the
// order.
type CheckoutService struct {
	coupons   *CouponService
	loyalty   *LoyaltyService
	giftCards *GiftCardService
	bus       *eventbus.Bus
	logger    logr.Logger
}

func NewCheckoutService(coupons *CouponService, loyalty *LoyaltyService, giftCards *GiftCardService, bus *eventbus.Bus, logger logr.Logger) *CheckoutService {
	return &CheckoutService{
		coupons:   coupons,
		loyalty:   loyalty,
		giftCards: giftCards,
		bus:       bus,
		logger:    logger.WithName("checkout"),
	}
}

type CheckoutRequest struct {
	UserID       string
	OrderID      string
	OrderAmount  domain.Money
	ProductIDs   []string
	CouponCode   string // optional
	PointsToUse  int64  // optional
	GiftCardCode string // optional
}

type DiscountBreakdown struct {
	CouponDiscount  domain.Money
	PointsDiscount  domain.Money
	GiftCardApplied domain.Money
	TotalDiscount   domain.Money
	AmountDue       domain.Money
}

// Quote prices the requested instruments without consuming anything.
// An instrument that cannot apply fails the whole quote; the storefront
// resubmits without it.
func (s *CheckoutService) Quote(ctx context.Context, req CheckoutRequest) (*DiscountBreakdown, error) {
	out := &DiscountBreakdown{
		CouponDiscount:  domain.Zero,
		PointsDiscount:  domain.Zero,
		GiftCardApplied: domain.Zero,
	}
	remaining := req.OrderAmount

	if req.CouponCode != "" {
		q, err := s.coupons.Validate(ctx, req.CouponCode, req.UserID, req.OrderAmount, req.ProductIDs)
		if err != nil {
			return nil, err
		}
		out.CouponDiscount = q.Discount
		remaining = remaining.Sub(q.Discount)
	}

	if req.PointsToUse > 0 {
		acc, err := s.loyalty.GetAccount(ctx, req.UserID)
		if err != nil {
			return nil, err
		}
		if req.PointsToUse > acc.PointsBalance {
			return nil, domain.ErrInsufficientPoints
		}
		discount := s.loyalty.DiscountForPoints(req.PointsToUse)
		if discount.GreaterThan(req.OrderAmount.Mul(s.loyalty.cfg.MaxRedeemFraction)) {
			return nil, domain.ErrLimitExceeded
		}
		discount = domain.MinMoney(discount, remaining)
		out.PointsDiscount = discount
		remaining = remaining.Sub(discount)
	}

	if req.GiftCardCode != "" && remaining.IsPositive() {
		applied, err := s.giftCards.CalculateDiscount(ctx, req.GiftCardCode, remaining)
		if err != nil {
			return nil, err
		}
		out.GiftCardApplied = applied
		remaining = remaining.Sub(applied)
	}

	out.TotalDiscount = req.OrderAmount.Sub(remaining)
	out.AmountDue = remaining
	return out, nil
}

// Settle consumes the instruments for a placed order and publishes
// order.completed for the accrual and referral handlers. Settle is
// idempotent per order: every stage carries its own per-order guard, so a
// retry after a partial failure finishes the remainder without double
// spending what already went through.
func (s *CheckoutService) Settle(ctx context.Context, req CheckoutRequest) (*DiscountBreakdown, error) {
	if req.OrderID == "" || req.UserID == "" {
		return nil, domain.ErrValidation
	}
	out := &DiscountBreakdown{
		CouponDiscount:  domain.Zero,
		PointsDiscount:  domain.Zero,
		GiftCardApplied: domain.Zero,
	}
	remaining := req.OrderAmount

	if req.CouponCode != "" {
		discount, err := s.coupons.Redeem(ctx, req.CouponCode, req.UserID, req.OrderID, req.OrderAmount, req.ProductIDs)
		if err != nil {
			return nil, err
		}
		out.CouponDiscount = discount
		remaining = remaining.Sub(discount)
	}

	if req.PointsToUse > 0 {
		discount, err := s.loyalty.Redeem(ctx, req.UserID, req.OrderID, req.PointsToUse, req.OrderAmount)
		if err != nil {
			return nil, err
		}
		out.PointsDiscount = domain.MinMoney(discount, remaining)
		remaining = remaining.Sub(out.PointsDiscount)
	}

	if req.GiftCardCode != "" && remaining.IsPositive() {
		applied, err := s.giftCards.Redeem(ctx, req.GiftCardCode, req.UserID, req.OrderID, remaining)
		if err != nil && !errors.Is(err, domain.ErrInsufficientBalance) {
			return nil, err
		}
		if err == nil {
			out.GiftCardApplied = applied
			remaining = remaining.Sub(applied)
		}
	}

	out.TotalDiscount = req.OrderAmount.Sub(remaining)
	out.AmountDue = remaining

	evt := event.New(&event.OrderCompleted{
		OrderID:     req.OrderID,
		UserID:      req.UserID,
		OrderAmount: req.OrderAmount,
	})
	if err := s.bus.Publish(ctx, evt); err != nil {
		return nil, err
	}
	return out, nil
}
