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

	"github.com/go-logr/logr"

	"github.com/bytedance/promokit/internal/domain"
	"github.com/bytedance/promokit/internal/domain/event"
	"github.com/bytedance/promokit/internal/infrastructure/repo"
)

type CouponService struct {
	uow     *repo.UnitOfWork
	coupons *repo.CouponRepo
	outbox  *repo.OutboxRepo
	clock   domain.Clock
	logger  logr.Logger
}

func NewCouponService(uow *repo.UnitOfWork, coupons *repo.CouponRepo, outbox *repo.OutboxRepo, clock domain.Clock, logger logr.Logger) *CouponService {
	return &CouponService{
		uow:     uow,
		coupons: coupons,
		outbox:  outbox,
		clock:   clock,
		logger:  logger.WithName("coupon"),
	}
}

func (s *CouponService) Create(ctx context.Context, spec domain.CouponSpec) (*domain.Coupon, error) {
	c, err := domain.NewCoupon(spec)
	if err != nil {
		return nil, err
	}
	if err := s.coupons.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *CouponService) Get(ctx context.Context, id string) (*domain.Coupon, error) {
	return s.coupons.GetByID(ctx, id)
}

func (s *CouponService) GetByCode(ctx context.Context, code string) (*domain.Coupon, error) {
	return s.coupons.GetByCode(ctx, code)
}

func (s *CouponService) List(ctx context.Context, limit, offset int) ([]*domain.Coupon, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.coupons.List(ctx, limit, offset)
}

func (s *CouponService) Update(ctx context.Context, id string, upd domain.CouponUpdate) (*domain.Coupon, error) {
	c, err := s.coupons.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := c.Update(upd); err != nil {
		return nil, err
	}
	if err := s.coupons.Save(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *CouponService) Delete(ctx context.Context, id string) error {
	return s.coupons.Delete(ctx, id)
}

// Validation is a read-only quote: what would this coupon take off this
// order right now. Nothing is consumed.
type CouponQuote struct {
	Coupon   *domain.Coupon
	Discount domain.Money
}

func (s *CouponService) Validate(ctx context.Context, code, userID string, orderAmount domain.Money, productIDs []string) (*CouponQuote, error) {
	c, err := s.coupons.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	discount, err := c.Discount(s.clock.Now(), orderAmount, productIDs)
	if err != nil {
		return nil, err
	}
	userUses, err := s.coupons.CountUsageByUser(ctx, c.GetID(), userID)
	if err != nil {
		return nil, err
	}
	if err := c.CheckLimits(userUses); err != nil {
		return nil, err
	}
	return &CouponQuote{Coupon: c, Discount: discount}, nil
}

// Redeem consumes one use of the coupon for an order. Calling it again with
// the same order is a no-op returning the same discount: the usage row is
// unique per (coupon, order) and the counter is only bumped when the row is
// first inserted.
func (s *CouponService) Redeem(ctx context.Context, code, userID, orderID string, orderAmount domain.Money, productIDs []string) (domain.Money, error) {
	c, err := s.coupons.GetByCode(ctx, code)
	if err != nil {
		return domain.Zero, err
	}
	now := s.clock.Now()
	discount, err := c.Discount(now, orderAmount, productIDs)
	if err != nil {
		return domain.Zero, err
	}

	err = s.uow.Transaction(ctx, func(ctx context.Context) error {
		usage, err := domain.NewCouponUsage(c.GetID(), userID, orderID, now)
		if err != nil {
			return err
		}
		// a replay of the same order must short-circuit before the limit
		// check; its own usage row counts against the limit
		alreadyUsed, err := s.coupons.InsertUsage(ctx, usage)
		if err != nil {
			return err
		}
		if alreadyUsed {
			return nil
		}
		userUses, err := s.coupons.CountUsageByUser(ctx, c.GetID(), userID)
		if err != nil {
			return err
		}
		// the count includes the row just inserted; a failed check rolls
		// the insert back with the transaction
		if err := c.CheckLimits(userUses - 1); err != nil {
			return err
		}
		if err := s.coupons.IncrementUsage(ctx, c.GetID()); err != nil {
			return err
		}
		return s.outbox.Append(ctx, event.New(&event.CouponRedeemed{
			CouponID: c.GetID(),
			OrderID:  orderID,
			UserID:   userID,
		}))
	})
	if err != nil {
		return domain.Zero, err
	}
	return discount, nil
}
