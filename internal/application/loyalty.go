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

	"github.com/avast/retry-go"
	"github.com/go-logr/logr"

	"github.com/bytedance/promokit/internal/domain"
	"github.com/bytedance/promokit/internal/domain/event"
	"github.com/bytedance/promokit/internal/infrastructure/repo"
)

// LoyaltyConfig is the program policy: how purchases convert to points, how
// points convert back to money, and the tier ladder.
type LoyaltyConfig struct {
	EarnRate          domain.Money // points per unit of currency
	PointValue        domain.Money // currency per point
	MaxRedeemFraction domain.Money // 0..1, cap on the share of an order paid in points
	Tiers             []domain.LoyaltyTier
}

type LoyaltyService struct {
	uow      *repo.UnitOfWork
	accounts *repo.LoyaltyRepo
	outbox   *repo.OutboxRepo
	cfg      LoyaltyConfig
	clock    domain.Clock
	logger   logr.Logger
}

func NewLoyaltyService(uow *repo.UnitOfWork, accounts *repo.LoyaltyRepo, outbox *repo.OutboxRepo, cfg LoyaltyConfig, clock domain.Clock, logger logr.Logger) *LoyaltyService {
	return &LoyaltyService{
		uow:      uow,
		accounts: accounts,
		outbox:   outbox,
		cfg:      cfg,
		clock:    clock,
		logger:   logger.WithName("loyalty"),
	}
}

// GetAccount provisions the account on first touch.
func (s *LoyaltyService) GetAccount(ctx context.Context, userID string) (*domain.LoyaltyAccount, error) {
	return s.accounts.GetOrCreateByUser(ctx, userID)
}

func (s *LoyaltyService) History(ctx context.Context, userID string, limit, offset int) ([]*domain.LoyaltyTransaction, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.accounts.History(ctx, userID, limit, offset)
}

// PointsForPurchase quotes the points an order amount would earn.
func (s *LoyaltyService) PointsForPurchase(amount domain.Money) int64 {
	return domain.CalculatePointsFromPurchase(amount, s.cfg.EarnRate)
}

// DiscountForPoints quotes the money value of a point spend.
func (s *LoyaltyService) DiscountForPoints(points int64) domain.Money {
	return domain.CalculateDiscountFromPoints(points, s.cfg.PointValue)
}

// MaxRedeemablePoints caps a point spend at the configured fraction of the
// order, and at the user's balance.
func (s *LoyaltyService) MaxRedeemablePoints(balance int64, orderAmount domain.Money) int64 {
	capAmount := orderAmount.Mul(s.cfg.MaxRedeemFraction)
	capPoints := domain.CalculatePointsFromPurchase(capAmount, pointsPerUnit(s.cfg.PointValue))
	if capPoints < balance {
		return capPoints
	}
	return balance
}

// pointsPerUnit inverts the point value: how many points one unit of
// currency is worth at redemption.
func pointsPerUnit(pointValue domain.Money) domain.Money {
	if !pointValue.IsPositive() {
		return domain.Zero
	}
	return domain.MustMoney("1").Div(pointValue)
}

// Accrue earns points for a completed order. Redelivery of the same order is
// a no-op guarded by the ledger. Returns the points earned.
func (s *LoyaltyService) Accrue(ctx context.Context, userID, orderID string, orderAmount domain.Money) (int64, error) {
	points := s.PointsForPurchase(orderAmount)
	if points <= 0 {
		return 0, nil
	}
	var earned int64
	err := s.withConflictRetry(func() error {
		return s.uow.Transaction(ctx, func(ctx context.Context) error {
			earned = 0
			if orderID != "" {
				seen, err := s.accounts.HasOrderTransaction(ctx, userID, orderID, domain.LoyaltyEarn)
				if err != nil {
					return err
				}
				if seen {
					return nil
				}
			}
			acc, err := s.accounts.GetOrCreateByUser(ctx, userID)
			if err != nil {
				return err
			}
			txn, err := acc.Earn(points, orderID, s.cfg.Tiers, s.clock.Now())
			if err != nil {
				return err
			}
			if err := s.accounts.Save(ctx, acc); err != nil {
				return err
			}
			if err := s.accounts.AppendTransaction(ctx, txn); err != nil {
				return err
			}
			earned = points
			return s.outbox.Append(ctx, event.New(&event.PointsAccrued{
				AccountID: acc.GetID(),
				UserID:    userID,
				OrderID:   orderID,
				Points:    points,
			}))
		})
	})
	if err != nil {
		return 0, err
	}
	return earned, nil
}

// Redeem spends points against an order and returns the discount value.
// The max-fraction cap is enforced here, not in the ledger.
func (s *LoyaltyService) Redeem(ctx context.Context, userID, orderID string, points int64, orderAmount domain.Money) (domain.Money, error) {
	if points <= 0 {
		return domain.Zero, domain.ErrValidation
	}
	discount := s.DiscountForPoints(points)
	capAmount := orderAmount.Mul(s.cfg.MaxRedeemFraction)
	if discount.GreaterThan(capAmount) {
		return domain.Zero, domain.ErrLimitExceeded
	}
	err := s.withConflictRetry(func() error {
		return s.uow.Transaction(ctx, func(ctx context.Context) error {
			if orderID != "" {
				seen, err := s.accounts.HasOrderTransaction(ctx, userID, orderID, domain.LoyaltyRedeem)
				if err != nil {
					return err
				}
				if seen {
					return nil
				}
			}
			acc, err := s.accounts.GetOrCreateByUser(ctx, userID)
			if err != nil {
				return err
			}
			txn, err := acc.Redeem(points, orderID, s.clock.Now())
			if err != nil {
				return err
			}
			if err := s.accounts.Save(ctx, acc); err != nil {
				return err
			}
			if err := s.accounts.AppendTransaction(ctx, txn); err != nil {
				return err
			}
			return s.outbox.Append(ctx, event.New(&event.PointsRedeemed{
				AccountID: acc.GetID(),
				UserID:    userID,
				OrderID:   orderID,
				Points:    points,
			}))
		})
	})
	if err != nil {
		return domain.Zero, err
	}
	return discount, nil
}

// Adjust applies a signed admin correction with an audit note.
func (s *LoyaltyService) Adjust(ctx context.Context, userID string, delta int64, reason string) (*domain.LoyaltyAccount, error) {
	var acc *domain.LoyaltyAccount
	err := s.withConflictRetry(func() error {
		return s.uow.Transaction(ctx, func(ctx context.Context) error {
			var err error
			acc, err = s.accounts.GetOrCreateByUser(ctx, userID)
			if err != nil {
				return err
			}
			txn, err := acc.Adjust(delta, reason, s.cfg.Tiers, s.clock.Now())
			if err != nil {
				return err
			}
			if err := s.accounts.Save(ctx, acc); err != nil {
				return err
			}
			return s.accounts.AppendTransaction(ctx, txn)
		})
	})
	if err != nil {
		return nil, err
	}
	return acc, nil
}

// Reconcile checks the account balance against the ledger sum.
func (s *LoyaltyService) Reconcile(ctx context.Context, userID string) (bool, error) {
	acc, err := s.accounts.GetByUser(ctx, userID)
	if err != nil {
		return false, err
	}
	sum, err := s.accounts.SumDeltas(ctx, acc.GetID())
	if err != nil {
		return false, err
	}
	if sum != acc.PointsBalance {
		s.logger.Info("loyalty ledger drift", "user_id", userID, "balance", acc.PointsBalance, "ledger_sum", sum)
		return false, nil
	}
	return true, nil
}

// withConflictRetry reruns a whole transaction when the version CAS loses a
// race. All callers are idempotent per order, so a rerun is safe.
func (s *LoyaltyService) withConflictRetry(fn func() error) error {
	return retry.Do(fn,
		retry.Attempts(3),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool { return errors.Is(err, domain.ErrConflict) }),
	)
}
