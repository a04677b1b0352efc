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

	"github.com/bytedance/promokit/internal/domain"
	"github.com/bytedance/promokit/internal/infrastructure/po"
)

type LoyaltyRepo struct {
	uow *UnitOfWork
}

func NewLoyaltyRepo(uow *UnitOfWork) *LoyaltyRepo {
	return &LoyaltyRepo{uow: uow}
}

func (r *LoyaltyRepo) GetByUser(ctx context.Context, userID string) (*domain.LoyaltyAccount, error) {
	var p po.LoyaltyAccountPO
	if err := r.uow.Conn(ctx).First(&p, "user_id = ?", userID).Error; err != nil {
		return nil, translate(err)
	}
	return p.ToDomain(), nil
}

// GetOrCreateByUser provisions the account on first touch. A concurrent
// creator winning the unique index race is fine, we reread the winner's row.
func (r *LoyaltyRepo) GetOrCreateByUser(ctx context.Context, userID string) (*domain.LoyaltyAccount, error) {
	acc, err := r.GetByUser(ctx, userID)
	if err == nil {
		return acc, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	fresh, err := domain.NewLoyaltyAccount(userID)
	if err != nil {
		return nil, err
	}
	createErr := r.uow.Conn(ctx).Create(po.LoyaltyAccountToPO(fresh)).Error
	if createErr == nil {
		return fresh, nil
	}
	if errors.Is(translate(createErr), domain.ErrConflict) {
		return r.GetByUser(ctx, userID)
	}
	return nil, createErr
}

func (r *LoyaltyRepo) Save(ctx context.Context, a *domain.LoyaltyAccount) error {
	p := po.LoyaltyAccountToPO(a)
	prev := p.Version
	p.Version++
	res := r.uow.Conn(ctx).Model(&po.LoyaltyAccountPO{}).
		Where("id = ? AND version = ?", p.ID, prev).
		Select("*").Omit("id", "created_at", "deleted_at").
		Updates(p)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrConflict
	}
	a.SetVersion(p.Version)
	return nil
}

func (r *LoyaltyRepo) AppendTransaction(ctx context.Context, t *domain.LoyaltyTransaction) error {
	return translate(r.uow.Conn(ctx).Create(po.LoyaltyTransactionToPO(t)).Error)
}

func (r *LoyaltyRepo) History(ctx context.Context, userID string, limit, offset int) ([]*domain.LoyaltyTransaction, error) {
	var pos []*po.LoyaltyTransactionPO
	err := r.uow.Conn(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&pos).Error
	if err != nil {
		return nil, translate(err)
	}
	out := make([]*domain.LoyaltyTransaction, 0, len(pos))
	for _, p := range pos {
		out = append(out, p.ToDomain())
	}
	return out, nil
}

// HasOrderTransaction reports whether the ledger already holds a row of the
// given type for an order, the idempotency guard for per-order accrual and
// redemption.
func (r *LoyaltyRepo) HasOrderTransaction(ctx context.Context, userID, orderID string, t domain.LoyaltyTxnType) (bool, error) {
	var n int64
	err := r.uow.Conn(ctx).Model(&po.LoyaltyTransactionPO{}).
		Where("user_id = ? AND order_id = ? AND type = ?", userID, orderID, string(t)).
		Count(&n).Error
	return n > 0, translate(err)
}

// SumDeltas reconciles the ledger: the account balance must equal this sum.
func (r *LoyaltyRepo) SumDeltas(ctx context.Context, accountID string) (int64, error) {
	var sum struct{ Total int64 }
	err := r.uow.Conn(ctx).Model(&po.LoyaltyTransactionPO{}).
		Select("COALESCE(SUM(points), 0) AS total").
		Where("account_id = ?", accountID).
		Scan(&sum).Error
	return sum.Total, translate(err)
}
