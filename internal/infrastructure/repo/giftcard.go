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
	"time"

	"github.com/bytedance/promokit/internal/domain"
	"github.com/bytedance/promokit/internal/infrastructure/po"
)

type GiftCardRepo struct {
	uow *UnitOfWork
}

func NewGiftCardRepo(uow *UnitOfWork) *GiftCardRepo {
	return &GiftCardRepo{uow: uow}
}

func (r *GiftCardRepo) Create(ctx context.Context, g *domain.GiftCard) error {
	return translate(r.uow.Conn(ctx).Create(po.GiftCardToPO(g)).Error)
}

func (r *GiftCardRepo) GetByCode(ctx context.Context, code string) (*domain.GiftCard, error) {
	var p po.GiftCardPO
	if err := r.uow.Conn(ctx).First(&p, "code = ?", code).Error; err != nil {
		return nil, translate(err)
	}
	return p.ToDomain(), nil
}

// ListByUser returns cards the user purchased or was assigned.
func (r *GiftCardRepo) ListByUser(ctx context.Context, userID string) ([]*domain.GiftCard, error) {
	var pos []*po.GiftCardPO
	err := r.uow.Conn(ctx).
		Where("purchased_by = ? OR assigned_to = ?", userID, userID).
		Order("created_at DESC").
		Find(&pos).Error
	if err != nil {
		return nil, translate(err)
	}
	out := make([]*domain.GiftCard, 0, len(pos))
	for _, p := range pos {
		out = append(out, p.ToDomain())
	}
	return out, nil
}

// Save CAS-updates balance and status; redemption is a read-modify-write, so
// the version guard is what keeps the balance monotonic under concurrency.
func (r *GiftCardRepo) Save(ctx context.Context, g *domain.GiftCard) error {
	p := po.GiftCardToPO(g)
	prev := p.Version
	p.Version++
	res := r.uow.Conn(ctx).Model(&po.GiftCardPO{}).
		Where("id = ? AND version = ?", p.ID, prev).
		Select("*").Omit("id", "created_at", "deleted_at").
		Updates(p)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrConflict
	}
	g.SetVersion(p.Version)
	return nil
}

func (r *GiftCardRepo) AppendTransaction(ctx context.Context, t *domain.GiftCardTransaction) error {
	return translate(r.uow.Conn(ctx).Create(po.GiftCardTransactionToPO(t)).Error)
}

// HasOrderTransaction reports whether the card was already charged for an
// order, the idempotency guard for redemption retries.
func (r *GiftCardRepo) HasOrderTransaction(ctx context.Context, cardID, orderID string) (bool, error) {
	var n int64
	err := r.uow.Conn(ctx).Model(&po.GiftCardTransactionPO{}).
		Where("card_id = ? AND order_id = ?", cardID, orderID).
		Count(&n).Error
	return n > 0, translate(err)
}

// ListDue returns active cards already past their expiry, for the sweep.
func (r *GiftCardRepo) ListDue(ctx context.Context, now time.Time, limit int) ([]*domain.GiftCard, error) {
	var pos []*po.GiftCardPO
	err := r.uow.Conn(ctx).
		Where("status = ? AND expires_at < ?", string(domain.GiftCardActive), now).
		Limit(limit).
		Find(&pos).Error
	if err != nil {
		return nil, translate(err)
	}
	out := make([]*domain.GiftCard, 0, len(pos))
	for _, p := range pos {
		out = append(out, p.ToDomain())
	}
	return out, nil
}
