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

	"gorm.io/gorm"

	"github.com/bytedance/promokit/internal/domain"
	"github.com/bytedance/promokit/internal/infrastructure/po"
)

type PreOrderRepo struct {
	uow *UnitOfWork
}

func NewPreOrderRepo(uow *UnitOfWork) *PreOrderRepo {
	return &PreOrderRepo{uow: uow}
}

func (r *PreOrderRepo) CreateCampaign(ctx context.Context, c *domain.PreOrderCampaign) error {
	return translate(r.uow.Conn(ctx).Create(po.PreOrderCampaignToPO(c)).Error)
}

func (r *PreOrderRepo) GetCampaign(ctx context.Context, id string) (*domain.PreOrderCampaign, error) {
	var p po.PreOrderCampaignPO
	if err := r.uow.Conn(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return p.ToDomain(), nil
}

func (r *PreOrderRepo) ListOpenCampaigns(ctx context.Context, now time.Time) ([]*domain.PreOrderCampaign, error) {
	var pos []*po.PreOrderCampaignPO
	err := r.uow.Conn(ctx).
		Where("is_active = ? AND start_at <= ? AND end_at >= ?", true, now, now).
		Order("start_at").
		Find(&pos).Error
	if err != nil {
		return nil, translate(err)
	}
	out := make([]*domain.PreOrderCampaign, 0, len(pos))
	for _, p := range pos {
		out = append(out, p.ToDomain())
	}
	return out, nil
}

func (r *PreOrderRepo) SaveCampaign(ctx context.Context, c *domain.PreOrderCampaign) error {
	p := po.PreOrderCampaignToPO(c)
	prev := p.Version
	p.Version++
	res := r.uow.Conn(ctx).Model(&po.PreOrderCampaignPO{}).
		Where("id = ? AND version = ?", p.ID, prev).
		Select("*").Omit("id", "created_at", "deleted_at").
		Updates(p)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrConflict
	}
	c.SetVersion(p.Version)
	return nil
}

// ReserveCapacity grants quantity slots with a single conditional update.
// Zero rows against an existing campaign means it is full.
func (r *PreOrderRepo) ReserveCapacity(ctx context.Context, campaignID string, quantity int) error {
	if quantity <= 0 {
		return domain.ErrValidation
	}
	res := r.uow.Conn(ctx).Model(&po.PreOrderCampaignPO{}).
		Where("id = ? AND (max_quantity = 0 OR current_quantity + ? <= max_quantity)", campaignID, quantity).
		UpdateColumns(map[string]interface{}{
			"current_quantity": gorm.Expr("current_quantity + ?", quantity),
			"version":          gorm.Expr("version + 1"),
		})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		if _, err := r.GetCampaign(ctx, campaignID); err != nil {
			return err
		}
		return domain.ErrCampaignFull
	}
	return nil
}

// ReleaseCapacity frees slots, symmetric with ReserveCapacity.
func (r *PreOrderRepo) ReleaseCapacity(ctx context.Context, campaignID string, quantity int) error {
	if quantity <= 0 {
		return domain.ErrValidation
	}
	res := r.uow.Conn(ctx).Model(&po.PreOrderCampaignPO{}).
		Where("id = ? AND current_quantity - ? >= 0", campaignID, quantity).
		UpdateColumns(map[string]interface{}{
			"current_quantity": gorm.Expr("current_quantity - ?", quantity),
			"version":          gorm.Expr("version + 1"),
		})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		if _, err := r.GetCampaign(ctx, campaignID); err != nil {
			return err
		}
		return domain.ErrConflict
	}
	return nil
}

func (r *PreOrderRepo) Create(ctx context.Context, p *domain.PreOrder) error {
	return translate(r.uow.Conn(ctx).Create(po.PreOrderToPO(p)).Error)
}

func (r *PreOrderRepo) Get(ctx context.Context, id string) (*domain.PreOrder, error) {
	var p po.PreOrderPO
	if err := r.uow.Conn(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return p.ToDomain(), nil
}

func (r *PreOrderRepo) ListByUser(ctx context.Context, userID string) ([]*domain.PreOrder, error) {
	var pos []*po.PreOrderPO
	err := r.uow.Conn(ctx).Where("user_id = ?", userID).Order("created_at DESC").Find(&pos).Error
	if err != nil {
		return nil, translate(err)
	}
	out := make([]*domain.PreOrder, 0, len(pos))
	for _, p := range pos {
		out = append(out, p.ToDomain())
	}
	return out, nil
}

func (r *PreOrderRepo) Save(ctx context.Context, o *domain.PreOrder) error {
	p := po.PreOrderToPO(o)
	prev := p.Version
	p.Version++
	res := r.uow.Conn(ctx).Model(&po.PreOrderPO{}).
		Where("id = ? AND version = ?", p.ID, prev).
		Select("*").Omit("id", "created_at", "deleted_at").
		Updates(p)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrConflict
	}
	o.SetVersion(p.Version)
	return nil
}

// ListExpiredPending feeds the expiry sweep.
func (r *PreOrderRepo) ListExpiredPending(ctx context.Context, now time.Time, limit int) ([]*domain.PreOrder, error) {
	var pos []*po.PreOrderPO
	err := r.uow.Conn(ctx).
		Where("status = ? AND expires_at < ?", string(domain.PreOrderPending), now).
		Limit(limit).
		Find(&pos).Error
	if err != nil {
		return nil, translate(err)
	}
	out := make([]*domain.PreOrder, 0, len(pos))
	for _, p := range pos {
		out = append(out, p.ToDomain())
	}
	return out, nil
}
