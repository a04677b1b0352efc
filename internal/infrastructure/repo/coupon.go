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

	"gorm.io/gorm"

	"github.com/bytedance/promokit/internal/domain"
	"github.com/bytedance/promokit/internal/infrastructure/po"
)

type CouponRepo struct {
	uow *UnitOfWork
}

func NewCouponRepo(uow *UnitOfWork) *CouponRepo {
	return &CouponRepo{uow: uow}
}

func (r *CouponRepo) Create(ctx context.Context, c *domain.Coupon) error {
	return translate(r.uow.Conn(ctx).Create(po.CouponToPO(c)).Error)
}

func (r *CouponRepo) GetByID(ctx context.Context, id string) (*domain.Coupon, error) {
	var p po.CouponPO
	if err := r.uow.Conn(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return p.ToDomain(), nil
}

func (r *CouponRepo) GetByCode(ctx context.Context, code string) (*domain.Coupon, error) {
	var p po.CouponPO
	err := r.uow.Conn(ctx).First(&p, "code = ?", domain.NormalizeCouponCode(code)).Error
	if err != nil {
		return nil, translate(err)
	}
	return p.ToDomain(), nil
}

func (r *CouponRepo) List(ctx context.Context, limit, offset int) ([]*domain.Coupon, error) {
	var pos []*po.CouponPO
	err := r.uow.Conn(ctx).Order("created_at DESC").Limit(limit).Offset(offset).Find(&pos).Error
	if err != nil {
		return nil, translate(err)
	}
	out := make([]*domain.Coupon, 0, len(pos))
	for _, p := range pos {
		out = append(out, p.ToDomain())
	}
	return out, nil
}

// Save compares-and-swaps on the version token; a concurrent writer wins and
// this caller gets ErrConflict.
func (r *CouponRepo) Save(ctx context.Context, c *domain.Coupon) error {
	p := po.CouponToPO(c)
	prev := p.Version
	p.Version++
	res := r.uow.Conn(ctx).Model(&po.CouponPO{}).
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

func (r *CouponRepo) Delete(ctx context.Context, id string) error {
	res := r.uow.Conn(ctx).Delete(&po.CouponPO{}, "id = ?", id)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// InsertUsage appends a usage row. A second insert for the same
// (coupon, order) hits the unique index and reports alreadyUsed, which makes
// redemption an idempotent no-op instead of a double count.
func (r *CouponRepo) InsertUsage(ctx context.Context, u *domain.CouponUsage) (alreadyUsed bool, err error) {
	err = r.uow.Conn(ctx).Create(po.CouponUsageToPO(u)).Error
	if errors.Is(translate(err), domain.ErrConflict) {
		return true, nil
	}
	return false, err
}

func (r *CouponRepo) CountUsageByUser(ctx context.Context, couponID, userID string) (int, error) {
	var n int64
	err := r.uow.Conn(ctx).Model(&po.CouponUsagePO{}).
		Where("coupon_id = ? AND user_id = ?", couponID, userID).
		Count(&n).Error
	return int(n), translate(err)
}

// IncrementUsage is the capacity hot path: one conditional update, never
// read-then-write. Zero rows means the global limit is exhausted.
func (r *CouponRepo) IncrementUsage(ctx context.Context, couponID string) error {
	res := r.uow.Conn(ctx).Model(&po.CouponPO{}).
		Where("id = ? AND (usage_limit = 0 OR usage_count < usage_limit)", couponID).
		UpdateColumns(map[string]interface{}{
			"usage_count": gorm.Expr("usage_count + 1"),
			"version":     gorm.Expr("version + 1"),
		})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		if _, err := r.GetByID(ctx, couponID); err != nil {
			return err
		}
		return domain.ErrLimitExceeded
	}
	return nil
}
