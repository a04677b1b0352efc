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

	"github.com/bytedance/promokit/internal/domain"
	"github.com/bytedance/promokit/internal/infrastructure/po"
)

type ReferralRepo struct {
	uow *UnitOfWork
}

func NewReferralRepo(uow *UnitOfWork) *ReferralRepo {
	return &ReferralRepo{uow: uow}
}

func (r *ReferralRepo) CreateCode(ctx context.Context, c *domain.ReferralCode) error {
	return translate(r.uow.Conn(ctx).Create(po.ReferralCodeToPO(c)).Error)
}

func (r *ReferralRepo) GetCodeByUser(ctx context.Context, userID string) (*domain.ReferralCode, error) {
	var p po.ReferralCodePO
	if err := r.uow.Conn(ctx).First(&p, "user_id = ?", userID).Error; err != nil {
		return nil, translate(err)
	}
	return p.ToDomain(), nil
}

func (r *ReferralRepo) GetCode(ctx context.Context, code string) (*domain.ReferralCode, error) {
	var p po.ReferralCodePO
	if err := r.uow.Conn(ctx).First(&p, "code = ?", code).Error; err != nil {
		return nil, translate(err)
	}
	return p.ToDomain(), nil
}

// CreateReferral relies on the unique referred_user_id index for the
// one-time-apply guard; a duplicate surfaces as ErrConflict.
func (r *ReferralRepo) CreateReferral(ctx context.Context, ref *domain.Referral) error {
	return translate(r.uow.Conn(ctx).Create(po.ReferralToPO(ref)).Error)
}

func (r *ReferralRepo) GetByReferredUser(ctx context.Context, userID string) (*domain.Referral, error) {
	var p po.ReferralPO
	if err := r.uow.Conn(ctx).First(&p, "referred_user_id = ?", userID).Error; err != nil {
		return nil, translate(err)
	}
	return p.ToDomain(), nil
}

func (r *ReferralRepo) ListByReferrer(ctx context.Context, userID string) ([]*domain.Referral, error) {
	var pos []*po.ReferralPO
	err := r.uow.Conn(ctx).Where("referrer_user_id = ?", userID).Order("created_at DESC").Find(&pos).Error
	if err != nil {
		return nil, translate(err)
	}
	out := make([]*domain.Referral, 0, len(pos))
	for _, p := range pos {
		out = append(out, p.ToDomain())
	}
	return out, nil
}

func (r *ReferralRepo) Save(ctx context.Context, ref *domain.Referral) error {
	p := po.ReferralToPO(ref)
	prev := p.Version
	p.Version++
	res := r.uow.Conn(ctx).Model(&po.ReferralPO{}).
		Where("id = ? AND version = ?", p.ID, prev).
		Select("*").Omit("id", "created_at").
		Updates(p)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrConflict
	}
	ref.SetVersion(p.Version)
	return nil
}
