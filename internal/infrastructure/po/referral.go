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

package po

import (
	"time"

	"gorm.io/gorm"

	"github.com/bytedance/promokit/internal/domain"
)

type ReferralCodePO struct {
	ID        string `gorm:"primaryKey;size:20"`
	UserID    string `gorm:"size:64;uniqueIndex"`
	Code      string `gorm:"size:32;uniqueIndex"`
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (p *ReferralCodePO) GetID() string {
	return p.ID
}

func (p *ReferralCodePO) TableName() string {
	return "promo_referral_code"
}

func (p *ReferralCodePO) ToDomain() *domain.ReferralCode {
	c := &domain.ReferralCode{
		UserID: p.UserID,
		Code:   p.Code,
	}
	c.SetID(p.ID)
	return c
}

func ReferralCodeToPO(c *domain.ReferralCode) *ReferralCodePO {
	return &ReferralCodePO{
		ID:     c.GetID(),
		UserID: c.UserID,
		Code:   c.Code,
	}
}

// ReferralPO has a unique referred_user_id: a user may be referred at most
// once, ever.
type ReferralPO struct {
	ID             string `gorm:"primaryKey;size:20"`
	ReferrerUserID string `gorm:"size:64;index"`
	ReferredUserID string `gorm:"size:64;uniqueIndex"`
	Status         string `gorm:"size:16;index"`
	AppliedAt      time.Time
	CompletedAt    *time.Time
	RewardedAt     *time.Time
	Version        int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (p *ReferralPO) GetID() string {
	return p.ID
}

func (p *ReferralPO) TableName() string {
	return "promo_referral"
}

func (p *ReferralPO) ToDomain() *domain.Referral {
	r := &domain.Referral{
		ReferrerUserID: p.ReferrerUserID,
		ReferredUserID: p.ReferredUserID,
		Status:         domain.ReferralStatus(p.Status),
		AppliedAt:      p.AppliedAt,
		CompletedAt:    p.CompletedAt,
		RewardedAt:     p.RewardedAt,
	}
	r.SetID(p.ID)
	r.SetVersion(p.Version)
	return r
}

func ReferralToPO(r *domain.Referral) *ReferralPO {
	return &ReferralPO{
		ID:             r.GetID(),
		ReferrerUserID: r.ReferrerUserID,
		ReferredUserID: r.ReferredUserID,
		Status:         string(r.Status),
		AppliedAt:      r.AppliedAt,
		CompletedAt:    r.CompletedAt,
		RewardedAt:     r.RewardedAt,
		Version:        r.GetVersion(),
	}
}
