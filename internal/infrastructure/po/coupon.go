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

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/bytedance/promokit/internal/domain"
)

type CouponPO struct {
	ID                 string          `gorm:"primaryKey;size:20"`
	Code               string          `gorm:"size:64;uniqueIndex"`
	DiscountType       string          `gorm:"size:16"`
	DiscountValue      decimal.Decimal `gorm:"type:decimal(20,2)"`
	MinimumPurchase    decimal.Decimal `gorm:"type:decimal(20,2)"`
	UsageLimit         int
	PerUserLimit       int
	UsageCount         int
	ValidFrom          time.Time
	ValidTo            time.Time
	IsActive           bool
	ApplicableProducts []string `gorm:"serializer:json;type:text"`
	Version            int64
	CreatedAt          time.Time
	UpdatedAt          time.Time
	DeletedAt          gorm.DeletedAt `gorm:"index"`
}

func (p *CouponPO) GetID() string {
	return p.ID
}

func (p *CouponPO) TableName() string {
	return "promo_coupon"
}

func (p *CouponPO) ToDomain() *domain.Coupon {
	c := &domain.Coupon{
		Code:               p.Code,
		DiscountType:       domain.DiscountType(p.DiscountType),
		DiscountValue:      p.DiscountValue,
		MinimumPurchase:    p.MinimumPurchase,
		UsageLimit:         p.UsageLimit,
		PerUserLimit:       p.PerUserLimit,
		UsageCount:         p.UsageCount,
		ValidFrom:          p.ValidFrom,
		ValidTo:            p.ValidTo,
		IsActive:           p.IsActive,
		ApplicableProducts: p.ApplicableProducts,
	}
	c.SetID(p.ID)
	c.SetVersion(p.Version)
	return c
}

func CouponToPO(c *domain.Coupon) *CouponPO {
	return &CouponPO{
		ID:                 c.GetID(),
		Code:               c.Code,
		DiscountType:       string(c.DiscountType),
		DiscountValue:      c.DiscountValue,
		MinimumPurchase:    c.MinimumPurchase,
		UsageLimit:         c.UsageLimit,
		PerUserLimit:       c.PerUserLimit,
		UsageCount:         c.UsageCount,
		ValidFrom:          c.ValidFrom,
		ValidTo:            c.ValidTo,
		IsActive:           c.IsActive,
		ApplicableProducts: c.ApplicableProducts,
		Version:            c.GetVersion(),
	}
}

// CouponUsagePO rows are append-only; (coupon_id, order_id) unique makes
// redemption idempotent per order.
type CouponUsagePO struct {
	ID        string `gorm:"primaryKey;size:20"`
	CouponID  string `gorm:"size:20;uniqueIndex:uniq_coupon_order;index:idx_coupon_user"`
	OrderID   string `gorm:"size:64;uniqueIndex:uniq_coupon_order"`
	UserID    string `gorm:"size:64;index:idx_coupon_user"`
	UsedAt    time.Time
	CreatedAt time.Time
}

func (p *CouponUsagePO) GetID() string {
	return p.ID
}

func (p *CouponUsagePO) TableName() string {
	return "promo_coupon_usage"
}

func CouponUsageToPO(u *domain.CouponUsage) *CouponUsagePO {
	return &CouponUsagePO{
		ID:       u.GetID(),
		CouponID: u.CouponID,
		OrderID:  u.OrderID,
		UserID:   u.UserID,
		UsedAt:   u.UsedAt,
	}
}
