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

package domain

import (
	"strings"
	"time"
)

type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

// Coupon is a usage-limited discount code. usage_count <= usage_limit is the
// aggregate invariant; the hot-path increment is a conditional update in the
// repository, the domain methods guard everything reachable from a loaded
// aggregate.
type Coupon struct {
	BaseEntity

	Code            string
	DiscountType    DiscountType
	DiscountValue   Money
	MinimumPurchase Money
	UsageLimit      int // 0 = unlimited
	PerUserLimit    int // 0 = unlimited
	UsageCount      int
	ValidFrom       time.Time
	ValidTo         time.Time
	IsActive        bool

	// ApplicableProducts restricts the coupon to specific products.
	// Empty means the coupon applies to any order.
	ApplicableProducts []string
}

// NormalizeCouponCode makes code matching case-insensitive.
func NormalizeCouponCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

type CouponSpec struct {
	Code               string
	DiscountType       DiscountType
	DiscountValue      Money
	MinimumPurchase    Money
	UsageLimit         int
	PerUserLimit       int
	ValidFrom          time.Time
	ValidTo            time.Time
	ApplicableProducts []string
}

// NewCoupon validates the spec and returns a coupon that is never in an
// invalid state.
func NewCoupon(spec CouponSpec) (*Coupon, error) {
	code := NormalizeCouponCode(spec.Code)
	if code == "" {
		return nil, ErrValidation
	}
	switch spec.DiscountType {
	case DiscountPercentage:
		if !spec.DiscountValue.IsPositive() || spec.DiscountValue.GreaterThan(hundred) {
			return nil, ErrValidation
		}
	case DiscountFixed:
		if !spec.DiscountValue.IsPositive() {
			return nil, ErrValidation
		}
	default:
		return nil, ErrValidation
	}
	if spec.MinimumPurchase.IsNegative() {
		return nil, ErrValidation
	}
	if spec.UsageLimit < 0 || spec.PerUserLimit < 0 {
		return nil, ErrValidation
	}
	if !spec.ValidFrom.Before(spec.ValidTo) {
		return nil, ErrValidation
	}
	return &Coupon{
		BaseEntity:         NewBase(NewID()),
		Code:               code,
		DiscountType:       spec.DiscountType,
		DiscountValue:      spec.DiscountValue,
		MinimumPurchase:    spec.MinimumPurchase,
		UsageLimit:         spec.UsageLimit,
		PerUserLimit:       spec.PerUserLimit,
		ValidFrom:          spec.ValidFrom,
		ValidTo:            spec.ValidTo,
		IsActive:           true,
		ApplicableProducts: spec.ApplicableProducts,
	}, nil
}

func (c *Coupon) live(now time.Time) bool {
	return c.IsActive && !now.Before(c.ValidFrom) && !now.After(c.ValidTo)
}

func (c *Coupon) appliesTo(productIDs []string) bool {
	if len(c.ApplicableProducts) == 0 {
		return true
	}
	for _, want := range c.ApplicableProducts {
		for _, got := range productIDs {
			if want == got {
				return true
			}
		}
	}
	return false
}

// Discount computes the discount for an order. An expired or inactive coupon
// never yields a discount greater than zero, it fails instead.
func (c *Coupon) Discount(now time.Time, orderAmount Money, productIDs []string) (Money, error) {
	if !c.live(now) {
		return Zero, ErrExpired
	}
	if orderAmount.LessThan(c.MinimumPurchase) {
		return Zero, ErrMinimumNotMet
	}
	if !c.appliesTo(productIDs) {
		return Zero, ErrValidation
	}
	var discount Money
	if c.DiscountType == DiscountPercentage {
		discount = PercentOf(orderAmount, c.DiscountValue)
	} else {
		discount = MinMoney(c.DiscountValue, orderAmount)
	}
	if discount.IsNegative() {
		discount = Zero
	}
	return discount, nil
}

// CheckLimits verifies global and per-user usage caps. userUses is the number
// of distinct orders this user has already redeemed the coupon against.
func (c *Coupon) CheckLimits(userUses int) error {
	if c.UsageLimit > 0 && c.UsageCount >= c.UsageLimit {
		return ErrLimitExceeded
	}
	if c.PerUserLimit > 0 && userUses >= c.PerUserLimit {
		return ErrLimitExceeded
	}
	return nil
}

type CouponUpdate struct {
	DiscountValue   *Money
	MinimumPurchase *Money
	UsageLimit      *int
	PerUserLimit    *int
	ValidFrom       *time.Time
	ValidTo         *time.Time
	IsActive        *bool
}

// Update mutates admin-editable fields. Usage counters are never writable
// here; lowering the usage limit below the consumed count is rejected.
func (c *Coupon) Update(upd CouponUpdate) error {
	if upd.UsageLimit != nil {
		if *upd.UsageLimit < 0 {
			return ErrValidation
		}
		if *upd.UsageLimit > 0 && *upd.UsageLimit < c.UsageCount {
			return ErrValidation
		}
		c.UsageLimit = *upd.UsageLimit
	}
	if upd.DiscountValue != nil {
		if !upd.DiscountValue.IsPositive() {
			return ErrValidation
		}
		c.DiscountValue = *upd.DiscountValue
	}
	if upd.MinimumPurchase != nil {
		if upd.MinimumPurchase.IsNegative() {
			return ErrValidation
		}
		c.MinimumPurchase = *upd.MinimumPurchase
	}
	if upd.PerUserLimit != nil {
		if *upd.PerUserLimit < 0 {
			return ErrValidation
		}
		c.PerUserLimit = *upd.PerUserLimit
	}
	if upd.ValidFrom != nil {
		c.ValidFrom = *upd.ValidFrom
	}
	if upd.ValidTo != nil {
		c.ValidTo = *upd.ValidTo
	}
	if !c.ValidFrom.Before(c.ValidTo) {
		return ErrValidation
	}
	if upd.IsActive != nil {
		c.IsActive = *upd.IsActive
	}
	return nil
}

// CouponUsage records one redemption. (coupon_id, order_id) is unique, which
// makes Redeem idempotent per order.
type CouponUsage struct {
	BaseEntity

	CouponID string
	UserID   string
	OrderID  string
	UsedAt   time.Time
}

func NewCouponUsage(couponID, userID, orderID string, now time.Time) (*CouponUsage, error) {
	if couponID == "" || userID == "" || orderID == "" {
		return nil, ErrValidation
	}
	return &CouponUsage{
		BaseEntity: NewBase(NewID()),
		CouponID:   couponID,
		UserID:     userID,
		OrderID:    orderID,
		UsedAt:     now,
	}, nil
}
