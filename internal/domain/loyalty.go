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
	"sort"
	"time"
)

type LoyaltyTxnType string

const (
	LoyaltyEarn   LoyaltyTxnType = "earn"
	LoyaltyRedeem LoyaltyTxnType = "redeem"
	LoyaltyExpire LoyaltyTxnType = "expire"
	LoyaltyAdjust LoyaltyTxnType = "adjust"
)

// LoyaltyTier is a configured threshold on lifetime points.
type LoyaltyTier struct {
	Name      string
	Threshold int64
}

// HighestTier returns the highest qualifying tier, ties broken by highest
// threshold. Empty string when no tier qualifies.
func HighestTier(lifetimePoints int64, tiers []LoyaltyTier) string {
	sorted := make([]LoyaltyTier, len(tiers))
	copy(sorted, tiers)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Threshold > sorted[j].Threshold })
	for _, t := range sorted {
		if lifetimePoints >= t.Threshold {
			return t.Name
		}
	}
	return ""
}

// CalculatePointsFromPurchase converts an order amount to points:
// floor(amount * rate). The rate comes from configuration.
func CalculatePointsFromPurchase(amount Money, rate Money) int64 {
	if amount.IsNegative() || rate.IsNegative() {
		return 0
	}
	return amount.Mul(rate).Floor().IntPart()
}

// CalculateDiscountFromPoints converts points to money: points * pointValue.
func CalculateDiscountFromPoints(points int64, pointValue Money) Money {
	if points <= 0 {
		return Zero
	}
	return pointValue.Mul(intToDecimal(points)).Round(2)
}

// LoyaltyAccount reconciles against its transaction ledger:
// PointsBalance == sum of signed transaction deltas, and never negative.
type LoyaltyAccount struct {
	BaseEntity

	UserID         string
	PointsBalance  int64
	LifetimePoints int64
	Tier           string
}

func NewLoyaltyAccount(userID string) (*LoyaltyAccount, error) {
	if userID == "" {
		return nil, ErrValidation
	}
	return &LoyaltyAccount{
		BaseEntity: NewBase(NewID()),
		UserID:     userID,
	}, nil
}

// Earn appends an earn transaction and recomputes the tier.
func (a *LoyaltyAccount) Earn(points int64, orderID string, tiers []LoyaltyTier, now time.Time) (*LoyaltyTransaction, error) {
	if points <= 0 {
		return nil, ErrValidation
	}
	a.PointsBalance += points
	a.LifetimePoints += points
	a.Tier = HighestTier(a.LifetimePoints, tiers)
	return a.newTxn(LoyaltyEarn, points, orderID, "", now), nil
}

// Redeem appends a redeem transaction. The max-fraction-of-order policy is
// enforced by the caller; the ledger only guards the balance.
func (a *LoyaltyAccount) Redeem(points int64, orderID string, now time.Time) (*LoyaltyTransaction, error) {
	if points <= 0 {
		return nil, ErrValidation
	}
	if points > a.PointsBalance {
		return nil, ErrInsufficientPoints
	}
	a.PointsBalance -= points
	return a.newTxn(LoyaltyRedeem, -points, orderID, "", now), nil
}

// Adjust applies a signed admin correction. Positive deltas count toward
// lifetime points, negative ones do not reduce them.
func (a *LoyaltyAccount) Adjust(delta int64, reason string, tiers []LoyaltyTier, now time.Time) (*LoyaltyTransaction, error) {
	if delta == 0 {
		return nil, ErrValidation
	}
	if a.PointsBalance+delta < 0 {
		return nil, ErrInsufficientPoints
	}
	a.PointsBalance += delta
	if delta > 0 {
		a.LifetimePoints += delta
		a.Tier = HighestTier(a.LifetimePoints, tiers)
	}
	return a.newTxn(LoyaltyAdjust, delta, "", reason, now), nil
}

// ExpirePoints removes points that aged out; used by a scheduled sweep.
func (a *LoyaltyAccount) ExpirePoints(points int64, now time.Time) (*LoyaltyTransaction, error) {
	if points <= 0 {
		return nil, ErrValidation
	}
	if points > a.PointsBalance {
		points = a.PointsBalance
	}
	if points == 0 {
		return nil, ErrValidation
	}
	a.PointsBalance -= points
	return a.newTxn(LoyaltyExpire, -points, "", "", now), nil
}

func (a *LoyaltyAccount) newTxn(t LoyaltyTxnType, delta int64, orderID, note string, now time.Time) *LoyaltyTransaction {
	return &LoyaltyTransaction{
		BaseEntity: NewBase(NewID()),
		AccountID:  a.GetID(),
		UserID:     a.UserID,
		Type:       t,
		Points:     delta,
		OrderID:    orderID,
		Note:       note,
		At:         now,
	}
}

// LoyaltyTransaction is an append-only signed delta; immutable once written.
type LoyaltyTransaction struct {
	BaseEntity

	AccountID string
	UserID    string
	Type      LoyaltyTxnType
	Points    int64 // signed
	OrderID   string
	Note      string
	At        time.Time
}
