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

package event

import "github.com/shopspring/decimal"

const (
	TypeCouponRedeemed    Type = "coupon.redeemed"
	TypeUnitsReserved     Type = "flashsale.units_reserved"
	TypeUnitsReleased     Type = "flashsale.units_released"
	TypeGiftCardIssued    Type = "giftcard.issued"
	TypeGiftCardRedeemed  Type = "giftcard.redeemed"
	TypePointsAccrued     Type = "loyalty.accrued"
	TypePointsRedeemed    Type = "loyalty.redeemed"
	TypePreOrderCreated   Type = "preorder.created"
	TypePreOrderCancelled Type = "preorder.cancelled"
	TypePreOrderConverted Type = "preorder.converted"
	TypePreOrderExpired   Type = "preorder.expired"
	TypeReferralApplied   Type = "referral.applied"
	TypeReferralRewarded  Type = "referral.rewarded"

	// TypeOrderCompleted is published by the external checkout service. The
	// engine only consumes it, to accrue points and settle referrals.
	TypeOrderCompleted Type = "order.completed"
)

type CouponRedeemed struct {
	CouponID string
	OrderID  string
	UserID   string
}

func (e *CouponRedeemed) GetType() Type     { return TypeCouponRedeemed }
func (e *CouponRedeemed) GetSender() string { return e.CouponID }

type UnitsReserved struct {
	SaleID    string
	ProductID string
	Quantity  int
}

func (e *UnitsReserved) GetType() Type     { return TypeUnitsReserved }
func (e *UnitsReserved) GetSender() string { return e.SaleID }

type UnitsReleased struct {
	SaleID    string
	ProductID string
	Quantity  int
}

func (e *UnitsReleased) GetType() Type     { return TypeUnitsReleased }
func (e *UnitsReleased) GetSender() string { return e.SaleID }

type GiftCardIssued struct {
	CardID      string
	PurchasedBy string
	Amount      decimal.Decimal
}

func (e *GiftCardIssued) GetType() Type     { return TypeGiftCardIssued }
func (e *GiftCardIssued) GetSender() string { return e.CardID }

type GiftCardRedeemed struct {
	CardID  string
	UserID  string
	OrderID string
	Applied decimal.Decimal
}

func (e *GiftCardRedeemed) GetType() Type     { return TypeGiftCardRedeemed }
func (e *GiftCardRedeemed) GetSender() string { return e.CardID }

type PointsAccrued struct {
	AccountID string
	UserID    string
	OrderID   string
	Points    int64
}

func (e *PointsAccrued) GetType() Type     { return TypePointsAccrued }
func (e *PointsAccrued) GetSender() string { return e.AccountID }

type PointsRedeemed struct {
	AccountID string
	UserID    string
	OrderID   string
	Points    int64
}

func (e *PointsRedeemed) GetType() Type     { return TypePointsRedeemed }
func (e *PointsRedeemed) GetSender() string { return e.AccountID }

type PreOrderCreated struct {
	PreOrderID string
	CampaignID string
	UserID     string
	Quantity   int
}

func (e *PreOrderCreated) GetType() Type     { return TypePreOrderCreated }
func (e *PreOrderCreated) GetSender() string { return e.PreOrderID }

type PreOrderCancelled struct {
	PreOrderID string
	CampaignID string
}

func (e *PreOrderCancelled) GetType() Type     { return TypePreOrderCancelled }
func (e *PreOrderCancelled) GetSender() string { return e.PreOrderID }

type PreOrderConverted struct {
	PreOrderID string
	OrderID    string
}

func (e *PreOrderConverted) GetType() Type     { return TypePreOrderConverted }
func (e *PreOrderConverted) GetSender() string { return e.PreOrderID }

type PreOrderExpired struct {
	PreOrderID string
	CampaignID string
}

func (e *PreOrderExpired) GetType() Type     { return TypePreOrderExpired }
func (e *PreOrderExpired) GetSender() string { return e.PreOrderID }

type ReferralApplied struct {
	ReferralID     string
	ReferrerUserID string
	ReferredUserID string
}

func (e *ReferralApplied) GetType() Type     { return TypeReferralApplied }
func (e *ReferralApplied) GetSender() string { return e.ReferralID }

type ReferralRewarded struct {
	ReferralID     string
	ReferrerUserID string
	Points         int64
}

func (e *ReferralRewarded) GetType() Type     { return TypeReferralRewarded }
func (e *ReferralRewarded) GetSender() string { return e.ReferralID }

type OrderCompleted struct {
	OrderID     string
	UserID      string
	OrderAmount decimal.Decimal
}

func (e *OrderCompleted) GetType() Type     { return TypeOrderCompleted }
func (e *OrderCompleted) GetSender() string { return e.OrderID }
