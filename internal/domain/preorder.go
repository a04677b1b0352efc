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
	"time"

	"github.com/bytedance/promokit/internal/domain/event"
)

// PreOrderCampaign guards max_quantity = 0 (unlimited) or
// current_quantity <= max_quantity. The capacity increment runs as a
// conditional update in the same transaction as the pre-order insert.
type PreOrderCampaign struct {
	BaseEntity

	ProductID         string
	StartAt           time.Time
	EndAt             time.Time
	MaxQuantity       int // 0 = unlimited
	CurrentQuantity   int
	DepositPercentage Money // 0..100
	SpecialPrice      Money // zero = use product price
	IsActive          bool
}

type PreOrderCampaignSpec struct {
	ProductID         string
	StartAt           time.Time
	EndAt             time.Time
	MaxQuantity       int
	DepositPercentage Money
	SpecialPrice      Money
}

func NewPreOrderCampaign(spec PreOrderCampaignSpec) (*PreOrderCampaign, error) {
	if spec.ProductID == "" {
		return nil, ErrValidation
	}
	if !spec.StartAt.Before(spec.EndAt) {
		return nil, ErrValidation
	}
	if spec.MaxQuantity < 0 {
		return nil, ErrValidation
	}
	if spec.DepositPercentage.IsNegative() || spec.DepositPercentage.GreaterThan(hundred) {
		return nil, ErrValidation
	}
	if spec.SpecialPrice.IsNegative() {
		return nil, ErrValidation
	}
	return &PreOrderCampaign{
		BaseEntity:        NewBase(NewID()),
		ProductID:         spec.ProductID,
		StartAt:           spec.StartAt,
		EndAt:             spec.EndAt,
		MaxQuantity:       spec.MaxQuantity,
		DepositPercentage: spec.DepositPercentage,
		SpecialPrice:      spec.SpecialPrice,
		IsActive:          true,
	}, nil
}

// Deactivate closes the campaign to new pre-orders.
func (c *PreOrderCampaign) Deactivate() {
	c.IsActive = false
}

func (c *PreOrderCampaign) Open(now time.Time) bool {
	return c.IsActive && !now.Before(c.StartAt) && !now.After(c.EndAt)
}

// UnitPrice locks the price a pre-order is created at.
func (c *PreOrderCampaign) UnitPrice(productPrice Money) Money {
	if c.SpecialPrice.IsPositive() {
		return c.SpecialPrice
	}
	return productPrice
}

type PreOrderStatus string

const (
	PreOrderPending     PreOrderStatus = "pending"
	PreOrderConfirmed   PreOrderStatus = "confirmed"
	PreOrderDepositPaid PreOrderStatus = "deposit_paid"
	PreOrderReadyToShip PreOrderStatus = "ready_to_ship"
	PreOrderConverted   PreOrderStatus = "converted"
	PreOrderCancelled   PreOrderStatus = "cancelled"
	PreOrderExpired     PreOrderStatus = "expired"
)

// PreOrder state machine:
//
//	Pending --(deposit == 0)--------------------> Confirmed
//	Pending --PayDeposit(full)------------------> DepositPaid
//	Confirmed/DepositPaid --MarkReadyToShip-----> ReadyToShip
//	ReadyToShip/Confirmed/DepositPaid --Convert-> Converted   (terminal)
//	Pending/Confirmed/DepositPaid --Cancel------> Cancelled   (terminal)
//	Pending --expiry sweep----------------------> Expired     (terminal)
type PreOrder struct {
	BaseEntity

	CampaignID       string
	ProductID        string
	UserID           string
	Status           PreOrderStatus
	Quantity         int
	Price            Money // locked total, independent of later price changes
	DepositAmount    Money
	DepositPaid      bool
	ExpiresAt        time.Time
	ConvertedOrderID string
}

// NewPreOrder creates a pre-order against an open campaign, locking the price
// and computing the deposit. The campaign capacity check happens at the
// persistence layer; creation here assumes a slot was granted.
func NewPreOrder(c *PreOrderCampaign, userID string, quantity int, productPrice Money, now time.Time, ttl time.Duration) (*PreOrder, error) {
	if userID == "" || quantity <= 0 {
		return nil, ErrValidation
	}
	if !c.Open(now) {
		return nil, ErrExpired
	}
	unit := c.UnitPrice(productPrice)
	if !unit.IsPositive() {
		return nil, ErrValidation
	}
	price := unit.Mul(intToDecimal(int64(quantity)))
	deposit := PercentOf(price, c.DepositPercentage)

	p := &PreOrder{
		BaseEntity:    NewBase(NewID()),
		CampaignID:    c.GetID(),
		ProductID:     c.ProductID,
		UserID:        userID,
		Status:        PreOrderPending,
		Quantity:      quantity,
		Price:         price,
		DepositAmount: deposit,
		ExpiresAt:     now.Add(ttl),
	}
	if deposit.IsZero() {
		p.Status = PreOrderConfirmed
	}
	p.AddEvent(&event.PreOrderCreated{
		PreOrderID: p.GetID(),
		CampaignID: p.CampaignID,
		UserID:     userID,
		Quantity:   quantity,
	})
	return p, nil
}

// PayDeposit requires the full deposit amount in one payment.
func (p *PreOrder) PayDeposit(amount Money) error {
	if p.Status != PreOrderPending {
		return ErrConflict
	}
	if !amount.Equal(p.DepositAmount) {
		return ErrValidation
	}
	p.Status = PreOrderDepositPaid
	p.DepositPaid = true
	return nil
}

func (p *PreOrder) MarkReadyToShip() error {
	if p.Status != PreOrderConfirmed && p.Status != PreOrderDepositPaid {
		return ErrConflict
	}
	p.Status = PreOrderReadyToShip
	return nil
}

// CanConvert reports whether the pre-order may still convert, without
// mutating it. Callers with external side effects check this first.
func (p *PreOrder) CanConvert() error {
	switch p.Status {
	case PreOrderReadyToShip, PreOrderConfirmed, PreOrderDepositPaid:
		return nil
	default:
		return ErrConflict
	}
}

// ConvertToOrder ties the pre-order to the real order created from its
// locked price and quantity.
func (p *PreOrder) ConvertToOrder(orderID string) error {
	if orderID == "" {
		return ErrValidation
	}
	if err := p.CanConvert(); err != nil {
		return err
	}
	p.Status = PreOrderConverted
	p.ConvertedOrderID = orderID
	p.AddEvent(&event.PreOrderConverted{PreOrderID: p.GetID(), OrderID: orderID})
	return nil
}

func (p *PreOrder) Cancel() error {
	switch p.Status {
	case PreOrderPending, PreOrderConfirmed, PreOrderDepositPaid:
	default:
		return ErrConflict
	}
	p.Status = PreOrderCancelled
	p.AddEvent(&event.PreOrderCancelled{PreOrderID: p.GetID(), CampaignID: p.CampaignID})
	return nil
}

// Expire is only applicable to pending orders past their deadline.
func (p *PreOrder) Expire(now time.Time) error {
	if p.Status != PreOrderPending {
		return ErrConflict
	}
	if !now.After(p.ExpiresAt) {
		return ErrConflict
	}
	p.Status = PreOrderExpired
	p.AddEvent(&event.PreOrderExpired{PreOrderID: p.GetID(), CampaignID: p.CampaignID})
	return nil
}
