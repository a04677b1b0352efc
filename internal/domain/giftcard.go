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
	"crypto/rand"
	"fmt"
	"time"

	"github.com/bytedance/promokit/internal/domain/event"
)

type GiftCardStatus string

const (
	GiftCardActive   GiftCardStatus = "active"
	GiftCardRedeemed GiftCardStatus = "redeemed"
	GiftCardExpired  GiftCardStatus = "expired"
)

// GiftCard holds a monotonically decreasing balance,
// 0 <= Balance <= InitialValue.
type GiftCard struct {
	BaseEntity

	Code         string
	Balance      Money
	InitialValue Money
	PurchasedBy  string
	AssignedTo   string
	ExpiresAt    time.Time
	Status       GiftCardStatus
}

const giftCardCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// NewGiftCardCode returns an unguessable card code. xid alone is time-ordered
// and guessable, so the code is drawn from crypto/rand.
func NewGiftCardCode() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate gift card code: %w", err)
	}
	out := make([]byte, len(buf))
	for i, b := range buf {
		out[i] = giftCardCodeAlphabet[int(b)%len(giftCardCodeAlphabet)]
	}
	return "GC-" + string(out[:8]) + "-" + string(out[8:]), nil
}

func NewGiftCard(purchasedBy string, amount Money, assignedTo string, now time.Time, validity time.Duration) (*GiftCard, error) {
	if purchasedBy == "" {
		return nil, ErrValidation
	}
	if !amount.IsPositive() {
		return nil, ErrValidation
	}
	if validity <= 0 {
		return nil, ErrValidation
	}
	code, err := NewGiftCardCode()
	if err != nil {
		return nil, err
	}
	g := &GiftCard{
		BaseEntity:   NewBase(NewID()),
		Code:         code,
		Balance:      amount,
		InitialValue: amount,
		PurchasedBy:  purchasedBy,
		AssignedTo:   assignedTo,
		ExpiresAt:    now.Add(validity),
		Status:       GiftCardActive,
	}
	g.AddEvent(&event.GiftCardIssued{
		CardID:      g.GetID(),
		PurchasedBy: purchasedBy,
		Amount:      amount,
	})
	return g, nil
}

// CalculateDiscount is pure: the amount this card could cover for an order.
func (g *GiftCard) CalculateDiscount(now time.Time, orderAmount Money) Money {
	if g.Status != GiftCardActive || now.After(g.ExpiresAt) {
		return Zero
	}
	if orderAmount.IsNegative() {
		return Zero
	}
	return MinMoney(g.Balance, orderAmount)
}

// Redeem applies up to requested against the balance and returns the amount
// actually applied, which may be less than requested so that checkout can
// cover the remainder from another instrument.
func (g *GiftCard) Redeem(now time.Time, requested Money) (Money, error) {
	if !requested.IsPositive() {
		return Zero, ErrValidation
	}
	if g.Status == GiftCardExpired || now.After(g.ExpiresAt) {
		return Zero, ErrExpired
	}
	if g.Status == GiftCardRedeemed || !g.Balance.IsPositive() {
		return Zero, ErrInsufficientBalance
	}
	applied := MinMoney(requested, g.Balance)
	g.Balance = g.Balance.Sub(applied)
	if g.Balance.IsZero() {
		g.Status = GiftCardRedeemed
	}
	return applied, nil
}

// AssignTo is apply-once: reassigning an assigned card is a conflict.
func (g *GiftCard) AssignTo(userID string) error {
	if userID == "" {
		return ErrValidation
	}
	if g.AssignedTo != "" {
		return ErrConflict
	}
	g.AssignedTo = userID
	return nil
}

// Expire transitions an overdue card; used by the sweep.
func (g *GiftCard) Expire(now time.Time) error {
	if g.Status != GiftCardActive {
		return ErrConflict
	}
	if !now.After(g.ExpiresAt) {
		return ErrConflict
	}
	g.Status = GiftCardExpired
	return nil
}

// GiftCardTransaction is an append-only ledger row; immutable once written.
type GiftCardTransaction struct {
	BaseEntity

	CardID  string
	UserID  string
	OrderID string
	Amount  Money
	At      time.Time
}

func NewGiftCardTransaction(cardID, userID, orderID string, amount Money, now time.Time) *GiftCardTransaction {
	return &GiftCardTransaction{
		BaseEntity: NewBase(NewID()),
		CardID:     cardID,
		UserID:     userID,
		OrderID:    orderID,
		Amount:     amount,
		At:         now,
	}
}
