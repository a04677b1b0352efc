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

type GiftCardPO struct {
	ID           string          `gorm:"primaryKey;size:20"`
	Code         string          `gorm:"size:32;uniqueIndex"`
	Balance      decimal.Decimal `gorm:"type:decimal(20,2)"`
	InitialValue decimal.Decimal `gorm:"type:decimal(20,2)"`
	PurchasedBy  string          `gorm:"size:64;index"`
	AssignedTo   string          `gorm:"size:64;index"`
	ExpiresAt    time.Time       `gorm:"index"`
	Status       string          `gorm:"size:16;index"`
	Version      int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    gorm.DeletedAt `gorm:"index"`
}

func (p *GiftCardPO) GetID() string {
	return p.ID
}

func (p *GiftCardPO) TableName() string {
	return "promo_gift_card"
}

func (p *GiftCardPO) ToDomain() *domain.GiftCard {
	g := &domain.GiftCard{
		Code:         p.Code,
		Balance:      p.Balance,
		InitialValue: p.InitialValue,
		PurchasedBy:  p.PurchasedBy,
		AssignedTo:   p.AssignedTo,
		ExpiresAt:    p.ExpiresAt,
		Status:       domain.GiftCardStatus(p.Status),
	}
	g.SetID(p.ID)
	g.SetVersion(p.Version)
	return g
}

func GiftCardToPO(g *domain.GiftCard) *GiftCardPO {
	return &GiftCardPO{
		ID:           g.GetID(),
		Code:         g.Code,
		Balance:      g.Balance,
		InitialValue: g.InitialValue,
		PurchasedBy:  g.PurchasedBy,
		AssignedTo:   g.AssignedTo,
		ExpiresAt:    g.ExpiresAt,
		Status:       string(g.Status),
		Version:      g.GetVersion(),
	}
}

// GiftCardTransactionPO rows are append-only and immutable once written.
type GiftCardTransactionPO struct {
	ID        string          `gorm:"primaryKey;size:20"`
	CardID    string          `gorm:"size:20;index"`
	UserID    string          `gorm:"size:64;index"`
	OrderID   string          `gorm:"size:64;index"`
	Amount    decimal.Decimal `gorm:"type:decimal(20,2)"`
	At        time.Time
	CreatedAt time.Time
}

func (p *GiftCardTransactionPO) GetID() string {
	return p.ID
}

func (p *GiftCardTransactionPO) TableName() string {
	return "promo_gift_card_txn"
}

func GiftCardTransactionToPO(t *domain.GiftCardTransaction) *GiftCardTransactionPO {
	return &GiftCardTransactionPO{
		ID:      t.GetID(),
		CardID:  t.CardID,
		UserID:  t.UserID,
		OrderID: t.OrderID,
		Amount:  t.Amount,
		At:      t.At,
	}
}
