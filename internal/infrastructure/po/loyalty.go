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

type LoyaltyAccountPO struct {
	ID             string `gorm:"primaryKey;size:20"`
	UserID         string `gorm:"size:64;uniqueIndex"`
	PointsBalance  int64
	LifetimePoints int64
	Tier           string `gorm:"size:32"`
	Version        int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
	DeletedAt      gorm.DeletedAt `gorm:"index"`
}

func (p *LoyaltyAccountPO) GetID() string {
	return p.ID
}

func (p *LoyaltyAccountPO) TableName() string {
	return "promo_loyalty_account"
}

func (p *LoyaltyAccountPO) ToDomain() *domain.LoyaltyAccount {
	a := &domain.LoyaltyAccount{
		UserID:         p.UserID,
		PointsBalance:  p.PointsBalance,
		LifetimePoints: p.LifetimePoints,
		Tier:           p.Tier,
	}
	a.SetID(p.ID)
	a.SetVersion(p.Version)
	return a
}

func LoyaltyAccountToPO(a *domain.LoyaltyAccount) *LoyaltyAccountPO {
	return &LoyaltyAccountPO{
		ID:             a.GetID(),
		UserID:         a.UserID,
		PointsBalance:  a.PointsBalance,
		LifetimePoints: a.LifetimePoints,
		Tier:           a.Tier,
		Version:        a.GetVersion(),
	}
}

// LoyaltyTransactionPO rows are append-only signed deltas; the account
// balance must equal their sum at all times.
type LoyaltyTransactionPO struct {
	ID        string `gorm:"primaryKey;size:20"`
	AccountID string `gorm:"size:20;index"`
	UserID    string `gorm:"size:64;index"`
	Type      string `gorm:"size:16"`
	Points    int64
	OrderID   string `gorm:"size:64;index"`
	Note      string `gorm:"size:255"`
	At        time.Time
	CreatedAt time.Time
}

func (p *LoyaltyTransactionPO) GetID() string {
	return p.ID
}

func (p *LoyaltyTransactionPO) TableName() string {
	return "promo_loyalty_txn"
}

func (p *LoyaltyTransactionPO) ToDomain() *domain.LoyaltyTransaction {
	t := &domain.LoyaltyTransaction{
		AccountID: p.AccountID,
		UserID:    p.UserID,
		Type:      domain.LoyaltyTxnType(p.Type),
		Points:    p.Points,
		OrderID:   p.OrderID,
		Note:      p.Note,
		At:        p.At,
	}
	t.SetID(p.ID)
	return t
}

func LoyaltyTransactionToPO(t *domain.LoyaltyTransaction) *LoyaltyTransactionPO {
	return &LoyaltyTransactionPO{
		ID:        t.GetID(),
		AccountID: t.AccountID,
		UserID:    t.UserID,
		Type:      string(t.Type),
		Points:    t.Points,
		OrderID:   t.OrderID,
		Note:      t.Note,
		At:        t.At,
	}
}
