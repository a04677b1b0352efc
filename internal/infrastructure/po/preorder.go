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

type PreOrderCampaignPO struct {
	ID                string          `gorm:"primaryKey;size:20"`
	ProductID         string          `gorm:"size:64;index"`
	StartAt           time.Time       `gorm:"index"`
	EndAt             time.Time       `gorm:"index"`
	MaxQuantity       int
	CurrentQuantity   int
	DepositPercentage decimal.Decimal `gorm:"type:decimal(5,2)"`
	SpecialPrice      decimal.Decimal `gorm:"type:decimal(20,2)"`
	IsActive          bool
	Version           int64
	CreatedAt         time.Time
	UpdatedAt         time.Time
	DeletedAt         gorm.DeletedAt `gorm:"index"`
}

func (p *PreOrderCampaignPO) GetID() string {
	return p.ID
}

func (p *PreOrderCampaignPO) TableName() string {
	return "promo_preorder_campaign"
}

func (p *PreOrderCampaignPO) ToDomain() *domain.PreOrderCampaign {
	c := &domain.PreOrderCampaign{
		ProductID:         p.ProductID,
		StartAt:           p.StartAt,
		EndAt:             p.EndAt,
		MaxQuantity:       p.MaxQuantity,
		CurrentQuantity:   p.CurrentQuantity,
		DepositPercentage: p.DepositPercentage,
		SpecialPrice:      p.SpecialPrice,
		IsActive:          p.IsActive,
	}
	c.SetID(p.ID)
	c.SetVersion(p.Version)
	return c
}

func PreOrderCampaignToPO(c *domain.PreOrderCampaign) *PreOrderCampaignPO {
	return &PreOrderCampaignPO{
		ID:                c.GetID(),
		ProductID:         c.ProductID,
		StartAt:           c.StartAt,
		EndAt:             c.EndAt,
		MaxQuantity:       c.MaxQuantity,
		CurrentQuantity:   c.CurrentQuantity,
		DepositPercentage: c.DepositPercentage,
		SpecialPrice:      c.SpecialPrice,
		IsActive:          c.IsActive,
		Version:           c.GetVersion(),
	}
}

type PreOrderPO struct {
	ID               string          `gorm:"primaryKey;size:20"`
	CampaignID       string          `gorm:"size:20;index"`
	ProductID        string          `gorm:"size:64;index"`
	UserID           string          `gorm:"size:64;index"`
	Status           string          `gorm:"size:16;index"`
	Quantity         int
	Price            decimal.Decimal `gorm:"type:decimal(20,2)"`
	DepositAmount    decimal.Decimal `gorm:"type:decimal(20,2)"`
	DepositPaid      bool
	ExpiresAt        time.Time `gorm:"index"`
	ConvertedOrderID string    `gorm:"size:64"`
	Version          int64
	CreatedAt        time.Time
	UpdatedAt        time.Time
	DeletedAt        gorm.DeletedAt `gorm:"index"`
}

func (p *PreOrderPO) GetID() string {
	return p.ID
}

func (p *PreOrderPO) TableName() string {
	return "promo_preorder"
}

func (p *PreOrderPO) ToDomain() *domain.PreOrder {
	o := &domain.PreOrder{
		CampaignID:       p.CampaignID,
		ProductID:        p.ProductID,
		UserID:           p.UserID,
		Status:           domain.PreOrderStatus(p.Status),
		Quantity:         p.Quantity,
		Price:            p.Price,
		DepositAmount:    p.DepositAmount,
		DepositPaid:      p.DepositPaid,
		ExpiresAt:        p.ExpiresAt,
		ConvertedOrderID: p.ConvertedOrderID,
	}
	o.SetID(p.ID)
	o.SetVersion(p.Version)
	return o
}

func PreOrderToPO(o *domain.PreOrder) *PreOrderPO {
	return &PreOrderPO{
		ID:               o.GetID(),
		CampaignID:       o.CampaignID,
		ProductID:        o.ProductID,
		UserID:           o.UserID,
		Status:           string(o.Status),
		Quantity:         o.Quantity,
		Price:            o.Price,
		DepositAmount:    o.DepositAmount,
		DepositPaid:      o.DepositPaid,
		ExpiresAt:        o.ExpiresAt,
		ConvertedOrderID: o.ConvertedOrderID,
		Version:          o.GetVersion(),
	}
}
