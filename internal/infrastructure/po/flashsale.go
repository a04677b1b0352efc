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

type FlashSalePO struct {
	ID        string `gorm:"primaryKey;size:20"`
	Name      string `gorm:"size:128"`
	StartAt   time.Time `gorm:"index"`
	EndAt     time.Time `gorm:"index"`
	IsActive  bool
	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (p *FlashSalePO) GetID() string {
	return p.ID
}

func (p *FlashSalePO) TableName() string {
	return "promo_flash_sale"
}

func (p *FlashSalePO) ToDomain(products []*FlashSaleProductPO) *domain.FlashSale {
	s := &domain.FlashSale{
		Name:     p.Name,
		StartAt:  p.StartAt,
		EndAt:    p.EndAt,
		IsActive: p.IsActive,
	}
	s.SetID(p.ID)
	s.SetVersion(p.Version)
	for _, prod := range products {
		s.Products = append(s.Products, prod.ToDomain())
	}
	return s
}

func FlashSaleToPO(s *domain.FlashSale) *FlashSalePO {
	return &FlashSalePO{
		ID:       s.GetID(),
		Name:     s.Name,
		StartAt:  s.StartAt,
		EndAt:    s.EndAt,
		IsActive: s.IsActive,
		Version:  s.GetVersion(),
	}
}

type FlashSaleProductPO struct {
	ID           string          `gorm:"primaryKey;size:20"`
	SaleID       string          `gorm:"size:20;uniqueIndex:uniq_sale_product"`
	ProductID    string          `gorm:"size:64;uniqueIndex:uniq_sale_product"`
	SalePrice    decimal.Decimal `gorm:"type:decimal(20,2)"`
	StockLimit   int
	SoldQuantity int
	Version      int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    gorm.DeletedAt `gorm:"index"`
}

func (p *FlashSaleProductPO) GetID() string {
	return p.ID
}

func (p *FlashSaleProductPO) TableName() string {
	return "promo_flash_sale_product"
}

func (p *FlashSaleProductPO) ToDomain() *domain.FlashSaleProduct {
	d := &domain.FlashSaleProduct{
		SaleID:       p.SaleID,
		ProductID:    p.ProductID,
		SalePrice:    p.SalePrice,
		StockLimit:   p.StockLimit,
		SoldQuantity: p.SoldQuantity,
	}
	d.SetID(p.ID)
	d.SetVersion(p.Version)
	return d
}

func FlashSaleProductToPO(d *domain.FlashSaleProduct) *FlashSaleProductPO {
	return &FlashSaleProductPO{
		ID:           d.GetID(),
		SaleID:       d.SaleID,
		ProductID:    d.ProductID,
		SalePrice:    d.SalePrice,
		StockLimit:   d.StockLimit,
		SoldQuantity: d.SoldQuantity,
		Version:      d.GetVersion(),
	}
}
