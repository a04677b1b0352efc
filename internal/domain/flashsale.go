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

import "time"

// FlashSale is a time-boxed sale owning per-product stock allotments.
// 0 <= SoldQuantity <= StockLimit must hold for every product at all times;
// the reservation hot path is a single conditional update in the repository.
type FlashSale struct {
	BaseEntity

	Name     string
	StartAt  time.Time
	EndAt    time.Time
	IsActive bool
	Products []*FlashSaleProduct
}

func NewFlashSale(name string, startAt, endAt time.Time) (*FlashSale, error) {
	if name == "" {
		return nil, ErrValidation
	}
	if !startAt.Before(endAt) {
		return nil, ErrValidation
	}
	return &FlashSale{
		BaseEntity: NewBase(NewID()),
		Name:       name,
		StartAt:    startAt,
		EndAt:      endAt,
		IsActive:   true,
	}, nil
}

// Deactivate closes the sale to further reservations.
func (s *FlashSale) Deactivate() {
	s.IsActive = false
}

// Live reports whether the sale currently accepts reservations.
func (s *FlashSale) Live(now time.Time) bool {
	return s.IsActive && !now.Before(s.StartAt) && !now.After(s.EndAt)
}

func (s *FlashSale) Product(productID string) *FlashSaleProduct {
	for _, p := range s.Products {
		if p.ProductID == productID {
			return p
		}
	}
	return nil
}

// AddProduct puts a product on sale. A duplicate product in the same sale is
// a conflict, not a silent success.
func (s *FlashSale) AddProduct(productID string, salePrice Money, stockLimit int) (*FlashSaleProduct, error) {
	if productID == "" || !salePrice.IsPositive() {
		return nil, ErrValidation
	}
	if stockLimit < 0 {
		return nil, ErrValidation
	}
	if s.Product(productID) != nil {
		return nil, ErrConflict
	}
	p := &FlashSaleProduct{
		BaseEntity: NewBase(NewID()),
		SaleID:     s.GetID(),
		ProductID:  productID,
		SalePrice:  salePrice,
		StockLimit: stockLimit,
	}
	s.Products = append(s.Products, p)
	return p, nil
}

// RemoveProduct is only allowed while nothing has been sold.
func (s *FlashSale) RemoveProduct(productID string) error {
	p := s.Product(productID)
	if p == nil {
		return ErrNotFound
	}
	if p.SoldQuantity != 0 {
		return ErrConflict
	}
	kept := make([]*FlashSaleProduct, 0, len(s.Products)-1)
	for _, q := range s.Products {
		if q.ProductID != productID {
			kept = append(kept, q)
		}
	}
	s.Products = kept
	return nil
}

type FlashSaleProduct struct {
	BaseEntity

	SaleID       string
	ProductID    string
	SalePrice    Money
	StockLimit   int
	SoldQuantity int
}

// Reserve checks capacity in memory. Persistence re-checks the same guard in
// a conditional update, so a concurrent winner cannot be overwritten.
func (p *FlashSaleProduct) Reserve(quantity int) error {
	if quantity <= 0 {
		return ErrValidation
	}
	if p.SoldQuantity+quantity > p.StockLimit {
		return ErrInsufficientStock
	}
	p.SoldQuantity += quantity
	return nil
}

func (p *FlashSaleProduct) Release(quantity int) error {
	if quantity <= 0 {
		return ErrValidation
	}
	if p.SoldQuantity-quantity < 0 {
		return ErrConflict
	}
	p.SoldQuantity -= quantity
	return nil
}

// DisplayDiscountPercent is for display only. The charged price is always
// SalePrice, never a recomputed discount, to avoid rounding drift.
func (p *FlashSaleProduct) DisplayDiscountPercent(originalPrice Money) Money {
	if !originalPrice.IsPositive() {
		return Zero
	}
	return originalPrice.Sub(p.SalePrice).Div(originalPrice).Mul(hundred).Round(2)
}
