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

package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/bytedance/promokit/internal/domain"
	"github.com/bytedance/promokit/internal/infrastructure/po"
)

type FlashSaleRepo struct {
	uow *UnitOfWork
}

func NewFlashSaleRepo(uow *UnitOfWork) *FlashSaleRepo {
	return &FlashSaleRepo{uow: uow}
}

func (r *FlashSaleRepo) Create(ctx context.Context, s *domain.FlashSale) error {
	return r.uow.Transaction(ctx, func(ctx context.Context) error {
		if err := r.uow.Conn(ctx).Create(po.FlashSaleToPO(s)).Error; err != nil {
			return translate(err)
		}
		for _, p := range s.Products {
			if err := r.uow.Conn(ctx).Create(po.FlashSaleProductToPO(p)).Error; err != nil {
				return translate(err)
			}
		}
		return nil
	})
}

func (r *FlashSaleRepo) GetByID(ctx context.Context, id string) (*domain.FlashSale, error) {
	var p po.FlashSalePO
	if err := r.uow.Conn(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	products, err := r.productsOf(ctx, id)
	if err != nil {
		return nil, err
	}
	return p.ToDomain(products), nil
}

// ListActive returns sales whose window contains now and that are active.
func (r *FlashSaleRepo) ListActive(ctx context.Context, now time.Time) ([]*domain.FlashSale, error) {
	var pos []*po.FlashSalePO
	err := r.uow.Conn(ctx).
		Where("is_active = ? AND start_at <= ? AND end_at >= ?", true, now, now).
		Order("start_at").
		Find(&pos).Error
	if err != nil {
		return nil, translate(err)
	}
	out := make([]*domain.FlashSale, 0, len(pos))
	for _, p := range pos {
		products, err := r.productsOf(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, p.ToDomain(products))
	}
	return out, nil
}

func (r *FlashSaleRepo) productsOf(ctx context.Context, saleID string) ([]*po.FlashSaleProductPO, error) {
	var products []*po.FlashSaleProductPO
	err := r.uow.Conn(ctx).Where("sale_id = ?", saleID).Order("created_at").Find(&products).Error
	return products, translate(err)
}

func (r *FlashSaleRepo) Save(ctx context.Context, s *domain.FlashSale) error {
	p := po.FlashSaleToPO(s)
	prev := p.Version
	p.Version++
	res := r.uow.Conn(ctx).Model(&po.FlashSalePO{}).
		Where("id = ? AND version = ?", p.ID, prev).
		Select("*").Omit("id", "created_at", "deleted_at").
		Updates(p)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrConflict
	}
	s.SetVersion(p.Version)
	return nil
}

func (r *FlashSaleRepo) AddProduct(ctx context.Context, p *domain.FlashSaleProduct) error {
	return translate(r.uow.Conn(ctx).Create(po.FlashSaleProductToPO(p)).Error)
}

// RemoveProduct deletes the allotment only while nothing has been sold.
func (r *FlashSaleRepo) RemoveProduct(ctx context.Context, saleID, productID string) error {
	res := r.uow.Conn(ctx).
		Where("sale_id = ? AND product_id = ? AND sold_quantity = 0", saleID, productID).
		Delete(&po.FlashSaleProductPO{})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		if _, err := r.product(ctx, saleID, productID); err != nil {
			return err
		}
		return domain.ErrConflict
	}
	return nil
}

func (r *FlashSaleRepo) product(ctx context.Context, saleID, productID string) (*po.FlashSaleProductPO, error) {
	var p po.FlashSaleProductPO
	err := r.uow.Conn(ctx).First(&p, "sale_id = ? AND product_id = ?", saleID, productID).Error
	if err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r *FlashSaleRepo) GetProduct(ctx context.Context, saleID, productID string) (*domain.FlashSaleProduct, error) {
	p, err := r.product(ctx, saleID, productID)
	if err != nil {
		return nil, err
	}
	return p.ToDomain(), nil
}

// ReserveUnits is the oversell guard: a single conditional update that either
// fully applies or does nothing. No read-then-write on this path.
func (r *FlashSaleRepo) ReserveUnits(ctx context.Context, saleID, productID string, quantity int) error {
	if quantity <= 0 {
		return domain.ErrValidation
	}
	res := r.uow.Conn(ctx).Model(&po.FlashSaleProductPO{}).
		Where("sale_id = ? AND product_id = ? AND sold_quantity + ? <= stock_limit", saleID, productID, quantity).
		UpdateColumns(map[string]interface{}{
			"sold_quantity": gorm.Expr("sold_quantity + ?", quantity),
			"version":       gorm.Expr("version + 1"),
		})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		if _, err := r.product(ctx, saleID, productID); err != nil {
			return err
		}
		return domain.ErrInsufficientStock
	}
	return nil
}

// ReleaseUnits is the symmetric decrement for checkout rollback.
func (r *FlashSaleRepo) ReleaseUnits(ctx context.Context, saleID, productID string, quantity int) error {
	if quantity <= 0 {
		return domain.ErrValidation
	}
	res := r.uow.Conn(ctx).Model(&po.FlashSaleProductPO{}).
		Where("sale_id = ? AND product_id = ? AND sold_quantity - ? >= 0", saleID, productID, quantity).
		UpdateColumns(map[string]interface{}{
			"sold_quantity": gorm.Expr("sold_quantity - ?", quantity),
			"version":       gorm.Expr("version + 1"),
		})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		if _, err := r.product(ctx, saleID, productID); err != nil {
			return err
		}
		return domain.ErrConflict
	}
	return nil
}
