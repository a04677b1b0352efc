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

package application

import (
	"context"
	"time"

	"github.com/go-logr/logr"
	"github.com/shopspring/decimal"

	"github.com/bytedance/promokit/internal/cache"
	"github.com/bytedance/promokit/internal/domain"
	"github.com/bytedance/promokit/internal/domain/event"
	"github.com/bytedance/promokit/internal/infrastructure/repo"
)

// ActiveSaleView is the cached projection of a live sale listing.
type ActiveSaleView struct {
	ID       string            `json:"id"`
	Name     string            `json:"name"`
	StartAt  time.Time         `json:"start_at"`
	EndAt    time.Time         `json:"end_at"`
	Products []ActiveSaleEntry `json:"products"`
}

type ActiveSaleEntry struct {
	ProductID    string          `json:"product_id"`
	SalePrice    decimal.Decimal `json:"sale_price"`
	StockLimit   int             `json:"stock_limit"`
	SoldQuantity int             `json:"sold_quantity"`
}

type FlashSaleService struct {
	uow    *repo.UnitOfWork
	sales  *repo.FlashSaleRepo
	outbox *repo.OutboxRepo
	cache  *cache.FlashSaleCache
	clock  domain.Clock
	logger logr.Logger
}

func NewFlashSaleService(uow *repo.UnitOfWork, sales *repo.FlashSaleRepo, outbox *repo.OutboxRepo, c *cache.FlashSaleCache, clock domain.Clock, logger logr.Logger) *FlashSaleService {
	return &FlashSaleService{
		uow:    uow,
		sales:  sales,
		outbox: outbox,
		cache:  c,
		clock:  clock,
		logger: logger.WithName("flashsale"),
	}
}

func (s *FlashSaleService) Create(ctx context.Context, name string, startAt, endAt time.Time) (*domain.FlashSale, error) {
	sale, err := domain.NewFlashSale(name, startAt, endAt)
	if err != nil {
		return nil, err
	}
	if err := s.sales.Create(ctx, sale); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return sale, nil
}

func (s *FlashSaleService) Get(ctx context.Context, id string) (*domain.FlashSale, error) {
	return s.sales.GetByID(ctx, id)
}

// ListActive serves the live-sale listing through the cache. A cache failure
// only costs the round trip to the database.
func (s *FlashSaleService) ListActive(ctx context.Context) ([]ActiveSaleView, error) {
	var views []ActiveSaleView
	ok, err := s.cache.GetActive(ctx, &views)
	if err != nil {
		s.logger.Error(err, "active sales cache read failed")
	}
	if ok {
		return views, nil
	}

	sales, err := s.sales.ListActive(ctx, s.clock.Now())
	if err != nil {
		return nil, err
	}
	views = make([]ActiveSaleView, 0, len(sales))
	for _, sale := range sales {
		v := ActiveSaleView{
			ID:      sale.GetID(),
			Name:    sale.Name,
			StartAt: sale.StartAt,
			EndAt:   sale.EndAt,
		}
		for _, p := range sale.Products {
			v.Products = append(v.Products, ActiveSaleEntry{
				ProductID:    p.ProductID,
				SalePrice:    p.SalePrice,
				StockLimit:   p.StockLimit,
				SoldQuantity: p.SoldQuantity,
			})
		}
		views = append(views, v)
	}
	if err := s.cache.SetActive(ctx, views); err != nil {
		s.logger.Error(err, "active sales cache write failed")
	}
	return views, nil
}

func (s *FlashSaleService) AddProduct(ctx context.Context, saleID, productID string, salePrice domain.Money, stockLimit int) (*domain.FlashSaleProduct, error) {
	sale, err := s.sales.GetByID(ctx, saleID)
	if err != nil {
		return nil, err
	}
	p, err := sale.AddProduct(productID, salePrice, stockLimit)
	if err != nil {
		return nil, err
	}
	// the unique (sale, product) index catches the concurrent duplicate the
	// in-memory check cannot see
	if err := s.sales.AddProduct(ctx, p); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return p, nil
}

func (s *FlashSaleService) RemoveProduct(ctx context.Context, saleID, productID string) error {
	if err := s.sales.RemoveProduct(ctx, saleID, productID); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *FlashSaleService) Deactivate(ctx context.Context, saleID string) error {
	sale, err := s.sales.GetByID(ctx, saleID)
	if err != nil {
		return err
	}
	sale.Deactivate()
	if err := s.sales.Save(ctx, sale); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// Reserve takes quantity units of stock for a checkout in progress. The
// conditional update in the repository is the only stock authority; this
// method adds the sale-window check and the event.
func (s *FlashSaleService) Reserve(ctx context.Context, saleID, productID string, quantity int) error {
	sale, err := s.sales.GetByID(ctx, saleID)
	if err != nil {
		return err
	}
	if !sale.Live(s.clock.Now()) {
		return domain.ErrExpired
	}
	err = s.uow.Transaction(ctx, func(ctx context.Context) error {
		if err := s.sales.ReserveUnits(ctx, saleID, productID, quantity); err != nil {
			return err
		}
		return s.outbox.Append(ctx, event.New(&event.UnitsReserved{
			SaleID:    saleID,
			ProductID: productID,
			Quantity:  quantity,
		}))
	})
	if err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// Release hands units back after an abandoned or failed checkout.
func (s *FlashSaleService) Release(ctx context.Context, saleID, productID string, quantity int) error {
	err := s.uow.Transaction(ctx, func(ctx context.Context) error {
		if err := s.sales.ReleaseUnits(ctx, saleID, productID, quantity); err != nil {
			return err
		}
		return s.outbox.Append(ctx, event.New(&event.UnitsReleased{
			SaleID:    saleID,
			ProductID: productID,
			Quantity:  quantity,
		}))
	})
	if err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *FlashSaleService) invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Error(err, "active sales cache invalidate failed")
	}
}
