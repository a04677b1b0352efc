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
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bytedance/promokit/internal/domain"
	"github.com/bytedance/promokit/internal/testsuit"
)

func seedSale(t *testing.T, r *FlashSaleRepo, stock int) (*domain.FlashSale, *domain.FlashSaleProduct) {
	t.Helper()
	now := time.Now()
	s, err := domain.NewFlashSale("summer", now.Add(-time.Hour), now.Add(time.Hour))
	require.NoError(t, err)
	p, err := s.AddProduct("p1", domain.MustMoney("9.99"), stock)
	require.NoError(t, err)
	require.NoError(t, r.Create(context.Background(), s))
	return s, p
}

func TestFlashSaleRepoRoundtrip(t *testing.T) {
	uow := NewUnitOfWork(testsuit.InitDB())
	r := NewFlashSaleRepo(uow)
	ctx := context.Background()

	s, _ := seedSale(t, r, 5)

	got, err := r.GetByID(ctx, s.GetID())
	require.NoError(t, err)
	require.Len(t, got.Products, 1)
	assert.Equal(t, "p1", got.Products[0].ProductID)

	active, err := r.ListActive(ctx, time.Now())
	require.NoError(t, err)
	assert.Len(t, active, 1)

	// duplicate (sale, product) hits the unique index
	dup := &domain.FlashSaleProduct{
		BaseEntity: domain.NewBase(domain.NewID()),
		SaleID:     s.GetID(),
		ProductID:  "p1",
		SalePrice:  domain.MustMoney("1"),
	}
	assert.ErrorIs(t, r.AddProduct(ctx, dup), domain.ErrConflict)
}

// Overselling is the one bug this table must never have: with 5 units and
// two buyers wanting 3 each, exactly one succeeds.
func TestFlashSaleRepoReserveConcurrent(t *testing.T) {
	uow := NewUnitOfWork(testsuit.InitDB())
	r := NewFlashSaleRepo(uow)
	ctx := context.Background()

	s, _ := seedSale(t, r, 5)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = r.ReserveUnits(ctx, s.GetID(), "p1", 3)
		}(i)
	}
	wg.Wait()

	okCount := 0
	for _, err := range errs {
		if err == nil {
			okCount++
		} else {
			assert.ErrorIs(t, err, domain.ErrInsufficientStock)
		}
	}
	assert.Equal(t, 1, okCount)

	p, err := r.GetProduct(ctx, s.GetID(), "p1")
	require.NoError(t, err)
	assert.Equal(t, 3, p.SoldQuantity)
}

func TestFlashSaleRepoReleaseUnits(t *testing.T) {
	uow := NewUnitOfWork(testsuit.InitDB())
	r := NewFlashSaleRepo(uow)
	ctx := context.Background()

	s, _ := seedSale(t, r, 5)
	require.NoError(t, r.ReserveUnits(ctx, s.GetID(), "p1", 4))
	require.NoError(t, r.ReleaseUnits(ctx, s.GetID(), "p1", 2))

	// releasing more than sold must not go negative
	assert.ErrorIs(t, r.ReleaseUnits(ctx, s.GetID(), "p1", 3), domain.ErrConflict)

	p, err := r.GetProduct(ctx, s.GetID(), "p1")
	require.NoError(t, err)
	assert.Equal(t, 2, p.SoldQuantity)
}

func TestFlashSaleRepoRemoveProduct(t *testing.T) {
	uow := NewUnitOfWork(testsuit.InitDB())
	r := NewFlashSaleRepo(uow)
	ctx := context.Background()

	s, _ := seedSale(t, r, 5)
	require.NoError(t, r.ReserveUnits(ctx, s.GetID(), "p1", 1))
	assert.ErrorIs(t, r.RemoveProduct(ctx, s.GetID(), "p1"), domain.ErrConflict)

	require.NoError(t, r.ReleaseUnits(ctx, s.GetID(), "p1", 1))
	require.NoError(t, r.RemoveProduct(ctx, s.GetID(), "p1"))
	assert.ErrorIs(t, r.RemoveProduct(ctx, s.GetID(), "p1"), domain.ErrNotFound)
}
