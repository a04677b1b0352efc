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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlashSaleProducts(t *testing.T) {
	now := time.Now()
	s, err := NewFlashSale("summer", now, now.Add(time.Hour))
	require.NoError(t, err)
	assert.True(t, s.Live(now.Add(time.Minute)))
	assert.False(t, s.Live(now.Add(2*time.Hour)))

	s.Deactivate()
	assert.False(t, s.Live(now.Add(time.Minute)))
	s.IsActive = true

	p, err := s.AddProduct("p1", MustMoney("9.99"), 5)
	require.NoError(t, err)
	assert.Equal(t, s.GetID(), p.SaleID)

	_, err = s.AddProduct("p1", MustMoney("8.99"), 3)
	assert.ErrorIs(t, err, ErrConflict)

	require.NoError(t, p.Reserve(3))
	assert.ErrorIs(t, s.RemoveProduct("p1"), ErrConflict, "sold units pin the product")

	require.NoError(t, p.Release(3))
	require.NoError(t, s.RemoveProduct("p1"))
	assert.Nil(t, s.Product("p1"))
}

func TestFlashSaleProductReserve(t *testing.T) {
	p := &FlashSaleProduct{StockLimit: 5}

	require.NoError(t, p.Reserve(5))
	assert.ErrorIs(t, p.Reserve(1), ErrInsufficientStock)
	assert.ErrorIs(t, p.Reserve(0), ErrValidation)

	require.NoError(t, p.Release(2))
	assert.Equal(t, 3, p.SoldQuantity)
	assert.ErrorIs(t, p.Release(4), ErrConflict)
}

func TestDisplayDiscountPercent(t *testing.T) {
	p := &FlashSaleProduct{SalePrice: MustMoney("75")}
	assert.True(t, p.DisplayDiscountPercent(MustMoney("100")).Equal(MustMoney("25")))
	assert.True(t, p.DisplayDiscountPercent(Zero).IsZero())
}
