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

func TestNewGiftCardCode(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		code, err := NewGiftCardCode()
		require.NoError(t, err)
		assert.Regexp(t, `^GC-[A-Z2-9]{8}-[A-Z2-9]{8}$`, code)
		assert.False(t, seen[code], "duplicate code %s", code)
		seen[code] = true
	}
}

func TestGiftCardRedeemPartial(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	card, err := NewGiftCard("u1", MustMoney("50"), "", now, 365*24*time.Hour)
	require.NoError(t, err)

	// order of 70 takes the whole 50
	applied, err := card.Redeem(now, MustMoney("70"))
	require.NoError(t, err)
	assert.True(t, applied.Equal(MustMoney("50")))
	assert.True(t, card.Balance.IsZero())
	assert.Equal(t, GiftCardRedeemed, card.Status)

	_, err = card.Redeem(now, MustMoney("1"))
	assert.ErrorIs(t, err, ErrInsufficientBalance)
}

func TestGiftCardRedeemAcrossOrders(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	card, err := NewGiftCard("u1", MustMoney("50"), "", now, 365*24*time.Hour)
	require.NoError(t, err)

	applied, err := card.Redeem(now, MustMoney("20"))
	require.NoError(t, err)
	assert.True(t, applied.Equal(MustMoney("20")))
	assert.True(t, card.Balance.Equal(MustMoney("30")))
	assert.Equal(t, GiftCardActive, card.Status)
}

func TestGiftCardExpiry(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	card, err := NewGiftCard("u1", MustMoney("50"), "", now, 24*time.Hour)
	require.NoError(t, err)

	later := now.Add(48 * time.Hour)
	assert.True(t, card.CalculateDiscount(later, MustMoney("100")).IsZero())
	_, err = card.Redeem(later, MustMoney("10"))
	assert.ErrorIs(t, err, ErrExpired)

	require.NoError(t, card.Expire(later))
	assert.Equal(t, GiftCardExpired, card.Status)
	// expiring twice is a conflict
	assert.ErrorIs(t, card.Expire(later), ErrConflict)
	// expiring a card still in validity is a conflict too
	fresh, _ := NewGiftCard("u1", MustMoney("10"), "", now, 24*time.Hour)
	assert.ErrorIs(t, fresh.Expire(now), ErrConflict)
}

func TestGiftCardAssignOnce(t *testing.T) {
	now := time.Now()
	card, err := NewGiftCard("buyer", MustMoney("25"), "", now, time.Hour)
	require.NoError(t, err)

	require.NoError(t, card.AssignTo("u2"))
	assert.ErrorIs(t, card.AssignTo("u3"), ErrConflict)
	assert.Equal(t, "u2", card.AssignedTo)
}

func TestGiftCardCalculateDiscount(t *testing.T) {
	now := time.Now()
	card, err := NewGiftCard("u1", MustMoney("50"), "", now, time.Hour)
	require.NoError(t, err)

	assert.True(t, card.CalculateDiscount(now, MustMoney("30")).Equal(MustMoney("30")))
	assert.True(t, card.CalculateDiscount(now, MustMoney("80")).Equal(MustMoney("50")))
}
