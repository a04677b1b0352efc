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

	"github.com/bytedance/promokit/internal/domain/event"
)

func openCampaign(t *testing.T, now time.Time) *PreOrderCampaign {
	t.Helper()
	c, err := NewPreOrderCampaign(PreOrderCampaignSpec{
		ProductID:         "p1",
		StartAt:           now.Add(-time.Hour),
		EndAt:             now.Add(time.Hour),
		MaxQuantity:       100,
		DepositPercentage: MustMoney("20"),
		SpecialPrice:      MustMoney("90"),
	})
	require.NoError(t, err)
	return c
}

func TestPreOrderCampaignUnitPrice(t *testing.T) {
	now := time.Now()
	c := openCampaign(t, now)
	assert.True(t, c.UnitPrice(MustMoney("120")).Equal(MustMoney("90")))

	c.SpecialPrice = Zero
	assert.True(t, c.UnitPrice(MustMoney("120")).Equal(MustMoney("120")))
}

func TestNewPreOrderLocksPriceAndDeposit(t *testing.T) {
	now := time.Now()
	c := openCampaign(t, now)

	p, err := NewPreOrder(c, "u1", 2, MustMoney("120"), now, 48*time.Hour)
	require.NoError(t, err)
	assert.True(t, p.Price.Equal(MustMoney("180")), "2 * special price 90")
	assert.True(t, p.DepositAmount.Equal(MustMoney("36")), "20%% of 180")
	assert.Equal(t, PreOrderPending, p.Status)

	// zero deposit confirms immediately
	c.DepositPercentage = Zero
	p2, err := NewPreOrder(c, "u1", 1, MustMoney("120"), now, 48*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, PreOrderConfirmed, p2.Status)
}

func TestNewPreOrderClosedCampaign(t *testing.T) {
	now := time.Now()
	c := openCampaign(t, now)
	_, err := NewPreOrder(c, "u1", 1, MustMoney("120"), now.Add(2*time.Hour), 48*time.Hour)
	assert.ErrorIs(t, err, ErrExpired)
}

func TestPreOrderStateMachine(t *testing.T) {
	now := time.Now()
	c := openCampaign(t, now)
	p, err := NewPreOrder(c, "u1", 1, MustMoney("120"), now, 48*time.Hour)
	require.NoError(t, err)

	// partial deposit refused
	assert.ErrorIs(t, p.PayDeposit(MustMoney("10")), ErrValidation)
	// convert before deposit refused
	assert.ErrorIs(t, p.CanConvert(), ErrConflict)
	assert.ErrorIs(t, p.ConvertToOrder("o1"), ErrConflict)

	require.NoError(t, p.PayDeposit(p.DepositAmount))
	assert.Equal(t, PreOrderDepositPaid, p.Status)
	assert.True(t, p.DepositPaid)
	// paying twice is a conflict
	assert.ErrorIs(t, p.PayDeposit(p.DepositAmount), ErrConflict)

	require.NoError(t, p.MarkReadyToShip())
	require.NoError(t, p.CanConvert())
	require.NoError(t, p.ConvertToOrder("o1"))
	assert.Equal(t, PreOrderConverted, p.Status)
	assert.Equal(t, "o1", p.ConvertedOrderID)

	// terminal states reject everything
	assert.ErrorIs(t, p.CanConvert(), ErrConflict)
	assert.ErrorIs(t, p.Cancel(), ErrConflict)
	assert.ErrorIs(t, p.MarkReadyToShip(), ErrConflict)
}

func TestPreOrderRecordsEvents(t *testing.T) {
	now := time.Now()
	c := openCampaign(t, now)
	p, err := NewPreOrder(c, "u1", 2, MustMoney("120"), now, 48*time.Hour)
	require.NoError(t, err)

	require.Len(t, p.GetEvents(), 1)
	assert.Equal(t, event.TypePreOrderCreated, p.GetEvents()[0].Type)
	p.ClearEvents()

	require.NoError(t, p.PayDeposit(p.DepositAmount))
	require.NoError(t, p.ConvertToOrder("o1"))
	require.Len(t, p.GetEvents(), 1)
	assert.Equal(t, event.TypePreOrderConverted, p.GetEvents()[0].Type)

	q, err := NewPreOrder(c, "u2", 1, MustMoney("120"), now, 48*time.Hour)
	require.NoError(t, err)
	q.ClearEvents()
	require.NoError(t, q.Cancel())
	require.Len(t, q.GetEvents(), 1)
	assert.Equal(t, event.TypePreOrderCancelled, q.GetEvents()[0].Type)
}

func TestPreOrderCampaignDeactivate(t *testing.T) {
	now := time.Now()
	c := openCampaign(t, now)
	require.True(t, c.Open(now))
	c.Deactivate()
	assert.False(t, c.Open(now))
	_, err := NewPreOrder(c, "u1", 1, MustMoney("120"), now, 48*time.Hour)
	assert.ErrorIs(t, err, ErrExpired)
}

func TestPreOrderCancelAndExpire(t *testing.T) {
	now := time.Now()
	c := openCampaign(t, now)

	p, err := NewPreOrder(c, "u1", 1, MustMoney("120"), now, 48*time.Hour)
	require.NoError(t, err)
	require.NoError(t, p.Cancel())
	assert.Equal(t, PreOrderCancelled, p.Status)

	q, err := NewPreOrder(c, "u2", 1, MustMoney("120"), now, 48*time.Hour)
	require.NoError(t, err)
	// not yet due
	assert.ErrorIs(t, q.Expire(now), ErrConflict)
	require.NoError(t, q.Expire(now.Add(72*time.Hour)))
	assert.Equal(t, PreOrderExpired, q.Status)
}
