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

	"github.com/bytedance/promokit/internal/domain/event"
	"github.com/bytedance/promokit/internal/eventbus"
)

// RegisterHandlers wires the reactions to order.completed: loyalty accrual
// and referral settlement. Both are idempotent, so at-least-once delivery
// from the outbox is safe.
func RegisterHandlers(bus *eventbus.Bus, loyalty *LoyaltyService, referrals *ReferralService) {
	bus.Register(event.TypeOrderCompleted, func(ctx context.Context, evt *event.Event) error {
		var payload event.OrderCompleted
		if err := evt.Decode(&payload); err != nil {
			return err
		}
		_, err := loyalty.Accrue(ctx, payload.UserID, payload.OrderID, payload.OrderAmount)
		return err
	})
	bus.Register(event.TypeOrderCompleted, func(ctx context.Context, evt *event.Event) error {
		var payload event.OrderCompleted
		if err := evt.Decode(&payload); err != nil {
			return err
		}
		return referrals.Settle(ctx, payload.UserID)
	})
}
