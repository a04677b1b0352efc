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
	"errors"
	"fmt"
	"time"

	"github.com/avast/retry-go"
	"github.com/go-logr/logr"

	"github.com/bytedance/promokit/internal/domain"
	"github.com/bytedance/promokit/internal/domain/event"
	"github.com/bytedance/promokit/internal/infrastructure/repo"
	"github.com/bytedance/promokit/internal/notify"
)

type GiftCardService struct {
	uow      *repo.UnitOfWork
	cards    *repo.GiftCardRepo
	outbox   *repo.OutboxRepo
	notifier *notify.Notifier
	clock    domain.Clock
	validity time.Duration
	logger   logr.Logger
}

func NewGiftCardService(uow *repo.UnitOfWork, cards *repo.GiftCardRepo, outbox *repo.OutboxRepo, notifier *notify.Notifier, clock domain.Clock, validity time.Duration, logger logr.Logger) *GiftCardService {
	return &GiftCardService{
		uow:      uow,
		cards:    cards,
		outbox:   outbox,
		notifier: notifier,
		clock:    clock,
		validity: validity,
		logger:   logger.WithName("giftcard"),
	}
}

type PurchaseGiftCardCmd struct {
	PurchasedBy    string
	Amount         domain.Money
	AssignedTo     string // optional, a user receiving the card as a gift
	RecipientEmail string // optional, where to announce the gift
}

// Purchase issues a new card. The recipient notification is fire-and-forget;
// the card exists whether or not the email goes out.
func (s *GiftCardService) Purchase(ctx context.Context, cmd PurchaseGiftCardCmd) (*domain.GiftCard, error) {
	card, err := domain.NewGiftCard(cmd.PurchasedBy, cmd.Amount, cmd.AssignedTo, s.clock.Now(), s.validity)
	if err != nil {
		return nil, err
	}
	err = s.uow.Transaction(ctx, func(ctx context.Context) error {
		if err := s.cards.Create(ctx, card); err != nil {
			return err
		}
		return s.outbox.Drain(ctx, card)
	})
	if err != nil {
		return nil, err
	}
	if cmd.RecipientEmail != "" {
		s.notifier.Send(cmd.RecipientEmail, "You received a gift card",
			fmt.Sprintf("A gift card of %s is waiting for you. Card code: %s", card.InitialValue.StringFixed(2), card.Code))
	}
	return card, nil
}

func (s *GiftCardService) GetByCode(ctx context.Context, code string) (*domain.GiftCard, error) {
	return s.cards.GetByCode(ctx, code)
}

func (s *GiftCardService) ListByUser(ctx context.Context, userID string) ([]*domain.GiftCard, error) {
	return s.cards.ListByUser(ctx, userID)
}

// CalculateDiscount quotes what the card could cover, without spending it.
func (s *GiftCardService) CalculateDiscount(ctx context.Context, code string, orderAmount domain.Money) (domain.Money, error) {
	card, err := s.cards.GetByCode(ctx, code)
	if err != nil {
		return domain.Zero, err
	}
	return card.CalculateDiscount(s.clock.Now(), orderAmount), nil
}

// Redeem charges the card for an order and returns the amount actually
// applied, which may be less than requested when the balance runs short.
// Retrying with the same order is a no-op: the ledger row per (card, order)
// is the idempotency marker.
func (s *GiftCardService) Redeem(ctx context.Context, code, userID, orderID string, requested domain.Money) (domain.Money, error) {
	var applied domain.Money
	err := retry.Do(
		func() error {
			return s.uow.Transaction(ctx, func(ctx context.Context) error {
				card, err := s.cards.GetByCode(ctx, code)
				if err != nil {
					return err
				}
				if orderID != "" {
					charged, err := s.cards.HasOrderTransaction(ctx, card.GetID(), orderID)
					if err != nil {
						return err
					}
					if charged {
						applied = domain.Zero
						return nil
					}
				}
				applied, err = card.Redeem(s.clock.Now(), requested)
				if err != nil {
					return err
				}
				if err := s.cards.Save(ctx, card); err != nil {
					return err
				}
				txn := domain.NewGiftCardTransaction(card.GetID(), userID, orderID, applied, s.clock.Now())
				if err := s.cards.AppendTransaction(ctx, txn); err != nil {
					return err
				}
				return s.outbox.Append(ctx, event.New(&event.GiftCardRedeemed{
					CardID:  card.GetID(),
					UserID:  userID,
					OrderID: orderID,
					Applied: applied,
				}))
			})
		},
		retry.Attempts(3),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool { return errors.Is(err, domain.ErrConflict) }),
	)
	if err != nil {
		return domain.Zero, err
	}
	return applied, nil
}

// Assign hands a purchased card to its recipient. Apply-once.
func (s *GiftCardService) Assign(ctx context.Context, code, userID string) (*domain.GiftCard, error) {
	card, err := s.cards.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if err := card.AssignTo(userID); err != nil {
		return nil, err
	}
	if err := s.cards.Save(ctx, card); err != nil {
		return nil, err
	}
	return card, nil
}

// ExpireDue transitions overdue cards, one at a time so a single bad row
// cannot poison the batch. Returns how many cards were expired.
func (s *GiftCardService) ExpireDue(ctx context.Context, batch int) (int, error) {
	now := s.clock.Now()
	due, err := s.cards.ListDue(ctx, now, batch)
	if err != nil {
		return 0, err
	}
	expired := 0
	for _, card := range due {
		if err := card.Expire(now); err != nil {
			continue
		}
		if err := s.cards.Save(ctx, card); err != nil {
			// a concurrent redeem beat the sweep; the next round re-reads
			s.logger.Error(err, "expire gift card failed", "card_id", card.GetID())
			continue
		}
		expired++
	}
	return expired, nil
}
