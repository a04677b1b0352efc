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
	"fmt"
	"time"

	"github.com/go-logr/logr"

	"github.com/bytedance/promokit/internal/domain"
	"github.com/bytedance/promokit/internal/infrastructure/repo"
	"github.com/bytedance/promokit/internal/lock"
	"github.com/bytedance/promokit/internal/notify"
)

// OrderPlacer creates the real order when a pre-order converts. The order
// system lives outside this engine.
type OrderPlacer interface {
	PlaceOrder(ctx context.Context, p *domain.PreOrder) (orderID string, err error)
}

type PreOrderService struct {
	uow       *repo.UnitOfWork
	preorders *repo.PreOrderRepo
	outbox    *repo.OutboxRepo
	locker    lock.ILock
	orders    OrderPlacer
	notifier  *notify.Notifier
	clock     domain.Clock
	ttl       time.Duration
	logger    logr.Logger
}

func NewPreOrderService(uow *repo.UnitOfWork, preorders *repo.PreOrderRepo, outbox *repo.OutboxRepo, locker lock.ILock, orders OrderPlacer, notifier *notify.Notifier, clock domain.Clock, pendingTTL time.Duration, logger logr.Logger) *PreOrderService {
	return &PreOrderService{
		uow:       uow,
		preorders: preorders,
		outbox:    outbox,
		locker:    locker,
		orders:    orders,
		notifier:  notifier,
		clock:     clock,
		ttl:       pendingTTL,
		logger:    logger.WithName("preorder"),
	}
}

func (s *PreOrderService) CreateCampaign(ctx context.Context, spec domain.PreOrderCampaignSpec) (*domain.PreOrderCampaign, error) {
	c, err := domain.NewPreOrderCampaign(spec)
	if err != nil {
		return nil, err
	}
	if err := s.preorders.CreateCampaign(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *PreOrderService) GetCampaign(ctx context.Context, id string) (*domain.PreOrderCampaign, error) {
	return s.preorders.GetCampaign(ctx, id)
}

func (s *PreOrderService) ListOpenCampaigns(ctx context.Context) ([]*domain.PreOrderCampaign, error) {
	return s.preorders.ListOpenCampaigns(ctx, s.clock.Now())
}

func (s *PreOrderService) DeactivateCampaign(ctx context.Context, id string) error {
	c, err := s.preorders.GetCampaign(ctx, id)
	if err != nil {
		return err
	}
	c.Deactivate()
	return s.preorders.SaveCampaign(ctx, c)
}

type CreatePreOrderCmd struct {
	CampaignID   string
	UserID       string
	Quantity     int
	ProductPrice domain.Money
	UserEmail    string // optional, for the confirmation
}

// Create places a pre-order against an open campaign. Capacity is granted by
// a conditional update in the same transaction as the insert, so a full
// campaign can never admit one order too many.
func (s *PreOrderService) Create(ctx context.Context, cmd CreatePreOrderCmd) (*domain.PreOrder, error) {
	keyLock, err := s.locker.Lock(ctx, "promokit:preorder:campaign:"+cmd.CampaignID)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := s.locker.UnLock(ctx, keyLock); err != nil {
			s.logger.Error(err, "release campaign lock failed", "campaign_id", cmd.CampaignID)
		}
	}()

	campaign, err := s.preorders.GetCampaign(ctx, cmd.CampaignID)
	if err != nil {
		return nil, err
	}
	order, err := domain.NewPreOrder(campaign, cmd.UserID, cmd.Quantity, cmd.ProductPrice, s.clock.Now(), s.ttl)
	if err != nil {
		return nil, err
	}

	err = s.uow.Transaction(ctx, func(ctx context.Context) error {
		if err := s.preorders.ReserveCapacity(ctx, campaign.GetID(), cmd.Quantity); err != nil {
			return err
		}
		if err := s.preorders.Create(ctx, order); err != nil {
			return err
		}
		return s.outbox.Drain(ctx, order)
	})
	if err != nil {
		return nil, err
	}

	if cmd.UserEmail != "" {
		s.notifier.Send(cmd.UserEmail, "Pre-order confirmed",
			fmt.Sprintf("Your pre-order for product %s is in. Total %s, deposit due %s.",
				order.ProductID, order.Price.StringFixed(2), order.DepositAmount.StringFixed(2)))
	}
	return order, nil
}

func (s *PreOrderService) Get(ctx context.Context, id string) (*domain.PreOrder, error) {
	return s.preorders.Get(ctx, id)
}

func (s *PreOrderService) ListByUser(ctx context.Context, userID string) ([]*domain.PreOrder, error) {
	return s.preorders.ListByUser(ctx, userID)
}

// PayDeposit records the full deposit payment. Partial deposits are not
// accepted.
func (s *PreOrderService) PayDeposit(ctx context.Context, id string, amount domain.Money) (*domain.PreOrder, error) {
	order, err := s.preorders.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := order.PayDeposit(amount); err != nil {
		return nil, err
	}
	if err := s.preorders.Save(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

func (s *PreOrderService) MarkReadyToShip(ctx context.Context, id string) (*domain.PreOrder, error) {
	order, err := s.preorders.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := order.MarkReadyToShip(); err != nil {
		return nil, err
	}
	if err := s.preorders.Save(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

// ConvertToOrder turns the pre-order into a real order at its locked price.
// Convertibility is checked before the external order is placed, so a retry
// of an already-converted pre-order fails with ErrConflict without placing a
// second order. The order id lands on the pre-order in the same transaction
// as the status change.
func (s *PreOrderService) ConvertToOrder(ctx context.Context, id string) (*domain.PreOrder, error) {
	order, err := s.preorders.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := order.CanConvert(); err != nil {
		return nil, err
	}
	orderID, err := s.orders.PlaceOrder(ctx, order)
	if err != nil {
		return nil, err
	}
	if err := order.ConvertToOrder(orderID); err != nil {
		return nil, err
	}
	err = s.uow.Transaction(ctx, func(ctx context.Context) error {
		if err := s.preorders.Save(ctx, order); err != nil {
			return err
		}
		return s.outbox.Drain(ctx, order)
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// Cancel releases the campaign slots the pre-order held.
func (s *PreOrderService) Cancel(ctx context.Context, id string) (*domain.PreOrder, error) {
	order, err := s.preorders.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := order.Cancel(); err != nil {
		return nil, err
	}
	err = s.uow.Transaction(ctx, func(ctx context.Context) error {
		if err := s.preorders.Save(ctx, order); err != nil {
			return err
		}
		if err := s.preorders.ReleaseCapacity(ctx, order.CampaignID, order.Quantity); err != nil {
			return err
		}
		return s.outbox.Drain(ctx, order)
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// ProcessExpired sweeps pending pre-orders past their payment deadline, one
// transaction per order so a single failure never stalls the batch. Expiry
// releases campaign capacity, same as a cancel.
func (s *PreOrderService) ProcessExpired(ctx context.Context, batch int) (int, error) {
	now := s.clock.Now()
	stale, err := s.preorders.ListExpiredPending(ctx, now, batch)
	if err != nil {
		return 0, err
	}
	expired := 0
	for _, order := range stale {
		if err := order.Expire(now); err != nil {
			continue
		}
		err := s.uow.Transaction(ctx, func(ctx context.Context) error {
			if err := s.preorders.Save(ctx, order); err != nil {
				return err
			}
			if err := s.preorders.ReleaseCapacity(ctx, order.CampaignID, order.Quantity); err != nil {
				return err
			}
			return s.outbox.Drain(ctx, order)
		})
		if err != nil {
			s.logger.Error(err, "expire pre-order failed", "preorder_id", order.GetID())
			continue
		}
		expired++
	}
	return expired, nil
}
