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

// Package sweeper runs the periodic maintenance jobs: expiring stale
// pre-orders and lapsed gift cards. Each job takes a distributed try-lock
// first so a multi-node deployment runs a single sweep at a time.
package sweeper

import (
	"context"

	"github.com/go-logr/logr"
	"github.com/robfig/cron/v3"

	"github.com/bytedance/promokit/internal/lock"
)

const (
	preOrderLockKey = "promokit:sweep:preorder"
	giftCardLockKey = "promokit:sweep:giftcard"
)

// PreOrderExpirer expires pending pre-orders past their payment deadline.
type PreOrderExpirer interface {
	ProcessExpired(ctx context.Context, batch int) (int, error)
}

// GiftCardExpirer expires gift cards past their validity window.
type GiftCardExpirer interface {
	ExpireDue(ctx context.Context, batch int) (int, error)
}

type Options struct {
	PreOrderCron string
	GiftCardCron string
	BatchSize    int
}

type Sweeper struct {
	cron      *cron.Cron
	locker    lock.TryLocker
	preOrders PreOrderExpirer
	giftCards GiftCardExpirer
	opts      Options
	logger    logr.Logger
}

func New(locker lock.TryLocker, preOrders PreOrderExpirer, giftCards GiftCardExpirer, opts Options, logger logr.Logger) *Sweeper {
	if opts.PreOrderCron == "" {
		opts.PreOrderCron = "@every 5m"
	}
	if opts.GiftCardCron == "" {
		opts.GiftCardCron = "@every 1h"
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = 200
	}
	return &Sweeper{
		cron:      cron.New(),
		locker:    locker,
		preOrders: preOrders,
		giftCards: giftCards,
		opts:      opts,
		logger:    logger.WithName("sweeper"),
	}
}

func (s *Sweeper) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc(s.opts.PreOrderCron, func() {
		s.runLocked(ctx, preOrderLockKey, "preorder_expiry", s.sweepPreOrders)
	}); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc(s.opts.GiftCardCron, func() {
		s.runLocked(ctx, giftCardLockKey, "giftcard_expiry", s.sweepGiftCards)
	}); err != nil {
		return err
	}
	s.cron.Start()
	go func() {
		<-ctx.Done()
		s.cron.Stop()
	}()
	return nil
}

func (s *Sweeper) runLocked(ctx context.Context, key, name string, fn func(ctx context.Context) (int, error)) {
	keyLock, err := s.locker.TryLock(ctx, key)
	if err != nil {
		if err == lock.ErrNotObtained {
			return // another node holds the sweep
		}
		s.logger.Error(err, "acquire sweep lock failed", "job", name)
		return
	}
	defer func() {
		if err := s.locker.UnLock(ctx, keyLock); err != nil {
			s.logger.Error(err, "release sweep lock failed", "job", name)
		}
	}()

	n, err := fn(ctx)
	if err != nil {
		s.logger.Error(err, "sweep failed", "job", name, "processed", n)
		return
	}
	if n > 0 {
		s.logger.Info("sweep done", "job", name, "processed", n)
	}
}

func (s *Sweeper) sweepPreOrders(ctx context.Context) (int, error) {
	return s.preOrders.ProcessExpired(ctx, s.opts.BatchSize)
}

func (s *Sweeper) sweepGiftCards(ctx context.Context) (int, error) {
	return s.giftCards.ExpireDue(ctx, s.opts.BatchSize)
}
