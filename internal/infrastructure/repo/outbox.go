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

	"github.com/bytedance/promokit/internal/domain/event"
	"github.com/bytedance/promokit/internal/infrastructure/po"
)

// OutboxRepo stores domain events in the same transaction as the aggregate
// mutation. The dispatcher drains them after commit; an event of a rolled
// back transaction is never visible.
type OutboxRepo struct {
	uow *UnitOfWork
}

func NewOutboxRepo(uow *UnitOfWork) *OutboxRepo {
	return &OutboxRepo{uow: uow}
}

func (r *OutboxRepo) Append(ctx context.Context, events ...*event.Event) error {
	for _, e := range events {
		if err := r.uow.Conn(ctx).Create(po.EventToPO(e)).Error; err != nil {
			return translate(err)
		}
	}
	return nil
}

// EventCarrier is an aggregate holding events accumulated during a command.
type EventCarrier interface {
	GetEvents() []*event.Event
	ClearEvents()
}

// Drain moves the pending events of the given aggregates into the outbox,
// inside the same transaction as the aggregate save.
func (r *OutboxRepo) Drain(ctx context.Context, aggregates ...EventCarrier) error {
	for _, a := range aggregates {
		if err := r.Append(ctx, a.GetEvents()...); err != nil {
			return err
		}
		a.ClearEvents()
	}
	return nil
}

// FetchPending returns unsent events in creation order, skipping rows whose
// retry backoff has not elapsed.
func (r *OutboxRepo) FetchPending(ctx context.Context, now time.Time, limit int) ([]*po.EventPO, error) {
	var pos []*po.EventPO
	err := r.uow.Conn(ctx).
		Where("status = ? AND next_retry_at <= ?", po.EventStatusToSend, now).
		Order("id").
		Limit(limit).
		Find(&pos).Error
	return pos, translate(err)
}

func (r *OutboxRepo) MarkSent(ctx context.Context, id int64) error {
	return translate(r.uow.Conn(ctx).Model(&po.EventPO{}).
		Where("id = ?", id).
		Update("status", po.EventStatusSent).Error)
}

// MarkRetry schedules another attempt, or marks the event failed once the
// retry budget is spent.
func (r *OutboxRepo) MarkRetry(ctx context.Context, id int64, retryCount, maxRetry int, nextRetryAt time.Time) error {
	status := po.EventStatusToSend
	if retryCount >= maxRetry {
		status = po.EventStatusFailed
	}
	return translate(r.uow.Conn(ctx).Model(&po.EventPO{}).
		Where("id = ?", id).
		UpdateColumns(map[string]interface{}{
			"status":        status,
			"retry_count":   retryCount,
			"next_retry_at": nextRetryAt,
		}).Error)
}
