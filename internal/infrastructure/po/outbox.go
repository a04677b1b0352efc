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

package po

import (
	"time"

	"github.com/bytedance/promokit/internal/domain/event"
)

type EventStatus int8

const (
	EventStatusToSend EventStatus = 1
	EventStatusSent   EventStatus = 2
	EventStatusFailed EventStatus = 3
)

// EventPO is the outbox row. It is inserted in the same transaction as the
// aggregate mutation and dispatched by a background poller afterwards.
type EventPO struct {
	ID             int64       `gorm:"primaryKey;autoIncrement"`
	EventID        string      `gorm:"size:20;index"`
	Type           string      `gorm:"size:64;index"`
	Sender         string      `gorm:"size:64"`
	Payload        []byte      `gorm:"type:text"`
	Status         EventStatus `gorm:"index"`
	RetryCount     int
	NextRetryAt    time.Time `gorm:"index"`
	EventCreatedAt time.Time
	CreatedAt      time.Time `gorm:"index"`
	UpdatedAt      time.Time
}

func (p *EventPO) GetID() string {
	return p.EventID
}

func (p *EventPO) TableName() string {
	return "promo_domain_event"
}

func (p *EventPO) ToEvent() *event.Event {
	return &event.Event{
		ID:        p.EventID,
		Type:      event.Type(p.Type),
		Sender:    p.Sender,
		Payload:   p.Payload,
		CreatedAt: p.EventCreatedAt,
	}
}

func EventToPO(e *event.Event) *EventPO {
	return &EventPO{
		EventID:        e.ID,
		Type:           string(e.Type),
		Sender:         e.Sender,
		Payload:        e.Payload,
		Status:         EventStatusToSend,
		NextRetryAt:    e.CreatedAt,
		EventCreatedAt: e.CreatedAt,
	}
}
