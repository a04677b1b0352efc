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
	"github.com/rs/xid"

	"github.com/bytedance/promokit/internal/domain/event"
)

// BaseEntity carries identity, the optimistic concurrency token and the
// pending domain events of an aggregate. Events accumulate on the entity
// during a command and are persisted to the outbox in the same transaction
// as the mutation; they are never dispatched before commit.
type BaseEntity struct {
	id      string
	version int64
	events  []*event.Event
}

func NewBase(id string) BaseEntity {
	return BaseEntity{id: id}
}

func NewID() string {
	return xid.New().String()
}

func (e *BaseEntity) SetID(id string) {
	e.id = id
}

func (e *BaseEntity) GetID() string {
	return e.id
}

// GetVersion returns the version token loaded from storage. A mismatch on
// save means a concurrent modification and surfaces as ErrConflict.
func (e *BaseEntity) GetVersion() int64 {
	return e.version
}

func (e *BaseEntity) SetVersion(v int64) {
	e.version = v
}

// AddEvent records a domain event for post-commit dispatch. The event must
// be serializable, otherwise this panics.
func (e *BaseEntity) AddEvent(evt event.IEvent) {
	e.events = append(e.events, event.New(evt))
}

func (e *BaseEntity) GetEvents() []*event.Event {
	return e.events
}

func (e *BaseEntity) ClearEvents() {
	e.events = nil
}
