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

package event

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/xid"
)

type Type string

type IEvent interface {
	GetType() Type     // event type
	GetSender() string // id of the entity that emitted the event
}

// Event is the serialized envelope persisted to the outbox and handed to
// handlers after a successful commit.
type Event struct {
	ID        string
	Type      Type
	Sender    string
	Payload   []byte
	CreatedAt time.Time
}

// New wraps a typed event. The payload must be serializable, a marshal
// failure here is a programming error and panics.
func New(evt IEvent) *Event {
	bs, err := json.Marshal(evt)
	if err != nil {
		panic(fmt.Sprintf("event marshal failed, err=%s", err))
	}
	return &Event{
		ID:        xid.New().String(),
		Type:      evt.GetType(),
		Sender:    evt.GetSender(),
		Payload:   bs,
		CreatedAt: time.Now(),
	}
}

// Decode unmarshals the payload into a typed event struct.
func (e *Event) Decode(dest interface{}) error {
	return json.Unmarshal(e.Payload, dest)
}
