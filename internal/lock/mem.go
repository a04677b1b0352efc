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

package lock

import (
	"context"
	"sync"
)

// MemLock serializes lock keys within one process. Single-node deployments
// and tests use it in place of the redis lock.
type MemLock struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewMemLock() *MemLock {
	return &MemLock{locks: map[string]*sync.Mutex{}}
}

func (l *MemLock) Lock(ctx context.Context, key string) (keyLock interface{}, err error) {
	l.mu.Lock()
	m, ok := l.locks[key]
	if !ok {
		m = &sync.Mutex{}
		l.locks[key] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m, nil
}

func (l *MemLock) TryLock(ctx context.Context, key string) (keyLock interface{}, err error) {
	l.mu.Lock()
	m, ok := l.locks[key]
	if !ok {
		m = &sync.Mutex{}
		l.locks[key] = m
	}
	l.mu.Unlock()

	if !m.TryLock() {
		return nil, ErrNotObtained
	}
	return m, nil
}

func (l *MemLock) UnLock(ctx context.Context, keyLock interface{}) error {
	keyLock.(*sync.Mutex).Unlock()
	return nil
}
