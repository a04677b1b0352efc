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

import "context"

// ILock is a distributed mutex taken around multi-aggregate command
// sections and sweep runs.
type ILock interface {
	Lock(ctx context.Context, key string) (keyLock interface{}, err error)
	UnLock(ctx context.Context, keyLock interface{}) error
}

// TryLocker is an ILock that can also decline immediately instead of
// queueing when the key is held.
type TryLocker interface {
	ILock
	TryLock(ctx context.Context, key string) (keyLock interface{}, err error)
}

// ErrNotObtained reports that the lock is held elsewhere; sweeps treat it as
// "another runner is active" and skip the round.
type notObtainedError struct{}

func (notObtainedError) Error() string { return "lock not obtained" }

var ErrNotObtained error = notObtainedError{}
