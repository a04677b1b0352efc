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
	"errors"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
)

type RedisLock struct {
	ttl time.Duration
	cli *redislock.Client
}

func NewRedisLock(cli *redis.Client, ttl time.Duration) *RedisLock {
	return &RedisLock{cli: redislock.New(cli), ttl: ttl}
}

func (r *RedisLock) Lock(ctx context.Context, key string) (keyLock interface{}, err error) {
	l, err := r.cli.Obtain(ctx, key, r.ttl, &redislock.Options{
		// fixed-interval retry, at most 30 attempts
		RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(100*time.Millisecond), 30),
	})
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, ErrNotObtained
	}
	return l, err
}

func (r *RedisLock) UnLock(ctx context.Context, keyLock interface{}) error {
	l := keyLock.(*redislock.Lock)
	return l.Release(ctx)
}

// TryLock obtains the lock without retrying, for the sweep single-runner
// case where contending rounds should be skipped, not queued.
func (r *RedisLock) TryLock(ctx context.Context, key string) (keyLock interface{}, err error) {
	l, err := r.cli.Obtain(ctx, key, r.ttl, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, ErrNotObtained
	}
	return l, err
}
