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

package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const activeSalesKey = "promokit:flashsale:active"

// FlashSaleCache is a short-TTL read-through cache for the live-sale
// listing, the single hottest read of the engine. A miss or a redis outage
// degrades to the database, never to an error.
type FlashSaleCache struct {
	cli *redis.Client
	ttl time.Duration
}

func NewFlashSaleCache(cli *redis.Client, ttl time.Duration) *FlashSaleCache {
	return &FlashSaleCache{cli: cli, ttl: ttl}
}

// GetActive loads the cached listing into dest. ok is false on miss.
func (c *FlashSaleCache) GetActive(ctx context.Context, dest interface{}) (ok bool, err error) {
	if c == nil || c.cli == nil {
		return false, nil
	}
	bs, err := c.cli.Get(ctx, activeSalesKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(bs, dest); err != nil {
		return false, err
	}
	return true, nil
}

func (c *FlashSaleCache) SetActive(ctx context.Context, val interface{}) error {
	if c == nil || c.cli == nil {
		return nil
	}
	bs, err := json.Marshal(val)
	if err != nil {
		return err
	}
	return c.cli.Set(ctx, activeSalesKey, bs, c.ttl).Err()
}

// Invalidate drops the listing after any admin write or reservation.
func (c *FlashSaleCache) Invalidate(ctx context.Context) error {
	if c == nil || c.cli == nil {
		return nil
	}
	return c.cli.Del(ctx, activeSalesKey).Err()
}
