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

package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Database struct {
	DSN string `mapstructure:"dsn"`
}

type Redis struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type HTTP struct {
	Addr string `mapstructure:"addr"`
}

type Loyalty struct {
	// EarnRate is points earned per unit of currency spent.
	EarnRate float64 `mapstructure:"earn_rate"`
	// PointValue is the currency value of a single point at redemption.
	PointValue float64 `mapstructure:"point_value"`
	// MaxRedeemFraction caps the share of an order payable with points.
	MaxRedeemFraction float64 `mapstructure:"max_redeem_fraction"`
	// Tier thresholds, lifetime points required to reach each tier.
	TierSilverThreshold   int64 `mapstructure:"tier_silver_threshold"`
	TierGoldThreshold     int64 `mapstructure:"tier_gold_threshold"`
	TierPlatinumThreshold int64 `mapstructure:"tier_platinum_threshold"`
}

type Referral struct {
	RewardPoints int64 `mapstructure:"reward_points"`
}

type GiftCard struct {
	Validity time.Duration `mapstructure:"validity"`
}

type PreOrder struct {
	// PendingTTL is how long an unpaid pre-order may stay pending before
	// the sweeper expires it.
	PendingTTL time.Duration `mapstructure:"pending_ttl"`
}

type Sweeper struct {
	PreOrderCron string `mapstructure:"preorder_cron"`
	GiftCardCron string `mapstructure:"giftcard_cron"`
	BatchSize    int    `mapstructure:"batch_size"`
}

type Config struct {
	Database Database `mapstructure:"database"`
	Redis    Redis    `mapstructure:"redis"`
	HTTP     HTTP     `mapstructure:"http"`
	Loyalty  Loyalty  `mapstructure:"loyalty"`
	Referral Referral `mapstructure:"referral"`
	GiftCard GiftCard `mapstructure:"giftcard"`
	PreOrder PreOrder `mapstructure:"preorder"`
	Sweeper  Sweeper  `mapstructure:"sweeper"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database.dsn", "promokit:promokit@tcp(127.0.0.1:3306)/promokit?charset=utf8mb4&parseTime=True&loc=Local")
	v.SetDefault("redis.addr", "127.0.0.1:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("loyalty.earn_rate", 1.0)
	v.SetDefault("loyalty.point_value", 0.01)
	v.SetDefault("loyalty.max_redeem_fraction", 0.5)
	v.SetDefault("loyalty.tier_silver_threshold", 1000)
	v.SetDefault("loyalty.tier_gold_threshold", 5000)
	v.SetDefault("loyalty.tier_platinum_threshold", 20000)
	v.SetDefault("referral.reward_points", 500)
	v.SetDefault("giftcard.validity", 365*24*time.Hour)
	v.SetDefault("preorder.pending_ttl", 48*time.Hour)
	v.SetDefault("sweeper.preorder_cron", "@every 5m")
	v.SetDefault("sweeper.giftcard_cron", "@every 1h")
	v.SetDefault("sweeper.batch_size", 200)
}

// Load reads configuration from the given file (optional) and from the
// environment, PROMOKIT_ prefixed, e.g. PROMOKIT_DATABASE_DSN.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("promokit")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, nil
}
