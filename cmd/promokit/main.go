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

package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/xid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/bytedance/promokit/internal/api"
	"github.com/bytedance/promokit/internal/application"
	"github.com/bytedance/promokit/internal/cache"
	"github.com/bytedance/promokit/internal/config"
	"github.com/bytedance/promokit/internal/domain"
	"github.com/bytedance/promokit/internal/eventbus"
	"github.com/bytedance/promokit/internal/infrastructure/po"
	"github.com/bytedance/promokit/internal/infrastructure/repo"
	"github.com/bytedance/promokit/internal/lock"
	"github.com/bytedance/promokit/internal/notify"
	"github.com/bytedance/promokit/internal/sweeper"
	"github.com/bytedance/promokit/logger/stdr"
)

// localOrderPlacer stamps converted pre-orders with a generated order id.
// Deployments with a real order system replace it through the
// application.OrderPlacer interface.
type localOrderPlacer struct{}

func (localOrderPlacer) PlaceOrder(ctx context.Context, p *domain.PreOrder) (string, error) {
	return "ord_" + xid.New().String(), nil
}

func main() {
	logger := stdr.NewStdr("promokit")

	var cfgPath string
	flag.StringVar(&cfgPath, "config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		logger.Error(err, "load config failed")
		os.Exit(1)
	}

	db, err := gorm.Open(mysql.Open(cfg.Database.DSN), &gorm.Config{TranslateError: true})
	if err != nil {
		logger.Error(err, "open database failed")
		os.Exit(1)
	}
	if err := db.AutoMigrate(po.Tables()...); err != nil {
		logger.Error(err, "migrate failed")
		os.Exit(1)
	}

	rds := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	uow := repo.NewUnitOfWork(db)
	couponRepo := repo.NewCouponRepo(uow)
	saleRepo := repo.NewFlashSaleRepo(uow)
	cardRepo := repo.NewGiftCardRepo(uow)
	loyaltyRepo := repo.NewLoyaltyRepo(uow)
	preorderRepo := repo.NewPreOrderRepo(uow)
	referralRepo := repo.NewReferralRepo(uow)
	outbox := repo.NewOutboxRepo(uow)

	locker := lock.NewRedisLock(rds, 30*time.Second)
	saleCache := cache.NewFlashSaleCache(rds, 30*time.Second)
	clock := domain.SystemClock{}
	notifier := notify.New(notify.LogSender{Logger: logger}, logger)

	bus := eventbus.New(outbox, logger)

	loyaltyCfg := application.LoyaltyConfig{
		EarnRate:          decimal.NewFromFloat(cfg.Loyalty.EarnRate),
		PointValue:        decimal.NewFromFloat(cfg.Loyalty.PointValue),
		MaxRedeemFraction: decimal.NewFromFloat(cfg.Loyalty.MaxRedeemFraction),
		Tiers: []domain.LoyaltyTier{
			{Name: "silver", Threshold: cfg.Loyalty.TierSilverThreshold},
			{Name: "gold", Threshold: cfg.Loyalty.TierGoldThreshold},
			{Name: "platinum", Threshold: cfg.Loyalty.TierPlatinumThreshold},
		},
	}

	couponSvc := application.NewCouponService(uow, couponRepo, outbox, clock, logger)
	saleSvc := application.NewFlashSaleService(uow, saleRepo, outbox, saleCache, clock, logger)
	cardSvc := application.NewGiftCardService(uow, cardRepo, outbox, notifier, clock, cfg.GiftCard.Validity, logger)
	loyaltySvc := application.NewLoyaltyService(uow, loyaltyRepo, outbox, loyaltyCfg, clock, logger)
	preorderSvc := application.NewPreOrderService(uow, preorderRepo, outbox, locker, localOrderPlacer{}, notifier, clock, cfg.PreOrder.PendingTTL, logger)
	referralSvc := application.NewReferralService(uow, referralRepo, loyaltySvc, outbox, cfg.Referral.RewardPoints, clock, logger)
	checkoutSvc := application.NewCheckoutService(couponSvc, loyaltySvc, cardSvc, bus, logger)

	application.RegisterHandlers(bus, loyaltySvc, referralSvc)
	bus.Start(ctx)

	sweep := sweeper.New(locker, preorderSvc, cardSvc, sweeper.Options{
		PreOrderCron: cfg.Sweeper.PreOrderCron,
		GiftCardCron: cfg.Sweeper.GiftCardCron,
		BatchSize:    cfg.Sweeper.BatchSize,
	}, logger)
	if err := sweep.Start(ctx); err != nil {
		logger.Error(err, "start sweeper failed")
		os.Exit(1)
	}

	server := api.NewServer(couponSvc, saleSvc, cardSvc, loyaltySvc, preorderSvc, referralSvc, checkoutSvc, logger)
	httpServer := &http.Server{
		Addr:    cfg.HTTP.Addr,
		Handler: server.Router(),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error(err, "shutdown failed")
		}
	}()

	logger.Info("listening", "addr", cfg.HTTP.Addr)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error(err, "serve failed")
		os.Exit(1)
	}
}
