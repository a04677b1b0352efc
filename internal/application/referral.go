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

package application

import (
	"context"
	"errors"

	"github.com/go-logr/logr"

	"github.com/bytedance/promokit/internal/domain"
	"github.com/bytedance/promokit/internal/infrastructure/repo"
)

type ReferralService struct {
	uow       *repo.UnitOfWork
	referrals *repo.ReferralRepo
	loyalty   *LoyaltyService
	outbox    *repo.OutboxRepo
	reward    int64 // points granted to the referrer per settled referral
	clock     domain.Clock
	logger    logr.Logger
}

func NewReferralService(uow *repo.UnitOfWork, referrals *repo.ReferralRepo, loyalty *LoyaltyService, outbox *repo.OutboxRepo, rewardPoints int64, clock domain.Clock, logger logr.Logger) *ReferralService {
	return &ReferralService{
		uow:       uow,
		referrals: referrals,
		loyalty:   loyalty,
		outbox:    outbox,
		reward:    rewardPoints,
		clock:     clock,
		logger:    logger.WithName("referral"),
	}
}

// GetOrCreateCode returns the user's shareable code, minting it on first
// request. A concurrent first request is settled by rereading the winner.
func (s *ReferralService) GetOrCreateCode(ctx context.Context, userID string) (*domain.ReferralCode, error) {
	code, err := s.referrals.GetCodeByUser(ctx, userID)
	if err == nil {
		return code, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	fresh, err := domain.NewReferralCode(userID)
	if err != nil {
		return nil, err
	}
	createErr := s.referrals.CreateCode(ctx, fresh)
	if createErr == nil {
		return fresh, nil
	}
	if errors.Is(createErr, domain.ErrConflict) {
		return s.referrals.GetCodeByUser(ctx, userID)
	}
	return nil, createErr
}

// Apply attributes a new user to a referrer. A user can be referred at most
// once, ever; the unique referred_user_id index turns a second apply into
// ErrConflict. Self-referral fails validation.
func (s *ReferralService) Apply(ctx context.Context, code, referredUserID string) (*domain.Referral, error) {
	rc, err := s.referrals.GetCode(ctx, code)
	if err != nil {
		return nil, err
	}
	ref, err := domain.NewReferral(rc, referredUserID, s.clock.Now())
	if err != nil {
		return nil, err
	}
	err = s.uow.Transaction(ctx, func(ctx context.Context) error {
		if err := s.referrals.CreateReferral(ctx, ref); err != nil {
			return err
		}
		return s.outbox.Drain(ctx, ref)
	})
	if err != nil {
		return nil, err
	}
	return ref, nil
}

func (s *ReferralService) ListByReferrer(ctx context.Context, userID string) ([]*domain.Referral, error) {
	return s.referrals.ListByReferrer(ctx, userID)
}

// Settle runs when the referred user completes their first order: the
// referral moves to rewarded and the referrer's points land, atomically.
// No pending referral for the user is a normal no-op; a referral already
// rewarded (event redelivery) is too.
func (s *ReferralService) Settle(ctx context.Context, referredUserID string) error {
	ref, err := s.referrals.GetByReferredUser(ctx, referredUserID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if ref.Status != domain.ReferralPending {
		return nil
	}
	now := s.clock.Now()
	if err := ref.Complete(now); err != nil {
		return nil
	}
	if err := ref.Reward(now, s.reward); err != nil {
		return nil
	}
	return s.uow.Transaction(ctx, func(ctx context.Context) error {
		// the CAS save is the reward-once guard under concurrent settles
		if err := s.referrals.Save(ctx, ref); err != nil {
			return err
		}
		if _, err := s.loyalty.Adjust(ctx, ref.ReferrerUserID, s.reward, "referral reward"); err != nil {
			return err
		}
		return s.outbox.Drain(ctx, ref)
	})
}
