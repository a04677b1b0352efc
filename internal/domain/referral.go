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
	"strings"
	"time"

	"github.com/rs/xid"

	"github.com/bytedance/promokit/internal/domain/event"
)

// ReferralCode is the single shareable code of a referring user.
type ReferralCode struct {
	BaseEntity

	UserID string
	Code   string
}

func NewReferralCode(userID string) (*ReferralCode, error) {
	if userID == "" {
		return nil, ErrValidation
	}
	return &ReferralCode{
		BaseEntity: NewBase(NewID()),
		UserID:     userID,
		Code:       "RF-" + strings.ToUpper(xid.New().String()),
	}, nil
}

type ReferralStatus string

const (
	ReferralPending   ReferralStatus = "pending"
	ReferralCompleted ReferralStatus = "completed"
	ReferralRewarded  ReferralStatus = "rewarded"
)

// Referral records a one-time attribution. A user may appear as the referred
// party at most once, ever; the referred_user_id column is unique.
type Referral struct {
	BaseEntity

	ReferrerUserID string
	ReferredUserID string
	Status         ReferralStatus
	AppliedAt      time.Time
	CompletedAt    *time.Time
	RewardedAt     *time.Time
}

func NewReferral(code *ReferralCode, referredUserID string, now time.Time) (*Referral, error) {
	if referredUserID == "" {
		return nil, ErrValidation
	}
	if code.UserID == referredUserID {
		// self-referral
		return nil, ErrValidation
	}
	r := &Referral{
		BaseEntity:     NewBase(NewID()),
		ReferrerUserID: code.UserID,
		ReferredUserID: referredUserID,
		Status:         ReferralPending,
		AppliedAt:      now,
	}
	r.AddEvent(&event.ReferralApplied{
		ReferralID:     r.GetID(),
		ReferrerUserID: r.ReferrerUserID,
		ReferredUserID: r.ReferredUserID,
	})
	return r, nil
}

// Complete marks the referred user's first completed order.
func (r *Referral) Complete(now time.Time) error {
	if r.Status != ReferralPending {
		return ErrConflict
	}
	r.Status = ReferralCompleted
	r.CompletedAt = &now
	return nil
}

// Reward marks the referrer's reward of the given points as issued.
// Rewarding twice is a conflict, which keeps reward issuance retry-safe.
func (r *Referral) Reward(now time.Time, points int64) error {
	if r.Status != ReferralCompleted {
		return ErrConflict
	}
	if points <= 0 {
		return ErrValidation
	}
	r.Status = ReferralRewarded
	r.RewardedAt = &now
	r.AddEvent(&event.ReferralRewarded{
		ReferralID:     r.GetID(),
		ReferrerUserID: r.ReferrerUserID,
		Points:         points,
	})
	return nil
}
