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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bytedance/promokit/internal/domain/event"
)

func TestReferralLifecycle(t *testing.T) {
	code, err := NewReferralCode("referrer")
	require.NoError(t, err)
	assert.Regexp(t, `^RF-[A-Z0-9]+$`, code.Code)

	_, err = NewReferral(code, "referrer", time.Now())
	assert.ErrorIs(t, err, ErrValidation, "self-referral")

	now := time.Now()
	ref, err := NewReferral(code, "newbie", now)
	require.NoError(t, err)
	assert.Equal(t, ReferralPending, ref.Status)
	require.Len(t, ref.GetEvents(), 1)
	assert.Equal(t, event.TypeReferralApplied, ref.GetEvents()[0].Type)
	ref.ClearEvents()

	// reward before completion is a conflict
	assert.ErrorIs(t, ref.Reward(now, 500), ErrConflict)

	require.NoError(t, ref.Complete(now))
	assert.ErrorIs(t, ref.Complete(now), ErrConflict)

	require.NoError(t, ref.Reward(now, 500))
	assert.Equal(t, ReferralRewarded, ref.Status)
	assert.ErrorIs(t, ref.Reward(now, 500), ErrConflict)

	require.Len(t, ref.GetEvents(), 1)
	assert.Equal(t, event.TypeReferralRewarded, ref.GetEvents()[0].Type)
}
