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

import "fmt"

// Business-rule violations are expected outcomes. Callers match them with
// errors.Is and translate to a transport status; infrastructure errors pass
// through unwrapped.
var (
	ErrNotFound            = fmt.Errorf("not found")
	ErrExpired             = fmt.Errorf("expired or not yet valid")
	ErrInsufficientStock   = fmt.Errorf("insufficient stock")
	ErrInsufficientBalance = fmt.Errorf("insufficient balance")
	ErrInsufficientPoints  = fmt.Errorf("insufficient points")
	ErrLimitExceeded       = fmt.Errorf("usage limit exceeded")
	ErrConflict            = fmt.Errorf("conflict")
	ErrValidation          = fmt.Errorf("validation failed")

	ErrMinimumNotMet = fmt.Errorf("minimum purchase amount not met: %w", ErrValidation)
	ErrCampaignFull  = fmt.Errorf("campaign full: %w", ErrInsufficientStock)
)
