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

import "github.com/shopspring/decimal"

// Money is an exact decimal amount. All monetary arithmetic in the engine
// goes through decimal, never float64.
type Money = decimal.Decimal

var Zero = decimal.Zero

var hundred = decimal.NewFromInt(100)

func NewMoney(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrValidation
	}
	return d, nil
}

func MustMoney(s string) Money {
	return decimal.RequireFromString(s)
}

// PercentOf returns pct% of amount rounded to 2 decimal places.
func PercentOf(amount, pct Money) Money {
	return amount.Mul(pct).Div(hundred).Round(2)
}

func intToDecimal(n int64) Money {
	return decimal.NewFromInt(n)
}

func MinMoney(a, b Money) Money {
	if a.LessThan(b) {
		return a
	}
	return b
}
