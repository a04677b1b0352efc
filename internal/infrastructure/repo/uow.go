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

package repo

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/bytedance/promokit/internal/domain"
)

var ErrInvalidDB = fmt.Errorf("invalid db")

// The transaction travels in the context so that every repository touched by
// one command reads and writes through the same *gorm.DB. Multi-aggregate
// operations commit or roll back together.
type contextKey struct{}

type UnitOfWork struct {
	db *gorm.DB
}

func NewUnitOfWork(db *gorm.DB) *UnitOfWork {
	return &UnitOfWork{db: db}
}

// Conn resolves the active transaction from ctx, falling back to the shared
// handle for reads outside any transaction.
func (u *UnitOfWork) Conn(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(contextKey{}).(*gorm.DB); ok {
		return tx
	}
	return u.db.WithContext(ctx)
}

// Transaction runs fn inside a database transaction. A nested call joins the
// transaction already in ctx. Any error or panic rolls everything back.
func (u *UnitOfWork) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if u.db == nil {
		return ErrInvalidDB
	}
	if _, ok := ctx.Value(contextKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}

	tx := u.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return fmt.Errorf("start transaction failed, err=%s", tx.Error)
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	if err := fn(context.WithValue(ctx, contextKey{}, tx)); err != nil {
		if rbErr := tx.Rollback().Error; rbErr != nil {
			return errors.Join(err, rbErr)
		}
		return err
	}
	return tx.Commit().Error
}

// translate maps storage errors to the domain taxonomy; anything else is an
// infrastructure failure and passes through.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return domain.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return domain.ErrConflict
	default:
		return err
	}
}
