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

// Package stdr provides a logr.Logger backed by the standard library log
// package, for components that have no injected logger.
package stdr

import (
	stdlog "log"
	"os"

	"github.com/go-logr/logr"
	logrstdr "github.com/go-logr/stdr"
)

// NewStdr returns a named stderr logger with file:line call sites.
func NewStdr(name string) logr.Logger {
	return logrstdr.New(stdlog.New(os.Stderr, "", stdlog.LstdFlags|stdlog.Lshortfile)).WithName(name)
}
