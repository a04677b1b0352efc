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

package notify

import (
	"context"

	"github.com/go-logr/logr"
)

// EmailSender is the external notification collaborator. Sending is
// fire-and-forget: a failure is logged and never blocks or rolls back the
// domain transaction.
type EmailSender interface {
	SendEmail(ctx context.Context, to, subject, body string) error
}

// Notifier wraps a sender with the fire-and-forget policy.
type Notifier struct {
	sender EmailSender
	logger logr.Logger
}

func New(sender EmailSender, logger logr.Logger) *Notifier {
	return &Notifier{sender: sender, logger: logger.WithName("notify")}
}

// Send dispatches asynchronously, detached from the caller's context so a
// finished request cannot cancel the delivery.
func (n *Notifier) Send(to, subject, body string) {
	if n == nil || n.sender == nil {
		return
	}
	go func() {
		if err := n.sender.SendEmail(context.Background(), to, subject, body); err != nil {
			n.logger.Error(err, "send email failed", "to", to, "subject", subject)
		}
	}()
}

// LogSender is the default sender when no SMTP collaborator is wired.
type LogSender struct {
	Logger logr.Logger
}

func (s LogSender) SendEmail(ctx context.Context, to, subject, body string) error {
	s.Logger.Info("email", "to", to, "subject", subject)
	return nil
}
