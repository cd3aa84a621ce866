/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package catalog

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// maxBackoff caps the doubling wait between fetch attempts.
const maxBackoff = 8 * time.Second

// transient marks a fetch failure worth another attempt: network errors,
// 5xx responses and truncated bodies.
type transient struct{ err error }

func (t transient) Error() string { return t.err.Error() }
func (t transient) Unwrap() error { return t.err }

// withRetry calls fetch until it succeeds, fails with a non-transient error or
// runs out of attempts. The wait starts at backoff and doubles up to
// maxBackoff. The last transient cause is returned unwrapped.
func withRetry(ctx context.Context, attempts int, backoff time.Duration, lg *slog.Logger, fetch func(attempt int) error) error {
	if attempts < 1 {
		attempts = 1
	}
	wait := backoff
	for attempt := 1; ; attempt++ {
		err := fetch(attempt)
		var t transient
		if err == nil || !errors.As(err, &t) {
			return err
		}
		if attempt >= attempts {
			return t.err
		}
		lg.Warn("catalog fetch failed, retrying",
			slog.Int("attempt", attempt), slog.Duration("wait", wait), slog.Any("err", t.err))
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		wait = min(wait*2, maxBackoff)
	}
}
