/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package batch paces write work into fixed-size chunks.
package batch

import (
	"context"
	"time"

	"github.com/carverauto/serialsync/pkg/logger"
)

const (
	DefaultSize  = 50
	DefaultDelay = 10 * time.Second
)

// Sleeper blocks for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Scheduler runs work in contiguous chunks with a pause between chunks.
type Scheduler struct {
	Size   int
	Delay  time.Duration
	Sleep  Sleeper
	Logger logger.Logger
}

// New returns a Scheduler. A non-positive size uses DefaultSize; a negative
// delay uses DefaultDelay. A zero delay disables pausing.
func New(size int, delay time.Duration, log logger.Logger) *Scheduler {
	if size <= 0 {
		size = DefaultSize
	}

	if delay < 0 {
		delay = DefaultDelay
	}

	return &Scheduler{Size: size, Delay: delay, Sleep: sleepContext, Logger: log}
}

// Run calls fn once per chunk of items, in order, sleeping Delay between
// chunks but not after the last one. It returns the number of chunks that
// were started. Cancellation is observed between chunks.
func Run[T any](ctx context.Context, s *Scheduler, items []T, fn func(ctx context.Context, chunk []T) error) (int, error) {
	batches := 0
	total := (len(items) + s.Size - 1) / s.Size

	for start := 0; start < len(items); start += s.Size {
		if batches > 0 && s.Delay > 0 {
			s.Logger.Info().
				Dur("delay", s.Delay).
				Int("next_batch", batches+1).
				Int("batches", total).
				Msg("Pausing between batches")

			if err := s.Sleep(ctx, s.Delay); err != nil {
				return batches, err
			}
		}

		if err := ctx.Err(); err != nil {
			return batches, err
		}

		end := min(start+s.Size, len(items))
		batches++

		s.Logger.Debug().
			Int("batch", batches).
			Int("batches", total).
			Int("batch_size", end-start).
			Msg("Processing batch")

		if err := fn(ctx, items[start:end]); err != nil {
			return batches, err
		}
	}

	return batches, nil
}
