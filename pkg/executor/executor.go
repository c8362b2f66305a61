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

// Package executor applies reconciliation changes to a target system.
package executor

//go:generate mockgen -destination=mock_executor.go -package=executor github.com/carverauto/serialsync/pkg/executor Updater

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/carverauto/serialsync/pkg/logger"
	"github.com/carverauto/serialsync/pkg/models"
)

// Updater writes the desired value of a change to the target system.
type Updater interface {
	Update(ctx context.Context, change models.Change) error
}

// Validator is optionally implemented by an Updater whose checks do not need
// the target system. Apply runs it in both modes, so a dry run counts the
// same failures a live run would.
type Validator interface {
	Validate(change models.Change) error
}

// Result is the outcome of one Apply.
type Result struct {
	Applied bool
	Err     error
}

// Executor applies changes one at a time. Failures are reported per change
// and never abort the caller.
type Executor struct {
	updater Updater
	breaker *CircuitBreaker
	dryRun  bool
	logger  logger.Logger
}

// Option configures an Executor.
type Option func(*Executor)

// WithCircuitBreaker routes live writes through cb.
func WithCircuitBreaker(cb *CircuitBreaker) Option {
	return func(e *Executor) { e.breaker = cb }
}

// New returns an Executor. With dryRun set no Updater call is ever made.
func New(updater Updater, dryRun bool, log logger.Logger, opts ...Option) *Executor {
	e := &Executor{
		updater: updater,
		dryRun:  dryRun,
		logger:  log,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// DryRun reports whether writes are suppressed.
func (e *Executor) DryRun() bool {
	return e.dryRun
}

// Apply performs, or in dry-run mode only logs, a single change.
func (e *Executor) Apply(ctx context.Context, change models.Change) Result {
	if v, ok := e.updater.(Validator); ok {
		if err := v.Validate(change); err != nil {
			changeFields(e.logger.Error(), change).
				Err(err).
				Bool("dry_run", e.dryRun).
				Msg("Rejected change")

			return Result{Err: err}
		}
	}

	if e.dryRun {
		changeFields(e.logger.Info(), change).
			Bool("dry_run", true).
			Msg("Would update target record")

		return Result{Applied: true}
	}

	write := func() error { return e.updater.Update(ctx, change) }

	var err error
	if e.breaker != nil {
		err = e.breaker.Execute(write)
	} else {
		err = write()
	}

	if err != nil {
		changeFields(e.logger.Error(), change).
			Err(err).
			Msg("Failed to update target record")

		return Result{Err: err}
	}

	changeFields(e.logger.Info(), change).
		Str("status", "success").
		Msg("Updated target record")

	return Result{Applied: true}
}

func changeFields(event *zerolog.Event, change models.Change) *zerolog.Event {
	return event.
		Str("serial", change.Source.SerialNumber).
		Str("target_id", change.Target.ID).
		Str("from", change.Target.Value).
		Str("to", change.Desired())
}

// ApplyAll applies changes in order and folds the results into a Tally.
// It stops early only when ctx is cancelled.
func (e *Executor) ApplyAll(ctx context.Context, changes []models.Change) (models.Tally, error) {
	var tally models.Tally

	for _, change := range changes {
		if err := ctx.Err(); err != nil {
			return tally, err
		}

		res := e.Apply(ctx, change)
		if res.Err != nil {
			tally.Errors++
			continue
		}

		tally.Updated++
	}

	return tally, nil
}
