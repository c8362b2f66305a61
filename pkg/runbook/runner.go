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

// Package runbook wires fetch, index, reconcile, execute and report into a
// single one-directional run.
package runbook

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/carverauto/serialsync/pkg/batch"
	"github.com/carverauto/serialsync/pkg/executor"
	"github.com/carverauto/serialsync/pkg/fetcher"
	"github.com/carverauto/serialsync/pkg/index"
	"github.com/carverauto/serialsync/pkg/logger"
	"github.com/carverauto/serialsync/pkg/models"
	"github.com/carverauto/serialsync/pkg/reconcile"
	"github.com/carverauto/serialsync/pkg/report"
)

var errNoUpdater = errors.New("runbook produced changes but has no updater")

// Lister fetches one side of a reconciliation. limit <= 0 fetches everything.
type Lister func(ctx context.Context, limit int) ([]models.Device, error)

// Definition describes one runbook.
type Definition struct {
	Name   string
	Policy reconcile.Policy
	// Target is indexed; Source is iterated.
	Target Lister
	Source Lister
	// Filter optionally narrows the source before classification. It must
	// keep the relative order and must not modify its argument.
	Filter func([]models.Device) []models.Device
	// Updater is called once, only when there are changes to apply.
	Updater func(ctx context.Context) (executor.Updater, error)
}

// Options are the run-level settings shared by every runbook.
type Options struct {
	DryRun     bool
	Limit      int
	BatchSize  int
	BatchDelay time.Duration
	Breaker    executor.BreakerConfig

	Mailer     report.Mailer
	MailFrom   string
	MailTo     []string
	AlwaysMail bool
	Publisher  report.Publisher
	ReportFile string

	// Recorder, when set, supplies Summary.API.
	Recorder *fetcher.Recorder
}

// Runner executes a Definition.
type Runner struct {
	def    Definition
	opts   Options
	logger logger.Logger

	now   func() time.Time
	newID func() string
	sleep batch.Sleeper
}

// New creates a Runner.
func New(def Definition, opts Options, log logger.Logger) *Runner {
	return &Runner{
		def:    def,
		opts:   opts,
		logger: log,
		now:    time.Now,
		newID:  func() string { return uuid.New().String() },
	}
}

// Run performs the runbook. A fatal error aborts the run and no summary is
// returned; per-record write failures are counted in Summary.Errors.
func (r *Runner) Run(ctx context.Context) (*models.Summary, error) {
	started := r.now()
	runID := r.newID()

	ctx, span := logger.GetTracer("serialsync/runbook").Start(ctx, "runbook.run",
		trace.WithAttributes(
			attribute.String("runbook", r.def.Name),
			attribute.String("run_id", runID),
			attribute.Bool("dry_run", r.opts.DryRun),
		))
	defer span.End()

	log := r.logger

	log.Info().
		Str("runbook", r.def.Name).
		Str("run_id", runID).
		Bool("dry_run", r.opts.DryRun).
		Msg("Starting run")

	res, err := r.run(ctx, runID, started)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		log.Error().Err(err).Str("runbook", r.def.Name).Str("run_id", runID).Msg("Run failed")

		return nil, err
	}

	r.deliver(ctx, res)

	log.Info().
		Str("runbook", r.def.Name).
		Str("run_id", runID).
		Int("total", res.Total).
		Int("updated", res.Updated).
		Int("errors", res.Errors).
		Str("status", "success").
		Msg("Run complete")

	return res.Summary, nil
}

func (r *Runner) run(ctx context.Context, runID string, started time.Time) (*runResult, error) {
	target, err := r.def.Target(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch target: %w", err)
	}

	idx, stats := index.Build(target)

	r.logger.Info().
		Int("records", stats.Records).
		Int("indexed", idx.Len()).
		Int("no_serial", stats.NoSerial).
		Int("duplicates", stats.Duplicates).
		Msg("Built target index")

	fetched, err := r.def.Source(ctx, r.opts.Limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch source: %w", err)
	}

	source := fetched
	if r.def.Filter != nil {
		source = r.def.Filter(fetched)
	}

	res := reconcile.Reconcile(source, idx, r.def.Policy)
	tally := res.Tally

	if len(res.Changes) > 0 {
		applied, err := r.apply(ctx, res.Changes)
		if err != nil {
			return nil, err
		}

		tally.Merge(applied)
	}

	meta := report.Meta{
		RunID:          runID,
		Runbook:        r.def.Name,
		DryRun:         r.opts.DryRun,
		StartedAt:      started,
		FinishedAt:     r.now(),
		SourceRecords:  len(fetched),
		SourceFiltered: len(fetched) - len(source),
		TargetRecords:  len(target),
		IndexStats:     stats,
	}

	if r.opts.Recorder != nil {
		meta.API = r.opts.Recorder.Snapshot()
	}

	summary := report.Summarize(tally, meta)

	return &runResult{Summary: &summary, Notable: res.Notable}, nil
}

type runResult struct {
	*models.Summary
	Notable []reconcile.Classified
}

func (r *Runner) apply(ctx context.Context, changes []models.Change) (models.Tally, error) {
	var tally models.Tally

	if r.def.Updater == nil {
		return tally, errNoUpdater
	}

	updater, err := r.def.Updater(ctx)
	if err != nil {
		return tally, fmt.Errorf("failed to prepare updater: %w", err)
	}

	var opts []executor.Option
	if r.opts.Breaker.FailureThreshold > 0 {
		opts = append(opts, executor.WithCircuitBreaker(
			executor.NewCircuitBreaker(r.def.Name, r.opts.Breaker, r.logger)))
	}

	exec := executor.New(updater, r.opts.DryRun, r.logger, opts...)

	sched := batch.New(r.opts.BatchSize, r.opts.BatchDelay, r.logger)
	if r.sleep != nil {
		sched.Sleep = r.sleep
	}

	batches, err := batch.Run(ctx, sched, changes, func(ctx context.Context, chunk []models.Change) error {
		t, err := exec.ApplyAll(ctx, chunk)
		tally.Merge(t)

		return err
	})
	tally.Batches = batches

	if err != nil {
		return tally, fmt.Errorf("update phase interrupted: %w", err)
	}

	return tally, nil
}

// deliver writes, mails and publishes the report. Delivery failures are
// logged and do not fail a run whose reconciliation already completed.
func (r *Runner) deliver(ctx context.Context, res *runResult) {
	notable := len(res.Notable) > 0

	if notable || r.opts.AlwaysMail || r.opts.ReportFile != "" {
		html, err := report.RenderHTML(report.Title(res.Summary), report.RowsFrom(res.Notable))
		if err != nil {
			r.logger.Error().Err(err).Msg("Failed to render report")
		} else {
			r.writeReportFile(html)

			if notable || r.opts.AlwaysMail {
				r.mail(ctx, res.Summary, html)
			}
		}
	}

	if r.opts.Publisher != nil {
		if err := r.opts.Publisher.PublishSummary(ctx, res.Summary); err != nil {
			r.logger.Error().Err(err).Msg("Failed to publish run summary")
		}
	}
}

func (r *Runner) writeReportFile(html string) {
	if r.opts.ReportFile == "" {
		return
	}

	if err := os.WriteFile(r.opts.ReportFile, []byte(html), 0o600); err != nil {
		r.logger.Error().Err(err).Str("path", r.opts.ReportFile).Msg("Failed to write report file")
		return
	}

	r.logger.Info().Str("path", r.opts.ReportFile).Msg("Wrote report file")
}

func (r *Runner) mail(ctx context.Context, s *models.Summary, html string) {
	if r.opts.Mailer == nil || len(r.opts.MailTo) == 0 {
		return
	}

	msg := report.Message{
		From:    r.opts.MailFrom,
		To:      r.opts.MailTo,
		Subject: report.Title(s),
		HTML:    html,
	}

	if err := r.opts.Mailer.Send(ctx, msg); err != nil {
		r.logger.Error().Err(err).Msg("Failed to send report mail")
	}
}
