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

package main

import (
	"github.com/Azure/azure-sdk-for-go/sdk/azcore"

	"github.com/carverauto/serialsync/pkg/auth"
	"github.com/carverauto/serialsync/pkg/config"
	"github.com/carverauto/serialsync/pkg/executor"
	"github.com/carverauto/serialsync/pkg/fetcher"
	"github.com/carverauto/serialsync/pkg/integrations/action1"
	"github.com/carverauto/serialsync/pkg/integrations/intune"
	"github.com/carverauto/serialsync/pkg/integrations/snipeit"
	"github.com/carverauto/serialsync/pkg/logger"
	"github.com/carverauto/serialsync/pkg/report"
	"github.com/carverauto/serialsync/pkg/runbook"
)

// session holds the vendor clients for one run. Only the clients a runbook
// needs are created.
type session struct {
	cfg      *config.Config
	log      logger.Logger
	recorder *fetcher.Recorder

	graphCred azcore.TokenCredential

	intune  *intune.Client
	snipeit *snipeit.Client
	action1 *action1.Client
}

func newSession(cfg *config.Config, secrets *config.Secrets, needs config.Needs, log logger.Logger) (*session, error) {
	s := &session{
		cfg:      cfg,
		log:      log,
		recorder: fetcher.NewRecorder(log),
	}

	if needs&config.NeedGraph != 0 {
		tokens, cred, err := auth.NewAzureTokenProvider(secrets.TenantID, secrets.ClientID, secrets.ClientSecret)
		if err != nil {
			return nil, err
		}

		s.graphCred = cred
		s.intune = intune.New(s.newFetcher(intune.Vendor, tokens), cfg.GraphBaseURL, logger.Component(log, intune.Vendor))
	}

	if needs&config.NeedSnipeIT != 0 {
		tokens := auth.StaticTokenProvider(secrets.SnipeITToken)
		s.snipeit = snipeit.New(s.newFetcher(snipeit.Vendor, tokens), cfg.SnipeITURL, logger.Component(log, snipeit.Vendor))
	}

	if needs&config.NeedAction1 != 0 {
		tokens := auth.NewAction1TokenProvider(cfg.Action1URL, secrets.Action1ClientID, secrets.Action1ClientSecret)
		s.action1 = action1.New(s.newFetcher(action1.Vendor, tokens), cfg.Action1URL, cfg.Action1OrgID,
			logger.Component(log, action1.Vendor))
	}

	return s, nil
}

func (s *session) newFetcher(vendor string, tokens fetcher.TokenProvider) *fetcher.Client {
	return fetcher.New(vendor, nil, tokens, logger.Component(s.log, "fetcher"),
		fetcher.WithRetryPolicy(s.cfg.RetryPolicy()),
		fetcher.WithRecorder(s.recorder),
	)
}

func (s *session) categoryUpdater(categories map[string]string) executor.Updater {
	return intune.NewCategoryUpdater(s.intune, categories)
}

func (s *session) groupTagUpdater() executor.Updater {
	return intune.NewGroupTagUpdater(s.intune)
}

// runOptions builds the runner options, including the optional mail and
// NATS delivery. The returned cleanup must always be called.
func (s *session) runOptions() (runbook.Options, func(), error) {
	cfg := s.cfg

	breaker := executor.DefaultBreakerConfig()
	breaker.FailureThreshold = cfg.BreakerThreshold

	opts := runbook.Options{
		DryRun:     cfg.WhatIf,
		Limit:      cfg.Limit,
		BatchSize:  cfg.BatchSize,
		BatchDelay: cfg.BatchDelay,
		Breaker:    breaker,
		MailFrom:   cfg.MailFrom,
		MailTo:     cfg.MailTo,
		AlwaysMail: cfg.AlwaysMail,
		ReportFile: cfg.ReportFile,
		Recorder:   s.recorder,
	}

	cleanup := func() {}

	if len(cfg.MailTo) > 0 {
		mailer, err := report.NewGraphMailer(s.graphCred, []string{auth.GraphScope}, logger.Component(s.log, "mailer"))
		if err != nil {
			return opts, cleanup, err
		}

		opts.Mailer = mailer
	}

	if cfg.NATSURL != "" {
		pub, err := report.ConnectNATS(cfg.NATSURL, logger.Component(s.log, "publisher"))
		if err != nil {
			// Publishing is best effort; the run still reports on stdout.
			s.log.Error().Err(err).Str("url", cfg.NATSURL).Msg("NATS unavailable, summary will not be published")

			return opts, cleanup, nil
		}

		opts.Publisher = pub
		cleanup = pub.Close
	}

	return opts, cleanup, nil
}
