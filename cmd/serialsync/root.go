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
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/carverauto/serialsync/pkg/config"
	"github.com/carverauto/serialsync/pkg/executor"
	"github.com/carverauto/serialsync/pkg/logger"
	"github.com/carverauto/serialsync/pkg/report"
	"github.com/carverauto/serialsync/pkg/runbook"
	"github.com/carverauto/serialsync/pkg/version"
)

const (
	serviceName     = "serialsync"
	shutdownTimeout = 5 * time.Second
)

// app carries what every sub-command shares.
type app struct {
	v      *viper.Viper
	out    io.Writer
	lookup config.LookupFunc
}

// buildFunc assembles a runbook from a ready session.
type buildFunc func(ctx context.Context, s *session) (runbook.Definition, error)

func newRootCmd(out io.Writer, lookup config.LookupFunc) *cobra.Command {
	a := &app{v: config.NewViper(), out: out, lookup: lookup}

	root := &cobra.Command{
		Use:           serviceName,
		Short:         "Reconcile device inventories by serial number",
		Version:       version.GetFullVersion(),
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	config.RegisterFlags(root.PersistentFlags())
	_ = a.v.BindPFlags(root.PersistentFlags())

	root.AddCommand(
		a.missingAssetsCmd(),
		a.action1AuditCmd(),
		a.categorySyncCmd(),
		a.groupTagSyncCmd(),
	)

	return root
}

// bind registers cmd's local flags with viper. Flag names are unique across
// sub-commands, so a shared viper instance is safe.
func (a *app) bind(cmd *cobra.Command) *cobra.Command {
	_ = a.v.BindPFlags(cmd.Flags())

	return cmd
}

// execute runs one runbook end to end. Configuration and credential errors
// surface before any request is made.
func (a *app) execute(ctx context.Context, needs config.Needs, build buildFunc) error {
	cfg, err := config.Load(a.v)
	if err != nil {
		return err
	}

	if len(cfg.MailTo) > 0 {
		needs |= config.NeedGraph
	}

	if err := cfg.Validate(needs); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	secrets, err := cfg.ResolveSecrets(a.lookup, needs)
	if err != nil {
		return err
	}

	logCfg := logger.DefaultConfig()
	logCfg.Level = cfg.LogLevel

	log, err := logger.New(logCfg)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}

	tp, err := logger.InitializeTracing(ctx, logger.TracingConfig{
		ServiceName:    serviceName,
		ServiceVersion: version.GetVersion(),
		Logger:         log,
		OTel:           &logCfg.OTel,
	})
	if err != nil {
		return err
	}

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := tp.Shutdown(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("Failed to flush traces")
		}
	}()

	s, err := newSession(cfg, secrets, needs, log)
	if err != nil {
		return err
	}

	def, err := build(ctx, s)
	if err != nil {
		return err
	}

	opts, cleanup, err := s.runOptions()
	if err != nil {
		return err
	}
	defer cleanup()

	summary, err := runbook.New(def, opts, logger.Component(log, "runbook")).Run(ctx)
	if err != nil {
		return err
	}

	return report.WriteSummary(a.out, summary)
}

func (a *app) missingAssetsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   runbook.MissingAssetsName,
		Short: "Report Intune devices whose serial is not in Snipe-IT",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.execute(cmd.Context(), config.NeedGraph|config.NeedSnipeIT,
				func(_ context.Context, s *session) (runbook.Definition, error) {
					return runbook.MissingAssets(s.intune.ListManagedDevices, s.snipeit.ListHardware,
						s.cfg.IncludePersonal), nil
				})
		},
	}

	cmd.Flags().Bool("include-personal", false, "also report personally owned devices")

	return a.bind(cmd)
}

func (a *app) action1AuditCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   runbook.Action1AuditName,
		Short: "Report Action1 endpoints whose serial is not in Snipe-IT",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.execute(cmd.Context(), config.NeedAction1|config.NeedSnipeIT,
				func(_ context.Context, s *session) (runbook.Definition, error) {
					return runbook.Action1Audit(s.action1.ListEndpoints, s.snipeit.ListHardware), nil
				})
		},
	}

	return a.bind(cmd)
}

func (a *app) categorySyncCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   runbook.CategorySyncName,
		Short: "Set Intune device categories from Snipe-IT asset categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.execute(cmd.Context(), config.NeedGraph|config.NeedSnipeIT,
				func(_ context.Context, s *session) (runbook.Definition, error) {
					return runbook.CategorySync(
						s.snipeit.ListHardware,
						s.intune.ListManagedDevices,
						s.intune.ListDeviceCategories,
						func(categories map[string]string) executor.Updater {
							return s.categoryUpdater(categories)
						},
					), nil
				})
		},
	}

	return a.bind(cmd)
}

func (a *app) groupTagSyncCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   runbook.GroupTagSyncName,
		Short: "Set Autopilot group tags from Snipe-IT asset categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.execute(cmd.Context(), config.NeedGraph|config.NeedSnipeIT,
				func(_ context.Context, s *session) (runbook.Definition, error) {
					tagMap, err := config.ParseTagMap(s.cfg.TagMap)
					if err != nil {
						return runbook.Definition{}, err
					}

					return runbook.GroupTagSync(
						s.snipeit.ListHardware,
						s.intune.ListAutopilotDevices,
						s.groupTagUpdater(),
						s.cfg.Categories,
						tagMap,
					), nil
				})
		},
	}

	cmd.Flags().StringSlice("category", nil, "only sync assets in these Snipe-IT categories (repeatable)")
	cmd.Flags().StringSlice("tag-map", nil, "CATEGORY=TAG translation applied before comparing (repeatable)")

	return a.bind(cmd)
}
