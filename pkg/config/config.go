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

// Package config loads runbook configuration from flags, environment and an
// optional config file.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/carverauto/serialsync/pkg/batch"
	"github.com/carverauto/serialsync/pkg/fetcher"
)

// EnvPrefix is prepended to every environment variable, e.g. SERIALSYNC_BATCH_SIZE.
const EnvPrefix = "SERIALSYNC"

var (
	errMissingSnipeITURL = errors.New("snipeit-url is required")
	errMissingGraphURL   = errors.New("graph-base-url is required")
	errMissingAction1Org = errors.New("action1-org-id is required")
	errNegativeValue     = errors.New("value must not be negative")
	errMissingMailFrom   = errors.New("mail-from is required when mail-to is set")
	errBadTagMapEntry    = errors.New("tag-map entries must be CATEGORY=TAG")
	errReadConfig        = errors.New("failed to read config file")
)

// Config is the complete runbook configuration.
type Config struct {
	ConfigFile string `mapstructure:"config"`

	GraphBaseURL string `mapstructure:"graph-base-url"`
	SnipeITURL   string `mapstructure:"snipeit-url"`
	Action1URL   string `mapstructure:"action1-url"`
	Action1OrgID string `mapstructure:"action1-org-id"`

	// Names of the environment variables holding credentials, never the
	// credentials themselves.
	TenantIDVar            string `mapstructure:"tenant-id-var"`
	ClientIDVar            string `mapstructure:"client-id-var"`
	ClientSecretVar        string `mapstructure:"client-secret-var"`
	SnipeITTokenVar        string `mapstructure:"snipeit-token-var"`
	Action1ClientIDVar     string `mapstructure:"action1-client-id-var"`
	Action1ClientSecretVar string `mapstructure:"action1-client-secret-var"`

	MaxRetries     int           `mapstructure:"max-retries"`
	InitialBackoff time.Duration `mapstructure:"initial-backoff"`
	MaxBackoff     time.Duration `mapstructure:"max-backoff"`
	BatchSize      int           `mapstructure:"batch-size"`
	BatchDelay     time.Duration `mapstructure:"batch-delay"`
	Limit          int           `mapstructure:"limit"`
	WhatIf         bool          `mapstructure:"what-if"`

	BreakerThreshold int `mapstructure:"breaker-threshold"`

	MailFrom   string   `mapstructure:"mail-from"`
	MailTo     []string `mapstructure:"mail-to"`
	AlwaysMail bool     `mapstructure:"always-mail"`
	NATSURL    string   `mapstructure:"nats-url"`
	ReportFile string   `mapstructure:"report-file"`
	LogLevel   string   `mapstructure:"log-level"`

	IncludePersonal bool     `mapstructure:"include-personal"`
	Categories      []string `mapstructure:"category"`
	TagMap          []string `mapstructure:"tag-map"`
}

// NewViper returns a viper instance reading SERIALSYNC_* variables, with
// dashes in keys mapped to underscores.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	return v
}

// Load reads the optional config file and unmarshals every known key.
// Precedence is flag, then environment, then file, then flag default.
func Load(v *viper.Viper) (*Config, error) {
	if file := v.GetString("config"); file != "" {
		v.SetConfigFile(file)

		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", errReadConfig, file, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}

	return &cfg, nil
}

// Validate fills defaults and checks the settings a runbook needs.
func (c *Config) Validate(needs Needs) error {
	c.applyDefaults()

	for name, n := range map[string]int{
		"max-retries": c.MaxRetries,
		"batch-size":  c.BatchSize,
		"limit":       c.Limit,
	} {
		if n < 0 {
			return fmt.Errorf("%s: %w", name, errNegativeValue)
		}
	}

	if c.BatchDelay < 0 || c.InitialBackoff < 0 || c.MaxBackoff < 0 {
		return fmt.Errorf("durations: %w", errNegativeValue)
	}

	if needs&NeedSnipeIT != 0 && c.SnipeITURL == "" {
		return errMissingSnipeITURL
	}

	if needs&NeedGraph != 0 && c.GraphBaseURL == "" {
		return errMissingGraphURL
	}

	if needs&NeedAction1 != 0 && c.Action1OrgID == "" {
		return errMissingAction1Org
	}

	if len(c.MailTo) > 0 && c.MailFrom == "" {
		return errMissingMailFrom
	}

	if _, err := ParseTagMap(c.TagMap); err != nil {
		return err
	}

	return nil
}

func (c *Config) applyDefaults() {
	if c.GraphBaseURL == "" {
		c.GraphBaseURL = DefaultGraphBaseURL
	}

	if c.Action1URL == "" {
		c.Action1URL = DefaultAction1URL
	}

	if c.MaxRetries == 0 {
		c.MaxRetries = fetcher.DefaultMaxRetries
	}

	if c.InitialBackoff == 0 {
		c.InitialBackoff = fetcher.DefaultInitialBackoff
	}

	if c.MaxBackoff == 0 {
		c.MaxBackoff = fetcher.DefaultMaxBackoff
	}

	if c.BatchSize == 0 {
		c.BatchSize = batch.DefaultSize
	}

	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// RetryPolicy returns the fetcher retry settings.
func (c *Config) RetryPolicy() fetcher.RetryPolicy {
	return fetcher.RetryPolicy{
		MaxRetries:     c.MaxRetries,
		InitialBackoff: c.InitialBackoff,
		MaxBackoff:     c.MaxBackoff,
	}
}

// ParseTagMap parses CATEGORY=TAG entries.
func ParseTagMap(entries []string) (map[string]string, error) {
	out := make(map[string]string, len(entries))

	for _, entry := range entries {
		category, tag, ok := strings.Cut(entry, "=")
		category = strings.TrimSpace(category)
		tag = strings.TrimSpace(tag)

		if !ok || category == "" || tag == "" {
			return nil, fmt.Errorf("%w: %q", errBadTagMapEntry, entry)
		}

		out[category] = tag
	}

	return out, nil
}
