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

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadArgs(t *testing.T, args ...string) *Config {
	t.Helper()

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs)
	require.NoError(t, fs.Parse(args))

	v := NewViper()
	require.NoError(t, v.BindPFlags(fs))

	cfg, err := Load(v)
	require.NoError(t, err)

	return cfg
}

func TestLoad_FlagDefaults(t *testing.T) {
	cfg := loadArgs(t)

	assert.Equal(t, DefaultGraphBaseURL, cfg.GraphBaseURL)
	assert.Equal(t, 5, cfg.MaxRetries)
	assert.Equal(t, 5*time.Second, cfg.InitialBackoff)
	assert.Equal(t, 300*time.Second, cfg.MaxBackoff)
	assert.Equal(t, 50, cfg.BatchSize)
	assert.Equal(t, 10*time.Second, cfg.BatchDelay)
	assert.Equal(t, "AZURE_CLIENT_SECRET", cfg.ClientSecretVar)
	assert.False(t, cfg.WhatIf)
}

func TestLoad_FlagsEnvPrecedence(t *testing.T) {
	t.Setenv("SERIALSYNC_BATCH_SIZE", "25")
	t.Setenv("SERIALSYNC_SNIPEIT_URL", "https://env.example")
	t.Setenv("SERIALSYNC_MAIL_TO", "a@example.com,b@example.com")

	cfg := loadArgs(t, "--snipeit-url", "https://flag.example", "--what-if", "--batch-delay", "0s")

	assert.Equal(t, 25, cfg.BatchSize)
	assert.Equal(t, "https://flag.example", cfg.SnipeITURL)
	assert.True(t, cfg.WhatIf)
	assert.Zero(t, cfg.BatchDelay)
	assert.Equal(t, []string{"a@example.com", "b@example.com"}, cfg.MailTo)
}

func TestLoad_RepeatableFlags(t *testing.T) {
	cfg := loadArgs(t, "--mail-to", "a@example.com", "--mail-to", "b@example.com")

	assert.Equal(t, []string{"a@example.com", "b@example.com"}, cfg.MailTo)
}

func TestLoad_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "serialsync.yaml")
	require.NoError(t, os.WriteFile(path, []byte("snipeit-url: https://file.example\nmax-retries: 7\n"), 0o600))

	cfg := loadArgs(t, "--config", path)

	assert.Equal(t, "https://file.example", cfg.SnipeITURL)
	assert.Equal(t, 7, cfg.MaxRetries)
}

func TestLoad_MissingConfigFile(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs)
	require.NoError(t, fs.Parse([]string{"--config", filepath.Join(t.TempDir(), "nope.yaml")}))

	v := viper.New()
	require.NoError(t, v.BindPFlags(fs))

	_, err := Load(v)
	require.ErrorIs(t, err, errReadConfig)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		needs   Needs
		wantErr error
	}{
		{"ok", Config{SnipeITURL: "https://s"}, NeedSnipeIT | NeedGraph, nil},
		{"missing snipe url", Config{}, NeedSnipeIT, errMissingSnipeITURL},
		{"snipe url not needed", Config{}, NeedGraph, nil},
		{"missing action1 org", Config{SnipeITURL: "https://s"}, NeedSnipeIT | NeedAction1, errMissingAction1Org},
		{"negative batch", Config{BatchSize: -1}, 0, errNegativeValue},
		{"negative delay", Config{BatchDelay: -time.Second}, 0, errNegativeValue},
		{"mail without sender", Config{MailTo: []string{"x@example.com"}}, 0, errMissingMailFrom},
		{"bad tag map", Config{TagMap: []string{"Kiosk"}}, 0, errBadTagMapEntry},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate(tt.needs)
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}

			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestValidate_AppliesDefaults(t *testing.T) {
	cfg := Config{}
	require.NoError(t, cfg.Validate(0))

	assert.Equal(t, DefaultGraphBaseURL, cfg.GraphBaseURL)
	assert.Equal(t, DefaultAction1URL, cfg.Action1URL)
	assert.Equal(t, 50, cfg.BatchSize)

	p := cfg.RetryPolicy()
	assert.Equal(t, 5, p.MaxRetries)
	assert.Equal(t, 5*time.Second, p.InitialBackoff)
	assert.Equal(t, 300*time.Second, p.MaxBackoff)
}

func TestParseTagMap(t *testing.T) {
	m, err := ParseTagMap([]string{"Kiosk=KIOSK", " Laptops = STD "})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"Kiosk": "KIOSK", "Laptops": "STD"}, m)

	_, err = ParseTagMap([]string{"=TAG"})
	require.ErrorIs(t, err, errBadTagMapEntry)
}

func TestResolveSecrets(t *testing.T) {
	cfg := loadArgs(t)
	env := map[string]string{
		"AZURE_TENANT_ID":     "tenant",
		"AZURE_CLIENT_ID":     "client",
		"AZURE_CLIENT_SECRET": "secret",
		"SNIPEIT_API_TOKEN":   "  ",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	s, err := cfg.ResolveSecrets(lookup, NeedGraph)
	require.NoError(t, err)
	assert.Equal(t, "tenant", s.TenantID)
	assert.Equal(t, "secret", s.ClientSecret)

	_, err = cfg.ResolveSecrets(lookup, NeedGraph|NeedSnipeIT|NeedAction1)
	require.ErrorIs(t, err, ErrMissingCredential)
	assert.Contains(t, err.Error(), "SNIPEIT_API_TOKEN")
	assert.Contains(t, err.Error(), "ACTION1_CLIENT_ID")
	assert.Contains(t, err.Error(), "ACTION1_CLIENT_SECRET")
}
