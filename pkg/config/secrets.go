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
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrMissingCredential is returned when a named credential variable is unset or empty.
var ErrMissingCredential = errors.New("credential environment variable is not set")

// Needs is the set of systems a runbook talks to.
type Needs uint8

const (
	NeedGraph Needs = 1 << iota
	NeedSnipeIT
	NeedAction1
)

// Secrets holds resolved credential values.
type Secrets struct {
	TenantID            string
	ClientID            string
	ClientSecret        string
	SnipeITToken        string
	Action1ClientID     string
	Action1ClientSecret string
}

// LookupFunc reads an environment variable; os.LookupEnv in production.
type LookupFunc func(key string) (string, bool)

// ResolveSecrets reads the credentials named by the *Var settings. Every
// missing variable is reported, not just the first.
func (c *Config) ResolveSecrets(lookup LookupFunc, needs Needs) (*Secrets, error) {
	if lookup == nil {
		lookup = os.LookupEnv
	}

	var (
		s    Secrets
		errs []error
	)

	read := func(name string, dst *string) {
		v, ok := lookup(name)
		v = strings.TrimSpace(v)

		if name == "" || !ok || v == "" {
			errs = append(errs, fmt.Errorf("%w: %q", ErrMissingCredential, name))
			return
		}

		*dst = v
	}

	if needs&NeedGraph != 0 {
		read(c.TenantIDVar, &s.TenantID)
		read(c.ClientIDVar, &s.ClientID)
		read(c.ClientSecretVar, &s.ClientSecret)
	}

	if needs&NeedSnipeIT != 0 {
		read(c.SnipeITTokenVar, &s.SnipeITToken)
	}

	if needs&NeedAction1 != 0 {
		read(c.Action1ClientIDVar, &s.Action1ClientID)
		read(c.Action1ClientSecretVar, &s.Action1ClientSecret)
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	return &s, nil
}
