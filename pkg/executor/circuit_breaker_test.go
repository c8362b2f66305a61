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

package executor

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/serialsync/pkg/logger"
)

func newTestBreaker(cfg BreakerConfig) (*CircuitBreaker, *time.Time) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	cb := NewCircuitBreaker("test", cfg, logger.NewTestLogger())
	cb.now = func() time.Time { return now }

	return cb, &now
}

func TestCircuitBreaker_Lifecycle(t *testing.T) {
	cb, now := newTestBreaker(BreakerConfig{FailureThreshold: 3, SuccessThreshold: 2, Timeout: 30 * time.Second})
	fail := func() error { return errWrite }
	ok := func() error { return nil }

	for range 3 {
		require.ErrorIs(t, cb.Execute(fail), errWrite)
	}

	assert.Equal(t, StateOpen, cb.State())
	require.ErrorIs(t, cb.Execute(ok), ErrCircuitOpen)

	*now = now.Add(31 * time.Second)

	require.NoError(t, cb.Execute(ok))
	assert.Equal(t, StateHalfOpen, cb.State())

	require.NoError(t, cb.Execute(ok))
	assert.Equal(t, StateClosed, cb.State())
}

func TestCircuitBreaker_HalfOpenFailureReopens(t *testing.T) {
	cb, now := newTestBreaker(BreakerConfig{FailureThreshold: 1, SuccessThreshold: 1, Timeout: time.Second})

	require.Error(t, cb.Execute(func() error { return errWrite }))
	assert.Equal(t, StateOpen, cb.State())

	*now = now.Add(2 * time.Second)

	require.ErrorIs(t, cb.Execute(func() error { return errWrite }), errWrite)
	assert.Equal(t, StateOpen, cb.State())
}

func TestCircuitBreaker_SuccessResetsFailureCount(t *testing.T) {
	cb, _ := newTestBreaker(BreakerConfig{FailureThreshold: 2, SuccessThreshold: 1, Timeout: time.Minute})

	_ = cb.Execute(func() error { return errWrite })
	_ = cb.Execute(func() error { return nil })
	_ = cb.Execute(func() error { return errWrite })

	assert.Equal(t, StateClosed, cb.State())
}

func TestCircuitBreaker_DisabledWithZeroThreshold(t *testing.T) {
	cb, _ := newTestBreaker(BreakerConfig{})

	for range 20 {
		err := cb.Execute(func() error { return errWrite })
		assert.False(t, errors.Is(err, ErrCircuitOpen))
	}

	assert.Equal(t, StateClosed, cb.State())
}

func TestBreakerState_String(t *testing.T) {
	assert.Equal(t, "closed", StateClosed.String())
	assert.Equal(t, "open", StateOpen.String())
	assert.Equal(t, "half-open", StateHalfOpen.String())
	assert.Equal(t, "unknown", BreakerState(42).String())
}
