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

package fetcher

import (
	"errors"
	"fmt"
)

var (
	// ErrUnexpectedStatus is matched by every *StatusError.
	ErrUnexpectedStatus = errors.New("unexpected status code")
	// ErrRetriesExhausted is matched by a *StatusError returned after the
	// retry budget for a throttled or failing endpoint ran out.
	ErrRetriesExhausted = errors.New("retries exhausted")
	// ErrMalformedResponse wraps body decoding failures.
	ErrMalformedResponse = errors.New("malformed response")
	// ErrEmptyToken is returned when the token provider yields an empty token.
	ErrEmptyToken     = errors.New("token provider returned an empty token")
	errPaginationLoop = errors.New("next page link revisits an earlier page")
)

// StatusError surfaces a non-2xx HTTP response with its body.
type StatusError struct {
	Method     string
	URI        string
	StatusCode int
	Body       string
	Attempts   int
	Exhausted  bool
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: %v: %d after %d attempt(s), response: %s",
		e.Method, e.URI, ErrUnexpectedStatus, e.StatusCode, e.Attempts, e.Body)
}

func (e *StatusError) Is(target error) bool {
	if target == ErrUnexpectedStatus {
		return true
	}

	return e.Exhausted && target == ErrRetriesExhausted
}
