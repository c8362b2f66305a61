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

package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	// SummaryEventType is the CloudEvents type of a published run summary.
	SummaryEventType = "com.carverauto.serialsync.run.summary"
	// SummarySubjectPrefix is prefixed to the runbook name to form the NATS subject.
	SummarySubjectPrefix = "serialsync.summary."
)

// CloudEvent represents a CloudEvents v1.0 compliant event.
type CloudEvent struct {
	SpecVersion     string     `json:"specversion"`
	ID              string     `json:"id"`
	Source          string     `json:"source"`
	Type            string     `json:"type"`
	DataContentType string     `json:"datacontenttype"`
	Subject         string     `json:"subject,omitempty"`
	Time            *time.Time `json:"time,omitempty"`
	Data            any        `json:"data,omitempty"`
}

// NewSummaryEvent wraps a run summary for publication.
func NewSummaryEvent(s *Summary) CloudEvent {
	ts := s.StartedAt.Add(time.Duration(s.Duration))

	return CloudEvent{
		SpecVersion:     "1.0",
		ID:              uuid.New().String(),
		Source:          "serialsync/" + s.Runbook,
		Type:            SummaryEventType,
		DataContentType: "application/json",
		Subject:         SummarySubjectPrefix + s.Runbook,
		Time:            &ts,
		Data:            s,
	}
}
