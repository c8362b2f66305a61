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

package report

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/carverauto/serialsync/pkg/logger"
	"github.com/carverauto/serialsync/pkg/models"
)

// flushTimeout bounds the wait for the server; FlushWithContext requires a deadline.
const flushTimeout = 10 * time.Second

// Publisher announces a finished run to other systems.
type Publisher interface {
	PublishSummary(ctx context.Context, s *models.Summary) error
	Close()
}

// natsConn is the subset of *nats.Conn used by NATSPublisher.
type natsConn interface {
	Publish(subj string, data []byte) error
	FlushWithContext(ctx context.Context) error
	Close()
}

// NATSPublisher publishes run summaries as CloudEvents on
// serialsync.summary.<runbook>.
type NATSPublisher struct {
	conn   natsConn
	logger logger.Logger
}

// ConnectNATS dials natsURL and returns a publisher that owns the connection.
func ConnectNATS(natsURL string, log logger.Logger, opts ...nats.Option) (*NATSPublisher, error) {
	opts = append([]nats.Option{
		nats.Name("serialsync"),
		nats.Timeout(10 * time.Second),
		nats.ErrorHandler(func(_ *nats.Conn, _ *nats.Subscription, err error) {
			log.Warn().Err(err).Msg("NATS error")
		}),
	}, opts...)

	nc, err := nats.Connect(natsURL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return &NATSPublisher{conn: nc, logger: log}, nil
}

// PublishSummary implements Publisher. It waits for the server to
// acknowledge the flush so the event is not lost on exit.
func (p *NATSPublisher) PublishSummary(ctx context.Context, s *models.Summary) error {
	event := models.NewSummaryEvent(s)

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal summary event: %w", err)
	}

	if err := p.conn.Publish(event.Subject, data); err != nil {
		return fmt.Errorf("failed to publish summary event: %w", err)
	}

	flushCtx, cancel := context.WithTimeout(ctx, flushTimeout)
	defer cancel()

	if err := p.conn.FlushWithContext(flushCtx); err != nil {
		return fmt.Errorf("failed to flush summary event: %w", err)
	}

	p.logger.Info().
		Str("subject", event.Subject).
		Str("event_id", event.ID).
		Str("run_id", s.RunID).
		Msg("Published run summary")

	return nil
}

// Close closes the underlying connection.
func (p *NATSPublisher) Close() {
	p.conn.Close()
}
