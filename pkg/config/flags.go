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
	"github.com/spf13/pflag"

	"github.com/carverauto/serialsync/pkg/batch"
	"github.com/carverauto/serialsync/pkg/executor"
	"github.com/carverauto/serialsync/pkg/fetcher"
)

const (
	DefaultGraphBaseURL = "https://graph.microsoft.com/v1.0"
	DefaultAction1URL   = "https://app.action1.com"
)

// RegisterFlags adds the flags shared by every runbook.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "optional config file (yaml, json or toml)")

	fs.String("graph-base-url", DefaultGraphBaseURL, "Microsoft Graph base URL")
	fs.String("snipeit-url", "", "Snipe-IT base URL")
	fs.String("action1-url", DefaultAction1URL, "Action1 base URL")
	fs.String("action1-org-id", "", "Action1 organization id")

	fs.String("tenant-id-var", "AZURE_TENANT_ID", "environment variable holding the Entra tenant id")
	fs.String("client-id-var", "AZURE_CLIENT_ID", "environment variable holding the app registration client id")
	fs.String("client-secret-var", "AZURE_CLIENT_SECRET", "environment variable holding the app registration secret")
	fs.String("snipeit-token-var", "SNIPEIT_API_TOKEN", "environment variable holding the Snipe-IT API token")
	fs.String("action1-client-id-var", "ACTION1_CLIENT_ID", "environment variable holding the Action1 client id")
	fs.String("action1-client-secret-var", "ACTION1_CLIENT_SECRET", "environment variable holding the Action1 client secret")

	fs.Int("max-retries", fetcher.DefaultMaxRetries, "attempts per request on 429/5xx before failing")
	fs.Duration("initial-backoff", fetcher.DefaultInitialBackoff, "first retry wait when no Retry-After is sent")
	fs.Duration("max-backoff", fetcher.DefaultMaxBackoff, "upper bound of the doubling retry wait")
	fs.Int("batch-size", batch.DefaultSize, "updates per batch")
	fs.Duration("batch-delay", batch.DefaultDelay, "pause between batches")
	fs.Int("limit", 0, "stop paging once this many source records were read (0 = all)")
	fs.Bool("what-if", false, "dry run: log intended updates without writing")
	fs.Int("breaker-threshold", executor.DefaultBreakerConfig().FailureThreshold,
		"consecutive failed writes before writes are paused (0 keeps writing past failures)")

	fs.String("mail-from", "", "mailbox the report is sent from")
	fs.StringSlice("mail-to", nil, "report recipients (repeatable)")
	fs.Bool("always-mail", false, "send the report even when nothing is notable")
	fs.String("nats-url", "", "publish the run summary to this NATS server")
	fs.String("report-file", "", "also write the HTML report to this path")
	fs.String("log-level", "info", "trace, debug, info, warn or error")
}
