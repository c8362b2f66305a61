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
	"errors"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	msgraphsdk "github.com/microsoftgraph/msgraph-sdk-go"
	graphmodels "github.com/microsoftgraph/msgraph-sdk-go/models"
	graphusers "github.com/microsoftgraph/msgraph-sdk-go/users"

	"github.com/carverauto/serialsync/pkg/logger"
)

var (
	errNoSender     = errors.New("mail sender is required")
	errNoRecipients = errors.New("at least one mail recipient is required")
)

// Message is an HTML email.
type Message struct {
	From    string
	To      []string
	Subject string
	HTML    string
}

// Validate checks that the message can be sent.
func (m Message) Validate() error {
	if m.From == "" {
		return errNoSender
	}

	if len(m.To) == 0 {
		return errNoRecipients
	}

	return nil
}

// Mailer delivers report emails.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// sendMailFunc posts a sendMail request on behalf of from.
type sendMailFunc func(ctx context.Context, from string, body graphusers.ItemSendMailPostRequestBodyable) error

// GraphMailer sends mail through Microsoft Graph users/{from}/sendMail.
type GraphMailer struct {
	send   sendMailFunc
	logger logger.Logger
}

// NewGraphMailer creates a mailer authenticated with cred. The app
// registration needs the Mail.Send application permission.
func NewGraphMailer(cred azcore.TokenCredential, scopes []string, log logger.Logger) (*GraphMailer, error) {
	client, err := msgraphsdk.NewGraphServiceClientWithCredentials(cred, scopes)
	if err != nil {
		return nil, fmt.Errorf("failed to create graph client: %w", err)
	}

	return &GraphMailer{
		send: func(ctx context.Context, from string, body graphusers.ItemSendMailPostRequestBodyable) error {
			return client.Users().ByUserId(from).SendMail().Post(ctx, body, nil)
		},
		logger: log,
	}, nil
}

// Send implements Mailer.
func (g *GraphMailer) Send(ctx context.Context, msg Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}

	if err := g.send(ctx, msg.From, buildSendMailBody(msg)); err != nil {
		return fmt.Errorf("failed to send report mail: %w", err)
	}

	g.logger.Info().
		Str("from", msg.From).
		Strs("to", msg.To).
		Str("subject", msg.Subject).
		Msg("Report mail sent")

	return nil
}

func buildSendMailBody(msg Message) graphusers.ItemSendMailPostRequestBodyable {
	body := graphmodels.NewItemBody()
	contentType := graphmodels.HTML_BODYTYPE
	body.SetContentType(&contentType)
	body.SetContent(&msg.HTML)

	recipients := make([]graphmodels.Recipientable, 0, len(msg.To))
	for _, addr := range msg.To {
		email := graphmodels.NewEmailAddress()
		email.SetAddress(&addr)

		recipient := graphmodels.NewRecipient()
		recipient.SetEmailAddress(email)

		recipients = append(recipients, recipient)
	}

	message := graphmodels.NewMessage()
	message.SetSubject(&msg.Subject)
	message.SetBody(body)
	message.SetToRecipients(recipients)

	saveToSentItems := false

	req := graphusers.NewItemSendMailPostRequestBody()
	req.SetMessage(message)
	req.SetSaveToSentItems(&saveToSentItems)

	return req
}
