package report

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/ymajdalawi/dqwatch/internal/config"
	"github.com/ymajdalawi/dqwatch/internal/runner"
)

const graphScope = "https://graph.microsoft.com/.default"

// Mailer delivers the HTML report through the Microsoft Graph sendMail
// endpoint using client-credential authentication.
type Mailer struct {
	cfg    config.EmailConfig
	limits Limits

	// overridable for tests
	baseURL string
	client  *http.Client
	token   func(ctx context.Context) (string, error)
}

// NewMailer validates the email configuration and prepares the Graph
// credential. Missing settings are a configuration error.
func NewMailer(cfg config.EmailConfig, limits Limits) (*Mailer, error) {
	var missing []string
	for _, f := range []struct{ name, value string }{
		{"tenant_id", cfg.TenantID},
		{"client_id", cfg.ClientID},
		{"client_secret", cfg.ClientSecret},
		{"sender", cfg.Sender},
	} {
		if f.value == "" {
			missing = append(missing, f.name)
		}
	}
	if len(cfg.Recipients) == 0 {
		missing = append(missing, "recipients")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("email configuration incomplete: missing %v", missing)
	}

	cred, err := azidentity.NewClientSecretCredential(cfg.TenantID, cfg.ClientID, cfg.ClientSecret, nil)
	if err != nil {
		return nil, fmt.Errorf("creating Graph credential: %w", err)
	}

	return &Mailer{
		cfg:     cfg,
		limits:  limits,
		baseURL: "https://graph.microsoft.com/v1.0",
		client:  http.DefaultClient,
		token: func(ctx context.Context) (string, error) {
			tok, err := cred.GetToken(ctx, policy.TokenRequestOptions{Scopes: []string{graphScope}})
			if err != nil {
				return "", fmt.Errorf("acquiring Graph token: %w", err)
			}
			return tok.Token, nil
		},
	}, nil
}

type graphAddress struct {
	Address string `json:"address"`
}

type graphRecipient struct {
	EmailAddress graphAddress `json:"emailAddress"`
}

type graphBody struct {
	ContentType string `json:"contentType"`
	Content     string `json:"content"`
}

type graphMessage struct {
	Subject      string           `json:"subject"`
	Body         graphBody        `json:"body"`
	ToRecipients []graphRecipient `json:"toRecipients"`
}

type graphSendMailRequest struct {
	Message graphMessage `json:"message"`
}

// Send renders the outcome and posts it to Graph. Callers only invoke Send
// when the run found issues; an empty outcome is a no-op.
func (m *Mailer) Send(ctx context.Context, outcome *runner.Outcome) error {
	if !outcome.NeedsReport() {
		return nil
	}

	token, err := m.token(ctx)
	if err != nil {
		return err
	}

	recipients := make([]graphRecipient, 0, len(m.cfg.Recipients))
	for _, addr := range m.cfg.Recipients {
		recipients = append(recipients, graphRecipient{EmailAddress: graphAddress{Address: addr}})
	}

	payload := graphSendMailRequest{
		Message: graphMessage{
			Subject: fmt.Sprintf("Data Quality Alert - %d Issue(s) Found", outcome.Issues.Len()),
			Body: graphBody{
				ContentType: "HTML",
				Content:     RenderHTML(outcome, m.limits),
			},
			ToRecipients: recipients,
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding sendMail request: %w", err)
	}

	url := fmt.Sprintf("%s/users/%s/sendMail", m.baseURL, m.cfg.Sender)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building sendMail request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("sending report email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("sendMail returned %s: %s", resp.Status, detail)
	}
	return nil
}
