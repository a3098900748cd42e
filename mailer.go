package psiweb

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Mailer sends transactional mail. The newsletter flow uses it for
// confirmation links; a failed send is logged and the signup stays
// pending so the visitor can retry.
type Mailer interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// HTTPMailer posts messages to a transactional-email HTTP API.
type HTTPMailer struct {
	url    string
	apiKey string
	from   string
	client *http.Client
}

// NewHTTPMailer builds a mailer for the given endpoint. With an empty
// URL or key the mailer is disabled and Send becomes a no-op, which
// keeps local runs from needing an email account.
func NewHTTPMailer(url, apiKey, from string) *HTTPMailer {
	return &HTTPMailer{
		url:    url,
		apiKey: apiKey,
		from:   from,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// Send posts one message to the email API.
func (m *HTTPMailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	if m.url == "" || m.apiKey == "" {
		return nil
	}

	payload, err := json.Marshal(map[string]string{
		"from":    m.from,
		"to":      to,
		"subject": subject,
		"html":    htmlBody,
	})
	if err != nil {
		return fmt.Errorf("encode mail payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build mail request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+m.apiKey)

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("send mail: API returned %s", resp.Status)
	}
	return nil
}
