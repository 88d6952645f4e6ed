// Package emailclient wraps the external email provider's campaign test
// API behind a timeout-bounded, single-attempt send.
//
// Retry policy deliberately lives with callers; this adapter reports a
// classified outcome for exactly one attempt.
package emailclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"

	"github.com/ignite/newsletter/internal/config"
	"github.com/ignite/newsletter/internal/domain"
)

// Sentinel errors classifying transport-level failures. Provider
// rejections carry a status code instead, see RejectedError.
var (
	ErrTimeout     = errors.New("email provider timed out")
	ErrUnreachable = errors.New("email provider unreachable")
)

// RejectedError is returned when the provider answered with a non-2xx
// status.
type RejectedError struct {
	StatusCode int
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("email provider rejected send (status %d)", e.StatusCode)
}

// Client talks to the email provider. It is safe for concurrent use.
type Client struct {
	baseURL    string
	campaignID string
	authToken  config.Secret
	httpClient *http.Client
}

// NewClient creates a provider client from config. The HTTP client's
// timeout bounds every send, covering connect, request, and body read.
func NewClient(cfg config.EmailConfig) *Client {
	return &Client{
		baseURL:    cfg.BaseURL,
		campaignID: cfg.CampaignID,
		authToken:  cfg.AuthToken,
		httpClient: &http.Client{Timeout: cfg.Timeout()},
	}
}

type sendRequestBody struct {
	TestEmails []string `json:"test_emails"`
	SendType   string   `json:"send_type"`
}

// SendTestEmail issues one outbound send for the recipient through the
// campaign test action. 2xx is success; non-2xx returns *RejectedError;
// network failures are classified as ErrTimeout or ErrUnreachable.
func (c *Client) SendTestEmail(ctx context.Context, recipient domain.Email) error {
	url := fmt.Sprintf("%s/campaigns/%s/actions/test", c.baseURL, c.campaignID)

	payload, err := json.Marshal(sendRequestBody{
		TestEmails: []string{recipient.String()},
		SendType:   "html",
	})
	if err != nil {
		return fmt.Errorf("encode send request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create send request: %w", err)
	}
	req.Header.Set("authorization", c.authToken.ExposeSecret())
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return classifyTransportError(err)
	}
	defer resp.Body.Close()

	// Drain for connection reuse; the provider body is not inspected.
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &RejectedError{StatusCode: resp.StatusCode}
	}
	return nil
}

func classifyTransportError(err error) error {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return fmt.Errorf("%w: %v", ErrUnreachable, err)
}
