package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/EternisAI/syshealth/internal/api/http/dto"
	"github.com/codeGROOVE-dev/retry"
)

const (
	maxRetries     = 3
	initialBackoff = 1 * time.Second
	maxBackoff     = 30 * time.Second

	reportPath = "/report"
)

type ClientOption func(*Client)

// WithBackoff overrides the retry schedule.
func WithBackoff(attempts uint, delay, maxDelay time.Duration) ClientOption {
	return func(c *Client) {
		c.attempts = attempts
		c.delay = delay
		c.maxDelay = maxDelay
	}
}

func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	attempts   uint
	delay      time.Duration
	maxDelay   time.Duration
}

func NewClient(baseURL string, timeout time.Duration, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		attempts:   maxRetries,
		delay:      initialBackoff,
		maxDelay:   maxBackoff,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Send posts a report, retrying transport failures and 5xx responses.
// A 4xx response is returned immediately.
func (c *Client) Send(ctx context.Context, report Report) (*dto.ReportResponse, error) {
	body, err := json.Marshal(report)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal report: %w", err)
	}

	var resp *dto.ReportResponse
	err = retry.Do(func() error {
		r, err := c.post(ctx, body)
		if err != nil {
			return err
		}
		resp = r
		return nil
	},
		retry.Context(ctx),
		retry.Attempts(c.attempts),
		retry.Delay(c.delay),
		retry.MaxDelay(c.maxDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			slog.Warn("Report delivery failed, retrying", "attempt", n+1, "error", err)
		}),
	)
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) post(ctx context.Context, body []byte) (*dto.ReportResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+reportPath, bytes.NewReader(body))
	if err != nil {
		return nil, retry.Unrecoverable(fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			slog.Warn("Error closing response body", "error", err)
		}
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= http.StatusInternalServerError {
		return nil, fmt.Errorf("server returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, retry.Unrecoverable(fmt.Errorf("server rejected report with status %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody))))
	}

	var out dto.ReportResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, retry.Unrecoverable(fmt.Errorf("failed to parse response: %w", err))
	}
	return &out, nil
}
