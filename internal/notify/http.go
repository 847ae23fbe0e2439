package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// HTTPSender posts emails to a JSON email API (Resend-compatible `POST /emails`).
type HTTPSender struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

type RateLimitError struct {
	RetryAfter time.Duration
}

func (r RateLimitError) Error() string {
	if r.RetryAfter > 0 {
		return fmt.Sprintf("rate limited, retry after %s", r.RetryAfter)
	}
	return "rate limited"
}

type StatusError struct {
	Code int
	Body string
}

func (e StatusError) Error() string {
	return fmt.Sprintf("email api http error: %d: %s", e.Code, e.Body)
}

// Retryable reports whether resending the same email may succeed.
func (e StatusError) Retryable() bool {
	return e.Code >= 500
}

func (h HTTPSender) Send(ctx context.Context, e Email) error {
	client := h.Client
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}

	b, err := json.Marshal(e)
	if err != nil {
		return err
	}
	url := strings.TrimRight(h.BaseURL, "/") + "/emails"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if strings.TrimSpace(h.APIKey) != "" {
		req.Header.Set("Authorization", "Bearer "+h.APIKey)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("email api request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return RateLimitError{RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After"))}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var body map[string]any
		_ = json.NewDecoder(resp.Body).Decode(&body)
		msg := resp.Status
		if m, ok := body["message"].(string); ok && m != "" {
			msg = m
		}
		return StatusError{Code: resp.StatusCode, Body: msg}
	}
	return nil
}

func parseRetryAfter(v string) time.Duration {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(v); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}
