package connectors

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// CallRecord — запись в истории звонков голосового API.
type CallRecord struct {
	ID          string    `json:"id"`
	Contact     string    `json:"contact"`
	Outcome     string    `json:"outcome"` // answered | voicemail | failed
	DurationSec int       `json:"duration_sec"`
	Summary     string    `json:"summary,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// CallHistoryProvider — контракт к голосовому API. Для ядра это просто REST-бэкенд;
// лента активности переживает его отказ без ошибок наружу.
type CallHistoryProvider interface {
	ListRecent(ctx context.Context, limit int) ([]CallRecord, error)
}

// HTTPCallConnector ходит в голосовой API по HTTP с bearer-ключом.
type HTTPCallConnector struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewHTTPCallConnector(baseURL, apiKey string, timeout time.Duration) *HTTPCallConnector {
	return &HTTPCallConnector{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

func (c *HTTPCallConnector) ListRecent(ctx context.Context, limit int) ([]CallRecord, error) {
	url := fmt.Sprintf("%s/calls?limit=%d", c.baseURL, limit)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("caller: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("caller: request failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		// Уважаем Retry-After, если сервер его прислал
		retryAfter := 5 * time.Second
		if v := resp.Header.Get("Retry-After"); v != "" {
			if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
				retryAfter = time.Duration(secs) * time.Second
			}
		}
		return nil, &ThrottleError{
			RetryAfter: retryAfter,
			Cause:      fmt.Errorf("caller: rate limited"),
		}
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("caller: unexpected status %d", resp.StatusCode)
	}

	var records []CallRecord
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, fmt.Errorf("caller: decode response: %w", err)
	}
	return records, nil
}
