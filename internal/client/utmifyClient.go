package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"jersey-storefront/internal/config"

	"github.com/sony/gobreaker/v2"
)

var ErrAttributionNotConfigured = errors.New("attribution api token not configured")

type AttributionClient interface {
	Configured() bool
	SendOrder(ctx context.Context, payload []byte) error
}

type utmifyClientImpl struct {
	httpClient *http.Client
	apiURL     string
	apiToken   string
	breaker    *gobreaker.CircuitBreaker[struct{}]
}

func NewUtmifyClient(utmifyCfg *config.Utmify) AttributionClient {
	return &utmifyClientImpl{
		httpClient: &http.Client{
			Timeout: utmifyCfg.Timeout,
		},
		apiURL:   utmifyCfg.APIURL,
		apiToken: utmifyCfg.APIToken,
		breaker: gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
			Name:        "utmify",
			MaxRequests: 1,
			Interval:    time.Minute,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
		}),
	}
}

func (c *utmifyClientImpl) Configured() bool {
	return c.apiToken != ""
}

func (c *utmifyClientImpl) SendOrder(ctx context.Context, payload []byte) error {
	if !c.Configured() {
		return ErrAttributionNotConfigured
	}

	_, err := c.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, c.post(ctx, payload)
	})
	return err
}

func (c *utmifyClientImpl) post(ctx context.Context, payload []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("http new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-token", c.apiToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http client do: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("utmify error %d: %s", resp.StatusCode, string(b))
	}

	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
