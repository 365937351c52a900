package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/jefersonOS/barber-pro/pkg/circuitbreaker"
	"github.com/jefersonOS/barber-pro/pkg/logger"
)

// Client posts text messages through an Evolution-API-style gateway.
// Delivery is best effort end to end: callers log failures and move
// on, and the breaker keeps a flapping gateway from stalling request
// handling.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	breaker *circuitbreaker.CircuitBreaker
	logger  *logger.Logger
}

func NewClient(baseURL, apiKey string, l *logger.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 10 * time.Second},
		breaker: circuitbreaker.NewCircuitBreaker(circuitbreaker.Settings{
			Name:        "whatsapp",
			MaxRequests: 5,
			Interval:    time.Minute,
			Timeout:     30 * time.Second,
		}),
		logger: l,
	}
}

type sendTextRequest struct {
	Number string `json:"number"`
	Text   string `json:"text"`
}

// SendText delivers a plain text message to a phone through the given
// gateway instance.
func (c *Client) SendText(ctx context.Context, instanceID, phone, text string) error {
	body, err := json.Marshal(sendTextRequest{Number: phone, Text: text})
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	return c.breaker.Execute(func() error {
		url := fmt.Sprintf("%s/message/sendText/%s", c.baseURL, instanceID)
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("failed to build request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("apikey", c.apiKey)

		resp, err := c.http.Do(req)
		if err != nil {
			return fmt.Errorf("whatsapp gateway request failed: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 300 {
			snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			return fmt.Errorf("whatsapp gateway returned %d: %s", resp.StatusCode, snippet)
		}
		return nil
	})
}
