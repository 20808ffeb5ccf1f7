// Package ledger delivers treasury transfers to the external token
// ledger. The game engine only knows the TokenTransfer capability; this
// package provides the HTTP relay client used in production and a
// dry-run variant for local development.
package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/ubitquity/Zoltaran-Speaks/internal/asset"
)

// Config holds configuration for the ledger relay client.
type Config struct {
	// BaseURL is the relay endpoint, e.g. "http://localhost:9090".
	BaseURL string

	// APIKey authenticates the game service to the relay. Optional.
	APIKey string

	// From is the treasury account every transfer is sent from.
	From string

	// HTTPClient allows injecting a custom HTTP client (useful for
	// testing). Defaults to a client with 15s timeout.
	HTTPClient *http.Client
}

// Client posts transfers to the relay. Every transfer carries a unique
// reference id so the relay can deduplicate retried deliveries.
type Client struct {
	config Config
	http   *http.Client
	logger *log.Logger
}

// NewClient creates a ledger relay client.
func NewClient(cfg Config) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{
		config: cfg,
		http:   httpClient,
		logger: log.New(os.Stdout, "[LEDGER] ", log.LstdFlags),
	}
}

type transferRequest struct {
	Reference string `json:"reference"`
	From      string `json:"from"`
	To        string `json:"to"`
	Quantity  string `json:"quantity"`
	Memo      string `json:"memo"`
}

// Transfer posts one treasury transfer to the relay. A non-2xx response
// is an error; the caller's settlement transaction rolls back on it.
func (c *Client) Transfer(ctx context.Context, to string, quantity asset.Quantity, memo string) error {
	ref := uuid.NewString()
	body, err := json.Marshal(transferRequest{
		Reference: ref,
		From:      c.config.From,
		To:        to,
		Quantity:  quantity.String(),
		Memo:      memo,
	})
	if err != nil {
		return fmt.Errorf("ledger: encode transfer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/transfers", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("ledger: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("ledger: transfer request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("ledger: relay returned %d: %s", resp.StatusCode, snippet)
	}

	c.logger.Printf("transfer_sent reference=%s to=%s quantity=%q", ref, to, quantity.String())
	return nil
}

// DryRun logs transfers instead of delivering them. Used when the
// service runs without a relay configured.
type DryRun struct {
	logger *log.Logger
}

// NewDryRun creates a log-only transfer sink.
func NewDryRun() *DryRun {
	return &DryRun{logger: log.New(os.Stdout, "[LEDGER] ", log.LstdFlags)}
}

func (d *DryRun) Transfer(ctx context.Context, to string, quantity asset.Quantity, memo string) error {
	d.logger.Printf("transfer_dry_run to=%s quantity=%q memo=%q", to, quantity.String(), memo)
	return nil
}
