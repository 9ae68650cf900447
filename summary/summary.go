/*
Package summary calls the external natural-language analysis service.

The core hands it a read-only snapshot of requests and prices and gets
back an opaque display string. The call is advisory: failure or delay is
converted into a neutral message and never touches ledger state, and a
caller may abandon the async variant without consequence.
*/
package summary

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/armada/fleet-engine/fleet"
)

// Neutral is returned whenever the external service fails or is not
// configured. Callers display it as-is.
const Neutral = "Analysis is not available right now."

// Summarizer produces display text from a snapshot.
type Summarizer interface {
	Summarize(ctx context.Context, snap fleet.Snapshot) (string, error)
}

// =============================================================================
// HTTP CLIENT
// =============================================================================

type summaryResponse struct {
	Text string `json:"text"`
}

// Client posts snapshots to the analysis endpoint.
type Client struct {
	endpoint string
	apiKey   string
	rest     *resty.Client
}

func NewClient(endpoint, apiKey string) *Client {
	return &Client{
		endpoint: endpoint,
		apiKey:   apiKey,
		rest:     resty.New().SetTimeout(25 * time.Second),
	}
}

func (c *Client) Summarize(ctx context.Context, snap fleet.Snapshot) (string, error) {
	if c.endpoint == "" {
		return "", fmt.Errorf("summary: endpoint not configured")
	}

	req := c.rest.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(snap)
	if c.apiKey != "" {
		req.SetHeader("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := req.Post(c.endpoint)
	if err != nil {
		return "", fmt.Errorf("summary: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return "", fmt.Errorf("summary: status %d", resp.StatusCode())
	}

	var parsed summaryResponse
	if err := json.Unmarshal(resp.Body(), &parsed); err != nil {
		return "", fmt.Errorf("summary: decode response: %w", err)
	}
	return parsed.Text, nil
}

// =============================================================================
// FIRE-AND-FORGET
// =============================================================================

// Async runs the summarizer in a goroutine and delivers exactly one string
// on the returned channel: the summary on success, Neutral otherwise. The
// channel is buffered, so an abandoned call leaks nothing and rolls back
// nothing.
func Async(ctx context.Context, s Summarizer, snap fleet.Snapshot) <-chan string {
	out := make(chan string, 1)
	if s == nil {
		out <- Neutral
		return out
	}
	go func() {
		text, err := s.Summarize(ctx, snap)
		if err != nil || text == "" {
			out <- Neutral
			return
		}
		out <- text
	}()
	return out
}
