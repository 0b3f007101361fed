// Package webhook posts finished sample results to a configured endpoint.
package webhook

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"net/http"
	"time"

	facore "github.com/xhn-ccc/fat-analysis-tool"
	"github.com/xhn-ccc/fat-analysis-tool/pkg/models"
)

// Client posts result payloads over a pooled HTTP transport.
type Client struct {
	url    string
	client *http.Client
	quiet  bool
}

// NewClient creates a webhook client for the given endpoint URL.
func NewClient(url string, quiet bool) *Client {
	return &Client{
		url: url,
		client: &http.Client{
			Timeout: 10 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     30 * time.Second,
			},
		},
		quiet: quiet,
	}
}

// Send posts one result to the endpoint. Non-2xx responses are errors.
func (c *Client) Send(item models.WebhookItem) error {
	payload := buildPayload(item)

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	resp, err := c.client.Post(c.url, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook endpoint returned %s", resp.Status)
	}

	if !c.quiet {
		log.Printf("webhook delivered for %s (sample %s)", item.RequestID, item.Result.SampleID)
	}
	return nil
}

func buildPayload(item models.WebhookItem) models.WebhookPayload {
	compounds := make(map[string]facore.CompoundStat, len(item.Result.Compounds))
	for name, stat := range item.Result.Compounds {
		compounds[name] = facore.CompoundStat{
			TotalArea:  sanitizeFloat(stat.TotalArea),
			Percentage: sanitizeFloat(stat.Percentage),
		}
	}
	return models.WebhookPayload{
		ID:          item.RequestID,
		Time:        time.Now().UTC().Format(time.RFC3339),
		SampleID:    item.Result.SampleID,
		Status:      item.Outcome.Status,
		Warnings:    item.Outcome.Warnings,
		AnchorFound: item.Result.Calibration.AnchorFound,
		Offset:      sanitizeFloat(item.Result.Calibration.Offset),
		Compounds:   compounds,
		Order:       item.Result.Order,
	}
}

// sanitizeFloat replaces NaN and Inf, which JSON cannot carry, with zero.
func sanitizeFloat(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
