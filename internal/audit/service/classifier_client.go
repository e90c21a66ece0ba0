package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

type classifierClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewClassifierClient creates an HTTP client for the anomaly classification
// service at baseURL. The client sets no timeout of its own: the service can
// take minutes on a cold model load, so each call is bounded by its context
// instead.
func NewClassifierClient(baseURL string) Classifier {
	return &classifierClient{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{},
	}
}

// Analyze submits entry text to POST /analyze and returns the parsed verdict
// with the verbatim response body attached.
func (c *classifierClient) Analyze(ctx context.Context, request *AnalyzeRequest) (*AnalyzeResponse, error) {
	payload, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal analyze request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/analyze", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build analyze request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call classification service: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read classification response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("classification service returned status %d: %s", resp.StatusCode, truncateBody(body))
	}

	var analyzeResponse AnalyzeResponse
	if err := json.Unmarshal(body, &analyzeResponse); err != nil {
		return nil, fmt.Errorf("failed to decode classification response: %w", err)
	}
	analyzeResponse.Raw = body

	return &analyzeResponse, nil
}

// Health calls GET /health. The service answers 503 while its model is
// loading or unavailable.
func (c *classifierClient) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("failed to build health request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call classification service: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("classification service unhealthy: status %d", resp.StatusCode)
	}

	return nil
}

// truncateBody bounds the response excerpt included in error messages.
func truncateBody(body []byte) string {
	const max = 512
	if len(body) > max {
		return string(body[:max]) + "..."
	}
	return string(body)
}
