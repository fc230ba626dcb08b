package media

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const replicateBaseURL = "https://api.replicate.com/v1"

// ReplicateClient runs image models through the Replicate predictions API.
type ReplicateClient struct {
	token        string
	model        string // owner/name
	baseURL      string
	httpClient   *http.Client
	pollInterval time.Duration
	maxWait      time.Duration
}

func NewReplicateClient(token, model string) *ReplicateClient {
	if model == "" {
		model = "stability-ai/stable-diffusion-3"
	}
	return &ReplicateClient{
		token:        token,
		model:        model,
		baseURL:      replicateBaseURL,
		httpClient:   &http.Client{Timeout: 90 * time.Second},
		pollInterval: 2 * time.Second,
		maxWait:      3 * time.Minute,
	}
}

type prediction struct {
	ID     string          `json:"id"`
	Status string          `json:"status"`
	Output json.RawMessage `json:"output"`
	Error  any             `json:"error"`
	URLs   struct {
		Get string `json:"get"`
	} `json:"urls"`
}

// Generate creates a prediction and waits for it to finish. The first output
// URL is returned.
func (c *ReplicateClient) Generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(map[string]any{
		"input": map[string]any{"prompt": prompt},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s/predictions", c.baseURL, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "wait")

	p, err := c.do(req)
	if err != nil {
		return "", err
	}

	deadline := time.Now().Add(c.maxWait)
	for !finished(p.Status) {
		if p.URLs.Get == "" {
			return "", fmt.Errorf("prediction %s is %s with no poll url", p.ID, p.Status)
		}
		if time.Now().After(deadline) {
			return "", fmt.Errorf("prediction %s still %s after %s", p.ID, p.Status, c.maxWait)
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(c.pollInterval):
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.URLs.Get, nil)
		if err != nil {
			return "", fmt.Errorf("create poll request: %w", err)
		}
		if p, err = c.do(req); err != nil {
			return "", err
		}
	}

	if p.Status != "succeeded" {
		return "", fmt.Errorf("prediction %s %s: %v", p.ID, p.Status, p.Error)
	}
	return firstOutputURL(p.Output)
}

func (c *ReplicateClient) do(req *http.Request) (*prediction, error) {
	req.Header.Set("Authorization", "Bearer "+c.token)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("replicate api: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("replicate api status %d: %s", resp.StatusCode, truncate(string(respBody), 200))
	}

	var p prediction
	if err := json.Unmarshal(respBody, &p); err != nil {
		return nil, fmt.Errorf("decode prediction: %w", err)
	}
	return &p, nil
}

func finished(status string) bool {
	switch status {
	case "succeeded", "failed", "canceled":
		return true
	}
	return false
}

// firstOutputURL accepts either a single URL or a list of URLs.
func firstOutputURL(raw json.RawMessage) (string, error) {
	var one string
	if err := json.Unmarshal(raw, &one); err == nil && one != "" {
		return one, nil
	}
	var many []string
	if err := json.Unmarshal(raw, &many); err == nil {
		for _, u := range many {
			if u != "" {
				return u, nil
			}
		}
	}
	return "", errors.New("prediction returned no image url")
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
