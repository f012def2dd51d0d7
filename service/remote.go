package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/clausetrack/backend/config"
)

// RemoteDetector invokes an external detection engine over HTTP
type RemoteDetector struct {
	config     *config.DetectionConfig
	httpClient *http.Client
}

// RemoteDetectRequest is the request body sent to the engine
type RemoteDetectRequest struct {
	Text string `json:"text"`
}

// RemoteDetectResponse is the engine's response
type RemoteDetectResponse struct {
	ClauseTypeIDs []uint `json:"clause_type_ids"`
}

func NewRemoteDetector(cfg *config.DetectionConfig) *RemoteDetector {
	return &RemoteDetector{
		config: cfg,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
	}
}

func (d *RemoteDetector) Detect(ctx context.Context, text string) (map[uint]bool, error) {
	body, err := json.Marshal(RemoteDetectRequest{Text: text})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.config.APIURL+"/detect", bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if d.config.APIToken != "" {
		req.Header.Set("Authorization", "Bearer "+d.config.APIToken)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("detection engine request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("detection engine returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var result RemoteDetectResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	detected := make(map[uint]bool, len(result.ClauseTypeIDs))
	for _, id := range result.ClauseTypeIDs {
		detected[id] = true
	}
	return detected, nil
}
