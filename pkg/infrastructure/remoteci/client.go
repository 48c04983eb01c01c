package remoteci

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/previewlabs/preview-backend/pkg/buildengine"
)

// Client triggers and observes pipelines on the remote CI system.
type Client struct {
	base  string
	token string
	http  *http.Client
}

func NewClient(endpoint, token string) *Client {
	return &Client{
		base:  endpoint,
		token: token,
		http:  &http.Client{Timeout: 60 * time.Second},
	}
}

func (c *Client) TriggerPipeline(ctx context.Context, pipeline string, args map[string]string) (string, error) {
	payload, err := json.Marshal(map[string]interface{}{"variables": args})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		fmt.Sprintf("%s/pipelines/%s/runs", c.base, pipeline), bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	c.auth(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("pipeline trigger returned %d", resp.StatusCode)
	}
	var out struct {
		RunID string `json:"runId"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	return out.RunID, nil
}

func (c *Client) GetRunStatus(ctx context.Context, runID string) (buildengine.RunStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/runs/%s", c.base, runID), nil)
	if err != nil {
		return buildengine.RunStatus{}, err
	}
	c.auth(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return buildengine.RunStatus{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return buildengine.RunStatus{}, fmt.Errorf("run status returned %d", resp.StatusCode)
	}
	var out struct {
		State string `json:"state"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return buildengine.RunStatus{}, err
	}
	switch out.State {
	case "succeeded":
		return buildengine.RunStatus{Completed: true, Success: true}, nil
	case "failed", "cancelled":
		return buildengine.RunStatus{Completed: true, Success: false}, nil
	default:
		return buildengine.RunStatus{}, nil
	}
}

func (c *Client) GetRunLogs(ctx context.Context, runID string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/runs/%s/logs", c.base, runID), nil)
	if err != nil {
		return "", err
	}
	c.auth(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("run logs returned %d", resp.StatusCode)
	}
	var out struct {
		Logs string `json:"logs"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	return out.Logs, nil
}

func (c *Client) auth(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}
