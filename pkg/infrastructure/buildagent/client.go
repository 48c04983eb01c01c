package buildagent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/previewlabs/preview-backend/pkg/buildengine"
	"github.com/previewlabs/preview-backend/pkg/domain/entities"
)

// Client drives the in-cluster build agent over its HTTP API: apply a job
// spec, wait for completion, probe job state, roll out a built deploy and
// manage datastore restores. One agent fronts all cluster operations so
// this backend never links a cluster SDK directly.
type Client struct {
	base string
	http *http.Client
}

func NewClient(endpoint string) *Client {
	return &Client{
		base: endpoint,
		http: &http.Client{},
	}
}

func (c *Client) Apply(ctx context.Context, spec *buildengine.JobSpec) (buildengine.JobHandle, error) {
	var out struct {
		Name      string `json:"name"`
		Namespace string `json:"namespace"`
	}
	if err := c.post(ctx, "/jobs", spec, &out, 0); err != nil {
		return buildengine.JobHandle{}, err
	}
	return buildengine.JobHandle{Name: out.Name, Namespace: out.Namespace}, nil
}

func (c *Client) AwaitCompletion(
	ctx context.Context,
	handle buildengine.JobHandle,
	timeout time.Duration,
) (buildengine.JobResult, error) {
	var out struct {
		Success bool   `json:"success"`
		Logs    string `json:"logs"`
	}
	path := fmt.Sprintf("/jobs/%s/%s/wait", handle.Namespace, handle.Name)
	if err := c.post(ctx, path, map[string]string{"timeout": timeout.String()}, &out, timeout+time.Minute); err != nil {
		return buildengine.JobResult{}, err
	}
	if out.Logs == "" {
		return buildengine.JobResult{}, fmt.Errorf("job %s completed without logs", handle.Name)
	}
	return buildengine.JobResult{Success: out.Success, Logs: out.Logs}, nil
}

func (c *Client) ProbeComplete(ctx context.Context, handle buildengine.JobHandle) (bool, error) {
	url := fmt.Sprintf("%s/jobs/%s/%s/status", c.base, handle.Namespace, handle.Name)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("job status returned %d", resp.StatusCode)
	}
	var out struct {
		Complete bool `json:"complete"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return false, err
	}
	return out.Complete, nil
}

// Deploy hands a built deploy to the agent for rollout.
func (c *Client) Deploy(ctx context.Context, deploy *entities.DeployEntity) error {
	return c.post(ctx, "/deploys", deploy, nil, 0)
}

func (c *Client) RestoreExists(ctx context.Context, buildID, service string) (bool, error) {
	url := fmt.Sprintf("%s/restores/%s/%s", c.base, buildID, service)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()
	switch resp.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		return false, fmt.Errorf("restore lookup returned %d", resp.StatusCode)
	}
}

func (c *Client) TriggerRestore(ctx context.Context, buildID, service string) (string, error) {
	var out struct {
		Logs string `json:"logs"`
	}
	path := fmt.Sprintf("/restores/%s/%s", buildID, service)
	if err := c.post(ctx, path, nil, &out, 0); err != nil {
		return "", err
	}
	return out.Logs, nil
}

func (c *Client) post(ctx context.Context, path string, in, out interface{}, timeout time.Duration) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	client := c.http
	if timeout > 0 {
		client = &http.Client{Timeout: timeout}
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("agent returned status %d for %s", resp.StatusCode, path)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
