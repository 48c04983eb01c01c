package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Client talks the registry HTTP v2 API. Tag existence is a manifest HEAD
// request; token exchange hits the configured token endpoint for
// cloud-managed registries.
type Client struct {
	http          *http.Client
	tokenEndpoint string
}

func NewClient(tokenEndpoint string) *Client {
	return &Client{
		http:          &http.Client{Timeout: 30 * time.Second},
		tokenEndpoint: tokenEndpoint,
	}
}

func (c *Client) TagExists(ctx context.Context, image, tag string) (bool, error) {
	host, repo := splitImage(image)
	url := fmt.Sprintf("https://%s/v2/%s/manifests/%s", host, repo, tag)
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return false, err
	}
	req.Header.Set("Accept", "application/vnd.docker.distribution.manifest.v2+json")

	resp, err := c.http.Do(req)
	if err != nil {
		return false, fmt.Errorf("manifest check for %s:%s failed: %w", image, tag, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		return false, fmt.Errorf("unexpected status %d checking %s:%s", resp.StatusCode, image, tag)
	}
}

func (c *Client) ExchangeToken(ctx context.Context, registryHost string) (string, error) {
	if c.tokenEndpoint == "" {
		return "", fmt.Errorf("no token endpoint configured for managed registry %s", registryHost)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.tokenEndpoint+"?service="+registryHost, nil)
	if err != nil {
		return "", err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("token exchange failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token exchange returned status %d", resp.StatusCode)
	}

	var body struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", err
	}
	return body.Token, nil
}

func splitImage(image string) (string, string) {
	parts := strings.SplitN(image, "/", 2)
	if len(parts) == 2 && strings.ContainsAny(parts[0], ".:") {
		return parts[0], parts[1]
	}
	return "registry-1.docker.io", image
}
