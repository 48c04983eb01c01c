package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path"
	"time"

	"github.com/previewlabs/preview-backend/pkg/domain/entities"
)

// WebhookNotifier posts status changes to the notification service that
// renders pull-request comments. The orchestrator treats delivery as
// fire-and-forget; this client just needs to report errors honestly.
type WebhookNotifier struct {
	url  string
	http *http.Client
}

func NewWebhookNotifier(url string) *WebhookNotifier {
	return &WebhookNotifier{
		url:  url,
		http: &http.Client{Timeout: 15 * time.Second},
	}
}

func (n *WebhookNotifier) OnStatusChange(deploy *entities.DeployEntity, build *entities.BuildEntity) error {
	if n.url == "" {
		return nil
	}
	payload, err := json.Marshal(map[string]interface{}{
		"deploy": deploy,
		"build":  build,
	})
	if err != nil {
		return err
	}
	resp, err := n.http.Post(n.url, "application/json", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("notification webhook returned %d", resp.StatusCode)
	}
	return nil
}

// FileArchiver writes build logs under the local storage tree, one file
// per deploy.
type FileArchiver struct {
	root string
}

func NewFileArchiver(root string) *FileArchiver {
	if root == "" {
		wd, _ := os.Getwd()
		root = path.Join(wd, "storage", "logs")
	}
	return &FileArchiver{root: root}
}

func (a *FileArchiver) Archive(_ context.Context, deployUUID string, logs string) error {
	dir := path.Join(a.root, deployUUID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(path.Join(dir, "build.log"), []byte(logs), 0o644)
}
