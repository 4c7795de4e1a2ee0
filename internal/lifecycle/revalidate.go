package lifecycle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// HTTPRevalidator pings the public site so its cached copy of a catalogue
// is refreshed after a run completes.
type HTTPRevalidator struct {
	endpoint string
	client   *http.Client
}

func NewHTTPRevalidator(appURL string, client *http.Client) *HTTPRevalidator {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &HTTPRevalidator{
		endpoint: strings.TrimRight(appURL, "/") + "/api/revalidate",
		client:   client,
	}
}

func (h *HTTPRevalidator) Revalidate(ctx context.Context, slug string) error {
	body, err := json.Marshal(map[string]string{"slug": slug})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("revalidate endpoint returned %d", resp.StatusCode)
	}
	return nil
}

var _ Revalidator = (*HTTPRevalidator)(nil)
