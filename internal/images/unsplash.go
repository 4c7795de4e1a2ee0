package images

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Searcher looks up a representative image URL for a query. A miss is
// ("", nil); errors are reserved for transport-level failures.
type Searcher interface {
	Search(ctx context.Context, query string) (string, error)
}

const (
	unsplashDefaultBaseURL = "https://api.unsplash.com"
	unsplashDefaultTimeout = 10 * time.Second
)

type UnsplashOptions struct {
	AccessKey  string
	BaseURL    string
	HTTPClient *http.Client
}

// UnsplashClient queries the Unsplash photo search API for the first result.
type UnsplashClient struct {
	accessKey string
	baseURL   string
	client    *http.Client
}

type unsplashSearchResponse struct {
	Results []struct {
		URLs struct {
			Regular string `json:"regular"`
			Small   string `json:"small"`
		} `json:"urls"`
	} `json:"results"`
}

func NewUnsplashClient(opts UnsplashOptions) (*UnsplashClient, error) {
	if strings.TrimSpace(opts.AccessKey) == "" {
		return nil, errors.New("unsplash: access key is required")
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = unsplashDefaultBaseURL
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: unsplashDefaultTimeout}
	}
	return &UnsplashClient{
		accessKey: strings.TrimSpace(opts.AccessKey),
		baseURL:   baseURL,
		client:    client,
	}, nil
}

func (u *UnsplashClient) Search(ctx context.Context, query string) (string, error) {
	endpoint := fmt.Sprintf("%s/search/photos?query=%s&per_page=1", u.baseURL, url.QueryEscape(query))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("unsplash: build request: %w", err)
	}
	req.Header.Set("Authorization", "Client-ID "+u.accessKey)

	resp, err := u.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("unsplash: request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("unsplash: status %d", resp.StatusCode)
	}
	var out unsplashSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("unsplash: decode response: %w", err)
	}
	if len(out.Results) == 0 {
		return "", nil
	}
	if small := out.Results[0].URLs.Small; small != "" {
		return small, nil
	}
	return out.Results[0].URLs.Regular, nil
}

var _ Searcher = (*UnsplashClient)(nil)
