package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// DoubleXPFetcher implements Fetcher against the doublexp.net static JSON feed.
type DoubleXPFetcher struct {
	BaseURL string
	Client  *http.Client
}

// NewDoubleXPFetcher creates a new fetcher with optional proxy support.
func NewDoubleXPFetcher(baseURL, proxyURL string) *DoubleXPFetcher {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &DoubleXPFetcher{
		BaseURL: baseURL,
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
	}
}

func (f *DoubleXPFetcher) Name() string { return "doublexp" }

func (f *DoubleXPFetcher) FetchMissions(ctx context.Context, date string) (map[string]json.RawMessage, error) {
	endpoint := fmt.Sprintf("%s/static/json/bulkmissions/%s.json", f.BaseURL, date)
	body, err := f.fetch(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, &FetchError{URL: endpoint, Err: fmt.Errorf("decode missions: %w", err)}
	}
	return doc, nil
}

func (f *DoubleXPFetcher) FetchDeepDives(ctx context.Context, stamp string) (json.RawMessage, error) {
	endpoint := fmt.Sprintf("%s/static/json/DD_%s.json", f.BaseURL, stamp)
	body, err := f.fetch(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	if !json.Valid(body) {
		return nil, &FetchError{URL: endpoint, Err: fmt.Errorf("decode deep dives: invalid JSON")}
	}
	return json.RawMessage(body), nil
}

func (f *DoubleXPFetcher) fetch(ctx context.Context, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return nil, &FetchError{URL: endpoint, Err: err}
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: endpoint, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, &FetchError{URL: endpoint, StatusCode: resp.StatusCode}
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{URL: endpoint, Err: fmt.Errorf("read body: %w", err)}
	}
	return body, nil
}
