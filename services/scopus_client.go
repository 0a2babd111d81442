package services

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
)

const defaultScopusBaseURL = "https://api.elsevier.com"

// ScopusClient issues authenticated GET requests against the Elsevier APIs.
type ScopusClient struct {
	baseURL string
	rotator *ScopusKeyRotator
}

// NewScopusClient constructs a ScopusClient. An empty baseURL targets api.elsevier.com.
func NewScopusClient(baseURL string, rotator *ScopusKeyRotator) *ScopusClient {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = defaultScopusBaseURL
	}
	return &ScopusClient{baseURL: baseURL, rotator: rotator}
}

// getJSON fetches path with query and decodes the body into out.
func (c *ScopusClient) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	if c == nil || c.rotator == nil {
		return ErrNoCredentials
	}

	reqURL := c.baseURL + path
	if encoded := query.Encode(); encoded != "" {
		reqURL += "?" + encoded
	}

	resp, err := c.rotator.Do(ctx, func(ctx context.Context, apiKey string) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		return req, nil
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return &NotFoundError{Resource: "scopus record", ID: path}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &UpstreamError{Service: "scopus", Status: resp.StatusCode, Body: string(body)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &ParseError{Field: "response body", Err: err}
	}
	return nil
}
