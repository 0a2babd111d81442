package services

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"

	"journal-metrics-api/config"
	"journal-metrics-api/models"
	"journal-metrics-api/monitor"

	"gorm.io/gorm"
)

const scopusAPIKeyField = "X-ELS-APIKey"

var scopusAPIKeyLegacyFields = []string{"api_key"}

// HTTPDoer is the minimal client interface used for outbound calls.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// LoadScopusAPIKeys returns envKeys followed by any keys stored in the
// scopus_config table. A nil db skips the table.
func LoadScopusAPIKeys(ctx context.Context, db *gorm.DB, envKeys []string) ([]string, error) {
	if db == nil {
		return config.MergeKeys(envKeys), nil
	}

	fields := append([]string{scopusAPIKeyField}, scopusAPIKeyLegacyFields...)
	var rows []models.ScopusConfig
	if err := db.WithContext(ctx).
		Where("`key` IN ? OR `key` LIKE ?", fields, scopusAPIKeyField+"-%").
		Order("id ASC").
		Find(&rows).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return config.MergeKeys(envKeys), nil
		}
		return nil, err
	}

	stored := make([]string, 0, len(rows))
	for _, row := range rows {
		if row.Value != nil {
			stored = append(stored, *row.Value)
		}
	}
	return config.MergeKeys(envKeys, stored), nil
}

// ScopusKeyRotator sends a request with each configured key in turn,
// moving to the next key only on 401 or 429.
type ScopusKeyRotator struct {
	keys   []string
	client HTTPDoer
}

// NewScopusKeyRotator constructs a rotator over an ordered key list.
func NewScopusKeyRotator(keys []string, client HTTPDoer) *ScopusKeyRotator {
	if client == nil {
		client = http.DefaultClient
	}
	cp := make([]string, 0, len(keys))
	for _, k := range keys {
		if k = strings.TrimSpace(k); k != "" {
			cp = append(cp, k)
		}
	}
	return &ScopusKeyRotator{keys: cp, client: client}
}

// KeyCount returns the number of usable keys.
func (r *ScopusKeyRotator) KeyCount() int {
	if r == nil {
		return 0
	}
	return len(r.keys)
}

// Do builds and sends the request with keys[0], keys[1], ... until a response
// is neither 401 nor 429 or the keys run out. The last response is returned
// as-is; callers inspect its status.
func (r *ScopusKeyRotator) Do(ctx context.Context, build func(ctx context.Context, apiKey string) (*http.Request, error)) (*http.Response, error) {
	if r == nil || len(r.keys) == 0 {
		return nil, ErrNoCredentials
	}

	for i, key := range r.keys {
		req, err := build(ctx, key)
		if err != nil {
			return nil, err
		}
		req.Header.Set(scopusAPIKeyField, key)

		resp, err := r.client.Do(req)
		if err != nil {
			return nil, err
		}

		rejected := resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusTooManyRequests
		if !rejected || i == len(r.keys)-1 {
			return resp, nil
		}

		monitor.RecordKeyRotation(resp.StatusCode)
		log.Printf("scopus api key %d/%d rejected with status %d, rotating", i+1, len(r.keys), resp.StatusCode)
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		resp.Body.Close()
	}

	// unreachable: the loop returns on the last key
	return nil, ErrNoCredentials
}
