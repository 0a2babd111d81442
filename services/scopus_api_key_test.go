package services

import (
	"context"
	"database/sql/driver"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"regexp"
	"sync"
	"testing"
)

type keyRecorder struct {
	mu       sync.Mutex
	keys     []string
	statuses map[string]int
}

func (k *keyRecorder) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get(scopusAPIKeyField)
		k.mu.Lock()
		k.keys = append(k.keys, key)
		status, ok := k.statuses[key]
		k.mu.Unlock()
		if !ok {
			status = http.StatusOK
		}
		w.WriteHeader(status)
	}
}

func (k *keyRecorder) seen() []string {
	k.mu.Lock()
	defer k.mu.Unlock()
	return append([]string(nil), k.keys...)
}

func getBuilder(url string) func(ctx context.Context, apiKey string) (*http.Request, error) {
	return func(ctx context.Context, apiKey string) (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	}
}

func TestKeyRotatorMovesToNextKeyOnQuota(t *testing.T) {
	rec := &keyRecorder{statuses: map[string]int{"K1": http.StatusTooManyRequests, "K2": http.StatusOK}}
	srv := httptest.NewServer(rec.handler())
	defer srv.Close()

	rotator := NewScopusKeyRotator([]string{"K1", "K2", "K3"}, srv.Client())
	resp, err := rotator.Do(context.Background(), getBuilder(srv.URL))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if got := rec.seen(); !reflect.DeepEqual(got, []string{"K1", "K2"}) {
		t.Fatalf("expected keys K1,K2 to be tried in order, got %v", got)
	}
}

func TestKeyRotatorReturnsLastFailingResponse(t *testing.T) {
	rec := &keyRecorder{statuses: map[string]int{"K1": http.StatusUnauthorized}}
	srv := httptest.NewServer(rec.handler())
	defer srv.Close()

	rotator := NewScopusKeyRotator([]string{"K1"}, srv.Client())
	resp, err := rotator.Do(context.Background(), getBuilder(srv.URL))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 to be returned as-is, got %d", resp.StatusCode)
	}
	if got := rec.seen(); len(got) != 1 {
		t.Fatalf("expected a single attempt, got %v", got)
	}
}

func TestKeyRotatorDoesNotRotateOnServerError(t *testing.T) {
	rec := &keyRecorder{statuses: map[string]int{"K1": http.StatusInternalServerError}}
	srv := httptest.NewServer(rec.handler())
	defer srv.Close()

	rotator := NewScopusKeyRotator([]string{"K1", "K2"}, srv.Client())
	resp, err := rotator.Do(context.Background(), getBuilder(srv.URL))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.StatusCode)
	}
	if got := rec.seen(); !reflect.DeepEqual(got, []string{"K1"}) {
		t.Fatalf("expected only K1, got %v", got)
	}
}

func TestKeyRotatorWithoutKeysFailsBeforeNetwork(t *testing.T) {
	called := false
	rotator := NewScopusKeyRotator([]string{" ", ""}, nil)
	_, err := rotator.Do(context.Background(), func(ctx context.Context, apiKey string) (*http.Request, error) {
		called = true
		return nil, errors.New("should not build")
	})

	var cfgErr *ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigurationError, got %v", err)
	}
	if cfgErr.Error() != "no credentials configured" {
		t.Fatalf("unexpected message %q", cfgErr.Error())
	}
	if called {
		t.Fatalf("request builder must not run without keys")
	}
}

func TestLoadScopusAPIKeysAppendsStoredKeys(t *testing.T) {
	steps := []*queryStep{
		{
			kind:    kindQuery,
			pattern: regexp.MustCompile("SELECT \\* FROM `scopus_config` WHERE .*`key` IN .*ORDER BY id ASC"),
			args:    []driver.Value{"X-ELS-APIKey", "api_key", "X-ELS-APIKey-%"},
			columns: []string{"id", "key", "value"},
			rows: [][]driver.Value{
				{int64(1), "X-ELS-APIKey", "env-key"},
				{int64(2), "X-ELS-APIKey-2", "db-key"},
				{int64(3), "api_key", nil},
			},
		},
	}

	db, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	keys, err := LoadScopusAPIKeys(context.Background(), db, []string{"env-key"})
	if err != nil {
		t.Fatalf("LoadScopusAPIKeys returned error: %v", err)
	}
	if want := []string{"env-key", "db-key"}; !reflect.DeepEqual(keys, want) {
		t.Fatalf("expected %v, got %v", want, keys)
	}
	if err := state.verifyComplete(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestLoadScopusAPIKeysWithoutDatabase(t *testing.T) {
	keys, err := LoadScopusAPIKeys(context.Background(), nil, []string{"a", "a", "b"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := []string{"a", "b"}; !reflect.DeepEqual(keys, want) {
		t.Fatalf("expected %v, got %v", want, keys)
	}
}
