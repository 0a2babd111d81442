package services

import (
	"errors"
	"fmt"
	"strings"
)

// ConfigurationError reports missing setup such as absent API keys. It is never retried.
type ConfigurationError struct {
	Msg string
}

func (e *ConfigurationError) Error() string { return e.Msg }

// ErrNoCredentials is returned when no Scopus API key is configured.
var ErrNoCredentials = &ConfigurationError{Msg: "no credentials configured"}

// NotFoundError means the identifier was valid but no record exists.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// UpstreamError carries a non-2xx response other than 404.
type UpstreamError struct {
	Service string
	Status  int
	Body    string
}

func (e *UpstreamError) Error() string {
	body := strings.TrimSpace(e.Body)
	if body == "" {
		return fmt.Sprintf("%s api error: status %d", e.Service, e.Status)
	}
	return fmt.Sprintf("%s api error: status %d body %s", e.Service, e.Status, body)
}

// ParseError means a 2xx body lacked the expected structure.
type ParseError struct {
	Field string
	Err   error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse %s: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("parse: missing %s", e.Field)
}

func (e *ParseError) Unwrap() error { return e.Err }

// NavigationTimeoutError is logged when a page did not settle in time. Extraction proceeds.
type NavigationTimeoutError struct {
	URL string
}

func (e *NavigationTimeoutError) Error() string {
	return fmt.Sprintf("navigation timeout: %s", e.URL)
}

// RenderTimeoutError is logged when dynamic content never materialized. Extraction proceeds.
type RenderTimeoutError struct {
	URL string
}

func (e *RenderTimeoutError) Error() string {
	return fmt.Sprintf("render timeout: %s", e.URL)
}

// BrowserLaunchError is fatal for the scrape that hit it.
type BrowserLaunchError struct {
	Err error
}

func (e *BrowserLaunchError) Error() string {
	return fmt.Sprintf("browser launch failed: %v", e.Err)
}

func (e *BrowserLaunchError) Unwrap() error { return e.Err }

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
