package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultScopusBaseURL     = "https://api.elsevier.com"
	defaultScimagoBaseURL    = "https://www.scimagojr.com"
	defaultMasterListBaseURL = "https://mjl.clarivate.com"
	defaultServerPort        = "8080"
)

// AppConfig holds the settings read from the environment at process start.
type AppConfig struct {
	ScopusAPIKeys     []string
	ScopusBaseURL     string
	ScopusHTTPTimeout time.Duration

	ScraperEnabled       bool
	ChromePath           string
	ScimagoBaseURL       string
	MasterListBaseURL    string
	ScraperNavTimeout    time.Duration
	ScraperRenderTimeout time.Duration

	ServerPort string
	GinMode    string
	JWTSecret  string
}

// Load reads AppConfig from the environment. Callers load .env beforehand.
func Load() *AppConfig {
	return &AppConfig{
		ScopusAPIKeys:     ScopusAPIKeysFromEnv(),
		ScopusBaseURL:     envString("SCOPUS_BASE_URL", defaultScopusBaseURL),
		ScopusHTTPTimeout: envDuration("SCOPUS_HTTP_TIMEOUT", 30*time.Second),

		ScraperEnabled:       envBool("SCRAPER_ENABLED", true),
		ChromePath:           strings.TrimSpace(os.Getenv("CHROME_PATH")),
		ScimagoBaseURL:       envString("SCIMAGO_BASE_URL", defaultScimagoBaseURL),
		MasterListBaseURL:    envString("MJL_BASE_URL", defaultMasterListBaseURL),
		ScraperNavTimeout:    envDuration("SCRAPER_NAV_TIMEOUT", 30*time.Second),
		ScraperRenderTimeout: envDuration("SCRAPER_RENDER_TIMEOUT", 15*time.Second),

		ServerPort: envString("SERVER_PORT", defaultServerPort),
		GinMode:    strings.TrimSpace(os.Getenv("GIN_MODE")),
		JWTSecret:  os.Getenv("JWT_SECRET"),
	}
}

// ScopusAPIKeysFromEnv returns the ordered key list: SCOPUS_API_KEYS first,
// then the legacy single SCOPUS_API_KEY. Duplicates and blanks are dropped.
func ScopusAPIKeysFromEnv() []string {
	var keys []string
	for _, part := range strings.Split(os.Getenv("SCOPUS_API_KEYS"), ",") {
		keys = append(keys, part)
	}
	keys = append(keys, os.Getenv("SCOPUS_API_KEY"))
	return MergeKeys(keys)
}

// MergeKeys trims, drops blanks and removes duplicates while keeping order.
func MergeKeys(lists ...[]string) []string {
	seen := make(map[string]struct{})
	var merged []string
	for _, list := range lists {
		for _, key := range list {
			key = strings.TrimSpace(key)
			if key == "" {
				continue
			}
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			merged = append(merged, key)
		}
	}
	return merged
}

func envString(name, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(name)); v != "" {
		return v
	}
	return fallback
}

func envBool(name string, fallback bool) bool {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}

// envDuration accepts Go duration strings ("45s") or plain seconds ("45").
func envDuration(name string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil && d > 0 {
		return d
	}
	if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return fallback
}
