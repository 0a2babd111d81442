package services

import (
	"context"
	"log"
	"net/http"

	"journal-metrics-api/config"

	"gorm.io/gorm"
)

// NewPublicationCheckServiceFromConfig wires the Scopus client, the optional
// browser scraper and the aggregator. db may be nil.
func NewPublicationCheckServiceFromConfig(ctx context.Context, cfg *config.AppConfig, db *gorm.DB) (*PublicationCheckService, error) {
	keys, err := LoadScopusAPIKeys(ctx, db, cfg.ScopusAPIKeys)
	if err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		log.Printf("Warning: no Scopus API keys configured; Scopus checks will report %q", ErrNoCredentials.Error())
	} else {
		log.Printf("Loaded %d Scopus API key(s)", len(keys))
	}

	client := &http.Client{Timeout: cfg.ScopusHTTPTimeout}
	api := NewScopusClient(cfg.ScopusBaseURL, NewScopusKeyRotator(keys, client))

	if !cfg.ScraperEnabled {
		log.Println("Scraper disabled; Web of Science checks and the SCImago fallback are off")
		return NewPublicationCheckService(NewScopusLookupService(api, nil), nil), nil
	}

	renderer := NewChromeRenderer(cfg.ChromePath, cfg.ScraperNavTimeout, cfg.ScraperRenderTimeout)
	scraper := NewJournalScraper(renderer, cfg.ScimagoBaseURL, cfg.MasterListBaseURL)
	return NewPublicationCheckService(NewScopusLookupService(api, scraper), scraper), nil
}
