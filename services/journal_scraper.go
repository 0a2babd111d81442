package services

import (
	"context"
	"log"
	"net/url"
	"strings"
	"time"

	"journal-metrics-api/models"
	"journal-metrics-api/monitor"
)

// ScrapeState is the terminal state of one scrape.
type ScrapeState string

const (
	ScrapeFound    ScrapeState = "found"
	ScrapeNotFound ScrapeState = "not_found"
	ScrapeFailed   ScrapeState = "failed"
)

const (
	siteScimago    = "scimago"
	siteMasterList = "mjl"

	defaultScimagoBaseURL    = "https://www.scimagojr.com"
	defaultMasterListBaseURL = "https://mjl.clarivate.com"

	scimagoResultLink = ".search_results a"
	publisherAndISSN  = `(() => { const t = document.body ? document.body.innerText : ""; return /publisher/i.test(t) && /issn/i.test(t); })()`
	exactMatchBanner  = `(() => { const t = document.body ? document.body.innerText : ""; return /exact match found/i.test(t) || (/publisher/i.test(t) && /issn/i.test(t)); })()`
)

// JournalScraper reads journal signals from the SCImago and Master Journal
// List sites through a PageRenderer.
type JournalScraper struct {
	renderer          PageRenderer
	scimagoBaseURL    string
	masterListBaseURL string
}

// NewJournalScraper constructs a JournalScraper. Empty base URLs use the public sites.
func NewJournalScraper(renderer PageRenderer, scimagoBaseURL, masterListBaseURL string) *JournalScraper {
	if scimagoBaseURL == "" {
		scimagoBaseURL = defaultScimagoBaseURL
	}
	if masterListBaseURL == "" {
		masterListBaseURL = defaultMasterListBaseURL
	}
	return &JournalScraper{
		renderer:          renderer,
		scimagoBaseURL:    strings.TrimRight(scimagoBaseURL, "/"),
		masterListBaseURL: strings.TrimRight(masterListBaseURL, "/"),
	}
}

// ScimagoSearchURL returns the journal search URL for query (ISSN or title).
func (s *JournalScraper) ScimagoSearchURL(query string) string {
	return s.scimagoBaseURL + "/journalsearch.php?q=" + url.QueryEscape(strings.TrimSpace(query))
}

// MasterListSearchURL searches by ISSN when query looks like one, otherwise by title.
func (s *JournalScraper) MasterListSearchURL(query string) string {
	query = strings.TrimSpace(query)
	if looksLikeISSN(query) {
		return s.masterListBaseURL + "/search-results?issn=" + url.QueryEscape(query)
	}
	return s.masterListBaseURL + "/search-results?search=" + url.QueryEscape(query)
}

// ScrapeJournalMetrics returns the quartile and SJR shown on the journal's
// SCImago page. It returns a NotFoundError when the page yielded nothing; a
// page that only names the journal gives metrics without a source.
func (s *JournalScraper) ScrapeJournalMetrics(ctx context.Context, query string) (models.JournalMetrics, error) {
	signals, state, err := s.scrapeScimago(ctx, query)
	if err != nil {
		return models.JournalMetrics{}, err
	}
	if state == ScrapeNotFound {
		return models.JournalMetrics{}, &NotFoundError{Resource: "scimago journal", ID: query}
	}

	log.Printf("scimago: %q resolved to %q quartile=%s", query, signals.Title, signals.Quartile)
	metrics := models.JournalMetrics{SJR: signals.SJR, Quartile: signals.Quartile}
	if metrics.HasSignal() {
		metrics.MetricsSource = models.MetricsSourceScimago
	}
	return metrics, nil
}

// scrapeScimago renders the SCImago search for query and records the outcome.
// Any extracted title, quartile or SJR makes the scrape found.
func (s *JournalScraper) scrapeScimago(ctx context.Context, query string) (PageSignals, ScrapeState, error) {
	started := time.Now()
	page, err := s.renderer.Render(ctx, RenderRequest{
		URL:             s.ScimagoSearchURL(query),
		FollowSelector:  scimagoResultLink,
		ReadyExpression: publisherAndISSN,
	})
	if err != nil {
		monitor.ObserveScrape(siteScimago, string(ScrapeFailed), time.Since(started))
		return PageSignals{}, ScrapeFailed, err
	}

	signals := ExtractQuartileSignals(page.Text)
	signals.Title = ExtractJournalTitle(page.HTML)
	state := ScrapeFound
	if signals.Empty() && signals.SJR == nil {
		state = ScrapeNotFound
	}
	monitor.ObserveScrape(siteScimago, string(state), time.Since(started))
	return signals, state, nil
}

// CheckMasterList looks the journal up on the Master Journal List and reports
// its Web of Science Core Collection membership. Launch failures are returned;
// an empty page yields a found=false result.
func (s *JournalScraper) CheckMasterList(ctx context.Context, query string) (*models.DatabaseCheckResult, error) {
	started := time.Now()
	target := s.MasterListSearchURL(query)

	page, err := s.renderer.Render(ctx, RenderRequest{
		URL:             target,
		ReadyExpression: exactMatchBanner,
	})
	if err != nil {
		monitor.ObserveScrape(siteMasterList, string(ScrapeFailed), time.Since(started))
		return nil, err
	}

	signals := ExtractMasterListSignals(page.Text)
	if signals.Empty() {
		monitor.ObserveScrape(siteMasterList, string(ScrapeNotFound), time.Since(started))
		return models.NotFoundResult("journal not found in Web of Science Master Journal List"), nil
	}

	monitor.ObserveScrape(siteMasterList, string(ScrapeFound), time.Since(started))
	result := &models.DatabaseCheckResult{
		Found:   true,
		Title:   signals.Title,
		Journal: signals.Title,
		URL:     target,
		Indexes: signals.Indexes,
	}
	if looksLikeISSN(query) {
		result.ISSN = formatISSN(query)
	}
	if len(signals.Indexes) > 0 {
		result.IndexStatus = "Indexed in " + strings.Join(signals.Indexes, ", ")
	} else {
		result.IndexStatus = "Listed without Core Collection index"
	}
	return result, nil
}

func looksLikeISSN(s string) bool {
	compact := strings.ReplaceAll(strings.TrimSpace(s), "-", "")
	if len(compact) != 8 {
		return false
	}
	for i, r := range compact {
		if r >= '0' && r <= '9' {
			continue
		}
		if i == 7 && (r == 'X' || r == 'x') {
			continue
		}
		return false
	}
	return true
}
