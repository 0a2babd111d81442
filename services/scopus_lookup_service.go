package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"journal-metrics-api/models"
)

const (
	abstractDOIPath  = "/content/abstract/doi"
	scopusSearchPath = "/content/search/scopus"
)

var doiResolverPrefix = regexp.MustCompile(`(?i)^(https?://(dx\.)?doi\.org/|doi:\s*)`)

// JournalMetricsFallback supplies metrics when the Scopus serial record has none.
type JournalMetricsFallback interface {
	ScrapeJournalMetrics(ctx context.Context, query string) (models.JournalMetrics, error)
}

// ScopusLookupService resolves publications and journals against the Scopus APIs.
type ScopusLookupService struct {
	api      *ScopusClient
	metrics  *CiteScoreMetricsService
	fallback JournalMetricsFallback
}

// NewScopusLookupService constructs a ScopusLookupService. fallback may be nil.
func NewScopusLookupService(api *ScopusClient, fallback JournalMetricsFallback) *ScopusLookupService {
	return &ScopusLookupService{
		api:      api,
		metrics:  NewCiteScoreMetricsService(api),
		fallback: fallback,
	}
}

// JournalRef identifies the serial a publication appeared in.
type JournalRef struct {
	ISSN  string
	Title string
}

// NormalizeDOI strips resolver prefixes such as https://doi.org/ and doi:.
func NormalizeDOI(doi string) string {
	doi = strings.TrimSpace(doi)
	return strings.TrimSpace(doiResolverPrefix.ReplaceAllString(doi, ""))
}

// NormalizeISBN removes hyphens and whitespace.
func NormalizeISBN(isbn string) string {
	return strings.Map(func(r rune) rune {
		if r == '-' || r == ' ' || r == '\t' {
			return -1
		}
		return r
	}, strings.TrimSpace(isbn))
}

// FetchByDOI retrieves the abstract record for doi and enriches it with journal metrics.
func (s *ScopusLookupService) FetchByDOI(ctx context.Context, doi string) (*models.DatabaseCheckResult, error) {
	doi = NormalizeDOI(doi)
	if doi == "" {
		return nil, &NotFoundError{Resource: "publication", ID: doi}
	}

	coredata, authors, err := s.fetchAbstract(ctx, doi)
	if err != nil {
		return nil, err
	}

	result := &models.DatabaseCheckResult{
		Found:         true,
		Title:         coredata.Title.String(),
		Authors:       authors,
		Year:          yearFromCoverDate(coredata.CoverDate.String()),
		Journal:       coredata.PublicationName.String(),
		ISSN:          formatISSN(coredata.ISSN.String()),
		CitationCount: coredata.CitedByCount.intPtr(),
		URL:           scopusLink(coredata.Links, "scopus"),
	}
	if result.URL == "" {
		result.URL = "https://doi.org/" + doi
	}

	if result.ISSN != "" || result.Journal != "" {
		result.MergeMetrics(s.journalMetrics(ctx, result.ISSN, result.Journal))
	}
	return result, nil
}

// ResolveJournal returns the ISSN and journal title recorded for doi.
func (s *ScopusLookupService) ResolveJournal(ctx context.Context, doi string) (JournalRef, error) {
	doi = NormalizeDOI(doi)
	if doi == "" {
		return JournalRef{}, &NotFoundError{Resource: "publication"}
	}
	coredata, _, err := s.fetchAbstract(ctx, doi)
	if err != nil {
		return JournalRef{}, err
	}
	ref := JournalRef{
		ISSN:  formatISSN(coredata.ISSN.String()),
		Title: coredata.PublicationName.String(),
	}
	if ref.ISSN == "" && ref.Title == "" {
		return JournalRef{}, &NotFoundError{Resource: "journal for publication", ID: doi}
	}
	return ref, nil
}

// FetchByISBN searches Scopus by ISBN and returns the first match. Books carry no serial metrics.
func (s *ScopusLookupService) FetchByISBN(ctx context.Context, isbn string) (*models.DatabaseCheckResult, error) {
	isbn = NormalizeISBN(isbn)
	if isbn == "" {
		return nil, &NotFoundError{Resource: "book"}
	}

	query := url.Values{}
	query.Set("query", fmt.Sprintf("ISBN(%s)", isbn))
	query.Set("count", "1")

	var payload searchResponse
	if err := s.api.getJSON(ctx, scopusSearchPath, query, &payload); err != nil {
		return nil, err
	}
	if payload.Results == nil {
		return nil, &ParseError{Field: "search-results"}
	}
	entry, ok := payload.Results.Entry.first()
	if !ok || entry.Error != "" {
		return nil, &NotFoundError{Resource: "book", ID: isbn}
	}

	result := &models.DatabaseCheckResult{
		Found:         true,
		Title:         entry.Title.String(),
		Year:          yearFromCoverDate(entry.CoverDate.String()),
		Journal:       entry.PublicationName.String(),
		CitationCount: entry.CitedByCount.intPtr(),
		URL:           scopusLink(entry.Links, "scopus"),
	}
	if creator := entry.Creator.String(); creator != "" {
		result.Authors = []string{creator}
	}
	return result, nil
}

// FetchJournal searches serial titles by name and reads metrics from the first match.
func (s *ScopusLookupService) FetchJournal(ctx context.Context, name string) (*models.DatabaseCheckResult, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &NotFoundError{Resource: "journal"}
	}

	entry, err := s.metrics.fetchSerialEntry(ctx, "", name)
	if err != nil {
		return nil, err
	}

	title := entry.Title.String()
	issn := formatISSN(entry.ISSN.String())
	if issn == "" {
		issn = formatISSN(entry.EISSN.String())
	}
	result := &models.DatabaseCheckResult{
		Found:   true,
		Title:   title,
		Journal: title,
		ISSN:    issn,
		URL:     scopusLink(entry.Links, "scopus-source"),
	}
	metrics := journalMetricsOf(entry)
	result.MergeMetrics(s.withFallback(ctx, metrics, issn, title))
	return result, nil
}

// FetchJournalMetrics resolves metrics for a journal by ISSN or title, applying
// the scraper fallback. A missing or malformed serial record yields empty
// metrics; configuration and upstream failures are returned.
func (s *ScopusLookupService) FetchJournalMetrics(ctx context.Context, issn, title string) (models.JournalMetrics, error) {
	metrics, err := s.metrics.FetchJournalMetrics(ctx, issn, title)
	if err != nil {
		var parseErr *ParseError
		if !IsNotFound(err) && !errors.As(err, &parseErr) {
			return models.JournalMetrics{}, err
		}
		log.Printf("scopus metrics unavailable for issn=%q title=%q: %v", issn, title, err)
		metrics = models.JournalMetrics{}
	}
	return s.withFallback(ctx, metrics, issn, title), nil
}

// journalMetrics never fails the enclosing lookup: errors degrade to empty metrics.
func (s *ScopusLookupService) journalMetrics(ctx context.Context, issn, title string) models.JournalMetrics {
	metrics, err := s.metrics.FetchJournalMetrics(ctx, issn, title)
	if err != nil {
		log.Printf("scopus metrics unavailable for issn=%q title=%q: %v", issn, title, err)
		metrics = models.JournalMetrics{}
	}
	return s.withFallback(ctx, metrics, issn, title)
}

func (s *ScopusLookupService) withFallback(ctx context.Context, metrics models.JournalMetrics, issn, title string) models.JournalMetrics {
	if s.fallback == nil || metrics.Quartile != "" {
		return metrics
	}
	query := firstNonEmpty(issn, title)
	if query == "" {
		return metrics
	}
	scraped, err := s.fallback.ScrapeJournalMetrics(ctx, query)
	if err != nil {
		log.Printf("scimago fallback failed for %q: %v", query, err)
		return metrics
	}
	if !scraped.HasSignal() {
		return metrics
	}
	if scraped.CiteScore == nil {
		scraped.CiteScore = metrics.CiteScore
	}
	return scraped
}

// fetchAbstract returns the coredata and author names of an abstract record.
func (s *ScopusLookupService) fetchAbstract(ctx context.Context, doi string) (*abstractCoredata, []string, error) {
	query := url.Values{}
	query.Set("view", "META")

	var payload abstractResponse
	path := fmt.Sprintf("%s/%s", abstractDOIPath, escapeDOIPath(doi))
	if err := s.api.getJSON(ctx, path, query, &payload); err != nil {
		if IsNotFound(err) {
			return nil, nil, &NotFoundError{Resource: "publication", ID: doi}
		}
		return nil, nil, err
	}

	if payload.Response == nil {
		return nil, nil, &ParseError{Field: "abstracts-retrieval-response"}
	}
	coredata := payload.Response.Coredata
	if coredata == nil {
		return nil, nil, &ParseError{Field: "coredata"}
	}

	authorList := payload.Response.Authors.Author
	if len(authorList) == 0 {
		authorList = coredata.Creator.Author
	}
	var authors []string
	for _, a := range authorList {
		if name := a.name(); name != "" {
			authors = append(authors, name)
		}
	}
	return coredata, authors, nil
}

// escapeDOIPath escapes each DOI segment but keeps the slashes the API expects.
func escapeDOIPath(doi string) string {
	parts := strings.Split(doi, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}

// scopusLink returns the href of the link with the given @ref (or @rel).
func scopusLink(links []scopusLinkRef, ref string) string {
	for _, l := range links {
		if l.Ref.String() == ref || l.Rel.String() == ref {
			return l.Href.String()
		}
	}
	return ""
}

func yearFromCoverDate(coverDate string) *int {
	if len(coverDate) < 4 {
		return nil
	}
	year, err := strconv.Atoi(coverDate[:4])
	if err != nil || year <= 0 {
		return nil
	}
	return &year
}

// formatISSN takes the first ISSN of a space separated list and hyphenates bare 8-character forms.
func formatISSN(raw string) string {
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return ""
	}
	issn := strings.ToUpper(fields[0])
	if len(issn) == 8 && !strings.Contains(issn, "-") {
		issn = issn[:4] + "-" + issn[4:]
	}
	return issn
}
