package models

import (
	"errors"
	"strings"
)

// QuartileLabel is the journal rank bucket reported to callers.
// The empty label means no quartile could be determined.
type QuartileLabel string

const (
	QuartileQ1            QuartileLabel = "Q1"
	QuartileQ2            QuartileLabel = "Q2"
	QuartileQ3            QuartileLabel = "Q3"
	QuartileQ4            QuartileLabel = "Q4"
	QuartileScopusIndexed QuartileLabel = "Scopus-indexed"
)

// Metrics sources recorded on JournalMetrics.
const (
	MetricsSourceScopus  = "scopus"
	MetricsSourceScimago = "scimago"
)

// Database identifiers used in results and logs.
const (
	DatabaseScopus = "scopus"
	DatabaseWoS    = "wos"
)

// SubjectRanking is one subject-area standing of a journal.
type SubjectRanking struct {
	SubjectCode string        `json:"subject_code"`
	SubjectName string        `json:"subject_name"`
	Percentile  int           `json:"percentile"`
	Quartile    QuartileLabel `json:"quartile"`
}

// JournalMetrics carries journal-level quality signals.
type JournalMetrics struct {
	SJR                 *float64         `json:"sjr,omitempty"`
	CiteScore           *float64         `json:"cite_score,omitempty"`
	CiteScorePercentile *int             `json:"cite_score_percentile,omitempty"`
	Quartile            QuartileLabel    `json:"quartile,omitempty"`
	SubjectAreas        []SubjectRanking `json:"subject_areas,omitempty"`
	MetricsSource       string           `json:"metrics_source,omitempty"`
}

// HasSignal reports whether any metric value was resolved.
func (m JournalMetrics) HasSignal() bool {
	return m.SJR != nil || m.CiteScore != nil || m.CiteScorePercentile != nil || m.Quartile != ""
}

// DatabaseCheckResult is the outcome of checking one database.
type DatabaseCheckResult struct {
	Found         bool     `json:"found"`
	Title         string   `json:"title,omitempty"`
	Authors       []string `json:"authors,omitempty"`
	Year          *int     `json:"year,omitempty"`
	Journal       string   `json:"journal,omitempty"`
	ISSN          string   `json:"issn,omitempty"`
	CitationCount *int     `json:"citation_count,omitempty"`
	URL           string   `json:"url,omitempty"`
	Error         string   `json:"error,omitempty"`
	IndexStatus   string   `json:"index_status,omitempty"`
	Indexes       []string `json:"indexes,omitempty"`
	JournalMetrics
}

// NotFoundResult builds a found=false result carrying only the error message.
func NotFoundResult(message string) *DatabaseCheckResult {
	if strings.TrimSpace(message) == "" {
		message = "not found"
	}
	return &DatabaseCheckResult{Found: false, Error: message}
}

// MergeMetrics copies metric fields onto the result.
func (r *DatabaseCheckResult) MergeMetrics(m JournalMetrics) {
	if r == nil {
		return
	}
	r.JournalMetrics = m
}

// AggregateResult pairs the per-database outcomes of one request.
// A nil slot means that database was never queried.
type AggregateResult struct {
	Scopus *DatabaseCheckResult `json:"scopus"`
	WoS    *DatabaseCheckResult `json:"wos"`
}

// RequestKind names which identifier a MetricsRequest carries.
type RequestKind string

const (
	RequestKindDOI     RequestKind = "doi"
	RequestKindISBN    RequestKind = "isbn"
	RequestKindJournal RequestKind = "journal"
)

// MetricsRequest carries exactly one publication or journal identifier.
type MetricsRequest struct {
	DOI         string `json:"doi,omitempty" form:"doi"`
	ISBN        string `json:"isbn,omitempty" form:"isbn"`
	JournalName string `json:"journal,omitempty" form:"journal"`
	ISSN        string `json:"issn,omitempty" form:"issn"`
}

var (
	ErrNoIdentifier        = errors.New("one of doi, isbn or journal is required")
	ErrMultipleIdentifiers = errors.New("only one of doi, isbn or journal may be supplied")
)

// Kind returns the identifier kind, validating that exactly one is present.
func (r MetricsRequest) Kind() (RequestKind, error) {
	var kinds []RequestKind
	if strings.TrimSpace(r.DOI) != "" {
		kinds = append(kinds, RequestKindDOI)
	}
	if strings.TrimSpace(r.ISBN) != "" {
		kinds = append(kinds, RequestKindISBN)
	}
	if strings.TrimSpace(r.JournalName) != "" {
		kinds = append(kinds, RequestKindJournal)
	}
	switch len(kinds) {
	case 0:
		return "", ErrNoIdentifier
	case 1:
		return kinds[0], nil
	default:
		return "", ErrMultipleIdentifiers
	}
}

// Validate rejects requests carrying zero or several identifiers.
func (r MetricsRequest) Validate() error {
	_, err := r.Kind()
	return err
}
