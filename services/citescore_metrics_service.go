package services

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"journal-metrics-api/models"
)

const (
	serialTitlePath     = "/content/serial/title"
	serialTitleISSNPath = "/content/serial/title/issn"
)

// CiteScoreMetricsService resolves journal-level metrics from the Scopus serial title API.
type CiteScoreMetricsService struct {
	api *ScopusClient
}

// NewCiteScoreMetricsService constructs a CiteScoreMetricsService.
func NewCiteScoreMetricsService(api *ScopusClient) *CiteScoreMetricsService {
	return &CiteScoreMetricsService{api: api}
}

// FetchJournalMetrics looks the serial up by ISSN, or by title when no ISSN is
// known, and extracts its metrics. A journal without any resolvable metric
// returns empty metrics and no error.
func (s *CiteScoreMetricsService) FetchJournalMetrics(ctx context.Context, issn, title string) (models.JournalMetrics, error) {
	entry, err := s.fetchSerialEntry(ctx, issn, title)
	if err != nil {
		return models.JournalMetrics{}, err
	}
	return journalMetricsOf(entry), nil
}

func (s *CiteScoreMetricsService) fetchSerialEntry(ctx context.Context, issn, title string) (serialEntry, error) {
	issn = normalizeISSN(issn)
	title = strings.TrimSpace(title)

	query := url.Values{}
	query.Set("view", "CITESCORE")

	var path string
	switch {
	case issn != "":
		path = fmt.Sprintf("%s/%s", serialTitleISSNPath, url.PathEscape(issn))
	case title != "":
		path = serialTitlePath
		query.Set("title", title)
	default:
		return serialEntry{}, &NotFoundError{Resource: "serial"}
	}

	var payload serialResponse
	if err := s.api.getJSON(ctx, path, query, &payload); err != nil {
		return serialEntry{}, err
	}
	return firstSerialEntry(payload, firstNonEmpty(issn, title))
}

// firstSerialEntry unwraps serial-metadata-response.entry[0].
func firstSerialEntry(payload serialResponse, id string) (serialEntry, error) {
	if payload.Response == nil {
		return serialEntry{}, &ParseError{Field: "serial-metadata-response"}
	}
	if payload.Response.Error != "" {
		return serialEntry{}, &NotFoundError{Resource: "serial", ID: id}
	}
	entry, ok := payload.Response.Entry.first()
	if !ok || entry.Error != "" {
		return serialEntry{}, &NotFoundError{Resource: "serial", ID: id}
	}
	return entry, nil
}

// journalMetricsOf turns a serial entry into JournalMetrics.
//
// The governing ranking is the lowest percentile across subject areas; it sets
// CiteScorePercentile and Quartile. Every ranking is also reported with its
// own quartile. An SJR without any percentile yields the Scopus-indexed label.
func journalMetricsOf(entry serialEntry) models.JournalMetrics {
	metrics := models.JournalMetrics{MetricsSource: models.MetricsSourceScopus}

	// SJRList.SJR[0] is the most recent year.
	if sjr, ok := entry.SJRList.SJR.first(); ok {
		metrics.SJR = sjr.floatPtr()
	}
	metrics.CiteScore = entry.CiteScoreYearInfoList.CurrentMetric.floatPtr()

	ranks, _ := extractSubjectRanks(entry)
	metrics.SubjectAreas = toSubjectRankings(ranks)
	if governing, ok := governingRanking(ranks); ok {
		p := governing.Percentile
		metrics.CiteScorePercentile = &p
		metrics.Quartile = PercentileToQuartile(p)
	} else if metrics.SJR != nil {
		metrics.Quartile = models.QuartileScopusIndexed
	}

	if !metrics.HasSignal() {
		metrics.MetricsSource = ""
	}
	return metrics
}

// governingRanking returns the lowest-percentile ranking. Ties keep API order.
func governingRanking(ranks []rankedSubject) (rankedSubject, bool) {
	if len(ranks) == 0 {
		return rankedSubject{}, false
	}
	sorted := append([]rankedSubject(nil), ranks...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Percentile < sorted[j].Percentile
	})
	return sorted[0], true
}

// PercentileToQuartile buckets a 0-100 percentile: >=75 Q1, >=50 Q2, >=25 Q3, else Q4.
func PercentileToQuartile(percentile int) models.QuartileLabel {
	switch {
	case percentile >= 75:
		return models.QuartileQ1
	case percentile >= 50:
		return models.QuartileQ2
	case percentile >= 25:
		return models.QuartileQ3
	default:
		return models.QuartileQ4
	}
}

func normalizeISSN(issn string) string {
	issn = strings.ToUpper(strings.TrimSpace(issn))
	return strings.ReplaceAll(issn, " ", "")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
