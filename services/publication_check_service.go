package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"journal-metrics-api/models"
	"journal-metrics-api/monitor"

	"github.com/google/uuid"
)

const wosNoISBNMessage = "Web of Science does not support ISBN search"

// ScopusChecker is the Scopus side of a publication check.
type ScopusChecker interface {
	FetchByDOI(ctx context.Context, doi string) (*models.DatabaseCheckResult, error)
	FetchByISBN(ctx context.Context, isbn string) (*models.DatabaseCheckResult, error)
	FetchJournal(ctx context.Context, name string) (*models.DatabaseCheckResult, error)
	FetchJournalMetrics(ctx context.Context, issn, title string) (models.JournalMetrics, error)
}

// MasterListChecker is the Web of Science side of a publication check.
type MasterListChecker interface {
	CheckMasterList(ctx context.Context, query string) (*models.DatabaseCheckResult, error)
}

// PublicationCheckService queries Scopus and Web of Science for one request
// and returns both outcomes. wos may be nil when scraping is disabled.
type PublicationCheckService struct {
	scopus ScopusChecker
	wos    MasterListChecker
}

// NewPublicationCheckService constructs a PublicationCheckService.
func NewPublicationCheckService(scopus ScopusChecker, wos MasterListChecker) *PublicationCheckService {
	return &PublicationCheckService{scopus: scopus, wos: wos}
}

// Check dispatches on the identifier carried by req.
func (s *PublicationCheckService) Check(ctx context.Context, req models.MetricsRequest) (*models.AggregateResult, error) {
	kind, err := req.Kind()
	if err != nil {
		return nil, err
	}
	switch kind {
	case models.RequestKindDOI:
		return s.CheckPublicationByDOI(ctx, req.DOI, req.ISSN), nil
	case models.RequestKindISBN:
		return s.CheckPublicationByISBN(ctx, req.ISBN), nil
	default:
		return s.CheckJournalByName(ctx, req.JournalName, req.ISSN), nil
	}
}

// CheckPublicationByDOI queries both databases concurrently. With knownISSN
// the Web of Science side searches it directly; otherwise it waits for the
// journal the Scopus side reads from the abstract record.
func (s *PublicationCheckService) CheckPublicationByDOI(ctx context.Context, doi, knownISSN string) *models.AggregateResult {
	checkID := uuid.NewString()
	knownISSN = strings.TrimSpace(knownISSN)
	log.Printf("check %s: doi=%q issn=%q", checkID, doi, knownISSN)

	if knownISSN != "" {
		return s.both(ctx, checkID,
			func(ctx context.Context) (*models.DatabaseCheckResult, error) {
				return s.scopus.FetchByDOI(ctx, doi)
			},
			func(ctx context.Context) (*models.DatabaseCheckResult, error) {
				return s.wos.CheckMasterList(ctx, knownISSN)
			},
		)
	}

	journal := newJournalRefFuture()
	return s.both(ctx, checkID,
		func(ctx context.Context) (*models.DatabaseCheckResult, error) {
			defer journal.resolve(JournalRef{}, errors.New("scopus lookup did not complete"))
			res, err := s.scopus.FetchByDOI(ctx, doi)
			if err != nil {
				journal.resolve(JournalRef{}, err)
				return nil, err
			}
			var ref JournalRef
			if res != nil {
				ref = JournalRef{ISSN: res.ISSN, Title: res.Journal}
			}
			journal.resolve(ref, nil)
			return res, nil
		},
		func(ctx context.Context) (*models.DatabaseCheckResult, error) {
			ref, err := journal.wait(ctx)
			if err != nil {
				return nil, fmt.Errorf("resolve journal for doi: %w", err)
			}
			query := firstNonEmpty(ref.ISSN, ref.Title)
			if query == "" {
				return nil, &NotFoundError{Resource: "journal for publication", ID: doi}
			}
			return s.wos.CheckMasterList(ctx, query)
		},
	)
}

// CheckPublicationByISBN queries Scopus only. Web of Science is never contacted.
func (s *PublicationCheckService) CheckPublicationByISBN(ctx context.Context, isbn string) *models.AggregateResult {
	checkID := uuid.NewString()
	log.Printf("check %s: isbn=%q", checkID, isbn)

	result := &models.AggregateResult{
		Scopus: settle(ctx, checkID, models.DatabaseScopus, func(ctx context.Context) (*models.DatabaseCheckResult, error) {
			return s.scopus.FetchByISBN(ctx, isbn)
		}),
		WoS: models.NotFoundResult(wosNoISBNMessage),
	}
	return result
}

// CheckJournalByName queries both databases by journal title concurrently.
// Web of Science is searched by knownISSN when one is given.
func (s *PublicationCheckService) CheckJournalByName(ctx context.Context, name, knownISSN string) *models.AggregateResult {
	checkID := uuid.NewString()
	name = strings.TrimSpace(name)
	wosQuery := firstNonEmpty(strings.TrimSpace(knownISSN), name)
	log.Printf("check %s: journal=%q", checkID, name)

	return s.both(ctx, checkID,
		func(ctx context.Context) (*models.DatabaseCheckResult, error) {
			return s.scopus.FetchJournal(ctx, name)
		},
		func(ctx context.Context) (*models.DatabaseCheckResult, error) {
			return s.wos.CheckMasterList(ctx, wosQuery)
		},
	)
}

// FetchJournalMetricsOnly returns journal metrics without a publication lookup.
func (s *PublicationCheckService) FetchJournalMetricsOnly(ctx context.Context, issn, title string) (models.JournalMetrics, error) {
	issn, title = strings.TrimSpace(issn), strings.TrimSpace(title)
	if issn == "" && title == "" {
		return models.JournalMetrics{}, errors.New("issn or title is required")
	}
	return s.scopus.FetchJournalMetrics(ctx, issn, title)
}

// journalRefFuture hands the journal read by the Scopus lookup to the Web of
// Science lookup. Only the first resolve counts.
type journalRefFuture struct {
	once sync.Once
	done chan struct{}
	ref  JournalRef
	err  error
}

func newJournalRefFuture() *journalRefFuture {
	return &journalRefFuture{done: make(chan struct{})}
}

func (f *journalRefFuture) resolve(ref JournalRef, err error) {
	f.once.Do(func() {
		f.ref, f.err = ref, err
		close(f.done)
	})
}

func (f *journalRefFuture) wait(ctx context.Context) (JournalRef, error) {
	select {
	case <-f.done:
		return f.ref, f.err
	case <-ctx.Done():
		return JournalRef{}, ctx.Err()
	}
}

type checkFunc func(ctx context.Context) (*models.DatabaseCheckResult, error)

// both runs the two lookups in their own goroutines and waits for both.
func (s *PublicationCheckService) both(ctx context.Context, checkID string, scopus, wos checkFunc) *models.AggregateResult {
	result := &models.AggregateResult{}
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		result.Scopus = settle(ctx, checkID, models.DatabaseScopus, scopus)
	}()
	go func() {
		defer wg.Done()
		if s.wos == nil {
			result.WoS = models.NotFoundResult("Web of Science lookup is disabled")
			monitor.RecordCheck(models.DatabaseWoS, "disabled")
			return
		}
		result.WoS = settle(ctx, checkID, models.DatabaseWoS, wos)
	}()
	wg.Wait()
	return result
}

// settle runs fn and turns any error or panic into a found=false result.
func settle(ctx context.Context, checkID, database string, fn checkFunc) (res *models.DatabaseCheckResult) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("check %s: %s lookup panicked: %v", checkID, database, r)
			monitor.RecordCheck(database, "error")
			res = models.NotFoundResult(fmt.Sprintf("%s lookup failed: internal error", database))
		}
	}()

	res, err := fn(ctx)
	switch {
	case err != nil:
		log.Printf("check %s: %s lookup: %v", checkID, database, err)
		if IsNotFound(err) {
			monitor.RecordCheck(database, "not_found")
		} else {
			monitor.RecordCheck(database, "error")
		}
		return models.NotFoundResult(err.Error())
	case res == nil:
		monitor.RecordCheck(database, "not_found")
		return models.NotFoundResult("not found")
	case !res.Found:
		monitor.RecordCheck(database, "not_found")
	default:
		monitor.RecordCheck(database, "found")
	}
	return res
}
