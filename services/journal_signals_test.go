package services

import (
	"reflect"
	"testing"

	"journal-metrics-api/models"
)

const scimagoDetailText = `Journal of Tests
Country
United Kingdom
Publisher
Elsevier Ltd.
ISSN
12345678
SJR 2023
0.913 Q2
H-Index
77`

const scimagoDetailHTML = `<html><head><title>Journal of Tests</title></head><body>
<div class="journaldescription"><h1>  Journal of
   Tests </h1></div>
<h1>Other heading</h1>
</body></html>`

const masterListText = `Search Results
Exact Match Found
JOURNAL OF TESTS
Publisher:
ELSEVIER SCI LTD, THE BOULEVARD, OXFORD, ENGLAND
ISSN / eISSN:
1234-5678 / 8765-4321
Web of Science Core Collection:
Science Citation Index Expanded
Additional Web of Science Indexes:
Current Contents Physical, Chemical & Earth Sciences
Search Results
ANOTHER JOURNAL OF TESTS
Web of Science Core Collection:
Emerging Sources Citation Index`

func TestExtractQuartileSignalsReadsSJRBeforeQuartile(t *testing.T) {
	signals := ExtractQuartileSignals(scimagoDetailText)
	if signals.Quartile != models.QuartileQ2 {
		t.Fatalf("expected Q2, got %q", signals.Quartile)
	}
	if signals.SJR == nil || *signals.SJR != 0.913 {
		t.Fatalf("expected sjr 0.913, got %v", signals.SJR)
	}
}

func TestExtractQuartileSignalsIgnoresLaterDecimalQuartilePair(t *testing.T) {
	signals := ExtractQuartileSignals("Quartile Q2\nSJR 0.44\nCited 1.5 Q2")
	if signals.Quartile != models.QuartileQ2 {
		t.Fatalf("expected Q2, got %q", signals.Quartile)
	}
	if signals.SJR == nil || *signals.SJR != 0.44 {
		t.Fatalf("expected sjr 0.44 from the label, got %v", signals.SJR)
	}

	signals = ExtractQuartileSignals("SJR 2023\n0.913 Q1\nMedicine 2.5 Q1")
	if signals.SJR == nil || *signals.SJR != 0.913 {
		t.Fatalf("expected sjr in front of the first quartile, got %v", signals.SJR)
	}
}

func TestExtractQuartileSignalsFallbacks(t *testing.T) {
	signals := ExtractQuartileSignals("Best quartile: q 3\nSJR (2022): 0.44")
	if signals.Quartile != models.QuartileQ3 {
		t.Fatalf("expected Q3 from best quartile phrase, got %q", signals.Quartile)
	}
	if signals.SJR == nil || *signals.SJR != 0.44 {
		t.Fatalf("expected SJR label fallback 0.44, got %v", signals.SJR)
	}

	none := ExtractQuartileSignals("FAQ1 page without rankings")
	if none.Quartile != "" || none.SJR != nil {
		t.Fatalf("expected no signals, got %+v", none)
	}
}

func TestExtractQuartileSignalsIsIdempotent(t *testing.T) {
	first := ExtractQuartileSignals(scimagoDetailText)
	second := ExtractQuartileSignals(scimagoDetailText)
	if first.Quartile != second.Quartile || *first.SJR != *second.SJR {
		t.Fatalf("extraction differs between runs: %+v vs %+v", first, second)
	}
	if ExtractJournalTitle(scimagoDetailHTML) != ExtractJournalTitle(scimagoDetailHTML) {
		t.Fatalf("title extraction differs between runs")
	}
}

func TestExtractJournalTitleSelectorPriority(t *testing.T) {
	if got := ExtractJournalTitle(scimagoDetailHTML); got != "Journal of Tests" {
		t.Fatalf("unexpected title %q", got)
	}

	searchPage := `<div class="search_results"><a href="journalsearch.php?q=1"><span class="jrnlname">Ab</span></a>
	<a href="journalsearch.php?q=2"><span class="jrnlname">Annals of Testing</span></a></div>`
	if got := ExtractJournalTitle(searchPage); got != "Annals of Testing" {
		t.Fatalf("expected first plausible search result, got %q", got)
	}

	if got := ExtractJournalTitle(`<p>nothing</p>`); got != "" {
		t.Fatalf("expected empty title, got %q", got)
	}
}

func TestExtractMasterListSignalsScopesToExactMatchBlock(t *testing.T) {
	signals := ExtractMasterListSignals(masterListText)
	if signals.Title != "JOURNAL OF TESTS" {
		t.Fatalf("unexpected title %q", signals.Title)
	}
	if !reflect.DeepEqual(signals.Indexes, []string{"SCIE"}) {
		t.Fatalf("expected only the exact match collection, got %v", signals.Indexes)
	}
}

func TestExtractMasterListSignalsInlineLabelAndPagination(t *testing.T) {
	text := "Exact Match Found\nSOCIAL THEORY REVIEW\nWeb of Science Core Collection: Social Sciences Citation Index, Arts & Humanities Citation Index\n1 - 10 of 52\nWeb of Science Core Collection:\nEmerging Sources Citation Index"
	signals := ExtractMasterListSignals(text)
	if signals.Title != "SOCIAL THEORY REVIEW" {
		t.Fatalf("unexpected title %q", signals.Title)
	}
	if !reflect.DeepEqual(signals.Indexes, []string{"SSCI", "AHCI"}) {
		t.Fatalf("unexpected indexes %v", signals.Indexes)
	}
}

func TestExtractMasterListSignalsWithoutMarker(t *testing.T) {
	signals := ExtractMasterListSignals("Search Results\nNo results found")
	if !signals.Empty() {
		t.Fatalf("expected empty signals, got %+v", signals)
	}
}
