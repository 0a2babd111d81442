package services

import (
	"regexp"
	"strconv"
	"strings"

	"journal-metrics-api/models"

	"github.com/PuerkitoBio/goquery"
)

// PageSignals holds whatever a rendered page yielded. Missing fields stay zero.
type PageSignals struct {
	Title    string
	Quartile models.QuartileLabel
	SJR      *float64
	Indexes  []string
}

// Empty reports whether no extraction rule produced a value.
func (p PageSignals) Empty() bool {
	return p.Title == "" && p.Quartile == "" && len(p.Indexes) == 0
}

const (
	minJournalTitleLength = 4
	minUpperTitleLength   = 5
)

// journalTitleSelectors are tried in order on the journal-metrics site.
var journalTitleSelectors = []string{
	".journaldescription h1",
	"h1",
	".search_results a span.jrnlname",
	"span.jrnlname",
}

var (
	quartileToken  = regexp.MustCompile(`\bQ([1-4])\b`)
	bestQuartile   = regexp.MustCompile(`(?i)best\s+quartile\s*[:\-]?\s*Q\s*([1-4])`)
	sjrAfterLabel  = regexp.MustCompile(`SJR[\s\S]{0,40}?\b(0\.\d+)`)
	trailingSJR    = regexp.MustCompile(`(\d+\.\d+)\s*$`)
	paginationLine = regexp.MustCompile(`(?i)^(\d+\s*[-–]\s*\d+\s+of\s+\d+|items per page|page\s+\d+\s+of\s+\d+)`)
)

// collectionAbbreviations maps Web of Science Core Collection names to their short form.
var collectionAbbreviations = []struct {
	name   string
	abbrev string
}{
	{"Science Citation Index Expanded", "SCIE"},
	{"Social Sciences Citation Index", "SSCI"},
	{"Arts & Humanities Citation Index", "AHCI"},
	{"Emerging Sources Citation Index", "ESCI"},
}

// ExtractQuartileSignals reads quartile and SJR from rendered journal-metrics text.
func ExtractQuartileSignals(renderedText string) PageSignals {
	var signals PageSignals

	loc := quartileToken.FindStringSubmatchIndex(renderedText)
	if loc == nil {
		loc = bestQuartile.FindStringSubmatchIndex(renderedText)
	}
	if loc != nil {
		signals.Quartile = models.QuartileLabel("Q" + renderedText[loc[2]:loc[3]])
		// SJR is the decimal directly in front of the quartile that was read.
		if m := trailingSJR.FindStringSubmatch(renderedText[:loc[0]]); m != nil {
			signals.SJR = parseDecimal(m[1])
		}
	}
	if signals.SJR == nil {
		if m := sjrAfterLabel.FindStringSubmatch(renderedText); m != nil {
			signals.SJR = parseDecimal(m[1])
		}
	}
	return signals
}

// ExtractJournalTitle returns the first selector match long enough to be a title.
func ExtractJournalTitle(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	for _, selector := range journalTitleSelectors {
		var title string
		doc.Find(selector).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
			text := collapseSpaces(sel.Text())
			if len(text) >= minJournalTitleLength {
				title = text
				return false
			}
			return true
		})
		if title != "" {
			return title
		}
	}
	return ""
}

// ExtractMasterListSignals reads the title and Core Collection indexes from
// the exact-match block of master-journal-list text.
func ExtractMasterListSignals(renderedText string) PageSignals {
	var signals PageSignals
	block := exactMatchBlock(renderedText)
	if len(block) == 0 {
		return signals
	}

	for _, line := range block {
		if len(line) > minUpperTitleLength && isUpperLine(line) {
			signals.Title = line
			break
		}
	}

	const label = "web of science core collection:"
	seen := make(map[string]struct{})
	for i, line := range block {
		lower := strings.ToLower(line)
		if !strings.HasPrefix(lower, label) {
			continue
		}
		value := strings.TrimSpace(line[len(label):])
		if value == "" && i+1 < len(block) {
			value = block[i+1]
		}
		for _, abbrev := range collectionsIn(value) {
			if _, ok := seen[abbrev]; ok {
				continue
			}
			seen[abbrev] = struct{}{}
			signals.Indexes = append(signals.Indexes, abbrev)
		}
	}
	return signals
}

// exactMatchBlock returns the trimmed, non-empty lines after the "Exact Match
// Found" marker up to the next "Search Results" or pagination line.
func exactMatchBlock(text string) []string {
	var lines []string
	for _, raw := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		if line := strings.TrimSpace(raw); line != "" {
			lines = append(lines, line)
		}
	}

	start := -1
	for i, line := range lines {
		if strings.Contains(strings.ToLower(line), "exact match found") {
			start = i
			break
		}
	}
	if start < 0 {
		return nil
	}

	end := len(lines)
	for i := start + 1; i < len(lines); i++ {
		if strings.Contains(strings.ToLower(lines[i]), "search results") || paginationLine.MatchString(lines[i]) {
			end = i
			break
		}
	}
	return lines[start+1 : end]
}

func collectionsIn(value string) []string {
	lower := strings.ToLower(value)
	var found []string
	for _, c := range collectionAbbreviations {
		if strings.Contains(lower, strings.ToLower(c.name)) {
			found = append(found, c.abbrev)
		}
	}
	return found
}

func isUpperLine(line string) bool {
	hasLetter := false
	for _, r := range line {
		if r >= 'a' && r <= 'z' {
			return false
		}
		if r >= 'A' && r <= 'Z' {
			hasLetter = true
		}
	}
	return hasLetter && strings.ToUpper(line) == line
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func parseDecimal(s string) *float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return nil
	}
	return &f
}
