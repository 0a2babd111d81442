package services

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Data structures for parsing Elsevier API responses. The API returns a single
// object where a list is expected when the list has one element, and numbers
// arrive as JSON strings, JSON numbers or {"$": "..."} text nodes.

// oneOrMany decodes either a single value or a list of values.
type oneOrMany[T any] []T

func (l *oneOrMany[T]) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*l = nil
		return nil
	}
	if data[0] == '[' {
		var arr []T
		if err := json.Unmarshal(data, &arr); err != nil {
			return err
		}
		*l = arr
		return nil
	}
	var single T
	if err := json.Unmarshal(data, &single); err != nil {
		return err
	}
	*l = oneOrMany[T]{single}
	return nil
}

func (l oneOrMany[T]) first() (T, bool) {
	if len(l) == 0 {
		var zero T
		return zero, false
	}
	return l[0], true
}

// flexString holds a scalar as text regardless of its JSON encoding.
type flexString string

func (s *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}
	switch data[0] {
	case '"':
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = flexString(strings.TrimSpace(v))
	case '{':
		var node struct {
			Text flexString `json:"$"`
		}
		if err := json.Unmarshal(data, &node); err != nil {
			return err
		}
		*s = node.Text
	case '[':
		*s = ""
	default:
		*s = flexString(data)
	}
	return nil
}

func (s flexString) String() string { return string(s) }

func (s flexString) float() (float64, bool) {
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(string(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func (s flexString) floatPtr() *float64 {
	if f, ok := s.float(); ok {
		return &f
	}
	return nil
}

func (s flexString) int() (int, bool) {
	f, ok := s.float()
	if !ok {
		return 0, false
	}
	return int(math.Round(f)), true
}

func (s flexString) intPtr() *int {
	if i, ok := s.int(); ok {
		return &i
	}
	return nil
}

type scopusLinkRef struct {
	Ref  flexString `json:"@ref"`
	Rel  flexString `json:"@rel"`
	Href flexString `json:"@href"`
}

// Abstract retrieval: /content/abstract/doi/{doi}

type abstractResponse struct {
	Response *abstractRecord `json:"abstracts-retrieval-response"`
}

type abstractRecord struct {
	Coredata *abstractCoredata `json:"coredata"`
	Authors  struct {
		Author oneOrMany[abstractAuthor] `json:"author"`
	} `json:"authors"`
}

type abstractCoredata struct {
	Title           flexString               `json:"dc:title"`
	PublicationName flexString               `json:"prism:publicationName"`
	ISSN            flexString               `json:"prism:issn"`
	CoverDate       flexString               `json:"prism:coverDate"`
	CitedByCount    flexString               `json:"citedby-count"`
	Links           oneOrMany[scopusLinkRef] `json:"link"`
	Creator         struct {
		Author oneOrMany[abstractAuthor] `json:"author"`
	} `json:"dc:creator"`
}

type abstractAuthor struct {
	IndexedName   flexString `json:"ce:indexed-name"`
	PreferredName struct {
		IndexedName flexString `json:"ce:indexed-name"`
	} `json:"preferred-name"`
}

func (a abstractAuthor) name() string {
	return firstNonEmpty(a.IndexedName.String(), a.PreferredName.IndexedName.String())
}

// Scopus search: /content/search/scopus

type searchResponse struct {
	Results *struct {
		Entry oneOrMany[searchEntry] `json:"entry"`
	} `json:"search-results"`
}

type searchEntry struct {
	Error           flexString               `json:"error"`
	Title           flexString               `json:"dc:title"`
	Creator         flexString               `json:"dc:creator"`
	PublicationName flexString               `json:"prism:publicationName"`
	CoverDate       flexString               `json:"prism:coverDate"`
	CitedByCount    flexString               `json:"citedby-count"`
	Links           oneOrMany[scopusLinkRef] `json:"link"`
}

// Serial title: /content/serial/title[/issn/{issn}]?view=CITESCORE

type serialResponse struct {
	Response *struct {
		Error flexString             `json:"error"`
		Entry oneOrMany[serialEntry] `json:"entry"`
	} `json:"serial-metadata-response"`
}

type serialEntry struct {
	Error        flexString               `json:"error"`
	Title        flexString               `json:"dc:title"`
	ISSN         flexString               `json:"prism:issn"`
	EISSN        flexString               `json:"prism:eIssn"`
	Links        oneOrMany[scopusLinkRef] `json:"link"`
	SubjectAreas oneOrMany[subjectArea]   `json:"subject-area"`
	SJRList      struct {
		SJR oneOrMany[flexString] `json:"SJR"`
	} `json:"SJRList"`
	CiteScoreYearInfoList citeScoreYearInfoList `json:"citeScoreYearInfoList"`
	// CurrentSubjectRank is the entry-level rank list some views return.
	CurrentSubjectRank oneOrMany[subjectRankEntry] `json:"citeScoreSubjectRank"`
}

type subjectArea struct {
	Code flexString `json:"@code"`
	Name flexString `json:"$"`
}

type citeScoreYearInfoList struct {
	CurrentMetric flexString                   `json:"citeScoreCurrentMetric"`
	YearInfo      oneOrMany[citeScoreYearInfo] `json:"citeScoreYearInfo"`
}

type citeScoreYearInfo struct {
	Year            flexString               `json:"@year"`
	Status          flexString               `json:"@status"`
	InformationList citeScoreInformationList `json:"citeScoreInformationList"`
}

type citeScoreInfo struct {
	DocType     flexString                  `json:"docType"`
	SubjectRank oneOrMany[subjectRankEntry] `json:"citeScoreSubjectRank"`
}

// citeScoreInformationList flattens the three layouts the API uses: a
// {"citeScoreInfo": ...} wrapper, a list of wrappers, or a list of
// citeScoreInfo objects. Items that match none of them are skipped.
type citeScoreInformationList []citeScoreInfo

func (l *citeScoreInformationList) UnmarshalJSON(data []byte) error {
	var items oneOrMany[json.RawMessage]
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}

	var merged citeScoreInformationList
	for _, raw := range items {
		var item struct {
			Wrapped oneOrMany[citeScoreInfo] `json:"citeScoreInfo"`
			citeScoreInfo
		}
		if err := json.Unmarshal(raw, &item); err != nil {
			continue
		}
		if len(item.Wrapped) > 0 {
			merged = append(merged, item.Wrapped...)
			continue
		}
		merged = append(merged, item.citeScoreInfo)
	}
	*l = merged
	return nil
}

// subjectRankEntry is either {"subjectCode", "subjectName", "percentile"} or
// a positional [code, name, percentile] triple.
type subjectRankEntry struct {
	Code       flexString
	Name       flexString
	Percentile flexString
}

func (e *subjectRankEntry) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil
	}
	switch data[0] {
	case '[':
		var triple []flexString
		if err := json.Unmarshal(data, &triple); err != nil {
			return err
		}
		if len(triple) >= 3 {
			e.Code, e.Name, e.Percentile = triple[0], triple[1], triple[2]
		}
	case '{':
		var keyed struct {
			Code       flexString `json:"subjectCode"`
			AtCode     flexString `json:"@subjectCode"`
			Name       flexString `json:"subjectName"`
			Percentile flexString `json:"percentile"`
		}
		if err := json.Unmarshal(data, &keyed); err != nil {
			return err
		}
		e.Code = keyed.Code
		if e.Code == "" {
			e.Code = keyed.AtCode
		}
		e.Name = keyed.Name
		e.Percentile = keyed.Percentile
	}
	return nil
}
