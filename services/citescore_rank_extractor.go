package services

import (
	"journal-metrics-api/models"
)

// rankedSubject is one subject rank entry before quartiles are assigned.
type rankedSubject struct {
	Code       string
	Name       string
	Percentile int
}

// subjectRankShape locates the citeScoreSubjectRank list inside a serial entry.
// It returns nil when the entry does not have that layout.
type subjectRankShape struct {
	name  string
	match func(entry serialEntry) []subjectRankEntry
}

// subjectRankShapes are tried in order; the first non-empty normalized list wins.
var subjectRankShapes = []subjectRankShape{
	{name: "current-subject-rank", match: matchCurrentSubjectRank},
	{name: "first-year-info", match: matchFirstYearInfo},
	{name: "any-year-info", match: matchAnyYearInfo},
}

func matchCurrentSubjectRank(entry serialEntry) []subjectRankEntry {
	return entry.CurrentSubjectRank
}

func matchFirstYearInfo(entry serialEntry) []subjectRankEntry {
	yearInfo, ok := entry.CiteScoreYearInfoList.YearInfo.first()
	if !ok {
		return nil
	}
	return subjectRanksOfYear(yearInfo)
}

func matchAnyYearInfo(entry serialEntry) []subjectRankEntry {
	for _, yearInfo := range entry.CiteScoreYearInfoList.YearInfo {
		if ranks := subjectRanksOfYear(yearInfo); len(ranks) > 0 {
			return ranks
		}
	}
	return nil
}

// subjectRanksOfYear reads the rank list of the year's first citeScoreInfo.
func subjectRanksOfYear(yearInfo citeScoreYearInfo) []subjectRankEntry {
	if len(yearInfo.InformationList) == 0 {
		return nil
	}
	return yearInfo.InformationList[0].SubjectRank
}

// extractSubjectRanks runs the shape chain and returns the normalized list
// together with the name of the shape that matched.
func extractSubjectRanks(entry serialEntry) ([]rankedSubject, string) {
	names := subjectAreaNames(entry)
	for _, shape := range subjectRankShapes {
		raw := shape.match(entry)
		if len(raw) == 0 {
			continue
		}
		if ranks := normalizeSubjectRanks(raw, names); len(ranks) > 0 {
			return ranks, shape.name
		}
	}
	return nil, ""
}

// normalizeSubjectRanks drops entries without a usable 0-100 percentile and
// resolves names from the subject-area map, falling back to the raw code.
func normalizeSubjectRanks(raw []subjectRankEntry, names map[string]string) []rankedSubject {
	ranks := make([]rankedSubject, 0, len(raw))
	for _, item := range raw {
		percentile, ok := item.Percentile.int()
		if !ok || percentile < 0 || percentile > 100 {
			continue
		}
		code := item.Code.String()
		name := item.Name.String()
		if resolved := names[code]; resolved != "" {
			name = resolved
		}
		if name == "" {
			name = code
		}
		ranks = append(ranks, rankedSubject{Code: code, Name: name, Percentile: percentile})
	}
	return ranks
}

// subjectAreaNames maps subject-area @code to its display name.
func subjectAreaNames(entry serialEntry) map[string]string {
	names := make(map[string]string, len(entry.SubjectAreas))
	for _, area := range entry.SubjectAreas {
		if area.Code != "" && area.Name != "" {
			names[area.Code.String()] = area.Name.String()
		}
	}
	return names
}

func toSubjectRankings(ranks []rankedSubject) []models.SubjectRanking {
	if len(ranks) == 0 {
		return nil
	}
	out := make([]models.SubjectRanking, 0, len(ranks))
	for _, r := range ranks {
		out = append(out, models.SubjectRanking{
			SubjectCode: r.Code,
			SubjectName: r.Name,
			Percentile:  r.Percentile,
			Quartile:    PercentileToQuartile(r.Percentile),
		})
	}
	return out
}
