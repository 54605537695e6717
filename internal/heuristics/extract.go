package heuristics

import (
	"regexp"
	"strings"
)

var knownLocations = []string{
	"New York", "London", "Paris", "Tokyo", "Washington",
	"Moscow", "Beijing", "Delhi", "Mumbai", "Sydney",
}

var datePattern = regexp.MustCompile(`(?i)\b(?:January|February|March|April|May|June|July|August|September|October|November|December)\s+\d{1,2},?\s+\d{4}|\b\d{1,2}/\d{1,2}/\d{4}|\b\d{4}-\d{2}-\d{2}`)

const maxExtracted = 3

const (
	locationFoundScore  = 75
	locationMissScore   = 30
	timestampFoundScore = 80
	timestampMissScore  = 40
)

// ExtractLocations returns up to three recognised city names in list order
func ExtractLocations(text string) []string {
	lower := strings.ToLower(text)
	found := make([]string, 0, maxExtracted)
	for _, loc := range knownLocations {
		if strings.Contains(lower, strings.ToLower(loc)) {
			found = append(found, loc)
			if len(found) == maxExtracted {
				break
			}
		}
	}
	return found
}

// ExtractDates returns up to three date strings in order of appearance.
// Recognises "March 3, 2024", MM/DD/YYYY and ISO dates.
func ExtractDates(text string) []string {
	matches := datePattern.FindAllString(text, maxExtracted)
	if matches == nil {
		return []string{}
	}
	return matches
}

// LocationScore is the step function over extracted locations
func LocationScore(locations []string) int {
	if len(locations) > 0 {
		return locationFoundScore
	}
	return locationMissScore
}

// TimestampScore is the step function over extracted dates
func TimestampScore(dates []string) int {
	if len(dates) > 0 {
		return timestampFoundScore
	}
	return timestampMissScore
}

// Merge appends the items of extra not already present in base, comparing
// case-insensitively. The result never aliases base.
func Merge(base, extra []string) []string {
	out := make([]string, 0, len(base)+len(extra))
	seen := make(map[string]bool, len(base)+len(extra))
	for _, list := range [][]string{base, extra} {
		for _, s := range list {
			s = strings.TrimSpace(s)
			key := strings.ToLower(s)
			if s == "" || seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, s)
		}
	}
	return out
}
