// Package heuristics holds the deterministic, side-effect-free scorers that
// read raw article text. None of them can fail: absence of matches is a
// valid low-score result.
package heuristics

import (
	"strings"
	"unicode"
)

// WordCount counts whitespace-separated words
func WordCount(text string) int {
	return len(strings.Fields(text))
}

// FirstLine returns the first line of content with surrounding whitespace
// removed. It is the article headline.
func FirstLine(content string) string {
	line, _, _ := strings.Cut(content, "\n")
	return strings.TrimSpace(line)
}

// UppercaseRatio returns the share of letters in s that are upper case.
// Strings without letters have ratio 0.
func UppercaseRatio(s string) float64 {
	letters, upper := 0, 0
	for _, r := range s {
		if !unicode.IsLetter(r) {
			continue
		}
		letters++
		if unicode.IsUpper(r) {
			upper++
		}
	}
	if letters == 0 {
		return 0
	}
	return float64(upper) / float64(letters)
}

// countPresent counts how many terms occur in the lower-cased text
func countPresent(lowerText string, terms []string) int {
	n := 0
	for _, term := range terms {
		if strings.Contains(lowerText, term) {
			n++
		}
	}
	return n
}
