package extractor

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/tjswar/medilookapp/entities"
)

// JoinRecognizedText concatenates OCR text regions in the order received.
func JoinRecognizedText(recognized []string) string {
	return strings.Join(recognized, " ")
}

// ExtractMedicineNames scans each line of rawText for prescription context and
// returns the candidate names that follow an indicator, deduplicated
// case-insensitively in first-seen order. Lines without an indicator are
// ignored entirely.
func ExtractMedicineNames(rawText string) []string {
	var names []string
	seen := make(map[string]struct{})

	add := func(words []string) {
		name := strings.TrimSpace(strings.Join(words, " "))
		if utf8.RuneCountInString(name) < minCandidateLength {
			return
		}
		key := entities.FoldKey(name)
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		names = append(names, name)
	}

	for _, line := range strings.Split(rawText, "\n") {
		if !containsAny(strings.ToLower(line), prescriptionIndicators) {
			continue
		}

		capturing := false
		var current []string

		for _, word := range strings.Fields(line) {
			lower := strings.ToLower(word)

			// Every indicator seeds its own pass.
			if containsAny(lower, prescriptionIndicators) {
				if capturing {
					add(current)
				}
				capturing = true
				current = current[:0]
				continue
			}

			if !capturing {
				continue
			}

			if hasDigit(word) || containsAny(lower, nameStopMarkers) {
				add(current)
				capturing = false
				current = current[:0]
				continue
			}

			if containsAny(lower, nameNoiseWords) {
				continue
			}
			current = append(current, word)
		}

		if capturing {
			add(current)
		}
	}

	return names
}

// FilterCandidates drops names too short to search and bare dosage words.
func FilterCandidates(names []string) []string {
	filtered := make([]string, 0, len(names))
	for _, name := range names {
		trimmed := strings.TrimSpace(name)
		if utf8.RuneCountInString(trimmed) < minCandidateLength {
			continue
		}
		lower := strings.ToLower(trimmed)
		stop := false
		for _, w := range candidateStopWords {
			if lower == w {
				stop = true
				break
			}
		}
		if !stop {
			filtered = append(filtered, trimmed)
		}
	}
	return filtered
}

func hasDigit(s string) bool {
	return strings.IndexFunc(s, unicode.IsDigit) >= 0
}
