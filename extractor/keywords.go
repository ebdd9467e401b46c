// Package extractor turns noisy text into short, UI-ready fields: candidate
// drug names from OCR output, and dosage and side-effect summaries from
// verbatim label text.
package extractor

import "strings"

// Words that mark a line (or token) as prescription context.
var prescriptionIndicators = []string{
	"rx",
	"prescribed",
	"prescription",
	"medication",
}

// A token containing one of these ends the name portion of a line.
var nameStopMarkers = []string{
	"mg",
	"tablet",
	"capsule",
	"tid",
	"bid",
	"daily",
}

// Administrative words skipped while accumulating a name.
var nameNoiseWords = []string{
	"patient",
	"name",
	"address",
	"date",
	"dr.",
	"prescribed",
}

// Bare words that are never searched on their own.
var candidateStopWords = []string{
	"tablet",
	"capsule",
	"dose",
	"take",
}

// Dosage phrases recognized as a clear instruction.
var simpleDosagePatterns = []string{
	"take one tablet",
	"take 1 tablet",
	"take two tablets",
	"take 2 tablets",
	"one capsule",
	"1 capsule",
	"two capsules",
	"2 capsules",
	"mg every",
	"tablet every",
	"capsule every",
}

var dosageFrequencyCues = []string{"every", "times", "daily", "hours"}

var dosageActionCues = []string{"take", "recommended"}

var dosageUnitCues = []string{"mg", "tablet", "capsule"}

var sideEffectKeywords = []string{
	"headache",
	"nausea",
	"dizziness",
	"drowsiness",
	"vomiting",
	"diarrhea",
	"pain",
	"rash",
	"fatigue",
	"stomach",
}

// Fragments containing these are introductions, not effects.
var sideEffectExclusions = []string{
	"following",
	"include",
	"including",
	"such as",
	"may",
	"can",
}

var sideEffectExcludedPrefixes = []string{"the", "these"}

const (
	maxSideEffects     = 4
	maxDosageLength    = 100
	minCandidateLength = 3
)

// PrescriptionIndicators returns a copy of the indicator words.
func PrescriptionIndicators() []string {
	return append([]string(nil), prescriptionIndicators...)
}

// SideEffectKeywords returns a copy of the side-effect keyword list.
func SideEffectKeywords() []string {
	return append([]string(nil), sideEffectKeywords...)
}

// containsAny reports whether lower contains any needle. Callers lowercase.
func containsAny(lower string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(lower, n) {
			return true
		}
	}
	return false
}
