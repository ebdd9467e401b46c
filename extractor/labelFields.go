package extractor

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/tjswar/medilookapp/entities"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ExtractDosage reduces a dosage-and-administration section to one short
// instruction. Only the first block is considered. Three full passes are made
// over the sentences, from the most specific pattern to the loosest.
func ExtractDosage(blocks []string) string {
	if len(blocks) == 0 {
		return entities.PlaceholderDosage
	}

	sentences := splitTrimmed(blocks[0], ".")

	for _, sentence := range sentences {
		lower := strings.ToLower(sentence)
		if containsAny(lower, simpleDosagePatterns) && containsAny(lower, dosageFrequencyCues) {
			return sentence + "."
		}
	}

	for _, sentence := range sentences {
		lower := strings.ToLower(sentence)
		if containsAny(lower, dosageActionCues) && containsAny(lower, dosageUnitCues) {
			if cleaned := collapseSpaces(sentence); utf8.RuneCountInString(cleaned) < maxDosageLength {
				return cleaned + "."
			}
		}
	}

	for _, sentence := range sentences {
		if containsAny(strings.ToLower(sentence), dosageUnitCues) {
			if cleaned := collapseSpaces(sentence); utf8.RuneCountInString(cleaned) < maxDosageLength {
				return cleaned + "."
			}
		}
	}

	return entities.PlaceholderDosageInfo
}

// ExtractSideEffects picks up to four short effect fragments from an adverse
// reactions section, skipping introductory phrases.
func ExtractSideEffects(blocks []string) []string {
	placeholder := []string{entities.PlaceholderSideEffects}
	if len(blocks) == 0 {
		return placeholder
	}

	title := cases.Title(language.English)
	var effects []string

	for _, fragment := range splitTrimmed(blocks[0], ".,;") {
		if !isRelevantEffect(fragment) {
			continue
		}
		if r, _ := utf8.DecodeRuneInString(fragment); !unicode.IsUpper(r) {
			fragment = title.String(fragment)
		}
		effects = append(effects, fragment)
		if len(effects) == maxSideEffects {
			break
		}
	}

	if len(effects) == 0 {
		return placeholder
	}
	return effects
}

func isRelevantEffect(fragment string) bool {
	lower := strings.ToLower(fragment)
	if !containsAny(lower, sideEffectKeywords) || containsAny(lower, sideEffectExclusions) {
		return false
	}
	for _, prefix := range sideEffectExcludedPrefixes {
		if strings.HasPrefix(lower, prefix) {
			return false
		}
	}
	return true
}

// FirstClause returns the text before the first period of the first block, or
// false when there is no usable text.
func FirstClause(blocks []string) (string, bool) {
	if len(blocks) == 0 {
		return "", false
	}
	clause, _, _ := strings.Cut(blocks[0], ".")
	clause = strings.TrimSpace(clause)
	return clause, clause != ""
}

// splitTrimmed splits on any rune in seps, trimming and dropping empty pieces.
func splitTrimmed(text, seps string) []string {
	parts := strings.FieldsFunc(text, func(r rune) bool {
		return strings.ContainsRune(seps, r)
	})

	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
