// Package validation checks user-supplied search text before it reaches the
// lookup client.
package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/tjswar/medilookapp/interfaces"
)

const (
	maxQueryLength = 100
	maxQueryWords  = 8
	maxRepetition  = 10

	maxRecognizedLines      = 200
	maxRecognizedLineLength = 500
	maxRecognizedTotal      = 20000
)

// Pre-compiled once and reused for all validations
var (
	// Letters in any script, digits, spaces and the punctuation found in drug names
	queryRegex = regexp.MustCompile(`^[\p{L}\p{M}0-9\s\-\.\+'/(),%]+$`)

	// Markup and script injection
	markupPatterns = []string{
		"<script", "</script>", "javascript:", "vbscript:", "onload=", "onerror=",
		"onclick=", "onmouseover=", "onfocus=", "onblur=", "onchange=", "onsubmit=",
		"eval(", "expression(", "@import", "binding(", "behavior(",
	}

	// Query-language, command and path injection
	injectionPatterns = []string{
		"' or ", "\" or ", "union select", "drop table", "delete from", "insert into",
		"update set", "--", "/*", "*/", "xp_", "exec(", "execute(",
		"`", "$(", "${",
		"../", "..\\", "%2e%2e", "file://",
		"*)(", "*|(", "*)%",
		"{$ne:", "{$gt:", "{$where:", "{$or:", "{$regex:", "{$expr:",
	}
)

// Compile-time check to ensure QueryValidatorImpl implements QueryValidator
var _ interfaces.QueryValidator = (*QueryValidatorImpl)(nil)

// QueryValidatorImpl implements the interfaces.QueryValidator interface
type QueryValidatorImpl struct{}

// NewQueryValidator creates a new query validator
func NewQueryValidator() interfaces.QueryValidator {
	return &QueryValidatorImpl{}
}

// ValidateQuery checks a typed medicine name. An empty query is valid: it
// means "clear the results".
func (v *QueryValidatorImpl) ValidateQuery(query string) error {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return nil
	}

	if utf8.RuneCountInString(trimmed) > maxQueryLength {
		return fmt.Errorf("query too long: maximum %d characters", maxQueryLength)
	}

	if len(strings.Fields(trimmed)) > maxQueryWords {
		return fmt.Errorf("search query too complex: maximum %d words allowed", maxQueryWords)
	}

	lower := strings.ToLower(trimmed)
	if containsAny(lower, markupPatterns) || containsAny(lower, injectionPatterns) {
		return fmt.Errorf("query contains potentially dangerous content")
	}

	if !queryRegex.MatchString(trimmed) {
		return fmt.Errorf("query contains invalid characters. Only letters, numbers, spaces and - . + ' / ( ) , %% are allowed")
	}

	if hasExcessiveRepetition(trimmed) {
		return fmt.Errorf("query contains excessive character repetition")
	}

	return nil
}

// ValidateRecognizedText checks OCR output. Prescription text carries dates,
// colons and dosage notation, so only size, control characters and markup are
// checked.
func (v *QueryValidatorImpl) ValidateRecognizedText(lines []string) error {
	if len(lines) == 0 {
		return fmt.Errorf("recognized text cannot be empty")
	}

	if len(lines) > maxRecognizedLines {
		return fmt.Errorf("too many text regions: maximum %d allowed", maxRecognizedLines)
	}

	total := 0
	for i, line := range lines {
		n := utf8.RuneCountInString(line)
		if n > maxRecognizedLineLength {
			return fmt.Errorf("text region %d too long: maximum %d characters", i, maxRecognizedLineLength)
		}
		total += n

		if !utf8.ValidString(line) {
			return fmt.Errorf("text region %d is not valid UTF-8", i)
		}
		if strings.IndexFunc(line, isDisallowedControl) >= 0 {
			return fmt.Errorf("text region %d contains control characters", i)
		}
		if containsAny(strings.ToLower(line), markupPatterns) {
			return fmt.Errorf("text region %d contains potentially dangerous content", i)
		}
	}

	if total > maxRecognizedTotal {
		return fmt.Errorf("recognized text too long: maximum %d characters", maxRecognizedTotal)
	}

	return nil
}

func containsAny(lower string, patterns []string) bool {
	for _, p := range patterns {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

// Newlines and tabs are how OCR regions carry layout.
func isDisallowedControl(r rune) bool {
	return unicode.IsControl(r) && r != '\n' && r != '\t' && r != '\r'
}

// hasExcessiveRepetition reports the same rune more than maxRepetition times in a row.
func hasExcessiveRepetition(input string) bool {
	var prev rune
	run := 0
	for _, r := range input {
		if r == prev {
			run++
			if run > maxRepetition {
				return true
			}
			continue
		}
		prev = r
		run = 1
	}
	return false
}
