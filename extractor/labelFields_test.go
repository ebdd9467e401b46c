package extractor

import (
	"slices"
	"strings"
	"testing"
	"unicode"

	"github.com/tjswar/medilookapp/entities"
)

func TestExtractDosage(t *testing.T) {
	tests := []struct {
		name     string
		blocks   []string
		expected string
	}{
		{
			name:     "absent block",
			blocks:   nil,
			expected: entities.PlaceholderDosage,
		},
		{
			name:     "simple pattern with frequency",
			blocks:   []string{"DOSAGE AND ADMINISTRATION. Adults: take one tablet every 4 to 6 hours. Do not exceed 6 tablets."},
			expected: "Adults: take one tablet every 4 to 6 hours.",
		},
		{
			name: "simple pattern wins even when a tier two sentence comes first",
			blocks: []string{
				"The recommended dose is 400 mg. Children over 12: 1 capsule three times daily",
			},
			expected: "Children over 12: 1 capsule three times daily.",
		},
		{
			name:     "take plus unit with whitespace collapsed",
			blocks:   []string{"Swallow whole.   Take   200 mg   with water. Store cool"},
			expected: "Take 200 mg with water.",
		},
		{
			name:     "unit only",
			blocks:   []string{"Use as needed. Each tablet contains 5 mg"},
			expected: "Each tablet contains 5 mg.",
		},
		{
			name:     "too long sentences fall through to placeholder",
			blocks:   []string{"Take " + strings.Repeat("very ", 30) + "long amounts of mg"},
			expected: entities.PlaceholderDosageInfo,
		},
		{
			name:     "no dosage text",
			blocks:   []string{"Consult the leaflet. Keep out of reach of children"},
			expected: entities.PlaceholderDosageInfo,
		},
		{
			name:     "only first block is used",
			blocks:   []string{"Keep dry", "take one tablet every day"},
			expected: entities.PlaceholderDosageInfo,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractDosage(tt.blocks)
			if got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestExtractDosageSinglePeriod(t *testing.T) {
	blocks := [][]string{
		{"take 2 tablets every 6 hours."},
		{"Recommended: 10 mg..."},
		{"capsule"},
		{"...."},
	}

	for _, b := range blocks {
		got := ExtractDosage(b)
		if got == "" {
			t.Errorf("Expected non-empty dosage for %q", b)
		}
		if got == entities.PlaceholderDosageInfo {
			continue
		}
		if !strings.HasSuffix(got, ".") || strings.HasSuffix(got, "..") {
			t.Errorf("Expected exactly one trailing period, got %q", got)
		}
	}
}

func TestExtractSideEffects(t *testing.T) {
	tests := []struct {
		name     string
		blocks   []string
		expected []string
	}{
		{
			name:     "absent block",
			blocks:   nil,
			expected: []string{entities.PlaceholderSideEffects},
		},
		{
			name:     "introductory phrases are removed",
			blocks:   []string{"The following adverse reactions may occur: headache, nausea; Dizziness. stomach pain"},
			expected: []string{"Headache", "Nausea", "Dizziness", "Stomach Pain"},
		},
		{
			name:     "at most four effects",
			blocks:   []string{"headache, nausea, rash, fatigue, vomiting, diarrhea"},
			expected: []string{"Headache", "Nausea", "Rash", "Fatigue"},
		},
		{
			name:     "fragments starting with the are dropped",
			blocks:   []string{"these reactions included pain. the rash. severe drowsiness"},
			expected: []string{"Severe Drowsiness"},
		},
		{
			name:     "uppercase fragments kept verbatim",
			blocks:   []string{"GI upset with nausea"},
			expected: []string{"GI upset with nausea"},
		},
		{
			name:     "nothing relevant",
			blocks:   []string{"Clinical trials enrolled 400 patients. Reactions can include headache"},
			expected: []string{entities.PlaceholderSideEffects},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractSideEffects(tt.blocks)
			if !slices.Equal(got, tt.expected) {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestExtractSideEffectsShape(t *testing.T) {
	text := "pain, rash, nausea, headache, dizziness, vomiting, fatigue, stomach ache, diarrhea"
	got := ExtractSideEffects([]string{text})

	if len(got) > maxSideEffects {
		t.Errorf("Expected at most %d effects, got %d", maxSideEffects, len(got))
	}
	for _, effect := range got {
		if !unicode.IsUpper([]rune(effect)[0]) {
			t.Errorf("Expected capitalized effect, got %q", effect)
		}
	}
}

func TestFirstClause(t *testing.T) {
	tests := []struct {
		blocks   []string
		expected string
		ok       bool
	}{
		{[]string{"Temporarily relieves minor aches. Also reduces fever."}, "Temporarily relieves minor aches", true},
		{[]string{"No period here"}, "No period here", true},
		{[]string{"  . Starts with a period"}, "", false},
		{nil, "", false},
	}

	for _, tt := range tests {
		got, ok := FirstClause(tt.blocks)
		if got != tt.expected || ok != tt.ok {
			t.Errorf("FirstClause(%q) = (%q, %v), want (%q, %v)", tt.blocks, got, ok, tt.expected, tt.ok)
		}
	}
}
