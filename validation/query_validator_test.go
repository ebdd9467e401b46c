package validation

import (
	"strings"
	"testing"
)

func TestValidateQuery(t *testing.T) {
	validator := NewQueryValidator()

	tests := []struct {
		name        string
		input       string
		expectError bool
	}{
		{"simple name", "Advil", false},
		{"empty clears", "", false},
		{"blank clears", "   ", false},
		{"multi word", "Vitamin D3 1000 IU", false},
		{"accented", "Paracétamol", false},
		{"punctuation", "Co-Amoxiclav 500/125 (oral), 5%", false},
		{"apostrophe", "St. John's Wort", false},
		{"too long", strings.Repeat("ab", 51), true},
		{"too many words", "a b c d e f g h i", true},
		{"script", "<script>alert(1)</script>", true},
		{"sql", "advil' or '1'='1", true},
		{"sql comment", "advil -- drop", true},
		{"command substitution", "$(rm -rf)", true},
		{"path traversal", "../etc/passwd", true},
		{"nosql", "{$ne: null}", true},
		{"invalid characters", "advil;motrin", true},
		{"angle brackets", "advil<b>", true},
		{"repetition", "aaaaaaaaaaaaaaa", true},
		{"repetition at limit", "aaaaaaaaaa", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.ValidateQuery(tt.input)
			if tt.expectError && err == nil {
				t.Errorf("Expected error for %q, got nil", tt.input)
			}
			if !tt.expectError && err != nil {
				t.Errorf("Expected no error for %q, got %v", tt.input, err)
			}
		})
	}
}

func TestValidateRecognizedText(t *testing.T) {
	validator := NewQueryValidator()

	tests := []struct {
		name        string
		lines       []string
		expectError bool
	}{
		{"prescription", []string{"Patient Name: John Doe", "Rx: Amoxicillin 500mg tid", "Date: 2024-01-01"}, false},
		{"multiline region", []string{"Rx: Metformin\n850mg BID"}, false},
		{"empty", nil, true},
		{"too many regions", make([]string, maxRecognizedLines+1), true},
		{"region too long", []string{strings.Repeat("x", maxRecognizedLineLength+1)}, true},
		{"total too long", repeatLines(strings.Repeat("x", 400), 60), true},
		{"control character", []string{"Rx: Advil\x00"}, true},
		{"invalid utf8", []string{"Rx: \xff\xfe"}, true},
		{"markup", []string{"Rx: <script>"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.ValidateRecognizedText(tt.lines)
			if tt.expectError && err == nil {
				t.Error("Expected error, got nil")
			}
			if !tt.expectError && err != nil {
				t.Errorf("Expected no error, got %v", err)
			}
		})
	}
}

func repeatLines(line string, n int) []string {
	lines := make([]string, n)
	for i := range lines {
		lines[i] = line
	}
	return lines
}
