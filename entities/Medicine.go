// Package entities holds the records exchanged between the lookup client, the
// search orchestrator and the history cache, plus the label database wire types.
package entities

import (
	"slices"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
)

// Placeholder texts used whenever the label database has nothing to say.
const (
	PlaceholderDescription     = "No description available"
	PlaceholderFallbackDesc    = "No detailed information available for this medication."
	PlaceholderDosage          = "Consult your healthcare provider"
	PlaceholderDosageInfo      = "Consult your healthcare provider for dosage information"
	PlaceholderWarning         = "Please consult your healthcare provider"
	PlaceholderSideEffects     = "Consult healthcare provider for side effects"
	PlaceholderFallbackEffects = "Consult healthcare provider"
	PlaceholderUsage           = "Take as directed by your healthcare provider"
	PlaceholderFallbackUsage   = "Consult healthcare provider"

	// UnknownMedicineName names the fallback record for a blank query.
	UnknownMedicineName = "Unknown medication"
)

// FoldKey returns the case-insensitive comparison key for a name or query.
// A Caser holds state, so one is built per call.
func FoldKey(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}

// Medicine is a resolved drug record. Only Alternatives may be changed after
// construction.
type Medicine struct {
	ID                   string   `json:"id"`
	Name                 string   `json:"name"`
	Description          string   `json:"description"`
	Alternatives         []string `json:"alternatives"`
	Rxcui                string   `json:"rxcui"`
	Dosage               string   `json:"dosage"`
	Warnings             []string `json:"warnings"`
	RequiresPrescription bool     `json:"requiresPrescription"`
	SideEffects          []string `json:"sideEffects"`
	UsageInstructions    string   `json:"usageInstructions"`
}

// MedicineFields carries the values NewMedicine normalizes into a Medicine.
type MedicineFields struct {
	Name                 string
	Description          string
	Alternatives         []string
	Rxcui                string
	Dosage               string
	Warnings             []string
	RequiresPrescription bool
	SideEffects          []string
	UsageInstructions    string
}

// NewMedicine builds a Medicine with a fresh identifier. Empty advisory fields
// are replaced by placeholders, and alternatives are deduplicated with the name
// itself removed.
func NewMedicine(f MedicineFields) Medicine {
	m := Medicine{
		ID:                   uuid.NewString(),
		Name:                 strings.TrimSpace(f.Name),
		Description:          f.Description,
		Alternatives:         CleanAlternatives(f.Name, f.Alternatives),
		Rxcui:                f.Rxcui,
		Dosage:               f.Dosage,
		Warnings:             slices.Clone(f.Warnings),
		RequiresPrescription: f.RequiresPrescription,
		SideEffects:          slices.Clone(f.SideEffects),
		UsageInstructions:    f.UsageInstructions,
	}

	if m.Description == "" {
		m.Description = PlaceholderDescription
	}
	if m.Dosage == "" {
		m.Dosage = PlaceholderDosage
	}
	if len(m.Warnings) == 0 {
		m.Warnings = []string{PlaceholderWarning}
	}
	if len(m.SideEffects) == 0 {
		m.SideEffects = []string{PlaceholderSideEffects}
	}
	if m.UsageInstructions == "" {
		m.UsageInstructions = PlaceholderUsage
	}

	return m
}

// NewFallbackMedicine builds the information-free record returned when every
// lookup strategy failed. The name is the trimmed query, or
// UnknownMedicineName when nothing is left.
func NewFallbackMedicine(query string) Medicine {
	name := strings.TrimSpace(query)
	if name == "" {
		name = UnknownMedicineName
	}

	return Medicine{
		ID:                   uuid.NewString(),
		Name:                 name,
		Description:          PlaceholderFallbackDesc,
		Alternatives:         []string{},
		Dosage:               PlaceholderDosage,
		Warnings:             []string{PlaceholderWarning},
		RequiresPrescription: true,
		SideEffects:          []string{PlaceholderFallbackEffects},
		UsageInstructions:    PlaceholderFallbackUsage,
	}
}

// CleanAlternatives drops empty strings, case-insensitive duplicates and any
// entry equal to name, keeping first-seen order.
func CleanAlternatives(name string, alternatives []string) []string {
	nameKey := FoldKey(name)
	seen := make(map[string]struct{}, len(alternatives))
	cleaned := make([]string, 0, len(alternatives))

	for _, alt := range alternatives {
		alt = strings.TrimSpace(alt)
		if alt == "" {
			continue
		}
		key := FoldKey(alt)
		if key == nameKey {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		cleaned = append(cleaned, alt)
	}

	return cleaned
}

// Equal compares every field including ID, so two fetches of the same drug are
// distinct records.
func (m Medicine) Equal(other Medicine) bool {
	return m.ID == other.ID &&
		m.Name == other.Name &&
		m.Description == other.Description &&
		slices.Equal(m.Alternatives, other.Alternatives) &&
		m.Rxcui == other.Rxcui &&
		m.Dosage == other.Dosage &&
		slices.Equal(m.Warnings, other.Warnings) &&
		m.RequiresPrescription == other.RequiresPrescription &&
		slices.Equal(m.SideEffects, other.SideEffects) &&
		m.UsageInstructions == other.UsageInstructions
}

// NaturalKey identifies the drug by content rather than by fetch.
func (m Medicine) NaturalKey() string {
	return FoldKey(m.Name) + "|" + m.Rxcui
}

// Clone returns a deep copy that shares no slices with m.
func (m Medicine) Clone() Medicine {
	c := m
	c.Alternatives = slices.Clone(m.Alternatives)
	c.Warnings = slices.Clone(m.Warnings)
	c.SideEffects = slices.Clone(m.SideEffects)
	return c
}

// CloneMedicines deep-copies a result list.
func CloneMedicines(medicines []Medicine) []Medicine {
	if medicines == nil {
		return nil
	}
	out := make([]Medicine, len(medicines))
	for i := range medicines {
		out[i] = medicines[i].Clone()
	}
	return out
}
