package labelclient

import (
	"strings"

	"github.com/tjswar/medilookapp/entities"
	"github.com/tjswar/medilookapp/extractor"
)

// BuildMedicines normalizes a primary-search response. Records without brand
// names are skipped, and only the first record for each matching brand name
// (compared case-insensitively) is kept, in response order.
func BuildMedicines(query string, records []entities.LabelRecord) []entities.Medicine {
	var medicines []entities.Medicine
	seen := make(map[string]struct{})

	for _, record := range records {
		brands := nonEmpty(record.BrandNames())
		if len(brands) == 0 {
			continue
		}

		name := MatchingBrandName(query, brands)
		key := entities.FoldKey(name)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		usage := entities.PlaceholderUsage
		if len(record.DosageAndAdministration) > 0 && strings.TrimSpace(record.DosageAndAdministration[0]) != "" {
			usage = record.DosageAndAdministration[0]
		}

		medicines = append(medicines, buildMedicine(record, name, usage))
	}

	return medicines
}

// BuildAlternativeMedicine picks the record whose brand or generic names
// contain query, else the first record, and builds one medicine from it.
// It reports false when the chosen record has no brand name. Usage
// instructions are always the generic placeholder.
func BuildAlternativeMedicine(query string, records []entities.LabelRecord) (entities.Medicine, bool) {
	if len(records) == 0 {
		return entities.Medicine{}, false
	}

	needle := strings.ToLower(strings.TrimSpace(query))
	chosen := records[0]
	for _, record := range records {
		if containsSubstring(record.BrandNames(), needle) || containsSubstring(record.GenericNames(), needle) {
			chosen = record
			break
		}
	}

	// Like the primary search, a record without a brand name cannot be keyed.
	brands := nonEmpty(chosen.BrandNames())
	if len(brands) == 0 {
		return entities.Medicine{}, false
	}

	return buildMedicine(chosen, MatchingBrandName(query, brands), entities.PlaceholderUsage), true
}

// MatchingBrandName prefers a brand equal to query, then one starting with
// query (both case-insensitive), then the first brand.
func MatchingBrandName(query string, brands []string) string {
	q := strings.ToLower(strings.TrimSpace(query))

	for _, b := range brands {
		if strings.ToLower(b) == q {
			return b
		}
	}
	for _, b := range brands {
		if strings.HasPrefix(strings.ToLower(b), q) {
			return b
		}
	}
	return brands[0]
}

func buildMedicine(record entities.LabelRecord, name, usage string) entities.Medicine {
	var alternatives []string
	alternatives = append(alternatives, record.GenericNames()...)
	alternatives = append(alternatives, record.BrandNames()...)

	var rxcui string
	if record.OpenFDA != nil && len(record.OpenFDA.Rxcui) > 0 {
		rxcui = record.OpenFDA.Rxcui[0]
	}

	return entities.NewMedicine(entities.MedicineFields{
		Name:                 name,
		Description:          describe(record),
		Alternatives:         alternatives,
		Rxcui:                rxcui,
		Dosage:               extractor.ExtractDosage(record.DosageAndAdministration),
		Warnings:             nonEmpty(record.Warnings),
		RequiresPrescription: RequiresPrescription(record),
		SideEffects:          extractor.ExtractSideEffects(record.AdverseReactions),
		UsageInstructions:    usage,
	})
}

// describe takes the first clause of the indications, purpose or description
// sections, in that order.
func describe(record entities.LabelRecord) string {
	for _, section := range [][]string{record.IndicationsAndUsage, record.Purpose, record.Description} {
		if clause, ok := extractor.FirstClause(section); ok {
			return clause
		}
	}
	return entities.PlaceholderDescription
}

// RequiresPrescription defaults to true. It is false only when the record
// states a product type and none of its entries mention PRESCRIPTION.
func RequiresPrescription(record entities.LabelRecord) bool {
	if record.OpenFDA == nil || len(record.OpenFDA.ProductType) == 0 {
		return true
	}
	for _, pt := range record.OpenFDA.ProductType {
		if strings.Contains(strings.ToUpper(pt), "PRESCRIPTION") {
			return true
		}
	}
	return false
}

func containsSubstring(names []string, needle string) bool {
	for _, n := range names {
		if strings.Contains(strings.ToLower(n), needle) {
			return true
		}
	}
	return false
}

func nonEmpty(values []string) []string {
	var out []string
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			out = append(out, v)
		}
	}
	return out
}
