package labelclient

import (
	"github.com/tjswar/medilookapp/entities"
)

type localMedicine struct {
	name         string
	description  string
	alternatives []string
}

// localMedicines is consulted only by the terminal fallback so that a few
// common drugs still get a description when the label database is unreachable.
var localMedicines = []localMedicine{
	{"Atorvastatin", "Cholesterol-lowering medication (statin).", []string{"Lipitor", "Torvast"}},
	{"Sertraline", "Antidepressant medication (SSRI).", []string{"Zoloft", "Lustral", "Serlain"}},
	{"Amoxicillin", "Penicillin-type antibiotic.", []string{"Amoxil", "Trimox"}},
	{"Ibuprofen", "Nonsteroidal anti-inflammatory pain reliever.", []string{"Advil", "Motrin", "Nurofen"}},
	{"Acetaminophen", "Pain reliever and fever reducer.", []string{"Paracetamol", "Tylenol", "Panadol"}},
	{"Metformin", "Oral medication for type 2 diabetes.", []string{"Glucophage", "Fortamet"}},
	{"Lisinopril", "ACE inhibitor for high blood pressure.", []string{"Zestril", "Prinivil"}},
	{"Omeprazole", "Proton pump inhibitor that reduces stomach acid.", []string{"Prilosec", "Losec"}},
}

// fallbackMedicine returns the placeholder record for query, enriched with a
// description and alternatives when query names a local table entry.
func fallbackMedicine(query string) entities.Medicine {
	m := entities.NewFallbackMedicine(query)

	key := entities.FoldKey(query)
	for _, local := range localMedicines {
		if !matchesLocal(key, local) {
			continue
		}
		m.Description = local.description
		m.Alternatives = entities.CleanAlternatives(query, append([]string{local.name}, local.alternatives...))
		break
	}

	return m
}

func matchesLocal(key string, local localMedicine) bool {
	if entities.FoldKey(local.name) == key {
		return true
	}
	for _, alt := range local.alternatives {
		if entities.FoldKey(alt) == key {
			return true
		}
	}
	return false
}
