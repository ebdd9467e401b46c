package labelclient

import "strings"

// aliasTable maps a lowercase query to the terms searched in its place, in
// order. The label database indexes US names, so common international names
// are redirected.
var aliasTable = map[string][]string{
	"paracetamol":   {"acetaminophen", "tylenol", "panadol"},
	"acetaminophen": {"paracetamol", "tylenol", "panadol"},
	"salbutamol":    {"albuterol", "salbutamol"},
	"adrenaline":    {"epinephrine", "adrenaline"},
	"frusemide":     {"furosemide"},
}

// SearchTerms expands query through the alias table. Unknown queries are
// searched as typed.
func SearchTerms(query string) []string {
	if terms, ok := aliasTable[strings.ToLower(strings.TrimSpace(query))]; ok {
		return append([]string(nil), terms...)
	}
	return []string{query}
}
