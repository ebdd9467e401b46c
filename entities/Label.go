package entities

// LabelResponse is the success body of GET /label.json.
type LabelResponse struct {
	Meta    *LabelMeta    `json:"meta,omitempty"`
	Results []LabelRecord `json:"results,omitempty"`
}

type LabelMeta struct {
	Disclaimer  string `json:"disclaimer,omitempty"`
	Terms       string `json:"terms,omitempty"`
	License     string `json:"license,omitempty"`
	LastUpdated string `json:"last_updated,omitempty"`
}

// LabelRecord is one drug's regulatory labeling data. Every field is optional.
type LabelRecord struct {
	OpenFDA                 *OpenFDA `json:"openfda,omitempty"`
	IndicationsAndUsage     []string `json:"indications_and_usage,omitempty"`
	Purpose                 []string `json:"purpose,omitempty"`
	DosageAndAdministration []string `json:"dosage_and_administration,omitempty"`
	Warnings                []string `json:"warnings,omitempty"`
	Description             []string `json:"description,omitempty"`
	AdverseReactions        []string `json:"adverse_reactions,omitempty"`
}

// OpenFDA is the harmonized naming block attached to a label record.
type OpenFDA struct {
	BrandName        []string `json:"brand_name,omitempty"`
	GenericName      []string `json:"generic_name,omitempty"`
	SubstanceName    []string `json:"substance_name,omitempty"`
	ManufacturerName []string `json:"manufacturer_name,omitempty"`
	ProductType      []string `json:"product_type,omitempty"`
	Route            []string `json:"route,omitempty"`
	Rxcui            []string `json:"rxcui,omitempty"`
}

// LabelErrorResponse is the body returned instead of LabelResponse on failure,
// including the "no matches found" case.
type LabelErrorResponse struct {
	Error *LabelError `json:"error,omitempty"`
}

type LabelError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// BrandNames returns the record's brand names, or nil when the naming block is missing.
func (r LabelRecord) BrandNames() []string {
	if r.OpenFDA == nil {
		return nil
	}
	return r.OpenFDA.BrandName
}

// GenericNames returns the record's generic names, or nil when the naming block is missing.
func (r LabelRecord) GenericNames() []string {
	if r.OpenFDA == nil {
		return nil
	}
	return r.OpenFDA.GenericName
}
