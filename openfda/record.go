// Package openfda is the client for the openFDA drug-label API
// (https://open.fda.gov/apis/drug/label/).
package openfda

// DrugRecord is one drug-label object from the upstream "results" array,
// kept exactly as decoded. It is never mutated after decoding.
type DrugRecord map[string]any

// ID returns the record id, or "" when the record has none
func (r DrugRecord) ID() string {
	id, _ := r["id"].(string)
	return id
}

// FirstActiveIngredient returns active_ingredient[0]
func (r DrugRecord) FirstActiveIngredient() (string, bool) {
	return firstString(r["active_ingredient"])
}

// FirstWarning returns warnings[0]
func (r DrugRecord) FirstWarning() (string, bool) {
	return firstString(r["warnings"])
}

// FirstManufacturer returns openfda.manufacturer_name[0]
func (r DrugRecord) FirstManufacturer() (string, bool) {
	openfda, ok := r["openfda"].(map[string]any)
	if !ok {
		return "", false
	}
	return firstString(openfda["manufacturer_name"])
}

// firstString reports the first element of a JSON array of strings. Any
// other shape counts as absent.
func firstString(v any) (string, bool) {
	items, ok := v.([]any)
	if !ok || len(items) == 0 {
		return "", false
	}
	s, ok := items[0].(string)
	return s, ok
}
