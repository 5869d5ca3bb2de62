// Package drugparser turns openFDA drug-label records into the display
// strings rendered by the gateway. All functions are pure.
package drugparser

import (
	"strings"

	"github.com/giygas/openfda-gateway/openfda"
)

// Unknown stands in for a value the record does not carry
const Unknown = "Unknown"

// ParseDrugLabels returns one "id [ingredient] [manufacturer]" line per
// record. Absent parts, id included, are skipped, not replaced by Unknown.
func ParseDrugLabels(records []openfda.DrugRecord) []string {
	labels := make([]string, 0, len(records))
	for _, record := range records {
		var parts []string
		if id := record.ID(); id != "" {
			parts = append(parts, id)
		}
		if ingredient, ok := record.FirstActiveIngredient(); ok {
			parts = append(parts, ingredient)
		}
		if manufacturer, ok := record.FirstManufacturer(); ok {
			parts = append(parts, manufacturer)
		}
		labels = append(labels, strings.Join(parts, " "))
	}
	return labels
}

// ParseCompanyInfo returns a flat list alternating manufacturer and id:
// [manufacturer0, id0, manufacturer1, id1, ...]. Each entry becomes its
// own list item, so the pairs are deliberately not joined.
func ParseCompanyInfo(records []openfda.DrugRecord) []string {
	info := make([]string, 0, 2*len(records))
	for _, record := range records {
		manufacturer, ok := record.FirstManufacturer()
		if !ok {
			manufacturer = Unknown
		}
		info = append(info, manufacturer, record.ID())
	}
	return info
}

// ParseWarnings returns the first warning of each record, or Unknown when
// the record has no warnings list or an empty one
func ParseWarnings(records []openfda.DrugRecord) []string {
	warnings := make([]string, 0, len(records))
	for _, record := range records {
		warning, ok := record.FirstWarning()
		if !ok {
			warning = Unknown
		}
		warnings = append(warnings, warning)
	}
	return warnings
}
