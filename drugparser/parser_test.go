package drugparser

import (
	"reflect"
	"testing"

	"github.com/giygas/openfda-gateway/openfda"
)

func manufacturer(names ...any) map[string]any {
	return map[string]any{"manufacturer_name": names}
}

func TestParseDrugLabels(t *testing.T) {
	tests := []struct {
		name    string
		records []openfda.DrugRecord
		want    []string
	}{
		{
			name: "all fields",
			records: []openfda.DrugRecord{
				{"id": "X1", "active_ingredient": []any{"IBU"}, "openfda": manufacturer("ACME")},
			},
			want: []string{"X1 IBU ACME"},
		},
		{
			name:    "id only",
			records: []openfda.DrugRecord{{"id": "X2"}},
			want:    []string{"X2"},
		},
		{
			name:    "manufacturer without ingredient",
			records: []openfda.DrugRecord{{"id": "X3", "openfda": manufacturer("ACME")}},
			want:    []string{"X3 ACME"},
		},
		{
			name:    "empty ingredient list",
			records: []openfda.DrugRecord{{"id": "X4", "active_ingredient": []any{}}},
			want:    []string{"X4"},
		},
		{
			name:    "missing id",
			records: []openfda.DrugRecord{{"active_ingredient": []any{"IBU"}}},
			want:    []string{"IBU"},
		},
		{
			name:    "no fields at all",
			records: []openfda.DrugRecord{{}},
			want:    []string{""},
		},
		{
			name:    "order preserved",
			records: []openfda.DrugRecord{{"id": "b"}, {"id": "a"}},
			want:    []string{"b", "a"},
		},
		{
			name:    "no records",
			records: []openfda.DrugRecord{},
			want:    []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseDrugLabels(tt.records); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseDrugLabels() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseCompanyInfo(t *testing.T) {
	records := []openfda.DrugRecord{
		{"id": "X5", "openfda": manufacturer("ACME")},
		{"id": "X6"},
		{"id": "X7", "openfda": manufacturer()},
	}

	want := []string{"ACME", "X5", Unknown, "X6", Unknown, "X7"}
	if got := ParseCompanyInfo(records); !reflect.DeepEqual(got, want) {
		t.Errorf("ParseCompanyInfo() = %q, want %q", got, want)
	}
}

func TestParseWarnings(t *testing.T) {
	tests := []struct {
		name   string
		record openfda.DrugRecord
		want   string
	}{
		{"no warnings", openfda.DrugRecord{"id": "X3"}, Unknown},
		{"first warning", openfda.DrugRecord{"id": "X4", "warnings": []any{"may cause drowsiness", "second"}}, "may cause drowsiness"},
		{"empty list", openfda.DrugRecord{"id": "X5", "warnings": []any{}}, Unknown},
		{"empty first entry kept", openfda.DrugRecord{"id": "X6", "warnings": []any{""}}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseWarnings([]openfda.DrugRecord{tt.record})
			if len(got) != 1 || got[0] != tt.want {
				t.Errorf("ParseWarnings() = %q, want [%q]", got, tt.want)
			}
		})
	}
}
