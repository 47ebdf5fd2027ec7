package query

import (
	"reflect"
	"testing"

	"github.com/partlogicapp/partlogic-server/internal/domain"
)

func TestAnalyze(t *testing.T) {
	tests := []struct {
		name        string
		query       string
		wantType    domain.QueryType
		wantHint    string
		wantNumbers []string
	}{
		{
			name:        "dashed part number",
			query:       "951-375-042-04",
			wantType:    domain.QueryTypePartNumber,
			wantNumbers: []string{"951-375-042-04"},
		},
		{
			name:        "labeled part number with noise word",
			query:       "OEM 12345-ABC",
			wantType:    domain.QueryTypePartNumber,
			wantNumbers: []string{"12345-ABC"},
		},
		{
			name:        "continuous part number",
			query:       "BP1234",
			wantType:    domain.QueryTypePartNumber,
			wantNumbers: []string{"BP1234"},
		},
		{
			name:        "dotted part number",
			query:       "123.456",
			wantType:    domain.QueryTypePartNumber,
			wantNumbers: []string{"123.456"},
		},
		{
			name:     "year make model with part words",
			query:    "2015 Honda Civic brake pads",
			wantType: domain.QueryTypeVehiclePart,
			wantHint: "2015 Honda Civic",
		},
		{
			name:     "make and model without year",
			query:    "PORSCHE 944 ENGINE MOUNT",
			wantType: domain.QueryTypeVehiclePart,
			wantHint: "Porsche 944",
		},
		{
			name:     "alphanumeric model keeps trailing letter upper",
			query:    "2020 bmw 328i oil filter",
			wantType: domain.QueryTypeVehiclePart,
			wantHint: "2020 Bmw 328I",
		},
		{
			name:     "compound make wins over substring make",
			query:    "land rover discovery window regulator",
			wantType: domain.QueryTypeVehiclePart,
			wantHint: "Land Rover Discovery",
		},
		{
			name:     "year and make separated by filler",
			query:    "oil filter for 2012 VW Golf",
			wantType: domain.QueryTypeVehiclePart,
			wantHint: "2012 Vw Golf",
		},
		{
			name:        "part number beats descriptive tail",
			query:       "12345-ABC brake pads",
			wantType:    domain.QueryTypePartNumber,
			wantNumbers: []string{"12345-ABC"},
		},
		{
			name:     "single keyword",
			query:    "FILTER",
			wantType: domain.QueryTypeKeywords,
		},
		{
			name:     "generic keywords",
			query:    "ceramic brake pads",
			wantType: domain.QueryTypeKeywords,
		},
		{
			name:     "keywords without make or number",
			query:    "water pump gasket",
			wantType: domain.QueryTypeKeywords,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			analysis := Analyze(tt.query)

			if analysis.QueryType != tt.wantType {
				t.Errorf("QueryType = %q, want %q", analysis.QueryType, tt.wantType)
			}
			if analysis.VehicleHint != tt.wantHint {
				t.Errorf("VehicleHint = %q, want %q", analysis.VehicleHint, tt.wantHint)
			}
			if len(tt.wantNumbers) > 0 && !reflect.DeepEqual(analysis.PartNumbers, tt.wantNumbers) {
				t.Errorf("PartNumbers = %v, want %v", analysis.PartNumbers, tt.wantNumbers)
			}
			if analysis.OriginalQuery != tt.query {
				t.Errorf("OriginalQuery = %q, want %q", analysis.OriginalQuery, tt.query)
			}
		})
	}
}

func TestAnalyzeKeepsVehicleHintOnPartNumberQuery(t *testing.T) {
	// A part number query can still carry vehicle context for ranking.
	analysis := Analyze("2008 BMW 335i 06A906461L")

	if analysis.QueryType != domain.QueryTypePartNumber {
		t.Fatalf("QueryType = %q, want %q", analysis.QueryType, domain.QueryTypePartNumber)
	}
	if len(analysis.PartNumbers) != 1 || analysis.PartNumbers[0] != "06A906461L" {
		t.Errorf("PartNumbers = %v, want [06A906461L]", analysis.PartNumbers)
	}
	if analysis.VehicleHint == "" {
		t.Error("expected vehicle hint alongside part number")
	}
}

func TestDetectVehicleWordBoundaries(t *testing.T) {
	tests := []struct {
		query    string
		expected string
	}{
		// Make embedded inside a longer word is not a match.
		{"HONDAX CIVIC", ""},
		{"CHEVY S10", "Chevy S10"},
		{"KIA", "Kia"},
		// Model words stop at the first part keyword.
		{"AUDI A4 CONTROL ARM", "Audi A4"},
		{"NO VEHICLE HERE", ""},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			result := detectVehicle(tt.query)
			if result != tt.expected {
				t.Errorf("detectVehicle(%q) = %q, want %q", tt.query, result, tt.expected)
			}
		})
	}
}

func TestTitleCase(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"2015 HONDA CIVIC", "2015 Honda Civic"},
		{"328I", "328I"},
		{"MERCEDES-BENZ", "Mercedes-Benz"},
		{"vw golf", "Vw Golf"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := titleCase(tt.input)
			if result != tt.expected {
				t.Errorf("titleCase(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}
