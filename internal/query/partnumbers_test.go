package query

import (
	"reflect"
	"testing"
)

func TestNormalizeQuery(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"brake pads", "BRAKE PADS"},
		{"  brake   pads  ", "BRAKE PADS"},
		{"951-375-042-04", "951-375-042-04"},
		{"Oil\tFilter", "OIL FILTER"},
		{"", ""},
		{"   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := NormalizeQuery(tt.input)
			if result != tt.expected {
				t.Errorf("NormalizeQuery(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestNormalizePartNumber(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"bp1234", "BP1234"},
		{" bp 1234 ", "BP1234"},
		{"951-375-042-04", "951-375-042-04"},
		{"123.456", "123.456"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := NormalizePartNumber(tt.input)
			if result != tt.expected {
				t.Errorf("NormalizePartNumber(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestExtractPartNumbers(t *testing.T) {
	tests := []struct {
		input    string
		expected []string
	}{
		// Dashed OEM numbers
		{"951-375-042-04", []string{"951-375-042-04"}},
		{"OEM 12345-ABC", []string{"12345-ABC"}},
		// Dotted numbers
		{"123.456", []string{"123.456"}},
		// Continuous alphanumeric needs both letters and digits
		{"bp1234", []string{"BP1234"}},
		{"06A906461L maf sensor", []string{"06A906461L"}},
		{"12345", nil},
		{"BRAKE", nil},
		// Labeled numbers
		{"Part # ABC123", []string{"ABC123"}},
		{"PN 11427566327", []string{"11427566327"}},
		// Descriptive queries yield nothing
		{"brake pads", nil},
		{"2015 Honda Civic brake pads", nil},
		// Multiple candidates come back sorted
		{"12345-ABC or 678.90", []string{"12345-ABC", "678.90"}},
		{"", nil},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := ExtractPartNumbers(tt.input)
			if len(result) == 0 && len(tt.expected) == 0 {
				return
			}
			if !reflect.DeepEqual(result, tt.expected) {
				t.Errorf("ExtractPartNumbers(%q) = %v, want %v", tt.input, result, tt.expected)
			}
		})
	}
}

func TestExtractPartNumbersLengthBounds(t *testing.T) {
	// Core length under 3 or over 20 is rejected.
	if got := ExtractPartNumbers("A-1"); got != nil {
		t.Errorf("expected no candidates for A-1, got %v", got)
	}
	long := "AB123456789012345678901-XYZ"
	if got := ExtractPartNumbers(long); got != nil {
		t.Errorf("expected no candidates for %q, got %v", long, got)
	}
}
