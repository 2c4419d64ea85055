package validation

import (
	"strings"
	"testing"
)

func TestValidateOutputFormat(t *testing.T) {
	tests := []struct {
		name      string
		format    string
		expectErr bool
	}{
		{name: "Pretty", format: "pretty"},
		{name: "CSV", format: "csv"},
		{name: "JSON", format: "json"},
		{name: "Empty", format: "", expectErr: true},
		{name: "Uppercase", format: "CSV", expectErr: true},
		{name: "Surrounding spaces", format: " pretty ", expectErr: true},
		{name: "Spreadsheet", format: "xlsx", expectErr: true},
		{name: "Prefix of a format", format: "prettyprint", expectErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateOutputFormat(tt.format)
			if (err != nil) != tt.expectErr {
				t.Errorf("ValidateOutputFormat(%q) error = %v, expectErr %v", tt.format, err, tt.expectErr)
			}
		})
	}
}

func TestValidateOutputFormatErrorMessage(t *testing.T) {
	err := ValidateOutputFormat("xml")
	if err == nil {
		t.Fatal("expected error for xml")
	}
	for _, want := range append([]string{`"xml"`}, OutputFormats...) {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %s", err, want)
		}
	}
}
