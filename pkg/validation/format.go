package validation

import (
	"fmt"
	"strings"

	"github.com/iwvelando/hotel-forecast/pkg/constants"
)

// OutputFormats lists the report renderings the CLI supports.
var OutputFormats = []string{
	constants.OutputFormatPretty,
	constants.OutputFormatCSV,
	constants.OutputFormatJSON,
}

// ValidateOutputFormat checks that format names a supported rendering. Names
// are case sensitive.
func ValidateOutputFormat(format string) error {
	for _, f := range OutputFormats {
		if format == f {
			return nil
		}
	}
	return fmt.Errorf("expected output format of %s, got %q", strings.Join(OutputFormats, ", "), format)
}
