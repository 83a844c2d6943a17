package validate

import (
	"github.com/ShiraazMoollatjie/goluhn"
)

// IsLuhn reports whether s is a digit string with a valid Luhn check digit.
func IsLuhn(s string) bool {
	return goluhn.Validate(s) == nil
}
