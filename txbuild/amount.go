package txbuild

import (
	"fmt"

	"github.com/stellar/go/amount"

	"github.com/marwen-abid/stellarkit-go/errors"
)

// ParseAmount converts a decimal amount such as "12.5" into stroops.
// At most seven fractional digits are accepted.
func ParseAmount(s string) (int64, error) {
	v, err := amount.ParseInt64(s)
	if err != nil {
		return 0, errors.NewModelError(errors.INVALID_AMOUNT, fmt.Sprintf("invalid amount %q", s), err)
	}
	if v < 0 {
		return 0, errors.NewModelError(errors.INVALID_AMOUNT, fmt.Sprintf("negative amount %q", s), nil)
	}
	return v, nil
}

// FormatAmount renders stroops as a decimal string with seven fractional digits.
func FormatAmount(stroops int64) string {
	return amount.StringFromInt64(stroops)
}
