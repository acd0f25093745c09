package vesting

import (
	"math/big"
	"strings"
)

// DisplayDecimals is the fixed-point scale of base-unit amounts: 10^18 base
// units make one whole token.
const DisplayDecimals = 18

// DisplayUnits renders a base-unit amount in whole tokens as an exact
// decimal expansion. The decimal point is placed by digit position, so
// amounts far beyond 64 bits keep every digit. Trailing fractional zeros
// are trimmed and a zero fraction is omitted entirely.
func DisplayUnits(amount *big.Int) string {
	digits := amount.String()
	sign := ``
	if strings.HasPrefix(digits, "-") {
		sign, digits = "-", digits[1:]
	}
	if len(digits) <= DisplayDecimals {
		digits = strings.Repeat("0", DisplayDecimals-len(digits)+1) + digits
	}
	point := len(digits) - DisplayDecimals
	whole, frac := digits[:point], digits[point:]
	frac = strings.TrimRight(frac, "0")
	if len(frac) == 0 {
		return sign + whole
	}
	return sign + whole + "." + frac
}
