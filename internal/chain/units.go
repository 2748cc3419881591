package chain

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// wei is the chain's base unit; all contract amounts are passed in wei.
var weiPerEther = decimal.New(1, 18)

// ToWei converts a decimal ether amount ("1.5") to wei. Amounts with more
// than 18 fractional digits or negative values are rejected rather than
// silently truncated.
func ToWei(amount string) (*big.Int, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("parse amount %q: %w", amount, err)
	}
	if d.IsNegative() {
		return nil, errors.New("amount must not be negative")
	}

	wei := d.Mul(weiPerEther)
	if !wei.IsInteger() {
		return nil, fmt.Errorf("amount %q has sub-wei precision", amount)
	}
	return wei.BigInt(), nil
}

// FromWei renders a wei amount as a decimal ether string with trailing
// zeros trimmed, so ToWei(FromWei(x)) == x for every non-negative x.
func FromWei(wei *big.Int) string {
	if wei == nil {
		return "0"
	}
	return decimal.NewFromBigInt(wei, -18).String()
}
