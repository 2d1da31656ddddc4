package models

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// ErrInvalidMoney is returned by ParseMoney for malformed or negative amounts
var ErrInvalidMoney = errors.New("invalid monetary amount")

var moneyPattern = regexp.MustCompile(`^([0-9]*)(?:[.,]([0-9]{1,2}))?$`)

// largest whole amount whose cent count fits in an int64
const maxMoneyUnits = math.MaxInt64 / 100

// Money is an amount in cents. Sums of Money are exact regardless of ordering.
type Money int64

// Cents returns the raw cent count
func (m Money) Cents() int64 {
	return int64(m)
}

// MoneyFromCents builds a Money value from a cent count
func MoneyFromCents(cents int64) Money {
	return Money(cents)
}

// ParseMoney parses "25", "25.5", "25.50" or "25,50" into cents.
// Signs, exponents and amounts that do not fit in cents are rejected.
func ParseMoney(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty amount", ErrInvalidMoney)
	}
	m := moneyPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("%w: %q must be digits with at most two decimals", ErrInvalidMoney, s)
	}

	var units int64
	if whole := strings.TrimLeft(m[1], "0"); whole != "" {
		v, err := strconv.ParseInt(whole, 10, 64)
		if err != nil || v > maxMoneyUnits {
			return 0, fmt.Errorf("%w: %q is too large", ErrInvalidMoney, s)
		}
		units = v
	}

	var cents int64
	if frac := m[2]; frac != "" {
		if len(frac) == 1 {
			frac += "0"
		}
		// two ASCII digits
		cents = int64(frac[0]-'0')*10 + int64(frac[1]-'0')
	}
	if units == maxMoneyUnits && cents > math.MaxInt64%100 {
		return 0, fmt.Errorf("%w: %q is too large", ErrInvalidMoney, s)
	}
	return Money(units*100 + cents), nil
}

// String renders the amount with two decimals, e.g. "51.00"
func (m Money) String() string {
	sign := ""
	v := int64(m)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

// MarshalJSON encodes the amount as a JSON number with two decimals
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalJSON accepts a JSON number or a quoted string
func (m *Money) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(string(data), `"`)
	if raw == "null" {
		return nil
	}
	parsed, err := ParseMoney(raw)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
