package domain

import (
	"math"
	"strconv"
	"strings"
)

// Number is a nullable float parsed from a provider cell.
type Number struct {
	value float64
	valid bool
}

// Some returns a present Number.
func Some(v float64) Number { return Number{value: v, valid: true} }

// Missing returns the missing Number.
func Missing() Number { return Number{} }

// ParseNumber converts a cell to a Number. It never fails: empty cells,
// "NA", NaN, infinities and unparseable text all yield Missing.
func ParseNumber(s string) Number {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "NA") {
		return Missing()
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return Missing()
	}
	return Some(v)
}

// Valid reports whether the number is present.
func (n Number) Valid() bool { return n.valid }

// Or returns the value, or def when missing.
func (n Number) Or(def float64) float64 {
	if !n.valid {
		return def
	}
	return n.value
}
