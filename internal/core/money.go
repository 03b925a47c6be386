// Package core holds the ledger model, the spending catalog and the metric
// engine. Nothing in it performs I/O.
//
// This file contains helpers for parsing and formatting whole-rupee amounts.
package core

import (
	"strconv"
	"strings"
	"unicode"
)

// Currency is the symbol printed in front of every amount.
const Currency = "₹"

// maxAmount guards against overflow when amounts are summed.
const maxAmount = 10_000_000

// ParseAmount converts user text to a non-negative whole amount.
//
// A leading currency symbol and surrounding spaces are ignored. Signs,
// decimals and any other characters are rejected.
//
// Examples:
//
//	ParseAmount("120")  -> 120, nil
//	ParseAmount("₹ 45") -> 45, nil
//	ParseAmount("-5")   -> 0, ErrInvalidAmount
//	ParseAmount("abc")  -> 0, ErrInvalidAmount
func ParseAmount(s string) (int, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimSpace(strings.TrimPrefix(s, Currency))
	if s == "" {
		return 0, ErrInvalidAmount
	}
	for _, r := range s {
		if !unicode.IsDigit(r) || r > unicode.MaxASCII {
			return 0, ErrInvalidAmount
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil || n > maxAmount {
		return 0, ErrInvalidAmount
	}
	return n, nil
}

// ParsePositiveAmount is ParseAmount that also rejects zero.
func ParsePositiveAmount(s string) (int, error) {
	n, err := ParseAmount(s)
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, ErrInvalidAmount
	}
	return n, nil
}

// FormatAmount renders an amount with the currency symbol. Negative values
// keep their sign in front of the symbol.
func FormatAmount(v int) string {
	if v < 0 {
		return "-" + Currency + strconv.Itoa(-v)
	}
	return Currency + strconv.Itoa(v)
}
