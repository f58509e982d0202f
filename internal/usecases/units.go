package usecases

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// TONDecimals is the number of nanoton digits in one TON.
const TONDecimals = 9

// TONToNanotons converts a decimal TON amount to an integer nanoton string.
// Digits beyond the ninth decimal are truncated. Amounts that truncate to
// zero are rejected.
func TONToNanotons(amount float64) (string, error) {
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
		return "", fmt.Errorf("%w: %v", ErrInvalidAmount, amount)
	}

	nanotons, err := parseWithDecimals(strconv.FormatFloat(amount, 'f', -1, 64), TONDecimals)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidAmount, err)
	}
	if nanotons == 0 {
		return "", fmt.Errorf("%w: %v TON is less than one nanoton", ErrInvalidAmount, amount)
	}
	return strconv.FormatUint(nanotons, 10), nil
}

// parseWithDecimals converts a decimal string to integer base units without
// going through floating point. Example: parseWithDecimals("1.5", 9) = 1500000000
func parseWithDecimals(s string, decimals int) (uint64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty amount")
	}

	whole, frac, _ := strings.Cut(s, ".")
	if strings.Contains(frac, ".") {
		return 0, fmt.Errorf("invalid decimal format %q", s)
	}
	if whole == "" {
		whole = "0"
	}

	if len(frac) < decimals {
		frac += strings.Repeat("0", decimals-len(frac))
	} else {
		frac = frac[:decimals]
	}

	n, err := strconv.ParseUint(whole+frac, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return n, nil
}

// roundTo rounds value to the given number of decimal places.
func roundTo(value float64, places int) float64 {
	scale := math.Pow10(places)
	return math.Round(value*scale) / scale
}
