// Package barcode normalizes product barcodes (UPC-A, EAN-8, EAN-13).
package barcode

import "strings"

// Accepted normalized lengths: EAN-8, UPC-A, EAN-13.
// An 11-digit key is a UPC-A missing its check digit and is completed.
const (
	lenEAN8     = 8
	lenUPCNoCkd = 11
	lenUPCA     = 12
	lenEAN13    = 13
	keyLikeMin  = 11
	keyLikeMax  = 14
)

// Normalize strips whitespace and separator characters from a raw barcode
// and completes an 11-digit UPC-A with its check digit. It returns the
// normalized key and whether the input is a valid barcode. Normalization
// is idempotent: Normalize(Normalize(k)) == Normalize(k).
func Normalize(raw string) (string, bool) {
	cleaned := clean(raw)
	if cleaned == "" || !allDigits(cleaned) {
		return "", false
	}

	switch len(cleaned) {
	case lenUPCNoCkd:
		return cleaned + string(rune('0'+checkDigit(cleaned))), true
	case lenEAN8, lenUPCA, lenEAN13:
		return cleaned, true
	default:
		return "", false
	}
}

// Digits returns only the digit characters of s.
func Digits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// KeyLike reports whether free text is dominated by a barcode-length digit
// run: 11 to 14 digits inclusive after removing non-digit characters.
func KeyLike(text string) bool {
	n := len(Digits(text))
	return n >= keyLikeMin && n <= keyLikeMax
}

// clean removes whitespace and common separator characters.
func clean(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		switch r {
		case ' ', '\t', '\n', '\r', '-', '_':
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// checkDigit computes the UPC-A check digit for an 11-digit body:
// 3x the sum of odd-position digits plus the sum of even-position digits,
// mod 10, subtracted from 10 (mod 10).
func checkDigit(body string) int {
	var odd, even int
	for i, r := range body {
		d := int(r - '0')
		if i%2 == 0 { // positions 1,3,5,... (1-based odd)
			odd += d
		} else {
			even += d
		}
	}
	return (10 - (odd*3+even)%10) % 10
}
