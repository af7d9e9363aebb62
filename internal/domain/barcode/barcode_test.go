package barcode

import "testing"

func TestNormalize_SeparatorsAndWhitespace(t *testing.T) {
	want := "123456789012"
	inputs := []string{
		"123456789012",
		"123-456-789-012",
		" 123 456 789 012 ",
		"123_456_789_012",
	}
	for _, in := range inputs {
		got, ok := Normalize(in)
		if !ok {
			t.Errorf("Normalize(%q) unexpectedly invalid", in)
			continue
		}
		if got != want {
			t.Errorf("Normalize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{"12345678", "123456789012", "1234567890123", "12345678901"}
	for _, in := range inputs {
		once, ok := Normalize(in)
		if !ok {
			t.Fatalf("Normalize(%q) unexpectedly invalid", in)
		}
		twice, ok := Normalize(once)
		if !ok {
			t.Fatalf("Normalize(Normalize(%q)) unexpectedly invalid", in)
		}
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}

func TestNormalize_ChecksumCompletion(t *testing.T) {
	// 11-digit UPC-A body gets a deterministic check digit appended.
	got, ok := Normalize("12345678901")
	if !ok {
		t.Fatal("11-digit key must be valid")
	}
	if got != "123456789012" {
		t.Errorf("check digit completion = %q, want %q", got, "123456789012")
	}

	// 036000291452 is a canonical UPC-A; its 11-digit body must round-trip.
	got, ok = Normalize("03600029145")
	if !ok {
		t.Fatal("11-digit key must be valid")
	}
	if got != "036000291452" {
		t.Errorf("check digit completion = %q, want %q", got, "036000291452")
	}
}

func TestNormalize_Invalid(t *testing.T) {
	inputs := []string{
		"",
		"abc",
		"12345",          // unsupported length
		"1234567890",     // 10 digits
		"12345678901234", // 14 digits
		"12345678901a",   // non-numeric after cleaning
		"---",
	}
	for _, in := range inputs {
		if got, ok := Normalize(in); ok {
			t.Errorf("Normalize(%q) = %q, expected invalid", in, got)
		}
	}
}

func TestKeyLike(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"123456789012", true},
		{"barcode 1234567890123", true},
		{"12345678901", true},
		{"12345678901234", true},
		{"almond milk", false},
		{"1234567890", false},          // 10 digits
		{"123456789012345", false},     // 15 digits
		{"call 555 0123", false},       // short digit run
		{"upc: 123-456-789-012", true}, // separators ignored
	}
	for _, tc := range tests {
		if got := KeyLike(tc.text); got != tc.want {
			t.Errorf("KeyLike(%q) = %v, want %v", tc.text, got, tc.want)
		}
	}
}

func TestDigits(t *testing.T) {
	if got := Digits("a1b2-c3 4"); got != "1234" {
		t.Errorf("Digits = %q, want %q", got, "1234")
	}
}
