package amount

import (
	"math/big"
	"testing"
)

func TestToRaw(t *testing.T) {
	cases := []struct {
		input    string
		decimals uint8
		want     string
	}{
		{"", 9, "0"},
		{"   ", 6, "0"},
		{"0", 9, "0"},
		{"0", 0, "0"},
		{"0.000", 6, "0"},
		{"1.2345", 2, "123"},
		{"10", 9, "10000000000"},
		{"0.5", 6, "500000"},
		{".5", 6, "500000"},
		{"5.", 6, "5000000"},
		{"007.1", 1, "71"},
		{"1.9999999999", 9, "1999999999"},
		{"42", 0, "42"},
		{"42.9", 0, "42"},
	}

	for _, tc := range cases {
		got, err := ToRaw(tc.input, tc.decimals)
		if err != nil {
			t.Fatalf("ToRaw(%q, %d): unexpected error: %v", tc.input, tc.decimals, err)
		}
		if got.String() != tc.want {
			t.Fatalf("ToRaw(%q, %d) = %s, want %s", tc.input, tc.decimals, got, tc.want)
		}
	}
}

func TestToRawInvalid(t *testing.T) {
	for _, input := range []string{"abc", "1.2.3", "-1", "1e9", ".", "1,000"} {
		if _, err := ToRaw(input, 9); err == nil {
			t.Fatalf("expected error for %q", input)
		}
	}
}

func TestToRawUint64Overflow(t *testing.T) {
	if _, err := ToRawUint64("18446744073709551616", 0); err == nil {
		t.Fatalf("expected overflow error")
	}
	got, err := ToRawUint64("18446744073.709551615", 9)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 18446744073709551615 {
		t.Fatalf("got %d", got)
	}
}

func TestFormatBalance(t *testing.T) {
	cases := []struct {
		value    int64
		decimals uint8
		want     string
	}{
		{0, 9, "0.00"},
		{0, 0, "0.00"},
		{1000000000, 9, "1.00"},
		{1234567890, 9, "1.23456789"},
		{500000, 6, "0.50"},
		{1, 6, "0.000001"},
		{1234567000000, 6, "1,234,567.00"},
		{1000, 0, "1,000.00"},
		{100, 0, "100.00"},
		{123456789, 3, "123,456.789"},
	}

	for _, tc := range cases {
		got := FormatBalance(big.NewInt(tc.value), tc.decimals)
		if got != tc.want {
			t.Fatalf("FormatBalance(%d, %d) = %q, want %q", tc.value, tc.decimals, got, tc.want)
		}
	}
}

func TestFormatBalanceNil(t *testing.T) {
	if got := FormatBalance(nil, 9); got != "0.00" {
		t.Fatalf("nil amount = %q", got)
	}
}

func TestFormatBalanceIsLossy(t *testing.T) {
	// Grouped output is for display only.
	formatted := FormatUint64(1234567000000, 6)
	if _, err := ToRaw(formatted, 6); err == nil {
		t.Fatalf("expected grouped output to be rejected by ToRaw")
	}
	small := FormatUint64(1500000, 6)
	raw, err := ToRaw(small, 6)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if raw.Uint64() != 1500000 {
		t.Fatalf("round trip mismatch: %s", raw)
	}
}

func TestFormatFixed(t *testing.T) {
	if got := FormatFixed(big.NewInt(1234567890), 9, 2); got != "1.23" {
		t.Fatalf("got %q", got)
	}
	if got := FormatFixed(big.NewInt(1235000), 6, 2); got != "1.24" {
		t.Fatalf("got %q", got)
	}
	if got := FormatFixed(nil, 6, 2); got != "0.00" {
		t.Fatalf("got %q", got)
	}
}

func TestGroupThousands(t *testing.T) {
	cases := map[int64]string{
		0:          "0",
		999:        "999",
		1000:       "1,000",
		123456:     "123,456",
		1234567:    "1,234,567",
		-1234567:   "-1,234,567",
		1000000000: "1,000,000,000",
	}
	for value, want := range cases {
		if got := GroupThousands(big.NewInt(value)); got != want {
			t.Fatalf("GroupThousands(%d) = %q, want %q", value, got, want)
		}
	}
}
