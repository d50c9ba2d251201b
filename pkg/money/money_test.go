package money

import "testing"

func TestFormat(t *testing.T) {
	t.Parallel()

	cases := []struct {
		amount int64
		want   string
	}{
		{0, "0.00"},
		{5, "0.05"},
		{50, "0.50"},
		{100000, "1000.00"},
		{129900, "1299.00"},
		{129905, "1299.05"},
		{-2500, "-25.00"},
	}
	for _, tc := range cases {
		if got := Format(tc.amount); got != tc.want {
			t.Fatalf("Format(%d) = %q, want %q", tc.amount, got, tc.want)
		}
	}
}

func TestFormatWithCurrency(t *testing.T) {
	t.Parallel()

	if got := FormatWithCurrency(100000, "thb"); got != "1000.00 THB" {
		t.Fatalf("FormatWithCurrency() = %q, want %q", got, "1000.00 THB")
	}
	if got := FormatWithCurrency(100000, " "); got != "1000.00" {
		t.Fatalf("FormatWithCurrency() without code = %q, want %q", got, "1000.00")
	}
}

func TestParse(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want int64
	}{
		{"299", 29900},
		{"299.0", 29900},
		{"299.00", 29900},
		{"299.5", 29950},
		{"299.05", 29905},
		{"0.99", 99},
		{" 1299.00 ", 129900},
	}
	for _, tc := range cases {
		got, err := Parse(tc.in)
		if err != nil {
			t.Fatalf("Parse(%q) error = %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("Parse(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestParseRejectsBadInput(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"", "   ", "-5", "-0.50", "1.234", "abc", "1.x", "1."} {
		if _, err := Parse(in); err == nil {
			t.Fatalf("Parse(%q) expected error", in)
		}
	}
}

func TestFormatParseRoundTrip(t *testing.T) {
	t.Parallel()

	for _, amount := range []int64{0, 1, 99, 100, 50000, 100000, 129900} {
		got, err := Parse(Format(amount))
		if err != nil {
			t.Fatalf("Parse(Format(%d)) error = %v", amount, err)
		}
		if got != amount {
			t.Fatalf("round trip %d -> %d", amount, got)
		}
	}
}
