package normalize

import "testing"

func TestParseCurrency(t *testing.T) {
	cases := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"$1,234.56", 1234.56, true},
		{"$120.50", 120.5, true},
		{"$13.", 13, true},
		{"120.50", 120.5, true},
		{"1,098", 1098, true},
		{"-5", -5, true},
		{"USD 12 ($13.25 list)", 13.25, true},
		{"free", 0, false},
		{"", 0, false},
		{"$", 0, false},
	}
	for _, c := range cases {
		got, ok := parseCurrency(c.in)
		if ok != c.ok || got != c.want {
			t.Errorf("parseCurrency(%q)=(%v,%v); want (%v,%v)", c.in, got, ok, c.want, c.ok)
		}
	}
}

func TestRound2(t *testing.T) {
	cases := []struct{ in, want float64 }{
		{1.005, 1.0},
		{1.006, 1.01},
		{-2.336, -2.34},
		{10, 10},
	}
	for _, c := range cases {
		if got := round2(c.in); got != c.want {
			t.Errorf("round2(%v)=%v; want %v", c.in, got, c.want)
		}
	}
}
