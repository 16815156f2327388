package frenchnum

import (
	"math"
	"strings"
	"testing"
)

func TestCardinal(t *testing.T) {
	cases := map[int64]string{
		0:             "zéro",
		1:             "un",
		16:            "seize",
		17:            "dix-sept",
		21:            "vingt et un",
		22:            "vingt-deux",
		61:            "soixante et un",
		70:            "soixante-dix",
		71:            "soixante et onze",
		77:            "soixante-dix-sept",
		80:            "quatre-vingts",
		81:            "quatre-vingt-un",
		91:            "quatre-vingt-onze",
		99:            "quatre-vingt-dix-neuf",
		100:           "cent",
		101:           "cent un",
		200:           "deux cents",
		201:           "deux cent un",
		280:           "deux cent quatre-vingts",
		1000:          "mille",
		1001:          "mille un",
		2000:          "deux mille",
		80000:         "quatre-vingt mille",
		200000:        "deux cent mille",
		1_000_000:     "un million",
		2_500_000:     "deux millions cinq cent mille",
		80_000_000:    "quatre-vingts millions",
		200_000_000:   "deux cents millions",
		1_000_000_000: "un milliard",
		3_000_001_000: "trois milliards mille",
	}
	for n, want := range cases {
		if got := Cardinal(n); got != want {
			t.Errorf("Cardinal(%d) = %q, want %q", n, got, want)
		}
	}
}

func TestConvertAmountToFrenchWords_WholeAmount(t *testing.T) {
	got := ConvertAmountToFrenchWords(100, "Gourdes")
	if got != "Cent Gourdes" {
		t.Fatalf("got %q", got)
	}
	if !strings.HasSuffix(got, "Gourdes") || strings.Contains(got, " et ") {
		t.Fatalf("whole amounts must not carry a cents clause: %q", got)
	}
}

func TestConvertAmountToFrenchWords_WithCents(t *testing.T) {
	got := ConvertAmountToFrenchWords(21.50, "Dollars américain")
	if got != "Vingt et un Dollars américain et cinquante cents" {
		t.Fatalf("got %q", got)
	}
	if !strings.Contains(strings.ToLower(got), "vingt et un") {
		t.Fatalf("missing integer words: %q", got)
	}

	if got := ConvertAmountToFrenchWords(0.01, "Gourdes"); got != "Zéro Gourdes et un cent" {
		t.Fatalf("singular cent: %q", got)
	}
	// float noise must round, not truncate
	if got := ConvertAmountToFrenchWords(1.005+0.0000001, "Gourdes"); !strings.HasSuffix(got, "et un cent") {
		t.Fatalf("rounding: %q", got)
	}
}

func TestConvertAmountToFrenchWords_EdgeCases(t *testing.T) {
	if got := ConvertAmountToFrenchWords(-5, "Gourdes"); got != "Moins cinq Gourdes" {
		t.Fatalf("negative: %q", got)
	}
	if got := ConvertAmountToFrenchWords(1250, ""); got != "Mille deux cent cinquante" {
		t.Fatalf("no currency: %q", got)
	}
}

func TestConvertAmountToFrenchWords_OutOfRange(t *testing.T) {
	for _, amount := range []float64{1e19, -1e13, 1e15 + 0.5, math.NaN(), math.Inf(1)} {
		if got := ConvertAmountToFrenchWords(amount, "Gourdes"); got != "" {
			t.Fatalf("%v: want empty, got %q", amount, got)
		}
	}
	got := ConvertAmountToFrenchWords(9999999999999.99, "Gourdes")
	if !strings.HasPrefix(got, "Neuf mille neuf cent quatre-vingt-dix-neuf milliards") || !strings.HasSuffix(got, "Gourdes et quatre-vingt-dix-neuf cents") {
		t.Fatalf("largest amount: %q", got)
	}
}
