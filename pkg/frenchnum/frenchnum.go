// Package frenchnum spells amounts in French for disbursement vouchers.
package frenchnum

import (
	"math"
	"strings"
	"unicode"
	"unicode/utf8"
)

var units = [...]string{
	"zéro", "un", "deux", "trois", "quatre", "cinq", "six", "sept", "huit", "neuf",
	"dix", "onze", "douze", "treize", "quatorze", "quinze", "seize",
}

var tens = [...]string{"", "dix", "vingt", "trente", "quarante", "cinquante", "soixante"}

// under100 spells 0 < n < 100. plural lets a final "quatre-vingt" take
// its s.
func under100(n int, plural bool) string {
	switch {
	case n < 17:
		return units[n]
	case n < 20:
		return "dix-" + units[n-10]
	}
	t, u := n/10, n%10
	switch t {
	case 7:
		if u == 1 {
			return "soixante et onze"
		}
		return "soixante-" + under100(10+u, plural)
	case 8:
		if u == 0 {
			if plural {
				return "quatre-vingts"
			}
			return "quatre-vingt"
		}
		return "quatre-vingt-" + units[u]
	case 9:
		return "quatre-vingt-" + under100(10+u, plural)
	}
	switch u {
	case 0:
		return tens[t]
	case 1:
		return tens[t] + " et un"
	}
	return tens[t] + "-" + units[u]
}

// under1000 spells 0 < n < 1000. plural is false in front of "mille",
// where "cent" and "quatre-vingt" stay invariable.
func under1000(n int, plural bool) string {
	h, r := n/100, n%100
	parts := make([]string, 0, 2)
	if h > 0 {
		c := "cent"
		if h > 1 {
			c = units[h] + " cent"
			if r == 0 && plural {
				c += "s"
			}
		}
		parts = append(parts, c)
	}
	if r > 0 {
		parts = append(parts, under100(r, plural))
	}
	return strings.Join(parts, " ")
}

// Cardinal spells a non-negative integer.
func Cardinal(n int64) string {
	if n <= 0 {
		return units[0]
	}
	parts := make([]string, 0, 4)

	if b := n / 1_000_000_000; b > 0 {
		w := "milliard"
		if b > 1 {
			w += "s"
		}
		if b < 1000 {
			parts = append(parts, under1000(int(b), true)+" "+w)
		} else {
			parts = append(parts, Cardinal(b)+" "+w)
		}
	}
	if m := int((n / 1_000_000) % 1000); m > 0 {
		w := "million"
		if m > 1 {
			w += "s"
		}
		parts = append(parts, under1000(m, true)+" "+w)
	}
	if k := int((n / 1000) % 1000); k > 0 {
		if k == 1 {
			parts = append(parts, "mille")
		} else {
			parts = append(parts, under1000(k, false)+" mille")
		}
	}
	if r := int(n % 1000); r > 0 {
		parts = append(parts, under1000(r, true))
	}
	return strings.Join(parts, " ")
}

// MaxAmount is the first magnitude that can no longer be spelled with
// exact cents.
const MaxAmount = 1e13

// InRange reports whether amount can be spelled out.
func InRange(amount float64) bool {
	return !math.IsNaN(amount) && math.Abs(amount) < MaxAmount
}

// ConvertAmountToFrenchWords spells amount followed by currency. A cents
// clause "et ... cent(s)" is added only when the decimal part is non-zero.
// The first letter is capitalized. Amounts outside InRange give "".
func ConvertAmountToFrenchWords(amount float64, currency string) string {
	if !InRange(amount) {
		return ""
	}
	total := int64(math.Round(math.Abs(amount) * 100))
	whole, cents := total/100, int(total%100)

	var b strings.Builder
	if amount < 0 && total > 0 {
		b.WriteString("moins ")
	}
	b.WriteString(Cardinal(whole))
	if c := strings.TrimSpace(currency); c != "" {
		b.WriteString(" ")
		b.WriteString(c)
	}
	if cents > 0 {
		b.WriteString(" et ")
		b.WriteString(under100(cents, true))
		if cents > 1 {
			b.WriteString(" cents")
		} else {
			b.WriteString(" cent")
		}
	}
	return capitalize(b.String())
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
