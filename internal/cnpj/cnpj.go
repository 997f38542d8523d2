// Package cnpj normalizes and validates Brazilian company tax-registration
// numbers. Values are stored normalized: 14 digits, no punctuation.
package cnpj

import "strings"

// Normalize strips everything but digits from a formatted CNPJ
// ("12.345.678/0001-95" -> "12345678000195").
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(14)
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Valid reports whether s (after normalization) is a well-formed CNPJ:
// 14 digits, not a repeated single digit, and both check digits correct.
func Valid(s string) bool {
	s = Normalize(s)
	if len(s) != 14 {
		return false
	}

	repetido := true
	for i := 1; i < 14; i++ {
		if s[i] != s[0] {
			repetido = false
			break
		}
	}
	if repetido {
		return false
	}

	if digitoVerificador(s, 12) != int(s[12]-'0') {
		return false
	}
	return digitoVerificador(s, 13) == int(s[13]-'0')
}

// digitoVerificador computes the check digit over the first n digits using
// the Receita Federal weight sequence (2..9 repeating from the right).
func digitoVerificador(s string, n int) int {
	peso := 2
	soma := 0
	for i := n - 1; i >= 0; i-- {
		soma += int(s[i]-'0') * peso
		peso++
		if peso > 9 {
			peso = 2
		}
	}
	resto := soma % 11
	if resto < 2 {
		return 0
	}
	return 11 - resto
}
