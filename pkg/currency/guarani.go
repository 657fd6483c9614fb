// Package currency formatea montos en guaraníes (₲), moneda sin decimales.
package currency

import (
	"strconv"
	"strings"
)

// Symbol símbolo del guaraní.
const Symbol = "₲"

// FormatGuarani formatea con puntos de miles y sin decimales. Ej: 80000 → "₲ 80.000".
func FormatGuarani(amount int64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	return Symbol + " " + sign + groupThousands(strconv.FormatInt(amount, 10))
}

// FormatAmount como FormatGuarani pero sin símbolo. Ej: 80000 → "80.000".
func FormatAmount(amount int64) string {
	if amount < 0 {
		return "-" + groupThousands(strconv.FormatInt(-amount, 10))
	}
	return groupThousands(strconv.FormatInt(amount, 10))
}

// ParseGuarani convierte "₲ 80.000" (o "80,000") en 80000. Devuelve 0 si no es un número.
func ParseGuarani(s string) int64 {
	clean := strings.Map(func(r rune) rune {
		switch r {
		case '₲', '.', ',', ' ', '\t', '\u00a0':
			return -1
		}
		return r
	}, s)
	n, err := strconv.ParseInt(clean, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// groupThousands inserta puntos de miles en un string numérico sin signo.
// Ej: "25000" → "25.000", "1000000" → "1.000.000"
func groupThousands(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}
	buf := make([]byte, 0, n+n/3)
	for i, c := range []byte(s) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	return string(buf)
}
