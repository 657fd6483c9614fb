package currency_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/Inventario-sync/pkg/currency"
)

func TestFormatGuarani(t *testing.T) {
	cases := map[int64]string{
		0:       "₲ 0",
		500:     "₲ 500",
		5000:    "₲ 5.000",
		80000:   "₲ 80.000",
		1250000: "₲ 1.250.000",
		-3000:   "₲ -3.000",
	}
	for in, want := range cases {
		assert.Equal(t, want, currency.FormatGuarani(in), "monto %d", in)
	}
}

func TestParseGuarani(t *testing.T) {
	assert.Equal(t, int64(80000), currency.ParseGuarani("₲ 80.000"))
	assert.Equal(t, int64(80000), currency.ParseGuarani("80,000"))
	assert.Equal(t, int64(0), currency.ParseGuarani("sin precio"))
}

func TestFormatParse_IdaYVuelta(t *testing.T) {
	for _, n := range []int64{1, 999, 1000, 123456789} {
		assert.Equal(t, n, currency.ParseGuarani(currency.FormatGuarani(n)))
	}
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "80.000", currency.FormatAmount(80000))
	assert.Equal(t, "500", currency.FormatAmount(500))
	assert.Equal(t, "-1.500", currency.FormatAmount(-1500))
}
