package cartera

import (
	"cartera-service/internal/domain"
	"cartera-service/internal/textnorm"

	"github.com/shopspring/decimal"
)

var currencyAliases = map[string]domain.Currency{
	"":          domain.CurrencyLocal,
	"COP":       domain.CurrencyLocal,
	"PESO":      domain.CurrencyLocal,
	"PESOS":     domain.CurrencyLocal,
	"PESOS COL": domain.CurrencyLocal,
	"LOCAL":     domain.CurrencyLocal,
	"USD":       domain.CurrencyUSD,
	"US":        domain.CurrencyUSD,
	"DOLAR":     domain.CurrencyUSD,
	"DOLARES":   domain.CurrencyUSD,
	"EUR":       domain.CurrencyEUR,
	"EURO":      domain.CurrencyEUR,
	"EUROS":     domain.CurrencyEUR,
}

// ParseCurrency interpreta el texto de moneda de Pisa.
// ok es false si el texto no es reconocido; en ese caso se asume moneda local.
func ParseCurrency(text string) (cur domain.Currency, ok bool) {
	key := textnorm.Normalize(text)
	if c, found := currencyAliases[key]; found {
		return c, true
	}
	return domain.CurrencyLocal, false
}

// Converter lleva saldos a moneda local y cuenta conversiones con tasa cero.
type Converter struct {
	rates     domain.Rates
	zeroRates int
}

// NewConverter crea un conversor con las tasas de la ejecución.
func NewConverter(rates domain.Rates) *Converter {
	return &Converter{rates: rates}
}

// Rates devuelve las tasas configuradas.
func (c *Converter) Rates() domain.Rates {
	return c.rates
}

// ZeroRateConversions cuenta los montos en divisa convertidos con tasa cero o ausente.
func (c *Converter) ZeroRateConversions() int {
	return c.zeroRates
}

// Convert multiplica amount por la tasa de cur. LOCAL no cambia.
func (c *Converter) Convert(amount float64, cur domain.Currency) float64 {
	rate, foreign := c.rateFor(cur)
	if !foreign {
		return amount
	}
	if rate == 0 && amount != 0 {
		c.zeroRates++
	}
	return multiply(amount, rate)
}

// ConvertAmounts aplica la tasa a saldo, rangos y provisión.
// Una conversión con tasa cero se cuenta una sola vez por registro.
func (c *Converter) ConvertAmounts(a domain.Amounts, cur domain.Currency) domain.Amounts {
	return c.convertAmounts(a, cur, true)
}

func (c *Converter) convertAmounts(a domain.Amounts, cur domain.Currency, count bool) domain.Amounts {
	rate, foreign := c.rateFor(cur)
	if !foreign {
		return a
	}
	if count && rate == 0 && a.Balance != 0 {
		c.zeroRates++
	}
	out := domain.Amounts{
		Balance:   multiply(a.Balance, rate),
		Provision: multiply(a.Provision, rate),
	}
	for i, v := range a.Buckets {
		out.Buckets[i] = multiply(v, rate)
	}
	return out
}

func (c *Converter) rateFor(cur domain.Currency) (float64, bool) {
	switch cur {
	case domain.CurrencyUSD:
		return c.rates.USD, true
	case domain.CurrencyEUR:
		return c.rates.EUR, true
	default:
		return 0, false
	}
}

// Convert lleva amount a moneda local con las tasas dadas, sin diagnóstico.
func Convert(amount float64, cur domain.Currency, rates domain.Rates) float64 {
	return NewConverter(rates).Convert(amount, cur)
}

// multiply opera en decimal para no arrastrar error binario.
func multiply(amount, rate float64) float64 {
	if amount == 0 || rate == 0 {
		return 0
	}
	return decimal.NewFromFloat(amount).Mul(decimal.NewFromFloat(rate)).InexactFloat64()
}
