package cartera

import (
	"testing"
	"time"

	"cartera-service/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func debtItems() []domain.LineItem {
	return []domain.LineItem{
		{Company: "PL", Activity: "10", BusinessLine: "PL10", ClientName: "A", Currency: domain.CurrencyLocal,
			Balance: 100, DueDate: datePtr(2024, time.March, 27)},
		{Company: "PL", Activity: "11", BusinessLine: "PL11", ClientName: "B", Currency: domain.CurrencyLocal,
			Balance: 100, DueDate: datePtr(2024, time.July, 15)},
		{Company: "PL", Activity: "20", BusinessLine: "PL20", ClientName: "C", Currency: domain.CurrencyUSD,
			Balance: 10, DueDate: datePtr(2023, time.June, 1)},
		{Company: "PL", Activity: "41", BusinessLine: "PL41", ClientName: "D", Currency: domain.CurrencyEUR,
			Balance: 2, DueDate: datePtr(2024, time.June, 1)},
	}
}

func TestBuildDebtModel(t *testing.T) {
	var diag domain.Diagnostics
	model := BuildDebtModel(DebtModelInput{
		Items:    debtItems(),
		Advances: []domain.Advance{{Company: "PL", ClientCode: "C77", TradeName: "Cliente Anticipo", Value: -50}},
		Cutoff:   cutoffJune,
		Rates:    domain.Rates{USD: 4000},
	}, &diag)

	assert.Equal(t, 1, diag.ZeroRateConversions)
	assert.Equal(t, cutoffJune, model.Cutoff)

	require.Len(t, model.Pesos, 4)
	assert.Equal(t, "A", model.Pesos[0].Client)
	assert.Equal(t, 100.0, model.Pesos[0].SaldoVencido)
	assert.Equal(t, "Cliente Anticipo", model.Pesos[1].Client)
	assert.Equal(t, AdvanceLine, model.Pesos[1].Line)
	assert.Equal(t, domain.RowSubtotal, model.Pesos[2].Kind)
	assert.Equal(t, "TOTAL PESOS COL", model.Pesos[2].Company)
	assert.Equal(t, 150.0, model.Pesos[2].Amounts.Balance)
	assert.Equal(t, domain.RowTotal, model.Pesos[3].Kind)
	assert.Equal(t, "TOTAL GENERAL", model.Pesos[3].Company)
	assert.Equal(t, 150.0, model.Pesos[3].Amounts.Balance)
	assert.Equal(t, 100.0, model.Pesos[3].SaldoVencido)
	assert.Equal(t, 50.0, model.Pesos[3].PorVencer)

	require.Len(t, model.Divisas, 6)
	forced := model.Divisas[0]
	assert.Equal(t, "B", forced.Client)
	assert.Equal(t, "DOLAR", forced.Currency)
	assert.Equal(t, 100.0, forced.OriginalBalance)
	assert.Equal(t, 400000.0, forced.Amounts.Balance)
	assert.Equal(t, 400000.0, forced.PorVencer)

	usd := model.Divisas[1]
	assert.Equal(t, "C", usd.Client)
	assert.Equal(t, 40000.0, usd.Amounts.Balance)
	assert.Equal(t, 40000.0, usd.Amounts.Provision)
	assert.Equal(t, 100.0, usd.ProvisionPct)

	eur := model.Divisas[2]
	assert.Equal(t, "EURO", eur.Currency)
	assert.Equal(t, 0.0, eur.Amounts.Balance)

	assert.Equal(t, "TOTAL DOLAR", model.Divisas[3].Company)
	assert.Equal(t, 110.0, model.Divisas[3].OriginalBalance)
	assert.Equal(t, 440000.0, model.Divisas[3].Amounts.Balance)
	assert.Equal(t, "TOTAL EURO", model.Divisas[4].Company)
	assert.Equal(t, 440000.0, model.Divisas[5].Amounts.Balance)

	groups := model.Vencimiento.Groups()
	require.Len(t, groups, 4)
	total, ok := model.Vencimiento.GrandTotal()
	require.True(t, ok)
	assert.Equal(t, 40200.0, total.Amounts.Balance)
}

func TestBuildDebtModelWithoutForeignRecords(t *testing.T) {
	var diag domain.Diagnostics
	model := BuildDebtModel(DebtModelInput{
		Items:  debtItems()[:1],
		Cutoff: cutoffJune,
	}, &diag)

	assert.Len(t, model.Pesos, 3)
	assert.Nil(t, model.Divisas)
	assert.Zero(t, diag.ZeroRateConversions)
}

func TestProcessItemsConvertsToLocal(t *testing.T) {
	conv := NewConverter(domain.Rates{USD: 4000})
	out := ProcessItems(debtItems()[2:3], cutoffJune, conv)

	require.Len(t, out, 1)
	assert.Equal(t, 10.0, out[0].Classification.Amounts.Balance)
	assert.Equal(t, 40000.0, out[0].Local.Balance)
	assert.Equal(t, domain.Bucket360Plus, out[0].Classification.Bucket)
}
