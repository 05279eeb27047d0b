package cartera

import (
	"time"

	"cartera-service/internal/domain"

	"github.com/shopspring/decimal"
)

// DebtModelInput reúne lo necesario para armar el modelo de deuda.
type DebtModelInput struct {
	Items    []domain.LineItem
	Advances []domain.Advance
	Cutoff   time.Time
	Rates    domain.Rates
	Lines    *LineTable
	Country  string
}

// ProcessItems clasifica cada registro y convierte sus montos a moneda local.
func ProcessItems(items []domain.LineItem, cutoff time.Time, conv *Converter) []domain.ProcessedItem {
	out := make([]domain.ProcessedItem, 0, len(items))
	for _, it := range items {
		c := Classify(it.Balance, it.DueDate, cutoff)
		out = append(out, domain.ProcessedItem{
			Item:           it,
			Classification: c,
			Local:          conv.ConvertAmounts(c.Amounts, it.Currency),
		})
	}
	return out
}

// BuildDebtModel arma las hojas PESOS, DIVISAS y VENCIMIENTO.
//
// PESOS: líneas de la partición pesos en moneda local, más los anticipos como saldo no vencido.
// DIVISAS: líneas de la partición divisas o registros en moneda extranjera; la línea puede
// forzar la moneda (PL11 USD, PL41 EUR) y los montos se convierten con la TRM.
// VENCIMIENTO: Aggregate sobre todos los registros convertidos, sin anticipos.
func BuildDebtModel(in DebtModelInput, diag *domain.Diagnostics) domain.DebtModel {
	table := in.Lines
	if table == nil {
		table = DefaultLineTable()
	}
	conv := NewConverter(in.Rates)
	processed := ProcessItems(in.Items, in.Cutoff, conv)

	var pesos, divisas []currencyRow
	for _, p := range processed {
		it := p.Item
		part := table.PartitionOf(it.BusinessLine)

		if part == PartitionPesos && it.Currency == domain.CurrencyLocal {
			pesos = append(pesos, currencyRow{
				cur: domain.CurrencyLocal,
				row: operationRow(it, p.Classification, p.Classification.Amounts, domain.CurrencyLocal),
			})
		}

		if part == PartitionDivisas || it.Currency != domain.CurrencyLocal {
			cur := it.Currency
			if forced, ok := table.ForcedCurrency(it.BusinessLine); ok {
				cur = forced
			}
			local := p.Local
			if cur != it.Currency {
				local = conv.convertAmounts(p.Classification.Amounts, cur, false)
			}
			divisas = append(divisas, currencyRow{
				cur: cur,
				row: operationRow(it, p.Classification, local, cur),
			})
		}
	}
	for _, a := range in.Advances {
		pesos = append(pesos, currencyRow{cur: domain.CurrencyLocal, row: advanceRow(a)})
	}

	diag.ZeroRateConversions += conv.ZeroRateConversions()

	return domain.DebtModel{
		Cutoff:      in.Cutoff,
		Rates:       in.Rates,
		Pesos:       withTotals(pesos),
		Divisas:     withTotals(divisas),
		Vencimiento: Aggregate(processed, table, in.Country),
	}
}

type currencyRow struct {
	cur domain.Currency
	row domain.OperationRow
}

func operationRow(it domain.LineItem, c domain.Classification, local domain.Amounts, cur domain.Currency) domain.OperationRow {
	row := domain.OperationRow{
		Kind:            domain.RowGroup,
		Company:         it.Company,
		Activity:        it.Activity,
		Line:            it.BusinessLine,
		Client:          it.ClientName,
		Currency:        cur.Code(),
		OriginalBalance: it.Balance,
		ProvisionPct:    c.ProvisionPct,
		Amounts:         local,
	}
	if c.DaysOverdue > 0 {
		row.SaldoVencido = local.Balance
	} else {
		row.PorVencer = local.Balance
	}
	return row
}

type operationTotal struct {
	acc          accumulator
	original     decimal.Decimal
	saldoVencido decimal.Decimal
	porVencer    decimal.Decimal
}

func (t *operationTotal) add(r domain.OperationRow) {
	t.acc.add(r.Amounts)
	t.original = t.original.Add(decimal.NewFromFloat(r.OriginalBalance))
	t.saldoVencido = t.saldoVencido.Add(decimal.NewFromFloat(r.SaldoVencido))
	t.porVencer = t.porVencer.Add(decimal.NewFromFloat(r.PorVencer))
}

func (t *operationTotal) row(kind domain.RowKind, company, currency string) domain.OperationRow {
	return domain.OperationRow{
		Kind:         kind,
		Company:      company,
		Currency:     currency,
		SaldoVencido: t.saldoVencido.InexactFloat64(),
		PorVencer:    t.porVencer.InexactFloat64(),
		Amounts:      t.acc.amounts(),
	}
}

// withTotals agrega una fila "TOTAL <moneda>" por moneda presente y "TOTAL GENERAL" al final.
func withTotals(rows []currencyRow) []domain.OperationRow {
	if len(rows) == 0 {
		return nil
	}
	out := make([]domain.OperationRow, 0, len(rows)+len(domain.Currencies)+1)
	perCurrency := make(map[domain.Currency]*operationTotal)
	grand := &operationTotal{}
	for _, r := range rows {
		out = append(out, r.row)
		t, ok := perCurrency[r.cur]
		if !ok {
			t = &operationTotal{}
			perCurrency[r.cur] = t
		}
		t.add(r.row)
		grand.add(r.row)
	}
	for _, cur := range domain.Currencies {
		t, ok := perCurrency[cur]
		if !ok {
			continue
		}
		sub := t.row(domain.RowSubtotal, "TOTAL "+cur.Code(), cur.Code())
		sub.OriginalBalance = t.original.InexactFloat64()
		out = append(out, sub)
	}
	out = append(out, grand.row(domain.RowTotal, "TOTAL GENERAL", ""))
	return out
}
