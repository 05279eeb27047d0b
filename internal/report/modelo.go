package report

import (
	"fmt"

	"cartera-service/internal/domain"
)

func operationColumns(withOriginal bool) []col {
	cols := []col{text("EMPRESA"), text("ACTIVIDAD"), text("LINEA"), text("DENOMINACION COMERCIAL")}
	if withOriginal {
		cols = append(cols, amount("SALDO MONEDA ORIGEN"))
	}
	cols = append(cols, amount("SALDO"), amount("SALDO VENCIDO"), percent("% Dotación"), amount("Valor Total Por Vencer"))
	for _, b := range domain.Buckets {
		cols = append(cols, amount(b.Name()))
	}
	return append(cols, amount("DEUDA INCOBRABLE"), text("MONEDA"))
}

func operationRows(in []domain.OperationRow, withOriginal bool) []row {
	out := make([]row, 0, len(in))
	for _, r := range in {
		v := []any{r.Company, r.Activity, r.Line, r.Client}
		if withOriginal {
			v = append(v, r.OriginalBalance)
		}
		var pct any
		if r.Kind == domain.RowGroup {
			pct = r.ProvisionPct / 100
		}
		v = append(v, r.Amounts.Balance, r.SaldoVencido, pct, r.PorVencer)
		for _, b := range r.Amounts.Buckets {
			v = append(v, b)
		}
		v = append(v, r.Amounts.Provision, r.Currency)
		out = append(out, row{values: v, bold: r.Kind != domain.RowGroup})
	}
	return out
}

var vencimientoColumns = func() []col {
	cols := []col{
		text("PAIS"), text("NEGOCIO"), text("CANAL"), text("COBRO/PAGO"),
		text("MONEDA"), text("CLIENTE"), amount("SALDO TOTAL"),
	}
	for _, b := range domain.Buckets {
		cols = append(cols, amount(b.Name()))
	}
	return append(cols, amount("DEUDA INCOBRABLE"))
}()

func vencimientoRows(rep domain.GroupedReport) []row {
	out := make([]row, 0, len(rep.Rows))
	for _, r := range rep.Rows {
		v := []any{r.Country, r.Business, r.Channel, r.PayerRole, r.Currency, r.Client, r.Amounts.Balance}
		for _, b := range r.Amounts.Buckets {
			v = append(v, b)
		}
		v = append(v, r.Amounts.Provision)
		out = append(out, row{values: v, bold: r.Kind != domain.RowGroup})
	}
	return out
}

// WriteDebtModel genera el libro del modelo de deuda. Las hojas sin filas se omiten.
func WriteDebtModel(m domain.DebtModel) ([]byte, error) {
	w, err := newWorkbook()
	if err != nil {
		return nil, err
	}

	sheets := []struct {
		name string
		cols []col
		rows []row
	}{
		{SheetPesos, operationColumns(false), operationRows(m.Pesos, false)},
		{SheetDivisas, operationColumns(true), operationRows(m.Divisas, true)},
		{SheetVencimiento, vencimientoColumns, vencimientoRows(m.Vencimiento)},
	}
	for _, s := range sheets {
		if len(s.rows) == 0 {
			continue
		}
		if err := w.addSheet(s.name, s.cols, s.rows); err != nil {
			w.f.Close()
			return nil, fmt.Errorf("hoja %s: %w", s.name, err)
		}
	}
	if w.sheets == 0 {
		w.f.Close()
		return nil, domain.ErrEmptyInput
	}
	if err := w.addDiagnostics(m.Cutoff, m.Diagnostics); err != nil {
		w.f.Close()
		return nil, err
	}
	return w.bytes()
}
