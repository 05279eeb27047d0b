package report

import (
	"fmt"
	"time"

	"cartera-service/internal/domain"
)

const (
	SheetCartera     = "Cartera"
	SheetAnticipos   = "Anticipos"
	SheetPesos       = "PESOS"
	SheetDivisas     = "DIVISAS"
	SheetVencimiento = "VENCIMIENTO"
	SheetValidacion  = "Validacion"
)

const (
	checkOK    = "OK"
	checkError = "ERROR"
)

func carteraColumns(d domain.CarteraDetail) []col {
	cols := []col{
		text("EMPRESA"), text("ACTIVIDAD"), text("CODIGO AGENTE"), text("AGENTE"),
		text("CODIGO COBRADOR"), text("COBRADOR"), text("CODIGO CLIENTE"), text("IDENTIFICACION"),
		text("NOMBRE"), text("DENOMINACION COMERCIAL"), text("DIRECCION"), text("TELEFONO"),
		text("CIUDAD"), text("NUMERO FACTURA"), text("TIPO"), text("MONEDA"),
		text("FECHA"), integer("DIA FECHA"), integer("MES FECHA"), integer("AÑO FECHA"),
		text("FECHA VTO"), integer("DIA FECHA VTO"), integer("MES FECHA VTO"), integer("AÑO FECHA VTO"),
		amount("VALOR"), amount("SALDO"), integer("DIAS VENCIDO"), integer("DIAS POR VENCER"),
		amount("SALDO VENCIDO"), percent("% Dotación"), amount("Valor Dotación"), amount("Mora Total"),
		amount("Valor Total Por Vencer"), amount(">=180 días"),
	}
	for _, label := range d.MonthLabels {
		cols = append(cols, amount(label))
	}
	for i := 1; i <= domain.UpcomingMonths; i++ {
		cols = append(cols, amount(fmt.Sprintf("Por_Vencer_%d_meses", i)))
	}
	cols = append(cols, amount("Por_Vencer_+90_dias"))
	for _, b := range domain.Buckets {
		cols = append(cols, amount(b.Name()))
	}
	return append(cols,
		amount("DEUDA INCOBRABLE"),
		text("Verificación Suma Saldos"),
		text("Validación Vencimientos"),
	)
}

func check(ok bool) string {
	if ok {
		return checkOK
	}
	return checkError
}

func day(t time.Time) int   { return t.Day() }
func month(t time.Time) int { return int(t.Month()) }
func year(t time.Time) int  { return t.Year() }

func carteraRow(r domain.DetailRow) row {
	it, c := r.Item, r.Classification
	v := []any{
		it.Company, it.Activity, it.AgentCode, it.Agent,
		it.CollectorCode, it.Collector, it.ClientCode, it.TaxID,
		it.LegalName, it.ClientName, it.Address, it.Phone,
		it.City, it.InvoiceNumber, it.DocType, it.CurrencyText,
		formatDate(it.InvoiceDate), datePart(it.InvoiceDate, day), datePart(it.InvoiceDate, month), datePart(it.InvoiceDate, year),
		formatDate(it.DueDate), datePart(it.DueDate, day), datePart(it.DueDate, month), datePart(it.DueDate, year),
		it.Value, it.Balance, c.DaysOverdue, c.DaysToDue,
		r.SaldoVencido, c.ProvisionPct / 100, c.Amounts.Provision, r.MoraTotal,
		r.PorVencer, r.Over180,
	}
	for _, h := range r.Historic {
		v = append(v, h)
	}
	for _, u := range r.Upcoming {
		v = append(v, u)
	}
	v = append(v, r.Upcoming90)
	for _, b := range c.Amounts.Buckets {
		v = append(v, b)
	}
	v = append(v, c.Amounts.Provision, check(r.SumCheck), check(r.BucketCheck))
	return row{values: v}
}

// WriteCartera genera el libro de cartera procesada con su hoja de validación.
func WriteCartera(d domain.CarteraDetail) ([]byte, error) {
	w, err := newWorkbook()
	if err != nil {
		return nil, err
	}

	rows := make([]row, 0, len(d.Rows))
	for _, r := range d.Rows {
		rows = append(rows, carteraRow(r))
	}
	if err := w.addSheet(SheetCartera, carteraColumns(d), rows); err != nil {
		w.f.Close()
		return nil, fmt.Errorf("hoja %s: %w", SheetCartera, err)
	}
	if err := w.addDiagnostics(d.Cutoff, d.Diagnostics); err != nil {
		w.f.Close()
		return nil, err
	}
	return w.bytes()
}

// addDiagnostics escribe la hoja de validación con los contadores y advertencias de la ejecución.
func (w *workbook) addDiagnostics(cutoff time.Time, diag domain.Diagnostics) error {
	cols := []col{text("CONCEPTO"), text("VALOR")}
	rows := []row{
		{values: []any{"Fecha de cierre", cutoff.Format("2006-01-02")}},
		{values: []any{"Registros leídos", fmt.Sprint(diag.Records)}},
		{values: []any{"Valores no numéricos tomados como cero", fmt.Sprint(diag.CoercedValues)}},
		{values: []any{"Conversiones con TRM en cero", fmt.Sprint(diag.ZeroRateConversions)}},
		{values: []any{"Saldos negativos convertidos", fmt.Sprint(diag.NegativeFlipped)}},
		{values: []any{"Fechas de vencimiento no reconocidas", fmt.Sprint(diag.UnparsedDueDates)}},
		{values: []any{"Facturas posteriores al mes de cierre", fmt.Sprint(diag.FutureInvoices)}},
		{values: []any{"Filas sin montos descartadas", fmt.Sprint(diag.DroppedZeroRows)}},
	}
	for _, c := range diag.UnknownCurrencies {
		rows = append(rows, row{values: []any{"Moneda no reconocida", c}})
	}
	for _, l := range diag.UnknownLines {
		rows = append(rows, row{values: []any{"Línea de venta sin tabla", l}})
	}
	for _, msg := range diag.Warnings {
		rows = append(rows, row{values: []any{"Advertencia", msg}})
	}
	if err := w.addSheet(SheetValidacion, cols, rows); err != nil {
		return fmt.Errorf("hoja %s: %w", SheetValidacion, err)
	}
	return nil
}
