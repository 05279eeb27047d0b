package report

import (
	"bytes"
	"testing"
	"time"

	"cartera-service/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

var cutoff = time.Date(2024, time.June, 30, 0, 0, 0, 0, time.UTC)

func open(t *testing.T, data []byte) *excelize.File {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return f
}

func raw(t *testing.T, f *excelize.File, sheet string, col, line int) string {
	t.Helper()
	cell, err := excelize.CoordinatesToCellName(col, line)
	require.NoError(t, err)
	v, err := f.GetCellValue(sheet, cell, excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	return v
}

func detailRow() domain.DetailRow {
	due := time.Date(2024, time.March, 27, 0, 0, 0, 0, time.UTC)
	r := domain.DetailRow{
		Item: domain.LineItem{
			Company: "PL", Activity: "10", ClientName: "Acme", LegalName: "ACME SAS",
			CurrencyText: "PESOS COL", Balance: 1000, Value: 1200, DueDate: &due,
		},
		Classification: domain.Classification{DaysOverdue: 95, Bucket: domain.Bucket90},
		SaldoVencido:   1000,
		MoraTotal:      1000,
		SumCheck:       true,
	}
	r.Classification.Amounts.Balance = 1000
	r.Classification.Amounts.Buckets[domain.Bucket90] = 1000
	return r
}

func TestWriteCartera(t *testing.T) {
	d := domain.CarteraDetail{
		Cutoff:      cutoff,
		MonthLabels: [domain.HistoricMonths]string{"jun-24", "may-24", "abr-24", "mar-24", "feb-24", "ene-24"},
		Rows:        []domain.DetailRow{detailRow()},
		Diagnostics: domain.Diagnostics{Records: 1, UnknownLines: []string{"PL99"}, Warnings: []string{"revisar"}},
	}

	data, err := WriteCartera(d)
	require.NoError(t, err)

	f := open(t, data)
	assert.Equal(t, []string{SheetCartera, SheetValidacion}, f.GetSheetList())

	rows, err := f.GetRows(SheetCartera)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	header := rows[0]
	require.Len(t, header, len(carteraColumns(d)))
	assert.Equal(t, "EMPRESA", header[0])
	assert.Equal(t, "jun-24", header[34])
	assert.Equal(t, "Por_Vencer_1_meses", header[40])
	assert.Equal(t, "Por_Vencer_+90_dias", header[43])
	assert.Equal(t, "SALDO NO VENCIDO", header[44])
	assert.Equal(t, "Validación Vencimientos", header[len(header)-1])

	assert.Equal(t, "Acme", raw(t, f, SheetCartera, 10, 2))
	assert.Equal(t, "ACME SAS", raw(t, f, SheetCartera, 9, 2))
	assert.Equal(t, "27/03/2024", raw(t, f, SheetCartera, 21, 2))
	assert.Equal(t, "3", raw(t, f, SheetCartera, 23, 2))
	assert.Equal(t, "1000", raw(t, f, SheetCartera, 26, 2))
	assert.Equal(t, "95", raw(t, f, SheetCartera, 27, 2))
	assert.Equal(t, "1000", raw(t, f, SheetCartera, 48, 2))
	assert.Equal(t, checkOK, raw(t, f, SheetCartera, len(header)-1, 2))
	assert.Equal(t, checkError, raw(t, f, SheetCartera, len(header), 2))

	validation, err := f.GetRows(SheetValidacion)
	require.NoError(t, err)
	assert.Equal(t, []string{"CONCEPTO", "VALOR"}, validation[0])
	assert.Equal(t, []string{"Fecha de cierre", "2024-06-30"}, validation[1])
	assert.Equal(t, []string{"Registros leídos", "1"}, validation[2])
	assert.Equal(t, []string{"Línea de venta sin tabla", "PL99"}, validation[len(validation)-2])
	assert.Equal(t, []string{"Advertencia", "revisar"}, validation[len(validation)-1])
}

func TestWriteCarteraWithoutRows(t *testing.T) {
	data, err := WriteCartera(domain.CarteraDetail{Cutoff: cutoff})
	require.NoError(t, err)

	rows, err := open(t, data).GetRows(SheetCartera)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestWriteAnticipos(t *testing.T) {
	date := time.Date(2024, time.June, 12, 0, 0, 0, 0, time.UTC)
	advances := []domain.Advance{
		{Company: "PL", ClientCode: "C01", TradeName: "Cliente Uno", Value: -250, Date: &date},
		{Company: "PL", ClientCode: "C02", TradeName: "Cliente Dos", Value: 0},
	}

	data, err := WriteAnticipos(advances, domain.Diagnostics{})
	require.NoError(t, err)
	f := open(t, data)
	assert.Equal(t, []string{SheetAnticipos}, f.GetSheetList())
	assert.Equal(t, "-250", raw(t, f, SheetAnticipos, 14, 2))
	assert.Equal(t, "12-06-2024", raw(t, f, SheetAnticipos, 15, 2))
	assert.Equal(t, "", raw(t, f, SheetAnticipos, 15, 3))

	data, err = WriteAnticipos(advances, domain.Diagnostics{Warnings: []string{"1 valores de anticipo no numéricos tomados como cero"}})
	require.NoError(t, err)
	assert.Equal(t, []string{SheetAnticipos, SheetValidacion}, open(t, data).GetSheetList())
}

func TestDisplayWidth(t *testing.T) {
	assert.Equal(t, 9, displayWidth(1234567.0, kindAmount))
	assert.Equal(t, 5, displayWidth("Línea", kindText))
	assert.Equal(t, 0, displayWidth(nil, kindPercent))
	assert.Equal(t, 4, displayWidth(0.25, kindPercent))
}
