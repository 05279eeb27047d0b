package report

import (
	"bytes"
	"encoding/csv"
	"testing"

	"cartera-service/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
)

func vencimiento() domain.GroupedReport {
	group := domain.ReportRow{
		Kind: domain.RowGroup, Country: "Colombia", Business: "LIBRERIAS 1", Channel: "PL20",
		PayerRole: "Cliente", Currency: "PESOS COL", Client: "Librería\tSol",
	}
	group.Amounts.Balance = 1234.5
	group.Amounts.Buckets[domain.BucketCurrent] = 1234.5

	sub := domain.ReportRow{Kind: domain.RowSubtotal, Currency: "Dólar", Amounts: group.Amounts}
	total := domain.ReportRow{Kind: domain.RowTotal, Currency: "Totales", Amounts: group.Amounts}
	return domain.GroupedReport{Rows: []domain.ReportRow{group, sub, total}}
}

func TestWriteDebtModel(t *testing.T) {
	pesos := []domain.OperationRow{
		{Kind: domain.RowGroup, Company: "PL", Activity: "10", Line: "PL10", Client: "Acme",
			Currency: "PESOS COL", ProvisionPct: 100, Amounts: domain.Amounts{Balance: 500, Provision: 500}},
		{Kind: domain.RowSubtotal, Company: "TOTAL PESOS COL", Currency: "PESOS COL",
			Amounts: domain.Amounts{Balance: 500, Provision: 500}},
	}

	data, err := WriteDebtModel(domain.DebtModel{Cutoff: cutoff, Pesos: pesos, Vencimiento: vencimiento()})
	require.NoError(t, err)

	f := open(t, data)
	assert.Equal(t, []string{SheetPesos, SheetVencimiento, SheetValidacion}, f.GetSheetList())

	header, err := f.GetRows(SheetPesos)
	require.NoError(t, err)
	assert.Len(t, header[0], len(operationColumns(false)))
	assert.Equal(t, "MONEDA", header[0][len(header[0])-1])

	assert.Equal(t, "Acme", raw(t, f, SheetPesos, 4, 2))
	assert.Equal(t, "500", raw(t, f, SheetPesos, 5, 2))
	assert.Equal(t, "1", raw(t, f, SheetPesos, 7, 2))
	assert.Equal(t, "", raw(t, f, SheetPesos, 7, 3))
	assert.Equal(t, "TOTAL PESOS COL", raw(t, f, SheetPesos, 1, 3))

	assert.Equal(t, "Colombia", raw(t, f, SheetVencimiento, 1, 2))
	assert.Equal(t, "1234.5", raw(t, f, SheetVencimiento, 7, 2))
	assert.Equal(t, "Totales", raw(t, f, SheetVencimiento, 5, 4))
}

func TestWriteDebtModelDivisasCarriesOriginalBalance(t *testing.T) {
	divisas := []domain.OperationRow{
		{Kind: domain.RowGroup, Client: "Norte", Currency: "DOLAR", OriginalBalance: 10,
			Amounts: domain.Amounts{Balance: 40000}},
	}
	data, err := WriteDebtModel(domain.DebtModel{Cutoff: cutoff, Divisas: divisas})
	require.NoError(t, err)

	f := open(t, data)
	assert.Equal(t, []string{SheetDivisas, SheetValidacion}, f.GetSheetList())
	assert.Equal(t, "10", raw(t, f, SheetDivisas, 5, 2))
	assert.Equal(t, "40000", raw(t, f, SheetDivisas, 6, 2))
}

func TestWriteDebtModelEmpty(t *testing.T) {
	_, err := WriteDebtModel(domain.DebtModel{Cutoff: cutoff})
	assert.ErrorIs(t, err, domain.ErrEmptyInput)
}

func TestVencimientoCSV(t *testing.T) {
	data, err := VencimientoCSV(vencimiento())
	require.NoError(t, err)

	assert.True(t, bytes.Contains(data, []byte("D\xf3lar")), "se espera cp1252")

	decoded, err := charmap.Windows1252.NewDecoder().Bytes(data)
	require.NoError(t, err)
	reader := csv.NewReader(bytes.NewReader(decoded))
	reader.Comma = ';'
	records, err := reader.ReadAll()
	require.NoError(t, err)

	require.Len(t, records, 4)
	assert.Len(t, records[0], len(vencimientoColumns))
	assert.Equal(t, "SALDO NO VENCIDO", records[0][7])
	assert.Equal(t, "LibreríaSol", records[1][5])
	assert.Equal(t, "1234,50", records[1][6])
	assert.Equal(t, "0,00", records[1][8])
	assert.Equal(t, "Totales", records[3][4])
}

func TestVencimientoCSVReplacesUnsupportedRunes(t *testing.T) {
	rep := vencimiento()
	rep.Rows[0].Client = "Ωmega"
	_, err := VencimientoCSV(rep)
	assert.NoError(t, err)
}

func TestFormatCSVAmount(t *testing.T) {
	assert.Equal(t, "-1234,50", formatCSVAmount(-1234.5))
	assert.Equal(t, "0,00", formatCSVAmount(0))
	assert.Equal(t, "1000000,01", formatCSVAmount(1000000.01))
}
