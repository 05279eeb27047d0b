package report

import (
	"fmt"

	"cartera-service/internal/domain"
)

const advanceDateLayout = "02-01-2006"

var anticipoColumns = []col{
	text("EMPRESA"), text("ACTIVIDAD"), text("CODIGO CLIENTE"), text("NIT/CEDULA"),
	text("NOMBRE COMERCIAL"), text("DIRECCION"), text("TELEFONO"), text("POBLACION"),
	text("CODIGO AGENTE"), text("NOMBRE AGENTE"), text("APELLIDO AGENTE"), text("TIPO ANTICIPO"),
	text("NRO ANTICIPO"), amount("VALOR ANTICIPO"), text("FECHA ANTICIPO"),
}

// WriteAnticipos genera el libro de anticipos; los valores ya vienen con signo negativo.
func WriteAnticipos(advances []domain.Advance, diag domain.Diagnostics) ([]byte, error) {
	w, err := newWorkbook()
	if err != nil {
		return nil, err
	}

	rows := make([]row, 0, len(advances))
	for _, a := range advances {
		date := ""
		if a.Date != nil {
			date = a.Date.Format(advanceDateLayout)
		}
		rows = append(rows, row{values: []any{
			a.Company, a.Activity, a.ClientCode, a.TaxID,
			a.TradeName, a.Address, a.Phone, a.City,
			a.AgentCode, a.AgentName, a.AgentSurname, a.Type,
			a.Number, a.Value, date,
		}})
	}
	if err := w.addSheet(SheetAnticipos, anticipoColumns, rows); err != nil {
		w.f.Close()
		return nil, fmt.Errorf("hoja %s: %w", SheetAnticipos, err)
	}
	if len(diag.Warnings) > 0 {
		if err := w.addWarnings(diag.Warnings); err != nil {
			w.f.Close()
			return nil, err
		}
	}
	return w.bytes()
}

func (w *workbook) addWarnings(warnings []string) error {
	rows := make([]row, 0, len(warnings))
	for _, msg := range warnings {
		rows = append(rows, row{values: []any{"Advertencia", msg}})
	}
	if err := w.addSheet(SheetValidacion, []col{text("CONCEPTO"), text("VALOR")}, rows); err != nil {
		return fmt.Errorf("hoja %s: %w", SheetValidacion, err)
	}
	return nil
}
