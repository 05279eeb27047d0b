package ingest

import (
	"io"

	"cartera-service/internal/domain"
)

// Campos de la extracción de cartera. Los alias incluyen el código de columna de Pisa.
const (
	FieldCompany       = "EMPRESA"
	FieldActivity      = "ACTIVIDAD"
	FieldAgentCode     = "CODIGO AGENTE"
	FieldAgent         = "AGENTE"
	FieldCollectorCode = "CODIGO COBRADOR"
	FieldCollector     = "COBRADOR"
	FieldClientCode    = "CODIGO CLIENTE"
	FieldTaxID         = "IDENTIFICACION"
	FieldName          = "NOMBRE"
	FieldTradeName     = "DENOMINACION COMERCIAL"
	FieldAddress       = "DIRECCION"
	FieldPhone         = "TELEFONO"
	FieldCity          = "CIUDAD"
	FieldInvoiceNumber = "NUMERO FACTURA"
	FieldDocType       = "TIPO"
	FieldInvoiceDate   = "FECHA"
	FieldDueDate       = "FECHA VTO"
	FieldValue         = "VALOR"
	FieldBalance       = "SALDO"
	FieldCurrency      = "MONEDA"
)

var carteraColumns = []column[domain.RawRecord]{
	{Field: FieldCompany, Aliases: []string{"EMPRESA", "PCCDEM"}, Set: func(r *domain.RawRecord, v string) { r.Company = v }},
	{Field: FieldActivity, Aliases: []string{"ACTIVIDAD", "PCCDAC", "LINEA"}, Set: func(r *domain.RawRecord, v string) { r.Activity = v }},
	{Field: FieldAgentCode, Aliases: []string{"CODIGO AGENTE", "PCCDAG"}, Set: func(r *domain.RawRecord, v string) { r.AgentCode = v }},
	{Field: FieldAgent, Aliases: []string{"AGENTE", "PCNMAG"}, Set: func(r *domain.RawRecord, v string) { r.Agent = v }},
	{Field: FieldCollectorCode, Aliases: []string{"CODIGO COBRADOR", "PCCDCO"}, Set: func(r *domain.RawRecord, v string) { r.CollectorCode = v }},
	{Field: FieldCollector, Aliases: []string{"COBRADOR", "PCNMCO"}, Set: func(r *domain.RawRecord, v string) { r.Collector = v }},
	{Field: FieldClientCode, Aliases: []string{"CODIGO CLIENTE", "PCCDCL"}, Set: func(r *domain.RawRecord, v string) { r.ClientCode = v }},
	{Field: FieldTaxID, Aliases: []string{"IDENTIFICACION", "PCCDDN", "NIT"}, Set: func(r *domain.RawRecord, v string) { r.TaxID = v }},
	{Field: FieldName, Aliases: []string{"NOMBRE", "PCNMCL", "RAZON SOCIAL"}, Set: func(r *domain.RawRecord, v string) { r.Name = v }},
	{Field: FieldTradeName, Aliases: []string{"DENOMINACION COMERCIAL", "PCNMCM", "CLIENTE"}, Set: func(r *domain.RawRecord, v string) { r.TradeName = v }},
	{Field: FieldAddress, Aliases: []string{"DIRECCION", "PCNMDO"}, Set: func(r *domain.RawRecord, v string) { r.Address = v }},
	{Field: FieldPhone, Aliases: []string{"TELEFONO", "PCTLF1"}, Set: func(r *domain.RawRecord, v string) { r.Phone = v }},
	{Field: FieldCity, Aliases: []string{"CIUDAD", "PCNMPO"}, Set: func(r *domain.RawRecord, v string) { r.City = v }},
	{Field: FieldInvoiceNumber, Aliases: []string{"NUMERO FACTURA", "PCNUFC"}, Set: func(r *domain.RawRecord, v string) { r.InvoiceNumber = v }},
	{Field: FieldDocType, Aliases: []string{"TIPO", "PCORPD"}, Set: func(r *domain.RawRecord, v string) { r.DocType = v }},
	{Field: FieldInvoiceDate, Aliases: []string{"FECHA", "PCFEFA", "FECHA FACTURA"}, Set: func(r *domain.RawRecord, v string) { r.InvoiceDate = v }},
	{Field: FieldDueDate, Aliases: []string{"FECHA VTO", "PCFEVE", "FECHA VENCIMIENTO"}, Set: func(r *domain.RawRecord, v string) { r.DueDate = v }},
	{Field: FieldValue, Aliases: []string{"VALOR", "PCVAFA"}, Set: func(r *domain.RawRecord, v string) { r.Value = v }},
	{Field: FieldBalance, Aliases: []string{"SALDO", "PCSALD", "SALDO TOTAL"}, Required: true, Set: func(r *domain.RawRecord, v string) { r.Balance = v }},
	{Field: FieldCurrency, Aliases: []string{"MONEDA"}, Set: func(r *domain.RawRecord, v string) { r.Currency = v }},
}

// ReadCartera lee una extracción de cartera. SALDO y algún nombre de cliente son obligatorios;
// sin columna MONEDA todas las filas quedan en PESOS COL.
func ReadCartera(r io.Reader, filename string) ([]domain.RawRecord, Resolution, error) {
	rows, err := ReadTable(r, filename)
	if err != nil {
		return nil, Resolution{}, err
	}
	return decode(rows, carteraColumns, []string{FieldTradeName, FieldName},
		func(rec *domain.RawRecord, n int) { rec.Row = n })
}

// Campos del archivo de anticipos.
const (
	FieldAdvanceTaxID     = "NIT/CEDULA"
	FieldAdvanceTradeName = "NOMBRE COMERCIAL"
	FieldAdvanceCity      = "POBLACION"
	FieldAgentName        = "NOMBRE AGENTE"
	FieldAgentSurname     = "APELLIDO AGENTE"
	FieldAdvanceType      = "TIPO ANTICIPO"
	FieldAdvanceNumber    = "NRO ANTICIPO"
	FieldAdvanceValue     = "VALOR ANTICIPO"
	FieldAdvanceDate      = "FECHA ANTICIPO"
)

var anticipoColumns = []column[domain.RawAdvance]{
	{Field: FieldCompany, Aliases: []string{"EMPRESA", "NCCDEM"}, Set: func(r *domain.RawAdvance, v string) { r.Company = v }},
	{Field: FieldActivity, Aliases: []string{"ACTIVIDAD", "NCCDAC"}, Set: func(r *domain.RawAdvance, v string) { r.Activity = v }},
	{Field: FieldClientCode, Aliases: []string{"CODIGO CLIENTE", "NCCDCL"}, Set: func(r *domain.RawAdvance, v string) { r.ClientCode = v }},
	{Field: FieldAdvanceTaxID, Aliases: []string{"NIT/CEDULA", "WWNIT"}, Set: func(r *domain.RawAdvance, v string) { r.TaxID = v }},
	{Field: FieldAdvanceTradeName, Aliases: []string{"NOMBRE COMERCIAL", "WWNMCL"}, Set: func(r *domain.RawAdvance, v string) { r.TradeName = v }},
	{Field: FieldAddress, Aliases: []string{"DIRECCION", "WWNMDO"}, Set: func(r *domain.RawAdvance, v string) { r.Address = v }},
	{Field: FieldPhone, Aliases: []string{"TELEFONO", "WWTLF1"}, Set: func(r *domain.RawAdvance, v string) { r.Phone = v }},
	{Field: FieldAdvanceCity, Aliases: []string{"POBLACION", "WWNMPO"}, Set: func(r *domain.RawAdvance, v string) { r.City = v }},
	{Field: FieldAgentCode, Aliases: []string{"CODIGO AGENTE", "CCCDFB"}, Set: func(r *domain.RawAdvance, v string) { r.AgentCode = v }},
	{Field: FieldAgentName, Aliases: []string{"NOMBRE AGENTE", "BDNMNM"}, Set: func(r *domain.RawAdvance, v string) { r.AgentName = v }},
	{Field: FieldAgentSurname, Aliases: []string{"APELLIDO AGENTE", "BDNMPA"}, Set: func(r *domain.RawAdvance, v string) { r.AgentSurname = v }},
	{Field: FieldAdvanceType, Aliases: []string{"TIPO ANTICIPO", "NCMOMO"}, Set: func(r *domain.RawAdvance, v string) { r.Type = v }},
	{Field: FieldAdvanceNumber, Aliases: []string{"NRO ANTICIPO", "NCCDR3"}, Set: func(r *domain.RawAdvance, v string) { r.Number = v }},
	{Field: FieldAdvanceValue, Aliases: []string{"VALOR ANTICIPO", "NCIMAN"}, Required: true, Set: func(r *domain.RawAdvance, v string) { r.Value = v }},
	{Field: FieldAdvanceDate, Aliases: []string{"FECHA ANTICIPO", "NCFEGR"}, Set: func(r *domain.RawAdvance, v string) { r.Date = v }},
}

// ReadAnticipos lee el archivo de anticipos; VALOR ANTICIPO es obligatorio.
func ReadAnticipos(r io.Reader, filename string) ([]domain.RawAdvance, Resolution, error) {
	rows, err := ReadTable(r, filename)
	if err != nil {
		return nil, Resolution{}, err
	}
	return decode(rows, anticipoColumns, nil,
		func(rec *domain.RawAdvance, n int) { rec.Row = n })
}
