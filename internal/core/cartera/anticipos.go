package cartera

import (
	"math"
	"strings"

	"cartera-service/internal/domain"
)

// AdvanceDateLayout es el formato de FECHA ANTICIPO en la salida.
const AdvanceDateLayout = "02-01-2006"

// NormalizeAdvances convierte las filas del archivo de anticipos.
// El valor se multiplica por -1: en cartera un anticipo es un saldo a favor del cliente.
func NormalizeAdvances(raws []domain.RawAdvance, diag *domain.Diagnostics) ([]domain.Advance, error) {
	if len(raws) == 0 {
		return nil, domain.ErrEmptyInput
	}

	var norm Normalizer
	out := make([]domain.Advance, 0, len(raws))
	for _, r := range raws {
		v := norm.Parse(r.Value)
		out = append(out, domain.Advance{
			Row:          r.Row,
			Company:      strings.TrimSpace(r.Company),
			Activity:     strings.TrimSpace(r.Activity),
			ClientCode:   strings.TrimSpace(r.ClientCode),
			TaxID:        strings.TrimSpace(r.TaxID),
			TradeName:    cleanText(r.TradeName),
			Address:      strings.TrimSpace(r.Address),
			Phone:        strings.TrimSpace(r.Phone),
			City:         strings.TrimSpace(r.City),
			AgentCode:    strings.TrimSpace(r.AgentCode),
			AgentName:    cleanText(r.AgentName),
			AgentSurname: cleanText(r.AgentSurname),
			Type:         strings.TrimSpace(r.Type),
			Number:       strings.TrimSpace(r.Number),
			Value:        signed(v, true),
			Date:         ParseDate(r.Date),
		})
	}
	diag.Records += len(out)
	diag.CoercedValues += norm.Coerced()
	return out, nil
}

// advanceRow lleva un anticipo a la hoja PESOS como saldo no vencido en moneda local.
// El anticipo entra por su valor absoluto.
func advanceRow(a domain.Advance) domain.OperationRow {
	v := math.Abs(a.Value)
	client := a.TradeName
	if client == "" {
		client = a.ClientCode
	}
	row := domain.OperationRow{
		Kind:      domain.RowGroup,
		Company:   a.Company,
		Activity:  a.Activity,
		Line:      AdvanceLine,
		Client:    client,
		Currency:  domain.CurrencyLocal.Code(),
		PorVencer: v,
	}
	row.Amounts.Balance = v
	row.Amounts.Buckets[domain.BucketCurrent] = v
	return row
}

// AdvanceLine identifica en PESOS las filas que vienen del archivo de anticipos.
const AdvanceLine = "ANT"
