package cartera

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"cartera-service/internal/domain"
)

// RecordOptions controla la normalización de una extracción de cartera.
type RecordOptions struct {
	Cutoff time.Time
	// CurrencyOverride reemplaza la moneda de todas las filas cuando no está vacío.
	CurrencyOverride string
	Lines            *LineTable
}

// NormalizeRecords convierte las filas crudas en LineItem.
// Las fallas de formato se cuentan en diag; solo un cliente sin nombre aborta el lote.
func NormalizeRecords(raws []domain.RawRecord, opts RecordOptions, diag *domain.Diagnostics) ([]domain.LineItem, error) {
	if len(raws) == 0 {
		return nil, domain.ErrEmptyInput
	}
	table := opts.Lines
	if table == nil {
		table = DefaultLineTable()
	}

	var norm Normalizer
	unknownCur := map[string]struct{}{}
	unknownLines := map[string]struct{}{}
	nextMonth := time.Date(opts.Cutoff.Year(), opts.Cutoff.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)

	items := make([]domain.LineItem, 0, len(raws))
	for _, r := range raws {
		legal := cleanText(r.Name)
		client := cleanText(r.TradeName)
		if client == "" {
			client = legal
		}
		if client == "" {
			return nil, &domain.StructuralError{Row: r.Row, Field: "DENOMINACION COMERCIAL", Err: domain.ErrMissingClient}
		}

		curText := r.Currency
		if strings.TrimSpace(opts.CurrencyOverride) != "" {
			curText = opts.CurrencyOverride
		}
		cur, ok := ParseCurrency(curText)
		if !ok {
			unknownCur[strings.TrimSpace(curText)] = struct{}{}
		}
		if strings.TrimSpace(curText) == "" {
			curText = domain.CurrencyLocal.Code()
		}

		balance := norm.Parse(r.Balance)
		if balance < 0 {
			balance = -balance
			diag.NegativeFlipped++
		}

		due := ParseDate(r.DueDate)
		if due == nil && strings.TrimSpace(r.DueDate) != "" {
			diag.UnparsedDueDates++
		}
		invoiced := ParseDate(r.InvoiceDate)
		if invoiced != nil && !invoiced.Before(nextMonth) {
			diag.FutureInvoices++
		}

		line := NormalizeLine(r.Activity, r.Company)
		if _, known := table.Lookup(line); !known && line != "" {
			unknownLines[line] = struct{}{}
		}

		items = append(items, domain.LineItem{
			Row:           r.Row,
			Company:       strings.TrimSpace(r.Company),
			Activity:      strings.TrimSpace(r.Activity),
			BusinessLine:  line,
			AgentCode:     strings.TrimSpace(r.AgentCode),
			Agent:         strings.TrimSpace(r.Agent),
			CollectorCode: strings.TrimSpace(r.CollectorCode),
			Collector:     strings.TrimSpace(r.Collector),
			ClientCode:    strings.TrimSpace(r.ClientCode),
			TaxID:         strings.TrimSpace(r.TaxID),
			LegalName:     legal,
			ClientName:    client,
			Address:       strings.TrimSpace(r.Address),
			Phone:         strings.TrimSpace(r.Phone),
			City:          strings.TrimSpace(r.City),
			InvoiceNumber: strings.TrimSpace(r.InvoiceNumber),
			DocType:       strings.TrimSpace(r.DocType),
			InvoiceDate:   invoiced,
			DueDate:       due,
			Currency:      cur,
			CurrencyText:  strings.TrimSpace(curText),
			Value:         norm.Parse(r.Value),
			Balance:       balance,
		})
	}

	diag.Records += len(items)
	diag.CoercedValues += norm.Coerced()
	diag.UnknownCurrencies = appendSorted(diag.UnknownCurrencies, unknownCur)
	diag.UnknownLines = appendSorted(diag.UnknownLines, unknownLines)
	if diag.FutureInvoices > 0 {
		diag.Warnings = append(diag.Warnings, fmt.Sprintf(
			"%d facturas con fecha posterior al mes de cierre (%s)", diag.FutureInvoices, MonthLabel(opts.Cutoff)))
	}
	if diag.NegativeFlipped > 0 {
		diag.Warnings = append(diag.Warnings, fmt.Sprintf(
			"%d saldos negativos convertidos a positivos", diag.NegativeFlipped))
	}
	if n := norm.Coerced(); n > 0 {
		diag.Warnings = append(diag.Warnings, fmt.Sprintf(
			"%d valores no numéricos tomados como cero (ej. %s)", n, strings.Join(norm.Samples(), ", ")))
	}
	return items, nil
}

var textReplacer = strings.NewReplacer(
	"\u200b", "",
	"\u200c", "",
	"\u200d", "",
	"\ufeff", "",
	"\u00a0", " ",
)

func cleanText(s string) string {
	return strings.TrimSpace(textReplacer.Replace(s))
}

func appendSorted(dst []string, set map[string]struct{}) []string {
	seen := make(map[string]struct{}, len(dst))
	for _, v := range dst {
		seen[v] = struct{}{}
	}
	var added []string
	for v := range set {
		if _, ok := seen[v]; !ok {
			added = append(added, v)
		}
	}
	sort.Strings(added)
	return append(dst, added...)
}
