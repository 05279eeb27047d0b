package report

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"

	"cartera-service/internal/domain"
	"cartera-service/internal/textnorm"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

func formatCSVAmount(v float64) string {
	return strings.Replace(fmt.Sprintf("%.2f", v), ".", ",", 1)
}

// VencimientoCSV exporta la tabla agrupada en cp1252 separada por ';', para abrir en Excel sin conversión.
func VencimientoCSV(rep domain.GroupedReport) ([]byte, error) {
	var buffer bytes.Buffer
	tw := transform.NewWriter(&buffer, encoding.ReplaceUnsupported(charmap.Windows1252.NewEncoder()))
	writer := csv.NewWriter(tw)
	writer.Comma = ';'

	header := make([]string, 0, len(vencimientoColumns))
	for _, c := range vencimientoColumns {
		header = append(header, textnorm.SanitizeForCSV(c.header))
	}
	if err := writer.Write(header); err != nil {
		return nil, err
	}

	for _, r := range rep.Rows {
		record := []string{
			textnorm.SanitizeForCSV(r.Country),
			textnorm.SanitizeForCSV(r.Business),
			textnorm.SanitizeForCSV(r.Channel),
			textnorm.SanitizeForCSV(r.PayerRole),
			textnorm.SanitizeForCSV(r.Currency),
			textnorm.SanitizeForCSV(r.Client),
			formatCSVAmount(r.Amounts.Balance),
		}
		for _, b := range r.Amounts.Buckets {
			record = append(record, formatCSVAmount(b))
		}
		record = append(record, formatCSVAmount(r.Amounts.Provision))
		if err := writer.Write(record); err != nil {
			return nil, err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}
	if err := tw.Close(); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}
