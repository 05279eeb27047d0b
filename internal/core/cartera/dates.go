package cartera

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"cartera-service/internal/domain"
)

// Formatos de fecha que aparecen en las extracciones de Pisa, en orden de prueba.
// Los formatos sin relleno aceptan también "05/07/2024".
var dateLayouts = []string{
	"2/1/2006",
	"2006-1-2",
	"2-1-2006",
	"2006/1/2",
	"20060102",
}

// Intervalo plausible de seriales de Excel (≈1995 a ≈2028).
const (
	minExcelSerial = 35000
	maxExcelSerial = 47000
)

// ParseDate interpreta una fecha de factura o de vencimiento.
// Devuelve nil si el texto está vacío o no corresponde a ningún formato conocido.
func ParseDate(raw string) *time.Time {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}
	// "2024-06-30 00:00:00" o "2024-06-30T00:00:00"
	if i := strings.IndexAny(s, " T"); i >= 8 {
		s = s[:i]
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}

	if f, err := strconv.ParseFloat(s, 64); err == nil {
		if f > minExcelSerial && f < maxExcelSerial {
			t := excelSerialToDate(f)
			return &t
		}
	}
	return nil
}

func excelSerialToDate(serial float64) time.Time {
	// base Excel serial -> 1899-12-30; se descarta la fracción horaria
	base := time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)
	return base.AddDate(0, 0, int(serial))
}

// ParseCutoff interpreta la fecha de cierre (YYYY-MM-DD).
// Una fecha vacía, inválida o cero es un error estructural.
func ParseCutoff(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: fecha vacía", domain.ErrInvalidCutoff)
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		p := ParseDate(s)
		if p == nil {
			return time.Time{}, fmt.Errorf("%w: %q", domain.ErrInvalidCutoff, raw)
		}
		t = *p
	}
	if t.IsZero() {
		return time.Time{}, fmt.Errorf("%w: fecha cero", domain.ErrInvalidCutoff)
	}
	return t, nil
}

// DefaultCutoff devuelve el último día calendario del mes de now.
func DefaultCutoff(now time.Time) time.Time {
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	return first.AddDate(0, 1, -1)
}

// civil reduce t a su fecha calendario en UTC.
func civil(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// daysBetween cuenta días calendario de from a to (negativo si to es anterior).
func daysBetween(from, to time.Time) int {
	return int(civil(to).Sub(civil(from)).Hours() / 24)
}

var spanishMonths = [12]string{"ene", "feb", "mar", "abr", "may", "jun", "jul", "ago", "sep", "oct", "nov", "dic"}

// MonthLabel formatea un mes como "jun-24".
func MonthLabel(t time.Time) string {
	return fmt.Sprintf("%s-%02d", spanishMonths[t.Month()-1], t.Year()%100)
}
