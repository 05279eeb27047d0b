package cartera

import (
	"math"
	"time"

	"cartera-service/internal/domain"
)

// checkTolerance es la diferencia admitida en las autoverificaciones.
const checkTolerance = 1e-6

// BuildDetail arma las filas de la hoja Cartera a partir de los registros normalizados.
// Las filas sin ningún monto se descartan y se cuentan en diag.
func BuildDetail(items []domain.LineItem, cutoff time.Time, diag *domain.Diagnostics) domain.CarteraDetail {
	detail := domain.CarteraDetail{Cutoff: cutoff}

	monthStart := time.Date(cutoff.Year(), cutoff.Month(), 1, 0, 0, 0, 0, time.UTC)
	var historic [domain.HistoricMonths][2]time.Time
	for i := 0; i < domain.HistoricMonths; i++ {
		from := monthStart.AddDate(0, -i, 0)
		historic[i] = [2]time.Time{from, from.AddDate(0, 1, 0)}
		detail.MonthLabels[i] = MonthLabel(from)
	}

	var upcoming [domain.UpcomingMonths][2]time.Time
	for i := 0; i < domain.UpcomingMonths; i++ {
		upcoming[i] = [2]time.Time{addMonthsClamped(cutoff, i), addMonthsClamped(cutoff, i+1)}
	}
	ninety := civil(cutoff).AddDate(0, 0, 90)

	for _, it := range items {
		c := Classify(it.Balance, it.DueDate, cutoff)
		row := domain.DetailRow{Item: it, Classification: c}

		if c.DaysOverdue > 0 {
			row.SaldoVencido = it.Balance
		} else {
			row.PorVencer = it.Balance
		}
		row.MoraTotal = row.SaldoVencido
		if c.DaysOverdue >= ProvisionThresholdDays {
			row.Over180 = it.Balance
		}

		if it.DueDate != nil {
			due := civil(*it.DueDate)
			for i, w := range historic {
				if within(due, w) {
					row.Historic[i] = it.Balance
				}
			}
			for i, w := range upcoming {
				if within(due, w) {
					row.Upcoming[i] = it.Balance
				}
			}
			if !due.Before(ninety) {
				row.Upcoming90 = it.Balance
			}
		}

		row.SumCheck = math.Abs(row.MoraTotal+row.PorVencer-it.Balance) <= checkTolerance
		row.BucketCheck = math.Abs(c.BucketSum()-it.Balance) <= checkTolerance

		if allZero(row) {
			diag.DroppedZeroRows++
			continue
		}
		detail.Rows = append(detail.Rows, row)
	}
	return detail
}

func within(t time.Time, w [2]time.Time) bool {
	return !t.Before(w[0]) && t.Before(w[1])
}

// addMonthsClamped suma meses sin desbordar al mes siguiente: 31-ene + 1 mes = 28/29-feb.
func addMonthsClamped(t time.Time, months int) time.Time {
	t = civil(t)
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, months, 0)
	last := first.AddDate(0, 1, -1).Day()
	day := t.Day()
	if day > last {
		day = last
	}
	return time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, time.UTC)
}

// allZero: con saldo cero todas las columnas derivadas también son cero.
func allZero(r domain.DetailRow) bool {
	return r.Item.Value == 0 && r.Item.Balance == 0
}
