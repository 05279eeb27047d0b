package cartera

import (
	"time"

	"cartera-service/internal/domain"
)

// ProvisionThresholdDays es la antigüedad a partir de la cual el saldo se provisiona al 100%.
const ProvisionThresholdDays = 180

// Classify ubica un saldo en su rango de vencimiento respecto a la fecha de cierre.
// Sin fecha de vencimiento el saldo se considera no vencido.
func Classify(balance float64, due *time.Time, cutoff time.Time) domain.Classification {
	c := domain.Classification{}
	if due != nil {
		diff := daysBetween(*due, cutoff)
		if diff > 0 {
			c.DaysOverdue = diff
		} else {
			c.DaysToDue = -diff
		}
	}

	c.Bucket = bucketFor(c.DaysOverdue)
	c.Amounts.Balance = balance
	c.Amounts.Buckets[c.Bucket] = balance

	if c.DaysOverdue >= ProvisionThresholdDays {
		c.ProvisionPct = 100
		c.Amounts.Provision = balance
	}
	return c
}

func bucketFor(days int) domain.Bucket {
	for _, b := range domain.Buckets {
		if b.Contains(days) {
			return b
		}
	}
	return domain.Bucket360Plus
}
