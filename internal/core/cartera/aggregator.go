package cartera

import (
	"sort"

	"cartera-service/internal/domain"

	"github.com/shopspring/decimal"
)

// Valores fijos de la hoja VENCIMIENTO.
const (
	DefaultCountry = "Colombia"
	PayerRole      = "CLIENTE"
	GrandTotalText = "Totales"
)

type groupKey struct {
	business string
	channel  string
	currency domain.Currency
	client   string
}

// accumulator suma en decimal y solo vuelve a float al emitir la fila.
type accumulator struct {
	balance   decimal.Decimal
	buckets   [domain.BucketCount]decimal.Decimal
	provision decimal.Decimal
}

func (a *accumulator) add(x domain.Amounts) {
	a.balance = a.balance.Add(decimal.NewFromFloat(x.Balance))
	a.provision = a.provision.Add(decimal.NewFromFloat(x.Provision))
	for i, v := range x.Buckets {
		a.buckets[i] = a.buckets[i].Add(decimal.NewFromFloat(v))
	}
}

func (a *accumulator) merge(o *accumulator) {
	a.balance = a.balance.Add(o.balance)
	a.provision = a.provision.Add(o.provision)
	for i := range a.buckets {
		a.buckets[i] = a.buckets[i].Add(o.buckets[i])
	}
}

func (a *accumulator) amounts() domain.Amounts {
	out := domain.Amounts{
		Balance:   a.balance.InexactFloat64(),
		Provision: a.provision.InexactFloat64(),
	}
	for i, v := range a.buckets {
		out.Buckets[i] = v.InexactFloat64()
	}
	return out
}

// Aggregate agrupa los registros (ya en moneda local) por negocio, canal, moneda y cliente.
// Emite las filas de grupo, un subtotal por moneda presente y el total general al final.
func Aggregate(items []domain.ProcessedItem, table *LineTable, country string) domain.GroupedReport {
	if country == "" {
		country = DefaultCountry
	}

	groups := make(map[groupKey]*accumulator)
	for _, it := range items {
		info, _ := table.Lookup(it.Item.BusinessLine)
		k := groupKey{
			business: info.Business,
			channel:  info.Channel,
			currency: it.Item.Currency,
			client:   it.Item.ClientName,
		}
		acc, ok := groups[k]
		if !ok {
			acc = &accumulator{}
			groups[k] = acc
		}
		acc.add(it.Local)
	}

	keys := make([]groupKey, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if a.currency != b.currency {
			return a.currency < b.currency
		}
		if a.client != b.client {
			return a.client < b.client
		}
		if a.business != b.business {
			return a.business < b.business
		}
		return a.channel < b.channel
	})

	report := domain.GroupedReport{Rows: make([]domain.ReportRow, 0, len(keys)+len(domain.Currencies)+1)}
	subtotals := make(map[domain.Currency]*accumulator)
	for _, k := range keys {
		acc := groups[k]
		report.Rows = append(report.Rows, domain.ReportRow{
			Kind:      domain.RowGroup,
			Country:   country,
			Business:  k.business,
			Channel:   k.channel,
			PayerRole: PayerRole,
			Currency:  k.currency.Code(),
			Client:    k.client,
			Amounts:   acc.amounts(),
		})
		sub, ok := subtotals[k.currency]
		if !ok {
			sub = &accumulator{}
			subtotals[k.currency] = sub
		}
		sub.merge(acc)
	}

	total := &accumulator{}
	for _, cur := range domain.Currencies {
		sub, ok := subtotals[cur]
		if !ok {
			continue
		}
		report.Rows = append(report.Rows, domain.ReportRow{
			Kind:     domain.RowSubtotal,
			Currency: cur.Label(),
			Amounts:  sub.amounts(),
		})
		total.merge(sub)
	}

	report.Rows = append(report.Rows, domain.ReportRow{
		Kind:     domain.RowTotal,
		Currency: GrandTotalText,
		Amounts:  total.amounts(),
	})
	return report
}
