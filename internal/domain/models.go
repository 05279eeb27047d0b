// package domain/models.go
package domain

import (
	"time"
)

// Currency identifica la moneda de origen de un saldo de cartera.
type Currency int

// Monedas soportadas. LOCAL corresponde a pesos colombianos.
const (
	CurrencyLocal Currency = iota
	CurrencyUSD
	CurrencyEUR
)

// Currencies lista las monedas en el orden en que se presentan los subtotales.
var Currencies = []Currency{CurrencyLocal, CurrencyUSD, CurrencyEUR}

// String devuelve el código corto (LOCAL, USD, EUR).
func (c Currency) String() string {
	switch c {
	case CurrencyUSD:
		return "USD"
	case CurrencyEUR:
		return "EUR"
	default:
		return "LOCAL"
	}
}

// Code devuelve el texto de moneda tal como lo exporta Pisa.
func (c Currency) Code() string {
	switch c {
	case CurrencyUSD:
		return "DOLAR"
	case CurrencyEUR:
		return "EURO"
	default:
		return "PESOS COL"
	}
}

// Label devuelve la etiqueta usada en las filas de subtotal.
func (c Currency) Label() string {
	switch c {
	case CurrencyUSD:
		return "Dólar"
	case CurrencyEUR:
		return "Euro"
	default:
		return "Moneda Local"
	}
}

// Bucket es un rango de días vencidos.
type Bucket int

// Rangos de vencimiento, mutuamente excluyentes y cubriendo [0, ∞).
const (
	BucketCurrent Bucket = iota
	Bucket30
	Bucket60
	Bucket90
	Bucket180
	Bucket360
	Bucket360Plus
)

// BucketCount es el número de rangos.
const BucketCount = 7

// Buckets lista los rangos en orden de columna.
var Buckets = [BucketCount]Bucket{BucketCurrent, Bucket30, Bucket60, Bucket90, Bucket180, Bucket360, Bucket360Plus}

var bucketNames = [BucketCount]string{
	"SALDO NO VENCIDO",
	"VENCIDO 30",
	"VENCIDO 60",
	"VENCIDO 90",
	"VENCIDO 180",
	"VENCIDO 360",
	"VENCIDO + 360",
}

// bucketBounds guarda [min, max] inclusivos; -1 en max significa sin límite.
var bucketBounds = [BucketCount][2]int{
	{0, 29},
	{30, 59},
	{60, 89},
	{90, 179},
	{180, 359},
	{360, 369},
	{370, -1},
}

// Name devuelve el encabezado de columna del rango.
func (b Bucket) Name() string {
	if b < 0 || int(b) >= BucketCount {
		return ""
	}
	return bucketNames[b]
}

// Bounds devuelve los días mínimo y máximo del rango; max es -1 para el último.
func (b Bucket) Bounds() (min, max int) {
	return bucketBounds[b][0], bucketBounds[b][1]
}

// Contains indica si days cae dentro del rango.
func (b Bucket) Contains(days int) bool {
	min, max := b.Bounds()
	return days >= min && (max < 0 || days <= max)
}

// BucketAmounts guarda un importe por rango.
type BucketAmounts [BucketCount]float64

// Sum suma todos los rangos.
func (a BucketAmounts) Sum() float64 {
	var total float64
	for _, v := range a {
		total += v
	}
	return total
}

// Amounts agrupa todos los campos monetarios de un registro.
type Amounts struct {
	Balance   float64
	Buckets   BucketAmounts
	Provision float64
}

// Add suma other campo por campo.
func (a Amounts) Add(other Amounts) Amounts {
	a.Balance += other.Balance
	a.Provision += other.Provision
	for i := range a.Buckets {
		a.Buckets[i] += other.Buckets[i]
	}
	return a
}

// --- Registros de entrada ---

// RawRecord es una fila de la extracción de cartera tal como la entrega el lector.
type RawRecord struct {
	Row           int
	Company       string
	Activity      string
	AgentCode     string
	Agent         string
	CollectorCode string
	Collector     string
	ClientCode    string
	TaxID         string
	Name          string
	TradeName     string
	Address       string
	Phone         string
	City          string
	InvoiceNumber string
	DocType       string
	InvoiceDate   string
	DueDate       string
	Value         string
	Balance       string
	Currency      string
}

// LineItem es una factura/saldo normalizado.
type LineItem struct {
	Row           int
	Company       string
	Activity      string
	BusinessLine  string
	AgentCode     string
	Agent         string
	CollectorCode string
	Collector     string
	ClientCode    string
	TaxID         string
	LegalName     string
	ClientName    string
	Address       string
	Phone         string
	City          string
	InvoiceNumber string
	DocType       string
	InvoiceDate   *time.Time
	DueDate       *time.Time
	Currency      Currency
	CurrencyText  string
	Value         float64
	Balance       float64
}

// RawAdvance es una fila del archivo de anticipos.
type RawAdvance struct {
	Row          int
	Company      string
	Activity     string
	ClientCode   string
	TaxID        string
	TradeName    string
	Address      string
	Phone        string
	City         string
	AgentCode    string
	AgentName    string
	AgentSurname string
	Type         string
	Number       string
	Value        string
	Date         string
}

// Advance es un anticipo normalizado (valor ya con signo negativo).
type Advance struct {
	Row          int
	Company      string
	Activity     string
	ClientCode   string
	TaxID        string
	TradeName    string
	Address      string
	Phone        string
	City         string
	AgentCode    string
	AgentName    string
	AgentSurname string
	Type         string
	Number       string
	Value        float64
	Date         *time.Time
}

// --- Resultados del núcleo ---

// Classification es el resultado de clasificar un saldo por vencimiento.
type Classification struct {
	DaysOverdue  int
	DaysToDue    int
	Bucket       Bucket
	ProvisionPct float64
	Amounts      Amounts
}

// BucketSum es la autoverificación: debe ser igual al saldo.
func (c Classification) BucketSum() float64 {
	return c.Amounts.Buckets.Sum()
}

// Allocation devuelve el monto asignado a cada rango, por nombre de columna.
func (c Classification) Allocation() map[string]float64 {
	out := make(map[string]float64, BucketCount)
	for _, b := range Buckets {
		out[b.Name()] = c.Amounts.Buckets[b]
	}
	return out
}

// Rates son las TRM usadas en una ejecución.
type Rates struct {
	USD float64
	EUR float64
}

// RateTimestampLayout es el formato de updated_at del snapshot de TRM.
const RateTimestampLayout = "2006-01-02 15:04:05"

// RateSnapshot es el estado persistido entre ejecuciones.
type RateSnapshot struct {
	USD       *float64 `json:"usd" firestore:"usd"`
	EUR       *float64 `json:"eur" firestore:"eur"`
	UpdatedAt string   `json:"updated_at" firestore:"updated_at"`
}

// Rates convierte el snapshot en tasas; las ausentes quedan en cero.
func (s RateSnapshot) Rates() Rates {
	var r Rates
	if s.USD != nil {
		r.USD = *s.USD
	}
	if s.EUR != nil {
		r.EUR = *s.EUR
	}
	return r
}

// ProcessedItem junta el registro, su clasificación y los valores en moneda local.
type ProcessedItem struct {
	Item           LineItem
	Classification Classification
	Local          Amounts
}

// RowKind distingue filas de grupo, subtotal y total.
type RowKind int

// Tipos de fila del reporte.
const (
	RowGroup RowKind = iota
	RowSubtotal
	RowTotal
)

// ReportRow es una fila de la hoja VENCIMIENTO.
type ReportRow struct {
	Kind      RowKind
	Country   string
	Business  string
	Channel   string
	PayerRole string
	Currency  string
	Client    string
	Amounts   Amounts
}

// GroupedReport es la tabla agrupada con subtotales y el total general al final.
type GroupedReport struct {
	Rows []ReportRow
}

// GrandTotal devuelve la última fila de total, si existe.
func (r GroupedReport) GrandTotal() (ReportRow, bool) {
	if len(r.Rows) == 0 {
		return ReportRow{}, false
	}
	last := r.Rows[len(r.Rows)-1]
	return last, last.Kind == RowTotal
}

// Groups devuelve solo las filas de grupo.
func (r GroupedReport) Groups() []ReportRow {
	var out []ReportRow
	for _, row := range r.Rows {
		if row.Kind == RowGroup {
			out = append(out, row)
		}
	}
	return out
}

// --- Modelos de reporte de cartera ---

// HistoricMonths es el número de meses históricos por fecha de vencimiento.
const HistoricMonths = 6

// UpcomingMonths es el número de columnas "Por vencer N meses".
const UpcomingMonths = 3

// DetailRow es una fila de la hoja Cartera.
type DetailRow struct {
	Item           LineItem
	Classification Classification
	SaldoVencido   float64
	MoraTotal      float64
	PorVencer      float64
	Over180        float64
	Historic       [HistoricMonths]float64
	Upcoming       [UpcomingMonths]float64
	Upcoming90     float64
	SumCheck       bool
	BucketCheck    bool
}

// CarteraDetail es el resultado del procesamiento de cartera.
type CarteraDetail struct {
	Cutoff      time.Time
	MonthLabels [HistoricMonths]string
	Rows        []DetailRow
	Diagnostics Diagnostics
}

// OperationRow es una fila de las hojas PESOS y DIVISAS.
type OperationRow struct {
	Kind            RowKind
	Company         string
	Activity        string
	Line            string
	Client          string
	Currency        string
	OriginalBalance float64
	SaldoVencido    float64
	ProvisionPct    float64
	PorVencer       float64
	Amounts         Amounts
}

// DebtModel es el modelo de deuda con sus tres hojas.
type DebtModel struct {
	Cutoff      time.Time
	Rates       Rates
	Pesos       []OperationRow
	Divisas     []OperationRow
	Vencimiento GroupedReport
	Diagnostics Diagnostics
}

// Diagnostics acumula advertencias no fatales de una ejecución.
type Diagnostics struct {
	Records             int
	CoercedValues       int
	ZeroRateConversions int
	NegativeFlipped     int
	UnparsedDueDates    int
	FutureInvoices      int
	DroppedZeroRows     int
	UnknownCurrencies   []string
	UnknownLines        []string
	Warnings            []string
}
