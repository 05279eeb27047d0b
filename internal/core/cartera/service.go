package cartera

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"cartera-service/internal/domain"
	"cartera-service/internal/ingest"
	"cartera-service/internal/report"

	"go.uber.org/zap"
)

// Formatos de salida del modelo de deuda.
const (
	FormatXLSX = "xlsx"
	FormatCSV  = "csv"
)

// Tipos de ejecución, usados en logs y métricas.
const (
	RunCartera   = "cartera"
	RunAnticipos = "anticipos"
	RunModelo    = "modelo_deuda"
)

// Service define los procesos de cartera expuestos por la API y el CLI.
type Service interface {
	ProcessCartera(ctx context.Context, req CarteraRequest) (Result, error)
	ProcessAnticipos(ctx context.Context, req AnticiposRequest) (Result, error)
	BuildModeloDeuda(ctx context.Context, req DebtModelRequest) (Result, error)
	GetRates(ctx context.Context) (domain.RateSnapshot, error)
	SetRates(ctx context.Context, usd, eur string) (domain.RateSnapshot, error)
}

// RateStore guarda el snapshot de TRM entre ejecuciones.
type RateStore interface {
	Load(ctx context.Context) (domain.RateSnapshot, error)
	Save(ctx context.Context, snap domain.RateSnapshot) error
}

// Recorder recibe el resultado de cada ejecución.
type Recorder interface {
	ObserveRun(kind string, diag domain.Diagnostics, elapsed time.Duration, err error)
}

// CarteraRequest es la entrada del procesamiento de cartera.
type CarteraRequest struct {
	File     io.Reader
	Filename string
	// Cutoff en formato YYYY-MM-DD; vacío toma el último día del mes actual.
	Cutoff string
	// Currency fuerza la moneda de todas las filas.
	Currency string
}

// AnticiposRequest es la entrada del procesamiento de anticipos.
type AnticiposRequest struct {
	File     io.Reader
	Filename string
}

// DebtModelRequest es la entrada del modelo de deuda. Anticipos es opcional.
type DebtModelRequest struct {
	Cartera           io.Reader
	CarteraFilename   string
	Anticipos         io.Reader
	AnticiposFilename string
	Cutoff            string
	USD               string
	EUR               string
	SaveRates         bool
	Format            string
}

// Result es el archivo generado y los diagnósticos de la ejecución.
type Result struct {
	Data        []byte
	Format      string
	Cutoff      time.Time
	Diagnostics domain.Diagnostics
}

type runIDKey struct{}

// WithRunID asocia un identificador de ejecución al contexto.
func WithRunID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, runIDKey{}, id)
}

// RunID devuelve el identificador de ejecución del contexto, si existe.
func RunID(ctx context.Context) string {
	id, _ := ctx.Value(runIDKey{}).(string)
	return id
}

// Option configura el servicio.
type Option func(*service)

// WithLineTable reemplaza la tabla de líneas embebida.
func WithLineTable(t *LineTable) Option {
	return func(s *service) { s.lines = t }
}

// WithCountry define el país de la hoja VENCIMIENTO.
func WithCountry(country string) Option {
	return func(s *service) {
		if country != "" {
			s.country = country
		}
	}
}

// WithRateStore define dónde se guardan las TRM.
func WithRateStore(store RateStore) Option {
	return func(s *service) { s.rates = store }
}

// WithRecorder registra métricas de cada ejecución.
func WithRecorder(r Recorder) Option {
	return func(s *service) { s.recorder = r }
}

// WithClock reemplaza el reloj (pruebas).
func WithClock(now func() time.Time) Option {
	return func(s *service) { s.now = now }
}

type service struct {
	logger   *zap.Logger
	lines    *LineTable
	country  string
	rates    RateStore
	recorder Recorder
	now      func() time.Time
}

// NewService crea el servicio de cartera.
func NewService(logger *zap.Logger, opts ...Option) Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &service{
		logger:  logger,
		lines:   DefaultLineTable(),
		country: DefaultCountry,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (svc *service) log(ctx context.Context, kind string) *zap.Logger {
	l := svc.logger.With(zap.String("run", kind))
	if id := RunID(ctx); id != "" {
		l = l.With(zap.String("run_id", id))
	}
	return l
}

func (svc *service) finish(log *zap.Logger, kind string, start time.Time, diag domain.Diagnostics, err error) {
	elapsed := svc.now().Sub(start)
	if svc.recorder != nil {
		svc.recorder.ObserveRun(kind, diag, elapsed, err)
	}
	if err != nil {
		log.Error("ejecución fallida", zap.Error(err), zap.Duration("elapsed", elapsed))
		return
	}
	log.Info("ejecución terminada",
		zap.Int("records", diag.Records),
		zap.Int("coerced", diag.CoercedValues),
		zap.Int("zero_rate", diag.ZeroRateConversions),
		zap.Int("warnings", len(diag.Warnings)),
		zap.Duration("elapsed", elapsed),
	)
}

func (svc *service) cutoff(raw string) (time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		return DefaultCutoff(svc.now()), nil
	}
	return ParseCutoff(raw)
}

func logResolution(log *zap.Logger, file string, res ingest.Resolution) {
	for field, header := range res.Fuzzy {
		log.Warn("encabezado resuelto por aproximación",
			zap.String("file", file), zap.String("field", field), zap.String("header", header))
	}
	if len(res.Missing) > 0 {
		log.Debug("columnas opcionales ausentes", zap.String("file", file), zap.Strings("fields", res.Missing))
	}
}

// ProcessCartera lee la extracción, clasifica cada saldo y genera el libro Cartera.
func (svc *service) ProcessCartera(ctx context.Context, req CarteraRequest) (res Result, err error) {
	log := svc.log(ctx, RunCartera)
	start := svc.now()
	var diag domain.Diagnostics
	defer func() { svc.finish(log, RunCartera, start, diag, err) }()

	cutoff, err := svc.cutoff(req.Cutoff)
	if err != nil {
		return Result{}, err
	}
	items, err := svc.readItems(log, req.File, req.Filename, cutoff, req.Currency, &diag)
	if err != nil {
		return Result{}, err
	}

	detail := BuildDetail(items, cutoff, &diag)
	detail.Diagnostics = diag
	data, err := report.WriteCartera(detail)
	if err != nil {
		return Result{}, fmt.Errorf("error al generar el libro de cartera: %w", err)
	}
	return Result{Data: data, Format: FormatXLSX, Cutoff: cutoff, Diagnostics: diag}, nil
}

func (svc *service) readItems(log *zap.Logger, r io.Reader, filename string, cutoff time.Time, currency string, diag *domain.Diagnostics) ([]domain.LineItem, error) {
	raws, resolution, err := ingest.ReadCartera(r, filename)
	if err != nil {
		return nil, fmt.Errorf("error al leer %s: %w", filename, err)
	}
	logResolution(log, filename, resolution)
	return NormalizeRecords(raws, RecordOptions{Cutoff: cutoff, CurrencyOverride: currency, Lines: svc.lines}, diag)
}

func (svc *service) readAdvances(log *zap.Logger, r io.Reader, filename string, diag *domain.Diagnostics) ([]domain.Advance, error) {
	raws, resolution, err := ingest.ReadAnticipos(r, filename)
	if err != nil {
		return nil, fmt.Errorf("error al leer %s: %w", filename, err)
	}
	logResolution(log, filename, resolution)
	return NormalizeAdvances(raws, diag)
}

// ProcessAnticipos normaliza el archivo de anticipos.
func (svc *service) ProcessAnticipos(ctx context.Context, req AnticiposRequest) (res Result, err error) {
	log := svc.log(ctx, RunAnticipos)
	start := svc.now()
	var diag domain.Diagnostics
	defer func() { svc.finish(log, RunAnticipos, start, diag, err) }()

	advances, err := svc.readAdvances(log, req.File, req.Filename, &diag)
	if err != nil {
		return Result{}, err
	}
	if n := diag.CoercedValues; n > 0 {
		diag.Warnings = append(diag.Warnings, fmt.Sprintf("%d valores de anticipo no numéricos tomados como cero", n))
	}
	data, err := report.WriteAnticipos(advances, diag)
	if err != nil {
		return Result{}, fmt.Errorf("error al generar el libro de anticipos: %w", err)
	}
	return Result{Data: data, Format: FormatXLSX, Diagnostics: diag}, nil
}

// BuildModeloDeuda arma PESOS, DIVISAS y VENCIMIENTO con las TRM de la solicitud o las guardadas.
func (svc *service) BuildModeloDeuda(ctx context.Context, req DebtModelRequest) (res Result, err error) {
	log := svc.log(ctx, RunModelo)
	start := svc.now()
	var diag domain.Diagnostics
	defer func() { svc.finish(log, RunModelo, start, diag, err) }()

	format := strings.ToLower(strings.TrimSpace(req.Format))
	if format == "" {
		format = FormatXLSX
	}
	if format != FormatXLSX && format != FormatCSV {
		return Result{}, fmt.Errorf("formato de salida no soportado: %q", req.Format)
	}

	cutoff, err := svc.cutoff(req.Cutoff)
	if err != nil {
		return Result{}, err
	}
	snap, err := svc.resolveRates(ctx, log, req.USD, req.EUR, req.SaveRates)
	if err != nil {
		return Result{}, err
	}

	items, err := svc.readItems(log, req.Cartera, req.CarteraFilename, cutoff, "", &diag)
	if err != nil {
		return Result{}, err
	}
	var advances []domain.Advance
	if req.Anticipos != nil {
		if advances, err = svc.readAdvances(log, req.Anticipos, req.AnticiposFilename, &diag); err != nil {
			return Result{}, err
		}
	}

	model := BuildDebtModel(DebtModelInput{
		Items:    items,
		Advances: advances,
		Cutoff:   cutoff,
		Rates:    snap.Rates(),
		Lines:    svc.lines,
		Country:  svc.country,
	}, &diag)
	if diag.ZeroRateConversions > 0 {
		msg := fmt.Sprintf("%d registros en moneda extranjera convertidos con TRM en cero (USD %s, EUR %s)",
			diag.ZeroRateConversions, FormatRate(snap.USD), FormatRate(snap.EUR))
		diag.Warnings = append(diag.Warnings, msg)
		log.Warn("conversión con TRM en cero", zap.Int("count", diag.ZeroRateConversions))
	}
	model.Diagnostics = diag

	var data []byte
	if format == FormatCSV {
		data, err = report.VencimientoCSV(model.Vencimiento)
	} else {
		data, err = report.WriteDebtModel(model)
	}
	if err != nil {
		return Result{}, fmt.Errorf("error al generar el modelo de deuda: %w", err)
	}
	return Result{Data: data, Format: format, Cutoff: cutoff, Diagnostics: diag}, nil
}

// resolveRates combina las TRM digitadas con las guardadas y, si se pide, guarda el resultado.
func (svc *service) resolveRates(ctx context.Context, log *zap.Logger, usd, eur string, save bool) (domain.RateSnapshot, error) {
	stored, err := svc.loadRates(ctx)
	if err != nil {
		return domain.RateSnapshot{}, err
	}
	snap, err := mergeRates(stored, usd, eur)
	if err != nil {
		return domain.RateSnapshot{}, err
	}
	snap.UpdatedAt = stored.UpdatedAt

	if save && svc.rates != nil && (strings.TrimSpace(usd) != "" || strings.TrimSpace(eur) != "") {
		snap.UpdatedAt = svc.now().Format(domain.RateTimestampLayout)
		if err := svc.rates.Save(ctx, snap); err != nil {
			return domain.RateSnapshot{}, fmt.Errorf("error al guardar la TRM: %w", err)
		}
	}
	log.Info("TRM en uso", zap.String("usd", FormatRate(snap.USD)), zap.String("eur", FormatRate(snap.EUR)))
	return snap, nil
}

func (svc *service) loadRates(ctx context.Context) (domain.RateSnapshot, error) {
	if svc.rates == nil {
		return domain.RateSnapshot{}, nil
	}
	snap, err := svc.rates.Load(ctx)
	if err != nil {
		return domain.RateSnapshot{}, fmt.Errorf("error al leer la TRM guardada: %w", err)
	}
	return snap, nil
}

// mergeRates aplica los textos digitados sobre el snapshot; un texto vacío conserva la tasa guardada.
func mergeRates(stored domain.RateSnapshot, usd, eur string) (domain.RateSnapshot, error) {
	out := stored
	for _, in := range []struct {
		code string
		text string
		dst  **float64
	}{
		{"USD", usd, &out.USD},
		{"EUR", eur, &out.EUR},
	} {
		if strings.TrimSpace(in.text) == "" {
			continue
		}
		v := ParseRate(in.text, nil)
		if v == nil || *v < 0 {
			return domain.RateSnapshot{}, fmt.Errorf("%w: %s %q", domain.ErrInvalidRate, in.code, in.text)
		}
		*in.dst = v
	}
	return out, nil
}

// GetRates devuelve el snapshot guardado.
func (svc *service) GetRates(ctx context.Context) (domain.RateSnapshot, error) {
	return svc.loadRates(ctx)
}

// SetRates actualiza una o ambas TRM y guarda el snapshot con la hora actual.
func (svc *service) SetRates(ctx context.Context, usd, eur string) (domain.RateSnapshot, error) {
	if svc.rates == nil {
		return domain.RateSnapshot{}, fmt.Errorf("no hay almacenamiento de TRM configurado")
	}
	if strings.TrimSpace(usd) == "" && strings.TrimSpace(eur) == "" {
		return domain.RateSnapshot{}, fmt.Errorf("%w: no se indicó ninguna tasa", domain.ErrInvalidRate)
	}
	stored, err := svc.loadRates(ctx)
	if err != nil {
		return domain.RateSnapshot{}, err
	}
	snap, err := mergeRates(stored, usd, eur)
	if err != nil {
		return domain.RateSnapshot{}, err
	}
	snap.UpdatedAt = svc.now().Format(domain.RateTimestampLayout)
	if err := svc.rates.Save(ctx, snap); err != nil {
		return domain.RateSnapshot{}, fmt.Errorf("error al guardar la TRM: %w", err)
	}
	svc.logger.Info("TRM actualizada", zap.String("usd", FormatRate(snap.USD)), zap.String("eur", FormatRate(snap.EUR)))
	return snap, nil
}
