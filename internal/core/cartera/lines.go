package cartera

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"cartera-service/internal/domain"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

//go:embed lineas.yaml
var defaultLinesYAML []byte

// Partition separa las líneas que van a la hoja PESOS de las que van a DIVISAS.
type Partition string

const (
	PartitionPesos   Partition = "pesos"
	PartitionDivisas Partition = "divisas"
)

// Negocio y canal para líneas que no están en la tabla.
const FallbackLabel = "OTROS"

// LineInfo es una entrada de la tabla de líneas de venta.
type LineInfo struct {
	Code      string    `yaml:"codigo" validate:"required"`
	Business  string    `yaml:"negocio" validate:"required"`
	Channel   string    `yaml:"canal" validate:"required"`
	Partition Partition `yaml:"particion" validate:"required,oneof=pesos divisas"`
	Currency  string    `yaml:"moneda" validate:"omitempty,oneof=USD EUR"`
}

type lineFile struct {
	Lines []LineInfo `yaml:"lineas" validate:"required,min=1,dive"`
}

// LineTable resuelve códigos de línea (PL10, CT80...) a negocio, canal y partición.
type LineTable struct {
	entries map[string]LineInfo
}

// DefaultLineTable devuelve la tabla embebida.
func DefaultLineTable() *LineTable {
	t, err := ParseLineTable(defaultLinesYAML)
	if err != nil {
		panic(fmt.Sprintf("tabla de líneas embebida inválida: %v", err))
	}
	return t
}

// LoadLineTable lee la tabla desde path; con path vacío usa la embebida.
func LoadLineTable(path string) (*LineTable, error) {
	if path == "" {
		return DefaultLineTable(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error al leer tabla de líneas %s: %w", path, err)
	}
	return ParseLineTable(data)
}

// ParseLineTable decodifica y valida una tabla en YAML.
func ParseLineTable(data []byte) (*LineTable, error) {
	var f lineFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("tabla de líneas: %w", err)
	}
	if err := validator.New().Struct(f); err != nil {
		return nil, fmt.Errorf("tabla de líneas: %w", err)
	}

	t := &LineTable{entries: make(map[string]LineInfo, len(f.Lines))}
	for _, l := range f.Lines {
		l.Code = NormalizeLine(l.Code, "")
		if _, dup := t.entries[l.Code]; dup {
			return nil, fmt.Errorf("tabla de líneas: código duplicado %s", l.Code)
		}
		t.entries[l.Code] = l
	}
	return t, nil
}

// Lookup devuelve la entrada de code. Si no existe devuelve negocio y canal OTROS y ok=false.
func (t *LineTable) Lookup(code string) (LineInfo, bool) {
	if l, ok := t.entries[code]; ok {
		return l, true
	}
	return LineInfo{Code: code, Business: FallbackLabel, Channel: FallbackLabel}, false
}

// ForcedCurrency devuelve la moneda que la línea impone en DIVISAS, si la tiene.
func (t *LineTable) ForcedCurrency(code string) (domain.Currency, bool) {
	l, ok := t.entries[code]
	if !ok || l.Currency == "" {
		return domain.CurrencyLocal, false
	}
	cur, known := ParseCurrency(l.Currency)
	return cur, known
}

// PartitionOf devuelve la partición de code, o "" si la línea no está en la tabla.
func (t *LineTable) PartitionOf(code string) Partition {
	return t.entries[code].Partition
}

// Codes lista los códigos ordenados.
func (t *LineTable) Codes() []string {
	codes := make([]string, 0, len(t.entries))
	for c := range t.entries {
		codes = append(codes, c)
	}
	sort.Strings(codes)
	return codes
}

var linePrefixes = []string{"PL", "CT", "ED"}

func isLinePrefix(s string) bool {
	for _, p := range linePrefixes {
		if s == p {
			return true
		}
	}
	return false
}

// NormalizeLine arma la clave de línea a partir de la actividad y la empresa:
// "PL10" -> "PL10", ("10", "CT") -> "CT10", ("10", "") -> "PL10".
func NormalizeLine(activity, company string) string {
	act := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(activity), " ", ""))
	act = strings.TrimSuffix(act, ".0")
	comp := strings.ToUpper(strings.TrimSpace(company))

	for _, p := range linePrefixes {
		if strings.HasPrefix(act, p) {
			return act
		}
	}
	if n, err := strconv.Atoi(act); err == nil && isDigits(act) {
		pref := "PL"
		if isLinePrefix(comp) {
			pref = comp
		}
		return fmt.Sprintf("%s%d", pref, n)
	}
	if isLinePrefix(comp) {
		return comp + act
	}
	return act
}
