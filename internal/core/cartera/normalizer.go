package cartera

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// ParseWarning describe un valor que no se pudo interpretar y quedó en cero.
type ParseWarning struct {
	Raw    string
	Reason string
}

func (w *ParseWarning) Error() string {
	return fmt.Sprintf("valor no numérico %q: %s", w.Raw, w.Reason)
}

var invisibleReplacer = strings.NewReplacer(
	"\u200b", "",
	"\u200c", "",
	"\u200d", "",
	"\ufeff", "",
	"\u00a0", "",
)

var scientificRegex = regexp.MustCompile(`^\d+(\.\d+)?[eE][+-]?\d+$`)

// ParseValue interpreta un valor numérico de una extracción de Pisa.
// Nunca falla: si el valor no se puede leer devuelve 0 y un ParseWarning.
func ParseValue(raw any) (float64, *ParseWarning) {
	switch v := raw.(type) {
	case nil:
		return 0, nil
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, nil
		}
		return v, nil
	case float32:
		return ParseValue(float64(v))
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case int32:
		return float64(v), nil
	case uint:
		return float64(v), nil
	case uint64:
		return float64(v), nil
	case uint32:
		return float64(v), nil
	case string:
		return parseNumericString(v)
	case fmt.Stringer:
		return parseNumericString(v.String())
	default:
		return 0, &ParseWarning{Raw: fmt.Sprint(v), Reason: "tipo no soportado"}
	}
}

// Parse es ParseValue sin diagnóstico.
func Parse(raw any) float64 {
	v, _ := ParseValue(raw)
	return v
}

func parseNumericString(raw string) (float64, *ParseWarning) {
	s := invisibleReplacer.Replace(raw)
	s = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)

	switch strings.ToLower(s) {
	case "", "-", "nan", "none", "null":
		return 0, nil
	}

	neg := false
	s = strings.TrimPrefix(s, "$")
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		neg = true
		s = s[1 : len(s)-1]
	}
	s = strings.TrimPrefix(s, "$")
	if strings.HasPrefix(s, "-") {
		neg = !neg
		s = s[1:]
	} else {
		s = strings.TrimPrefix(s, "+")
	}
	s = strings.TrimPrefix(s, "$")

	if scientificRegex.MatchString(s) {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, &ParseWarning{Raw: raw, Reason: err.Error()}
		}
		return signed(f, neg), nil
	}

	lastDot := strings.LastIndex(s, ".")
	lastComma := strings.LastIndex(s, ",")

	switch {
	case lastDot >= 0 && lastComma >= 0:
		if lastComma > lastDot {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case lastComma >= 0:
		if strings.Count(s, ",") == 1 {
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case strings.Count(s, ".") > 1:
		s = strings.ReplaceAll(s[:lastDot], ".", "") + s[lastDot:]
	}

	if !isPlainDecimal(s) {
		return 0, &ParseWarning{Raw: raw, Reason: "caracteres no numéricos"}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, &ParseWarning{Raw: raw, Reason: err.Error()}
	}
	return signed(f, neg), nil
}

// isPlainDecimal acepta dígitos con a lo sumo un punto decimal.
func isPlainDecimal(s string) bool {
	digits := 0
	dots := 0
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == '.':
			dots++
		default:
			return false
		}
	}
	return digits > 0 && dots <= 1
}

func signed(f float64, neg bool) float64 {
	if neg && f != 0 {
		return -f
	}
	return f
}

// Normalizer envuelve ParseValue y cuenta los valores forzados a cero.
type Normalizer struct {
	coerced int
	samples []string
}

const maxWarningSamples = 10

// Parse interpreta raw y registra la advertencia si la hubo.
func (n *Normalizer) Parse(raw any) float64 {
	v, w := ParseValue(raw)
	if w != nil {
		n.coerced++
		if len(n.samples) < maxWarningSamples {
			n.samples = append(n.samples, w.Raw)
		}
	}
	return v
}

// Coerced devuelve cuántos valores se forzaron a cero.
func (n *Normalizer) Coerced() int {
	return n.coerced
}

// Samples devuelve algunos de los valores que no se pudieron leer.
func (n *Normalizer) Samples() []string {
	return n.samples
}

// ---------------------- TRM ----------------------

// ParseRate interpreta una TRM digitada por el usuario (formato LATAM).
// "4.780" se lee como 4780 cuando todos los grupos tras el punto tienen 3 dígitos.
// Devuelve fallback si el texto está vacío o no se puede leer.
func ParseRate(text string, fallback *float64) *float64 {
	s := invisibleReplacer.Replace(strings.TrimSpace(text))
	s = strings.ReplaceAll(s, " ", "")
	if s == "" {
		return fallback
	}

	var normalized string
	switch {
	case strings.Contains(s, ".") && strings.Contains(s, ","):
		normalized = strings.Replace(strings.ReplaceAll(s, ".", ""), ",", ".", 1)
	case strings.Contains(s, ","):
		normalized = strings.ReplaceAll(s, ",", ".")
	case strings.Contains(s, "."):
		parts := strings.Split(s, ".")
		thousands := isDigits(parts[0])
		for _, p := range parts[1:] {
			if len(p) != 3 || !isDigits(p) {
				thousands = false
				break
			}
		}
		if thousands {
			normalized = strings.Join(parts, "")
		} else {
			normalized = s
		}
	default:
		normalized = s
	}

	f, err := strconv.ParseFloat(normalized, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return fallback
	}
	return &f
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// FormatRate muestra una TRM sin decimales y con punto de miles: 4780 -> "4.780".
func FormatRate(v *float64) string {
	if v == nil {
		return "-"
	}
	return groupThousands(int64(math.Round(*v)), ".")
}

// FormatColombian formatea con miles "." y decimales "," (1234.5 -> "1.234,50").
func FormatColombian(v float64) string {
	neg := v < 0
	if neg {
		v = -v
	}
	cents := int64(math.Round(v * 100))
	out := groupThousands(cents/100, ".") + "," + fmt.Sprintf("%02d", cents%100)
	if neg && cents != 0 {
		return "-" + out
	}
	return out
}

func groupThousands(n int64, sep string) string {
	neg := n < 0
	if neg {
		n = -n
	}
	digits := strconv.FormatInt(n, 10)
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteString(sep)
		}
		b.WriteString(digits[i : i+3])
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}
