// Package textnorm normaliza textos de encabezados y celdas de las extracciones.
package textnorm

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var nonAlphanumericRegex = regexp.MustCompile(`[^A-Z0-9 ]+`)
var whitespaceRegex = regexp.MustCompile(`\s+`)

// Normalize quita acentos, pasa a mayúsculas y deja solo letras, dígitos y espacios simples.
// "Denominación  comercial" -> "DENOMINACION COMERCIAL".
func Normalize(str string) string {
	t := transform.Chain(norm.NFD, transform.RemoveFunc(func(r rune) bool {
		return unicode.Is(unicode.Mn, r)
	}))
	result, _, _ := transform.String(t, str)
	result = strings.ToUpper(result)
	result = nonAlphanumericRegex.ReplaceAllString(result, " ")
	result = whitespaceRegex.ReplaceAllString(result, " ")
	return strings.TrimSpace(result)
}

// Tokens parte un texto normalizado en palabras.
func Tokens(str string) []string {
	return strings.Fields(Normalize(str))
}

// TokenOverlap es la fracción de palabras de a presentes en b.
func TokenOverlap(a, b string) float64 {
	ta := Tokens(a)
	if len(ta) == 0 {
		return 0
	}
	set := make(map[string]struct{})
	for _, t := range Tokens(b) {
		set[t] = struct{}{}
	}
	hits := 0
	for _, t := range ta {
		if _, ok := set[t]; ok {
			hits++
		}
	}
	return float64(hits) / float64(len(ta))
}

// SanitizeForCSV quita tabs y saltos de línea embebidos, cambia controles por espacio y recorta.
func SanitizeForCSV(s string) string {
	if s == "" {
		return ""
	}

	s = strings.TrimFunc(s, unicode.IsSpace)
	if s == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		i += size

		if r == '\r' || r == '\n' || r == '\t' {
			continue
		}
		if r < 32 {
			b.WriteByte(' ')
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
