package ingest

import (
	"fmt"
	"strings"

	"cartera-service/internal/domain"
	"cartera-service/internal/textnorm"

	"github.com/schollz/closestmatch"
)

// minTokenOverlap es la coincidencia mínima de palabras para aceptar un encabezado aproximado.
const minTokenOverlap = 0.5

// headerSearchRows es cuántas filas se revisan buscando el encabezado.
const headerSearchRows = 20

// column describe un campo de salida, sus alias (nombre de negocio y código Pisa) y cómo asignarlo.
type column[T any] struct {
	Field    string
	Aliases  []string
	Required bool
	Set      func(*T, string)
}

// Resolution informa cómo se resolvió cada campo.
type Resolution struct {
	// Columns mapea campo -> encabezado original.
	Columns map[string]string
	// Fuzzy lista los campos resueltos por aproximación.
	Fuzzy map[string]string
	// Missing lista los campos opcionales ausentes.
	Missing []string
}

// resolveColumns asigna a cada campo el índice de columna del encabezado.
// Primero busca coincidencias exactas de alias normalizados; luego aproxima con closestmatch.
func resolveColumns[T any](header []string, cols []column[T]) (map[string]int, Resolution) {
	normalized := make([]string, len(header))
	byName := make(map[string]int, len(header))
	for i, h := range header {
		normalized[i] = textnorm.Normalize(h)
		if _, dup := byName[normalized[i]]; !dup && normalized[i] != "" {
			byName[normalized[i]] = i
		}
	}

	res := Resolution{Columns: map[string]string{}, Fuzzy: map[string]string{}}
	index := make(map[string]int, len(cols))
	used := make(map[int]bool)

	for _, c := range cols {
		for _, a := range c.Aliases {
			if i, ok := byName[textnorm.Normalize(a)]; ok && !used[i] {
				index[c.Field] = i
				used[i] = true
				res.Columns[c.Field] = header[i]
				break
			}
		}
	}

	var free []string
	freeIdx := map[string]int{}
	for i, n := range normalized {
		if !used[i] && n != "" {
			if _, dup := freeIdx[n]; !dup {
				free = append(free, n)
				freeIdx[n] = i
			}
		}
	}

	if len(free) > 0 {
		cm := closestmatch.New(free, []int{2, 3})
		for _, c := range cols {
			if _, done := index[c.Field]; done {
				continue
			}
			for _, a := range c.Aliases {
				alias := textnorm.Normalize(a)
				cand := cm.Closest(alias)
				if cand == "" || used[freeIdx[cand]] || overlap(alias, cand) < minTokenOverlap {
					// closestmatch no compara bien textos cortos contra encabezados largos
					cand = bestOverlap(alias, free, freeIdx, used)
				}
				if cand == "" {
					continue
				}
				i := freeIdx[cand]
				index[c.Field] = i
				used[i] = true
				res.Columns[c.Field] = header[i]
				res.Fuzzy[c.Field] = header[i]
				break
			}
		}
	}

	for _, c := range cols {
		if _, ok := index[c.Field]; !ok && !c.Required {
			res.Missing = append(res.Missing, c.Field)
		}
	}
	return index, res
}

// bestOverlap devuelve el encabezado libre con mayor coincidencia de palabras con alias,
// o "" si ninguno alcanza minTokenOverlap. Ante empate gana el primero.
func bestOverlap(alias string, free []string, freeIdx map[string]int, used map[int]bool) string {
	best, bestScore := "", 0.0
	for _, h := range free {
		if used[freeIdx[h]] {
			continue
		}
		if score := overlap(alias, h); score >= minTokenOverlap && score > bestScore {
			best, bestScore = h, score
		}
	}
	return best
}

// overlap exige coincidencia en ambos sentidos para no confundir "SALDO" con "SALDO VENCIDO".
func overlap(a, b string) float64 {
	x := textnorm.TokenOverlap(a, b)
	y := textnorm.TokenOverlap(b, a)
	if y < x {
		return y
	}
	return x
}

// findHeaderRow devuelve la fila (dentro de las primeras) con más alias exactos reconocidos.
func findHeaderRow[T any](rows [][]string, cols []column[T]) int {
	aliases := map[string]struct{}{}
	for _, c := range cols {
		for _, a := range c.Aliases {
			aliases[textnorm.Normalize(a)] = struct{}{}
		}
	}

	limit := headerSearchRows
	if len(rows) < limit {
		limit = len(rows)
	}
	best, bestHits := 0, 0
	for i := 0; i < limit; i++ {
		hits := 0
		for _, cell := range rows[i] {
			if _, ok := aliases[textnorm.Normalize(cell)]; ok {
				hits++
			}
		}
		if hits > bestHits {
			best, bestHits = i, hits
		}
	}
	return best
}

// decode convierte las filas en registros. Exige los campos Required y al menos uno de anyOf.
func decode[T any](rows [][]string, cols []column[T], anyOf []string, setRow func(*T, int)) ([]T, Resolution, error) {
	if len(rows) == 0 {
		return nil, Resolution{}, domain.ErrEmptyInput
	}

	h := findHeaderRow(rows, cols)
	index, res := resolveColumns(rows[h], cols)

	for _, c := range cols {
		if _, ok := index[c.Field]; c.Required && !ok {
			return nil, res, &domain.StructuralError{Field: c.Field, Err: domain.ErrMissingColumn}
		}
	}
	if len(anyOf) > 0 {
		found := false
		for _, f := range anyOf {
			if _, ok := index[f]; ok {
				found = true
				break
			}
		}
		if !found {
			return nil, res, &domain.StructuralError{
				Field: strings.Join(anyOf, " | "),
				Err:   domain.ErrMissingColumn,
			}
		}
	}

	var out []T
	for n, row := range rows[h+1:] {
		if blank(row) {
			continue
		}
		var rec T
		setRow(&rec, h+n+2)
		for _, c := range cols {
			i, ok := index[c.Field]
			if !ok || i >= len(row) {
				continue
			}
			c.Set(&rec, strings.TrimSpace(row[i]))
		}
		out = append(out, rec)
	}
	if len(out) == 0 {
		return nil, res, fmt.Errorf("%w: sin filas después del encabezado", domain.ErrEmptyInput)
	}
	return out, res, nil
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
