// Package report escribe los libros de Excel y el CSV de salida.
package report

import (
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
)

// Formato de miles sin decimales; el cero se muestra como "-".
const amountFormat = `#,##0;-#,##0;"-"`

const (
	headerColor  = "366092"
	maxColWidth  = 50
	dateLayout   = "02/01/2006"
	builtinPct   = 9 // 0%
	builtinInt   = 1 // 0
	defaultSheet = "Sheet1"
)

type kind int

const (
	kindText kind = iota
	kindAmount
	kindPercent
	kindInteger
)

type col struct {
	header string
	kind   kind
}

func text(h string) col    { return col{header: h, kind: kindText} }
func amount(h string) col  { return col{header: h, kind: kindAmount} }
func percent(h string) col { return col{header: h, kind: kindPercent} }
func integer(h string) col { return col{header: h, kind: kindInteger} }

// row es una fila de valores; bold marca filas de subtotal o total.
type row struct {
	values []any
	bold   bool
}

type styles struct {
	header      int
	text        int
	amount      int
	percent     int
	integer     int
	boldText    int
	boldAmount  int
	boldPercent int
	boldInteger int
}

// workbook envuelve un excelize.File con los estilos del reporte.
type workbook struct {
	f      *excelize.File
	st     styles
	sheets int
}

func newWorkbook() (*workbook, error) {
	f := excelize.NewFile()
	w := &workbook{f: f}
	if err := w.initStyles(); err != nil {
		f.Close()
		return nil, err
	}
	return w, nil
}

func (w *workbook) initStyles() error {
	border := []excelize.Border{
		{Type: "left", Color: "000000", Style: 1},
		{Type: "right", Color: "000000", Style: 1},
		{Type: "top", Color: "000000", Style: 1},
		{Type: "bottom", Color: "000000", Style: 1},
	}
	numFmt := amountFormat

	mk := func(s *excelize.Style) (int, error) { return w.f.NewStyle(s) }
	var err error
	if w.st.header, err = mk(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{headerColor}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    border,
	}); err != nil {
		return err
	}

	for _, bold := range []bool{false, true} {
		font := &excelize.Font{Size: 10, Bold: bold}
		txt, err := mk(&excelize.Style{Font: font, Border: border,
			Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "center"}})
		if err != nil {
			return err
		}
		amt, err := mk(&excelize.Style{Font: font, Border: border, CustomNumFmt: &numFmt,
			Alignment: &excelize.Alignment{Horizontal: "right", Vertical: "center"}})
		if err != nil {
			return err
		}
		pct, err := mk(&excelize.Style{Font: font, Border: border, NumFmt: builtinPct,
			Alignment: &excelize.Alignment{Horizontal: "right", Vertical: "center"}})
		if err != nil {
			return err
		}
		num, err := mk(&excelize.Style{Font: font, Border: border, NumFmt: builtinInt,
			Alignment: &excelize.Alignment{Horizontal: "right", Vertical: "center"}})
		if err != nil {
			return err
		}
		if bold {
			w.st.boldText, w.st.boldAmount, w.st.boldPercent, w.st.boldInteger = txt, amt, pct, num
		} else {
			w.st.text, w.st.amount, w.st.percent, w.st.integer = txt, amt, pct, num
		}
	}
	return nil
}

func (w *workbook) styleFor(k kind, bold bool) int {
	switch k {
	case kindAmount:
		if bold {
			return w.st.boldAmount
		}
		return w.st.amount
	case kindPercent:
		if bold {
			return w.st.boldPercent
		}
		return w.st.percent
	case kindInteger:
		if bold {
			return w.st.boldInteger
		}
		return w.st.integer
	default:
		if bold {
			return w.st.boldText
		}
		return w.st.text
	}
}

// addSheet escribe encabezado y filas, aplica estilos, anchos y congela la primera fila.
func (w *workbook) addSheet(name string, cols []col, rows []row) error {
	if w.sheets == 0 {
		if err := w.f.SetSheetName(defaultSheet, name); err != nil {
			return err
		}
	} else if _, err := w.f.NewSheet(name); err != nil {
		return err
	}
	w.sheets++

	widths := make([]int, len(cols))
	header := make([]any, len(cols))
	for i, c := range cols {
		header[i] = c.header
		widths[i] = utf8.RuneCountInString(c.header)
	}
	if err := w.f.SetSheetRow(name, "A1", &header); err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(cols), 1)
	if err != nil {
		return err
	}
	if err := w.f.SetCellStyle(name, "A1", last, w.st.header); err != nil {
		return err
	}

	for r, rw := range rows {
		line := r + 2
		start, _ := excelize.CoordinatesToCellName(1, line)
		values := rw.values
		if err := w.f.SetSheetRow(name, start, &values); err != nil {
			return err
		}
		for i, c := range cols {
			cell, _ := excelize.CoordinatesToCellName(i+1, line)
			if err := w.f.SetCellStyle(name, cell, cell, w.styleFor(c.kind, rw.bold)); err != nil {
				return err
			}
			if i < len(values) {
				if n := displayWidth(values[i], c.kind); n > widths[i] {
					widths[i] = n
				}
			}
		}
	}

	for i, wd := range widths {
		colName, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		width := wd + 2
		if width > maxColWidth {
			width = maxColWidth
		}
		if err := w.f.SetColWidth(name, colName, colName, float64(width)); err != nil {
			return err
		}
	}

	return w.f.SetPanes(name, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

func (w *workbook) bytes() ([]byte, error) {
	defer w.f.Close()
	if w.sheets == 0 {
		return nil, fmt.Errorf("el libro no tiene hojas")
	}
	w.f.SetActiveSheet(0)
	buf, err := w.f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func displayWidth(v any, k kind) int {
	switch x := v.(type) {
	case string:
		return utf8.RuneCountInString(x)
	case float64:
		if k == kindAmount {
			// separadores de miles incluidos
			s := fmt.Sprintf("%.0f", x)
			return len(s) + (len(s)-1)/3
		}
		return len(fmt.Sprintf("%g", x))
	case nil:
		return 0
	default:
		return len(fmt.Sprint(x))
	}
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(dateLayout)
}

func datePart(t *time.Time, part func(time.Time) int) any {
	if t == nil {
		return 0
	}
	return part(*t)
}
