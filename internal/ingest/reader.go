// Package ingest lee las extracciones de Pisa (CSV, xlsx, xls) y las lleva a registros crudos.
package ingest

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/shakinm/xlsReader/xls"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// ErrUnsupportedFormat se devuelve cuando el archivo no es CSV ni libro de Excel.
var ErrUnsupportedFormat = errors.New("formato de archivo no soportado")

// ReadTable lee todas las filas de la primera hoja (o del CSV) como texto.
func ReadTable(r io.Reader, filename string) ([][]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("error al leer %s: %w", filename, err)
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv", ".txt":
		return readCSV(data)
	case ".xlsx", ".xlsm":
		return readXLSX(data)
	case ".xls":
		rows, err := readXLS(data)
		if err != nil {
			// a veces llega un xlsx con extensión .xls
			if rowsX, errX := readXLSX(data); errX == nil {
				return rowsX, nil
			}
			return nil, err
		}
		return rows, nil
	default:
		if rows, err := readXLSX(data); err == nil {
			return rows, nil
		}
		if rows, err := readXLS(data); err == nil {
			return rows, nil
		}
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filename)
	}
}

// readCSV decodifica UTF-8 o, si el contenido no es UTF-8 válido, latin1 (lo que exporta Pisa).
func readCSV(data []byte) ([][]string, error) {
	var text io.Reader
	if utf8.Valid(data) {
		text = bytes.NewReader(bytes.TrimPrefix(data, []byte("\xef\xbb\xbf")))
	} else {
		text = transform.NewReader(bytes.NewReader(data), charmap.ISO8859_1.NewDecoder())
	}

	buf, err := io.ReadAll(text)
	if err != nil {
		return nil, fmt.Errorf("error al decodificar CSV: %w", err)
	}

	reader := csv.NewReader(bytes.NewReader(buf))
	reader.Comma = detectDelimiter(buf)
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("error al leer CSV: %w", err)
	}
	return rows, nil
}

// detectDelimiter elige entre ';' y ',' según cuál aparece más en la primera línea.
func detectDelimiter(data []byte) rune {
	line := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		line = data[:i]
	}
	if bytes.Count(line, []byte(",")) > bytes.Count(line, []byte(";")) {
		return ','
	}
	return ';'
}

func readXLSX(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("el libro no contiene hojas")
	}
	// valores crudos: fechas como serial y números sin formato de miles
	return f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
}

func readXLS(data []byte) ([][]string, error) {
	workbook, err := xls.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	if len(workbook.GetSheets()) == 0 {
		return nil, fmt.Errorf("el archivo .xls no contiene hojas")
	}
	sheet, err := workbook.GetSheet(0)
	if err != nil {
		return nil, fmt.Errorf("error al obtener hoja del archivo .xls: %w", err)
	}

	var rows [][]string
	for _, row := range sheet.GetRows() {
		var cells []string
		for _, cell := range row.GetCols() {
			cells = append(cells, cell.GetString())
		}
		rows = append(rows, cells)
	}
	return rows, nil
}
