package domain

import (
	"errors"
	"fmt"
)

// Errores estructurales: abortan el lote completo.
var (
	ErrMissingClient = errors.New("registro sin nombre de cliente")
	ErrInvalidCutoff = errors.New("fecha de cierre inválida")
	ErrMissingColumn = errors.New("columna requerida ausente")
	ErrEmptyInput    = errors.New("el archivo no contiene registros")
)

// StructuralError indica la fila y el campo que impidieron procesar el lote.
type StructuralError struct {
	Row   int
	Field string
	Err   error
}

func (e *StructuralError) Error() string {
	if e.Row > 0 {
		return fmt.Sprintf("fila %d, campo %s: %v", e.Row, e.Field, e.Err)
	}
	return fmt.Sprintf("campo %s: %v", e.Field, e.Err)
}

func (e *StructuralError) Unwrap() error {
	return e.Err
}

// ErrInvalidRate indica una TRM digitada que no se pudo interpretar o es negativa.
var ErrInvalidRate = errors.New("TRM inválida")
