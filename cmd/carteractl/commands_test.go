package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"cartera-service/internal/core/cartera"
	"cartera-service/internal/storage/ratestore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const carteraCSV = "EMPRESA;ACTIVIDAD;DENOMINACION COMERCIAL;FECHA VTO;SALDO;MONEDA\n" +
	"PL;10;Acme;27/03/2024;1000;PESOS COL\n" +
	"PL;20;Norte;01/06/2023;10;DOLAR\n"

func testApp(t *testing.T) *app {
	t.Helper()
	store := ratestore.NewFileStore(filepath.Join(t.TempDir(), "trm_config.json"), nil)
	clock := func() time.Time { return time.Date(2024, time.June, 12, 9, 30, 0, 0, time.UTC) }
	return &app{
		log:   zap.NewNop(),
		store: store,
		svc:   cartera.NewService(zap.NewNop(), cartera.WithRateStore(store), cartera.WithClock(clock)),
	}
}

func execute(t *testing.T, a *app, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd(a)
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func writeInput(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestCarteraCommand(t *testing.T) {
	input := writeInput(t, "cartera.csv", carteraCSV)
	outDir := t.TempDir()

	out, err := execute(t, testApp(t), "cartera", input, "--fecha-cierre", "2024-06-30", "-o", outDir)
	require.NoError(t, err)
	assert.Contains(t, out, "Registros: 2")

	want := filepath.Join(outDir, "Cartera_Procesada_20240630.xlsx")
	assert.Contains(t, out, "Archivo generado: "+want)
	assert.FileExists(t, want)
}

func TestModeloDeudaCommandCSV(t *testing.T) {
	input := writeInput(t, "cartera.csv", carteraCSV)
	outDir := t.TempDir()
	a := testApp(t)

	out, err := execute(t, a, "modelo-deuda", input,
		"--fecha-cierre", "2024-06-30", "--trm-usd", "4.000", "--guardar-trm", "--formato", "csv", "-o", outDir)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(outDir, "Vencimiento_20240630.csv"))
	assert.NotContains(t, out, "TRM en cero")

	snap, err := a.store.Load(context.Background())
	require.NoError(t, err)
	require.NotNil(t, snap.USD)
	assert.Equal(t, 4000.0, *snap.USD)
}

func TestModeloDeudaCommandMissingFile(t *testing.T) {
	_, err := execute(t, testApp(t), "modelo-deuda", filepath.Join(t.TempDir(), "no-existe.csv"))
	assert.Error(t, err)
}

func TestTrmCommands(t *testing.T) {
	a := testApp(t)

	out, err := execute(t, a, "trm", "show")
	require.NoError(t, err)
	assert.Equal(t, "USD: -\nEUR: -\nActualizado: -\n", out)

	out, err = execute(t, a, "trm", "set", "--usd", "4.780", "--eur", "5.120,35")
	require.NoError(t, err)
	assert.Equal(t, "TRM guardada: USD 4.780, EUR 5.120 (2024-06-12 09:30:00)\n", out)

	out, err = execute(t, a, "trm", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "USD: 4.780\n")
	assert.Contains(t, out, "Actualizado: 2024-06-12 09:30:00")

	_, err = execute(t, a, "trm", "set")
	assert.Error(t, err)
}

func TestOutputName(t *testing.T) {
	cutoff := time.Date(2024, time.June, 30, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "Modelo_Deuda_20240630.xlsx", outputName("Modelo_Deuda", cutoff, "xlsx"))
	assert.Regexp(t, `^Anticipos_Procesados_\d{8}_\d{6}\.xlsx$`, outputName("Anticipos_Procesados", time.Time{}, "xlsx"))
}
