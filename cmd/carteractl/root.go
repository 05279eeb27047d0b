package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"cartera-service/internal/config"
	"cartera-service/internal/core/cartera"
	"cartera-service/internal/domain"
	"cartera-service/internal/logger"
	"cartera-service/internal/storage/ratestore"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var version = "1.0.0"

// app reúne lo que comparten los subcomandos; se llena en PersistentPreRunE.
type app struct {
	cfg     *config.Config
	log     *zap.Logger
	svc     cartera.Service
	store   cartera.RateStore
	cleanup func()

	// newService permite inyectar un servicio distinto al configurado.
	newService func(ctx context.Context, a *app) (cartera.Service, error)
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "carteractl",
		Short: "Procesamiento de cartera, anticipos y modelo de deuda",
		Long: `carteractl procesa las extracciones de cartera de Pisa sin pasar por la API.

Lee CSV, XLS o XLSX y escribe los libros de Excel en el directorio de salida
(CARTERA_OUTPUT_DIR o --output). Las TRM se guardan en el mismo almacenamiento
que usa el servicio (archivo o Firestore, según CARTERA_TRM_BACKEND).`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd.Context())
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.close()
		},
	}
	root.PersistentFlags().StringP("output", "o", "", "Directorio de salida (por defecto CARTERA_OUTPUT_DIR)")

	root.AddCommand(newCarteraCmd(a), newAnticiposCmd(a), newModeloCmd(a), newTrmCmd(a))
	return root
}

func (a *app) setup(ctx context.Context) error {
	if a.svc != nil {
		return nil
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	a.cfg = cfg
	if a.log == nil {
		if a.log, err = logger.New(cfg.LogLevel, true); err != nil {
			return err
		}
	}
	build := a.newService
	if build == nil {
		build = configuredService
	}
	a.svc, err = build(ctx, a)
	return err
}

func configuredService(ctx context.Context, a *app) (cartera.Service, error) {
	lines, err := cartera.LoadLineTable(a.cfg.LinesFile)
	if err != nil {
		return nil, err
	}
	a.cleanup = func() {}
	if a.cfg.RatesBackend == config.BackendFirestore {
		client, err := firestore.NewClientWithDatabase(ctx, a.cfg.FirestoreProject, a.cfg.FirestoreDatabase)
		if err != nil {
			return nil, fmt.Errorf("error al iniciar el cliente de firestore: %w", err)
		}
		a.cleanup = func() { client.Close() }
		a.store = ratestore.NewFirestoreStore(client, a.cfg.FirestoreCollection, a.cfg.FirestoreDocument, a.log)
	} else {
		a.store = ratestore.NewFileStore(a.cfg.RatesFile, a.log)
	}
	return cartera.NewService(a.log,
		cartera.WithLineTable(lines),
		cartera.WithCountry(a.cfg.Country),
		cartera.WithRateStore(a.store),
	), nil
}

func (a *app) close() {
	if a.cleanup != nil {
		a.cleanup()
	}
	if a.log != nil {
		_ = a.log.Sync()
	}
}

// runContext asigna un run id nuevo al contexto del comando.
func runContext(cmd *cobra.Command) context.Context {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return cartera.WithRunID(ctx, uuid.NewString())
}

// outputDir usa --output, luego el directorio configurado y por último el actual.
func (a *app) outputDir(cmd *cobra.Command) string {
	if dir, _ := cmd.Flags().GetString("output"); dir != "" {
		return dir
	}
	if a.cfg != nil && a.cfg.OutputDir != "" {
		return a.cfg.OutputDir
	}
	return "."
}

func writeOutput(cmd *cobra.Command, dir, name string, data []byte) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("crear directorio de salida: %w", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("escribir %s: %w", path, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Archivo generado: %s\n", path)
	return path, nil
}

func printDiagnostics(cmd *cobra.Command, d domain.Diagnostics) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Registros: %d\n", d.Records)
	for _, w := range d.Warnings {
		fmt.Fprintf(out, "Advertencia: %s\n", w)
	}
	if len(d.UnknownCurrencies) > 0 {
		fmt.Fprintf(out, "Monedas no reconocidas: %v\n", d.UnknownCurrencies)
	}
	if len(d.UnknownLines) > 0 {
		fmt.Fprintf(out, "Líneas sin tabla: %v\n", d.UnknownLines)
	}
}

func outputName(prefix string, cutoff time.Time, ext string) string {
	if cutoff.IsZero() {
		return fmt.Sprintf("%s_%s.%s", prefix, time.Now().Format("20060102_150405"), ext)
	}
	return fmt.Sprintf("%s_%s.%s", prefix, cutoff.Format("20060102"), ext)
}
