package main

import (
	"fmt"
	"os"

	"cartera-service/internal/core/cartera"

	"github.com/spf13/cobra"
)

func newCarteraCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cartera <archivo>",
		Short: "Procesa una extracción de cartera",
		Example: `  carteractl cartera cartera_junio.xlsx --fecha-cierre 2024-06-30
  carteractl cartera cartera_usd.csv --moneda DOLAR -o salida/`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cutoff, _ := cmd.Flags().GetString("fecha-cierre")
			currency, _ := cmd.Flags().GetString("moneda")

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			res, err := a.svc.ProcessCartera(runContext(cmd), cartera.CarteraRequest{
				File: f, Filename: args[0], Cutoff: cutoff, Currency: currency,
			})
			if err != nil {
				return err
			}
			printDiagnostics(cmd, res.Diagnostics)
			_, err = writeOutput(cmd, a.outputDir(cmd), outputName("Cartera_Procesada", res.Cutoff, res.Format), res.Data)
			return err
		},
	}
	cmd.Flags().String("fecha-cierre", "", "Fecha de cierre YYYY-MM-DD (por defecto, último día del mes)")
	cmd.Flags().String("moneda", "", "Fuerza la moneda de todas las filas (PESOS COL, DOLAR, EURO)")
	return cmd
}

func newAnticiposCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "anticipos <archivo>",
		Short: "Normaliza el archivo de anticipos",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			res, err := a.svc.ProcessAnticipos(runContext(cmd), cartera.AnticiposRequest{File: f, Filename: args[0]})
			if err != nil {
				return err
			}
			printDiagnostics(cmd, res.Diagnostics)
			_, err = writeOutput(cmd, a.outputDir(cmd), outputName("Anticipos_Procesados", res.Cutoff, res.Format), res.Data)
			return err
		},
	}
}

func newModeloCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "modelo-deuda <cartera>",
		Short: "Genera el modelo de deuda (PESOS, DIVISAS, VENCIMIENTO)",
		Long: `Genera el modelo de deuda a partir de la extracción de cartera.

Sin --trm-usd o --trm-eur se usan las TRM guardadas. Con --guardar-trm las TRM
digitadas quedan guardadas para las siguientes ejecuciones.`,
		Example: `  carteractl modelo-deuda cartera.xlsx --anticipos anticipos.xlsx --trm-usd 4.180,50
  carteractl modelo-deuda cartera.xlsx --formato csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			advPath, _ := flags.GetString("anticipos")
			cutoff, _ := flags.GetString("fecha-cierre")
			usd, _ := flags.GetString("trm-usd")
			eur, _ := flags.GetString("trm-eur")
			save, _ := flags.GetBool("guardar-trm")
			format, _ := flags.GetString("formato")

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			req := cartera.DebtModelRequest{
				Cartera: f, CarteraFilename: args[0],
				Cutoff: cutoff, USD: usd, EUR: eur, SaveRates: save, Format: format,
			}
			if advPath != "" {
				adv, err := os.Open(advPath)
				if err != nil {
					return err
				}
				defer adv.Close()
				req.Anticipos, req.AnticiposFilename = adv, advPath
			}

			res, err := a.svc.BuildModeloDeuda(runContext(cmd), req)
			if err != nil {
				return err
			}
			printDiagnostics(cmd, res.Diagnostics)
			prefix := "Modelo_Deuda"
			if res.Format == cartera.FormatCSV {
				prefix = "Vencimiento"
			}
			_, err = writeOutput(cmd, a.outputDir(cmd), outputName(prefix, res.Cutoff, res.Format), res.Data)
			return err
		},
	}
	cmd.Flags().String("anticipos", "", "Archivo de anticipos (opcional)")
	cmd.Flags().String("fecha-cierre", "", "Fecha de cierre YYYY-MM-DD (por defecto, último día del mes)")
	cmd.Flags().String("trm-usd", "", "TRM del dólar (acepta 4.780 o 4.180,50)")
	cmd.Flags().String("trm-eur", "", "TRM del euro")
	cmd.Flags().Bool("guardar-trm", false, "Guarda las TRM digitadas")
	cmd.Flags().String("formato", cartera.FormatXLSX, "Formato de salida: xlsx o csv")
	return cmd
}

func newTrmCmd(a *app) *cobra.Command {
	trm := &cobra.Command{
		Use:   "trm",
		Short: "Consulta o actualiza las TRM guardadas",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Muestra las TRM guardadas",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := a.svc.GetRates(cmd.Context())
			if err != nil {
				return err
			}
			updated := snap.UpdatedAt
			if updated == "" {
				updated = "-"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "USD: %s\nEUR: %s\nActualizado: %s\n",
				cartera.FormatRate(snap.USD), cartera.FormatRate(snap.EUR), updated)
			return nil
		},
	}

	set := &cobra.Command{
		Use:     "set",
		Short:   "Guarda una o ambas TRM",
		Example: "  carteractl trm set --usd 4.780 --eur 5.120,35",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			usd, _ := cmd.Flags().GetString("usd")
			eur, _ := cmd.Flags().GetString("eur")
			snap, err := a.svc.SetRates(cmd.Context(), usd, eur)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "TRM guardada: USD %s, EUR %s (%s)\n",
				cartera.FormatRate(snap.USD), cartera.FormatRate(snap.EUR), snap.UpdatedAt)
			return nil
		},
	}
	set.Flags().String("usd", "", "TRM del dólar")
	set.Flags().String("eur", "", "TRM del euro")

	trm.AddCommand(show, set)
	return trm
}
