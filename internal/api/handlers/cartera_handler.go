package handlers

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"cartera-service/internal/api/responses"
	"cartera-service/internal/core/cartera"
	"cartera-service/internal/domain"
	"cartera-service/internal/ingest"

	"github.com/gin-gonic/gin"
)

// Encabezados con el resumen de diagnósticos de la ejecución.
const (
	HeaderRecords  = "X-Cartera-Records"
	HeaderWarnings = "X-Cartera-Warnings"
	HeaderCoerced  = "X-Cartera-Coerced"
	HeaderZeroRate = "X-Cartera-Zero-Rate"
)

var allowedExtensions = map[string]bool{".csv": true, ".txt": true, ".xls": true, ".xlsx": true, ".xlsm": true}

// CarteraHandler atiende las solicitudes de procesamiento de cartera y TRM.
type CarteraHandler struct {
	service cartera.Service
}

// NewCarteraHandler crea un nuevo handler de cartera.
func NewCarteraHandler(service cartera.Service) *CarteraHandler {
	return &CarteraHandler{service: service}
}

// Register monta las rutas del handler en el grupo.
func (h *CarteraHandler) Register(g *gin.RouterGroup) {
	g.POST("/cartera/procesar", h.HandleCartera)
	g.POST("/cartera/anticipos", h.HandleAnticipos)
	g.POST("/cartera/modelo-deuda", h.HandleModeloDeuda)
	g.GET("/trm", h.HandleGetRates)
	g.PUT("/trm", h.HandleSetRates)
}

// openUpload abre el archivo del formulario y valida su extensión.
func openUpload(c *gin.Context, field, label string) (multipart.File, string, bool) {
	header, err := c.FormFile(field)
	if err != nil {
		responses.Error(c, http.StatusBadRequest, fmt.Sprintf("Archivo de %s (.csv, .xls, .xlsx) no encontrado o inválido", label))
		return nil, "", false
	}
	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedExtensions[ext] {
		responses.Error(c, http.StatusBadRequest, fmt.Sprintf("Extensión de archivo de %s no soportada: %s", label, ext))
		return nil, "", false
	}
	f, err := header.Open()
	if err != nil {
		responses.Error(c, http.StatusInternalServerError, fmt.Sprintf("No fue posible abrir el archivo de %s", label))
		return nil, "", false
	}
	return f, header.Filename, true
}

// statusFor separa errores de entrada (400) de fallas internas (500).
func statusFor(err error) int {
	var structural *domain.StructuralError
	switch {
	case errors.As(err, &structural),
		errors.Is(err, domain.ErrInvalidCutoff),
		errors.Is(err, domain.ErrMissingColumn),
		errors.Is(err, domain.ErrMissingClient),
		errors.Is(err, domain.ErrEmptyInput),
		errors.Is(err, domain.ErrInvalidRate),
		errors.Is(err, ingest.ErrUnsupportedFormat):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeDiagnostics(c *gin.Context, d domain.Diagnostics) {
	c.Header(HeaderRecords, strconv.Itoa(d.Records))
	c.Header(HeaderWarnings, strconv.Itoa(len(d.Warnings)))
	c.Header(HeaderCoerced, strconv.Itoa(d.CoercedValues))
	c.Header(HeaderZeroRate, strconv.Itoa(d.ZeroRateConversions))
}

func outputName(prefix string, cutoff time.Time, ext string) string {
	stamp := time.Now().Format("20060102_150405")
	if !cutoff.IsZero() {
		stamp = cutoff.Format("20060102") + "_" + stamp
	}
	return fmt.Sprintf("%s_%s.%s", prefix, stamp, ext)
}

// HandleCartera procesa la extracción de cartera y devuelve el libro Cartera.
func (h *CarteraHandler) HandleCartera(c *gin.Context) {
	file, name, ok := openUpload(c, "carteraFile", "cartera")
	if !ok {
		return
	}
	defer file.Close()

	res, err := h.service.ProcessCartera(c.Request.Context(), cartera.CarteraRequest{
		File:     file,
		Filename: name,
		Cutoff:   c.PostForm("fechaCierre"),
		Currency: c.PostForm("moneda"),
	})
	if err != nil {
		responses.Error(c, statusFor(err), "Error al procesar la cartera", err.Error())
		return
	}

	writeDiagnostics(c, res.Diagnostics)
	responses.File(c, outputName("Cartera_Procesada", res.Cutoff, cartera.FormatXLSX), responses.ContentTypeXLSX, res.Data)
}

// HandleAnticipos procesa el archivo de anticipos.
func (h *CarteraHandler) HandleAnticipos(c *gin.Context) {
	file, name, ok := openUpload(c, "anticiposFile", "anticipos")
	if !ok {
		return
	}
	defer file.Close()

	res, err := h.service.ProcessAnticipos(c.Request.Context(), cartera.AnticiposRequest{File: file, Filename: name})
	if err != nil {
		responses.Error(c, statusFor(err), "Error al procesar los anticipos", err.Error())
		return
	}

	writeDiagnostics(c, res.Diagnostics)
	responses.File(c, outputName("Anticipos_Procesados", time.Time{}, cartera.FormatXLSX), responses.ContentTypeXLSX, res.Data)
}

// HandleModeloDeuda arma el modelo de deuda; formato=csv devuelve solo la tabla VENCIMIENTO.
func (h *CarteraHandler) HandleModeloDeuda(c *gin.Context) {
	carteraFile, carteraName, ok := openUpload(c, "carteraFile", "cartera")
	if !ok {
		return
	}
	defer carteraFile.Close()

	req := cartera.DebtModelRequest{
		Cartera:         carteraFile,
		CarteraFilename: carteraName,
		Cutoff:          c.PostForm("fechaCierre"),
		USD:             c.PostForm("trmUsd"),
		EUR:             c.PostForm("trmEur"),
		Format:          c.DefaultPostForm("formato", cartera.FormatXLSX),
	}
	if save, err := strconv.ParseBool(c.DefaultPostForm("guardarTrm", "false")); err == nil {
		req.SaveRates = save
	}

	if _, err := c.FormFile("anticiposFile"); err == nil {
		advFile, advName, ok := openUpload(c, "anticiposFile", "anticipos")
		if !ok {
			return
		}
		defer advFile.Close()
		req.Anticipos = advFile
		req.AnticiposFilename = advName
	}

	res, err := h.service.BuildModeloDeuda(c.Request.Context(), req)
	if err != nil {
		responses.Error(c, statusFor(err), "Error al generar el modelo de deuda", err.Error())
		return
	}

	writeDiagnostics(c, res.Diagnostics)
	if res.Format == cartera.FormatCSV {
		responses.File(c, outputName("Vencimiento", res.Cutoff, cartera.FormatCSV), responses.ContentTypeCSV, res.Data)
		return
	}
	responses.File(c, outputName("Modelo_Deuda", res.Cutoff, cartera.FormatXLSX), responses.ContentTypeXLSX, res.Data)
}

// rateRequest acepta las TRM como texto para admitir el formato "4.780".
type rateRequest struct {
	USD string `json:"usd" binding:"required_without=EUR"`
	EUR string `json:"eur" binding:"required_without=USD"`
}

// rateView es la TRM guardada con su representación para pantalla.
type rateView struct {
	domain.RateSnapshot
	USDDisplay string `json:"usd_display"`
	EURDisplay string `json:"eur_display"`
}

func newRateView(s domain.RateSnapshot) rateView {
	return rateView{RateSnapshot: s, USDDisplay: cartera.FormatRate(s.USD), EURDisplay: cartera.FormatRate(s.EUR)}
}

// HandleGetRates devuelve la TRM guardada.
func (h *CarteraHandler) HandleGetRates(c *gin.Context) {
	snap, err := h.service.GetRates(c.Request.Context())
	if err != nil {
		responses.Error(c, statusFor(err), "Error al leer la TRM", err.Error())
		return
	}
	responses.Success(c, newRateView(snap), "TRM vigente")
}

// HandleSetRates actualiza la TRM guardada.
func (h *CarteraHandler) HandleSetRates(c *gin.Context) {
	var req rateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.Error(c, http.StatusBadRequest, "Datos de TRM inválidos", err.Error())
		return
	}

	snap, err := h.service.SetRates(c.Request.Context(), req.USD, req.EUR)
	if err != nil {
		responses.Error(c, statusFor(err), "Error al guardar la TRM", err.Error())
		return
	}
	responses.Success(c, newRateView(snap), "TRM actualizada")
}
