package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"cartera-service/internal/api/responses"
	"cartera-service/internal/core/cartera"
	"cartera-service/internal/domain"
	"cartera-service/internal/ingest"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeService struct {
	request   cartera.CarteraRequest
	content   string
	modelo    cartera.DebtModelRequest
	anticipos string
	rates     domain.RateSnapshot
	usd, eur  string
	result    cartera.Result
	err       error
}

func (f *fakeService) ProcessCartera(_ context.Context, req cartera.CarteraRequest) (cartera.Result, error) {
	f.request = req
	data, _ := io.ReadAll(req.File)
	f.content = string(data)
	return f.result, f.err
}

func (f *fakeService) ProcessAnticipos(_ context.Context, req cartera.AnticiposRequest) (cartera.Result, error) {
	data, _ := io.ReadAll(req.File)
	f.anticipos = string(data)
	return f.result, f.err
}

func (f *fakeService) BuildModeloDeuda(_ context.Context, req cartera.DebtModelRequest) (cartera.Result, error) {
	f.modelo = req
	if req.Anticipos != nil {
		data, _ := io.ReadAll(req.Anticipos)
		f.anticipos = string(data)
	}
	return f.result, f.err
}

func (f *fakeService) GetRates(context.Context) (domain.RateSnapshot, error) {
	return f.rates, f.err
}

func (f *fakeService) SetRates(_ context.Context, usd, eur string) (domain.RateSnapshot, error) {
	f.usd, f.eur = usd, eur
	return f.rates, f.err
}

func init() {
	gin.SetMode(gin.TestMode)
}

func router(svc cartera.Service) *gin.Engine {
	r := gin.New()
	NewCarteraHandler(svc).Register(r.Group("/api/v1"))
	return r
}

type upload struct {
	field, name, content string
}

func multipartRequest(t *testing.T, path string, fields map[string]string, files ...upload) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	for _, f := range files {
		part, err := w.CreateFormFile(f.field, f.name)
		require.NoError(t, err)
		_, err = part.Write([]byte(f.content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func serve(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func envelope(t *testing.T, w *httptest.ResponseRecorder) responses.APIResponse {
	t.Helper()
	var body responses.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestHandleCartera(t *testing.T) {
	svc := &fakeService{result: cartera.Result{
		Data:        []byte("xlsx"),
		Format:      cartera.FormatXLSX,
		Cutoff:      time.Date(2024, time.June, 30, 0, 0, 0, 0, time.UTC),
		Diagnostics: domain.Diagnostics{Records: 12, CoercedValues: 2, Warnings: []string{"a"}},
	}}

	req := multipartRequest(t, "/api/v1/cartera/procesar",
		map[string]string{"fechaCierre": "2024-06-30", "moneda": "DOLAR"},
		upload{"carteraFile", "cartera.csv", "SALDO;NOMBRE\n1;A\n"})
	w := serve(router(svc), req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "xlsx", w.Body.String())
	assert.Equal(t, responses.ContentTypeXLSX, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "Cartera_Procesada_20240630_")
	assert.Equal(t, "12", w.Header().Get(HeaderRecords))
	assert.Equal(t, "1", w.Header().Get(HeaderWarnings))
	assert.Equal(t, "2", w.Header().Get(HeaderCoerced))
	assert.Equal(t, "0", w.Header().Get(HeaderZeroRate))

	assert.Equal(t, "cartera.csv", svc.request.Filename)
	assert.Equal(t, "2024-06-30", svc.request.Cutoff)
	assert.Equal(t, "DOLAR", svc.request.Currency)
	assert.Equal(t, "SALDO;NOMBRE\n1;A\n", svc.content)
}

func TestHandleCarteraRejectsUploads(t *testing.T) {
	svc := &fakeService{}

	w := serve(router(svc), multipartRequest(t, "/api/v1/cartera/procesar", map[string]string{"fechaCierre": "2024-06-30"}))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "error", envelope(t, w).Status)

	w = serve(router(svc), multipartRequest(t, "/api/v1/cartera/procesar", nil,
		upload{"carteraFile", "cartera.pdf", "%PDF"}))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, envelope(t, w).Message, ".pdf")
}

func TestHandleCarteraMapsErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"columna", &domain.StructuralError{Field: "SALDO", Err: domain.ErrMissingColumn}, http.StatusBadRequest},
		{"fecha", fmt.Errorf("%w: %q", domain.ErrInvalidCutoff, "x"), http.StatusBadRequest},
		{"vacío", domain.ErrEmptyInput, http.StatusBadRequest},
		{"formato", fmt.Errorf("error al leer x: %w", ingest.ErrUnsupportedFormat), http.StatusBadRequest},
		{"interno", fmt.Errorf("disco lleno"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeService{err: tt.err}
			w := serve(router(svc), multipartRequest(t, "/api/v1/cartera/procesar", nil,
				upload{"carteraFile", "cartera.xlsx", "x"}))
			require.Equal(t, tt.want, w.Code)
			body := envelope(t, w)
			assert.Equal(t, "Error al procesar la cartera", body.Message)
			assert.Equal(t, []string{tt.err.Error()}, body.Errors)
		})
	}
}

func TestHandleAnticipos(t *testing.T) {
	svc := &fakeService{result: cartera.Result{Data: []byte("adv"), Format: cartera.FormatXLSX}}
	w := serve(router(svc), multipartRequest(t, "/api/v1/cartera/anticipos", nil,
		upload{"anticiposFile", "anticipos.xls", "contenido"}))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "Anticipos_Procesados_")
	assert.Equal(t, "contenido", svc.anticipos)
}

func TestHandleModeloDeuda(t *testing.T) {
	svc := &fakeService{result: cartera.Result{Data: []byte("a;b"), Format: cartera.FormatCSV}}
	req := multipartRequest(t, "/api/v1/cartera/modelo-deuda",
		map[string]string{"trmUsd": "4.000", "trmEur": "", "guardarTrm": "true", "formato": "csv"},
		upload{"carteraFile", "cartera.csv", "c"},
		upload{"anticiposFile", "anticipos.csv", "anticipo"})
	w := serve(router(svc), req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, responses.ContentTypeCSV, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "Vencimiento_")
	assert.True(t, strings.HasSuffix(w.Header().Get("Content-Disposition"), ".csv"))

	assert.Equal(t, "4.000", svc.modelo.USD)
	assert.True(t, svc.modelo.SaveRates)
	assert.Equal(t, "csv", svc.modelo.Format)
	assert.Equal(t, "anticipos.csv", svc.modelo.AnticiposFilename)
	assert.Equal(t, "anticipo", svc.anticipos)
}

func TestHandleModeloDeudaWithoutAnticipos(t *testing.T) {
	svc := &fakeService{result: cartera.Result{Data: []byte("x"), Format: cartera.FormatXLSX}}
	w := serve(router(svc), multipartRequest(t, "/api/v1/cartera/modelo-deuda", nil,
		upload{"carteraFile", "cartera.csv", "c"}))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "Modelo_Deuda_")
	assert.Nil(t, svc.modelo.Anticipos)
	assert.False(t, svc.modelo.SaveRates)
	assert.Equal(t, cartera.FormatXLSX, svc.modelo.Format)
}

func TestHandleGetRates(t *testing.T) {
	usd := 4780.0
	svc := &fakeService{rates: domain.RateSnapshot{USD: &usd, UpdatedAt: "2024-06-12 09:30:00"}}

	w := serve(router(svc), httptest.NewRequest(http.MethodGet, "/api/v1/trm", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Status string `json:"status"`
		Data   struct {
			USD        *float64 `json:"usd"`
			EUR        *float64 `json:"eur"`
			UpdatedAt  string   `json:"updated_at"`
			USDDisplay string   `json:"usd_display"`
			EURDisplay string   `json:"eur_display"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "success", body.Status)
	assert.Equal(t, 4780.0, *body.Data.USD)
	assert.Nil(t, body.Data.EUR)
	assert.Equal(t, "4.780", body.Data.USDDisplay)
	assert.Equal(t, "-", body.Data.EURDisplay)
	assert.Equal(t, "2024-06-12 09:30:00", body.Data.UpdatedAt)
}

func TestHandleSetRates(t *testing.T) {
	eur := 4400.0
	svc := &fakeService{rates: domain.RateSnapshot{EUR: &eur}}

	req := httptest.NewRequest(http.MethodPut, "/api/v1/trm", strings.NewReader(`{"eur":"4.400"}`))
	req.Header.Set("Content-Type", "application/json")
	w := serve(router(svc), req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "", svc.usd)
	assert.Equal(t, "4.400", svc.eur)
	assert.Equal(t, "TRM actualizada", envelope(t, w).Message)

	req = httptest.NewRequest(http.MethodPut, "/api/v1/trm", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	w = serve(router(svc), req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	svc.err = fmt.Errorf("%w: USD %q", domain.ErrInvalidRate, "abc")
	req = httptest.NewRequest(http.MethodPut, "/api/v1/trm", strings.NewReader(`{"usd":"abc"}`))
	req.Header.Set("Content-Type", "application/json")
	w = serve(router(svc), req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
