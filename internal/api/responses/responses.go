// Package responses escribe las respuestas JSON y las descargas de la API.
package responses

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var logger = zap.NewNop()

// Tipos de contenido de los archivos generados.
const (
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	ContentTypeCSV  = "text/csv; charset=windows-1252"
)

// APIResponse es el sobre estándar de las respuestas de la API.
type APIResponse struct {
	Status  string   `json:"status"` // "success" o "error"
	Data    any      `json:"data,omitempty"`
	Message string   `json:"message,omitempty"`
	Errors  []string `json:"errors,omitempty"`
}

// InitLogger define el logger de las respuestas.
func InitLogger(l *zap.Logger) {
	if l != nil {
		logger = l
	}
}

// Success responde 200 con data y message.
func Success(c *gin.Context, data any, message string) {
	c.JSON(http.StatusOK, APIResponse{Status: "success", Data: data, Message: message})
	logger.Info("respuesta exitosa", zap.String("path", c.Request.URL.Path), zap.Int("status", http.StatusOK))
}

// Error responde con code, message y los errores opcionales.
func Error(c *gin.Context, code int, message string, errs ...string) {
	c.AbortWithStatusJSON(code, APIResponse{Status: "error", Message: message, Errors: errs})
	logger.Error("respuesta con error", zap.String("path", c.Request.URL.Path), zap.Int("status", code), zap.Strings("errors", errs))
}

// File envía un archivo generado como adjunto.
func File(c *gin.Context, filename, contentType string, data []byte) {
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, contentType, data)
	logger.Info("archivo enviado", zap.String("path", c.Request.URL.Path), zap.String("file", filename), zap.Int("bytes", len(data)))
}
