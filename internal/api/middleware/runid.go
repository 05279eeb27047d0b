package middleware

import (
	"cartera-service/internal/core/cartera"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RunID propaga el X-Run-ID recibido o asigna uno nuevo, y lo devuelve en la respuesta.
func RunID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RunIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		c.Header(RunIDHeader, id)
		c.Request = c.Request.WithContext(cartera.WithRunID(c.Request.Context(), id))
		c.Next()
	}
}
