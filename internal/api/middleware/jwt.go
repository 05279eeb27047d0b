// Package middleware contiene los middleware gin de la API de cartera.
package middleware

import (
	"errors"
	"net/http"
	"strings"

	"cartera-service/internal/api/responses"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// ClaimsKey es la clave del contexto gin con los claims verificados.
const ClaimsKey = "claims"

// RunIDHeader lleva el identificador de ejecución de cada solicitud.
const RunIDHeader = "X-Run-ID"

// RequireJWT valida tokens bearer HS256 emitidos por el servicio de autenticación.
// Con secret vacío no se valida nada.
func RequireJWT(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		if len(secret) == 0 {
			c.Next()
			return
		}

		header := c.GetHeader("Authorization")
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(raw) == "" {
			responses.Error(c, http.StatusUnauthorized, "Token de acceso requerido")
			return
		}

		claims := jwt.MapClaims{}
		token, err := jwt.ParseWithClaims(strings.TrimSpace(raw), claims, func(t *jwt.Token) (any, error) {
			return secret, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
		if err != nil || !token.Valid {
			msg := "Token inválido"
			if errors.Is(err, jwt.ErrTokenExpired) {
				msg = "Token expirado"
			}
			responses.Error(c, http.StatusUnauthorized, msg)
			return
		}

		c.Set(ClaimsKey, claims)
		c.Next()
	}
}
