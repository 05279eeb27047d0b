// Package config carga la configuración desde variables de entorno.
package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Almacenes de TRM.
const (
	BackendFile      = "file"
	BackendFirestore = "firestore"
)

// Config es la configuración del servicio y de la CLI.
type Config struct {
	AppEnv   string `envconfig:"APP_ENV" default:"production" validate:"oneof=development production test"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn error"`

	Port         string `envconfig:"CARTERA_PORT" default:"8084" validate:"required,numeric"`
	OutputDir    string `envconfig:"CARTERA_OUTPUT_DIR" default:"."`
	MaxUploadMB  int64  `envconfig:"CARTERA_MAX_UPLOAD_MB" default:"32" validate:"gt=0,lte=512"`
	Country      string `envconfig:"CARTERA_COUNTRY" default:"Colombia" validate:"required"`
	LinesFile    string `envconfig:"CARTERA_LINES_FILE"`
	RatesBackend string `envconfig:"CARTERA_TRM_BACKEND" default:"file" validate:"oneof=file firestore"`
	RatesFile    string `envconfig:"CARTERA_TRM_FILE" default:"trm_config.json"`

	FirestoreProject    string `envconfig:"FIRESTORE_PROJECT" validate:"required_if=RatesBackend firestore"`
	FirestoreDatabase   string `envconfig:"FIRESTORE_DATABASE" default:"(default)"`
	FirestoreCollection string `envconfig:"FIRESTORE_COLLECTION" default:"config"`
	FirestoreDocument   string `envconfig:"FIRESTORE_DOCUMENT" default:"trm"`

	// JWTSecret activa la validación de tokens en /api/v1.
	JWTSecret string `envconfig:"JWT_SECRET"`
}

// LoadDotEnv carga los .env que existan; un archivo ausente no es error.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	var existing []string
	for _, f := range files {
		if fileExists(f) {
			existing = append(existing, f)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	return godotenv.Load(existing...)
}

// Load lee y valida la configuración.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("error al leer la configuración: %w", err)
	}
	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("configuración inválida: %w", err)
	}
	return &cfg, nil
}

// IsDevelopment indica si el servicio corre en modo desarrollo.
func (c *Config) IsDevelopment() bool {
	return c != nil && c.AppEnv == "development"
}

// Addr devuelve la dirección de escucha.
func (c *Config) Addr() string {
	return ":" + c.Port
}

// MaxUploadBytes devuelve el límite de memoria para multipart.
func (c *Config) MaxUploadBytes() int64 {
	return c.MaxUploadMB << 20
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
