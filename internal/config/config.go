package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// AppConfig collects the settings needed to run the server.
type AppConfig struct {
	ListenAddr        string
	Port              string
	DatabasePath      string
	SessionSecret     string
	GinMode           string
	LogLevel          string
	PublicDir         string
	TemplateDir       string
	UploadDir         string
	UploadURLPath     string
	SuperRootUserName string
	SuperRootPassword string
	Storage           StorageConfig
	// SynthesizeMissing makes the page editor show schema fields that have no
	// stored section yet; their rows are created on first save.
	SynthesizeMissing bool
	FormRatePerMinute int
}

// StorageConfig selects and configures the object storage backend.
type StorageConfig struct {
	Driver    string
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	PublicURL string
}

const (
	StorageDriverLocal = "local"
	StorageDriverMinio = "minio"
)

// Load reads configuration from the environment, falling back to defaults
// suitable for local development.
func Load() AppConfig {
	port := env("PORT", "8080")

	listenAddr := strings.TrimSpace(os.Getenv("LISTEN_ADDR"))
	if listenAddr == "" {
		listenAddr = fmt.Sprintf(":%s", port)
	}

	driver := strings.ToLower(env("STORAGE_DRIVER", StorageDriverLocal))
	if driver != StorageDriverMinio {
		driver = StorageDriverLocal
	}

	return AppConfig{
		ListenAddr:        listenAddr,
		Port:              port,
		DatabasePath:      env("DATABASE_PATH", "harvestcms.db"),
		SessionSecret:     env("SESSION_SECRET", "harvestcms-dev-secret"),
		GinMode:           env("GIN_MODE", "release"),
		LogLevel:          strings.ToLower(env("LOG_LEVEL", "info")),
		PublicDir:         env("PUBLIC_DIR", "web/public"),
		TemplateDir:       env("TEMPLATE_DIR", "web/template/admin"),
		UploadDir:         env("UPLOAD_DIR", "web/static/uploads"),
		UploadURLPath:     strings.TrimRight(env("UPLOAD_URL_PATH", "/static/uploads"), "/"),
		SuperRootUserName: env("SUPER_ROOT_USER_NAME", ""),
		SuperRootPassword: env("SUPER_ROOT_PASSWORD", ""),
		Storage: StorageConfig{
			Driver:    driver,
			Endpoint:  env("MINIO_ENDPOINT", "localhost:9000"),
			AccessKey: env("MINIO_ACCESS_KEY", ""),
			SecretKey: env("MINIO_SECRET_KEY", ""),
			UseSSL:    envBool("MINIO_USE_SSL", false),
			PublicURL: strings.TrimRight(env("MINIO_PUBLIC_URL", ""), "/"),
		},
		SynthesizeMissing: envBool("EDITOR_SYNTHESIZE_MISSING", true),
		FormRatePerMinute: envInt("FORM_RATE_PER_MINUTE", 5),
	}
}

func env(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func envBool(key string, fallback bool) bool {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func envInt(key string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}
