package config

import (
	"path/filepath"
	"sync"
	"time"
)

// AppConfig holds global application configuration
var AppConfig *Config
var once sync.Once

type Config struct {
	AppName string
	Host    string
	Port    string
	Env     string
	Debug   bool
	BaseURL string

	DataDir    string
	ModulesDir string
	UploadsDir string
	LogDir     string

	SessionSecret string
	SessionTTL    time.Duration
	SessionSecure bool

	BcryptCost           int
	DefaultAdminPassword string
	UploadLimit          int64

	EnableCompression  bool
	EnableRateLimiting bool

	MailDriver     string
	SendgridAPIKey string
	MailFrom       string
}

// LoadAppConfig initializes the global AppConfig variable
func LoadAppConfig() *Config {
	once.Do(func() {
		AppConfig = FromEnv()
	})
	return AppConfig
}

// FromEnv builds a Config from the environment without touching AppConfig.
func FromEnv() *Config {
	port := GetEnv("PORT", "3000")
	host := GetEnv("HOST", "localhost")
	if GetEnv("APP_ENV", "development") == "production" && host == "localhost" {
		host = "0.0.0.0"
	}
	dataDir := GetEnv("DATA_DIR", "data")
	return &Config{
		AppName: GetEnv("APP_NAME", "Dashboard"),
		Host:    host,
		Port:    port,
		Env:     GetEnv("APP_ENV", "development"),
		Debug:   getEnvBool("DEBUG", false),
		BaseURL: GetEnv("BASE_URL", "http://localhost:"+port),

		DataDir:    dataDir,
		ModulesDir: GetEnv("MODULES_DIR", "modules"),
		UploadsDir: GetEnv("UPLOADS_DIR", "uploads"),
		LogDir:     GetEnv("LOG_DIR", filepath.Join(dataDir, "logs")),

		SessionSecret: GetEnv("SESSION_SECRET", "your-secret-key-change-this"),
		SessionTTL:    getEnvDuration("SESSION_TTL", 24*time.Hour),
		SessionSecure: getEnvBool("SESSION_SECURE", false),

		BcryptCost:           getEnvInt("BCRYPT_COST", 10),
		DefaultAdminPassword: GetEnv("DEFAULT_ADMIN_PASSWORD", "admin123"),
		UploadLimit:          int64(getEnvInt("FILE_UPLOAD_LIMIT", 2*1024*1024)),

		EnableCompression:  getEnvBool("ENABLE_COMPRESSION", false),
		EnableRateLimiting: getEnvBool("ENABLE_RATE_LIMITING", false),

		MailDriver:     GetEnv("MAIL_DRIVER", "console"),
		SendgridAPIKey: GetEnv("SENDGRID_API_KEY", ""),
		MailFrom:       GetEnv("MAIL_FROM", "no-reply@localhost"),
	}
}

// Addr is the listen address.
func (c *Config) Addr() string {
	return c.Host + ":" + c.Port
}
