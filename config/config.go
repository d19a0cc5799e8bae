package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port   string
	AppEnv string

	DBDriver   string // postgres, mysql, sqlite
	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string
	DBPath     string // sqlite file
	DBLogLevel string

	JWTKey      string
	JWTTTLHours int
	SaltRound   int
	AdminEmails []string

	BlobDriver         string // local, http
	BlobLocalDir       string
	BlobPublicURL      string
	BlobAPIURL         string
	BlobAPIKey         string
	BlobTimeoutSeconds int
	BlobCleanupCron    string

	SendgridAPIKey  string
	EmailSender     string
	EmailSenderName string
}

// AppConfig is a global variable to access configuration
var AppConfig *Config

// LoadConfig initializes configuration from environment variables or defaults
func LoadConfig() *Config {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found. Using system environment variables.")
	}

	AppConfig = &Config{
		Port:   getEnv("PORT", "3000"),
		AppEnv: getEnv("APP_ENV", "development"),

		DBDriver:   strings.ToLower(getEnv("DB_DRIVER", "postgres")),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "coursetrack"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBPath:     getEnv("DB_PATH", "coursetrack.db"),
		DBLogLevel: getEnv("DB_LOG_LEVEL", "warn"),

		JWTKey:      getEnv("JWT_SECRET_KEY", "defaultSecret"),
		JWTTTLHours: getEnvInt("JWT_TTL_HOURS", 24),
		SaltRound:   getEnvInt("SALT_ROUND", 10),
		AdminEmails: getEnvList("ADMIN_EMAILS"),

		BlobDriver:         strings.ToLower(getEnv("BLOB_DRIVER", "local")),
		BlobLocalDir:       getEnv("BLOB_LOCAL_DIR", "./public/uploads"),
		BlobPublicURL:      getEnv("BLOB_PUBLIC_URL", "/uploads"),
		BlobAPIURL:         getEnv("BLOB_API_URL", ""),
		BlobAPIKey:         getEnv("BLOB_API_KEY", ""),
		BlobTimeoutSeconds: getEnvInt("BLOB_TIMEOUT_SECONDS", 15),
		BlobCleanupCron:    getEnv("BLOB_CLEANUP_CRON", "*/15 * * * *"),

		SendgridAPIKey:  getEnv("SENDGRID_API_KEY", ""),
		EmailSender:     getEnv("EMAIL_SENDER", ""),
		EmailSenderName: getEnv("EMAIL_SENDER_NAME", "Course Tracker"),
	}

	// Validate critical configuration
	if AppConfig.JWTKey == "defaultSecret" {
		log.Println("Warning: Using default JWT_SECRET_KEY. Update it in your environment.")
	}
	if AppConfig.BlobDriver == "http" && AppConfig.BlobAPIURL == "" {
		log.Println("Warning: BLOB_DRIVER=http without BLOB_API_URL. Falling back to local storage.")
		AppConfig.BlobDriver = "local"
	}
	if AppConfig.SendgridAPIKey == "" {
		log.Println("Warning: SENDGRID_API_KEY not set. Emails will only be logged.")
	}

	return AppConfig
}

// IsProduction reports whether error details must be hidden from clients.
func (c *Config) IsProduction() bool {
	return c != nil && strings.EqualFold(c.AppEnv, "production")
}

// IsAdminEmail reports whether signups with this email get the admin flag.
func (c *Config) IsAdminEmail(email string) bool {
	for _, e := range c.AdminEmails {
		if strings.EqualFold(e, strings.TrimSpace(email)) {
			return true
		}
	}
	return false
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvInt retrieves an environment variable as an integer or returns the default integer value
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Error converting environment variable %s to int: %v", key, err)
		return defaultValue
	}
	return intValue
}

// getEnvList splits a comma separated variable, dropping blanks
func getEnvList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
