package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	GinMode     string
	CORSOrigins []string

	// Storage
	DBPath         string
	FileStorageDir string
	MaxFileSize    int64

	// Gemini
	GeminiAPIKey string
	GeminiModel  string
	GeminiTier   string

	// OCR fallback
	OCRProvider  string // "remote" or "tesseract"
	OCRAPIURL    string
	OCRAPIKey    string
	OCRTimeout   int // seconds, per page
	OCRPageLimit int
	OCRDPI       float64

	// Extraction policy
	MinTextThreshold int

	// Enrichment
	AnalysisPageLimit int
	SummaryInputLimit int
	SummaryMinLength  int

	// Web fetch
	FetchTimeout int // seconds
	UserAgent    string

	// Telemetry
	TracingEnabled bool
	OTLPEndpoint   string
}

func LoadConfig() (*Config, error) {
	// Load .env file if exists
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("error loading .env file: %v", err)
		}
	}

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		GinMode:     getEnv("GIN_MODE", "debug"),
		CORSOrigins: strings.Split(getEnv("CORS_ORIGINS", "http://localhost:3000,http://localhost:8080"), ","),

		DBPath:         getEnv("DB_PATH", "./data/documents.db"),
		FileStorageDir: getEnv("FILE_STORAGE_DIR", "./storage"),
		MaxFileSize:    getEnvInt64("MAX_FILE_SIZE", 16777216), // 16MB upload cap

		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		GeminiTier:   getEnv("GEMINI_TIER", "free"),

		OCRProvider:  getEnv("OCR_PROVIDER", "remote"),
		OCRAPIURL:    getEnv("OCR_API_URL", "https://api.ocr.space/parse/image"),
		OCRAPIKey:    getEnv("OCR_API_KEY", ""),
		OCRTimeout:   getEnvInt("OCR_TIMEOUT", 30),
		OCRPageLimit: getEnvInt("OCR_PAGE_LIMIT", 5),
		OCRDPI:       getEnvFloat64("OCR_DPI", 300),

		MinTextThreshold: getEnvInt("MIN_TEXT_THRESHOLD", 50),

		AnalysisPageLimit: getEnvInt("ANALYSIS_PAGE_LIMIT", 3),
		SummaryInputLimit: getEnvInt("SUMMARY_INPUT_LIMIT", 30000),
		SummaryMinLength:  getEnvInt("SUMMARY_MIN_LENGTH", 50),

		FetchTimeout: getEnvInt("FETCH_TIMEOUT", 10),
		UserAgent:    getEnv("FETCH_USER_AGENT", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"),

		TracingEnabled: getEnvBool("TRACING_ENABLED", false),
		OTLPEndpoint:   getEnv("OTLP_ENDPOINT", "localhost:4317"),
	}

	if cfg.MinTextThreshold <= 0 {
		return nil, fmt.Errorf("MIN_TEXT_THRESHOLD must be positive")
	}
	if cfg.OCRPageLimit <= 0 {
		return nil, fmt.Errorf("OCR_PAGE_LIMIT must be positive")
	}
	if cfg.OCRProvider != "remote" && cfg.OCRProvider != "tesseract" {
		return nil, fmt.Errorf("OCR_PROVIDER must be 'remote' or 'tesseract', got %q", cfg.OCRProvider)
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat64(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
