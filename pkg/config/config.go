package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Database   DatabaseConfig
	OCR        OCRConfig
	Extraction ExtractionConfig
	Gemini     GeminiConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// OCRConfig locates the external rasterization and recognition binaries.
type OCRConfig struct {
	TesseractBinary string
	PdftoppmBinary  string
	RenderScale     float64
	Language        string
}

// ExtractionConfig bounds the heuristics of the statement parsing pipeline.
type ExtractionConfig struct {
	// Amounts outside [-MaxAmount, MaxAmount] are dropped as OCR garbage.
	MaxAmount float64
	// Statement-balance summary rows above this are discarded as misreads.
	MaxSummaryAmount float64
	// Levenshtein similarity at or above this marks a near-duplicate.
	DuplicateSimilarity float64
	// Enhanced image preprocessing (deskew, adaptive threshold).
	EnhancedPreprocessing bool
}

type GeminiConfig struct {
	APIKey string
	Model  string
	// SmartCategorization gates the AI suggestion step of the categorizer.
	SmartCategorization bool
	// MinConfidence is the acceptance bar for single-transaction suggestions.
	MinConfidence float64
}

// Load reads configuration from the environment, after loading a .env file
// when one is present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Database: DatabaseConfig{
			Host:     getEnv("POSTGRES_HOST", "localhost"),
			Port:     getEnvAsInt("POSTGRES_PORT", 5432),
			User:     getEnv("POSTGRES_USER", "postgres"),
			Password: getEnv("POSTGRES_PASSWORD", "postgres"),
			Database: getEnv("POSTGRES_DB", "budget-dev"),
			SSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		},
		OCR: OCRConfig{
			TesseractBinary: getEnv("TESSERACT_BINARY", "tesseract"),
			PdftoppmBinary:  getEnv("PDFTOPPM_BINARY", "pdftoppm"),
			RenderScale:     getEnvAsFloat("OCR_RENDER_SCALE", 2.0),
			Language:        getEnv("OCR_LANGUAGE", "eng"),
		},
		Extraction: ExtractionConfig{
			MaxAmount:             getEnvAsFloat("EXTRACTION_MAX_AMOUNT", 100000),
			MaxSummaryAmount:      getEnvAsFloat("EXTRACTION_MAX_SUMMARY_AMOUNT", 50000),
			DuplicateSimilarity:   getEnvAsFloat("EXTRACTION_DUPLICATE_SIMILARITY", 0.8),
			EnhancedPreprocessing: getEnvAsBool("EXTRACTION_ENHANCED_PREPROCESSING", true),
		},
		Gemini: GeminiConfig{
			APIKey:              getEnv("GEMINI_API_KEY", ""),
			Model:               getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
			SmartCategorization: getEnvAsBool("SMART_CATEGORIZATION", false),
			MinConfidence:       getEnvAsFloat("SMART_CATEGORIZATION_MIN_CONFIDENCE", 0.7),
		},
	}

	if cfg.Gemini.SmartCategorization && cfg.Gemini.APIKey == "" {
		return nil, fmt.Errorf("SMART_CATEGORIZATION enabled but GEMINI_API_KEY is empty")
	}

	return cfg, nil
}

// DSN returns the database connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}
