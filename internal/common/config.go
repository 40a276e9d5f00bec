package common

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Extraction    ExtractionConfig
	Normalization NormalizationConfig
	Batch         BatchConfig
	Export        ExportConfig
}

// ExtractionConfig holds confidence-scoring configuration
type ExtractionConfig struct {
	LowConfidenceThreshold float64
}

// NormalizationConfig holds field-mapping and validation configuration
type NormalizationConfig struct {
	StrictMode      bool
	DefaultCurrency string
}

// BatchConfig holds worker pool configuration
type BatchConfig struct {
	Workers        int
	QueueSize      int
	ProcessTimeout time.Duration
}

// ExportConfig holds output configuration
type ExportConfig struct {
	Dir       string
	SheetName string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Extraction: ExtractionConfig{
			LowConfidenceThreshold: getEnvAsFloat64("LOAN_LOW_CONFIDENCE_THRESHOLD", 0.7),
		},
		Normalization: NormalizationConfig{
			StrictMode:      getEnvAsBool("LOAN_STRICT_VALIDATION", false),
			DefaultCurrency: strings.ToUpper(getEnv("LOAN_DEFAULT_CURRENCY", "INR")),
		},
		Batch: BatchConfig{
			Workers:        getEnvAsInt("BATCH_WORKERS", 4),
			QueueSize:      getEnvAsInt("BATCH_QUEUE_SIZE", 64),
			ProcessTimeout: getEnvAsDuration("BATCH_PROCESS_TIMEOUT", 30*time.Second),
		},
		Export: ExportConfig{
			Dir:       getEnv("EXPORT_DIR", "./out"),
			SheetName: getEnv("EXPORT_SHEET_NAME", "Comparison"),
		},
	}
}

// LoadDotEnv loads the first of paths that exists into the process
// environment (defaulting to ".env"). Variables already set win. It returns
// the loaded path, or "" when no file was found.
func LoadDotEnv(paths ...string) (string, error) {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return "", err
		}
		return p, nil
	}
	return "", nil
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat64(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate checks the loaded configuration
func (c *Config) Validate() error {
	v := NewValidator().
		Field("LOAN_LOW_CONFIDENCE_THRESHOLD", c.Extraction.LowConfidenceThreshold, InRange(0, 1)).
		Field("LOAN_DEFAULT_CURRENCY", c.Normalization.DefaultCurrency, CurrencyCode).
		Field("BATCH_WORKERS", c.Batch.Workers, Positive).
		Field("BATCH_QUEUE_SIZE", c.Batch.QueueSize, Positive).
		Field("EXPORT_DIR", c.Export.Dir, Required)
	if v.HasErrors() {
		return NewAppError("CONFIG_ERROR", v.ErrorMessage(), ErrInvalidInput)
	}
	return nil
}
