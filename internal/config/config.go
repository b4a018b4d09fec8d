package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/samber/lo"

	"invoiceqc/internal/extract"
	"invoiceqc/internal/logger"
	"invoiceqc/internal/ocr"
)

type Config struct {
	// Extraction
	TextProvider    string
	ExtractStrategy string
	BatchWorkers    int

	// Google Cloud Configuration
	GoogleCloudProject         string
	GoogleCloudLocation        string
	DocumentAIProcessorID      string
	DocumentAIProcessorVersion string

	// Google Sheets Configuration
	GoogleSheetURL       string
	GoogleSheetWorksheet string

	// Run history and HTTP API
	DBPath   string
	HTTPAddr string

	// Logging Configuration
	LogLevel      string
	LogFormat     string
	LogTimeFormat string
	LogOutput     string
}

func Load() (*Config, error) {
	config := &Config{
		TextProvider:               getEnv("TEXT_PROVIDER", ocr.ProviderPDF),
		ExtractStrategy:            getEnv("EXTRACT_STRATEGY", extract.StrategyAuto),
		BatchWorkers:               getEnvInt("BATCH_WORKERS", 4),
		GoogleCloudProject:         getEnv("GOOGLE_CLOUD_PROJECT", ""),
		GoogleCloudLocation:        getEnv("GOOGLE_CLOUD_LOCATION", "us"),
		DocumentAIProcessorID:      getEnv("DOCUMENT_AI_PROCESSOR_ID", ""),
		DocumentAIProcessorVersion: getEnv("DOCUMENT_AI_PROCESSOR_VERSION", ""),
		GoogleSheetURL:             getEnv("GOOGLE_SHEET_URL", ""),
		GoogleSheetWorksheet:       getEnv("GOOGLE_SHEET_WORKSHEET", "QC"),
		DBPath:                     getEnv("QC_DB_PATH", "invoiceqc.db"),
		HTTPAddr:                   getEnv("HTTP_ADDR", ":8080"),
		LogLevel:                   getEnv("LOG_LEVEL", "info"),
		LogFormat:                  getEnv("LOG_FORMAT", "console"),
		LogTimeFormat:              getEnv("LOG_TIME_FORMAT", "2006-01-02T15:04:05Z07:00"),
		LogOutput:                  getEnv("LOG_OUTPUT", "stderr"),
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// validate checks settings every command depends on. Feature settings are
// checked by the Validate* methods when the feature is used.
func (c *Config) validate() error {
	if !lo.Contains([]string{ocr.ProviderPDF, ocr.ProviderVision, ocr.ProviderDocumentAI}, c.TextProvider) {
		return fmt.Errorf("TEXT_PROVIDER must be one of pdf, vision, documentai (got %q)", c.TextProvider)
	}
	if !lo.Contains([]string{extract.StrategyAuto, extract.StrategyEuropean, extract.StrategyIndian}, c.ExtractStrategy) {
		return fmt.Errorf("EXTRACT_STRATEGY must be one of auto, de, in (got %q)", c.ExtractStrategy)
	}
	if c.BatchWorkers < 1 {
		return fmt.Errorf("BATCH_WORKERS must be positive")
	}
	return nil
}

// ValidateDocumentAI checks the settings required by the documentai text provider.
func (c *Config) ValidateDocumentAI() error {
	if c.GoogleCloudProject == "" {
		return fmt.Errorf("GOOGLE_CLOUD_PROJECT is required")
	}
	if c.DocumentAIProcessorID == "" {
		return fmt.Errorf("DOCUMENT_AI_PROCESSOR_ID is required")
	}
	return nil
}

// ValidateSheets checks the settings required for Google Sheets export.
func (c *Config) ValidateSheets() error {
	if c.GoogleSheetURL == "" {
		return fmt.Errorf("GOOGLE_SHEET_URL is required")
	}
	return nil
}

// DocumentAIConfig returns the Document AI provider configuration.
func (c *Config) DocumentAIConfig() ocr.DocumentAIConfig {
	return ocr.DocumentAIConfig{
		ProjectID:        c.GoogleCloudProject,
		Location:         c.GoogleCloudLocation,
		ProcessorID:      c.DocumentAIProcessorID,
		ProcessorVersion: c.DocumentAIProcessorVersion,
		Timeout:          60 * time.Second,
	}
}

// GetLoggerConfig returns a logger configuration from the main config
func (c *Config) GetLoggerConfig() logger.LogConfig {
	return logger.LogConfig{
		Level:      c.LogLevel,
		Format:     c.LogFormat,
		TimeFormat: c.LogTimeFormat,
		Output:     c.LogOutput,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return n
}
