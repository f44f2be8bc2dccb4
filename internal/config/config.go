package config

import "os"

// Config holds the application configuration
// Note: This is a stateless configuration - compositions are written to
// OutputDir and handed to the collaborator services by path, nothing is
// persisted by the API itself
type Config struct {
	// Environment
	Environment string
	Port        string

	// Where generated MIDI files and stems are written
	OutputDir string

	// Collaborator services
	ModelServerURL   string // TF Serving predict URL for the control model
	RendererURL      string // MIDI -> WAV renderer
	AudioProducerURL string // stem mixing / mastering service

	// Observability
	SentryDSN string // Sentry DSN for error tracking
}

func Load() *Config {
	return &Config{
		Environment:      getEnv("ENVIRONMENT", "development"),
		Port:             getEnv("PORT", "8080"),
		OutputDir:        getEnv("OUTPUT_DIR", "./output"),
		ModelServerURL:   getEnv("MODEL_SERVER_URL", ""),
		RendererURL:      getEnv("RENDERER_URL", "http://localhost:9000"),
		AudioProducerURL: getEnv("AUDIO_PRODUCER_URL", "http://localhost:9001"),
		SentryDSN:        getEnv("SENTRY_DSN", ""),
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value != "" {
		return value
	}
	return defaultValue
}

// IsProduction returns true when running in the production environment
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
