package config

import (
	"fmt"
	"os"
)

// Config holds the application configuration
type Config struct {
	Port             string
	SessionJWTSecret string

	VonageAPIKey         string
	VonageAPISecret      string
	VonageApplicationID  string
	VonagePrivateKeyPath string
	VonageBrand          string
	VonageSender         string

	GeminiAPIKey string
	ExaAPIKey    string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Port:         "8080", // default port
		VonageBrand:  "WebSeeker",
		VonageSender: "Saan",
	}

	if port := os.Getenv("PORT"); port != "" {
		cfg.Port = port
	}

	required := []struct {
		name string
		dst  *string
	}{
		{"SESSION_JWT_SECRET", &cfg.SessionJWTSecret},
		{"VONAGE_API_KEY", &cfg.VonageAPIKey},
		{"VONAGE_API_SECRET", &cfg.VonageAPISecret},
		{"VONAGE_APPLICATION_ID", &cfg.VonageApplicationID},
		{"VONAGE_PRIVATE_KEY_PATH", &cfg.VonagePrivateKeyPath},
		{"GEMINI_API_KEY", &cfg.GeminiAPIKey},
		{"EXA_API_KEY", &cfg.ExaAPIKey},
	}
	for _, v := range required {
		val := os.Getenv(v.name)
		if val == "" {
			return nil, fmt.Errorf("%s environment variable is required", v.name)
		}
		*v.dst = val
	}

	if brand := os.Getenv("VONAGE_BRAND"); brand != "" {
		cfg.VonageBrand = brand
	}
	if sender := os.Getenv("VONAGE_SENDER"); sender != "" {
		cfg.VonageSender = sender
	}

	return cfg, nil
}
