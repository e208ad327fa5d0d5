package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/nickjlamb/biomarkerfinder/internal/domain"
)

// Manager loads and serves application configuration using Viper.
type Manager struct {
	config *domain.Config
}

// NewManager creates a new configuration manager.
func NewManager() (*Manager, error) {
	m := &Manager{}
	if err := m.loadConfig(); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return m, nil
}

// loadConfig loads configuration from file, environment, and defaults.
func (m *Manager) loadConfig() error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/biomarkerfinder/")

	viper.SetEnvPrefix("BIOMARKER")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	m.setDefaults()

	// Config file is optional; defaults and environment variables suffice.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	config := &domain.Config{}
	if err := viper.Unmarshal(config); err != nil {
		return fmt.Errorf("error unmarshaling config: %w", err)
	}

	m.config = config
	return nil
}

// setDefaults sets default configuration values.
func (m *Manager) setDefaults() {
	// Server defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "120s")
	viper.SetDefault("server.idle_timeout", "120s")

	// OLS4 ontology API defaults. The base URL is derived from the ontology
	// name by the client; base_url is an explicit override only.
	viper.SetDefault("external_api.ols.ontology", "efo")
	viper.SetDefault("external_api.ols.iri_prefix", "http://www.ebi.ac.uk/efo/")
	viper.SetDefault("external_api.ols.timeout", "30s")
	viper.SetDefault("external_api.ols.rate_limit", 10)
	viper.SetDefault("external_api.ols.page_size", 500)

	// Open Targets Platform defaults
	viper.SetDefault("external_api.opentargets.endpoint", "https://api.platform.opentargets.org/api/v4/graphql")
	viper.SetDefault("external_api.opentargets.timeout", "30s")
	viper.SetDefault("external_api.opentargets.rate_limit", 10)
	viper.SetDefault("external_api.opentargets.drug_page_size", 1000)
	viper.SetDefault("external_api.opentargets.candidate_page_size", 500)

	// Relationship cache defaults
	viper.SetDefault("cache.size", 512)
	viper.SetDefault("cache.ttl", "24h")

	// Logging defaults
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
}

// GetConfig returns the complete configuration.
func (m *Manager) GetConfig() *domain.Config {
	return m.config
}

// GetServerConfig returns server configuration.
func (m *Manager) GetServerConfig() *domain.ServerConfig {
	return &m.config.Server
}

// GetExternalAPIConfig returns external API configuration.
func (m *Manager) GetExternalAPIConfig() *domain.ExternalAPIConfig {
	return &m.config.ExternalAPI
}

// Validate validates the configuration.
func (m *Manager) Validate() error {
	config := m.config

	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", config.Server.Port)
	}

	if config.ExternalAPI.OLS.BaseURL == "" && config.ExternalAPI.OLS.Ontology == "" {
		return fmt.Errorf("OLS ontology or base URL is required")
	}
	if config.ExternalAPI.OpenTargets.Endpoint == "" {
		return fmt.Errorf("Open Targets endpoint is required")
	}
	if config.ExternalAPI.OLS.PageSize <= 0 {
		return fmt.Errorf("invalid OLS page size: %d", config.ExternalAPI.OLS.PageSize)
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true, "fatal": true, "panic": true,
	}
	if !validLogLevels[strings.ToLower(config.Logging.Level)] {
		return fmt.Errorf("invalid log level: %s", config.Logging.Level)
	}

	return nil
}
