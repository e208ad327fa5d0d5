package domain

import (
	"time"
)

// Config represents the main application configuration
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	ExternalAPI ExternalAPIConfig `mapstructure:"external_api"`
	Cache       CacheConfig       `mapstructure:"cache"`
	Logging     LoggingConfig     `mapstructure:"logging"`
}

// ServerConfig represents HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// ExternalAPIConfig groups the upstream API client configurations
type ExternalAPIConfig struct {
	OLS         OLSConfig         `mapstructure:"ols"`
	OpenTargets OpenTargetsConfig `mapstructure:"opentargets"`
}

// OLSConfig configures the EBI OLS4 ontology API client
type OLSConfig struct {
	BaseURL   string        `mapstructure:"base_url"`
	Ontology  string        `mapstructure:"ontology"`
	IRIPrefix string        `mapstructure:"iri_prefix"`
	Timeout   time.Duration `mapstructure:"timeout"`
	RateLimit int           `mapstructure:"rate_limit"` // requests per second
	PageSize  int           `mapstructure:"page_size"`
}

// OpenTargetsConfig configures the Open Targets Platform GraphQL client
type OpenTargetsConfig struct {
	Endpoint          string        `mapstructure:"endpoint"`
	Timeout           time.Duration `mapstructure:"timeout"`
	RateLimit         int           `mapstructure:"rate_limit"` // requests per second
	DrugPageSize      int           `mapstructure:"drug_page_size"`
	CandidatePageSize int           `mapstructure:"candidate_page_size"`
}

// CacheConfig configures the in-process ontology term cache
type CacheConfig struct {
	Size int           `mapstructure:"size"`
	TTL  time.Duration `mapstructure:"ttl"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}
