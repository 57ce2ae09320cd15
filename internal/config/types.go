// Package config provides configuration loading for dhtnode using Viper.
// Configuration is loaded from an optional YAML file with automatic
// environment variable binding.
//
// Environment variables use the DHTNODE_ prefix and underscore-separated
// keys:
//   - DHTNODE_SERVER_HOST -> server.host
//   - DHTNODE_SERVER_PORT -> server.port
//   - DHTNODE_TABLE_HASH_DEPRECATION_TIME -> table.hash_deprecation_time
//   - DHTNODE_GOSSIP_PEERS -> gossip.peers (comma-separated)
//
// The protocol-mandated DEBUG_RESEAU variable (spec §6) is read separately,
// without the DHTNODE_ prefix, by cmd/dhtserver — see logging.LevelFromDebugReseau.
package config

import (
	"os"
	"strings"
)

// ServerConfig contains the listening socket settings for the DHT node.
type ServerConfig struct {
	Host string `yaml:"host" mapstructure:"host"`
	Port int    `yaml:"port" mapstructure:"port"`
}

// TableConfig controls the deprecation/garbage-collection policy (spec §6).
type TableConfig struct {
	// HashDeprecationTimeSeconds is the maximum record age, in seconds, for
	// which `get` will still return it; also the collector's sleep interval.
	HashDeprecationTimeSeconds int `yaml:"hash_deprecation_time" mapstructure:"hash_deprecation_time"`
	// GarbageColTimeSeconds is the maximum record age, in seconds, before
	// the collector evicts it.
	GarbageColTimeSeconds int `yaml:"garbage_col_time" mapstructure:"garbage_col_time"`
	// MaxHashLength caps accepted hash token length (spec §9 open question).
	MaxHashLength int `yaml:"max_hash_length" mapstructure:"max_hash_length"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level            string            `yaml:"level"             mapstructure:"level"             json:"level"`
	Structured       bool              `yaml:"structured"        mapstructure:"structured"        json:"structured"`
	StructuredFormat string            `yaml:"structured_format" mapstructure:"structured_format" json:"structured_format"`
	IncludePID       bool              `yaml:"include_pid"       mapstructure:"include_pid"       json:"include_pid"`
	ExtraFields      map[string]string `yaml:"extra_fields"      mapstructure:"extra_fields"      json:"extra_fields,omitempty"`
}

// GossipConfig controls the background gossip broadcaster (C11).
type GossipConfig struct {
	// Peers is a static list of "host:port" peers to push the full table to.
	Peers []string `yaml:"peers" mapstructure:"peers" json:"peers,omitempty"`
	// IntervalSeconds is how often the broadcaster fans out share_hashes.
	IntervalSeconds int `yaml:"interval_seconds" mapstructure:"interval_seconds" json:"interval_seconds"`
}

// RateLimitConfig controls optional admission-control rate limiting (C12).
// All limits are disabled (rate/burst <= 0) by default.
type RateLimitConfig struct {
	CleanupSeconds   float64 `yaml:"cleanup_seconds"    mapstructure:"cleanup_seconds"    json:"cleanup_seconds"`
	MaxIPEntries     int     `yaml:"max_ip_entries"     mapstructure:"max_ip_entries"     json:"max_ip_entries"`
	MaxPrefixEntries int     `yaml:"max_prefix_entries" mapstructure:"max_prefix_entries" json:"max_prefix_entries"`
	GlobalQPS        float64 `yaml:"global_qps"         mapstructure:"global_qps"         json:"global_qps"`
	GlobalBurst      int     `yaml:"global_burst"       mapstructure:"global_burst"       json:"global_burst"`
	PrefixQPS        float64 `yaml:"prefix_qps"         mapstructure:"prefix_qps"         json:"prefix_qps"`
	PrefixBurst      int     `yaml:"prefix_burst"       mapstructure:"prefix_burst"       json:"prefix_burst"`
	IPQPS            float64 `yaml:"ip_qps"             mapstructure:"ip_qps"             json:"ip_qps"`
	IPBurst          int     `yaml:"ip_burst"           mapstructure:"ip_burst"           json:"ip_burst"`
}

// APIConfig contains management API settings (C10).
//
// Note: APIKey is intentionally treated as a secret and should not be
// returned by API endpoints.
type APIConfig struct {
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
	Host    string `yaml:"host"    mapstructure:"host"`
	Port    int    `yaml:"port"    mapstructure:"port"`
	APIKey  string `yaml:"api_key" mapstructure:"api_key"`
}

// Config is the root configuration structure for a DHT node.
type Config struct {
	Server    ServerConfig    `yaml:"server"     mapstructure:"server"`
	Table     TableConfig     `yaml:"table"      mapstructure:"table"`
	Logging   LoggingConfig   `yaml:"logging"    mapstructure:"logging"`
	Gossip    GossipConfig    `yaml:"gossip"     mapstructure:"gossip"`
	RateLimit RateLimitConfig `yaml:"rate_limit" mapstructure:"rate_limit"`
	API       APIConfig       `yaml:"api"        mapstructure:"api"`
}

// ResolveConfigPath determines the config file path from flag or environment.
func ResolveConfigPath(flagValue string) string {
	if strings.TrimSpace(flagValue) != "" {
		return flagValue
	}
	if v := strings.TrimSpace(os.Getenv("DHTNODE_CONFIG")); v != "" {
		return v
	}
	return ""
}

// Load loads configuration from an optional YAML file with environment
// variable overrides. This is the main entry point for loading configuration.
//
// Configuration priority (highest to lowest):
//  1. Environment variables (DHTNODE_*)
//  2. Config file values
//  3. Default values
func Load(path string) (*Config, error) {
	return loadFromSource(path)
}
