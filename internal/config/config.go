package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

func loadFromSource(configPath string) (*Config, error) {
	v := viper.New()
	initConfig(v, configPath)

	if configPath != "" {
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %q: %w", configPath, err)
		}
	}

	cfg := &Config{
		Server:    loadServerConfig(v),
		Table:     loadTableConfig(v),
		Logging:   loadLoggingConfig(v),
		Gossip:    loadGossipConfig(v),
		RateLimit: loadRateLimitConfig(v),
		API:       loadAPIConfig(v),
	}

	if err := normalizeConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func initConfig(v *viper.Viper, configPath string) {
	v.SetEnvPrefix("DHTNODE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	}

	setDefaults(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "::")
	v.SetDefault("server.port", 9999)

	v.SetDefault("table.hash_deprecation_time", 60)
	v.SetDefault("table.garbage_col_time", 120)
	v.SetDefault("table.max_hash_length", 128)

	v.SetDefault("logging.level", "INFO")
	v.SetDefault("logging.structured", false)
	v.SetDefault("logging.structured_format", "text")
	v.SetDefault("logging.include_pid", false)

	v.SetDefault("gossip.peers", []string{})
	v.SetDefault("gossip.interval_seconds", 30)

	v.SetDefault("rate_limit.cleanup_seconds", 60.0)
	v.SetDefault("rate_limit.max_ip_entries", 4096)
	v.SetDefault("rate_limit.max_prefix_entries", 1024)
	v.SetDefault("rate_limit.global_qps", 0.0)
	v.SetDefault("rate_limit.global_burst", 0)
	v.SetDefault("rate_limit.prefix_qps", 0.0)
	v.SetDefault("rate_limit.prefix_burst", 0)
	v.SetDefault("rate_limit.ip_qps", 0.0)
	v.SetDefault("rate_limit.ip_burst", 0)

	v.SetDefault("api.enabled", false)
	v.SetDefault("api.host", "127.0.0.1")
	v.SetDefault("api.port", 8080)
	v.SetDefault("api.api_key", "")
}

func loadServerConfig(v *viper.Viper) ServerConfig {
	return ServerConfig{
		Host: v.GetString("server.host"),
		Port: v.GetInt("server.port"),
	}
}

func loadTableConfig(v *viper.Viper) TableConfig {
	return TableConfig{
		HashDeprecationTimeSeconds: v.GetInt("table.hash_deprecation_time"),
		GarbageColTimeSeconds:      v.GetInt("table.garbage_col_time"),
		MaxHashLength:              v.GetInt("table.max_hash_length"),
	}
}

func loadLoggingConfig(v *viper.Viper) LoggingConfig {
	extra := map[string]string{}
	for k, val := range v.GetStringMapString("logging.extra_fields") {
		extra[k] = val
	}
	return LoggingConfig{
		Level:            v.GetString("logging.level"),
		Structured:       v.GetBool("logging.structured"),
		StructuredFormat: v.GetString("logging.structured_format"),
		IncludePID:       v.GetBool("logging.include_pid"),
		ExtraFields:      extra,
	}
}

func loadGossipConfig(v *viper.Viper) GossipConfig {
	return GossipConfig{
		Peers:           getStringSliceOrSplit(v, "gossip.peers"),
		IntervalSeconds: v.GetInt("gossip.interval_seconds"),
	}
}

func loadRateLimitConfig(v *viper.Viper) RateLimitConfig {
	return RateLimitConfig{
		CleanupSeconds:   v.GetFloat64("rate_limit.cleanup_seconds"),
		MaxIPEntries:     v.GetInt("rate_limit.max_ip_entries"),
		MaxPrefixEntries: v.GetInt("rate_limit.max_prefix_entries"),
		GlobalQPS:        v.GetFloat64("rate_limit.global_qps"),
		GlobalBurst:      v.GetInt("rate_limit.global_burst"),
		PrefixQPS:        v.GetFloat64("rate_limit.prefix_qps"),
		PrefixBurst:      v.GetInt("rate_limit.prefix_burst"),
		IPQPS:            v.GetFloat64("rate_limit.ip_qps"),
		IPBurst:          v.GetInt("rate_limit.ip_burst"),
	}
}

func loadAPIConfig(v *viper.Viper) APIConfig {
	return APIConfig{
		Enabled: v.GetBool("api.enabled"),
		Host:    v.GetString("api.host"),
		Port:    v.GetInt("api.port"),
		APIKey:  v.GetString("api.api_key"),
	}
}

// getStringSliceOrSplit handles the case where an env var override arrives
// as a single comma-separated string rather than a YAML list.
func getStringSliceOrSplit(v *viper.Viper, key string) []string {
	raw := v.Get(key)
	switch val := raw.(type) {
	case []string:
		return val
	case []interface{}:
		out := make([]string, 0, len(val))
		for _, item := range val {
			if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
				out = append(out, strings.TrimSpace(s))
			}
		}
		return out
	case string:
		if strings.TrimSpace(val) == "" {
			return nil
		}
		parts := strings.Split(val, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out
	default:
		return nil
	}
}

func normalizeConfig(cfg *Config) error {
	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range [1,65535]", cfg.Server.Port)
	}
	if strings.TrimSpace(cfg.Server.Host) == "" {
		cfg.Server.Host = "::"
	}

	if cfg.Table.HashDeprecationTimeSeconds <= 0 {
		return fmt.Errorf("table.hash_deprecation_time must be positive, got %d", cfg.Table.HashDeprecationTimeSeconds)
	}
	if cfg.Table.GarbageColTimeSeconds <= 0 {
		return fmt.Errorf("table.garbage_col_time must be positive, got %d", cfg.Table.GarbageColTimeSeconds)
	}
	if cfg.Table.MaxHashLength <= 0 {
		cfg.Table.MaxHashLength = 128
	}

	switch strings.ToLower(cfg.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
		cfg.Logging.Level = strings.ToUpper(cfg.Logging.Level)
	default:
		cfg.Logging.Level = "INFO"
	}

	if cfg.Gossip.IntervalSeconds <= 0 {
		cfg.Gossip.IntervalSeconds = 30
	}

	if cfg.API.Enabled {
		if cfg.API.Port < 1 || cfg.API.Port > 65535 {
			return fmt.Errorf("api.port %d out of range [1,65535]", cfg.API.Port)
		}
		if strings.TrimSpace(cfg.API.Host) == "" {
			cfg.API.Host = "127.0.0.1"
		}
	}

	return nil
}

// ParsePort parses a CLI positional port argument, used by cmd/dhtserver and
// cmd/dhtclient when validating argv (spec §6 usage strings).
func ParsePort(s string) (int, error) {
	port, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid port %q: %w", s, err)
	}
	if port < 1 || port > 65535 {
		return 0, fmt.Errorf("port %d out of range [1,65535]", port)
	}
	return port, nil
}
