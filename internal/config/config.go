package config

import (
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Session   SessionConfig   `koanf:"session"`
	Resolver  ResolverConfig  `koanf:"resolver"`
	Allowlist AllowlistConfig `koanf:"allowlist"`
	Logging   LoggingConfig   `koanf:"logging"`
}

type ServerConfig struct {
	Host        string   `koanf:"host"`
	Port        int      `koanf:"port"`
	CORSOrigins []string `koanf:"cors_origins"`
}

type SessionConfig struct {
	MaxSessions   int    `koanf:"max_sessions"`
	TTL           string `koanf:"ttl"`
	SweepInterval string `koanf:"sweep_interval"`
}

type ResolverConfig struct {
	Binary        string   `koanf:"binary"`
	MaxConcurrent int      `koanf:"max_concurrent"`
	CookiesFile   string   `koanf:"cookies_file"`
	UserAgent     string   `koanf:"user_agent"`
	ExtraArgs     []string `koanf:"extra_args"`
}

type AllowlistConfig struct {
	Domains []string `koanf:"domains"`
}

type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// Load reads config from TOML file (if provided) then overlays env vars.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	// 1. Load defaults
	if err := loadDefaults(k); err != nil {
		return nil, err
	}

	// 2. Load TOML config file if provided
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), toml.Parser()); err != nil {
			return nil, err
		}
	}

	// 3. Load env vars: VDL_SERVER_PORT -> server.port
	// Only set env vars that have non-empty values to avoid overriding TOML config.
	if err := k.Load(env.ProviderWithValue("VDL_", ".", func(key, value string) (string, interface{}) {
		if value == "" {
			return "", nil
		}
		mapped := strings.Replace(
			strings.ToLower(strings.TrimPrefix(key, "VDL_")),
			"_", ".", -1,
		)
		return mapped, value
	}), nil); err != nil {
		return nil, err
	}

	// 4. Keys whose names contain underscores don't survive the mapping
	// above, so handle those env vars explicitly.
	for envKey, confKey := range map[string]string{
		"VDL_SESSION_MAX_SESSIONS":    "session.max_sessions",
		"VDL_SESSION_SWEEP_INTERVAL":  "session.sweep_interval",
		"VDL_RESOLVER_MAX_CONCURRENT": "resolver.max_concurrent",
		"VDL_RESOLVER_COOKIES_FILE":   "resolver.cookies_file",
		"VDL_RESOLVER_USER_AGENT":     "resolver.user_agent",
	} {
		if v := os.Getenv(envKey); v != "" {
			k.Set(confKey, v)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
