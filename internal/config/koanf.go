package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// ConfigPathEnvVar names the variable that points at a YAML config file.
const ConfigPathEnvVar = "CONFIG_PATH"

// DefaultConfigPaths are tried, in order, when CONFIG_PATH is unset.
var DefaultConfigPaths = []string{
	"config.yaml",
	"/etc/starwars-api/config.yaml",
}

// legacySecretKey holds JWT_SECRET until it is folded into auth.jwt_secret.
// It is not a Config field, so Unmarshal ignores it.
const legacySecretKey = "auth.jwt_secret_legacy"

// Load reads defaults, the optional config file and the environment, and
// returns the validated result.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("config: loading defaults: %w", err)
	}

	if path, err := findConfigFile(); err != nil {
		return nil, err
	} else if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("config: loading %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("config: loading environment: %w", err)
	}

	// JWT_SECRET_KEY wins over JWT_SECRET when both are set.
	if k.String("auth.jwt_secret") == "" && k.String(legacySecretKey) != "" {
		if err := k.Set("auth.jwt_secret", k.String(legacySecretKey)); err != nil {
			return nil, fmt.Errorf("config: setting auth.jwt_secret: %w", err)
		}
	}

	if err := processSliceFields(k); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshaling: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// findConfigFile returns the file to load, or "" if there is none. An explicit
// CONFIG_PATH that does not exist is an error rather than silently ignored.
func findConfigFile() (string, error) {
	if path := os.Getenv(ConfigPathEnvVar); path != "" {
		if _, err := os.Stat(path); err != nil {
			return "", fmt.Errorf("config: %s=%q: %w", ConfigPathEnvVar, path, err)
		}
		return path, nil
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", nil
}

// sliceConfigPaths are parsed as comma-separated lists when they arrive as a
// single string from the environment.
var sliceConfigPaths = []string{
	"cors.allowed_origins",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		s, ok := k.Get(path).(string)
		if !ok {
			continue
		}
		parts := strings.Split(s, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		if err := k.Set(path, out); err != nil {
			return fmt.Errorf("config: setting %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps environment variable names (lower-cased) to config paths.
// Variables not listed are ignored, so the process environment cannot
// accidentally inject unrelated keys.
var envMappings = map[string]string{
	"port":                    "server.port",
	"server_read_timeout":     "server.read_timeout",
	"server_write_timeout":    "server.write_timeout",
	"server_idle_timeout":     "server.idle_timeout",
	"server_shutdown_timeout": "server.shutdown_timeout",

	"database_url": "database.url",

	"jwt_secret_key":    "auth.jwt_secret",
	"jwt_secret":        legacySecretKey,
	"jwt_issuer":        "auth.issuer",
	"access_token_ttl":  "auth.access_ttl",
	"refresh_token_ttl": "auth.refresh_ttl",
	"bcrypt_cost":       "auth.bcrypt_cost",

	"cors_origins": "cors.allowed_origins",

	"rate_limit_requests": "rate_limit.requests",
	"rate_limit_window":   "rate_limit.window",

	"log_level":  "logging.level",
	"log_format": "logging.format",
}

// envTransformFunc turns an environment variable name into a config path, or
// "" to skip it.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
