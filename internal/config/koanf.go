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

// DefaultConfigPaths are searched in order when DAILYCARD_CONFIG is unset.
var DefaultConfigPaths = []string{
	"dailycard.yaml",
	"dailycard.yml",
	"/etc/dailycard/config.yaml",
}

// ConfigPathEnvVar names the variable holding an explicit config file path.
const ConfigPathEnvVar = "DAILYCARD_CONFIG"

const envPrefix = "DAILYCARD_"

// Load layers defaults, an optional YAML file and DAILYCARD_* variables, then validates.
// An explicit path overrides the search; a missing explicit file is an error.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path == "" {
		path = findConfigFile()
	} else if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}
	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// sliceConfigPaths are parsed from comma-separated environment values.
var sliceConfigPaths = []string{
	"selection.recency_penalties",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps DAILYCARD_* suffixes (lower-cased) to koanf paths.
var envMappings = map[string]string{
	"db_path":             "database.path",
	"recency_backend":     "database.recency_backend",
	"badger_dir":          "database.badger_dir",
	"catalog_path":        "catalog.path",
	"grpc_addr":           "server.grpc_addr",
	"http_addr":           "server.http_addr",
	"log_level":           "logging.level",
	"log_format":          "logging.format",
	"log_caller":          "logging.caller",
	"min_share":           "axis.min_share",
	"max_share":           "axis.max_share",
	"base_share":          "axis.base_share",
	"amplification":       "axis.amplification",
	"smoothing":           "axis.smoothing",
	"daily_variation":     "axis.daily_variation",
	"variation_amplitude": "axis.variation_amplitude",
	"axis_weight":         "selection.axis_weight",
	"vibe_weight":         "selection.vibe_weight",
	"boost_weight":        "selection.boost_weight",
	"epsilon":             "selection.epsilon",
	"vibe_margin":         "selection.vibe_margin",
	"hard_cooldown":       "selection.hard_cooldown",
	"lookback_days":       "selection.lookback_days",
	"cooldown_days":       "selection.cooldown_days",
	"recency_penalties":   "selection.recency_penalties",
	"yesterday_penalty":   "selection.yesterday_penalty",
	"personality":         "energy.personality",
	"outlier_cap":         "energy.outlier_cap",
}

// envTransformFunc maps DAILYCARD_LOG_LEVEL to logging.level. Unmapped keys are skipped.
func envTransformFunc(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, envPrefix))
	return envMappings[key]
}
