// Package cfg loads service settings from a YAML file (when CONFIG_FILE
// is set) or from environment variables, and validates them.
package cfg

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"cardiorisk/internal/common"
)

type Settings struct {
	ModelsDir       string
	ModelBaseURL    string
	DataPath        string
	SpecialistSeed  string
	APIPort         int
	MetricsPort     int
	ImportanceLimit int
	FetchTimeout    time.Duration
}

type ConfigFile struct {
	ML struct {
		ModelsDir       string `yaml:"modelsDir"`
		ModelBaseURL    string `yaml:"modelBaseURL"`
		ImportanceLimit int    `yaml:"importanceLimit"`
		FetchTimeout    string `yaml:"fetchTimeout"`
	} `yaml:"ml"`

	System struct {
		DataPath       string `yaml:"dataPath"`
		SpecialistSeed string `yaml:"specialistSeed"`
		APIPort        int    `yaml:"apiPort"`
		MetricsPort    int    `yaml:"metricsPort"`
	} `yaml:"system"`
}

func Load() (Settings, error) {
	if configPath := os.Getenv(common.EnvConfigFile); configPath != "" {
		return loadFromYAML(configPath)
	}
	return loadFromEnv()
}

func loadFromYAML(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var config ConfigFile
	if err := yaml.Unmarshal(data, &config); err != nil {
		return Settings{}, fmt.Errorf("failed to parse config file: %w", err)
	}

	fetchTimeout, err := time.ParseDuration(config.ML.FetchTimeout)
	if err != nil {
		fetchTimeout = 30 * time.Second
	}

	settings := Settings{
		ModelsDir:       getEnvOrDefault(common.EnvModelsDir, orDefault(config.ML.ModelsDir, common.DefaultModelsDir)),
		ModelBaseURL:    getEnvOrDefault(common.EnvModelBaseURL, config.ML.ModelBaseURL),
		DataPath:        getEnvOrDefault(common.EnvDataPath, config.System.DataPath),
		SpecialistSeed:  getEnvOrDefault(common.EnvSpecialistSeed, config.System.SpecialistSeed),
		APIPort:         getIntFromEnvOrConfig(common.EnvAPIPort, config.System.APIPort, common.DefaultAPIPort),
		MetricsPort:     getIntFromEnvOrConfig(common.EnvMetricsPort, config.System.MetricsPort, common.DefaultMetricsPort),
		ImportanceLimit: getIntFromEnvOrConfig(common.EnvImportanceLimit, config.ML.ImportanceLimit, common.DefaultImportanceLimit),
		FetchTimeout:    fetchTimeout,
	}

	if err := validateSettings(&settings); err != nil {
		return Settings{}, fmt.Errorf("configuration validation failed: %w", err)
	}
	return settings, nil
}

func loadFromEnv() (Settings, error) {
	settings := Settings{
		ModelsDir:       getEnvOrDefault(common.EnvModelsDir, common.DefaultModelsDir),
		ModelBaseURL:    os.Getenv(common.EnvModelBaseURL),
		DataPath:        os.Getenv(common.EnvDataPath), // optional
		SpecialistSeed:  os.Getenv(common.EnvSpecialistSeed),
		APIPort:         getIntOrDefault(common.EnvAPIPort, common.DefaultAPIPort),
		MetricsPort:     getIntOrDefault(common.EnvMetricsPort, common.DefaultMetricsPort),
		ImportanceLimit: getIntOrDefault(common.EnvImportanceLimit, common.DefaultImportanceLimit),
		FetchTimeout:    getDurationOrDefault(common.EnvFetchTimeout, 30*time.Second),
	}

	if err := validateSettings(&settings); err != nil {
		return Settings{}, fmt.Errorf("configuration validation failed: %w", err)
	}
	return settings, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func getIntOrDefault(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultValue
}

func getIntFromEnvOrConfig(key string, configValue, defaultValue int) int {
	if env := os.Getenv(key); env != "" {
		if val, err := strconv.Atoi(env); err == nil {
			return val
		}
	}
	if configValue != 0 {
		return configValue
	}
	return defaultValue
}

// validateSettings performs validation of configuration values.
func validateSettings(settings *Settings) error {
	if settings.ModelsDir == "" {
		return fmt.Errorf("%s", common.ErrMsgModelsDirRequired)
	}
	if settings.APIPort < common.MinPort || settings.APIPort > common.MaxPort {
		return fmt.Errorf("api port must be between %d and %d, got %d", common.MinPort, common.MaxPort, settings.APIPort)
	}
	if settings.MetricsPort < common.MinPort || settings.MetricsPort > common.MaxPort {
		return fmt.Errorf("metrics port must be between %d and %d, got %d", common.MinPort, common.MaxPort, settings.MetricsPort)
	}
	if settings.APIPort == settings.MetricsPort {
		return fmt.Errorf("api port and metrics port must differ, both are %d", settings.APIPort)
	}
	if settings.ImportanceLimit < 0 || settings.ImportanceLimit > common.MaxImportanceLimit {
		return fmt.Errorf("importance limit must be between 0 and %d, got %d", common.MaxImportanceLimit, settings.ImportanceLimit)
	}
	if settings.FetchTimeout < time.Second || settings.FetchTimeout > 5*time.Minute {
		return fmt.Errorf("fetch timeout must be between 1s and 5m, got %v", settings.FetchTimeout)
	}
	return nil
}
