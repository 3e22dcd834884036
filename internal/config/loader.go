package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// configName is the config file name without extension.
const configName = ".cognit"

// configType is the config file format.
const configType = "yaml"

// envPrefix is the environment variable prefix for cognit settings.
const envPrefix = "COGNIT"

// envKeySeparator is the nested key separator in environment variable names.
const envKeySeparator = "_"

// LoadConfig loads configuration from file, env vars, and defaults.
// If configPath is non-empty, it is used as the explicit config file path.
// Otherwise, the config file is searched in CWD and $HOME.
// Missing config file is not an error; defaults are used.
func LoadConfig(configPath string) (*Config, error) {
	viperCfg := viper.New()

	applyDefaults(viperCfg)

	viperCfg.SetConfigType(configType)
	viperCfg.SetEnvPrefix(envPrefix)
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", envKeySeparator))
	viperCfg.AutomaticEnv()

	if configPath != "" {
		viperCfg.SetConfigFile(configPath)
	} else {
		viperCfg.SetConfigName(configName)
		viperCfg.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viperCfg.AddConfigPath(home)
		}
	}

	readErr := viperCfg.ReadInConfig()
	if readErr != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(readErr, &notFound) {
			return nil, fmt.Errorf("read config: %w", readErr)
		}
	}

	var cfg Config

	unmarshalErr := viperCfg.Unmarshal(&cfg)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("unmarshal config: %w", unmarshalErr)
	}

	validateErr := cfg.Validate()
	if validateErr != nil {
		return nil, fmt.Errorf("validate config: %w", validateErr)
	}

	return &cfg, nil
}

func applyDefaults(viperCfg *viper.Viper) {
	viperCfg.SetDefault("scan.workers", DefaultScanWorkers)
	viperCfg.SetDefault("scan.max_file_size", DefaultScanMaxFileSize)

	viperCfg.SetDefault("report.format", DefaultReportFormat)
	viperCfg.SetDefault("report.threshold", DefaultReportThreshold)
	viperCfg.SetDefault("report.top", DefaultReportTop)
	viperCfg.SetDefault("report.fail_over", DefaultReportFailOver)

	viperCfg.SetDefault("history.max_commits", DefaultHistoryMaxCommits)
	viperCfg.SetDefault("history.cache_size", DefaultHistoryCacheSize)
	viperCfg.SetDefault("history.since", DefaultHistorySince)

	viperCfg.SetDefault("lsp.threshold", DefaultLSPThreshold)
	viperCfg.SetDefault("lsp.metrics_addr", DefaultLSPMetricsAddr)

	viperCfg.SetDefault("observability.environment", DefaultObservabilityEnvironment)
	viperCfg.SetDefault("observability.otlp_endpoint", DefaultObservabilityOTLPEndpoint)
	viperCfg.SetDefault("observability.otlp_insecure", DefaultObservabilityOTLPInsecure)
	viperCfg.SetDefault("observability.sample_ratio", DefaultObservabilitySampleRatio)
	viperCfg.SetDefault("observability.log_json", DefaultObservabilityLogJSON)
	viperCfg.SetDefault("observability.trace_verbose", DefaultObservabilityTraceVerbose)
}
