package config

import (
	"log/slog"
	"os"
	"strings"
	"time"
)

// ApplyEnvOverrides applies environment variable overrides to the configuration.
// Pattern: GRAMMARCHECK_[SECTION]_[KEY] (e.g., GRAMMARCHECK_PATHS_DIST_DIR).
func ApplyEnvOverrides(cfg *Config) {
	setEnvString(&cfg.Target, "GRAMMARCHECK_TARGET")
	setEnvString(&cfg.LogLevel, "GRAMMARCHECK_LOG_LEVEL")

	// Paths
	setEnvString(&cfg.Paths.DistDir, "GRAMMARCHECK_PATHS_DIST_DIR")
	setEnvString(&cfg.Paths.Output, "GRAMMARCHECK_PATHS_OUTPUT")

	// Subset
	setEnvList(&cfg.Subset.Languages, "GRAMMARCHECK_SUBSET_LANGUAGES")
	setEnvList(&cfg.Subset.Patterns, "GRAMMARCHECK_SUBSET_PATTERNS")

	// Watch
	setEnvDuration(&cfg.Watch.Debounce, "GRAMMARCHECK_WATCH_DEBOUNCE")

	// Observability
	setEnvString(&cfg.Observability.MetricsFile, "GRAMMARCHECK_OBSERVABILITY_METRICS_FILE")
	setEnvString(&cfg.Observability.OTLPEndpoint, "GRAMMARCHECK_OBSERVABILITY_OTLP_ENDPOINT")
	setEnvString(&cfg.Observability.ServiceName, "GRAMMARCHECK_OBSERVABILITY_SERVICE_NAME")
}

func setEnvString(target *string, key string) {
	if val, ok := os.LookupEnv(key); ok {
		slog.Debug("applying env override", "key", key, "value", val)
		*target = val
	}
}

// setEnvList reads a comma separated list; blank items are dropped.
func setEnvList(target *[]string, key string) {
	val, ok := os.LookupEnv(key)
	if !ok {
		return
	}
	var items []string
	for _, item := range strings.Split(val, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	slog.Debug("applying env override", "key", key, "value", val)
	*target = items
}

func setEnvDuration(target *time.Duration, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(val); err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = d
		}
	}
}
