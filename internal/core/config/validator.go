package config

import (
	"regexp"
	"strings"

	"grammarcheck/internal/core/errors"

	"github.com/gobwas/glob"
)

var (
	languageName = regexp.MustCompile(`^[a-z0-9][a-z0-9_.+-]*$`)
	symbolSuffix = regexp.MustCompile(`^[A-Za-z0-9_]+$`)
)

// Validate checks a decoded config. Defaults must already be applied.
func Validate(cfg *Config) error {
	if err := validateVersion(cfg); err != nil {
		return err
	}
	if err := validateLogLevel(cfg); err != nil {
		return err
	}
	if err := validateSubset(cfg); err != nil {
		return err
	}
	if err := validateSymbols(cfg); err != nil {
		return err
	}
	if cfg.Watch.Debounce < 0 {
		return errors.Newf(errors.CodeInvalidConfig, "watch.debounce must not be negative, got %s", cfg.Watch.Debounce)
	}
	if strings.ContainsAny(cfg.Target, " \t\n") {
		return errors.Newf(errors.CodeInvalidConfig, "target %q must not contain whitespace", cfg.Target)
	}
	return nil
}

func validateVersion(cfg *Config) error {
	if cfg.Version != 1 {
		return errors.Newf(errors.CodeInvalidConfig, "unsupported config version %d; supported version is 1", cfg.Version)
	}
	return nil
}

func validateLogLevel(cfg *Config) error {
	switch strings.ToLower(strings.TrimSpace(cfg.LogLevel)) {
	case "debug", "info", "warn", "warning", "error":
		return nil
	}
	return errors.Newf(errors.CodeInvalidConfig, "log_level must be one of: debug, info, warn, error; got %q", cfg.LogLevel)
}

func validateSubset(cfg *Config) error {
	seen := make(map[string]bool, len(cfg.Subset.Languages))
	for i, name := range cfg.Subset.Languages {
		if !languageName.MatchString(name) {
			e := errors.Newf(errors.CodeInvalidConfig, "subset.languages[%d] must be a lowercase grammar name, got %q", i, name)
			return errors.AddContext(e, errors.CtxLanguage, name)
		}
		if seen[name] {
			return errors.Newf(errors.CodeInvalidConfig, "duplicate subset language %q", name)
		}
		seen[name] = true
	}
	for i, pattern := range cfg.Subset.Patterns {
		if strings.TrimSpace(pattern) == "" {
			return errors.Newf(errors.CodeInvalidConfig, "subset.patterns[%d] must not be empty", i)
		}
		if _, err := glob.Compile(pattern); err != nil {
			return errors.Wrap(err, errors.CodeInvalidConfig, "invalid subset pattern "+pattern)
		}
	}
	return nil
}

func validateSymbols(cfg *Config) error {
	for name, suffix := range cfg.Symbols {
		if !languageName.MatchString(strings.ToLower(name)) {
			return errors.Newf(errors.CodeInvalidConfig, "symbols key %q is not a grammar name", name)
		}
		if !symbolSuffix.MatchString(suffix) {
			e := errors.Newf(errors.CodeInvalidConfig, "symbols.%s must be a C identifier suffix, got %q", name, suffix)
			return errors.AddContext(e, errors.CtxSymbol, suffix)
		}
	}
	return nil
}
