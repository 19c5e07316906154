package config

import "log/slog"

// Engine defaults.
const (
	DefaultMaxIterations = 100
	DefaultLogLevel      = slog.LevelInfo
)

// Settings holds engine tunables read from a config file.
//
//	log_level: debug
//	workflow:
//	  max_iterations: 250
//	concurrency:
//	  fail_fast: false
//	  max_concurrency: 4
//	tracing:
//	  record_states: false
type Settings struct {
	// MaxIterations is the per-unit cycle guard budget.
	MaxIterations int
	// LogLevel is the minimum level for the engine logger.
	LogLevel slog.Level
	// FailFast selects the concurrent group failure policy.
	FailFast bool
	// MaxConcurrency limits running members per group. Zero means unlimited.
	MaxConcurrency int
	// RecordStates controls whether tracing hooks attach state JSON to spans.
	RecordStates bool
}

// DefaultSettings returns the settings used when nothing is configured.
func DefaultSettings() Settings {
	return Settings{
		MaxIterations:  DefaultMaxIterations,
		LogLevel:       DefaultLogLevel,
		FailFast:       true,
		MaxConcurrency: 0,
		RecordStates:   true,
	}
}

// Settings extracts engine settings, falling back to DefaultSettings for
// anything missing or invalid.
func (c Config) Settings() Settings {
	def := DefaultSettings()
	s := Settings{
		MaxIterations:  c.Int("workflow.max_iterations", def.MaxIterations),
		LogLevel:       c.Level("log_level", def.LogLevel),
		FailFast:       c.Bool("concurrency.fail_fast", def.FailFast),
		MaxConcurrency: c.Int("concurrency.max_concurrency", def.MaxConcurrency),
		RecordStates:   c.Bool("tracing.record_states", def.RecordStates),
	}
	if s.MaxIterations <= 0 {
		s.MaxIterations = def.MaxIterations
	}
	if s.MaxConcurrency < 0 {
		s.MaxConcurrency = def.MaxConcurrency
	}
	return s
}

// LoadSettings reads a YAML or JSON file and extracts engine settings.
func LoadSettings(path string) (Settings, error) {
	cfg, err := FromFile(path)
	if err != nil {
		return Settings{}, err
	}
	return cfg.Settings(), nil
}
