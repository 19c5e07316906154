// Package config reads nodeflow engine settings from YAML or JSON.
//
// Config is a thin typed view over the decoded document. Keys are dotted
// paths into nested sections, and every accessor takes a default:
//
//	cfg, err := config.FromFile("nodeflow.yaml")
//	limit := cfg.Int("workflow.max_iterations", 100)
//	level := cfg.Level("log_level", slog.LevelInfo)
//
// Settings collects the engine tunables in one struct, and LoadSettings
// does both steps:
//
//	settings, err := config.LoadSettings("nodeflow.yaml")
//	wf := nodeflow.NewWorkflow("orders", graph, store, nodeflow.WithSettings(settings))
package config
