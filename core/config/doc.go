// Package config loads the agent settings.
//
// Defaults live next to each field in `default` struct tags. They are
// overridden by an optional profile-directory.yaml (or .json/.toml) in the
// config path, then by the environment, where a .env file in the same path is
// loaded first. Keys map to variables by section: backend.project is
// BACKEND_PROJECT and reconcile.early_events is RECONCILE_EARLY_EVENTS.
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    return err
//	}
//	if err := cfg.Validate(); err != nil {
//	    return err
//	}
package config
