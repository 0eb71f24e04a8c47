package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"reflect"
	"strings"

	"profile-directory/core/backend/appwrite"
	"profile-directory/core/database"
	"profile-directory/core/logger"
	"profile-directory/core/reconcile"
	"profile-directory/core/server"
	"profile-directory/core/storage"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// FileName is the optional config file (without extension) read from the config path.
const FileName = "profile-directory"

// Config holds all configuration for the application.
type Config struct {
	// Server holds configuration for the HTTP server.
	Server server.Config `mapstructure:"server"`
	// Backend selects the Appwrite project and the profiles collection.
	Backend appwrite.Config `mapstructure:"backend"`
	// Storage holds configuration for the snapshot object storage (e.g., S3, Minio).
	Storage storage.Config `mapstructure:"storage"`
	Log     logger.Config  `mapstructure:"log"`
	// Database holds configuration for the self-hosted document store.
	Database  database.Config  `mapstructure:"database"`
	Reconcile reconcile.Config `mapstructure:"reconcile"`
}

// LoadConfig reads <path>/.env, an optional <path>/profile-directory.{yaml,json,toml}
// and the environment, in increasing order of precedence over the tag defaults.
func LoadConfig(path string) (*Config, error) {
	// Ignore error if file doesn't exist (e.g. production)
	_ = godotenv.Overload(filepath.Join(path, ".env"))

	v := viper.New()
	setDefaults(v, reflect.TypeOf(Config{}), "")

	v.SetConfigName(FileName)
	v.AddConfigPath(path)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Map environment variables to nested keys (e.g. RECONCILE_EARLY_EVENTS -> reconcile.early_events)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the settings the selected backend depends on.
func (c *Config) Validate() error {
	if !c.Server.IsValidBackend() {
		return fmt.Errorf("unsupported backend %q (expected %s or %s)", c.Server.Backend, server.BackendAppwrite, server.BackendSQL)
	}
	if _, err := c.Reconcile.Policy(); err != nil {
		return err
	}
	if c.Backend.DatabaseID == "" || c.Backend.CollectionID == "" {
		return errors.New("backend database_id and collection_id are required")
	}

	switch c.Server.Backend {
	case server.BackendAppwrite:
		if c.Backend.Project == "" {
			return errors.New("backend project is required for the appwrite backend")
		}
	case server.BackendSQL:
		if c.Database.Driver != "mysql" && c.Database.Driver != "sqlite" {
			return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
		}
	}
	return nil
}

// setDefaults registers every mapstructure key of t with its `default` tag.
// Registering empty defaults too is what lets AutomaticEnv see the key.
func setDefaults(v *viper.Viper, t reflect.Type, prefix string) {
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")
		if tag == "" {
			continue
		}
		if prefix != "" {
			tag = prefix + "." + tag
		}

		if field.Type.Kind() == reflect.Struct {
			setDefaults(v, field.Type, tag)
			continue
		}
		v.SetDefault(tag, field.Tag.Get("default"))
	}
}
