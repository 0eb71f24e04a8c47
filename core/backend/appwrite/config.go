package appwrite

// Config holds configuration for the Appwrite backend.
// The database and collection identifiers are shared with the SQL store.
type Config struct {
	// Endpoint is the API endpoint including the version path.
	Endpoint string `mapstructure:"endpoint" default:"https://cloud.appwrite.io/v1"`
	// Project is the Appwrite project ID.
	Project string `mapstructure:"project" default:""`
	// ApiKey is an optional server key used for document access.
	ApiKey string `mapstructure:"api_key" default:""`
	// DatabaseID is the database holding the profile collection.
	DatabaseID string `mapstructure:"database_id" default:"main"`
	// CollectionID is the profile collection.
	CollectionID string `mapstructure:"collection_id" default:"profiles"`
	// Session is a session secret restored on start.
	Session string `mapstructure:"session" default:""`
	// RecoveryURL is the link target of password recovery emails.
	RecoveryURL string `mapstructure:"recovery_url" default:""`
	// TimeoutSeconds bounds connection setup and response headers.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
}
