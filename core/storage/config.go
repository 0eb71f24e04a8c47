package storage

// Config points at the S3 compatible bucket holding directory snapshots.
type Config struct {
	// Endpoint is host:port of the S3 or MinIO service; a scheme is stripped.
	Endpoint string `mapstructure:"endpoint" default:"localhost:9000"`
	AccessKey string `mapstructure:"access_key" default:"minioadmin"`
	SecretKey string `mapstructure:"secret_key" default:"minioadmin"`
	UseSSL    bool   `mapstructure:"use_ssl" default:"false"`
	// Bucket receives the snapshots and is created on first export.
	Bucket string `mapstructure:"bucket" default:"profile-snapshots"`
	// Region is used when creating the bucket.
	Region string `mapstructure:"region" default:""`
	// TimeoutSeconds bounds dialing, the TLS handshake and response headers.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
}
