package database

import (
	"fmt"
	"net/url"
)

// Config holds configuration for the self-hosted document store database.
type Config struct {
	// Driver is mysql in production or sqlite for single-node and test setups.
	Driver   string `mapstructure:"driver" default:"mysql"`
	Host     string `mapstructure:"host" default:"localhost"`
	Port     int    `mapstructure:"port" default:"3306"`
	User     string `mapstructure:"user" default:"root"`
	Password string `mapstructure:"password" default:""`
	// Name is the schema name, or the file path (":memory:" allowed) for sqlite.
	Name string `mapstructure:"name" default:"profiles"`
	// TimeoutSeconds bounds connection setup and I/O.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
	// MaxOpenConns caps the mysql pool.
	MaxOpenConns int `mapstructure:"max_open_conns" default:"20"`
}

func (c Config) timeout() int {
	if c.TimeoutSeconds <= 0 {
		return 30
	}
	return c.TimeoutSeconds
}

// DSN returns the go-sql-driver/mysql data source name. Credentials are URL
// escaped so passwords may hold any character.
func (c Config) DSN() string {
	t := c.timeout()
	return fmt.Sprintf("%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC&timeout=%ds&readTimeout=%ds&writeTimeout=%ds",
		url.UserPassword(c.User, c.Password).String(), c.Host, c.Port, c.Name, t, t, t)
}
