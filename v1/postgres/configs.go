package postgres

import "time"

// Config holds the connection settings for PostgreSQL.
type Config struct {
	Connection        Connection        `yaml:"connection" koanf:"connection"`
	ConnectionDetails ConnectionDetails `yaml:"connection_details" koanf:"connection_details"`

	// AutoMigrate runs gorm AutoMigrate for the registered models at startup.
	AutoMigrate bool `yaml:"auto_migrate" koanf:"auto_migrate" env:"POSTGRES_AUTO_MIGRATE"`
}

// Connection is the DSN part of the configuration.
type Connection struct {
	Host     string `yaml:"host" koanf:"host" env:"POSTGRES_HOST"`
	Port     string `yaml:"port" koanf:"port" env:"POSTGRES_PORT"`
	User     string `yaml:"user" koanf:"user" env:"POSTGRES_USER"`
	Password string `yaml:"password" koanf:"password" env:"POSTGRES_PASSWORD"`
	DbName   string `yaml:"db_name" koanf:"db_name" env:"POSTGRES_DB"`
	SSLMode  string `yaml:"ssl_mode" koanf:"ssl_mode" env:"POSTGRES_SSL_MODE"`
}

// ConnectionDetails tunes the connection pool. Zero values fall back to package defaults.
type ConnectionDetails struct {
	MaxOpenConns    int           `yaml:"max_open_conns" koanf:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns" koanf:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" koanf:"conn_max_lifetime"`
}

// DefaultConfig points at a local development database.
func DefaultConfig() Config {
	return Config{
		Connection: Connection{
			Host:    "localhost",
			Port:    "5432",
			User:    "postgres",
			DbName:  "ragcore",
			SSLMode: "disable",
		},
		AutoMigrate: true,
	}
}

// DSN renders the connection as a libpq keyword/value string.
func (c Connection) DSN() string {
	return "host=" + c.Host +
		" port=" + c.Port +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.DbName +
		" sslmode=" + c.SSLMode
}
