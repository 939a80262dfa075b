package config

import (
	"fmt"
)

// Store drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// PlacementServer holds all configuration for the content server.
type PlacementServer struct {
	ListenAddr string `yaml:"listen_addr"`

	// Store
	Driver     string         `yaml:"driver"` // postgres | sqlite
	Database   DatabaseConfig `yaml:"database"`
	SQLitePath string         `yaml:"sqlite_path"`

	// StaticDir is served under /data/ and /config/.
	StaticDir string `yaml:"static_dir"`
	Gzip      bool   `yaml:"gzip"`

	LogLevel string `yaml:"log_level"`
}

// DefaultPlacementServer returns PlacementServer config with sensible defaults.
func DefaultPlacementServer() PlacementServer {
	return PlacementServer{
		ListenAddr: "0.0.0.0:8080",
		Driver:     DriverSQLite,
		Database: DatabaseConfig{
			Host:     "127.0.0.1",
			Port:     5432,
			User:     "toycar",
			Password: "toycar",
			DBName:   "toycar",
			SSLMode:  "disable",
		},
		SQLitePath: "toycar.db",
		StaticDir:  "public",
		Gzip:       true,
		LogLevel:   "info",
	}
}

// StoreDSN returns the connection string for the configured driver.
func (s PlacementServer) StoreDSN() (string, error) {
	switch s.Driver {
	case DriverPostgres:
		return s.Database.DSN(), nil
	case DriverSQLite:
		return s.SQLitePath, nil
	default:
		return "", fmt.Errorf("driver: unknown store driver %q", s.Driver)
	}
}

// LoadPlacementServer loads content server config from a YAML file.
// If the file doesn't exist, returns defaults.
func LoadPlacementServer(path string) (PlacementServer, error) {
	cfg := DefaultPlacementServer()
	if err := load(path, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
