package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	RefData  RefDataConfig  `mapstructure:"refdata"`
	Database DatabaseConfig `mapstructure:"database"`
	CRS      CRSConfig      `mapstructure:"crs"`
	Valkey   ValkeyConfig   `mapstructure:"valkey"`
	NATS     NATSConfig     `mapstructure:"nats"`
}

type ServerConfig struct {
	Port         int `mapstructure:"port"`
	ReadTimeout  int `mapstructure:"read_timeout"`
	WriteTimeout int `mapstructure:"write_timeout"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// RefDataConfig selects where the reference monument table comes from:
// a CSV file on disk or a Postgres table kept current by cmd/refload.
type RefDataConfig struct {
	Source  string `mapstructure:"source"` // "csv" or "postgres"
	CSVPath string `mapstructure:"csv_path"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type CRSConfig struct {
	DefaultEPSG int `mapstructure:"default_epsg"`
}

func (c CRSConfig) DefaultEPSGString() string {
	return strconv.Itoa(c.DefaultEPSG)
}

type ValkeyConfig struct {
	Addr    string `mapstructure:"addr"`
	Enabled bool   `mapstructure:"enabled"`
}

type NATSConfig struct {
	URL     string `mapstructure:"url"`
	Enabled bool   `mapstructure:"enabled"`
}

// Load reads configuration from file and environment variables.
func Load(service string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 30)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("refdata.source", "csv")
	v.SetDefault("refdata.csv_path", "reference_points.csv")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "lotlocate")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "lotlocate")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("crs.default_epsg", 25393)
	v.SetDefault("valkey.addr", "localhost:6379")
	v.SetDefault("valkey.enabled", false)
	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("nats.enabled", false)

	// Config file (optional)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	_ = v.ReadInConfig() // OK if missing

	// Environment variables: LOTLOCATE_REFDATA_CSV_PATH -> refdata.csv_path
	v.SetEnvPrefix("LOTLOCATE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks that required configuration fields are present and sane.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", c.Server.Port))
	}
	if c.Server.ReadTimeout <= 0 {
		errs = append(errs, "server.read_timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		errs = append(errs, "server.write_timeout must be positive")
	}

	switch c.RefData.Source {
	case "csv":
		if c.RefData.CSVPath == "" {
			errs = append(errs, "refdata.csv_path is required when refdata.source is csv")
		}
	case "postgres":
		if c.Database.Host == "" {
			errs = append(errs, "database.host is required when refdata.source is postgres")
		}
		if c.Database.User == "" {
			errs = append(errs, "database.user is required when refdata.source is postgres")
		}
		if c.Database.DBName == "" {
			errs = append(errs, "database.dbname is required when refdata.source is postgres")
		}
	default:
		errs = append(errs, fmt.Sprintf("refdata.source must be csv or postgres, got %q", c.RefData.Source))
	}

	if c.CRS.DefaultEPSG <= 0 {
		errs = append(errs, "crs.default_epsg must be a positive EPSG code")
	}
	if c.Valkey.Enabled && c.Valkey.Addr == "" {
		errs = append(errs, "valkey.addr is required when valkey.enabled is true")
	}
	if c.NATS.Enabled && c.NATS.URL == "" {
		errs = append(errs, "nats.url is required when nats.enabled is true")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
