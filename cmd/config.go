package cmd

import (
	"fmt"

	"sqlfixtables/internal/dialect"

	"github.com/go-sql-driver/mysql"
	"github.com/spf13/viper"
)

// DBConfig is one entry of the databases list. Backend and Database are
// filled in by validate.
type DBConfig struct {
	Name   string `mapstructure:"name"`
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
	Active bool   `mapstructure:"active"`

	Backend  dialect.Backend `mapstructure:"-"`
	Database string          `mapstructure:"-"`
}

// validate checks the driver and DSN without connecting. The DSN must
// select a database, since tables are listed and described in it.
func (c *DBConfig) validate() error {
	b, err := dialect.ParseBackend(c.Driver)
	if err != nil {
		return fmt.Errorf("database %s: %w", c.Name, err)
	}
	parsed, err := mysql.ParseDSN(c.DSN)
	if err != nil {
		return fmt.Errorf("invalid dsn for %s: %w", c.Name, err)
	}
	if parsed.DBName == "" {
		return fmt.Errorf("no database selected in DSN for %s", c.Name)
	}
	c.Backend, c.Database = b, parsed.DBName
	return nil
}

// GetActiveDBConfig returns the validated active entry of the databases
// list, or a config built from --dsn/--driver when the list is empty.
func GetActiveDBConfig() (*DBConfig, error) {
	var configs []DBConfig

	if err := viper.UnmarshalKey("databases", &configs); err != nil {
		return nil, fmt.Errorf("failed to parse databases config: %w", err)
	}

	if len(configs) == 0 {
		connStr := viper.GetString("database.dsn")
		if connStr == "" {
			return nil, fmt.Errorf("no database configured: add a databases entry to the config or pass --dsn")
		}
		cfg := &DBConfig{
			Name:   "command line",
			Driver: viper.GetString("database.driver"),
			DSN:    connStr,
			Active: true,
		}
		if err := cfg.validate(); err != nil {
			return nil, err
		}
		return cfg, nil
	}

	var activeConfig *DBConfig
	count := 0

	for i := range configs {
		if configs[i].Active {
			activeConfig = &configs[i]
			count++
		}
	}

	if count == 0 {
		return nil, fmt.Errorf("no active database found in config (set active: true)")
	}
	if count > 1 {
		return nil, fmt.Errorf("multiple active databases found (only one can be active)")
	}

	if err := activeConfig.validate(); err != nil {
		return nil, err
	}
	return activeConfig, nil
}
