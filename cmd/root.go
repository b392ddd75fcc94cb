package cmd

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"sqlfixtables/internal/dialect"
	"sqlfixtables/internal/logging"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	dsn      string
	driver   string
	cfgFile  string
	logLevel string

	DB      *sql.DB
	Backend dialect.Backend
	Logger  *slog.Logger
)

var RootCmd = &cobra.Command{
	Use:   "sqlfixtables",
	Short: "Print SQL that brings MySQL tables in line with model definitions",
	Long: `sqlfixtables compares the live schema of a MySQL database with model
definitions and prints the statements needed to reconcile them:

  - ALTER TABLE to add/drop columns
  - ALTER TABLE to change column sizes, nullness and uniqueness
  - CREATE INDEX for new foreign key and one-to-one fields
  - CREATE TABLE for new models and many-to-many relations

Nothing is executed. Review the output and run it yourself.

Not supported: databases other than MySQL, unique_together changes, field
type changes (detected and reported), index additions/removals, dropping
old many-to-many tables, and multi-table inheritance parents.
`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		Logger = logging.Setup(viper.GetString("settings.log_level"), os.Stderr)
		slog.SetDefault(Logger)

		// Configuration errors are fatal before any connection is made.
		config, err := GetActiveDBConfig()
		if err != nil {
			return err
		}
		Backend = config.Backend

		DB, err = sql.Open(string(Backend), config.DSN)
		if err != nil {
			return fmt.Errorf("failed to open db: %w", err)
		}
		if err := DB.PingContext(cmd.Context()); err != nil {
			return fmt.Errorf("failed to connect to db: %w", err)
		}
		Logger.Debug("connected", "name", config.Name, "driver", config.Driver, "database", config.Database)
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if DB != nil {
			return DB.Close()
		}
		return nil
	},
}

func Execute() {
	if err := RootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	RootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./sqlfixtables.yaml)")
	RootCmd.PersistentFlags().StringVar(&dsn, "dsn", "", "Database Source Name (DSN), used when no database is active in the config")
	RootCmd.PersistentFlags().StringVar(&driver, "driver", "", "database driver for --dsn")
	RootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")

	viper.BindPFlag("database.dsn", RootCmd.PersistentFlags().Lookup("dsn"))
	viper.BindPFlag("database.driver", RootCmd.PersistentFlags().Lookup("driver"))
	viper.BindPFlag("settings.log_level", RootCmd.PersistentFlags().Lookup("log-level"))

	viper.SetDefault("database.driver", string(dialect.MySQL))
	viper.SetDefault("settings.log_level", "warn")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		if ex, err := os.Executable(); err == nil {
			viper.AddConfigPath(filepath.Dir(ex))
		}
		viper.AddConfigPath(".")
		viper.SetConfigName("sqlfixtables")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("SQLFIX")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}
