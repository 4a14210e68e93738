// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the lims2db CLI.
// See docs/ARCHITECTURE § Pipeline Interface, § Project Structure.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/NationalGenomicsInfrastructure/LIMS2DB/internal/secrets"
	"github.com/NationalGenomicsInfrastructure/LIMS2DB/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds credentials loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// secretDefault returns the secret value for key if it exists, or fallback otherwise.
func secretDefault(key, fallback string) string {
	if fallback != "" {
		return fallback
	}
	if v, ok := loadedSecrets[key]; ok {
		return v
	}
	return ""
}

// rootCmd is the base command for the lims2db CLI.
var rootCmd = &cobra.Command{
	Use:   "lims2db",
	Short: "Extract project documents from the LIMS into the status database",
	Long: `lims2db walks the LIMS provenance records of sequencing projects and
assembles them into hierarchical project documents: library preps keyed by
letter, validation rounds, initial QC and per-run sample metrics. Assembled
documents are reconciled against the stored copy in the status database so
that data already persisted is never lost.

Each operation is a subcommand: project extracts and uploads documents,
diff compares an extraction pass against the stored or archived copy.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./lims2db.yaml or ~/.config/lims2db/config.yaml)")
	rootCmd.PersistentFlags().Bool("verbose", false, "log at debug level")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("lims2db")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "lims2db"))
		}
	}

	viper.SetEnvPrefix("LIMS2DB")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// pipelineConfig assembles the stage configuration from the config file,
// environment and secrets.
func pipelineConfig() types.PipelineConfig {
	cfg := types.PipelineConfig{
		LIMS: types.LIMSConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   viper.GetDuration("lims.timeout"),
				UserAgent: "lims2db/" + version,
			},
			BaseURL:  viper.GetString("lims.base_url"),
			Username: secretDefault("lims-username", viper.GetString("lims.username")),
			Password: secretDefault("lims-password", viper.GetString("lims.password")),
		},
		StatusDB: types.StatusDBConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   viper.GetDuration("statusdb.timeout"),
				UserAgent: "lims2db/" + version,
			},
			URL:        viper.GetString("statusdb.url"),
			Username:   secretDefault("statusdb-username", viper.GetString("statusdb.username")),
			Password:   secretDefault("statusdb-password", viper.GetString("statusdb.password")),
			ProjectsDB: viper.GetString("statusdb.projects_db"),
			SamplesDB:  viper.GetString("statusdb.samples_db"),
		},
		Catalog: types.CatalogConfig{
			Path: viper.GetString("catalog.path"),
		},
		Sync: types.SyncConfig{
			Workers: viper.GetInt("sync.workers"),
			LockDir: viper.GetString("sync.lock_dir"),
			Hours:   viper.GetInt("sync.hours"),
		},
		Snapshot: types.SnapshotConfig{
			Dir: viper.GetString("snapshot.dir"),
		},
		Notify: types.NotifyConfig{
			SMTPAddr: viper.GetString("notify.smtp_addr"),
			From:     viper.GetString("notify.from"),
			Receiver: viper.GetString("notify.receiver"),
		},
	}
	if cfg.StatusDB.ProjectsDB == "" {
		cfg.StatusDB.ProjectsDB = "projects"
	}
	if cfg.StatusDB.SamplesDB == "" {
		cfg.StatusDB.SamplesDB = "samples"
	}
	if cfg.Sync.LockDir == "" {
		cfg.Sync.LockDir = "locks"
	}
	if cfg.Snapshot.Dir == "" {
		cfg.Snapshot.Dir = "snapshots"
	}
	return cfg
}

// newLogger builds the process logger. Production encoding; --verbose
// lowers the level to debug.
func newLogger(cmd *cobra.Command) (*zap.Logger, error) {
	verbose, _ := cmd.Flags().GetBool("verbose")
	zcfg := zap.NewProductionConfig()
	zcfg.EncoderConfig.TimeKey = "ts"
	zcfg.EncoderConfig.EncodeTime = zapcore.RFC3339TimeEncoder
	if verbose {
		zcfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	return zcfg.Build()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
