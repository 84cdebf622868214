// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the bulkill CLI, which creates
// interlibrary loan transactions in ILLiad for each citation in a CSV or
// RIS file.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/libapps/bulkill/internal/citation"
	"github.com/libapps/bulkill/internal/secrets"
	"github.com/libapps/bulkill/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds credentials loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// rootCmd is the base command for the bulkill CLI.
var rootCmd = &cobra.Command{
	Use:   "bulkill",
	Short: "Bulk interlibrary loan request submission",
	Long: `bulkill reads bibliographic citations from a CSV or RIS export file, maps
each citation to an ILLiad transaction, validates it, and submits it to the
loan-request service. Per-entry failures are recorded in a results file and
never stop the rest of the batch.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// .env first, matching how operators have always configured the
		// tool; values already in the environment win.
		_ = godotenv.Load()

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

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./bulkill.yaml or ~/.config/bulkill/config.yaml)")
	rootCmd.PersistentFlags().String("api-base", "", "base URL of the loan service API")
	rootCmd.PersistentFlags().String("api-key", "", "API key for the loan service")
	viper.BindPFlag("api_base", rootCmd.PersistentFlags().Lookup("api-base"))
	viper.BindPFlag("api_key", rootCmd.PersistentFlags().Lookup("api-key"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("bulkill")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "bulkill"))
		}
	}

	viper.SetEnvPrefix("BULKILL")
	viper.AutomaticEnv()
	viper.SetDefault("user_agent", "bulkill/"+version)
	viper.SetDefault("user_timeout", 10*time.Second)
	viper.SetDefault("submit_timeout", 15*time.Second)
	viper.SetDefault("submit_rate", 1.0)
	viper.SetDefault("results_dir", "results")

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// serviceConfig assembles the remote-service configuration from flags,
// environment, config file and the secrets directory. Missing base URL or
// key is a configuration error: the batch never starts without them.
func serviceConfig() (types.ServiceConfig, error) {
	cfg := types.ServiceConfig{
		BaseURL:       secrets.Get(loadedSecrets, "illiad-base-url", viper.GetString("api_base")),
		APIKey:        secrets.Get(loadedSecrets, "illiad-api-key", viper.GetString("api_key")),
		UserAgent:     viper.GetString("user_agent"),
		UserTimeout:   viper.GetDuration("user_timeout"),
		SubmitTimeout: viper.GetDuration("submit_timeout"),
		SubmitRate:    viper.GetFloat64("submit_rate"),
	}
	if cfg.BaseURL == "" {
		return cfg, errors.New("no API base URL configured; set api_base in bulkill.yaml, BULKILL_API_BASE, or --api-base")
	}
	if cfg.APIKey == "" {
		return cfg, errors.New("no API key configured; set api_key in bulkill.yaml, BULKILL_API_KEY, or --api-key")
	}
	return cfg, nil
}

// typeMapping loads the type-mapping table named in configuration, or the
// compiled-in default when none is named.
func typeMapping() (citation.TypeMapping, error) {
	if path := viper.GetString("type_mapping"); path != "" {
		return citation.Load(path)
	}
	return citation.Default(), nil
}

// pickupLocations returns the configured pickup-location list.
func pickupLocations() []string {
	return viper.GetStringSlice("pickup_locations")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(exitCodeFor(err))
	}
}
