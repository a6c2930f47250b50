// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the wos-triage CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/scoretools/wos-triage/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// apiKey resolves the WoS API key: the WOS_API_KEY environment variable
// (possibly populated from .env) wins, then the .secrets/ directory.
func apiKey() string {
	if v := os.Getenv("WOS_API_KEY"); v != "" {
		return v
	}
	return loadedSecrets[secrets.WOSAPIKeyFile]
}

// rootCmd is the base command for the wos-triage CLI.
var rootCmd = &cobra.Command{
	Use:   "wos-triage",
	Short: "Fetch, triage, and store Web of Science records",
	Long: `wos-triage is a staged pipeline over the Web of Science Expanded API.
The fetch stage pages search results into a normalized record table; the
triage stage filters records against configured include/exclude terms and
attributes funding text to known investigators; the store stage persists
annotated records in a searchable SQLite database.

Each stage is a subcommand: fetch, triage, and store. Stages communicate
through files, so each can be rerun independently.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// .env is optional; absence is not an error.
		godotenv.Load()

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

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./wos-triage.yaml or ~/.config/wos-triage/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("wos-triage")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "wos-triage"))
		}
	}

	viper.SetEnvPrefix("WOS_TRIAGE")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// stringSetting resolves a string setting: an explicitly set flag wins,
// then the config file / environment, then the flag's default.
func stringSetting(cmd *cobra.Command, flag, key string) string {
	if cmd.Flags().Changed(flag) {
		v, _ := cmd.Flags().GetString(flag)
		return v
	}
	if viper.IsSet(key) {
		return viper.GetString(key)
	}
	v, _ := cmd.Flags().GetString(flag)
	return v
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
