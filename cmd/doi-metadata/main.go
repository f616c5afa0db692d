// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the doi-metadata CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/doi-metadata/internal/observability"
	"github.com/pdiddy/doi-metadata/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds credentials loaded from .secrets/ at startup.
var loadedSecrets secrets.Credentials

// rootCmd is the base command for the doi-metadata CLI.
var rootCmd = &cobra.Command{
	Use:   "doi-metadata",
	Short: "Resolve DOIs into normalized publication metadata",
	Long: `doi-metadata turns a DOI, a DOI URL, or free text containing a DOI into one
normalized metadata record (title, authors, venue, year, PMID, PMCID, DOI).

The resolve command queries CrossRef, Zenodo, arXiv, bioRxiv, and medRxiv in
order, falling back to Europe PMC when a PMID is known. The remaining commands
maintain the PDF folders, inventories, and packages built around those records.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		m, skipped, err := secrets.Load(secrets.DefaultDir)
		if err != nil {
			return err
		}
		for _, name := range skipped {
			fmt.Fprintf(os.Stderr, "warning: could not read secret %s\n", name)
		}
		loadedSecrets = secrets.FromMap(m)
		if len(m) > 0 {
			keys := make([]string, 0, len(m))
			for k := range m {
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

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./doi-metadata.yaml or ~/.config/doi-metadata/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error (default info)")
	rootCmd.PersistentFlags().String("log-format", "", "log format: console or json (default console)")

	viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format"))
}

func initConfig() {
	// Environment from .env is visible to AutomaticEnv below; a missing file
	// is fine.
	_ = godotenv.Load()

	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("doi-metadata")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "doi-metadata"))
		}
	}

	setDefaults(viper.GetViper())

	viper.SetEnvPrefix("DOI_METADATA")
	viper.SetEnvKeyReplacer(envKeyReplacer)
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// newLogger builds the run logger from the log.* keys.
func newLogger() zerolog.Logger {
	return observability.NewLogger(observability.LoggingConfig{
		Level:  viper.GetString("log.level"),
		Format: viper.GetString("log.format"),
		Output: "stderr",
	})
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
