// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the fragment-engine CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the fragment-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "fragment-engine",
	Short: "Extract structured fragments from unstructured text",
	Long: `fragment-engine recovers structured data embedded in free text: JSON
fragments are matched, parsed, tagged with a content hash, and written to
JSON and pipe-delimited tabular outputs; bracketed concept lists are
collected into a conceptual space document.

Extraction results can be ingested into a local SQLite index for
full-text retrieval and export. Each stage is a subcommand: extract,
index, version.`,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./fragment-engine.yaml or ~/.config/fragment-engine/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("fragment-engine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "fragment-engine"))
		}
	}

	viper.SetEnvPrefix("FRAGMENT_ENGINE")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
