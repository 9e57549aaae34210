// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the onshape-harvest CLI.
// Implements: prd001-harvest, prd002-export, prd003-catalog (CLI surface).
// See docs/ARCHITECTURE § Command Surface, § Project Structure.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/onshape-harvest/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

const secretsDir = ".secrets/"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// rootCmd is the base command for the onshape-harvest CLI.
var rootCmd = &cobra.Command{
	Use:   "onshape-harvest",
	Short: "Batch exporter for public Onshape drawings",
	Long: `onshape-harvest walks the public Onshape document list, finds drawing
elements, translates each drawing into exchange formats (DWG, PNG, ...)
through Onshape's server-side translation service, and downloads the results.

Exported files are named d<documentId>_w<workspaceId>_e<elementId>.<format>
and written flat into one output directory. A file that already exists is
never re-exported, so interrupted runs are simply restarted.

API keys are read from .secrets/onshape-access-key and
.secrets/onshape-secret-key, the ONSHAPE_HARVEST_ACCESS_KEY and
ONSHAPE_HARVEST_SECRET_KEY environment variables, or the config file.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(secretsDir)
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

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./onshape-harvest.yaml or ~/.config/onshape-harvest/config.yaml)")
	rootCmd.PersistentFlags().String("stack", "", "Onshape deployment base URL (default https://cad.onshape.com)")
	rootCmd.PersistentFlags().Duration("timeout", 0, "HTTP request timeout (default 60s)")
	rootCmd.PersistentFlags().Bool("enable_logging", false, "log every API request to stderr")
}

func initConfig() {
	// A .env file supplies environment variables without exporting them;
	// real environment variables keep precedence.
	_ = godotenv.Load()

	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("onshape-harvest")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "onshape-harvest"))
		}
	}

	viper.SetEnvPrefix("ONSHAPE_HARVEST")
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
