package main

import (
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/onshape-harvest/internal/harvest"
	"github.com/pdiddy/onshape-harvest/internal/onshape"
	"github.com/pdiddy/onshape-harvest/internal/secrets"
	"github.com/pdiddy/onshape-harvest/pkg/types"
)

const (
	defaultOutputDir     = "data"
	defaultDocumentLimit = 1000
	catalogDBFile        = "catalog.db"
)

// Settings resolve in order: explicit flag, then config file or environment
// via viper, then the built-in default. Flags the command does not define
// simply fall through.

func stringSetting(cmd *cobra.Command, flag, key, fallback string) string {
	if cmd.Flags().Changed(flag) {
		v, _ := cmd.Flags().GetString(flag)
		return v
	}
	if viper.IsSet(key) {
		return viper.GetString(key)
	}
	return fallback
}

func intSetting(cmd *cobra.Command, flag, key string, fallback int) int {
	if cmd.Flags().Changed(flag) {
		v, _ := cmd.Flags().GetInt(flag)
		return v
	}
	if viper.IsSet(key) {
		return viper.GetInt(key)
	}
	return fallback
}

func boolSetting(cmd *cobra.Command, flag, key string) bool {
	if cmd.Flags().Changed(flag) {
		v, _ := cmd.Flags().GetBool(flag)
		return v
	}
	return viper.GetBool(key)
}

func durationSetting(cmd *cobra.Command, flag, key string, fallback time.Duration) time.Duration {
	if cmd.Flags().Changed(flag) {
		v, _ := cmd.Flags().GetDuration(flag)
		return v
	}
	if viper.IsSet(key) {
		return viper.GetDuration(key)
	}
	return fallback
}

func sliceSetting(cmd *cobra.Command, flag, key string, fallback []string) []string {
	if cmd.Flags().Changed(flag) {
		v, _ := cmd.Flags().GetStringSlice(flag)
		return v
	}
	if viper.IsSet(key) {
		return viper.GetStringSlice(key)
	}
	return fallback
}

// clientConfig assembles the API client settings. Zero values fall through
// to the client's own defaults. Explicit config beats the secrets directory
// for each key independently.
func clientConfig(cmd *cobra.Command) types.ClientConfig {
	creds := secrets.Keys(loadedSecrets)
	if v := viper.GetString("access_key"); v != "" {
		creds.AccessKey = v
	}
	if v := viper.GetString("secret_key"); v != "" {
		creds.SecretKey = v
	}

	return types.ClientConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   durationSetting(cmd, "timeout", "timeout", 0),
			UserAgent: viper.GetString("user_agent"),
		},
		Stack:     stringSetting(cmd, "stack", "stack", onshape.DefaultStack),
		AccessKey: creds.AccessKey,
		SecretKey: creds.SecretKey,
		Verbose:   boolSetting(cmd, "enable_logging", "verbose"),
	}
}

// harvestConfig assembles the scan and export settings shared by the
// harvest and export commands.
func harvestConfig(cmd *cobra.Command) types.HarvestConfig {
	return types.HarvestConfig{
		OutputDir:     stringSetting(cmd, "output", "output", defaultOutputDir),
		Formats:       sliceSetting(cmd, "formats", "formats", harvest.DefaultFormats),
		DocumentLimit: intSetting(cmd, "limit", "limit", defaultDocumentLimit),
		Offset:        intSetting(cmd, "offset", "offset", 0),
		PollInterval:  durationSetting(cmd, "poll-interval", "poll_interval", harvest.DefaultPollInterval),
		DownloadPause: durationSetting(cmd, "download-pause", "download_pause", harvest.DefaultDownloadPause),
	}
}

// catalogConfig assembles the catalog settings. The database defaults to
// catalog.db inside the output directory.
func catalogConfig(cmd *cobra.Command, outputDir string) types.CatalogConfig {
	path := stringSetting(cmd, "catalog-db", "catalog.path", "")
	if path == "" {
		path = filepath.Join(outputDir, catalogDBFile)
	}
	return types.CatalogConfig{
		Enabled: boolSetting(cmd, "catalog", "catalog.enabled"),
		Path:    path,
	}
}
