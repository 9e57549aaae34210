// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/pdiddy/onshape-harvest/internal/catalog"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect the export catalog (list, stats, export, verify)",
	Long: `Catalog inspects the SQLite record of past exports. The catalog is
advisory: the output directory remains the authoritative state, and the
harvester never consults the database to decide whether work is done.`,
}

func init() {
	catalogCmd.PersistentFlags().String("output", "", `output directory the catalog belongs to (default "data")`)
	catalogCmd.PersistentFlags().String("catalog-db", "", "catalog database path (default <output>/catalog.db)")

	catalogExportCmd.Flags().String("format", "yaml", "export format: yaml or json")

	catalogCmd.AddCommand(catalogListCmd)
	catalogCmd.AddCommand(catalogStatsCmd)
	catalogCmd.AddCommand(catalogExportCmd)
	catalogCmd.AddCommand(catalogVerifyCmd)
	rootCmd.AddCommand(catalogCmd)
}

// openCatalog resolves the database location from flags and config and
// opens it.
func openCatalog(cmd *cobra.Command) (*catalog.Store, error) {
	outputDir := stringSetting(cmd, "output", "output", defaultOutputDir)
	return catalog.Open(catalogConfig(cmd, outputDir).Path)
}

// --- list subcommand ---

var catalogListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every recorded export",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openCatalog(cmd)
		if err != nil {
			return err
		}
		defer store.Close()

		entries, err := store.List(cmd.Context())
		if err != nil {
			return err
		}
		for _, e := range entries {
			fmt.Printf("%s  %-4s  %8d  %s\n",
				e.ExportedAt.Format(time.RFC3339), e.Format, e.Bytes, e.Path)
		}
		fmt.Printf("\n%d export(s)\n", len(entries))
		return nil
	},
}

// --- stats subcommand ---

var catalogStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize the catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openCatalog(cmd)
		if err != nil {
			return err
		}
		defer store.Close()

		stats, err := store.Stats(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Printf("Exports:   %d\n", stats.Exports)
		fmt.Printf("Documents: %d\n", stats.Documents)
		fmt.Printf("Bytes:     %d\n", stats.Bytes)
		if len(stats.ByFormat) > 0 {
			fmt.Println("\nBy format:")
			names := make([]string, 0, len(stats.ByFormat))
			for name := range stats.ByFormat {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				fmt.Printf("  %-6s %d\n", name, stats.ByFormat[name])
			}
		}
		return nil
	},
}

// --- export subcommand ---

var catalogExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the catalog to stdout as YAML or JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")

		store, err := openCatalog(cmd)
		if err != nil {
			return err
		}
		defer store.Close()

		switch format {
		case "yaml":
			return store.WriteYAML(cmd.Context(), os.Stdout)
		case "json":
			return store.WriteJSON(cmd.Context(), os.Stdout)
		default:
			return fmt.Errorf("unknown format %q: use yaml or json", format)
		}
	},
}

// --- verify subcommand ---

var catalogVerifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Report recorded files that are missing from disk",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openCatalog(cmd)
		if err != nil {
			return err
		}
		defer store.Close()

		missing, err := store.Missing(cmd.Context())
		if err != nil {
			return err
		}
		if len(missing) == 0 {
			color.New(color.FgGreen).Println("All recorded files present")
			return nil
		}
		for _, e := range missing {
			fmt.Printf("missing: %s\n", e.Path)
		}
		return fmt.Errorf("%d recorded file(s) missing from disk", len(missing))
	},
}
