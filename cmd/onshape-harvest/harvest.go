package main

import (
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/pdiddy/onshape-harvest/internal/catalog"
	"github.com/pdiddy/onshape-harvest/internal/harvest"
	"github.com/pdiddy/onshape-harvest/internal/onshape"
)

var harvestCmd = &cobra.Command{
	Use:   "harvest",
	Short: "Scan public documents and export every drawing found",
	Long: `Harvest pages through the public document list, finds the drawing
elements in each document's default workspace, translates every drawing into
the requested formats, and downloads the results into the output directory.

A file that already exists is skipped without any API call, so re-running
after an aborted harvest resumes where the files left off.`,
	RunE: runHarvest,
}

func init() {
	harvestCmd.Flags().String("output", "", `output directory for exported files (default "data")`)
	harvestCmd.Flags().Int("limit", 0, "number of documents to scan (default 1000)")
	harvestCmd.Flags().Int("offset", 0, "starting document offset")
	harvestCmd.Flags().StringSlice("formats", nil, "translation formats to request (default DWG,PNG)")
	harvestCmd.Flags().Duration("poll-interval", 0, "delay between translation status polls (default 2s)")
	harvestCmd.Flags().Duration("download-pause", 0, "pause after each download (default 1s)")
	harvestCmd.Flags().Bool("catalog", false, "record exports in the catalog database")
	harvestCmd.Flags().String("catalog-db", "", "catalog database path (default <output>/catalog.db)")

	rootCmd.AddCommand(harvestCmd)
}

func runHarvest(cmd *cobra.Command, args []string) error {
	cfg := harvestConfig(cmd)
	client := onshape.New(clientConfig(cmd))

	var rec harvest.Recorder
	if catCfg := catalogConfig(cmd, cfg.OutputDir); catCfg.Enabled {
		store, err := catalog.Open(catCfg.Path)
		if err != nil {
			return err
		}
		defer store.Close()
		rec = store
	}

	result, err := harvest.Run(cmd.Context(), client, cfg, rec, os.Stdout)
	if err != nil {
		return err
	}

	color.New(color.FgGreen).Printf("Exported %d file(s), skipped %d, from %d drawing(s) in %d document(s)\n",
		result.Exported, result.Skipped, result.Drawings, result.Documents)
	return nil
}
