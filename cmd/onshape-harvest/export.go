package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/pdiddy/onshape-harvest/internal/catalog"
	"github.com/pdiddy/onshape-harvest/internal/harvest"
	"github.com/pdiddy/onshape-harvest/internal/onshape"
)

var exportCmd = &cobra.Command{
	Use:   "export [document URLs...]",
	Short: "Export drawings from specific documents",
	Long: `Export translates drawings from the given documents without scanning
the public list. Each argument is a document URL of the form

  https://cad.onshape.com/documents/<did>[/w/<wid>[/e/<eid>]]

With an element id only that drawing is exported; without one, every drawing
in the workspace is. Without a workspace the document's default workspace is
used. Targets can also come from a YAML job file:

  targets:
    - url: https://cad.onshape.com/documents/<did>/w/<wid>/e/<eid>
    - document_id: <did>
      workspace_id: <wid>
  formats: [DWG]`,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().String("output", "", `output directory for exported files (default "data")`)
	exportCmd.Flags().String("file", "", "YAML job file listing export targets")
	exportCmd.Flags().StringSlice("formats", nil, "translation formats to request (default DWG,PNG)")
	exportCmd.Flags().Duration("poll-interval", 0, "delay between translation status polls (default 2s)")
	exportCmd.Flags().Duration("download-pause", 0, "pause after each download (default 1s)")
	exportCmd.Flags().Bool("catalog", false, "record exports in the catalog database")
	exportCmd.Flags().String("catalog-db", "", "catalog database path (default <output>/catalog.db)")

	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg := harvestConfig(cmd)

	targets := make([]harvest.JobTarget, 0, len(args))
	for _, rawURL := range args {
		targets = append(targets, harvest.JobTarget{URL: rawURL})
	}
	if jobPath, _ := cmd.Flags().GetString("file"); jobPath != "" {
		jf, err := harvest.ReadJobFile(jobPath)
		if err != nil {
			return err
		}
		targets = append(targets, jf.Targets...)
		if len(jf.Formats) > 0 && !cmd.Flags().Changed("formats") {
			cfg.Formats = jf.Formats
		}
	}
	if len(targets) == 0 {
		return fmt.Errorf("provide one or more document URLs, or --file with a job file")
	}

	client := onshape.New(clientConfig(cmd))
	ctx := cmd.Context()

	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return fmt.Errorf("creating output directory %s: %w", cfg.OutputDir, err)
	}

	var rec harvest.Recorder
	if catCfg := catalogConfig(cmd, cfg.OutputDir); catCfg.Enabled {
		store, err := catalog.Open(catCfg.Path)
		if err != nil {
			return err
		}
		defer store.Close()
		rec = store
	}

	exported, skipped := 0, 0
	for _, target := range targets {
		documentID, workspaceID, elementID, err := target.Resolve()
		if err != nil {
			return err
		}
		if workspaceID == "" {
			doc, err := client.GetDocument(ctx, documentID)
			if err != nil {
				return err
			}
			if doc.DefaultWorkspace.ID == "" {
				return fmt.Errorf("document %s has no default workspace", documentID)
			}
			workspaceID = doc.DefaultWorkspace.ID
		}

		var drawings []harvest.Drawing
		if elementID != "" {
			drawings = []harvest.Drawing{{
				DocumentID:  documentID,
				WorkspaceID: workspaceID,
				ElementID:   elementID,
			}}
		} else {
			drawings, err = harvest.FindDrawings(ctx, client, documentID, workspaceID)
			if err != nil {
				return err
			}
			if len(drawings) == 0 {
				fmt.Printf("No drawings in document %s\n", documentID)
				continue
			}
		}

		for _, d := range drawings {
			res, err := harvest.ExportDrawing(ctx, client, d, cfg, rec, os.Stdout)
			exported += res.Exported
			skipped += res.Skipped
			if err != nil {
				return fmt.Errorf("exporting drawing %s of document %s: %w", d.ElementID, d.DocumentID, err)
			}
		}
	}

	color.New(color.FgGreen).Printf("Exported %d file(s), skipped %d\n", exported, skipped)
	return nil
}
