// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package harvest walks the public document list, finds drawing elements,
// and exports each one through server-side translation.
// Implements: prd001-harvest (R1-R4), prd002-export (R1-R4);
//
//	docs/ARCHITECTURE § Harvest Loop.
package harvest

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/pdiddy/onshape-harvest/internal/onshape"
	"github.com/pdiddy/onshape-harvest/pkg/types"
)

// PageSize is the fixed page size of the document listing. The scan limit is
// converted to whole pages of this size; a trailing partial page is not
// requested.
const PageSize = 20

// Drawing locates one drawing element inside a document workspace.
type Drawing struct {
	DocumentID  string
	WorkspaceID string
	ElementID   string
	Name        string
}

// BatchResult holds the outcome of a harvest run.
type BatchResult struct {
	Documents int // documents scanned
	Drawings  int // drawings fully processed
	Exported  int // files written
	Skipped   int // files already present
}

// HasWork reports whether the run touched any drawing at all.
func (r BatchResult) HasWork() bool {
	return r.Drawings > 0
}

// Run scans pages of the public document list and exports every drawing it
// finds (R1.1-R1.4). Progress goes to w. The first export or listing failure
// aborts the run; the returned result still carries the counters accumulated
// up to that point, and a re-run resumes cheaply because finished files are
// skipped on disk.
func Run(ctx context.Context, client *onshape.Client, cfg types.HarvestConfig, rec Recorder, w io.Writer) (BatchResult, error) {
	var result BatchResult

	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return result, fmt.Errorf("creating output directory %s: %w", cfg.OutputDir, err)
	}

	pages := cfg.DocumentLimit / PageSize
	for page := 0; page < pages; page++ {
		offset := cfg.Offset + page*PageSize
		list, err := client.ListDocuments(ctx, onshape.FilterPublic, offset, PageSize, onshape.SortOrderDesc)
		if err != nil {
			return result, err
		}

		for _, doc := range list.Items {
			result.Documents++
			drawings, err := FindDrawings(ctx, client, doc.ID, doc.DefaultWorkspace.ID)
			if err != nil {
				return result, err
			}
			if len(drawings) == 0 {
				fmt.Fprintln(w, "--------------No drawings found--------------")
				continue
			}
			for _, d := range drawings {
				res, err := ExportDrawing(ctx, client, d, cfg, rec, w)
				result.Exported += res.Exported
				result.Skipped += res.Skipped
				if err != nil {
					return result, fmt.Errorf("exporting drawing %s of document %s: %w", d.ElementID, d.DocumentID, err)
				}
				result.Drawings++
			}
		}
	}

	fmt.Fprintf(w, "\n--------------\nDrawing count: %d from %d documents\n", result.Drawings, cfg.DocumentLimit)
	return result, nil
}

// FindDrawings lists the application elements of a workspace and keeps those
// tagged as drawings (R1.3). A workspace without drawings yields an empty,
// non-nil slice.
func FindDrawings(ctx context.Context, client *onshape.Client, documentID, workspaceID string) ([]Drawing, error) {
	elements, err := client.ListElements(ctx, documentID, workspaceID, onshape.ElementTypeApplication)
	if err != nil {
		return nil, err
	}

	drawings := make([]Drawing, 0, len(elements))
	for _, el := range elements {
		if el.DataType != onshape.DataTypeDrawing {
			continue
		}
		drawings = append(drawings, Drawing{
			DocumentID:  documentID,
			WorkspaceID: workspaceID,
			ElementID:   el.ID,
			Name:        el.Name,
		})
	}
	return drawings, nil
}
