// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package harvest

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pdiddy/onshape-harvest/internal/onshape"
	"github.com/pdiddy/onshape-harvest/pkg/types"
)

// DefaultFormats are the translation formats requested when none are
// configured.
var DefaultFormats = []string{"DWG", "PNG"}

// Timing defaults for the translation poll loop and inter-download pacing.
const (
	DefaultPollInterval  = 2 * time.Second
	DefaultDownloadPause = 1 * time.Second
)

// ExportResult counts the files one drawing export produced.
type ExportResult struct {
	Exported int
	Skipped  int
}

// ExportRecord describes one file written by an export, as handed to a
// Recorder.
type ExportRecord struct {
	DocumentID    string
	WorkspaceID   string
	ElementID     string
	Format        string
	TranslationID string
	Path          string
	Bytes         int64
}

// Recorder receives a record of each file written. Recording is advisory:
// errors are reported but never fail the export, and the output directory
// remains the only authoritative state (prd003-catalog R1.2).
type Recorder interface {
	RecordExport(ctx context.Context, rec ExportRecord) error
}

// OutputFileName returns the deterministic file name for one exported
// drawing: d<documentID>_w<workspaceID>_e<elementID>.<format lower-cased>.
// Distinct id tuples never collide (R3.1).
func OutputFileName(documentID, workspaceID, elementID, format string) string {
	return fmt.Sprintf("d%s_w%s_e%s.%s", documentID, workspaceID, elementID, strings.ToLower(format))
}

// ExportDrawing translates one drawing into each requested format and writes
// the results into cfg.OutputDir (R2.1). A format whose output file already
// exists on disk is skipped without any network call: file presence is
// definitive proof the translation succeeded on an earlier run (R2.2). The
// first failure aborts the remaining formats; files already written stay.
func ExportDrawing(ctx context.Context, client *onshape.Client, d Drawing, cfg types.HarvestConfig, rec Recorder, w io.Writer) (ExportResult, error) {
	var result ExportResult

	formats := cfg.Formats
	if len(formats) == 0 {
		formats = DefaultFormats
	}
	pollInterval := cfg.PollInterval
	if pollInterval == 0 {
		pollInterval = DefaultPollInterval
	}
	pause := cfg.DownloadPause
	if pause == 0 {
		pause = DefaultDownloadPause
	}

	for _, format := range formats {
		name := OutputFileName(d.DocumentID, d.WorkspaceID, d.ElementID, format)
		outputPath := filepath.Join(cfg.OutputDir, name)

		if _, err := os.Stat(outputPath); err == nil {
			fmt.Fprintf(w, "Skipping: %s\n", outputPath)
			result.Skipped++
			continue
		}

		job, err := client.RequestDrawingTranslation(ctx, d.DocumentID, d.WorkspaceID, d.ElementID, format, name)
		if err != nil {
			return result, err
		}
		if job.Failed() {
			return result, fmt.Errorf("translation request for %s rejected: %s", name, job.FailureReason)
		}

		done, err := waitForTranslation(ctx, client, job.ID, pollInterval)
		if err != nil {
			return result, err
		}
		if done.Failed() {
			return result, fmt.Errorf("translating %s to %s: %s", d.ElementID, format, done.FailureReason)
		}
		if len(done.ResultExternalDataIDs) == 0 {
			return result, fmt.Errorf("translation %s finished with no result data", done.ID)
		}
		// Only the first result blob is fetched. More than one has not been
		// observed in practice; warn if it ever happens.
		if len(done.ResultExternalDataIDs) > 1 {
			fmt.Fprintf(w, "warning: translation %s produced %d result blobs, downloading the first\n",
				done.ID, len(done.ResultExternalDataIDs))
		}

		data, err := client.DownloadExternalData(ctx, d.DocumentID, done.ResultExternalDataIDs[0])
		if err != nil {
			return result, err
		}
		if err := writeFile(outputPath, data); err != nil {
			return result, err
		}
		result.Exported++
		fmt.Fprintf(w, "Drawing exported: %s\n", outputPath)

		if rec != nil {
			record := ExportRecord{
				DocumentID:    d.DocumentID,
				WorkspaceID:   d.WorkspaceID,
				ElementID:     d.ElementID,
				Format:        format,
				TranslationID: done.ID,
				Path:          outputPath,
				Bytes:         int64(len(data)),
			}
			if err := rec.RecordExport(ctx, record); err != nil {
				fmt.Fprintf(w, "warning: catalog: %v\n", err)
			}
		}

		// Pacing courtesy to the platform after every download (R4.4).
		if err := sleep(ctx, pause); err != nil {
			return result, err
		}
	}
	return result, nil
}

// waitForTranslation polls the job at a fixed interval until it leaves the
// active state (R2.3). There is no attempt cap: a job that never resolves
// blocks until ctx is cancelled.
func waitForTranslation(ctx context.Context, client *onshape.Client, translationID string, interval time.Duration) (*onshape.Translation, error) {
	for {
		job, err := client.TranslationStatus(ctx, translationID)
		if err != nil {
			return nil, err
		}
		if !job.Active() {
			return job, nil
		}
		if err := sleep(ctx, interval); err != nil {
			return nil, err
		}
	}
}

// sleep blocks for d or until ctx is cancelled.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// writeFile lands data at destPath through a temp file in the same
// directory, renamed on success so a partial write never surfaces under the
// final name (R3.2).
func writeFile(destPath string, data []byte) error {
	tmpFile, err := os.CreateTemp(filepath.Dir(destPath), ".harvest-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	_, writeErr := tmpFile.Write(data)
	closeErr := tmpFile.Close()
	if writeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing %s: %w", destPath, writeErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
