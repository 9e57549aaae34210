// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package harvest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pdiddy/onshape-harvest/internal/onshape"
	"github.com/pdiddy/onshape-harvest/pkg/types"
)

var testDrawing = Drawing{DocumentID: "1", WorkspaceID: "2", ElementID: "3", Name: "Sheet 1"}

func newTestClient(srv *httptest.Server) *onshape.Client {
	return onshape.New(types.ClientConfig{Stack: srv.URL})
}

func fastConfig(dir string) types.HarvestConfig {
	return types.HarvestConfig{
		OutputDir:     dir,
		Formats:       []string{"DWG", "PNG"},
		PollInterval:  time.Millisecond,
		DownloadPause: time.Millisecond,
	}
}

// translationServer scripts the translation endpoints for export tests. The
// polled states are consumed in submission order; the last one repeats.
type translationServer struct {
	submit        onshape.Translation
	states        []string
	resultBlobs   []string
	failureReason string
	blobs         map[string][]byte

	submits   int
	polls     int
	downloads int
}

func (s *translationServer) start(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/translations") && r.Method == http.MethodPost:
			s.submits++
			json.NewEncoder(w).Encode(s.submit)

		case strings.HasPrefix(r.URL.Path, "/api/translations/"):
			s.polls++
			state := s.states[len(s.states)-1]
			if s.polls <= len(s.states) {
				state = s.states[s.polls-1]
			}
			resp := onshape.Translation{ID: s.submit.ID, RequestState: state}
			switch state {
			case onshape.StateDone:
				resp.ResultExternalDataIDs = s.resultBlobs
			case onshape.StateFailed:
				resp.FailureReason = s.failureReason
			}
			json.NewEncoder(w).Encode(resp)

		case strings.Contains(r.URL.Path, "/externaldata/"):
			s.downloads++
			id := r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:]
			w.Write(s.blobs[id])

		default:
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
			http.NotFound(w, r)
		}
	}))
}

func TestOutputFileName(t *testing.T) {
	tests := []struct {
		name   string
		format string
		want   string
	}{
		{"dwg lowercased", "DWG", "d1_w2_e3.dwg"},
		{"png lowercased", "PNG", "d1_w2_e3.png"},
		{"already lower", "pdf", "d1_w2_e3.pdf"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := OutputFileName("1", "2", "3", tt.format)
			if got != tt.want {
				t.Errorf("OutputFileName = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestOutputFileNameCollisionFree(t *testing.T) {
	tuples := [][4]string{
		{"1", "2", "3", "DWG"},
		{"1", "2", "3", "PNG"},
		{"1", "2", "4", "DWG"},
		{"1", "9", "3", "DWG"},
		{"9", "2", "3", "DWG"},
	}
	seen := make(map[string]bool)
	for _, tuple := range tuples {
		name := OutputFileName(tuple[0], tuple[1], tuple[2], tuple[3])
		if seen[name] {
			t.Errorf("tuple %v collides on %q", tuple, name)
		}
		seen[name] = true
	}
}

func TestExportDrawingWritesFiles(t *testing.T) {
	ts := &translationServer{
		submit:      onshape.Translation{ID: "t1", RequestState: onshape.StateActive},
		states:      []string{onshape.StateDone},
		resultBlobs: []string{"blob1"},
		blobs:       map[string][]byte{"blob1": []byte("drawing bytes")},
	}
	srv := ts.start(t)
	defer srv.Close()

	dir := t.TempDir()
	var out bytes.Buffer
	res, err := ExportDrawing(context.Background(), newTestClient(srv), testDrawing, fastConfig(dir), nil, &out)
	if err != nil {
		t.Fatalf("ExportDrawing failed: %v", err)
	}
	if res.Exported != 2 || res.Skipped != 0 {
		t.Errorf("result = %+v, want 2 exported, 0 skipped", res)
	}

	for _, name := range []string{"d1_w2_e3.dwg", "d1_w2_e3.png"} {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			t.Fatalf("missing output %s: %v", name, err)
		}
		if string(data) != "drawing bytes" {
			t.Errorf("%s content = %q", name, data)
		}
	}

	// No temp files may survive a successful export.
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Errorf("output dir has %d entries, want 2", len(entries))
	}

	if ts.submits != 2 || ts.downloads != 2 {
		t.Errorf("submits/downloads = %d/%d, want 2/2", ts.submits, ts.downloads)
	}
	if !strings.Contains(out.String(), "Drawing exported: ") {
		t.Errorf("output missing export line: %q", out.String())
	}
}

func TestExportDrawingSkipsExisting(t *testing.T) {
	ts := &translationServer{
		submit:      onshape.Translation{ID: "t1", RequestState: onshape.StateActive},
		states:      []string{onshape.StateDone},
		resultBlobs: []string{"blob1"},
		blobs:       map[string][]byte{"blob1": []byte("payload")},
	}
	srv := ts.start(t)
	defer srv.Close()

	dir := t.TempDir()
	cfg := fastConfig(dir)
	client := newTestClient(srv)

	var out bytes.Buffer
	if _, err := ExportDrawing(context.Background(), client, testDrawing, cfg, nil, &out); err != nil {
		t.Fatalf("first export failed: %v", err)
	}
	afterFirst := ts.submits + ts.polls + ts.downloads

	res, err := ExportDrawing(context.Background(), client, testDrawing, cfg, nil, &out)
	if err != nil {
		t.Fatalf("second export failed: %v", err)
	}
	if res.Skipped != 2 || res.Exported != 0 {
		t.Errorf("result = %+v, want 2 skipped, 0 exported", res)
	}
	if total := ts.submits + ts.polls + ts.downloads; total != afterFirst {
		t.Errorf("second invocation made %d network calls, want 0", total-afterFirst)
	}
	if !strings.Contains(out.String(), "Skipping: ") {
		t.Errorf("output missing skip line: %q", out.String())
	}
}

func TestExportDrawingImmediateFailure(t *testing.T) {
	ts := &translationServer{
		submit: onshape.Translation{RequestState: onshape.StateFailed, FailureReason: "unsupported format"},
	}
	srv := ts.start(t)
	defer srv.Close()

	dir := t.TempDir()
	cfg := fastConfig(dir)
	cfg.Formats = []string{"DWG"}

	var out bytes.Buffer
	_, err := ExportDrawing(context.Background(), newTestClient(srv), testDrawing, cfg, nil, &out)
	if err == nil {
		t.Fatal("expected error for rejected translation request")
	}
	if !strings.Contains(err.Error(), "unsupported format") {
		t.Errorf("error %q does not carry the failure reason", err)
	}
	if ts.polls != 0 || ts.downloads != 0 {
		t.Errorf("polls/downloads = %d/%d after immediate failure, want 0/0", ts.polls, ts.downloads)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("output dir has %d entries, want none", len(entries))
	}
}

func TestExportDrawingFailureAfterPolling(t *testing.T) {
	ts := &translationServer{
		submit:        onshape.Translation{ID: "t1", RequestState: onshape.StateActive},
		states:        []string{onshape.StateActive, onshape.StateFailed},
		failureReason: "translator crashed",
	}
	srv := ts.start(t)
	defer srv.Close()

	cfg := fastConfig(t.TempDir())
	cfg.Formats = []string{"DWG"}

	var out bytes.Buffer
	_, err := ExportDrawing(context.Background(), newTestClient(srv), testDrawing, cfg, nil, &out)
	if err == nil {
		t.Fatal("expected error for failed translation")
	}
	if !strings.Contains(err.Error(), "translator crashed") {
		t.Errorf("error %q does not carry the failure reason", err)
	}
	if ts.downloads != 0 {
		t.Errorf("downloads = %d after failed translation, want 0", ts.downloads)
	}
}

func TestExportDrawingPollsUntilDone(t *testing.T) {
	ts := &translationServer{
		submit:      onshape.Translation{ID: "t1", RequestState: onshape.StateActive},
		states:      []string{onshape.StateActive, onshape.StateActive, onshape.StateDone},
		resultBlobs: []string{"blob1"},
		blobs:       map[string][]byte{"blob1": []byte("payload")},
	}
	srv := ts.start(t)
	defer srv.Close()

	cfg := fastConfig(t.TempDir())
	cfg.Formats = []string{"DWG"}
	cfg.PollInterval = 30 * time.Millisecond

	var out bytes.Buffer
	start := time.Now()
	res, err := ExportDrawing(context.Background(), newTestClient(srv), testDrawing, cfg, nil, &out)
	elapsed := time.Since(start)
	if err != nil {
		t.Fatalf("ExportDrawing failed: %v", err)
	}
	if res.Exported != 1 {
		t.Errorf("exported = %d, want 1", res.Exported)
	}

	// Two ACTIVE observations mean exactly two poll delays before DONE.
	if ts.polls != 3 {
		t.Errorf("polls = %d, want 3", ts.polls)
	}
	if elapsed < 2*cfg.PollInterval {
		t.Errorf("elapsed %v, want at least two poll intervals", elapsed)
	}
}

func TestExportDrawingMultipleBlobsDownloadsFirst(t *testing.T) {
	ts := &translationServer{
		submit:      onshape.Translation{ID: "t1", RequestState: onshape.StateActive},
		states:      []string{onshape.StateDone},
		resultBlobs: []string{"blob1", "blob2"},
		blobs: map[string][]byte{
			"blob1": []byte("first"),
			"blob2": []byte("second"),
		},
	}
	srv := ts.start(t)
	defer srv.Close()

	dir := t.TempDir()
	cfg := fastConfig(dir)
	cfg.Formats = []string{"DWG"}

	var out bytes.Buffer
	if _, err := ExportDrawing(context.Background(), newTestClient(srv), testDrawing, cfg, nil, &out); err != nil {
		t.Fatalf("ExportDrawing failed: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "d1_w2_e3.dwg"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "first" {
		t.Errorf("content = %q, want the first blob", data)
	}
	if ts.downloads != 1 {
		t.Errorf("downloads = %d, want 1", ts.downloads)
	}
	if !strings.Contains(out.String(), "2 result blobs") {
		t.Errorf("output missing multi-blob warning: %q", out.String())
	}
}

type recorderFunc func(context.Context, ExportRecord) error

func (f recorderFunc) RecordExport(ctx context.Context, rec ExportRecord) error {
	return f(ctx, rec)
}

func TestExportDrawingRecordsExports(t *testing.T) {
	ts := &translationServer{
		submit:      onshape.Translation{ID: "t1", RequestState: onshape.StateActive},
		states:      []string{onshape.StateDone},
		resultBlobs: []string{"blob1"},
		blobs:       map[string][]byte{"blob1": []byte("payload")},
	}
	srv := ts.start(t)
	defer srv.Close()

	dir := t.TempDir()
	var records []ExportRecord
	rec := recorderFunc(func(_ context.Context, r ExportRecord) error {
		records = append(records, r)
		return nil
	})

	var out bytes.Buffer
	if _, err := ExportDrawing(context.Background(), newTestClient(srv), testDrawing, fastConfig(dir), rec, &out); err != nil {
		t.Fatalf("ExportDrawing failed: %v", err)
	}

	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	first := records[0]
	if first.Format != "DWG" || first.ElementID != "3" || first.Bytes != int64(len("payload")) {
		t.Errorf("record = %+v", first)
	}
	if first.TranslationID != "t1" {
		t.Errorf("record translation id = %q, want t1", first.TranslationID)
	}
	if first.Path != filepath.Join(dir, "d1_w2_e3.dwg") {
		t.Errorf("record path = %q", first.Path)
	}
}

func TestExportDrawingRecorderErrorIsAdvisory(t *testing.T) {
	ts := &translationServer{
		submit:      onshape.Translation{ID: "t1", RequestState: onshape.StateActive},
		states:      []string{onshape.StateDone},
		resultBlobs: []string{"blob1"},
		blobs:       map[string][]byte{"blob1": []byte("payload")},
	}
	srv := ts.start(t)
	defer srv.Close()

	dir := t.TempDir()
	cfg := fastConfig(dir)
	cfg.Formats = []string{"DWG"}
	rec := recorderFunc(func(context.Context, ExportRecord) error {
		return fmt.Errorf("database is locked")
	})

	var out bytes.Buffer
	if _, err := ExportDrawing(context.Background(), newTestClient(srv), testDrawing, cfg, rec, &out); err != nil {
		t.Fatalf("recorder error must not fail the export: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "d1_w2_e3.dwg")); err != nil {
		t.Errorf("output file missing: %v", err)
	}
	if !strings.Contains(out.String(), "warning: catalog") {
		t.Errorf("output missing catalog warning: %q", out.String())
	}
}
