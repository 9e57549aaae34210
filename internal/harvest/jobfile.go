// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package harvest

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"
)

// JobFile is the on-disk list of documents to export. A set of targets can
// be captured in a file once and replayed without retyping URLs.
// Implements: prd002-export R2.4.
type JobFile struct {
	Targets []JobTarget `yaml:"targets"`
	Formats []string    `yaml:"formats,omitempty"`
}

// JobTarget names one document to export, either by URL or by explicit ids.
type JobTarget struct {
	URL         string `yaml:"url,omitempty"`
	DocumentID  string `yaml:"document_id,omitempty"`
	WorkspaceID string `yaml:"workspace_id,omitempty"`
	ElementID   string `yaml:"element_id,omitempty"`
}

// Resolve returns the target's ids, parsing the URL form when explicit ids
// are absent. The workspace id may come back empty, meaning the document's
// default workspace; the element id may be empty, meaning every drawing in
// the workspace.
func (t JobTarget) Resolve() (documentID, workspaceID, elementID string, err error) {
	if t.DocumentID != "" {
		return t.DocumentID, t.WorkspaceID, t.ElementID, nil
	}
	if t.URL != "" {
		return ParseDocumentURL(t.URL)
	}
	return "", "", "", fmt.Errorf("job target needs a url or a document_id")
}

// ReadJobFile loads an export job file from disk.
func ReadJobFile(path string) (*JobFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading job file: %w", err)
	}
	var jf JobFile
	if err := yaml.Unmarshal(data, &jf); err != nil {
		return nil, fmt.Errorf("parsing job file: %w", err)
	}
	if len(jf.Targets) == 0 {
		return nil, fmt.Errorf("job file %s lists no targets", path)
	}
	return &jf, nil
}
