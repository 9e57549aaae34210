// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package harvest

import (
	"fmt"
	"net/url"
	"strings"
)

// ParseDocumentURL extracts the document, workspace, and element ids from a
// document URL of the form
//
//	https://cad.onshape.com/documents/<did>/w/<wid>/e/<eid>
//
// The element id is empty when the URL stops at the workspace. A bare
// document URL without /w/ yields an empty workspace id; callers resolve the
// default workspace from the document record. Version (/v/) and microversion
// (/m/) URLs are rejected.
func ParseDocumentURL(rawURL string) (documentID, workspaceID, elementID string, err error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", "", "", fmt.Errorf("parsing document URL: %w", err)
	}

	// Path shape: /documents/<did>[/w/<wid>[/e/<eid>]]
	parts := strings.Split(u.Path, "/")
	if len(parts) < 3 || parts[1] != "documents" || parts[2] == "" {
		return "", "", "", fmt.Errorf("unrecognized document URL %q", rawURL)
	}
	documentID = parts[2]
	if len(parts) == 3 || (len(parts) == 4 && parts[3] == "") {
		return documentID, "", "", nil
	}
	if parts[3] != "w" || len(parts) < 5 || parts[4] == "" {
		return "", "", "", fmt.Errorf("unrecognized document URL %q", rawURL)
	}
	workspaceID = parts[4]
	if len(parts) >= 7 && parts[5] == "e" {
		elementID = parts[6]
	}
	return documentID, workspaceID, elementID, nil
}
