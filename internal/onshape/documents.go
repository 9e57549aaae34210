// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package onshape

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// Document list filters accepted by the documents endpoint. Only the public
// filter is used by the harvester; the others are kept for the export path.
const (
	FilterMyDocuments  = 0
	FilterSharedWithMe = 2
	FilterPublic       = 4
)

// Sort orders accepted by the documents endpoint.
const (
	SortOrderDesc = "desc"
	SortOrderAsc  = "asc"
)

// ElementTypeApplication selects application elements, the type that hosts
// drawings.
const ElementTypeApplication = "APPLICATION"

// DataTypeDrawing is the dataType of drawing application elements.
const DataTypeDrawing = "onshape-app/drawing"

// ListDocuments returns one page of the global document list (R1.1). Pages
// are addressed by offset; the server caps page size at 20.
func (c *Client) ListDocuments(ctx context.Context, filter, offset, limit int, sortOrder string) (*DocumentList, error) {
	query := url.Values{}
	query.Set("filter", strconv.Itoa(filter))
	query.Set("offset", strconv.Itoa(offset))
	query.Set("limit", strconv.Itoa(limit))
	query.Set("sortOrder", sortOrder)

	var page DocumentList
	if err := c.doJSON(ctx, http.MethodGet, "/api/documents/", query, nil, &page); err != nil {
		return nil, fmt.Errorf("listing documents at offset %d: %w", offset, err)
	}
	return &page, nil
}

// GetDocument fetches a single document record by id.
func (c *Client) GetDocument(ctx context.Context, documentID string) (*Document, error) {
	var doc Document
	path := "/api/documents/" + documentID
	if err := c.doJSON(ctx, http.MethodGet, path, nil, nil, &doc); err != nil {
		return nil, fmt.Errorf("fetching document %s: %w", documentID, err)
	}
	return &doc, nil
}

// ListElements returns the elements of a workspace, optionally restricted to
// one elementType (R1.3). An empty elementType returns every element.
func (c *Client) ListElements(ctx context.Context, documentID, workspaceID, elementType string) ([]Element, error) {
	var query url.Values
	if elementType != "" {
		query = url.Values{}
		query.Set("elementType", elementType)
	}

	var elements []Element
	path := "/api/documents/d/" + documentID + "/w/" + workspaceID + "/elements"
	if err := c.doJSON(ctx, http.MethodGet, path, query, nil, &elements); err != nil {
		return nil, fmt.Errorf("listing elements of document %s: %w", documentID, err)
	}
	return elements, nil
}

// Wire types for the documents endpoints. Fields beyond what the harvester
// reads are omitted.

// DocumentList is one page of the document listing.
type DocumentList struct {
	Items    []Document `json:"items"`
	Next     string     `json:"next"`
	Previous string     `json:"previous"`
}

// Document is a document summary record.
type Document struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Public           bool      `json:"public"`
	DefaultWorkspace Workspace `json:"defaultWorkspace"`
}

// Workspace identifies a document workspace.
type Workspace struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Element is one tab of a document workspace.
type Element struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	ElementType string `json:"elementType"`
	DataType    string `json:"dataType"`
}
