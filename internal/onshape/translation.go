// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package onshape

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

// Translation job states as reported by the translations endpoint. A job
// stays ACTIVE until the server resolves it to DONE or FAILED.
const (
	StateActive = "ACTIVE"
	StateDone   = "DONE"
	StateFailed = "FAILED"
)

// RequestDrawingTranslation submits a server-side translation of one drawing
// element into the named format (R2.2). The job is asynchronous; poll the
// returned id with TranslationStatus until it leaves ACTIVE.
func (c *Client) RequestDrawingTranslation(ctx context.Context, documentID, workspaceID, elementID, formatName, destinationName string) (*Translation, error) {
	payload := translationRequest{
		FormatName:      formatName,
		DestinationName: destinationName,
		NotifyUser:      false,
		StoreInDocument: false,
	}

	var job Translation
	path := "/api/drawings/d/" + documentID + "/w/" + workspaceID + "/e/" + elementID + "/translations"
	if err := c.doJSON(ctx, http.MethodPost, path, nil, payload, &job); err != nil {
		return nil, fmt.Errorf("requesting %s translation of element %s: %w", formatName, elementID, err)
	}
	return &job, nil
}

// TranslationStatus fetches the current state of a translation job (R2.3).
func (c *Client) TranslationStatus(ctx context.Context, translationID string) (*Translation, error) {
	var job Translation
	path := "/api/translations/" + translationID
	if err := c.doJSON(ctx, http.MethodGet, path, nil, nil, &job); err != nil {
		return nil, fmt.Errorf("checking translation %s: %w", translationID, err)
	}
	return &job, nil
}

// ListDrawingTranslationFormats returns the export formats the server offers
// for one drawing element.
func (c *Client) ListDrawingTranslationFormats(ctx context.Context, documentID, workspaceID, elementID string) ([]TranslationFormat, error) {
	var formats []TranslationFormat
	path := "/api/drawings/d/" + documentID + "/w/" + workspaceID + "/e/" + elementID + "/translationformats"
	if err := c.doJSON(ctx, http.MethodGet, path, nil, nil, &formats); err != nil {
		return nil, fmt.Errorf("listing translation formats of element %s: %w", elementID, err)
	}
	return formats, nil
}

// DownloadExternalData fetches one external-data blob produced by a finished
// translation (R2.4).
func (c *Client) DownloadExternalData(ctx context.Context, documentID, externalDataID string) ([]byte, error) {
	path := "/api/documents/d/" + documentID + "/externaldata/" + externalDataID
	resp, err := c.request(ctx, http.MethodGet, path, nil, nil, acceptOctetStream)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apiError(http.MethodGet, path, resp)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading external data %s: %w", externalDataID, err)
	}
	return data, nil
}

// translationRequest is the body of a translation submission. The workspace
// link field serializes as an explicit null, which the endpoint requires for
// standalone exports.
type translationRequest struct {
	FormatName              string  `json:"formatName"`
	DestinationName         string  `json:"destinationName"`
	NotifyUser              bool    `json:"notifyUser"`
	StoreInDocument         bool    `json:"storeInDocument"`
	LinkDocumentWorkspaceID *string `json:"linkDocumentWorkspaceId"`
}

// Translation is a translation job record.
type Translation struct {
	ID                    string   `json:"id"`
	Name                  string   `json:"name"`
	RequestState          string   `json:"requestState"`
	FailureReason         string   `json:"failureReason"`
	ResultExternalDataIDs []string `json:"resultExternalDataIds"`
}

// Active reports whether the job is still running.
func (t *Translation) Active() bool {
	return t.RequestState == StateActive
}

// Failed reports whether the job resolved unsuccessfully.
func (t *Translation) Failed() bool {
	return t.RequestState == StateFailed
}

// TranslationFormat describes one export format a drawing supports.
type TranslationFormat struct {
	Name                   string `json:"name"`
	TranslatorName         string `json:"translatorName"`
	CouldBeBlockedByUpdate bool   `json:"couldBeBlockedByUpdate"`
}
