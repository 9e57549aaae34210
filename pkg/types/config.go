package types

import "time"

// HTTPConfig holds shared HTTP settings used by components that talk to the
// Onshape API.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "onshape-harvest/0.1"). Per prd004-client R3.4.
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// ClientConfig holds settings for the Onshape API client.
// Per prd004-client R1.1, R2.1-R2.3.
type ClientConfig struct {
	HTTPConfig `yaml:",inline"`

	// Stack is the base URL of the Onshape deployment
	// (default "https://cad.onshape.com").
	Stack string `json:"stack" yaml:"stack"`

	// AccessKey and SecretKey are the API key pair used to sign requests.
	// When AccessKey is empty, requests are sent unsigned.
	AccessKey string `json:"access_key,omitempty" yaml:"access_key,omitempty"`
	SecretKey string `json:"secret_key,omitempty" yaml:"secret_key,omitempty"`

	// Verbose enables per-request logging of API interactions.
	Verbose bool `json:"verbose" yaml:"verbose"`
}

// HarvestConfig holds settings for the document scan and export stages.
// Per prd001-harvest R1.1-R1.4, prd002-export R3.2, R4.4.
type HarvestConfig struct {
	// OutputDir is the directory exported drawing files are written to
	// (default "data"). Created if absent.
	OutputDir string `json:"output" yaml:"output"`

	// Formats lists the translation formats requested per drawing
	// (default ["DWG", "PNG"]).
	Formats []string `json:"formats" yaml:"formats"`

	// DocumentLimit is the number of documents to scan. It is converted to
	// whole pages of PageSize documents; a remainder below one page is not
	// requested.
	DocumentLimit int `json:"limit" yaml:"limit"`

	// Offset is the document offset the scan starts from.
	Offset int `json:"offset" yaml:"offset"`

	// PollInterval is the delay between translation status polls
	// (default 2s). There is no attempt cap: a job that never leaves the
	// active state blocks the run.
	PollInterval time.Duration `json:"poll_interval" yaml:"poll_interval"`

	// DownloadPause is the pause after each completed download
	// (default 1s), a courtesy to the platform's rate limits.
	DownloadPause time.Duration `json:"download_pause" yaml:"download_pause"`
}

// CatalogConfig holds settings for the export catalog.
// Per prd003-catalog R1.1-R1.3.
type CatalogConfig struct {
	// Enabled turns catalog recording on. Off by default: the output
	// directory itself remains the only authoritative record.
	Enabled bool `json:"enabled" yaml:"enabled"`

	// Path is the SQLite database location
	// (default "<output>/catalog.db").
	Path string `json:"path" yaml:"path"`
}
