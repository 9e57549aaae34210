// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package onshape is a minimal client for the Onshape REST API: the document
// and element listing, drawing translation, and external-data endpoints the
// harvester needs, with API-key request signing.
// Implements: prd004-client (R1-R4);
//
//	docs/ARCHITECTURE § Client.
package onshape

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/pdiddy/onshape-harvest/pkg/types"
)

const (
	// DefaultStack is the public Onshape deployment.
	DefaultStack = "https://cad.onshape.com"

	contentTypeJSON   = "application/json"
	acceptJSON        = "application/json"
	acceptOctetStream = "application/vnd.onshape.v1+octet-stream"

	defaultTimeout   = 60 * time.Second
	defaultUserAgent = "onshape-harvest/0.1"
)

// Client issues signed requests against one Onshape deployment. The zero
// value is not usable; construct with New.
type Client struct {
	stack      string
	accessKey  string
	secretKey  string
	userAgent  string
	verbose    bool
	logw       io.Writer
	httpClient *http.Client
}

// New returns a client for the deployment named by cfg.Stack. An empty
// AccessKey produces an unsigned client, which is sufficient for test
// servers and for endpoints that accept anonymous reads.
func New(cfg types.ClientConfig) *Client {
	stack := strings.TrimSuffix(cfg.Stack, "/")
	if stack == "" {
		stack = DefaultStack
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}

	return &Client{
		stack:      stack,
		accessKey:  cfg.AccessKey,
		secretKey:  cfg.SecretKey,
		userAgent:  userAgent,
		verbose:    cfg.Verbose,
		logw:       os.Stderr,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// SetLogOutput redirects verbose request logging, which defaults to stderr.
func (c *Client) SetLogOutput(w io.Writer) {
	c.logw = w
}

// Stack returns the base URL the client talks to.
func (c *Client) Stack() string {
	return c.stack
}

// request builds, signs, and executes one API call. The caller owns the
// response body. Verbose mode logs one line per call (R3.1).
func (c *Client) request(ctx context.Context, method, apiPath string, query url.Values, payload any, accept string) (*http.Response, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encoding %s body: %w", apiPath, err)
		}
		body = bytes.NewReader(data)
	}

	rawQuery := ""
	if len(query) > 0 {
		rawQuery = query.Encode()
	}
	reqURL := c.stack + apiPath
	if rawQuery != "" {
		reqURL += "?" + rawQuery
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, body)
	if err != nil {
		return nil, fmt.Errorf("creating %s request: %w", apiPath, err)
	}

	req.Header.Set("Content-Type", contentTypeJSON)
	req.Header.Set("Accept", accept)
	req.Header.Set("User-Agent", c.userAgent)
	if c.accessKey != "" {
		c.sign(req, apiPath, rawQuery)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if c.verbose {
			fmt.Fprintf(c.logw, "onshape: %s %s failed: %v\n", method, apiPath, err)
		}
		return nil, fmt.Errorf("%s %s: %w", method, apiPath, err)
	}
	if c.verbose {
		fmt.Fprintf(c.logw, "onshape: %s %s -> %d (%s)\n",
			method, apiPath, resp.StatusCode, time.Since(start).Round(time.Millisecond))
	}
	return resp, nil
}

// doJSON executes a call and decodes the JSON response into out. A nil out
// drains and discards the body.
func (c *Client) doJSON(ctx context.Context, method, apiPath string, query url.Values, payload, out any) error {
	resp, err := c.request(ctx, method, apiPath, query, payload, acceptJSON)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return apiError(method, apiPath, resp)
	}
	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("parsing %s response: %w", apiPath, err)
	}
	return nil
}

// apiError shapes a non-200 response into an error carrying the status and
// a trimmed body excerpt (R4.1).
func apiError(method, apiPath string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	msg := strings.TrimSpace(string(body))
	if msg == "" {
		return fmt.Errorf("onshape API: %s %s returned HTTP %d", method, apiPath, resp.StatusCode)
	}
	return fmt.Errorf("onshape API: %s %s returned HTTP %d: %s", method, apiPath, resp.StatusCode, msg)
}
