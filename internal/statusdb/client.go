// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package statusdb is the client for the status document store: a
// CouchDB-style HTTP view store holding the persisted project documents
// and the sample run metrics documents.
package statusdb

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/NationalGenomicsInfrastructure/LIMS2DB/internal/httputil"
	"github.com/NationalGenomicsInfrastructure/LIMS2DB/pkg/types"
)

// Client talks to the status document store.
type Client struct {
	base      string
	client    *http.Client
	userAgent string
	username  string
	password  string

	projectsDB string
	samplesDB  string

	// now is swapped out in tests.
	now func() time.Time
}

// NewClient builds a Client from configuration.
func NewClient(cfg types.StatusDBConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		base:       cfg.URL,
		client:     &http.Client{Timeout: timeout},
		userAgent:  cfg.UserAgent,
		username:   cfg.Username,
		password:   cfg.Password,
		projectsDB: cfg.ProjectsDB,
		samplesDB:  cfg.SamplesDB,
		now:        time.Now,
	}
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := c.base + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if c.username != "" {
		req.SetBasicAuth(c.username, c.password)
	}

	resp, err := httputil.DoWithRetry(ctx, c.client, req, 0)
	if err != nil {
		return fmt.Errorf("statusdb request %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("statusdb returned HTTP %d for %s %s", resp.StatusCode, method, path)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("parsing statusdb response for %s: %w", path, err)
	}
	return nil
}

type viewRow struct {
	ID    string         `json:"id"`
	Doc   map[string]any `json:"doc"`
	Value map[string]any `json:"value"`
}

// viewDocs queries a design-document view with include_docs and returns
// the matching rows.
func (c *Client) viewDocs(ctx context.Context, db, design, view, key string) ([]viewRow, error) {
	rawKey, err := json.Marshal(key)
	if err != nil {
		return nil, fmt.Errorf("encoding view key: %w", err)
	}
	q := url.Values{
		"key":          {string(rawKey)},
		"include_docs": {"true"},
	}
	path := fmt.Sprintf("/%s/_design/%s/_view/%s", db, design, view)
	var resp struct {
		Rows []viewRow `json:"rows"`
	}
	if err := c.do(ctx, http.MethodGet, path, q, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Rows, nil
}

// put writes a document under its id.
func (c *Client) put(ctx context.Context, db, id string, doc map[string]any) error {
	return c.do(ctx, http.MethodPut, "/"+db+"/"+url.PathEscape(id), nil, doc, nil)
}

// delete removes a document revision.
func (c *Client) delete(ctx context.Context, db, id, rev string) error {
	return c.do(ctx, http.MethodDelete, "/"+db+"/"+url.PathEscape(id), url.Values{"rev": {rev}}, nil, nil)
}

// StoredProject fetches the persisted document for a project name, or
// nil when none exists yet. When the view holds duplicates for the name
// the first row wins; SaveProject removes the extras.
func (c *Client) StoredProject(ctx context.Context, projectName string) (map[string]any, error) {
	rows, err := c.viewDocs(ctx, c.projectsDB, "project", "project_name", projectName)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0].Doc, nil
}

// FindSampleRunID resolves a run identifier to the id of its stored
// sample-run-metrics document, or "".
func (c *Client) FindSampleRunID(ctx context.Context, runID string) string {
	rows, err := c.viewDocs(ctx, c.samplesDB, "names", "name_to_id", runID)
	if err != nil || len(rows) == 0 {
		return ""
	}
	return rows[0].ID
}
