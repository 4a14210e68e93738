// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package lims is the HTTP client for the LIMS gateway and the loader
// that turns its responses into the in-memory inputs of the assembly
// pipeline. All novel logic lives downstream; this package is plumbing:
// fetch, decode, index.
package lims

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/NationalGenomicsInfrastructure/LIMS2DB/internal/httputil"
	"github.com/NationalGenomicsInfrastructure/LIMS2DB/pkg/types"
)

// Client talks to the LIMS gateway.
type Client struct {
	base      string
	client    *http.Client
	userAgent string
	username  string
	password  string
}

// NewClient builds a Client from configuration.
func NewClient(cfg types.LIMSConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		base:      cfg.BaseURL,
		client:    &http.Client{Timeout: timeout},
		userAgent: cfg.UserAgent,
		username:  cfg.Username,
		password:  cfg.Password,
	}
}

// get performs an authenticated GET and decodes the JSON response into out.
func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	u := c.base + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if c.username != "" {
		req.SetBasicAuth(c.username, c.password)
	}

	resp, err := httputil.DoWithRetry(ctx, c.client, req, 0)
	if err != nil {
		return fmt.Errorf("LIMS request %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return errNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("LIMS returned HTTP %d for %s", resp.StatusCode, path)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("parsing LIMS response for %s: %w", path, err)
	}
	return nil
}

var errNotFound = fmt.Errorf("not found")

// --- wire types ---

type projectRecord struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	OpenDate   string `json:"open_date"`
	CloseDate  string `json:"close_date"`
	Researcher struct {
		Email          string `json:"email"`
		LabAffiliation string `json:"lab_affiliation"`
	} `json:"researcher"`
	UDFs map[string]any `json:"udfs"`
}

type sampleRecord struct {
	ID              string         `json:"id"`
	Name            string         `json:"name"`
	InitialArtifact string         `json:"initial_artifact"`
	UDFs            map[string]any `json:"udfs"`
}

type ioPair struct {
	Input  string `json:"input"`
	Output string `json:"output"`
}

type processRecord struct {
	ID         string         `json:"id"`
	TypeID     string         `json:"type_id"`
	TypeName   string         `json:"type_name"`
	Name       string         `json:"name"`
	DateRun    string         `json:"date_run"`
	Technician string         `json:"technician"`
	UDFs       map[string]any `json:"udfs"`
	IOMaps     []ioPair       `json:"input_output_maps"`
}

type artifactRecord struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	QCFlag        string         `json:"qc_flag"`
	Container     string         `json:"container"`
	Well          string         `json:"well"`
	ReagentLabels []string       `json:"reagent_labels"`
	Samples       []string       `json:"samples"`
	UDFs          map[string]any `json:"udfs"`
}

func (a *artifactRecord) toArtifact() *types.Artifact {
	return &types.Artifact{
		ID:            a.ID,
		Name:          a.Name,
		QCFlag:        a.QCFlag,
		Container:     a.Container,
		Well:          a.Well,
		ReagentLabels: a.ReagentLabels,
		Samples:       a.Samples,
		UDF:           a.UDFs,
	}
}

// --- queries ---

// Project fetches one project by id.
func (c *Client) Project(ctx context.Context, id string) (*types.Project, error) {
	var rec projectRecord
	if err := c.get(ctx, "/projects/"+url.PathEscape(id), nil, &rec); err != nil {
		return nil, err
	}
	return &types.Project{
		ID:           rec.ID,
		Name:         rec.Name,
		OpenDate:     rec.OpenDate,
		CloseDate:    rec.CloseDate,
		ContactEmail: rec.Researcher.Email,
		Affiliation:  rec.Researcher.LabAffiliation,
		UDF:          rec.UDFs,
	}, nil
}

// ProjectIDByName resolves a project name to its id, or "" when unknown.
func (c *Client) ProjectIDByName(ctx context.Context, name string) (string, error) {
	var resp struct {
		Projects []projectRecord `json:"projects"`
	}
	if err := c.get(ctx, "/projects", url.Values{"name": {name}}, &resp); err != nil {
		return "", err
	}
	if len(resp.Projects) == 0 {
		return "", nil
	}
	return resp.Projects[0].ID, nil
}

// RecentProjectIDs lists projects modified within the last hours. A zero
// window lists every project.
func (c *Client) RecentProjectIDs(ctx context.Context, hours int) ([]string, error) {
	q := url.Values{}
	if hours > 0 {
		q.Set("hours", fmt.Sprintf("%d", hours))
	}
	var resp struct {
		Projects []string `json:"projects"`
	}
	if err := c.get(ctx, "/projects/recent", q, &resp); err != nil {
		return nil, err
	}
	return resp.Projects, nil
}

// Samples lists the samples registered for a project.
func (c *Client) Samples(ctx context.Context, projectID string) ([]*types.Sample, error) {
	var resp struct {
		Samples []sampleRecord `json:"samples"`
	}
	if err := c.get(ctx, "/projects/"+url.PathEscape(projectID)+"/samples", nil, &resp); err != nil {
		return nil, err
	}
	out := make([]*types.Sample, 0, len(resp.Samples))
	for _, rec := range resp.Samples {
		out = append(out, &types.Sample{
			ID:              rec.ID,
			Name:            rec.Name,
			InitialArtifact: rec.InitialArtifact,
			UDF:             rec.UDFs,
		})
	}
	return out, nil
}

// Processes lists the processes run for a project, optionally filtered
// by process type id or name.
func (c *Client) Processes(ctx context.Context, projectName string, processTypes []string) ([]processRecord, error) {
	q := url.Values{"project": {projectName}}
	for _, t := range processTypes {
		q.Add("type", t)
	}
	var resp struct {
		Processes []processRecord `json:"processes"`
	}
	if err := c.get(ctx, "/processes", q, &resp); err != nil {
		return nil, err
	}
	return resp.Processes, nil
}

// Artifact fetches one artifact by id.
func (c *Client) Artifact(ctx context.Context, id string) (*types.Artifact, error) {
	var rec artifactRecord
	if err := c.get(ctx, "/artifacts/"+url.PathEscape(id), nil, &rec); err != nil {
		return nil, err
	}
	return rec.toArtifact(), nil
}

// ProcessOutputs lists the output artifacts of a process.
func (c *Client) ProcessOutputs(ctx context.Context, processID string) ([]*types.Artifact, error) {
	var resp struct {
		Artifacts []artifactRecord `json:"artifacts"`
	}
	if err := c.get(ctx, "/processes/"+url.PathEscape(processID)+"/outputs", nil, &resp); err != nil {
		return nil, err
	}
	out := make([]*types.Artifact, 0, len(resp.Artifacts))
	for i := range resp.Artifacts {
		out = append(out, resp.Artifacts[i].toArtifact())
	}
	return out, nil
}

// ResultFileURL returns the content location of the result file a
// process produced for the named sample, or "".
func (c *Client) ResultFileURL(ctx context.Context, processID, sampleName string) (string, error) {
	var resp struct {
		Files []struct {
			ContentLocation string `json:"content_location"`
		} `json:"files"`
	}
	q := url.Values{"sample": {sampleName}}
	if err := c.get(ctx, "/processes/"+url.PathEscape(processID)+"/resultfiles", q, &resp); err != nil {
		return "", err
	}
	if len(resp.Files) == 0 {
		return "", nil
	}
	return resp.Files[0].ContentLocation, nil
}

// ReagentSequence returns the index sequence registered for a reagent
// label name, or "".
func (c *Client) ReagentSequence(ctx context.Context, label string) (string, error) {
	var resp struct {
		ReagentTypes []struct {
			Name     string `json:"name"`
			Sequence string `json:"sequence"`
		} `json:"reagent_types"`
	}
	if err := c.get(ctx, "/reagent_types", url.Values{"name": {label}}, &resp); err != nil {
		return "", err
	}
	if len(resp.ReagentTypes) == 0 {
		return "", nil
	}
	return resp.ReagentTypes[0].Sequence, nil
}

// PendingEscalations lists the ids of steps with pending escalations for
// a project.
func (c *Client) PendingEscalations(ctx context.Context, projectName string) ([]string, error) {
	var resp struct {
		Steps []string `json:"steps"`
	}
	if err := c.get(ctx, "/escalations", url.Values{"project": {projectName}, "status": {"Pending"}}, &resp); err != nil {
		return nil, err
	}
	return resp.Steps, nil
}
