// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package statusdb

import (
	"context"
	"fmt"
	"net/http"
	"reflect"
	"time"

	"github.com/NationalGenomicsInfrastructure/LIMS2DB/internal/document"
)

// bookkeeping keys are store metadata, excluded when deciding whether a
// document actually changed.
var bookkeeping = []string{"_id", "_rev", "creation_time", "modification_time"}

// SaveResult reports what SaveProject did.
type SaveResult struct {
	// Saved is false when the merged document matched the stored copy
	// and no write was issued.
	Saved bool

	// Doc is the document as written (or as it would have been written).
	Doc map[string]any
}

// SaveProject reconciles a freshly extracted project document with the
// stored copy and writes the result. Fresh values win on every leaf;
// fields present only in the stored copy survive. When the store holds
// duplicate documents for the project name, the extras are deleted.
//
// keepModTime suppresses the modification-time bump, for backfills that
// should not look like recent activity.
func (c *Client) SaveProject(ctx context.Context, fresh map[string]any, keepModTime bool) (*SaveResult, error) {
	name, _ := fresh["project_name"].(string)
	if name == "" {
		return nil, fmt.Errorf("project document has no project_name")
	}
	rows, err := c.viewDocs(ctx, c.projectsDB, "project", "project_name", name)
	if err != nil {
		return nil, fmt.Errorf("fetching stored project %s: %w", name, err)
	}
	if len(rows) > 1 {
		for _, row := range rows[1:] {
			rev, _ := row.Doc["_rev"].(string)
			if err := c.delete(ctx, c.projectsDB, row.ID, rev); err != nil {
				return nil, fmt.Errorf("removing duplicate document for %s: %w", name, err)
			}
		}
	}

	now := c.now().UTC().Format(time.RFC3339)

	if len(rows) == 0 {
		fresh["creation_time"] = now
		fresh["modification_time"] = now
		if err := c.do(ctx, http.MethodPost, "/"+c.projectsDB, nil, fresh, nil); err != nil {
			return nil, fmt.Errorf("creating document for %s: %w", name, err)
		}
		return &SaveResult{Saved: true, Doc: fresh}, nil
	}

	stored := rows[0].Doc
	merged := document.Merge(fresh, stored)
	for _, key := range bookkeeping {
		if v, ok := stored[key]; ok {
			merged[key] = v
		} else {
			delete(merged, key)
		}
	}

	if reflect.DeepEqual(stripBookkeeping(merged), stripBookkeeping(stored)) {
		return &SaveResult{Saved: false, Doc: merged}, nil
	}

	if !keepModTime {
		merged["modification_time"] = now
	}
	if _, ok := merged["creation_time"]; !ok {
		merged["creation_time"] = now
	}
	id, _ := merged["_id"].(string)
	if err := c.put(ctx, c.projectsDB, id, merged); err != nil {
		return nil, fmt.Errorf("saving document for %s: %w", name, err)
	}
	return &SaveResult{Saved: true, Doc: merged}, nil
}

func stripBookkeeping(doc map[string]any) map[string]any {
	out := make(map[string]any, len(doc))
	for k, v := range doc {
		out[k] = v
	}
	for _, key := range bookkeeping {
		delete(out, key)
	}
	return out
}

// Metrics adapts the client to the assembler's metrics lookup, capturing
// the context of the extraction pass.
type Metrics struct {
	Ctx    context.Context
	Client *Client
}

func (m *Metrics) SampleRunID(runID string) string {
	return m.Client.FindSampleRunID(m.Ctx, runID)
}
