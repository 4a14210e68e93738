// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/NationalGenomicsInfrastructure/LIMS2DB/internal/assemble"
	"github.com/NationalGenomicsInfrastructure/LIMS2DB/internal/catalog"
	"github.com/NationalGenomicsInfrastructure/LIMS2DB/internal/classify"
	"github.com/NationalGenomicsInfrastructure/LIMS2DB/internal/lims"
	"github.com/NationalGenomicsInfrastructure/LIMS2DB/internal/snapshot"
	"github.com/NationalGenomicsInfrastructure/LIMS2DB/internal/statusdb"
	"github.com/NationalGenomicsInfrastructure/LIMS2DB/pkg/types"
)

// pipeline bundles the wired-up stages one command invocation works with.
type pipeline struct {
	cfg    types.PipelineConfig
	log    *zap.Logger
	cat    *catalog.Catalog
	loader *lims.Loader
	store  *statusdb.Client
	snaps  *snapshot.Store
}

// newPipeline builds the stages from configuration.
func newPipeline(cmd *cobra.Command) (*pipeline, error) {
	log, err := newLogger(cmd)
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}

	cfg := pipelineConfig()
	cat := catalog.Default()
	if cfg.Catalog.Path != "" {
		cat, err = catalog.Load(cfg.Catalog.Path)
		if err != nil {
			return nil, err
		}
	}
	if cfg.LIMS.BaseURL == "" {
		return nil, fmt.Errorf("lims.base_url is not configured")
	}

	snaps, err := snapshot.NewStore(cfg.Snapshot)
	if err != nil {
		return nil, err
	}

	p := &pipeline{
		cfg:   cfg,
		log:   log,
		cat:   cat,
		snaps: snaps,
	}
	p.loader = &lims.Loader{
		Client:  lims.NewClient(cfg.LIMS),
		Catalog: cat,
		Log:     log,
	}
	if cfg.StatusDB.URL != "" {
		p.store = statusdb.NewClient(cfg.StatusDB)
	}
	return p, nil
}

func (p *pipeline) close() {
	p.snaps.Close()
	p.log.Sync()
}

// extract loads one project from the LIMS and assembles its document.
// The assembled document is archived as a local snapshot before it is
// returned; a snapshot failure is logged, not fatal.
func (p *pipeline) extract(ctx context.Context, projectID string) (map[string]any, error) {
	data, err := p.loader.Load(ctx, projectID)
	if err != nil {
		return nil, err
	}

	sa := &assemble.SampleAssembler{
		Catalog:    p.cat,
		Classifier: classify.New(p.cat),
		Source:     data.Source,
		Resolver:   data.Resolver,
		LibValQCs:  data.LibValQCs,
		Runs:       data.Runs,
		InitQCs:    data.InitQCs,
	}
	if p.store != nil {
		sa.Metrics = &statusdb.Metrics{Ctx: ctx, Client: p.store}
	}
	doc := (&assemble.ProjectAssembler{Samples: sa}).Build(data.Input)

	if err := p.snaps.Save(ctx, projectID, doc); err != nil {
		p.log.Warn("snapshot failed", zap.String("project", projectID), zap.Error(err))
	}
	return doc, nil
}
