// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/NationalGenomicsInfrastructure/LIMS2DB/internal/notify"
	"github.com/NationalGenomicsInfrastructure/LIMS2DB/internal/worker"
)

var projectCmd = &cobra.Command{
	Use:   "project [project-id...]",
	Short: "Extract project documents from the LIMS",
	Long: `Project walks the provenance records of one or more projects and
assembles each into its hierarchical document. Without --upload the
document is written as JSON to --output or stdout; with --upload it is
reconciled against the stored copy in the status database and saved.

Projects are named by LIMS id, by --name, or with --all, which updates
every project modified within the --hours window using a worker pool
guarded by per-project lock files.`,
	RunE: runProject,
}

func runProject(cmd *cobra.Command, args []string) error {
	p, err := newPipeline(cmd)
	if err != nil {
		return err
	}
	defer p.close()

	ctx := cmd.Context()
	upload, _ := cmd.Flags().GetBool("upload")
	output, _ := cmd.Flags().GetString("output")
	input, _ := cmd.Flags().GetString("input")
	keepModTime, _ := cmd.Flags().GetBool("no-new-modification-time")

	if upload && p.store == nil {
		return fmt.Errorf("statusdb.url is not configured")
	}

	// A prepared document bypasses extraction entirely.
	if input != "" {
		doc, err := readDocument(input)
		if err != nil {
			return err
		}
		if !upload {
			return writeDocument(doc, output)
		}
		result, err := p.store.SaveProject(ctx, doc, keepModTime)
		if err != nil {
			return err
		}
		p.log.Info("prepared document processed", zap.Bool("saved", result.Saved))
		return nil
	}

	all, _ := cmd.Flags().GetBool("all")
	if all {
		return runAllProjects(ctx, cmd, p, keepModTime)
	}

	ids, err := resolveProjectIDs(ctx, cmd, p, args)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return fmt.Errorf("no project given: pass project ids, --name, or --all")
	}

	for _, id := range ids {
		doc, err := p.extract(ctx, id)
		if err != nil {
			return fmt.Errorf("extracting project %s: %w", id, err)
		}
		if !upload {
			if err := writeDocument(doc, output); err != nil {
				return err
			}
			continue
		}
		result, err := p.store.SaveProject(ctx, doc, keepModTime)
		if err != nil {
			return fmt.Errorf("saving project %s: %w", id, err)
		}
		if result.Saved {
			p.log.Info("project saved", zap.String("project", id))
		} else {
			p.log.Info("project unchanged", zap.String("project", id))
		}
	}
	return nil
}

// runAllProjects updates every recently modified project through the
// worker pool, mailing the operator about failures.
func runAllProjects(ctx context.Context, cmd *cobra.Command, p *pipeline, keepModTime bool) error {
	if p.store == nil {
		return fmt.Errorf("--all requires statusdb.url: bulk runs always upload")
	}
	hours, _ := cmd.Flags().GetInt("hours")
	if hours == 0 {
		hours = p.cfg.Sync.Hours
	}

	ids, err := p.loader.Client.RecentProjectIDs(ctx, hours)
	if err != nil {
		return fmt.Errorf("listing projects: %w", err)
	}
	p.log.Info("starting bulk update", zap.Int("projects", len(ids)), zap.Int("hours", hours))

	mailer := notify.NewMailer(p.cfg.Notify)
	pool := &worker.Pool{
		Workers: p.cfg.Sync.Workers,
		LockDir: p.cfg.Sync.LockDir,
		Log:     p.log,
	}
	summary := pool.Run(ctx, ids, func(ctx context.Context, id string) error {
		doc, err := p.extract(ctx, id)
		if err == nil {
			_, err = p.store.SaveProject(ctx, doc, keepModTime)
		}
		if err != nil {
			if mailErr := mailer.Failure(id, err); mailErr != nil {
				p.log.Warn("failure mail not sent", zap.Error(mailErr))
			}
		}
		return err
	})

	p.log.Info("bulk update finished",
		zap.Int("done", summary.Done),
		zap.Int("failed", summary.Failed),
		zap.Int("skipped", summary.Skipped))
	if err := mailer.RunSummary(summary.Done, summary.Failed, summary.Skipped); err != nil {
		p.log.Warn("summary mail not sent", zap.Error(err))
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d project(s) failed", summary.Failed)
	}
	return nil
}

// resolveProjectIDs turns the positional args and --name into LIMS ids.
func resolveProjectIDs(ctx context.Context, cmd *cobra.Command, p *pipeline, args []string) ([]string, error) {
	ids := append([]string(nil), args...)
	name, _ := cmd.Flags().GetString("name")
	if name != "" {
		id, err := p.loader.Client.ProjectIDByName(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("resolving project name %q: %w", name, err)
		}
		if id == "" {
			return nil, fmt.Errorf("no project named %q", name)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func readDocument(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading document %s: %w", path, err)
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing document %s: %w", path, err)
	}
	return doc, nil
}

func writeDocument(doc map[string]any, output string) error {
	out := os.Stdout
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()
		out = f
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

func init() {
	projectCmd.Flags().String("name", "", "resolve a project by name instead of id")
	projectCmd.Flags().Bool("all", false, "update every recently modified project")
	projectCmd.Flags().Int("hours", 0, "with --all, only projects modified within this window (0 = config default)")
	projectCmd.Flags().Bool("upload", false, "reconcile and save into the status database")
	projectCmd.Flags().String("output", "", "write the assembled document to this file instead of stdout")
	projectCmd.Flags().String("input", "", "upload a prepared JSON document instead of extracting")
	projectCmd.Flags().Bool("no-new-modification-time", false, "save without bumping the modification time")

	rootCmd.AddCommand(projectCmd)
}
