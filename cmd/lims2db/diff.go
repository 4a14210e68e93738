// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/NationalGenomicsInfrastructure/LIMS2DB/internal/document"
)

var diffCmd = &cobra.Command{
	Use:   "diff <project-id>",
	Short: "Compare a fresh extraction against the stored or archived copy",
	Long: `Diff extracts the project document and compares it against the copy
stored in the status database, or with --snapshot against the latest
locally archived document. Divergent paths are printed one per line;
keys present on only one side are reported only when their value is
non-empty.`,
	Args: cobra.ExactArgs(1),
	RunE: runDiff,
}

func runDiff(cmd *cobra.Command, args []string) error {
	p, err := newPipeline(cmd)
	if err != nil {
		return err
	}
	defer p.close()

	ctx := cmd.Context()
	projectID := args[0]

	fresh, err := p.extract(ctx, projectID)
	if err != nil {
		return fmt.Errorf("extracting project %s: %w", projectID, err)
	}

	useSnapshot, _ := cmd.Flags().GetBool("snapshot")
	var stored map[string]any
	switch {
	case useSnapshot:
		stored, err = p.snaps.Latest(ctx, projectID)
		if err != nil {
			return err
		}
		if stored == nil {
			return fmt.Errorf("no snapshot archived for project %s", projectID)
		}
	default:
		if p.store == nil {
			return fmt.Errorf("statusdb.url is not configured; use --snapshot for offline diffs")
		}
		name, _ := fresh["project_name"].(string)
		stored, err = p.store.StoredProject(ctx, name)
		if err != nil {
			return err
		}
		if stored == nil {
			return fmt.Errorf("no stored document for project %s", projectID)
		}
	}
	for _, key := range []string{"_id", "_rev", "creation_time", "modification_time"} {
		delete(stored, key)
	}

	diffs := document.Diff(fresh, stored, "")

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(diffs)
	}

	paths := make([]string, 0, len(diffs))
	for path := range diffs {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	for _, path := range paths {
		pair := diffs[path]
		fmt.Printf("%s: %v != %v\n", path, pair[0], pair[1])
	}
	fmt.Printf("\n%d divergent path(s)\n", len(paths))
	return nil
}

func init() {
	diffCmd.Flags().Bool("snapshot", false, "compare against the latest local snapshot instead of the stored document")
	diffCmd.Flags().Bool("json", false, "output the diff as JSON")

	rootCmd.AddCommand(diffCmd)
}
