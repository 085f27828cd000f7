package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/meloday/internal/models"
	"github.com/desertthunder/meloday/internal/shared"
	"github.com/urfave/cli/v3"
)

// RunsList lists recorded curation runs, newest first.
func (r *Runner) RunsList(ctx context.Context, cmd *cli.Command) error {
	if err := r.ensureDatabase(); err != nil {
		return err
	}

	criteria := map[string]any{}
	if period := cmd.String("period"); period != "" {
		criteria["period"] = period
	}
	if limit := int(cmd.Int("limit")); limit > 0 {
		criteria["limit"] = limit
	}

	runs, err := r.runs.List(criteria)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(runSummaries(runs), true)
	}

	if len(runs) == 0 {
		r.writePlain("No runs recorded yet. Try 'meloday curate' first.\n")
		return nil
	}

	r.writePlainHeader(fmt.Sprintf("Curation runs (%d)", len(runs)))
	for _, run := range runs {
		r.writePlain("  #%d %s [%s] %d tracks, %s\n",
			run.Sequence(), run.Title(), run.Period(), run.TrackCount(),
			run.CreatedAt().Format("2006-01-02 15:04"))
	}

	return nil
}

// RunsLatest shows the most recent run, optionally per period.
func (r *Runner) RunsLatest(ctx context.Context, cmd *cli.Command) error {
	if err := r.ensureDatabase(); err != nil {
		return err
	}

	run, err := r.runs.Latest(cmd.String("period"))
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(runSummary(run), true)
	}

	r.writePlainHeader(run.Title())
	r.writePlain("%s\n\n", run.Description())
	r.writePlain("Run #%d for %s, recorded %s\n", run.Sequence(), run.Period(),
		run.CreatedAt().Format("2006-01-02 15:04"))
	r.writePlain("Tracks: %d\n", run.TrackCount())

	return nil
}

// RunsDelete deletes a recorded run by ID.
func (r *Runner) RunsDelete(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: run ID", shared.ErrMissingArgument)
	}

	if err := r.ensureDatabase(); err != nil {
		return err
	}

	if err := r.runs.Delete(id); err != nil {
		return err
	}

	r.writePlain("Deleted run %s\n", id)
	return nil
}

// runSummary flattens a run's accessors into a JSON-friendly map.
func runSummary(run *models.CurationRun) map[string]any {
	return map[string]any{
		"id":          run.ID(),
		"sequence":    run.Sequence(),
		"period":      run.Period(),
		"title":       run.Title(),
		"description": run.Description(),
		"track_ids":   run.TrackIDs(),
		"track_count": run.TrackCount(),
		"created_at":  run.CreatedAt(),
	}
}

func runSummaries(runs []*models.CurationRun) []map[string]any {
	out := make([]map[string]any, len(runs))
	for i, run := range runs {
		out[i] = runSummary(run)
	}
	return out
}
