package main

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/meloday/internal/curate"
	"github.com/desertthunder/meloday/internal/formatter"
	"github.com/desertthunder/meloday/internal/shared"
	"github.com/urfave/cli/v3"
)

// Curate runs the full curation pipeline for a listening period.
func (r *Runner) Curate(ctx context.Context, cmd *cli.Command) error {
	if r.catalog == nil {
		return fmt.Errorf("%w: configure plex.url and plex.token first", shared.ErrCatalogUnavailable)
	}

	period := cmd.String("period")
	persist := cmd.Bool("save")

	if persist {
		if err := r.ensureDatabase(); err != nil {
			return err
		}
	}

	r.logger.Info("starting curation", "period", period, "save", persist)

	progressCh := make(chan curate.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progressCh {
			switch update.Phase {
			case curate.PhaseFetchCandidates:
				r.writePlain("📥 %s\n", update.Message)
			case curate.PhaseBuildSimilarity:
				if update.Step == 1 {
					r.writePlain("\n🔍 %s\n", update.Message)
				}
			case curate.PhaseSequenceTracks:
				r.writePlain("🎞  %s\n", update.Message)
			case curate.PhaseDescribePlaylist:
				r.writePlain("📝 %s\n", update.Message)
			default:
				r.writePlain("   %s\n", update.Message)
			}
		}
	}()

	result, err := r.engine.Run(ctx, progressCh, period, persist)
	close(progressCh)
	<-done

	if err != nil {
		return err
	}

	playlist := result.Playlist

	if cmd.Bool("json") {
		return r.writeJSON(playlist, cmd.Bool("pretty"))
	}

	r.writePlain("\n")
	r.writePlainHeader(playlist.Title)
	r.writePlain("%s\n\n", playlist.Description)
	for i, track := range playlist.Tracks {
		r.writePlain("  %d. %s - %s", i+1, track.Artist, track.Title)
		if track.Album != "" {
			r.writePlain(" (%s)", track.Album)
		}
		r.writePlain("\n")
	}
	r.writePlain("\nCandidates: %d, after dedup: %d, sequenced: %d in %s\n",
		result.Candidates, result.Resolved, result.Sequenced, result.ElapsedTime.Round(time.Millisecond))

	if result.Run != nil {
		r.writePlain("Recorded as run #%d (%s)\n", result.Run.Sequence(), result.Run.ID())
	}

	if format := cmd.String("export"); format != "" {
		path, err := formatter.WriteExport(playlist, format, cmd.String("output"))
		if err != nil {
			return err
		}
		r.writePlain("Exported to %s\n", path)
	}

	return nil
}

// Preview shows the deduplicated, diversity-capped candidate pool for a period.
func (r *Runner) Preview(ctx context.Context, cmd *cli.Command) error {
	if r.catalog == nil {
		return fmt.Errorf("%w: configure plex.url and plex.token first", shared.ErrCatalogUnavailable)
	}

	schedule := r.engine.Schedule()
	period := cmd.String("period")
	if period == "" {
		period = schedule.PeriodFor(time.Now().Hour())
	}

	hours := schedule.HoursFor(period)
	if len(hours) == 0 {
		return fmt.Errorf("%w: unknown period %q", shared.ErrInvalidArgument, period)
	}

	candidates, err := r.catalog.FetchCandidates(ctx, hours, r.config.Playlist.HistoryLookbackDays)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	pool := curate.FilterLowRated(candidates)
	pool = curate.ResolveDuplicates(pool)
	pool = curate.EnforceDiversity(pool, r.config.Playlist.MaxTracks*2,
		r.config.Playlist.ArtistFraction, r.config.Playlist.GenreFraction)

	limit := int(cmd.Int("limit"))
	if limit > 0 && limit < len(pool) {
		pool = pool[:limit]
	}

	if cmd.Bool("json") {
		return r.writeJSON(pool, true)
	}

	r.writePlainHeader(fmt.Sprintf("Candidate pool for %s (%d of %d fetched)", period, len(pool), len(candidates)))
	for i, track := range pool {
		r.writePlain("  %d. %s - %s [%s]\n", i+1, track.Artist, track.Title, track.PrimaryGenre())
	}

	return nil
}

// Similar lists sonically similar tracks for a track ID.
func (r *Runner) Similar(ctx context.Context, cmd *cli.Command) error {
	if r.catalog == nil {
		return fmt.Errorf("%w: configure plex.url and plex.token first", shared.ErrCatalogUnavailable)
	}

	trackID := cmd.StringArg("id")
	if trackID == "" {
		return fmt.Errorf("%w: track ID", shared.ErrMissingArgument)
	}

	limit := int(cmd.Int("limit"))
	if limit <= 0 {
		limit = r.config.Playlist.SonicSimilarLimit
	}

	neighbors, err := r.catalog.SonicNeighbors(ctx, trackID, limit)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(map[string]any{"track_id": trackID, "neighbors": neighbors}, true)
	}

	r.writePlainHeader(fmt.Sprintf("Sonic neighbors of %s", trackID))
	for i, id := range neighbors {
		if track, err := r.catalog.Track(ctx, id); err == nil {
			r.writePlain("  %d. %s - %s\n", i+1, track.Artist, track.Title)
		} else {
			r.writePlain("  %d. %s\n", i+1, id)
		}
	}

	return nil
}
