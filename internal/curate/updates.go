package curate

import (
	"fmt"

	"github.com/desertthunder/meloday/internal/models"
)

// ProgressUpdate represents a progress event during a curation run.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Pipeline phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Pipeline phase enumeration
type Phase int

const (
	PhaseFetchCandidates Phase = iota
	PhaseFilterExclusions
	PhaseResolveDuplicates
	PhaseExpandPool
	PhaseEnforceDiversity
	PhaseBuildSimilarity
	PhaseSequenceTracks
	PhaseDescribePlaylist
	PhasePersistRun
)

func (p Phase) String() string {
	switch p {
	case PhaseFetchCandidates:
		return "fetch_candidates"
	case PhaseFilterExclusions:
		return "filter_exclusions"
	case PhaseResolveDuplicates:
		return "resolve_duplicates"
	case PhaseExpandPool:
		return "expand_pool"
	case PhaseEnforceDiversity:
		return "enforce_diversity"
	case PhaseBuildSimilarity:
		return "build_similarity"
	case PhaseSequenceTracks:
		return "sequence_tracks"
	case PhaseDescribePlaylist:
		return "describe_playlist"
	case PhasePersistRun:
		return "persist_run"
	default:
		return ""
	}
}

func fetchCandidatesUpdate(period string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   PhaseFetchCandidates,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Fetching %s listening history from Plex...", period),
	}
}

func fetchedCandidatesUpdate(count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   PhaseFetchCandidates,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Found %d candidate tracks", count),
	}
}

func filterExclusionsUpdate(before, after int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   PhaseFilterExclusions,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Filtered %d excluded or low-rated tracks", before-after),
	}
}

func resolveDuplicatesUpdate(before, after int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   PhaseResolveDuplicates,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Collapsed %d duplicate copies (%d unique tracks)", before-after, after),
	}
}

func expandPoolUpdate(have, want int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   PhaseExpandPool,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Sparse history (%d of %d tracks), pulling in sonically similar tracks...", have, want),
	}
}

func enforceDiversityUpdate(kept int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   PhaseEnforceDiversity,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Kept %d tracks within artist and genre caps", kept),
	}
}

func buildSimilarityUpdate(step, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   PhaseBuildSimilarity,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Fetching sonic neighbors...", step, total),
	}
}

func sequenceTracksUpdate(count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   PhaseSequenceTracks,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Sequencing %d tracks for smooth transitions...", count),
	}
}

func describePlaylistUpdate(title string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   PhaseDescribePlaylist,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Named playlist: %s", title),
	}
}

func persistRunUpdate(playlist *models.CuratedPlaylist) ProgressUpdate {
	return ProgressUpdate{
		Phase:   PhasePersistRun,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Saved run: %s (%d tracks)", playlist.Title, len(playlist.Tracks)),
		Data:    playlist,
	}
}
