// Package curate implements the daypart playlist curation pipeline.
//
// The core abstraction is Engine, which orchestrates a run end to end:
// candidate fetch, exclusion filtering, duplicate resolution, diversity
// enforcement, similarity cache population, sequencing, and naming. The
// stages are also exported as standalone functions so callers can run
// partial pipelines, and operations emit progress updates via channels for
// non-blocking status reporting to CLI/UI layers.
package curate
