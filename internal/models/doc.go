// Package models defines domain entities and persistence interfaces for the Meloday playlist curation service.
//
// The package contains two categories of types:
//
// 1. Value snapshots: Lightweight structs representing catalog data for one curation run
//   - [Track] : Song metadata with album classification, genres, moods and play history
//   - [CuratedPlaylist] : Ordered curation output bounded by anchor tracks
//
// 2. Persistent Entities: Database-backed models with full lifecycle management
//   - [CurationRun] : A completed curation run with its period, naming and ordered track IDs
//
// All persistent entities implement the Model interface providing ID generation, timestamps, validation, and soft delete support.
// The Repository[T] interface defines standard CRUD operations for database access.
package models
