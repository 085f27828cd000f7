// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI provides a multi-view workflow for playlist curation:
//  1. [PeriodListView] : Browse the daypart schedule and pick a listening period
//  2. [ConfirmView] : Confirm the curation run
//  3. [CurateView] : Monitor real-time pipeline progress updates
//  4. [ResultView] : Display the curated playlist and run metadata
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern.
// Progress updates flow through a channel from the curation Engine, providing
// non-blocking status reporting while the pipeline runs.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, y/n, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
