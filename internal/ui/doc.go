// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI provides a multi-view workflow for browsing listening statistics:
//  1. [MenuView] : Choose a statistics surface
//  2. [TrackListView] : Browse top tracks
//  3. [ArtistListView] : Browse top artists
//  4. [WrappedView] : Display the year-in-review summary
//  5. [RadarView] : Browse fresh releases from followed artists
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern.
// Data loads happen in tea.Cmd closures so the event loop never blocks on the network.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
