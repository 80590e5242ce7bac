// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI provides a three-view workflow for song recognition:
//  1. [InputView] : Paste a video URL to identify
//  2. [RecognizeView] : Watch the pipeline progress (download, fingerprint, search)
//  3. [ResultView] : Display the matched track with its Spotify link
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern.
// Progress updates flow through a channel from the PipelineEngine, providing
// non-blocking status reporting while a clip is processed.
package ui
