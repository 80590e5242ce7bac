// package tasks implements the song recognition pipeline and library operations.
//
// The core abstraction is PipelineEngine, which orchestrates clip acquisition,
// audio fingerprinting, and catalog candidate ranking. Operations emit progress
// updates via channels for non-blocking status reporting to CLI/UI layers.
// Librarian handles the post-recognition library work (saving, sorting,
// vibe analysis) against a user-scoped catalog client.
package tasks
