// Package models defines the domain entities exchanged between the recognition
// pipeline, the HTTP layer, and the CLI surfaces.
//
// All types are plain data transfer objects; nothing here is persisted. The
// service keeps only process-lifetime state (admission windows, credential
// pools), so there is no repository layer behind these types.
//
//   - [Fingerprint] : best-guess title/artist from the audio recognition service
//   - [Recognition] : final pipeline outcome in the shape the web client consumes
//   - [SaveResult] : outcome of saving a track to the user's Spotify library
//   - [Vibe] : one-sentence mood summary of recently saved songs
package models
