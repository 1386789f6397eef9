// Package download orchestrates the full pipeline for mirroring the
// K.K. Slider discography from Nookipedia.
//
// # Manager
//
// The Manager drives the run end to end:
//
//  1. Fetch the song listing page and discover song page URLs
//  2. Extract metadata from every song page concurrently
//  3. Persist the metadata snapshot (song_infos.json)
//  4. Download cover art and every audio variant concurrently
//  5. Generate an M3U playlist (optional)
//
// # Basic Usage
//
//	manager, err := download.NewManager(settings, func(event download.ProgressEvent) {
//	    fmt.Println(event.Message)
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := manager.Run(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # Failure Isolation
//
// Only discovery and the snapshot write are fatal. A song page that
// fails to parse is dropped and recorded in RunResult.ExtractionFailures;
// an asset that exhausts its retry budget is recorded in the song's
// SongReport. One bad song never stops its siblings.
//
// # Progress Tracking
//
// Progress is reported two ways: push, via the ProgressEvent callback,
// and pull, via Stage() and Progress(), which are safe to poll from
// another goroutine while Run is executing.
package download
