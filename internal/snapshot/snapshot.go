// Package snapshot persists the collected song metadata to disk.
//
// The snapshot is a pretty-printed JSON array of song records written
// before any download starts, so a failed run still leaves a reliable
// record of what was attempted.
package snapshot

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/kksliderdl/kk-downloader/internal/model"
)

// FileName is the snapshot's file name inside the output root.
const FileName = "song_infos.json"

// Write serializes songs as a pretty-printed JSON array to path.
//
// Serialization failures and file I/O failures are both returned wrapped;
// the caller treats either as fatal because downloads without a metadata
// record are not worth having.
func Write(path string, songs []*model.Song) error {
	if songs == nil {
		// A run that found nothing still writes an array, never null.
		songs = []*model.Song{}
	}
	data, err := json.MarshalIndent(songs, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding song snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing song snapshot: %w", err)
	}
	return nil
}

// Read loads a snapshot back from disk. Used by tooling and tests; the
// pipeline itself only writes.
func Read(path string) ([]*model.Song, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading song snapshot: %w", err)
	}
	var songs []*model.Song
	if err := json.Unmarshal(data, &songs); err != nil {
		return nil, fmt.Errorf("decoding song snapshot: %w", err)
	}
	return songs, nil
}
