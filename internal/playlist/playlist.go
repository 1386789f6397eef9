// Package playlist generates an M3U playlist over the downloaded song
// files, so the output directory can be dropped straight into a player.
package playlist

import (
	"fmt"
	"path"
	"strings"

	"github.com/kksliderdl/kk-downloader/internal/model"
)

// Entry is one playlist line: a song plus the kind of file that was
// actually downloaded for it.
type Entry struct {
	Song *model.Song
	Kind model.SongKind
}

// Creator generates M3U playlist content.
//
// Paths in the playlist are relative to the output root (the playlist's
// own directory), e.g. "bubblegum_kk/live.flac".
type Creator struct {
	extended bool // include #EXTINF lines with the song title
}

// NewCreator creates a Creator. With extended set, #EXTINF lines carrying
// the song title and variant are emitted before each path.
func NewCreator(extended bool) *Creator {
	return &Creator{extended: extended}
}

// Create renders the playlist for the given entries.
func (c *Creator) Create(entries []Entry) string {
	var sb strings.Builder

	if c.extended {
		sb.WriteString("#EXTM3U\n")
	}

	for _, e := range entries {
		if c.extended {
			// Durations are unknown without decoding the files; -1 is the
			// M3U convention for "unspecified".
			fmt.Fprintf(&sb, "#EXTINF:-1,%s (%s)\n", e.Song.Title, e.Kind)
		}
		sb.WriteString(path.Join(e.Song.FilelizedTitle(), e.Kind.FileName()+".flac"))
		sb.WriteString("\n")
	}

	return sb.String()
}
