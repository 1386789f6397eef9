package model

import "strings"

// Song represents one K.K. Slider song with its metadata and the audio
// files available for it on the wiki.
//
// A Song is constructed once by the parser from a single wiki page fetch
// and is immutable afterwards: the downloader only reads it, so values can
// be shared across goroutines without locking.
//
// ImageURL may be empty (not every song page exposes cover art) and
// FileURLs may be empty (some pages list no audio at all); neither case is
// an error, the downloader simply has nothing to fetch.
type Song struct {
	// Title is the song title as shown on the wiki, e.g. "Bubblegum K.K.".
	Title string `json:"title"`

	// Number is the song's ordinal in the official song list.
	Number int `json:"number"`

	// WikiURL is the canonical URL of the song's wiki page.
	WikiURL string `json:"wiki_url"`

	// ImageURL is the URL of the song's cover image, or empty if the page
	// exposes none.
	ImageURL string `json:"image_url"`

	// FileURLs maps each available song kind to its audio file URL. Keys
	// are drawn from the closed SongKind enumeration.
	FileURLs map[SongKind]string `json:"song_file_urls"`
}

// HasImage returns true if the song has cover art available for download.
func (s *Song) HasImage() bool {
	return s.ImageURL != ""
}

// HasFiles returns true if at least one audio file is available.
func (s *Song) HasFiles() bool {
	return len(s.FileURLs) > 0
}

// FilelizedTitle returns the title transformed into a directory name:
// lower-cased, spaces replaced with underscores, periods removed.
//
// Example:
//
//	"Bubblegum K.K." -> "bubblegum_kk"
func (s *Song) FilelizedTitle() string {
	name := strings.ToLower(s.Title)
	name = strings.ReplaceAll(name, " ", "_")
	name = strings.ReplaceAll(name, ".", "")
	return name
}
