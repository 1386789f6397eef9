package download

import (
	"github.com/kksliderdl/kk-downloader/internal/model"
)

// AssetFailure records one asset that could not be downloaded after the
// retry budget was spent.
type AssetFailure struct {
	// Asset names what failed: "image" or a song kind's file name.
	Asset string

	// URL is the asset's source URL.
	URL string

	// Err is the final error, typically a *retry.ExhaustedError.
	Err error
}

// SongReport aggregates the download outcome for one song. An empty
// Failures list means every available asset was fetched; failures are
// itemized per asset so one bad file never hides its siblings' results.
type SongReport struct {
	Song *model.Song

	// DownloadedKinds lists the audio variants that were written
	// successfully, in canonical kind order.
	DownloadedKinds []model.SongKind

	// Failures holds one entry per asset that exhausted its retries.
	Failures []AssetFailure
}

// OK reports whether every asset of the song was downloaded.
func (r *SongReport) OK() bool {
	return len(r.Failures) == 0
}

// ExtractionFailure records one song page whose metadata could not be
// extracted. The song is dropped from the run; siblings are unaffected.
type ExtractionFailure struct {
	URL string
	Err error
}

// RunResult is the pipeline's final state, produced once the run
// reaches Done.
type RunResult struct {
	// Discovered is the number of song URLs found on the listing page.
	Discovered int

	// Extracted is the number of songs whose metadata parsed successfully.
	Extracted int

	// Downloaded is the number of songs whose every asset was fetched.
	Downloaded int

	// ExtractionFailures itemizes the dropped songs.
	ExtractionFailures []ExtractionFailure

	// FailureReports holds the report of every song that had at least one
	// asset failure. Fully successful songs are not listed.
	FailureReports []SongReport
}

// HasDownloadFailures reports whether any song ended with a non-empty
// failure report.
func (r *RunResult) HasDownloadFailures() bool {
	return len(r.FailureReports) > 0
}
