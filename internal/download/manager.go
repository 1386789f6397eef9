package download

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync/atomic"

	"github.com/charmbracelet/log"

	"github.com/kksliderdl/kk-downloader/internal/config"
	"github.com/kksliderdl/kk-downloader/internal/httpx"
	"github.com/kksliderdl/kk-downloader/internal/imaging"
	"github.com/kksliderdl/kk-downloader/internal/model"
	"github.com/kksliderdl/kk-downloader/internal/nookipedia"
	"github.com/kksliderdl/kk-downloader/internal/playlist"
	"github.com/kksliderdl/kk-downloader/internal/pool"
	"github.com/kksliderdl/kk-downloader/internal/retry"
	"github.com/kksliderdl/kk-downloader/internal/snapshot"
)

// Stage identifies where a run currently is. Stages are strictly
// sequential barriers: a stage only starts once all concurrent work of
// the previous one has finished.
type Stage int32

const (
	StageIdle Stage = iota
	StageDiscovering
	StageExtracting
	StagePersisting
	StageDownloading
	StageDone
	StageFailed
)

// String returns a human-readable stage name.
func (s Stage) String() string {
	switch s {
	case StageIdle:
		return "idle"
	case StageDiscovering:
		return "discovering"
	case StageExtracting:
		return "extracting metadata"
	case StagePersisting:
		return "persisting snapshot"
	case StageDownloading:
		return "downloading"
	case StageDone:
		return "done"
	case StageFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ProgressLevel indicates the severity/type of a progress message.
type ProgressLevel int

const (
	LevelInfo ProgressLevel = iota
	LevelVerbose
	LevelWarning
	LevelError
	LevelSuccess
)

// ProgressEvent represents a pipeline progress update.
type ProgressEvent struct {
	Message string
	Level   ProgressLevel
}

// Manager coordinates the whole pipeline: discovery, metadata
// extraction, snapshot persistence and the bulk asset download.
type Manager struct {
	settings *config.Settings
	client   *httpx.Client
	fetcher  *httpx.Fetcher
	parser   *nookipedia.Parser
	songlist *nookipedia.Songlist
	imaging  *imaging.Service
	policy   retry.Policy

	// DryRun stops the run after the snapshot is written; nothing is
	// downloaded.
	DryRun bool

	stage         atomic.Int32
	filesTotal    atomic.Int32
	filesDone     atomic.Int32
	bytesReceived atomic.Int64

	onProgress func(ProgressEvent)
}

// NewManager creates a Manager from settings.
//
// Settings are validated here, so a Manager can never exist with an
// unexecutable retry or concurrency budget; the returned error is a
// *config.ValidationError or *retry.InvalidPolicyError.
func NewManager(settings *config.Settings, onProgress func(ProgressEvent)) (*Manager, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	policy, err := retry.NewPolicy(settings.MaxRetries)
	if err != nil {
		return nil, err
	}

	client := httpx.NewClient(settings.HTTPTimeout())
	return &Manager{
		settings: settings,
		client:   client,
		fetcher:  httpx.NewFetcher(client, policy),
		parser:   nookipedia.NewParser(),
		songlist: nookipedia.NewSonglist(),
		imaging:  imaging.NewService(),
		policy:   policy,

		onProgress: onProgress,
	}, nil
}

// Stage returns the stage the run is currently in.
func (m *Manager) Stage() Stage {
	return Stage(m.stage.Load())
}

// Progress returns the download counters: files completed, files total,
// and bytes received so far.
func (m *Manager) Progress() (done, total int32, bytes int64) {
	return m.filesDone.Load(), m.filesTotal.Load(), m.bytesReceived.Load()
}

// Run executes the pipeline end to end and returns the final RunResult.
//
// Only two conditions are fatal and return an error: the discovery step
// and the snapshot write (including output directory setup). Individual
// songs failing to parse or download are recorded in the result and
// never abort the run.
func (m *Manager) Run(ctx context.Context) (*RunResult, error) {
	logger := log.FromContext(ctx)
	outputRoot := m.settings.OutputDir

	m.setStage(StageDiscovering)
	if err := os.MkdirAll(outputRoot, 0755); err != nil {
		m.setStage(StageFailed)
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	m.progress(ProgressEvent{Message: "Retrieving song list", Level: LevelInfo})
	urls, err := m.discover(ctx)
	if err != nil {
		m.setStage(StageFailed)
		return nil, fmt.Errorf("discovering songs: %w", err)
	}
	logger.Info("discovered songs", "count", len(urls))
	m.progress(ProgressEvent{Message: fmt.Sprintf("Found %d songs", len(urls)), Level: LevelInfo})

	m.setStage(StageExtracting)
	songs, extractionFailures := m.extractAll(ctx, urls)
	logger.Info("extracted metadata", "songs", len(songs), "failures", len(extractionFailures))

	m.setStage(StagePersisting)
	snapshotPath := filepath.Join(outputRoot, snapshot.FileName)
	if err := snapshot.Write(snapshotPath, songs); err != nil {
		m.setStage(StageFailed)
		return nil, err
	}
	m.progress(ProgressEvent{Message: fmt.Sprintf("Wrote %s", snapshot.FileName), Level: LevelVerbose})

	result := &RunResult{
		Discovered:         len(urls),
		Extracted:          len(songs),
		ExtractionFailures: extractionFailures,
	}

	if m.DryRun {
		m.setStage(StageDone)
		return result, nil
	}

	m.setStage(StageDownloading)
	m.countFiles(songs)
	reports := m.downloadAll(ctx, songs, outputRoot)

	for _, rep := range reports {
		if rep.OK() {
			result.Downloaded++
		} else {
			result.FailureReports = append(result.FailureReports, rep)
		}
	}

	if m.settings.CreatePlaylist {
		if err := m.writePlaylist(outputRoot, reports); err != nil {
			// The songs themselves are on disk; a failed playlist is only
			// worth a warning.
			logger.Warn("could not write playlist", "err", err)
			m.progress(ProgressEvent{Message: fmt.Sprintf("Error writing playlist: %v", err), Level: LevelWarning})
		}
	}

	m.setStage(StageDone)
	return result, nil
}

// discover fetches the listing page and extracts the song page URLs.
func (m *Manager) discover(ctx context.Context) ([]string, error) {
	listingURL := m.settings.BaseURL + m.settings.SonglistPath
	doc, err := m.fetcher.Document(ctx, listingURL)
	if err != nil {
		return nil, err
	}
	return m.songlist.SongURLs(doc, m.settings.BaseURL)
}

// extractAll fetches and parses every song page with bounded
// concurrency. Results stay in input order so each failure can be tied
// back to its URL; failed songs are dropped, never fatal.
func (m *Manager) extractAll(ctx context.Context, urls []string) ([]*model.Song, []ExtractionFailure) {
	logger := log.FromContext(ctx)

	results, err := pool.Map(ctx, urls, m.settings.MaxConcurrentDownloads, func(ctx context.Context, url string) (*model.Song, error) {
		doc, err := m.fetcher.Document(ctx, url)
		if err != nil {
			return nil, err
		}
		return m.parser.ParseSongPage(doc)
	})
	if err != nil {
		// The limit was validated at construction; this cannot happen.
		logger.Error("scheduling metadata extraction", "err", err)
		return nil, []ExtractionFailure{{Err: err}}
	}

	var songs []*model.Song
	var failures []ExtractionFailure
	for _, r := range results {
		if r.Err != nil {
			url := urls[r.Index]
			logger.Warn("skipping song, metadata extraction failed", "url", url, "err", r.Err)
			m.progress(ProgressEvent{Message: fmt.Sprintf("Error parsing %s: %v", url, r.Err), Level: LevelWarning})
			failures = append(failures, ExtractionFailure{URL: url, Err: r.Err})
			continue
		}
		songs = append(songs, r.Value)
	}
	return songs, failures
}

// downloadAll downloads every song's assets with bounded concurrency.
// Completion order is fine here: each report carries its own song
// reference, and throughput matters more than ordering.
func (m *Manager) downloadAll(ctx context.Context, songs []*model.Song, outputRoot string) []SongReport {
	results, err := pool.MapUnordered(ctx, songs, m.settings.MaxConcurrentDownloads, func(ctx context.Context, song *model.Song) (SongReport, error) {
		return m.downloadSong(ctx, song, outputRoot), nil
	})
	if err != nil {
		return nil
	}

	reports := make([]SongReport, 0, len(results))
	for _, r := range results {
		if r.Err != nil {
			// Unit never started (shutdown); report the whole song as failed.
			song := songs[r.Index]
			reports = append(reports, SongReport{
				Song:     song,
				Failures: []AssetFailure{{Asset: "song", URL: song.WikiURL, Err: r.Err}},
			})
			continue
		}
		reports = append(reports, r.Value)
	}
	return reports
}

// countFiles pre-computes the total number of files for progress
// reporting.
func (m *Manager) countFiles(songs []*model.Song) {
	var total int32
	for _, song := range songs {
		total += int32(len(song.FileURLs))
		if song.HasImage() {
			total++
		}
	}
	m.filesTotal.Store(total)
}

// writePlaylist renders an M3U playlist over everything that was
// actually downloaded, ordered by song number then kind.
func (m *Manager) writePlaylist(outputRoot string, reports []SongReport) error {
	var entries []playlist.Entry
	for _, rep := range reports {
		for _, kind := range rep.DownloadedKinds {
			entries = append(entries, playlist.Entry{Song: rep.Song, Kind: kind})
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Song.Number != entries[j].Song.Number {
			return entries[i].Song.Number < entries[j].Song.Number
		}
		return entries[i].Kind < entries[j].Kind
	})

	content := playlist.NewCreator(m.settings.M3UExtended).Create(entries)
	return os.WriteFile(filepath.Join(outputRoot, "playlist.m3u"), []byte(content), 0644)
}

func (m *Manager) setStage(s Stage) {
	m.stage.Store(int32(s))
}

func (m *Manager) progress(event ProgressEvent) {
	if m.onProgress != nil {
		m.onProgress(event)
	}
}
