package download

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/charmbracelet/log"

	"github.com/kksliderdl/kk-downloader/internal/model"
	"github.com/kksliderdl/kk-downloader/internal/retry"
)

// UnsupportedImageError reports a cover image URL whose file extension is
// not a supported image type.
type UnsupportedImageError struct {
	URL string
	Ext string
}

func (e *UnsupportedImageError) Error() string {
	return fmt.Sprintf("unsupported image extension %q in %s", e.Ext, e.URL)
}

var supportedImageExts = map[string]struct{}{
	".png":  {},
	".jpg":  {},
	".jpeg": {},
	".gif":  {},
	".webp": {},
}

// imageExt extracts and validates the file extension of an image URL.
func imageExt(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parsing image URL %s: %w", rawURL, err)
	}
	ext := strings.ToLower(path.Ext(u.Path))
	if _, ok := supportedImageExts[ext]; !ok {
		return "", &UnsupportedImageError{URL: rawURL, Ext: ext}
	}
	return ext, nil
}

// downloadSong downloads the cover image and every available audio
// variant of one song into its own directory under outputRoot.
//
// Each asset is retried independently; a failure downloading one never
// stops the others, all failures end up itemized in the report. A song
// with no image and no files is a no-op with an empty report.
func (m *Manager) downloadSong(ctx context.Context, song *model.Song, outputRoot string) SongReport {
	logger := log.FromContext(ctx).With("title", song.Title)
	report := SongReport{Song: song}

	if !song.HasImage() && !song.HasFiles() {
		logger.Debug("nothing to download")
		return report
	}

	dir := filepath.Join(outputRoot, song.FilelizedTitle())
	if err := os.MkdirAll(dir, 0755); err != nil {
		// Without the directory no asset can be written; report every
		// asset as failed rather than trying each one.
		logger.Warn("could not create song directory", "err", err)
		if song.HasImage() {
			report.Failures = append(report.Failures, AssetFailure{Asset: "image", URL: song.ImageURL, Err: err})
		}
		for _, kind := range model.Kinds() {
			if url, ok := song.FileURLs[kind]; ok {
				report.Failures = append(report.Failures, AssetFailure{Asset: kind.FileName(), URL: url, Err: err})
			}
		}
		return report
	}

	if song.HasImage() {
		if err := m.downloadImage(ctx, song, dir); err != nil {
			logger.Warn("image download failed", "url", song.ImageURL, "err", err)
			m.progress(ProgressEvent{Message: fmt.Sprintf("Error downloading image for %s: %v", song.Title, err), Level: LevelWarning})
			report.Failures = append(report.Failures, AssetFailure{Asset: "image", URL: song.ImageURL, Err: err})
		} else {
			m.filesDone.Add(1)
		}
	}

	// Iterate the closed kind set in declaration order so the download
	// sequence is deterministic.
	for _, kind := range model.Kinds() {
		fileURL, ok := song.FileURLs[kind]
		if !ok {
			continue
		}
		dest := filepath.Join(dir, kind.FileName()+".flac")
		if err := m.downloadAsset(ctx, fileURL, dest); err != nil {
			logger.Warn("asset download failed", "kind", kind, "url", fileURL, "err", err)
			m.progress(ProgressEvent{Message: fmt.Sprintf("Error downloading %s (%s): %v", song.Title, kind, err), Level: LevelError})
			report.Failures = append(report.Failures, AssetFailure{Asset: kind.FileName(), URL: fileURL, Err: err})
			continue
		}
		report.DownloadedKinds = append(report.DownloadedKinds, kind)
		m.filesDone.Add(1)
		logger.Debug("downloaded asset", "kind", kind)
	}

	if report.OK() {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Downloaded %s", song.Title), Level: LevelSuccess})
	}
	return report
}

// downloadImage fetches the cover art to image.<ext>, applying the
// optional resize/JPEG conversion before writing.
//
// Cover art is small, so unlike the audio assets it is buffered in
// memory; that is what allows re-encoding it at all.
func (m *Manager) downloadImage(ctx context.Context, song *model.Song, dir string) error {
	ext, err := imageExt(song.ImageURL)
	if err != nil {
		return err
	}

	data, err := retry.Do(ctx, m.policy, func(ctx context.Context) ([]byte, error) {
		resp, err := m.client.Fetch(ctx, song.ImageURL)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		if !resp.IsSuccess() {
			return nil, resp.StatusError()
		}
		return io.ReadAll(resp.Body)
	})
	if err != nil {
		return err
	}
	m.bytesReceived.Add(int64(len(data)))

	if m.settings.ResizeArtwork {
		if resized, rerr := m.imaging.Resize(data, m.settings.ArtworkMaxSize, m.settings.ArtworkMaxSize); rerr == nil {
			data, ext = resized, ".jpg"
		}
	} else if m.settings.ConvertArtworkToJPEG {
		if converted, cerr := m.imaging.ConvertToJPEG(data); cerr == nil {
			data, ext = converted, ".jpg"
		}
	}

	dest := filepath.Join(dir, "image"+ext)
	if err := os.WriteFile(dest, data, 0644); err != nil {
		os.Remove(dest)
		return fmt.Errorf("writing %s: %w", dest, err)
	}
	return nil
}

// downloadAsset streams one audio file to dest with the full retry
// budget. Every attempt starts from a clean file: a failed attempt
// removes whatever it wrote before the error is recorded.
func (m *Manager) downloadAsset(ctx context.Context, fileURL, dest string) error {
	_, err := retry.Do(ctx, m.policy, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, m.streamToFile(ctx, fileURL, dest)
	})
	return err
}

// streamToFile performs a single streaming download attempt.
//
// Chunks are written as they arrive, so the whole payload is never held
// in memory. Success requires the final flush to disk; any failure
// mid-stream deletes the partial file so no truncated file can survive
// an attempt.
func (m *Manager) streamToFile(ctx context.Context, fileURL, dest string) error {
	resp, err := m.client.Fetch(ctx, fileURL)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if !resp.IsSuccess() {
		return resp.StatusError()
	}

	file, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("creating %s: %w", dest, err)
	}

	counted := &countingWriter{w: file, n: &m.bytesReceived}
	if _, err := io.Copy(counted, resp.Body); err != nil {
		file.Close()
		os.Remove(dest)
		return fmt.Errorf("streaming %s: %w", fileURL, err)
	}
	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(dest)
		return fmt.Errorf("flushing %s: %w", dest, err)
	}
	if err := file.Close(); err != nil {
		os.Remove(dest)
		return fmt.Errorf("closing %s: %w", dest, err)
	}
	return nil
}

// countingWriter tracks bytes written for progress reporting.
type countingWriter struct {
	w io.Writer
	n *atomic.Int64
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.n.Add(int64(n))
	return n, err
}
