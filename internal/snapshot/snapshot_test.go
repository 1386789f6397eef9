package snapshot

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kksliderdl/kk-downloader/internal/model"
)

func TestWriteAndRead(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)

	songs := []*model.Song{
		{
			Title:    "Bubblegum K.K.",
			Number:   88,
			WikiURL:  "https://nookipedia.com/wiki/Bubblegum_K.K.",
			ImageURL: "https://dodo.ac/cover.png",
			FileURLs: map[model.SongKind]string{
				model.KindLive: "https://dodo.ac/live.flac",
			},
		},
		{
			Title:   "Stale Cupcakes",
			Number:  11,
			WikiURL: "https://nookipedia.com/wiki/Stale_Cupcakes",
		},
	}

	if err := Write(path, songs); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	text := string(raw)
	if !strings.HasPrefix(text, "[\n") {
		t.Error("snapshot should be a pretty-printed array")
	}
	for _, key := range []string{`"title"`, `"number"`, `"wiki_url"`, `"image_url"`, `"song_file_urls"`, `"Live"`} {
		if !strings.Contains(text, key) {
			t.Errorf("snapshot is missing %s", key)
		}
	}

	back, err := Read(path)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if len(back) != 2 {
		t.Fatalf("Read() returned %d songs, want 2", len(back))
	}
	if back[0].FileURLs[model.KindLive] != songs[0].FileURLs[model.KindLive] {
		t.Errorf("round trip lost Live URL")
	}
}

func TestWrite_NilSongsProducesEmptyArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)

	if err := Write(path, nil); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if got := string(raw); got != "[]" {
		t.Errorf("snapshot = %q, want %q", got, "[]")
	}

	back, err := Read(path)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if len(back) != 0 {
		t.Errorf("Read() returned %d songs, want 0", len(back))
	}
}

func TestWrite_FailsOnMissingDirectory(t *testing.T) {
	err := Write(filepath.Join(t.TempDir(), "nope", FileName), nil)
	if err == nil {
		t.Error("Write() into missing directory returned nil error")
	}
}
