package playlist

import (
	"strings"
	"testing"

	"github.com/kksliderdl/kk-downloader/internal/model"
)

func TestCreator_Simple(t *testing.T) {
	entries := []Entry{
		{Song: &model.Song{Title: "Bubblegum K.K."}, Kind: model.KindLive},
		{Song: &model.Song{Title: "Stale Cupcakes"}, Kind: model.KindAircheck},
	}

	got := NewCreator(false).Create(entries)
	want := "bubblegum_kk/live.flac\nstale_cupcakes/aircheck.flac\n"
	if got != want {
		t.Errorf("Create() = %q, want %q", got, want)
	}
}

func TestCreator_Extended(t *testing.T) {
	entries := []Entry{
		{Song: &model.Song{Title: "Bubblegum K.K."}, Kind: model.KindLive},
	}

	got := NewCreator(true).Create(entries)
	if !strings.HasPrefix(got, "#EXTM3U\n") {
		t.Error("extended playlist should start with #EXTM3U")
	}
	if !strings.Contains(got, "#EXTINF:-1,Bubblegum K.K. (Live)\n") {
		t.Errorf("missing EXTINF line in %q", got)
	}
	if !strings.Contains(got, "bubblegum_kk/live.flac\n") {
		t.Errorf("missing path line in %q", got)
	}
}

func TestCreator_EmptyEntries(t *testing.T) {
	if got := NewCreator(false).Create(nil); got != "" {
		t.Errorf("Create(nil) = %q, want empty", got)
	}
}
