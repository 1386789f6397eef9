package model

import "fmt"

// SongKind identifies one recorded variant of a K.K. Slider song.
//
// Nookipedia exposes up to seven audio files per song, one per variant.
// The set is closed: the parser only ever produces kinds from this
// enumeration, and the downloader iterates it in declaration order so
// that output is deterministic.
//
// Each kind carries two fixed attributes:
//   - FileName: the filesystem-safe base name for the downloaded file
//   - URLSuffix: the percent-encoded suffix that identifies the variant's
//     audio URL in the wiki markup
type SongKind int

const (
	// KindLive is the version K.K. performs in person.
	KindLive SongKind = iota

	// KindAircheck is the hi-fi radio version.
	KindAircheck

	// KindAircheckCheap is the low-fidelity radio version.
	KindAircheckCheap

	// KindAircheckRetro is the retro radio version.
	KindAircheckRetro

	// KindAircheckPhono is the phonograph radio version.
	KindAircheckPhono

	// KindMusicBox is the music box version.
	KindMusicBox

	// KindDjKkRemix is the DJ KK remix from Happy Home Paradise.
	KindDjKkRemix
)

// Kinds returns all song kinds in their canonical iteration order.
//
// The returned slice is shared; callers must not modify it.
func Kinds() []SongKind {
	return songKinds[:]
}

var songKinds = [...]SongKind{
	KindLive,
	KindAircheck,
	KindAircheckCheap,
	KindAircheckRetro,
	KindAircheckPhono,
	KindMusicBox,
	KindDjKkRemix,
}

// String returns the kind's identifier as it appears in the snapshot JSON,
// e.g. "Live" or "AircheckCheap".
func (k SongKind) String() string {
	switch k {
	case KindLive:
		return "Live"
	case KindAircheck:
		return "Aircheck"
	case KindAircheckCheap:
		return "AircheckCheap"
	case KindAircheckRetro:
		return "AircheckRetro"
	case KindAircheckPhono:
		return "AircheckPhono"
	case KindMusicBox:
		return "MusicBox"
	case KindDjKkRemix:
		return "DjKkRemix"
	default:
		return fmt.Sprintf("SongKind(%d)", int(k))
	}
}

// FileName returns the base name (without extension) used for the kind's
// downloaded file, e.g. "aircheck_cheap" for KindAircheckCheap.
func (k SongKind) FileName() string {
	switch k {
	case KindLive:
		return "live"
	case KindAircheck:
		return "aircheck"
	case KindAircheckCheap:
		return "aircheck_cheap"
	case KindAircheckRetro:
		return "aircheck_retro"
	case KindAircheckPhono:
		return "aircheck_phono"
	case KindMusicBox:
		return "music_box"
	case KindDjKkRemix:
		return "dj_kk_remix"
	default:
		return "unknown"
	}
}

// URLSuffix returns the percent-encoded ending of the variant's audio URL
// on the wiki, e.g. "%28Live%29.flac" for KindLive.
//
// The wiki encodes the variant in the file name, so matching on the URL
// suffix is how the parser tells variants apart.
func (k SongKind) URLSuffix() string {
	switch k {
	case KindLive:
		return "%28Live%29.flac"
	case KindAircheck:
		return "%28Aircheck%2C_Hi-Fi%29.flac"
	case KindAircheckCheap:
		return "%28Aircheck%2C_Cheap%29.flac"
	case KindAircheckRetro:
		return "%28Aircheck%2C_Retro%29.flac"
	case KindAircheckPhono:
		return "%28Aircheck%2C_Phono%29.flac"
	case KindMusicBox:
		return "%28Music_Box%29.flac"
	case KindDjKkRemix:
		return "%28DJ_KK_Remix%29.flac"
	default:
		return ""
	}
}

// MarshalText implements encoding.TextMarshaler so SongKind can be used as
// a JSON object key in the song_file_urls mapping.
func (k SongKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler for reading snapshots
// back in.
func (k *SongKind) UnmarshalText(text []byte) error {
	for _, kind := range songKinds {
		if kind.String() == string(text) {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("unknown song kind %q", text)
}
