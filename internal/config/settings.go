package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Settings holds all configuration options.
type Settings struct {
	// Source settings
	BaseURL      string `mapstructure:"base_url"`
	SonglistPath string `mapstructure:"songlist_path"`

	// Download settings
	OutputDir              string  `mapstructure:"output_dir"`
	MaxConcurrentDownloads int     `mapstructure:"max_concurrent_downloads"`
	MaxRetries             int     `mapstructure:"max_retries"`
	HTTPTimeoutSeconds     float64 `mapstructure:"http_timeout_seconds"`

	// Cover art settings
	ResizeArtwork        bool `mapstructure:"resize_artwork"`
	ArtworkMaxSize       int  `mapstructure:"artwork_max_size"`
	ConvertArtworkToJPEG bool `mapstructure:"convert_artwork_to_jpeg"`

	// Playlist settings
	CreatePlaylist bool `mapstructure:"create_playlist"`
	M3UExtended    bool `mapstructure:"m3u_extended"`

	// Logging
	LogLevel string `mapstructure:"log_level"`
}

// ValidationError reports a configuration value that makes the pipeline
// unrunnable. It is fatal at startup; validation never happens mid-run.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Reason)
}

// DefaultSettings returns settings with default values.
func DefaultSettings() *Settings {
	return &Settings{
		BaseURL:      "https://nookipedia.com",
		SonglistPath: "/wiki/List_of_K.K._Slider_songs",

		OutputDir:              "songs",
		MaxConcurrentDownloads: 50,
		MaxRetries:             3,
		HTTPTimeoutSeconds:     60,

		ResizeArtwork:        false,
		ArtworkMaxSize:       1000,
		ConvertArtworkToJPEG: false,

		CreatePlaylist: false,
		M3UExtended:    true,

		LogLevel: "info",
	}
}

// Load reads settings from an optional config file plus environment
// overrides.
//
// path may be empty, in which case "config.yaml" is searched in the
// current directory; a missing file is not an error, defaults apply.
// Every key can also be set through the environment with the KKDL_
// prefix, e.g. KKDL_MAX_RETRIES=5.
func Load(path string) (*Settings, error) {
	v := viper.New()

	defaults := DefaultSettings()
	v.SetDefault("base_url", defaults.BaseURL)
	v.SetDefault("songlist_path", defaults.SonglistPath)
	v.SetDefault("output_dir", defaults.OutputDir)
	v.SetDefault("max_concurrent_downloads", defaults.MaxConcurrentDownloads)
	v.SetDefault("max_retries", defaults.MaxRetries)
	v.SetDefault("http_timeout_seconds", defaults.HTTPTimeoutSeconds)
	v.SetDefault("resize_artwork", defaults.ResizeArtwork)
	v.SetDefault("artwork_max_size", defaults.ArtworkMaxSize)
	v.SetDefault("convert_artwork_to_jpeg", defaults.ConvertArtworkToJPEG)
	v.SetDefault("create_playlist", defaults.CreatePlaylist)
	v.SetDefault("m3u_extended", defaults.M3UExtended)
	v.SetDefault("log_level", defaults.LogLevel)

	v.SetEnvPrefix("KKDL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("reading config: %w", err)
			}
		}
	}

	settings := new(Settings)
	if err := v.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	return settings, nil
}

// Validate checks the settings once before any work begins. A retry or
// concurrency budget below 1 can never be executed and is rejected here
// rather than deep inside the run.
func (s *Settings) Validate() error {
	if s.BaseURL == "" {
		return &ValidationError{Field: "base_url", Reason: "must not be empty"}
	}
	if s.SonglistPath == "" {
		return &ValidationError{Field: "songlist_path", Reason: "must not be empty"}
	}
	if s.MaxRetries < 1 {
		return &ValidationError{Field: "max_retries", Reason: fmt.Sprintf("must be at least 1, got %d", s.MaxRetries)}
	}
	if s.MaxConcurrentDownloads < 1 {
		return &ValidationError{Field: "max_concurrent_downloads", Reason: fmt.Sprintf("must be at least 1, got %d", s.MaxConcurrentDownloads)}
	}
	if s.HTTPTimeoutSeconds < 0 {
		return &ValidationError{Field: "http_timeout_seconds", Reason: "must not be negative"}
	}
	if s.ResizeArtwork && s.ArtworkMaxSize < 1 {
		return &ValidationError{Field: "artwork_max_size", Reason: "must be at least 1 when resize_artwork is on"}
	}
	return nil
}

// HTTPTimeout returns the per-request timeout as a duration.
func (s *Settings) HTTPTimeout() time.Duration {
	return time.Duration(s.HTTPTimeoutSeconds * float64(time.Second))
}
