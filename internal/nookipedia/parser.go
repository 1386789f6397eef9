package nookipedia

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/kksliderdl/kk-downloader/internal/model"
)

// MissingFieldError reports a required field that could not be located in
// a song page.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("could not locate %q in document", e.Field)
}

// MalformedNumberError reports a song number that was present but not a
// valid integer.
type MalformedNumberError struct {
	Value string
}

func (e *MalformedNumberError) Error() string {
	return fmt.Sprintf("no number could be parsed from %q", e.Value)
}

// Parser extracts song information from Nookipedia song pages.
//
// The wiki exposes the interesting fields in two places: Open Graph meta
// properties in the page head (title, canonical URL, cover image) and the
// infobox table (song number, audio files). Audio variants are identified
// by the percent-encoded suffix of their file URL.
//
// Example usage:
//
//	parser := nookipedia.NewParser()
//
//	song, err := parser.ParseSongPage(html)
//	if err != nil {
//	    return err
//	}
//	fmt.Printf("#%d %s (%d files)\n", song.Number, song.Title, len(song.FileURLs))
type Parser struct{}

// NewParser creates a new Parser.
func NewParser() *Parser {
	return &Parser{}
}

// ParseSongPage extracts a Song from a song page's HTML.
//
// Title, canonical URL and number are required; missing ones yield a
// *MissingFieldError, and a number that is not an integer yields a
// *MalformedNumberError. The cover image and every audio variant are
// optional — a page without any audio produces a Song with an empty
// FileURLs map, which downstream treats as "nothing to download".
func (p *Parser) ParseSongPage(htmlContent string) (*model.Song, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return nil, fmt.Errorf("parsing song page: %w", err)
	}

	title, ok := metaProperty(doc, "og:title")
	if !ok {
		return nil, &MissingFieldError{Field: "title"}
	}
	wikiURL, ok := metaProperty(doc, "og:url")
	if !ok {
		return nil, &MissingFieldError{Field: "url"}
	}
	// Cover art is optional; some pages have no og:image.
	imageURL, _ := metaProperty(doc, "og:image")

	number, err := parseNumber(doc)
	if err != nil {
		return nil, err
	}

	return &model.Song{
		Title:    title,
		Number:   number,
		WikiURL:  wikiURL,
		ImageURL: imageURL,
		FileURLs: parseFileURLs(doc),
	}, nil
}

// metaProperty reads the content of a <meta property="..."> tag in the
// document head.
func metaProperty(doc *goquery.Document, property string) (string, bool) {
	sel := fmt.Sprintf(`head > meta[property=%q][content]`, property)
	return doc.Find(sel).First().Attr("content")
}

// parseNumber extracts the song's ordinal from the infobox.
//
// The infobox renders the number as e.g. "#88" inside a nested
// big > i > b; the leading marker is stripped before parsing.
func parseNumber(doc *goquery.Document) (int, error) {
	raw := doc.Find("table.infobox > tbody table big > i > b").First().Text()
	if raw == "" {
		return 0, &MissingFieldError{Field: "number"}
	}

	trimmed := strings.TrimPrefix(strings.TrimSpace(raw), "#")
	number, err := strconv.Atoi(trimmed)
	if err != nil {
		return 0, &MalformedNumberError{Value: raw}
	}
	return number, nil
}

// parseFileURLs collects the audio URL for every variant present on the
// page, keyed by kind.
func parseFileURLs(doc *goquery.Document) map[model.SongKind]string {
	urls := make(map[model.SongKind]string)
	for _, kind := range model.Kinds() {
		if url, ok := parseFileURL(doc, kind); ok {
			urls[kind] = url
		}
	}
	return urls
}

// parseFileURL locates one variant's audio URL.
//
// The Live and Aircheck files usually sit in the infobox; the remaining
// variants live in the Music section's table.
func parseFileURL(doc *goquery.Document, kind model.SongKind) (string, bool) {
	infobox := fmt.Sprintf(`table.infobox > tbody > tr > td > audio[src$=%q]`, kind.URLSuffix())
	if src, ok := doc.Find(infobox).First().Attr("src"); ok {
		return src, true
	}

	music := fmt.Sprintf(`div.tabletop.color-music table > tbody > tr > td > audio[src$=%q]`, kind.URLSuffix())
	return doc.Find(music).First().Attr("src")
}
