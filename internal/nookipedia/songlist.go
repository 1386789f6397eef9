package nookipedia

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Songlist extracts song page URLs from the wiki's "List of K.K. Slider
// songs" page.
//
// The listing table marks each song with an anchor into the wiki; other
// links on the page (navigation, categories) are excluded by scoping the
// selector to the styled listing table and requiring a title attribute.
type Songlist struct{}

// NewSonglist creates a new Songlist service.
func NewSonglist() *Songlist {
	return &Songlist{}
}

// SongURLs extracts the absolute song page URLs from the listing page.
//
// baseURL is prepended to the wiki-relative hrefs. Duplicates are
// filtered while keeping first-seen order. An empty result is valid: a
// listing without songs simply yields nothing to do.
func (s *Songlist) SongURLs(listingHTML, baseURL string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(listingHTML))
	if err != nil {
		return nil, err
	}

	var urls []string
	seen := make(map[string]struct{})

	doc.Find(`table.styled > tbody > tr > td > a[href^="/wiki"][title]`).
		Each(func(_ int, sel *goquery.Selection) {
			href, ok := sel.Attr("href")
			if !ok {
				return
			}
			url := baseURL + href
			if _, dup := seen[url]; dup {
				return
			}
			seen[url] = struct{}{}
			urls = append(urls, url)
		})

	return urls, nil
}
