// Package nookipedia parses Nookipedia wiki markup into domain values.
//
// Two services live here:
//
//   - Songlist finds the song page URLs on the "List of K.K. Slider songs"
//     listing page.
//   - Parser turns one song page into a model.Song: title, ordinal,
//     canonical URL, cover image and the audio file URL of every variant
//     present.
//
// Selector logic is deliberately confined to this package; the rest of
// the pipeline only sees model values and typed parse errors.
package nookipedia
