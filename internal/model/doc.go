// Package model contains the core domain types for kk-downloader.
//
// The central type is Song, one entry from the wiki's song list together
// with the URLs of its downloadable audio variants. SongKind enumerates
// those variants as a closed set, so downstream code can switch over it
// exhaustively.
//
// Values in this package are plain data: they are built once by the
// parser, never mutated afterwards, and flow through the pipeline by
// value or shared read-only reference.
package model
