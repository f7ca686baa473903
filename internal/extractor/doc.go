// Package extractor derives a radar.Snapshot from raw HTML using fixed,
// pattern-based rules. Parsing goes through goquery so malformed or partial
// markup degrades to empty fields instead of errors.
package extractor
