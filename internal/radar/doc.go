// Package radar defines the data model, interfaces and error taxonomy shared by
// the competitor-radar pipeline: the per-site Snapshot produced by the
// extractor, the AI-derived insight records, and the terminal RadarReport.
package radar
