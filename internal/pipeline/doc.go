// Package pipeline orchestrates one competitive-intelligence run: it scrapes
// the subject and competitor sites concurrently, analyzes each surviving
// competitor concurrently, synthesizes the results once and assembles the
// final report.
//
// Only two failures are fatal: the subject site cannot be scraped, or no
// competitor site can. Everything else degrades to fallback values.
package pipeline
