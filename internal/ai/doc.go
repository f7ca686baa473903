// Package ai wraps the OpenAI chat-completions API behind a small interface
// that returns schema-constrained JSON decoded into Go values.
package ai
