// Package format holds the pluggable text-syntax handlers and the registry
// that detects which syntax a piece of text is written in.
//
// A Handler converts between source text and the canonical node tree. The
// shipped handlers cover JSON, YAML, XML, and Markdown; callers register
// additional handlers (or replace the shipped ones) through a Registry.
//
// Input text is normalized before detection: a UTF-8 BOM is stripped and
// UTF-16 input (sniffed by BOM) is transcoded, so handlers only ever see
// plain UTF-8.
package format
