// Package render turns node trees into visual-element descriptions.
//
// The renderer is a pure function of (node, expansion state, parent path):
// one element per visible node, recursing into children only where the
// expansion state says so. It owns no screen; a Render Surface (the
// treexplorer TUI, or any caller) turns elements into output and routes
// activation back through Toggle and the edit sessions.
//
// Per-type presentation goes through a type-to-renderer dispatch map with
// a neutral fallback, so custom node types degrade instead of failing.
package render
