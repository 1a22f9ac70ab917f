// Package expand tracks which tree paths are expanded or collapsed,
// independent of node content.
//
// State is lazy-default: a path that was never explicitly toggled reads as
// the configured default. Collapsing a path cascades, dropping the stored
// state of every descendant. CollapseAll installs an override so untouched
// paths read collapsed regardless of the default, until an explicit expand
// reinstates lazy-default semantics for that subtree.
//
// State optionally persists through a Store under a caller-supplied key;
// writes are debounced and failures are logged, never surfaced.
package expand
