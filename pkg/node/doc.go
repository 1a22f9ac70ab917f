// Package node defines the canonical hierarchy node model shared by every
// format handler, the renderer, and the editor.
//
// A Node is a tagged variant: objects, arrays, and markup elements are
// branches; values, headings, and content blocks are leaves. Ownership is
// expressed solely through Children. The parent back-reference is write-once
// bookkeeping used for path computation and cycle checks, and is never
// followed for serialization.
//
// Paths address nodes by joining ancestor names with a separator. A node
// without a name gets a stable synthesized id, so two lookups of the same
// computed path always resolve to the same node.
package node
