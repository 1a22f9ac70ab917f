package node

import "strings"

// segment returns the path component for n: its name, or its synthesized id
// when the name is empty. An unnamed root contributes no segment at all, so
// document roots stay invisible in paths ({"a":{"b":1}} addresses "a.b").
func (n *Node) segment() string {
	if n.Name != "" {
		return n.Name
	}
	if n.parent == nil {
		return ""
	}
	return n.ID()
}

// Path computes the separator-joined chain of ancestor segments down to n.
// Paths are never stored, only computed on demand.
func (n *Node) Path(sep string) string {
	if sep == "" {
		sep = PathSeparator
	}
	var segs []string
	for cur := n; cur != nil; cur = cur.parent {
		if s := cur.segment(); s != "" {
			segs = append(segs, s)
		}
	}
	for i, j := 0, len(segs)-1; i < j; i, j = i+1, j-1 {
		segs[i], segs[j] = segs[j], segs[i]
	}
	return strings.Join(segs, sep)
}

// FindByPath resolves a path relative to n. An empty path resolves to n
// itself. When n has a visible segment it must match the first component.
func (n *Node) FindByPath(path, sep string) *Node {
	if path == "" {
		return n
	}
	if sep == "" {
		sep = PathSeparator
	}
	segs := strings.Split(path, sep)
	if own := n.segment(); own != "" {
		if own != segs[0] {
			return nil
		}
		segs = segs[1:]
	}
	return n.resolve(segs)
}

func (n *Node) resolve(segs []string) *Node {
	if len(segs) == 0 {
		return n
	}
	for _, c := range n.Children {
		if c.segment() == segs[0] {
			return c.resolve(segs[1:])
		}
	}
	return nil
}

// FindByID searches the subtree rooted at n for a node with the given id.
func (n *Node) FindByID(id string) *Node {
	var found *Node
	n.Walk(func(cur *Node) bool {
		if cur.id == id {
			found = cur
			return false
		}
		return true
	})
	return found
}

// IsPathPrefix reports whether prefix addresses a strict ancestor of the
// node addressed by path, given the separator. "a.b" is a prefix of
// "a.b.c" but not of "a.bc".
func IsPathPrefix(prefix, path, sep string) bool {
	if sep == "" {
		sep = PathSeparator
	}
	return len(path) > len(prefix) &&
		strings.HasPrefix(path, prefix) &&
		strings.HasPrefix(path[len(prefix):], sep)
}
