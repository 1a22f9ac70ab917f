package node

// Model owns a live hierarchy tree on behalf of an editor instance.
// The editor delegates all tree access through this interface so callers
// can substitute their own backing model.
type Model interface {
	Root() *Node
	SetRoot(*Node)
	FindByPath(path string) *Node
	FindByID(id string) *Node
	Count() int
	// OnChange registers a callback fired after every SetRoot.
	OnChange(func())
}

// TreeModel is the reference Model implementation: a single in-memory tree
// with change notification. Not safe for concurrent use; the editor runs
// all mutation cooperatively.
type TreeModel struct {
	root      *Node
	separator string
	listeners []func()
}

// NewTreeModel creates an empty model using the given path separator
// ("" means PathSeparator).
func NewTreeModel(sep string) *TreeModel {
	if sep == "" {
		sep = PathSeparator
	}
	return &TreeModel{separator: sep}
}

// Root returns the current root node, or nil when no content is loaded.
func (m *TreeModel) Root() *Node { return m.root }

// SetRoot replaces the whole tree and notifies listeners. Content loads
// always replace, never patch.
func (m *TreeModel) SetRoot(root *Node) {
	m.root = root
	for _, fn := range m.listeners {
		fn()
	}
}

// Separator returns the path separator this model resolves with.
func (m *TreeModel) Separator() string { return m.separator }

// FindByPath resolves a computed path against the current root.
func (m *TreeModel) FindByPath(path string) *Node {
	if m.root == nil {
		return nil
	}
	return m.root.FindByPath(path, m.separator)
}

// FindByID searches the current tree for a node id.
func (m *TreeModel) FindByID(id string) *Node {
	if m.root == nil {
		return nil
	}
	return m.root.FindByID(id)
}

// Count returns the number of nodes in the current tree.
func (m *TreeModel) Count() int {
	if m.root == nil {
		return 0
	}
	return m.root.Count()
}

// OnChange registers a callback fired after every SetRoot.
func (m *TreeModel) OnChange(fn func()) {
	m.listeners = append(m.listeners, fn)
}
