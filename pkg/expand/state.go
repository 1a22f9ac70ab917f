package expand

import (
	"strings"
	"time"

	"github.com/bep/debounce"

	"github.com/BillPolly/treekit/internal/logger"
	"github.com/BillPolly/treekit/pkg/node"
)

// EventKind identifies an expansion state change notification.
type EventKind string

const (
	// EventExpand fires when one path is expanded.
	EventExpand EventKind = "expand"
	// EventCollapse fires when one path is collapsed.
	EventCollapse EventKind = "collapse"
	// EventChange fires alongside every mutation, including bulk ones.
	EventChange EventKind = "change"
)

// Event describes one expansion state change. Path is empty for bulk
// operations (ExpandAll, CollapseAll, ExpandToDepth, Restore).
type Event struct {
	Kind EventKind
	Path string
}

// Options configures a State.
type Options struct {
	// DefaultExpanded is what never-toggled paths read as.
	DefaultExpanded bool

	// MaxDepth bounds ExpandAll when the caller passes no depth.
	// Zero means unbounded.
	MaxDepth int

	// Separator joins path segments. Empty means node.PathSeparator.
	Separator string

	// Store, when set, persists state under Key. Loaded at construction,
	// written after every mutation.
	Store Store
	Key   string

	// DebounceInterval coalesces persistence writes. Zero writes
	// synchronously on every mutation.
	DebounceInterval time.Duration
}

// State is the expansion state manager. It holds no node data, only paths.
type State struct {
	explicit        map[string]bool
	reinstated      map[string]bool
	defaultExpanded bool
	allCollapsed    bool
	maxDepth        int
	sep             string

	store     Store
	key       string
	debounced func(func())

	listeners []func(Event)
}

// NewState creates a State, restoring persisted data if a Store is
// configured and holds anything under the key.
func NewState(opts Options) *State {
	sep := opts.Separator
	if sep == "" {
		sep = node.PathSeparator
	}
	s := &State{
		explicit:        make(map[string]bool),
		reinstated:      make(map[string]bool),
		defaultExpanded: opts.DefaultExpanded,
		maxDepth:        opts.MaxDepth,
		sep:             sep,
		store:           opts.Store,
		key:             opts.Key,
	}
	if opts.DebounceInterval > 0 {
		s.debounced = debounce.New(opts.DebounceInterval)
	}
	if s.store != nil {
		data, err := s.store.Load(s.key)
		if err != nil {
			logger.Warn("expand: load persisted state failed", "key", s.key, "err", err)
		} else if data != nil {
			s.applyData(*data)
		}
	}
	return s
}

// OnChange registers a listener for expansion events.
func (s *State) OnChange(fn func(Event)) {
	s.listeners = append(s.listeners, fn)
}

func (s *State) emit(ev Event) {
	for _, fn := range s.listeners {
		fn(ev)
	}
}

// IsExpanded reports the effective state of a path: explicit if ever
// toggled, otherwise the default (or collapsed under an active
// collapse-all override not lifted for this subtree). The empty path is
// an unnamed root; it carries no state and always reads expanded.
func (s *State) IsExpanded(path string) bool {
	if path == "" {
		return true
	}
	if v, ok := s.explicit[path]; ok {
		return v
	}
	if s.allCollapsed && !s.reinstatedFor(path) {
		return false
	}
	return s.defaultExpanded
}

func (s *State) reinstatedFor(path string) bool {
	for root := range s.reinstated {
		if root == path || node.IsPathPrefix(root, path, s.sep) {
			return true
		}
	}
	return false
}

// Expand marks one path expanded. Empty paths are ignored.
func (s *State) Expand(path string) {
	if path == "" {
		return
	}
	s.explicit[path] = true
	if s.allCollapsed {
		s.reinstated[path] = true
	}
	s.emit(Event{Kind: EventExpand, Path: path})
	s.emit(Event{Kind: EventChange, Path: path})
	s.persist()
}

// Collapse marks one path collapsed and drops the stored state of every
// strict descendant. Empty paths are ignored.
func (s *State) Collapse(path string) {
	if path == "" {
		return
	}
	s.explicit[path] = false
	for p := range s.explicit {
		if node.IsPathPrefix(path, p, s.sep) {
			delete(s.explicit, p)
		}
	}
	for p := range s.reinstated {
		if node.IsPathPrefix(path, p, s.sep) {
			delete(s.reinstated, p)
		}
	}
	s.emit(Event{Kind: EventCollapse, Path: path})
	s.emit(Event{Kind: EventChange, Path: path})
	s.persist()
}

// Toggle flips one path and returns the new state.
func (s *State) Toggle(path string) bool {
	if s.IsExpanded(path) {
		s.Collapse(path)
		return false
	}
	s.Expand(path)
	return true
}

// ExpandAll walks branch nodes under root up to maxDepth (0 means the
// configured MaxDepth, and unbounded when that is zero too), marking every
// branch path expanded. It lifts a CollapseAll override.
func (s *State) ExpandAll(root *node.Node, maxDepth int) {
	if root == nil {
		return
	}
	if maxDepth == 0 {
		maxDepth = s.maxDepth
	}
	s.allCollapsed = false
	s.reinstated = make(map[string]bool)
	s.walkBranches(root, 0, func(n *node.Node, depth int) {
		if maxDepth > 0 && depth > maxDepth {
			return
		}
		s.explicit[n.Path(s.sep)] = true
	})
	s.emit(Event{Kind: EventChange})
	s.persist()
}

// CollapseAll clears all explicit state and installs the all-collapsed
// override.
func (s *State) CollapseAll() {
	s.explicit = make(map[string]bool)
	s.reinstated = make(map[string]bool)
	s.allCollapsed = true
	s.emit(Event{Kind: EventChange})
	s.persist()
}

// ExpandToDepth resets everything, then expands exactly the branch paths
// whose depth is less than depth (root depth is zero). The reset is
// deterministic: prior state never shows through.
func (s *State) ExpandToDepth(root *node.Node, depth int) {
	s.explicit = make(map[string]bool)
	s.reinstated = make(map[string]bool)
	s.allCollapsed = true
	if root != nil {
		s.walkBranches(root, 0, func(n *node.Node, d int) {
			if d < depth {
				s.explicit[n.Path(s.sep)] = true
			}
		})
	}
	s.emit(Event{Kind: EventChange})
	s.persist()
}

// ExpandPath expands every ancestor prefix of target plus target itself,
// so the node at target becomes visible.
func (s *State) ExpandPath(target string) {
	if target == "" {
		return
	}
	segs := strings.Split(target, s.sep)
	for i := range segs {
		prefix := strings.Join(segs[:i+1], s.sep)
		s.explicit[prefix] = true
		if s.allCollapsed {
			s.reinstated[prefix] = true
		}
	}
	s.emit(Event{Kind: EventExpand, Path: target})
	s.emit(Event{Kind: EventChange, Path: target})
	s.persist()
}

func (s *State) walkBranches(n *node.Node, depth int, fn func(*node.Node, int)) {
	if !n.Type.IsBranch() {
		return
	}
	fn(n, depth)
	for _, c := range n.Children {
		s.walkBranches(c, depth+1, fn)
	}
}

// Save serializes the current state.
func (s *State) Save() StateData {
	data := StateData{
		DefaultExpanded: s.defaultExpanded,
		MaxDepth:        s.maxDepth,
	}
	for p, v := range s.explicit {
		if v {
			data.ExpandedNodes = append(data.ExpandedNodes, p)
		}
	}
	return data
}

// Restore replaces the current state with previously saved data.
func (s *State) Restore(data StateData) {
	s.applyData(data)
	s.emit(Event{Kind: EventChange})
	s.persist()
}

func (s *State) applyData(data StateData) {
	s.explicit = make(map[string]bool, len(data.ExpandedNodes))
	s.reinstated = make(map[string]bool)
	s.allCollapsed = false
	for _, p := range data.ExpandedNodes {
		s.explicit[p] = true
	}
	s.defaultExpanded = data.DefaultExpanded
	if data.MaxDepth > 0 {
		s.maxDepth = data.MaxDepth
	}
}

// Reset clears all state back to construction defaults.
func (s *State) Reset() {
	s.explicit = make(map[string]bool)
	s.reinstated = make(map[string]bool)
	s.allCollapsed = false
	s.emit(Event{Kind: EventChange})
	s.persist()
}

// Flush writes any pending persisted state immediately.
func (s *State) Flush() {
	s.write()
}

func (s *State) persist() {
	if s.store == nil {
		return
	}
	if s.debounced != nil {
		s.debounced(s.write)
		return
	}
	s.write()
}

func (s *State) write() {
	if s.store == nil {
		return
	}
	if err := s.store.Save(s.key, s.Save()); err != nil {
		logger.Warn("expand: persist failed", "key", s.key, "err", err)
	}
}
