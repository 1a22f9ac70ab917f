package format

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/BillPolly/treekit/pkg/node"
)

// yamlHandler converts between YAML text and node trees using goccy's
// ordered-map decode so member order survives round trips.
type yamlHandler struct{}

// YAML returns the YAML format handler.
func YAML() Handler { return yamlHandler{} }

func (yamlHandler) Name() string { return "yaml" }

var yamlKeyLine = regexp.MustCompile(`(?m)^[ \t]*[\w.$-]+:(\s|$)`)

func (yamlHandler) Detect(text string) bool {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return false
	}
	if strings.HasPrefix(trimmed, "---") {
		return true
	}
	// JSON braces parse as flow YAML too, but the JSON handler owns those.
	if trimmed[0] == '{' || trimmed[0] == '[' || trimmed[0] == '<' {
		return false
	}
	return yamlKeyLine.MatchString(trimmed)
}

func (h yamlHandler) Confidence(text string) float64 {
	if !h.Detect(text) {
		return 0
	}
	if strings.HasPrefix(strings.TrimSpace(text), "---") {
		return 0.9
	}
	return 0.7
}

func (h yamlHandler) Parse(text string) (*node.Node, error) {
	text = Normalize(text)
	var v any
	if err := yaml.UnmarshalWithOptions([]byte(text), &v, yaml.UseOrderedMap()); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	return anyToNode("", v), nil
}

// anyToNode maps a decoded YAML value onto a node. yaml.MapSlice keeps
// document order; plain maps should not appear with UseOrderedMap.
func anyToNode(key string, v any) *node.Node {
	switch val := v.(type) {
	case yaml.MapSlice:
		n := node.New(node.Object, key)
		for _, item := range val {
			child := anyToNode(fmt.Sprintf("%v", item.Key), item.Value)
			child.Attach(n, -1)
		}
		return n
	case map[string]any:
		n := node.New(node.Object, key)
		for _, k := range sortedKeys(val) {
			child := anyToNode(k, val[k])
			child.Attach(n, -1)
		}
		return n
	case []any:
		n := node.New(node.Array, key)
		for _, item := range val {
			child := anyToNode("", item)
			child.Attach(n, -1)
		}
		return n
	default:
		t := node.Value
		if key != "" {
			t = node.Property
		}
		n := node.New(t, key)
		n.Value = normalizeScalar(v)
		return n
	}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// normalizeScalar folds decoder-specific integer widths to int64.
func normalizeScalar(v any) any {
	switch val := v.(type) {
	case int:
		return int64(val)
	case uint64:
		return int64(val)
	case int64, float64, bool, string, nil:
		return val
	default:
		return fmt.Sprintf("%v", val)
	}
}

func (h yamlHandler) Serialize(root *node.Node, indent string) (string, error) {
	if root == nil {
		return "", ErrNilRoot
	}
	v, err := nodeToAny(root)
	if err != nil {
		return "", err
	}
	spaces := len(indent)
	if spaces < 1 {
		spaces = 2
	}
	out, err := yaml.MarshalWithOptions(v, yaml.Indent(spaces))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSerialize, err)
	}
	return string(out), nil
}

// nodeToAny rebuilds the ordered in-memory form yaml.Marshal understands.
func nodeToAny(n *node.Node) (any, error) {
	switch n.Type {
	case node.Object:
		ms := make(yaml.MapSlice, 0, len(n.Children))
		for _, c := range n.Children {
			v, err := nodeToAny(c)
			if err != nil {
				return nil, err
			}
			ms = append(ms, yaml.MapItem{Key: c.Name, Value: v})
		}
		return ms, nil
	case node.Array:
		items := make([]any, 0, len(n.Children))
		for _, c := range n.Children {
			v, err := nodeToAny(c)
			if err != nil {
				return nil, err
			}
			items = append(items, v)
		}
		return items, nil
	case node.Value, node.Property, node.Content:
		return n.Value, nil
	default:
		return nil, fmt.Errorf("%w: node type %q has no yaml form", ErrSerialize, n.Type)
	}
}
