package format

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/BillPolly/treekit/pkg/node"
)

// jsonHandler converts between JSON text and node trees. Detection and
// parsing lean on gjson; sjson powers the path-targeted source patch.
type jsonHandler struct{}

// JSON returns the JSON format handler.
func JSON() Handler { return jsonHandler{} }

func (jsonHandler) Name() string { return "json" }

func (jsonHandler) Detect(text string) bool {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return false
	}
	if trimmed[0] != '{' && trimmed[0] != '[' {
		return false
	}
	return gjson.Valid(trimmed)
}

func (h jsonHandler) Confidence(text string) float64 {
	if !h.Detect(text) {
		return 0
	}
	return 0.95
}

func (h jsonHandler) Parse(text string) (*node.Node, error) {
	text = Normalize(text)
	if !gjson.Valid(text) {
		return nil, fmt.Errorf("%w: invalid json", ErrParse)
	}
	return jsonToNode("", gjson.Parse(text)), nil
}

// jsonToNode maps one gjson value onto a node. Containers become branches;
// scalars become properties when keyed, plain values otherwise.
func jsonToNode(key string, r gjson.Result) *node.Node {
	switch {
	case r.IsObject():
		n := node.New(node.Object, key)
		r.ForEach(func(k, v gjson.Result) bool {
			child := jsonToNode(k.String(), v)
			child.Attach(n, -1)
			return true
		})
		return n
	case r.IsArray():
		n := node.New(node.Array, key)
		r.ForEach(func(_, v gjson.Result) bool {
			child := jsonToNode("", v)
			child.Attach(n, -1)
			return true
		})
		return n
	default:
		t := node.Value
		if key != "" {
			t = node.Property
		}
		n := node.New(t, key)
		n.Value = jsonScalar(r)
		return n
	}
}

// jsonScalar converts a gjson scalar, keeping integers integral.
func jsonScalar(r gjson.Result) any {
	switch r.Type {
	case gjson.Null:
		return nil
	case gjson.True:
		return true
	case gjson.False:
		return false
	case gjson.Number:
		if !strings.ContainsAny(r.Raw, ".eE") {
			if i, err := strconv.ParseInt(r.Raw, 10, 64); err == nil {
				return i
			}
		}
		return r.Num
	default:
		return r.String()
	}
}

func (h jsonHandler) Serialize(root *node.Node, indent string) (string, error) {
	if root == nil {
		return "", ErrNilRoot
	}
	var sb strings.Builder
	if err := writeJSON(&sb, root, indent, 0); err != nil {
		return "", err
	}
	sb.WriteString("\n")
	return sb.String(), nil
}

func writeJSON(sb *strings.Builder, n *node.Node, indent string, depth int) error {
	switch n.Type {
	case node.Object:
		if len(n.Children) == 0 {
			sb.WriteString("{}")
			return nil
		}
		sb.WriteString("{\n")
		for i, c := range n.Children {
			sb.WriteString(strings.Repeat(indent, depth+1))
			sb.WriteString(quoteJSON(c.Name))
			sb.WriteString(": ")
			if err := writeJSON(sb, c, indent, depth+1); err != nil {
				return err
			}
			if i < len(n.Children)-1 {
				sb.WriteString(",")
			}
			sb.WriteString("\n")
		}
		sb.WriteString(strings.Repeat(indent, depth))
		sb.WriteString("}")
	case node.Array:
		if len(n.Children) == 0 {
			sb.WriteString("[]")
			return nil
		}
		sb.WriteString("[\n")
		for i, c := range n.Children {
			sb.WriteString(strings.Repeat(indent, depth+1))
			if err := writeJSON(sb, c, indent, depth+1); err != nil {
				return err
			}
			if i < len(n.Children)-1 {
				sb.WriteString(",")
			}
			sb.WriteString("\n")
		}
		sb.WriteString(strings.Repeat(indent, depth))
		sb.WriteString("]")
	case node.Value, node.Property, node.Content:
		sb.WriteString(jsonScalarText(n.Value))
	default:
		return fmt.Errorf("%w: node type %q has no json form", ErrSerialize, n.Type)
	}
	return nil
}

func jsonScalarText(v any) string {
	switch val := v.(type) {
	case nil:
		return "null"
	case bool:
		return strconv.FormatBool(val)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64)
	case string:
		return quoteJSON(val)
	default:
		return quoteJSON(fmt.Sprintf("%v", val))
	}
}

// quoteJSON escapes a string per the JSON grammar.
func quoteJSON(s string) string {
	var sb strings.Builder
	sb.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		default:
			if r < 0x20 {
				sb.WriteString(fmt.Sprintf(`\u%04x`, r))
			} else {
				sb.WriteRune(r)
			}
		}
	}
	sb.WriteByte('"')
	return sb.String()
}

// PatchJSONValue sets one value at a dotted path directly in JSON source
// text, without a parse/serialize round trip. Used for source-mode edits.
func PatchJSONValue(doc, path string, value any) (string, error) {
	out, err := sjson.Set(doc, path, value)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSerialize, err)
	}
	return out, nil
}
