package format

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/BillPolly/treekit/pkg/node"
)

// xmlHandler converts between XML markup and element/content node trees.
// The stdlib token decoder is used directly; nothing in our stack carries
// a third-party XML parser.
type xmlHandler struct{}

// XML returns the XML format handler.
func XML() Handler { return xmlHandler{} }

func (xmlHandler) Name() string { return "xml" }

func (xmlHandler) Detect(text string) bool {
	trimmed := strings.TrimSpace(text)
	return strings.HasPrefix(trimmed, "<") && strings.Contains(trimmed, ">")
}

func (h xmlHandler) Confidence(text string) float64 {
	if !h.Detect(text) {
		return 0
	}
	if strings.HasPrefix(strings.TrimSpace(text), "<?xml") {
		return 0.95
	}
	return 0.7
}

func (h xmlHandler) Parse(text string) (*node.Node, error) {
	text = Normalize(text)
	dec := xml.NewDecoder(strings.NewReader(text))
	root := node.New(node.Element, "")
	cur := root
	for {
		tok, err := dec.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("%w: %v", ErrParse, err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			el := node.New(node.Element, t.Name.Local)
			for _, attr := range t.Attr {
				el.SetAttribute(attr.Name.Local, attr.Value)
			}
			el.Attach(cur, -1)
			cur = el
		case xml.EndElement:
			if cur.Parent() != nil {
				cur = cur.Parent()
			}
		case xml.CharData:
			text := strings.TrimSpace(string(t))
			if text == "" {
				continue
			}
			content := node.New(node.Content, "")
			content.Value = text
			content.Attach(cur, -1)
		}
	}
	// Unwrap the synthetic root when the document has a single element.
	if len(root.Children) == 1 && root.Children[0].Type == node.Element {
		only := root.Children[0]
		only.Detach()
		return only, nil
	}
	if len(root.Children) == 0 {
		return nil, fmt.Errorf("%w: no elements", ErrParse)
	}
	return root, nil
}

func (h xmlHandler) Serialize(root *node.Node, indent string) (string, error) {
	if root == nil {
		return "", ErrNilRoot
	}
	var sb strings.Builder
	if err := writeXML(&sb, root, indent, 0); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func writeXML(sb *strings.Builder, n *node.Node, indent string, depth int) error {
	pad := strings.Repeat(indent, depth)
	switch n.Type {
	case node.Element, node.Object, node.Array:
		name := n.Name
		if name == "" {
			name = "item"
		}
		sb.WriteString(pad)
		sb.WriteString("<" + name)
		for _, k := range sortedAttrKeys(n.Attributes) {
			sb.WriteString(fmt.Sprintf(" %s=%q", k, escapeXML(n.Attributes[k])))
		}
		if len(n.Children) == 0 {
			sb.WriteString("/>\n")
			return nil
		}
		// Single text child renders inline.
		if len(n.Children) == 1 && n.Children[0].Type == node.Content {
			sb.WriteString(">")
			sb.WriteString(escapeXML(fmt.Sprintf("%v", n.Children[0].Value)))
			sb.WriteString("</" + name + ">\n")
			return nil
		}
		sb.WriteString(">\n")
		for _, c := range n.Children {
			if err := writeXML(sb, c, indent, depth+1); err != nil {
				return err
			}
		}
		sb.WriteString(pad)
		sb.WriteString("</" + name + ">\n")
	case node.Content:
		sb.WriteString(pad)
		sb.WriteString(escapeXML(fmt.Sprintf("%v", n.Value)))
		sb.WriteString("\n")
	case node.Value, node.Property:
		name := n.Name
		if name == "" {
			name = "value"
		}
		sb.WriteString(pad)
		sb.WriteString("<" + name + ">")
		sb.WriteString(escapeXML(scalarText(n.Value)))
		sb.WriteString("</" + name + ">\n")
	default:
		return fmt.Errorf("%w: node type %q has no xml form", ErrSerialize, n.Type)
	}
	return nil
}

func sortedAttrKeys(attrs map[string]string) []string {
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func escapeXML(s string) string {
	var buf bytes.Buffer
	if err := xml.EscapeText(&buf, []byte(s)); err != nil {
		return s
	}
	return buf.String()
}

func scalarText(v any) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%v", v)
}
