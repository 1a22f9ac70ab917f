package format

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	gmtext "github.com/yuin/goldmark/text"

	"github.com/BillPolly/treekit/pkg/node"
)

// markdownHandler converts between Markdown text and heading/content node
// trees. Headings nest by level: a level-2 heading becomes a child of the
// preceding level-1 heading, and block content attaches to the nearest
// open heading.
type markdownHandler struct {
	md goldmark.Markdown
}

// Markdown returns the Markdown format handler.
func Markdown() Handler {
	return markdownHandler{md: goldmark.New()}
}

func (markdownHandler) Name() string { return "markdown" }

var mdHeadingLine = regexp.MustCompile(`(?m)^#{1,6}\s+\S`)

func (markdownHandler) Detect(text string) bool {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return false
	}
	if trimmed[0] == '{' || trimmed[0] == '[' || trimmed[0] == '<' {
		return false
	}
	return mdHeadingLine.MatchString(trimmed)
}

func (h markdownHandler) Confidence(text string) float64 {
	if !h.Detect(text) {
		return 0
	}
	if strings.HasPrefix(strings.TrimSpace(text), "#") {
		return 0.8
	}
	return 0.5
}

func (h markdownHandler) Parse(text string) (*node.Node, error) {
	source := []byte(Normalize(text))
	doc := h.md.Parser().Parse(gmtext.NewReader(source))

	root := node.New(node.Heading, "")
	root.SetMeta("level", 0)
	// Stack of open headings, indexed by level; root is level 0.
	stack := []*node.Node{root}

	for child := doc.FirstChild(); child != nil; child = child.NextSibling() {
		switch block := child.(type) {
		case *ast.Heading:
			heading := node.New(node.Heading, string(blockText(block, source)))
			heading.SetMeta("level", block.Level)
			for len(stack) > 1 && stack[len(stack)-1].Metadata["level"].(int) >= block.Level {
				stack = stack[:len(stack)-1]
			}
			if err := heading.Attach(stack[len(stack)-1], -1); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrParse, err)
			}
			stack = append(stack, heading)
		case *ast.FencedCodeBlock:
			content := node.New(node.Content, "")
			content.Value = string(blockLines(block, source))
			content.SetMeta("code", true)
			if lang := block.Language(source); lang != nil {
				content.SetAttribute("lang", string(lang))
			}
			content.Attach(stack[len(stack)-1], -1)
		default:
			text := blockText(child, source)
			if len(strings.TrimSpace(string(text))) == 0 {
				continue
			}
			content := node.New(node.Content, "")
			content.Value = string(text)
			content.Attach(stack[len(stack)-1], -1)
		}
	}
	return root, nil
}

// blockText flattens the inline text of a block node.
func blockText(n ast.Node, source []byte) []byte {
	var sb strings.Builder
	ast.Walk(n, func(cur ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if t, ok := cur.(*ast.Text); ok {
			sb.Write(t.Segment.Value(source))
		}
		return ast.WalkContinue, nil
	})
	return []byte(sb.String())
}

// blockLines returns the raw lines of a literal block (code fences).
func blockLines(n ast.Node, source []byte) []byte {
	var sb strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		sb.Write(seg.Value(source))
	}
	return []byte(strings.TrimRight(sb.String(), "\n"))
}

func (h markdownHandler) Serialize(root *node.Node, indent string) (string, error) {
	if root == nil {
		return "", ErrNilRoot
	}
	var sb strings.Builder
	if err := writeMarkdown(&sb, root, 0); err != nil {
		return "", err
	}
	return strings.TrimRight(sb.String(), "\n") + "\n", nil
}

func writeMarkdown(sb *strings.Builder, n *node.Node, level int) error {
	switch n.Type {
	case node.Heading:
		if n.Name != "" {
			effective := level
			if lv, ok := n.Metadata["level"].(int); ok && lv > 0 {
				effective = lv
			}
			if effective < 1 {
				effective = 1
			}
			sb.WriteString(strings.Repeat("#", effective))
			sb.WriteString(" ")
			sb.WriteString(n.Name)
			sb.WriteString("\n\n")
		}
		for _, c := range n.Children {
			if err := writeMarkdown(sb, c, level+1); err != nil {
				return err
			}
		}
	case node.Content:
		text := scalarText(n.Value)
		if code, _ := n.Metadata["code"].(bool); code {
			sb.WriteString("```")
			sb.WriteString(n.Attributes["lang"])
			sb.WriteString("\n")
			sb.WriteString(text)
			sb.WriteString("\n```\n\n")
		} else {
			sb.WriteString(text)
			sb.WriteString("\n\n")
		}
	case node.Value, node.Property:
		sb.WriteString(scalarText(n.Value))
		sb.WriteString("\n\n")
	default:
		return fmt.Errorf("%w: node type %q has no markdown form", ErrSerialize, n.Type)
	}
	return nil
}
