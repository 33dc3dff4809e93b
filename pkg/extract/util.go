package extract

import (
	"strings"
	"unicode"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// nodeText returns the exact source slice covered by node.
func nodeText(node *tree_sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	start, end := node.StartByte(), node.EndByte()
	if int(end) > len(source) {
		end = uint(len(source))
	}
	return string(source[start:end])
}

// startLine returns the 1-indexed start line of node.
func startLine(node *tree_sitter.Node) int {
	return int(node.StartPosition().Row) + 1
}

// endLine returns the 1-indexed end line of node.
func endLine(node *tree_sitter.Node) int {
	return int(node.EndPosition().Row) + 1
}

// signature slices from the start of node to the first "{" (or, absent
// one, the first line), trimmed. This is the common §4.4 signature rule
// shared by every extractor.
func signature(node *tree_sitter.Node, source []byte) string {
	text := nodeText(node, source)
	if i := strings.IndexByte(text, '{'); i >= 0 {
		return strings.TrimSpace(text[:i])
	}
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		return strings.TrimSpace(text[:i])
	}
	return strings.TrimSpace(text)
}

// walk calls visit for node and every descendant, depth-first,
// pre-order. visit returns false to skip node's children.
func walk(node *tree_sitter.Node, visit func(*tree_sitter.Node) bool) {
	if node == nil {
		return
	}
	if !visit(node) {
		return
	}
	count := node.ChildCount()
	for i := uint(0); i < count; i++ {
		walk(node.Child(i), visit)
	}
}

// findAll returns every descendant of node (node itself included) whose
// Kind() is one of kinds.
func findAll(node *tree_sitter.Node, kinds ...string) []*tree_sitter.Node {
	want := make(map[string]bool, len(kinds))
	for _, k := range kinds {
		want[k] = true
	}
	var out []*tree_sitter.Node
	walk(node, func(n *tree_sitter.Node) bool {
		if want[n.Kind()] {
			out = append(out, n)
		}
		return true
	})
	return out
}

// directChildren returns node's immediate children whose Kind() is one of
// kinds.
func directChildren(node *tree_sitter.Node, kinds ...string) []*tree_sitter.Node {
	want := make(map[string]bool, len(kinds))
	for _, k := range kinds {
		want[k] = true
	}
	var out []*tree_sitter.Node
	count := node.ChildCount()
	for i := uint(0); i < count; i++ {
		c := node.Child(i)
		if c != nil && want[c.Kind()] {
			out = append(out, c)
		}
	}
	return out
}

// inLineRange reports whether node starts within [start, end] (inclusive,
// 1-indexed), the common rule for scoping calls to their enclosing symbol.
func inLineRange(node *tree_sitter.Node, start, end int) bool {
	l := startLine(node)
	return l >= start && l <= end
}

// firstScalarUpper reports whether the first rune of s is upper-case. Used
// by Go visibility, which is defined over the first scalar character, not
// byte.
func firstScalarUpper(s string) bool {
	for _, r := range s {
		return unicode.IsUpper(r)
	}
	return false
}

// trimDocMarkers strips a single leading comment marker (//, ///, //!, #)
// and surrounding whitespace from each line of a doc comment block.
func trimDocMarkers(text string, markers ...string) string {
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		for _, m := range markers {
			if strings.HasPrefix(line, m) {
				line = strings.TrimSpace(strings.TrimPrefix(line, m))
				break
			}
		}
		out = append(out, line)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}
