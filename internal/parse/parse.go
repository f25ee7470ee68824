// Package parse extracts test declarations from JavaScript and TypeScript
// test files using tree-sitter.
package parse

import (
	"context"
	"strconv"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/phobologic/annodoc/internal/lang"
	"github.com/phobologic/annodoc/internal/model"
)

// callKind classifies a call expression.
type callKind int

const (
	notTest callKind = iota
	group
	testCase
)

var groupFuncs = map[string]bool{
	"describe": true, "context": true, "suite": true,
	"fdescribe": true, "xdescribe": true, "xcontext": true,
}

var testFuncs = map[string]bool{
	"it": true, "test": true, "specify": true,
	"fit": true, "xit": true, "xtest": true, "xspecify": true,
}

// modifiers may trail a test or group callee: describe.only, test.skip,
// test.describe.serial.
var modifiers = map[string]bool{
	"only": true, "skip": true, "todo": true, "concurrent": true,
	"serial": true, "parallel": true, "fixme": true,
}

// ExtractTests parses a test file and returns one TestCase per it/test call.
// The parser must be created for the correct language. filePath is used only
// for TestCase.File and should be the repo-relative path.
func ExtractTests(parser *sitter.Parser, query *sitter.Query, source []byte, filePath string, framework model.Framework) []model.TestCase {
	if len(source) == 0 {
		return nil
	}

	tree, err := parser.ParseCtx(context.Background(), nil, source)
	if err != nil {
		return nil
	}
	defer tree.Close()

	qc := sitter.NewQueryCursor()
	defer qc.Close()
	qc.Exec(query, tree.RootNode())

	var tests []model.TestCase
	seen := make(map[uint32]bool)

	for {
		match, ok := qc.NextMatch()
		if !ok {
			break
		}
		for _, c := range match.Captures {
			if query.CaptureNameForId(c.Index) != "call" {
				continue
			}
			node := c.Node
			if seen[node.StartByte()] {
				continue
			}
			kind, title := classify(node, source)
			if kind != testCase {
				continue
			}
			seen[node.StartByte()] = true
			tests = append(tests, model.TestCase{
				File:      filePath,
				Describe:  enclosingGroup(node, source),
				It:        title,
				Line:      int(node.StartPoint().Row) + 1,
				Framework: framework,
			})
		}
	}

	return tests
}

// classify reports whether call declares a group or a test, and its title.
// Calls whose first argument is not a string literal are not tests
// (test.skip(condition, reason) is a runtime skip, not a declaration).
func classify(call *sitter.Node, source []byte) (callKind, string) {
	fn := call.ChildByFieldName("function")
	args := call.ChildByFieldName("arguments")
	if fn == nil || args == nil || args.Type() != "arguments" {
		return notTest, ""
	}
	kind := calleeKind(lang.NodeText(fn, source))
	if kind == notTest {
		return notTest, ""
	}
	first := args.NamedChild(0)
	if first == nil || (first.Type() != "string" && first.Type() != "template_string") {
		return notTest, ""
	}
	return kind, lang.CollapseWhitespace(unquote(lang.NodeText(first, source)))
}

// calleeKind normalizes a callee such as "test.describe.only" and classifies it.
func calleeKind(callee string) callKind {
	parts := strings.Split(lang.CollapseWhitespace(callee), ".")
	for len(parts) > 1 && modifiers[parts[len(parts)-1]] {
		parts = parts[:len(parts)-1]
	}
	switch {
	case len(parts) == 1 && groupFuncs[parts[0]]:
		return group
	case len(parts) == 1 && testFuncs[parts[0]]:
		return testCase
	case len(parts) == 2 && parts[0] == "test" && parts[1] == "describe":
		return group
	}
	return notTest
}

// enclosingGroup returns the title of the innermost group call containing
// node, or "" for a top-level test.
func enclosingGroup(node *sitter.Node, source []byte) string {
	for p := node.Parent(); p != nil; p = p.Parent() {
		if p.Type() != "call_expression" {
			continue
		}
		if kind, title := classify(p, source); kind == group {
			return title
		}
	}
	return ""
}

// unquote strips JavaScript string delimiters. Template strings are returned
// verbatim between the backticks.
func unquote(text string) string {
	if len(text) < 2 {
		return text
	}
	switch text[0] {
	case '`':
		return strings.TrimSuffix(text[1:], "`")
	case '\'':
		inner := text[1 : len(text)-1]
		if s, err := strconv.Unquote(`"` + requote(inner) + `"`); err == nil {
			return s
		}
		return inner
	}
	if s, err := strconv.Unquote(text); err == nil {
		return s
	}
	return strings.Trim(text, `"`)
}

// requote rewrites the body of a single-quoted literal as the body of a
// double-quoted one: \' loses its backslash and a bare " gains one. Other
// escape pairs are copied through.
func requote(inner string) string {
	var b strings.Builder
	b.Grow(len(inner) + 2)
	for i := 0; i < len(inner); i++ {
		c := inner[i]
		switch {
		case c == '\\' && i+1 < len(inner):
			i++
			if inner[i] != '\'' {
				b.WriteByte('\\')
			}
			b.WriteByte(inner[i])
		case c == '"':
			b.WriteString(`\"`)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}
