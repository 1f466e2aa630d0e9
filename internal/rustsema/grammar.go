package rustsema

import (
	"context"
	"fmt"
	"strings"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/rust"
)

// The grammar is initialized once on first use.
var (
	rustGrammar     *sitter.Language
	rustGrammarOnce sync.Once
)

func language() *sitter.Language {
	rustGrammarOnce.Do(func() {
		rustGrammar = rust.GetLanguage()
	})
	return rustGrammar
}

// parseSource parses src with a fresh parser. Parsers are not shared, so
// parseSource is safe to call from several goroutines.
func parseSource(ctx context.Context, src []byte) (*sitter.Tree, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(language())

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("tree-sitter parse failed: %w", err)
	}
	return tree, nil
}

// source pairs a file's bytes with helpers over its nodes.
type source []byte

// text returns the node's source with whitespace runs collapsed to one
// space, the form type annotations are reported in.
func (s source) text(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	return strings.Join(strings.Fields(n.Content(s)), " ")
}

// namedChildren returns the named children of n, skipping comments.
func namedChildren(n *sitter.Node) []*sitter.Node {
	if n == nil {
		return nil
	}
	var out []*sitter.Node
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		if isTrivia(c) {
			continue
		}
		out = append(out, c)
	}
	return out
}

// elements returns the element nodes of a parenthesized list: named children
// plus anonymous "_" wildcards, which occupy a position without being named.
func elements(n *sitter.Node) []*sitter.Node {
	if n == nil {
		return nil
	}
	var out []*sitter.Node
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		if isTrivia(c) {
			continue
		}
		if c.IsNamed() || c.Type() == "_" {
			out = append(out, c)
		}
	}
	return out
}

// childOfType returns the first direct child with the given node type.
func childOfType(n *sitter.Node, typ string) *sitter.Node {
	if n == nil {
		return nil
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		if c := n.Child(i); c.Type() == typ {
			return c
		}
	}
	return nil
}

func isTrivia(n *sitter.Node) bool {
	switch n.Type() {
	case "line_comment", "block_comment", "attribute_item", "inner_attribute_item":
		return true
	}
	return false
}

// broken reports whether n cannot be trusted as written.
func broken(n *sitter.Node) bool {
	return n == nil || n.IsMissing() || n.Type() == "ERROR" || n.HasError()
}
