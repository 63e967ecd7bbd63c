// Package parser turns C++ header text into the flat class model the
// rest of the tool works on. It parses with tree-sitter, collects
// syntax diagnostics, and extracts mockable classes together with
// their virtual and non-virtual member functions.
package parser

import (
	"context"
	"fmt"
	"os"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/cpp"

	"github.com/jordfras/mocksmith/internal/errs"
	"github.com/jordfras/mocksmith/internal/model"
)

// Options controls how strictly a Backend treats broken input.
type Options struct {
	// IgnoreErrors downgrades syntax errors to warnings so classes
	// outside the broken regions are still extracted.
	IgnoreErrors bool
}

// Backend parses C++ headers. It is safe for concurrent use; each
// parse builds its own tree-sitter parser since those are stateful.
type Backend struct {
	lang *sitter.Language
	opts Options
}

// NewBackend returns a Backend using the bundled C++ grammar.
func NewBackend(opts Options) *Backend {
	return &Backend{lang: cpp.GetLanguage(), opts: opts}
}

// ParseFile reads and parses a header from disk.
func (b *Backend) ParseFile(ctx context.Context, path string) (*model.SourceHeader, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errs.InputNotFound(path)
		}
		return nil, errs.FileSystem(err, "could not read %s", path)
	}
	return b.parse(ctx, path, src)
}

// ParseSource parses header text that did not come from a file, such
// as stdin. Diagnostics carry no file name.
func (b *Backend) ParseSource(ctx context.Context, src []byte) (*model.SourceHeader, error) {
	return b.parse(ctx, "", src)
}

func (b *Backend) parse(ctx context.Context, path string, src []byte) (*model.SourceHeader, error) {
	p := sitter.NewParser()
	p.SetLanguage(b.lang)

	tree, err := p.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, errs.Wrapf(err, "parsing %s", displayName(path))
	}
	defer tree.Close()

	root := tree.RootNode()
	diags := collectDiagnostics(root, src, path)
	if !b.opts.IgnoreErrors {
		for _, d := range diags {
			if d.Severity == model.SeverityError {
				return nil, errs.ParseError(d.File, d.Line, d.Column, d.Message)
			}
		}
	}

	return &model.SourceHeader{
		Path:        path,
		Classes:     extractClasses(root, src),
		Diagnostics: diags,
	}, nil
}

func displayName(path string) string {
	if path == "" {
		return "<stdin>"
	}
	return path
}

// collectDiagnostics walks the tree for ERROR and missing nodes. The
// walk prunes subtrees without errors, so clean files cost one check.
func collectDiagnostics(root *sitter.Node, src []byte, path string) []model.Diagnostic {
	if !root.HasError() {
		return nil
	}

	var diags []model.Diagnostic
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if !n.HasError() && !n.IsMissing() {
			return
		}
		switch {
		case n.Type() == "ERROR":
			diags = append(diags, model.Diagnostic{
				File:     path,
				Line:     n.StartPoint().Row + 1,
				Column:   n.StartPoint().Column + 1,
				Message:  fmt.Sprintf("syntax error near '%s'", errorSnippet(n, src)),
				Severity: model.SeverityError,
			})
			return
		case n.IsMissing():
			diags = append(diags, model.Diagnostic{
				File:     path,
				Line:     n.StartPoint().Row + 1,
				Column:   n.StartPoint().Column + 1,
				Message:  fmt.Sprintf("missing '%s'", n.Type()),
				Severity: model.SeverityError,
			})
			return
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i))
		}
	}
	walk(root)
	return diags
}

func errorSnippet(n *sitter.Node, src []byte) string {
	text := n.Content(src)
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		text = text[:i]
	}
	text = strings.TrimSpace(text)
	if len(text) > 40 {
		text = text[:40] + "..."
	}
	return text
}
