// Package render turns mock specs into C++ source text: one
// MOCK_METHOD line per selected method, namespace wrapping matching
// the source class, and full header assembly around the class bodies.
package render

import (
	"fmt"
	"strings"

	"github.com/jordfras/mocksmith/internal/model"
)

// DefaultIndent matches the two-space indentation used in gMock
// documentation examples.
const DefaultIndent = "  "

// Options control the text layout shared by every mock in a run.
type Options struct {
	// Indent is one indentation level inside the mock class body.
	// Empty means DefaultIndent.
	Indent string

	// SimplifiedNamespaces selects C++17 "namespace a::b {" wrapping
	// instead of one nested block per namespace component.
	SimplifiedNamespaces bool

	// MSVCAllowDeprecated wraps the mock bodies in pragmas disabling
	// MSVC warning 4996, so mocking deprecated methods compiles clean.
	MSVCAllowDeprecated bool
}

func (o Options) indent() string {
	if o.Indent == "" {
		return DefaultIndent
	}
	return o.Indent
}

// Mock renders the namespace-wrapped class declaration for one spec.
// The mock publicly inherits the fully qualified source class name, so
// the declaration stays valid wherever the header lands.
func Mock(spec model.MockSpec, opts Options) model.RenderedMock {
	var b strings.Builder
	class := spec.Class

	if open, ok := namespaceOpen(class.Namespaces, opts.SimplifiedNamespaces); ok {
		b.WriteString(open)
		b.WriteByte('\n')
	}

	fmt.Fprintf(&b, "class %s : public %s\n", spec.MockName, class.QualifiedName())
	b.WriteString("{\npublic:\n")
	overloaded := overloadedNames(class.Methods)
	for _, m := range spec.Methods {
		b.WriteString(opts.indent())
		b.WriteString(mockMethodLine(m))
		if overloaded[m.Name] {
			fmt.Fprintf(&b, " // overload %d", m.OverloadIndex+1)
		}
		b.WriteByte('\n')
	}
	b.WriteString("};\n")

	if closing, ok := namespaceClose(class.Namespaces, opts.SimplifiedNamespaces); ok {
		b.WriteString(closing)
		b.WriteByte('\n')
	}

	return model.RenderedMock{MockName: spec.MockName, Text: b.String()}
}

// Header assembles a complete compilable mock header around the
// rendered class bodies. sourceIncludes are the include spellings for
// the originating headers, in input order; an empty list means the
// source came from stdin, so only the gmock include is emitted.
func Header(sourceIncludes []string, mocks []model.RenderedMock, opts Options) string {
	var b strings.Builder
	b.WriteString(banner(sourceIncludes))
	b.WriteString("#pragma once\n\n")
	for _, include := range sourceIncludes {
		b.WriteString("#include \"" + include + "\"\n")
	}
	b.WriteString("#include <gmock/gmock.h>\n\n")

	if opts.MSVCAllowDeprecated {
		b.WriteString("#ifdef _MSC_VER\n")
		b.WriteString("#  pragma warning(push)\n")
		b.WriteString("#  pragma warning(disable : 4996)\n")
		b.WriteString("#endif\n\n")
	}
	for i, mock := range mocks {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(mock.Text)
	}
	if opts.MSVCAllowDeprecated {
		b.WriteString("#ifdef _MSC_VER\n")
		b.WriteString("#  pragma warning(pop)\n")
		b.WriteString("#endif\n")
	}
	return b.String()
}

func banner(sourceIncludes []string) string {
	if len(sourceIncludes) == 0 {
		return "// Automatically generated by mocksmith. Do not edit.\n"
	}
	return fmt.Sprintf("// Automatically generated by mocksmith from %s. Do not edit.\n",
		strings.Join(sourceIncludes, ", "))
}

func mockMethodLine(m model.MethodDecl) string {
	args := make([]string, 0, len(m.Params))
	for _, p := range m.Params {
		text := p.Type
		if p.Name != "" {
			text += " " + p.Name
		}
		args = append(args, wrapIfComma(text))
	}
	return fmt.Sprintf("MOCK_METHOD(%s, %s, (%s), (%s));",
		wrapIfComma(m.ReturnType),
		m.Name,
		strings.Join(args, ", "),
		strings.Join(qualifiers(m), ", "))
}

// qualifiers follows the order gMock documents: const, noexcept, ref
// qualifier, override. Non-virtual methods get an empty list, which
// still renders as the required fourth macro argument.
func qualifiers(m model.MethodDecl) []string {
	var quals []string
	if m.IsConst {
		quals = append(quals, "const")
	}
	if m.IsNoexcept {
		quals = append(quals, "noexcept")
	}
	if m.RefQualifier != model.RefNone {
		quals = append(quals, fmt.Sprintf("ref(%s)", m.RefQualifier))
	}
	if m.IsVirtual {
		quals = append(quals, "override")
	}
	return quals
}

// wrapIfComma parenthesizes types containing commas so the macro
// preprocessor does not split them into separate arguments.
func wrapIfComma(s string) string {
	if strings.Contains(s, ",") {
		return "(" + s + ")"
	}
	return s
}

func namespaceOpen(namespaces []string, simplified bool) (string, bool) {
	if len(namespaces) == 0 {
		return "", false
	}
	if simplified {
		return "namespace " + strings.Join(namespaces, "::") + " {", true
	}
	parts := make([]string, len(namespaces))
	for i, ns := range namespaces {
		parts[i] = "namespace " + ns + " {"
	}
	return strings.Join(parts, " "), true
}

func namespaceClose(namespaces []string, simplified bool) (string, bool) {
	if len(namespaces) == 0 {
		return "", false
	}
	if simplified {
		return "}", true
	}
	return strings.Repeat("}", len(namespaces)), true
}

// overloadedNames reports which declared method names appear more than
// once. Declared, not selected: the ordinal stays attached even when
// filtering drops the sibling overloads.
func overloadedNames(methods []model.MethodDecl) map[string]bool {
	counts := make(map[string]int)
	for _, m := range methods {
		counts[m.Name]++
	}
	overloaded := make(map[string]bool)
	for name, n := range counts {
		if n > 1 {
			overloaded[name] = true
		}
	}
	return overloaded
}
