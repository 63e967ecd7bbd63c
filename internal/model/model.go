// Package model holds the flat class model mocksmith generates from.
//
// The parser extracts everything up front into these types (qualified names
// and type spellings as plain strings) and discards its syntax tree, so no
// other package ever touches parser memory. All types are immutable after
// extraction.
package model

import (
	"strings"

	"github.com/jordfras/mocksmith/internal/errs"
)

// Severity classifies a parse diagnostic.
type Severity int

const (
	SeverityWarning Severity = iota
	SeverityError
)

func (s Severity) String() string {
	if s == SeverityError {
		return "error"
	}
	return "warning"
}

// Diagnostic is a parser message attributed to the file and position where
// it occurred, which may be a transitively included file rather than the
// root input. An empty File means the source came from stdin.
type Diagnostic struct {
	File     string
	Line     uint32
	Column   uint32
	Message  string
	Severity Severity
}

// SourceHeader is one parsed input. Classes are the class declarations found
// directly in the root file, in declaration order.
type SourceHeader struct {
	Path        string
	Classes     []ClassDecl
	Diagnostics []Diagnostic
}

// ClassDecl is a mocking candidate: a class or struct together with the
// namespace chain enclosing it, outer to inner.
type ClassDecl struct {
	Name       string
	Namespaces []string
	Methods    []MethodDecl
}

// QualifiedName returns the class name including its namespace path.
func (c ClassDecl) QualifiedName() string {
	if len(c.Namespaces) == 0 {
		return c.Name
	}
	return strings.Join(c.Namespaces, "::") + "::" + c.Name
}

// IsAbstract reports whether the class declares at least one pure virtual
// method. Inherited pure virtuals are not visible to a syntactic parser, so
// only the class's own declarations count.
func (c ClassDecl) IsAbstract() bool {
	for _, m := range c.Methods {
		if m.IsPureVirtual {
			return true
		}
	}
	return false
}

// RefQualifier is a member function ref-qualifier.
type RefQualifier string

const (
	RefNone   RefQualifier = ""
	RefLValue RefQualifier = "&"
	RefRValue RefQualifier = "&&"
)

// MethodDecl is one member function. Constructors, destructors and operator
// overloads never enter the model. Type spellings are verbatim source text.
type MethodDecl struct {
	Name          string
	ReturnType    string
	Params        []ParamDecl
	IsConst       bool
	IsVirtual     bool
	IsPureVirtual bool
	IsStatic      bool
	IsNoexcept    bool
	RefQualifier  RefQualifier

	// OverloadIndex disambiguates methods sharing a name: 0-based, in
	// declaration order, computed over all declared methods before any
	// filtering so the ordinal is stable under every policy.
	OverloadIndex int
}

// ParamDecl is one parameter. Name may be empty for unnamed parameters.
type ParamDecl struct {
	Name string
	Type string
}

// MethodPolicy selects which methods of a class are mocked.
type MethodPolicy int

const (
	// MockVirtual mocks every virtual method, pure virtuals included.
	MockVirtual MethodPolicy = iota
	// MockAll mocks every non-static method.
	MockAll
	// MockPureVirtual mocks only pure virtual methods.
	MockPureVirtual
)

func (p MethodPolicy) String() string {
	switch p {
	case MockAll:
		return "all"
	case MockPureVirtual:
		return "pure"
	default:
		return "virtual"
	}
}

// ParseMethodPolicy converts a --methods flag value.
func ParseMethodPolicy(s string) (MethodPolicy, error) {
	switch s {
	case "all":
		return MockAll, nil
	case "virtual":
		return MockVirtual, nil
	case "pure":
		return MockPureVirtual, nil
	}
	return MockVirtual, errs.ConfigError(
		"invalid value '%s' for '--methods' (expected all, virtual or pure)", s)
}

// Selects reports whether the policy mocks the given method. Static methods
// are never selected: instance-based mocking macros cannot stand in for them.
func (p MethodPolicy) Selects(m MethodDecl) bool {
	if m.IsStatic {
		return false
	}
	switch p {
	case MockAll:
		return true
	case MockPureVirtual:
		return m.IsPureVirtual
	default:
		return m.IsVirtual
	}
}

// SelectMethods returns the order-preserving subsequence of the class's
// methods selected by the policy.
func SelectMethods(class ClassDecl, policy MethodPolicy) []MethodDecl {
	var selected []MethodDecl
	for _, m := range class.Methods {
		if policy.Selects(m) {
			selected = append(selected, m)
		}
	}
	return selected
}

// MockSpec is the filtered, renamed unit handed to the renderer.
type MockSpec struct {
	Class    *ClassDecl
	MockName string
	Methods  []MethodDecl
}

// Empty reports whether filtering left nothing to mock. An empty spec is
// still rendered but flagged with a warning, since mocking nothing is more
// likely a misconfiguration than an intent.
func (s MockSpec) Empty() bool {
	return len(s.Methods) == 0
}

// RenderedMock is the rendered text of one mock class.
type RenderedMock struct {
	MockName string
	Text     string
}
