package parser

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/jordfras/mocksmith/internal/model"
)

// extractClasses collects every named class and struct with a body,
// carrying the namespace chain down the tree. Template declarations
// and nested classes are not descended into; anonymous namespaces are
// transparent.
func extractClasses(root *sitter.Node, src []byte) []model.ClassDecl {
	var classes []model.ClassDecl
	var walk func(n *sitter.Node, namespaces []string)
	walk = func(n *sitter.Node, namespaces []string) {
		switch n.Type() {
		case "template_declaration":
			// Class and function templates cannot be mocked.
			return
		case "namespace_definition":
			ns := namespaces
			if name := n.ChildByFieldName("name"); name != nil {
				parts := strings.Split(name.Content(src), "::")
				ns = make([]string, 0, len(namespaces)+len(parts))
				ns = append(ns, namespaces...)
				ns = append(ns, parts...)
			}
			if body := n.ChildByFieldName("body"); body != nil {
				for i := 0; i < int(body.ChildCount()); i++ {
					walk(body.Child(i), ns)
				}
			}
			return
		case "class_specifier", "struct_specifier":
			if class, ok := extractClass(n, src, namespaces); ok {
				classes = append(classes, class)
			}
			return
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i), namespaces)
		}
	}
	walk(root, nil)
	return classes
}

func extractClass(n *sitter.Node, src []byte, namespaces []string) (model.ClassDecl, bool) {
	nameNode := n.ChildByFieldName("name")
	body := n.ChildByFieldName("body")
	if nameNode == nil || body == nil {
		// Forward declaration or anonymous type.
		return model.ClassDecl{}, false
	}
	name := nameNode.Content(src)

	var methods []model.MethodDecl
	for i := 0; i < int(body.ChildCount()); i++ {
		child := body.Child(i)
		switch child.Type() {
		case "field_declaration", "function_definition", "declaration":
			if m, ok := extractMethod(child, src, name); ok {
				methods = append(methods, m)
			}
		}
	}
	assignOverloadIndices(methods)

	return model.ClassDecl{Name: name, Namespaces: namespaces, Methods: methods}, true
}

// extractMethod turns one member declaration into a MethodDecl. The
// return type and parameter types are verbatim source slices located
// by the syntax tree, so the generated mock spells types exactly the
// way the header does. Constructors, destructors, operators, deleted
// methods and data members all report ok == false.
func extractMethod(n *sitter.Node, src []byte, className string) (model.MethodDecl, bool) {
	decl := findFunctionDeclarator(n)
	if decl == nil {
		return model.MethodDecl{}, false
	}
	typ := n.ChildByFieldName("type")
	if typ == nil {
		// Constructors and conversion operators have no return type.
		return model.MethodDecl{}, false
	}
	nameNode := decl.ChildByFieldName("declarator")
	if nameNode == nil {
		return model.MethodDecl{}, false
	}
	switch nameNode.Type() {
	case "field_identifier", "identifier":
	default:
		// destructor_name, operator_name, qualified_identifier, ...
		return model.MethodDecl{}, false
	}
	name := nameNode.Content(src)
	if name == className {
		return model.MethodDecl{}, false
	}

	// Leading cv-qualifiers sit outside the type field.
	typeStart := typ.StartByte()
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		if c.Type() == "type_qualifier" && c.StartByte() < typeStart {
			typeStart = c.StartByte()
			break
		}
	}
	returnType := strings.TrimSpace(string(src[typeStart:decl.StartByte()]))
	head := string(src[n.StartByte():typeStart])

	params := decl.ChildByFieldName("parameters")
	tailStart := decl.EndByte()
	if params != nil {
		tailStart = params.EndByte()
	}
	tailEnd := n.EndByte()
	if body := n.ChildByFieldName("body"); body != nil {
		tailEnd = body.StartByte()
	}
	tail := string(src[tailStart:tailEnd])

	if compactContains(tail, "=delete") {
		return model.MethodDecl{}, false
	}
	pure := compactContains(tail, "=0")
	override := containsWord(tail, "override")

	m := model.MethodDecl{
		Name:          name,
		ReturnType:    returnType,
		IsConst:       containsWord(tail, "const"),
		IsNoexcept:    containsWord(tail, "noexcept"),
		IsPureVirtual: pure,
		IsStatic:      containsWord(head, "static"),
		IsVirtual:     containsWord(head, "virtual") || override || pure,
	}
	switch {
	case strings.Contains(tail, "&&"):
		m.RefQualifier = model.RefRValue
	case strings.Contains(tail, "&"):
		m.RefQualifier = model.RefLValue
	}
	if params != nil {
		m.Params = extractParams(params, src)
	}
	return m, true
}

func extractParams(params *sitter.Node, src []byte) []model.ParamDecl {
	var out []model.ParamDecl
	for i := 0; i < int(params.ChildCount()); i++ {
		p := params.Child(i)
		switch p.Type() {
		case "variadic_parameter_declaration":
			out = append(out, model.ParamDecl{Type: "..."})
		case "parameter_declaration", "optional_parameter_declaration":
			out = append(out, extractParam(p, src))
		}
	}
	return out
}

// extractParam splits a parameter into its type text and name. When
// the declarator is not a plain (possibly pointer or reference)
// identifier, the whole parameter text becomes the type; the renderer
// emits it unchanged, which keeps function pointer and array
// parameters intact. Default argument values are dropped.
func extractParam(p *sitter.Node, src []byte) model.ParamDecl {
	if nameNode := paramName(p); nameNode != nil {
		return model.ParamDecl{
			Type: strings.TrimSpace(string(src[p.StartByte():nameNode.StartByte()])),
			Name: nameNode.Content(src),
		}
	}
	end := p.EndByte()
	if dv := p.ChildByFieldName("default_value"); dv != nil {
		end = dv.StartByte()
	}
	text := string(src[p.StartByte():end])
	if i := strings.LastIndexByte(text, '='); i >= 0 && p.ChildByFieldName("default_value") != nil {
		text = text[:i]
	}
	return model.ParamDecl{Type: strings.TrimSpace(text)}
}

func paramName(p *sitter.Node) *sitter.Node {
	d := p.ChildByFieldName("declarator")
	for d != nil {
		switch d.Type() {
		case "identifier":
			return d
		case "pointer_declarator", "reference_declarator":
			d = innerDeclarator(d)
		default:
			return nil
		}
	}
	return nil
}

// findFunctionDeclarator descends pointer and reference declarators
// until it reaches the function declarator, if any.
func findFunctionDeclarator(n *sitter.Node) *sitter.Node {
	d := n.ChildByFieldName("declarator")
	for d != nil {
		switch d.Type() {
		case "function_declarator":
			return d
		case "pointer_declarator", "reference_declarator":
			d = innerDeclarator(d)
		default:
			return nil
		}
	}
	return nil
}

// innerDeclarator unwraps one declarator level. reference_declarator
// exposes no field for its child, so fall back to the last named one.
func innerDeclarator(d *sitter.Node) *sitter.Node {
	if next := d.ChildByFieldName("declarator"); next != nil {
		return next
	}
	for i := int(d.ChildCount()) - 1; i >= 0; i-- {
		if c := d.Child(i); c.IsNamed() {
			return c
		}
	}
	return nil
}

func assignOverloadIndices(methods []model.MethodDecl) {
	seen := make(map[string]int)
	for i := range methods {
		methods[i].OverloadIndex = seen[methods[i].Name]
		seen[methods[i].Name]++
	}
}

// compactContains reports whether needle occurs in s after all
// whitespace is removed, so "= 0" and "=0" both match.
func compactContains(s, needle string) bool {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case ' ', '\t', '\n', '\r':
		default:
			b.WriteByte(s[i])
		}
	}
	return strings.Contains(b.String(), needle)
}

func containsWord(s, word string) bool {
	for i := 0; i+len(word) <= len(s); {
		j := strings.Index(s[i:], word)
		if j < 0 {
			return false
		}
		j += i
		before := j == 0 || !isWordByte(s[j-1])
		after := j+len(word) == len(s) || !isWordByte(s[j+len(word)])
		if before && after {
			return true
		}
		i = j + len(word)
	}
	return false
}

func isWordByte(b byte) bool {
	return b == '_' ||
		('0' <= b && b <= '9') ||
		('a' <= b && b <= 'z') ||
		('A' <= b && b <= 'Z')
}
