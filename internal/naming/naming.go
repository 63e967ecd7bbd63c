// Package naming derives mock class names and output file names.
//
// Names are transformed by sed style replacement rules of the form
// s/<regex>/<replacement>/. Rules form a pipeline: every rule is applied in
// order to the output of the previous one, and a rule whose pattern does not
// match passes the string through unchanged. Patterns must match the entire
// name (they are compiled anchored) and replacements may reference capture
// groups \1 through \9.
package naming

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/jordfras/mocksmith/internal/errs"
)

// Rule is one compiled sed style replacement.
type Rule struct {
	pattern     *regexp.Regexp
	replacement string
	raw         string
}

// Rules is an ordered replacement pipeline.
type Rules []Rule

// ParseRule compiles a single s/<regex>/<replacement>/ string.
func ParseRule(s string) (Rule, error) {
	parts := strings.Split(s, "/")
	if !strings.HasSuffix(s, "/") || len(parts) != 4 || parts[0] != "s" {
		return Rule{}, errs.ConfigError(
			"invalid sed style replacement: got %s, but expected s/<regex>/<replacement>/", s)
	}
	pattern, err := regexp.Compile("^" + parts[1] + "$")
	if err != nil {
		return Rule{}, errs.ConfigError("invalid sed style replacement: %v", err)
	}
	return Rule{pattern: pattern, replacement: parts[2], raw: s}, nil
}

// ParseRules compiles a pipeline, preserving order.
func ParseRules(specs []string) (Rules, error) {
	rules := make(Rules, 0, len(specs))
	for _, s := range specs {
		rule, err := ParseRule(s)
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

// Apply runs the rule on name. A non-matching pattern returns name unchanged.
func (r Rule) Apply(name string) string {
	captures := r.pattern.FindStringSubmatch(name)
	if captures == nil {
		return name
	}
	out := r.replacement
	for i := 1; i < len(captures) && i <= 9; i++ {
		out = strings.ReplaceAll(out, fmt.Sprintf(`\%d`, i), captures[i])
	}
	return out
}

// Apply runs every rule in order, each on the output of the previous.
func (rs Rules) Apply(name string) string {
	for _, r := range rs {
		name = r.Apply(name)
	}
	return name
}

func (r Rule) String() string {
	return r.raw
}

// DefaultMockName strips common interface markers from the class name and
// prepends "Mock": the suffixes "Interface" and "Ifc", the prefixes
// "Interface" and "Ifc", and a leading "I" when followed by an uppercase
// letter. "Foo" becomes "MockFoo", "IMyType" becomes "MockMyType".
func DefaultMockName(className string) string {
	switch {
	case strings.HasSuffix(className, "Interface"):
		return "Mock" + strings.TrimSuffix(className, "Interface")
	case strings.HasSuffix(className, "Ifc"):
		return "Mock" + strings.TrimSuffix(className, "Ifc")
	case strings.HasPrefix(className, "Interface"):
		return "Mock" + strings.TrimPrefix(className, "Interface")
	case strings.HasPrefix(className, "Ifc"):
		return "Mock" + strings.TrimPrefix(className, "Ifc")
	case len(className) > 1 && className[0] == 'I' && unicode.IsUpper(rune(className[1])):
		return "Mock" + className[1:]
	default:
		return "Mock" + className
	}
}

// MockName derives the mock class name from the unqualified class name.
// Without rules the default naming applies. With rules the pipeline runs;
// if it leaves the name unchanged the plain "Mock" prefix is used instead,
// since a mock sharing its class's name would not compile.
func MockName(rules Rules, className string) string {
	if len(rules) == 0 {
		return DefaultMockName(className)
	}
	if out := rules.Apply(className); out != className {
		return out
	}
	return "Mock" + className
}

// OutputFileName derives the output file's base name from the source
// header's base name. Without rules the base name is kept as is; the file is
// only relocated into the output directory.
func OutputFileName(rules Rules, baseName string) string {
	return rules.Apply(baseName)
}
