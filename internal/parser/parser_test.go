package parser

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jordfras/mocksmith/internal/errs"
	"github.com/jordfras/mocksmith/internal/model"
)

func parseSource(t *testing.T, src string) *model.SourceHeader {
	t.Helper()
	header, err := NewBackend(Options{}).ParseSource(context.Background(), []byte(src))
	if err != nil {
		t.Fatalf("Failed to parse source: %v", err)
	}
	return header
}

func findClass(t *testing.T, header *model.SourceHeader, name string) *model.ClassDecl {
	t.Helper()
	for i := range header.Classes {
		if header.Classes[i].Name == name {
			return &header.Classes[i]
		}
	}
	t.Fatalf("Class %s not found, got %d classes", name, len(header.Classes))
	return nil
}

func findMethod(t *testing.T, class *model.ClassDecl, name string) *model.MethodDecl {
	t.Helper()
	for i := range class.Methods {
		if class.Methods[i].Name == name {
			return &class.Methods[i]
		}
	}
	t.Fatalf("Method %s not found in class %s", name, class.Name)
	return nil
}

func TestExtractsPureVirtualClass(t *testing.T) {
	header := parseSource(t, `
class Animal
{
public:
  virtual ~Animal() = default;
  virtual void make_sound(int times) = 0;
  virtual int legs() const = 0;
};
`)

	if len(header.Classes) != 1 {
		t.Fatalf("Expected 1 class, got %d", len(header.Classes))
	}
	animal := findClass(t, header, "Animal")
	if len(animal.Methods) != 2 {
		t.Fatalf("Expected 2 methods, got %d", len(animal.Methods))
	}
	if !animal.IsAbstract() {
		t.Errorf("Animal should be abstract")
	}

	sound := findMethod(t, animal, "make_sound")
	if sound.ReturnType != "void" {
		t.Errorf("Expected return type void, got %q", sound.ReturnType)
	}
	if !sound.IsPureVirtual || !sound.IsVirtual {
		t.Errorf("make_sound should be pure virtual")
	}
	if len(sound.Params) != 1 || sound.Params[0].Type != "int" || sound.Params[0].Name != "times" {
		t.Errorf("Unexpected params: %+v", sound.Params)
	}

	legs := findMethod(t, animal, "legs")
	if !legs.IsConst {
		t.Errorf("legs should be const")
	}
	if legs.ReturnType != "int" {
		t.Errorf("Expected return type int, got %q", legs.ReturnType)
	}
}

func TestTypesAreSpelledVerbatim(t *testing.T) {
	header := parseSource(t, `
class Repository
{
public:
  virtual const std::map<int, int>& lookup(const std::map<int, int>& table) const = 0;
  virtual std::unique_ptr<Row> take(std::vector<std::string> names) = 0;
};
`)

	repo := findClass(t, header, "Repository")

	lookup := findMethod(t, repo, "lookup")
	if lookup.ReturnType != "const std::map<int, int>&" {
		t.Errorf("Unexpected return type: %q", lookup.ReturnType)
	}
	if lookup.Params[0].Type != "const std::map<int, int>&" {
		t.Errorf("Unexpected param type: %q", lookup.Params[0].Type)
	}
	if lookup.Params[0].Name != "table" {
		t.Errorf("Unexpected param name: %q", lookup.Params[0].Name)
	}

	take := findMethod(t, repo, "take")
	if take.ReturnType != "std::unique_ptr<Row>" {
		t.Errorf("Unexpected return type: %q", take.ReturnType)
	}
	if take.Params[0].Type != "std::vector<std::string>" {
		t.Errorf("Unexpected param type: %q", take.Params[0].Type)
	}
}

func TestMethodQualifiers(t *testing.T) {
	header := parseSource(t, `
class Handle
{
public:
  virtual int value() const & = 0;
  virtual int take() && = 0;
  virtual void close() noexcept = 0;
  virtual void flush();
};
`)

	handle := findClass(t, header, "Handle")

	value := findMethod(t, handle, "value")
	if !value.IsConst {
		t.Errorf("value should be const")
	}
	if value.RefQualifier != model.RefLValue {
		t.Errorf("value should be & qualified, got %q", value.RefQualifier)
	}

	take := findMethod(t, handle, "take")
	if take.RefQualifier != model.RefRValue {
		t.Errorf("take should be && qualified, got %q", take.RefQualifier)
	}

	closeM := findMethod(t, handle, "close")
	if !closeM.IsNoexcept {
		t.Errorf("close should be noexcept")
	}

	flush := findMethod(t, handle, "flush")
	if !flush.IsVirtual || flush.IsPureVirtual {
		t.Errorf("flush should be plain virtual")
	}
	if flush.IsConst || flush.IsNoexcept || flush.RefQualifier != model.RefNone {
		t.Errorf("flush should carry no qualifiers")
	}
}

func TestOverrideImpliesVirtual(t *testing.T) {
	header := parseSource(t, `
class Derived : public Base
{
public:
  void handle(int event) override;
  void plain(int event);
};
`)

	derived := findClass(t, header, "Derived")
	if !findMethod(t, derived, "handle").IsVirtual {
		t.Errorf("Method with override should be virtual")
	}
	if findMethod(t, derived, "plain").IsVirtual {
		t.Errorf("Method without virtual or override should not be virtual")
	}
}

func TestNamespaces(t *testing.T) {
	t.Run("nested definitions", func(t *testing.T) {
		header := parseSource(t, `
namespace outer {
namespace inner {
class Widget
{
public:
  virtual void draw() = 0;
};
}
}
`)
		widget := findClass(t, header, "Widget")
		if len(widget.Namespaces) != 2 || widget.Namespaces[0] != "outer" || widget.Namespaces[1] != "inner" {
			t.Errorf("Unexpected namespaces: %v", widget.Namespaces)
		}
		if widget.QualifiedName() != "outer::inner::Widget" {
			t.Errorf("Unexpected qualified name: %s", widget.QualifiedName())
		}
	})

	t.Run("compound definition", func(t *testing.T) {
		header := parseSource(t, `
namespace outer::inner {
class Gadget
{
public:
  virtual void spin() = 0;
};
}
`)
		gadget := findClass(t, header, "Gadget")
		if len(gadget.Namespaces) != 2 || gadget.Namespaces[0] != "outer" || gadget.Namespaces[1] != "inner" {
			t.Errorf("Unexpected namespaces: %v", gadget.Namespaces)
		}
	})

	t.Run("anonymous namespace is transparent", func(t *testing.T) {
		header := parseSource(t, `
namespace seen {
namespace {
class Hidden
{
public:
  virtual void poke() = 0;
};
}
}
`)
		hidden := findClass(t, header, "Hidden")
		if len(hidden.Namespaces) != 1 || hidden.Namespaces[0] != "seen" {
			t.Errorf("Unexpected namespaces: %v", hidden.Namespaces)
		}
	})
}

func TestStructsAndAllAccessLevels(t *testing.T) {
	header := parseSource(t, `
struct Door
{
  virtual void open() = 0;
protected:
  virtual void lock() = 0;
private:
  virtual void hinge() = 0;
};
`)

	door := findClass(t, header, "Door")
	for _, name := range []string{"open", "lock", "hinge"} {
		if !findMethod(t, door, name).IsVirtual {
			t.Errorf("Method %s should be virtual", name)
		}
	}
}

func TestStaticMethodsAreMarked(t *testing.T) {
	header := parseSource(t, `
class Registry
{
public:
  static Registry& instance();
  virtual void add(int id) = 0;
};
`)

	registry := findClass(t, header, "Registry")
	if !findMethod(t, registry, "instance").IsStatic {
		t.Errorf("instance should be static")
	}
	if findMethod(t, registry, "add").IsStatic {
		t.Errorf("add should not be static")
	}
}

func TestSkipsSpecialMembersAndOperators(t *testing.T) {
	header := parseSource(t, `
class Buffer
{
public:
  Buffer();
  Buffer(const Buffer& other);
  virtual ~Buffer();
  Buffer& operator=(const Buffer& other);
  bool operator==(const Buffer& other) const;
  virtual void clear() = 0;
};
`)

	buffer := findClass(t, header, "Buffer")
	if len(buffer.Methods) != 1 {
		names := make([]string, 0, len(buffer.Methods))
		for _, m := range buffer.Methods {
			names = append(names, m.Name)
		}
		t.Fatalf("Expected only clear, got %v", names)
	}
	if buffer.Methods[0].Name != "clear" {
		t.Errorf("Expected clear, got %s", buffer.Methods[0].Name)
	}
}

func TestSkipsDeletedMethods(t *testing.T) {
	header := parseSource(t, `
class Pinned
{
public:
  virtual void use() = 0;
  void copy_from(const Pinned& other) = delete;
};
`)

	pinned := findClass(t, header, "Pinned")
	if len(pinned.Methods) != 1 || pinned.Methods[0].Name != "use" {
		t.Errorf("Deleted method should be skipped, got %+v", pinned.Methods)
	}
}

func TestSkipsDataMembersAndNestedTypes(t *testing.T) {
	header := parseSource(t, `
class Outer
{
public:
  virtual void run() = 0;
  int counter;
  void (*callback)(int code);
  enum Mode { Fast, Slow };
  class Inner
  {
  public:
    virtual void stop() = 0;
  };
};
`)

	if len(header.Classes) != 1 {
		t.Fatalf("Nested classes should not be extracted, got %d classes", len(header.Classes))
	}
	outer := findClass(t, header, "Outer")
	if len(outer.Methods) != 1 || outer.Methods[0].Name != "run" {
		t.Errorf("Expected only run, got %+v", outer.Methods)
	}
}

func TestSkipsTemplatesAndForwardDeclarations(t *testing.T) {
	header := parseSource(t, `
class Fwd;

template <typename T>
class Box
{
public:
  virtual T get() = 0;
};

class Plain
{
public:
  virtual int id() = 0;
};
`)

	if len(header.Classes) != 1 {
		t.Fatalf("Expected 1 class, got %d", len(header.Classes))
	}
	if header.Classes[0].Name != "Plain" {
		t.Errorf("Expected Plain, got %s", header.Classes[0].Name)
	}
}

func TestParameterShapes(t *testing.T) {
	header := parseSource(t, `
class Sink
{
public:
  virtual void touch(int) = 0;
  virtual void speak(int times = 3) = 0;
  virtual void on_event(void (*cb)(int code)) = 0;
  virtual void logf(const char* fmt, ...) = 0;
};
`)

	sink := findClass(t, header, "Sink")

	touch := findMethod(t, sink, "touch")
	if touch.Params[0].Type != "int" || touch.Params[0].Name != "" {
		t.Errorf("Unexpected unnamed param: %+v", touch.Params[0])
	}

	speak := findMethod(t, sink, "speak")
	if speak.Params[0].Type != "int" || speak.Params[0].Name != "times" {
		t.Errorf("Default value should be dropped: %+v", speak.Params[0])
	}

	onEvent := findMethod(t, sink, "on_event")
	if onEvent.Params[0].Type != "void (*cb)(int code)" || onEvent.Params[0].Name != "" {
		t.Errorf("Function pointer param should keep full text: %+v", onEvent.Params[0])
	}

	logf := findMethod(t, sink, "logf")
	if len(logf.Params) != 2 || logf.Params[1].Type != "..." {
		t.Errorf("Variadic param should be extracted: %+v", logf.Params)
	}
}

func TestOverloadIndices(t *testing.T) {
	header := parseSource(t, `
class Calc
{
public:
  virtual int eval(int a) = 0;
  virtual int eval(int a, int b) = 0;
  virtual void reset() = 0;
};
`)

	calc := findClass(t, header, "Calc")
	if len(calc.Methods) != 3 {
		t.Fatalf("Expected 3 methods, got %d", len(calc.Methods))
	}
	if calc.Methods[0].OverloadIndex != 0 || calc.Methods[1].OverloadIndex != 1 {
		t.Errorf("Overload indices wrong: %d, %d",
			calc.Methods[0].OverloadIndex, calc.Methods[1].OverloadIndex)
	}
	if calc.Methods[2].OverloadIndex != 0 {
		t.Errorf("reset index should be 0, got %d", calc.Methods[2].OverloadIndex)
	}
}

func TestSyntaxErrorsAreFatalByDefault(t *testing.T) {
	_, err := NewBackend(Options{}).ParseSource(context.Background(), []byte(`
class Good
{
public:
  virtual void ping() = 0;
};

%%%%
`))
	if err == nil {
		t.Fatalf("Expected parse error")
	}
	if !errs.Is(err, errs.ErrParse) {
		t.Errorf("Error should match ErrParse: %v", err)
	}
	if !strings.Contains(err.Error(), "Parse error") {
		t.Errorf("Unexpected error message: %v", err)
	}
}

func TestIgnoreErrorsStillExtracts(t *testing.T) {
	header, err := NewBackend(Options{IgnoreErrors: true}).ParseSource(context.Background(), []byte(`
class Good
{
public:
  virtual void ping() = 0;
};

%%%%
`))
	if err != nil {
		t.Fatalf("Parse should succeed with IgnoreErrors: %v", err)
	}
	if len(header.Diagnostics) == 0 {
		t.Errorf("Expected diagnostics for broken input")
	}
	good := findClass(t, header, "Good")
	if len(good.Methods) != 1 {
		t.Errorf("Class before the error should still be extracted")
	}
}

func TestParseFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "animal.h")
	content := `
class Animal
{
public:
  virtual int legs() const = 0;
};
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write test header: %v", err)
	}

	header, err := NewBackend(Options{}).ParseFile(context.Background(), path)
	if err != nil {
		t.Fatalf("Failed to parse file: %v", err)
	}
	if header.Path != path {
		t.Errorf("Expected path %s, got %s", path, header.Path)
	}
	findClass(t, header, "Animal")
}

func TestParseFileMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.h")
	_, err := NewBackend(Options{}).ParseFile(context.Background(), path)
	if err == nil {
		t.Fatalf("Expected error for missing file")
	}
	if !errs.Is(err, errs.ErrInputNotFound) {
		t.Errorf("Error should match ErrInputNotFound: %v", err)
	}
	if !strings.Contains(err.Error(), "does not exist") {
		t.Errorf("Unexpected error message: %v", err)
	}
}
