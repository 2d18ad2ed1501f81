package scanner

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/cpp"
)

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	pureRe       = regexp.MustCompile(`=\s*0\s*;?\s*$`)
	deletedRe    = regexp.MustCompile(`=\s*delete\s*;?\s*$`)
	overrideRe   = regexp.MustCompile(`\b(override|final)\b`)
	macroArgRe   = regexp.MustCompile(`^\s*\(\s*((?:::\s*)?[A-Za-z_]\w*(?:\s*::\s*[A-Za-z_]\w*)*)\s*[,)]`)
)

// TreeSitterParser extracts declarations from a tree-sitter C++ syntax tree.
// Preprocessor conditionals are walked through, so every branch contributes.
type TreeSitterParser struct {
	lang *sitter.Language
}

// NewTreeSitterParser returns a parser for the C++ grammar.
func NewTreeSitterParser() *TreeSitterParser {
	return &TreeSitterParser{lang: cpp.GetLanguage()}
}

func (*TreeSitterParser) Name() string { return ParserTreeSitter }

func (tp *TreeSitterParser) Parse(path string, src []byte) (*File, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(tp.lang)

	tree, err := parser.ParseCtx(context.Background(), nil, src)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	defer tree.Close()

	f := &File{Path: path}
	w := &tsWalker{src: src, file: f}
	w.walk(tree.RootNode(), nil)
	w.macros(tree.RootNode())
	return f, nil
}

type tsWalker struct {
	src  []byte
	file *File
}

func (w *tsWalker) text(n *sitter.Node) string {
	return n.Content(w.src)
}

func (w *tsWalker) walk(n *sitter.Node, ns []string) {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		switch child.Type() {
		case "namespace_definition":
			inner := ns
			if name := child.ChildByFieldName("name"); name != nil {
				inner = append(append([]string(nil), ns...), splitScope(w.text(name))...)
			}
			if body := child.ChildByFieldName("body"); body != nil {
				w.walk(body, inner)
			}
		case "class_specifier", "struct_specifier":
			w.class(child, ns, nil)
		case "function_definition", "compound_statement":
			// bodies never declare wrapped classes
		default:
			w.walk(child, ns)
		}
	}
}

// macros records every upper-case identifier followed by an argument list.
// Macro invocations outside a function body often parse as error nodes, so
// identifiers are matched wherever they appear; directives are skipped.
func (w *tsWalker) macros(n *sitter.Node) {
	switch n.Type() {
	case "comment", "string_literal", "raw_string_literal", "char_literal",
		"preproc_def", "preproc_function_def", "preproc_include", "preproc_call":
		return
	}
	if n.ChildCount() == 0 {
		// Error recovery may lex the name as any identifier kind.
		name := w.text(n)
		if !n.IsNamed() || !strings.HasSuffix(n.Type(), "identifier") || !isMacroName(name) {
			return
		}
		rest := w.src[n.EndByte():]
		if !startsArgumentList(rest) {
			return
		}
		call := MacroCall{Name: name, Line: int(n.StartPoint().Row) + 1}
		if m := macroArgRe.FindSubmatch(rest); m != nil {
			scope := splitScope(string(m[1]))
			call.Arg = scope[len(scope)-1]
		}
		w.file.Macros = append(w.file.Macros, call)
		return
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		w.macros(n.Child(i))
	}
}

func startsArgumentList(b []byte) bool {
	for _, c := range b {
		switch c {
		case ' ', '\t', '\r', '\n':
			continue
		case '(':
			return true
		}
		return false
	}
	return false
}

func (w *tsWalker) class(n *sitter.Node, ns []string, outer *ClassDecl) {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	name := w.text(nameNode)
	if i := strings.LastIndex(name, "::"); i >= 0 {
		name = name[i+2:]
	}
	if strings.Contains(name, "<") {
		return
	}
	decl := &ClassDecl{
		Name:      name,
		Namespace: append([]string(nil), ns...),
		Line:      int(n.StartPoint().Row) + 1,
	}
	if outer != nil {
		decl.Namespace = append(decl.Namespace, outer.Name)
	}
	defAccess := Private
	if n.Type() == "struct_specifier" {
		defAccess = Public
	}

	body := n.ChildByFieldName("body")
	if body == nil {
		decl.Forward = true
		w.file.Classes = append(w.file.Classes, decl)
		return
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if c := n.NamedChild(i); c.Type() == "base_class_clause" {
			decl.Bases = w.bases(c, defAccess)
		}
	}
	w.file.Classes = append(w.file.Classes, decl)
	w.members(body, decl, defAccess)
}

func (w *tsWalker) bases(n *sitter.Node, defAccess Access) []Base {
	var out []Base
	cur := Base{Access: defAccess}
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		switch c.Type() {
		case ",":
			cur = Base{Access: defAccess}
		case "access_specifier", "public", "protected", "private":
			cur.Access = Access(strings.TrimSpace(w.text(c)))
		case "virtual":
			cur.Virtual = true
		case "type_identifier", "qualified_identifier", "template_type", "qualified_type_identifier":
			cur.Name = baseName(w.text(c))
			out = append(out, cur)
		}
	}
	return out
}

// baseName strips template arguments, a leading scope operator and whitespace.
func baseName(s string) string {
	if i := strings.Index(s, "<"); i >= 0 {
		s = s[:i]
	}
	s = whitespaceRe.ReplaceAllString(s, "")
	return strings.TrimPrefix(s, "::")
}

func splitScope(s string) []string {
	var out []string
	for _, p := range strings.Split(whitespaceRe.ReplaceAllString(s, ""), "::") {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (w *tsWalker) members(body *sitter.Node, cls *ClassDecl, access Access) {
	for i := 0; i < int(body.NamedChildCount()); i++ {
		c := body.NamedChild(i)
		switch c.Type() {
		case "access_specifier":
			access = Access(strings.TrimSpace(strings.TrimSuffix(w.text(c), ":")))
		case "class_specifier", "struct_specifier":
			w.class(c, cls.Namespace, cls)
		case "field_declaration", "declaration", "function_definition", "template_declaration":
			if t := c.ChildByFieldName("type"); t != nil && (t.Type() == "class_specifier" || t.Type() == "struct_specifier") {
				w.class(t, cls.Namespace, cls)
				continue
			}
			w.method(c, cls, access)
		case "preproc_if", "preproc_ifdef", "preproc_else", "preproc_elif":
			w.members(c, cls, access)
		}
	}
}

func (w *tsWalker) method(n *sitter.Node, cls *ClassDecl, access Access) {
	fd := findFunctionDeclarator(n)
	if fd == nil {
		return
	}
	declNode := fd.ChildByFieldName("declarator")
	if declNode == nil {
		return
	}
	name := w.text(declNode)
	m := Method{Name: name, Access: access, Line: int(n.StartPoint().Row) + 1}
	m.Constructor = name == cls.Name

	for i := 0; i < int(fd.ChildCount()); i++ {
		c := fd.Child(i)
		if c.Type() == "virtual_specifier" {
			m.Override = true
		}
	}
	// Text after the declarator carries "= 0" or "= delete".
	tail := string(w.src[fd.EndByte():n.EndByte()])
	if body := n.ChildByFieldName("body"); body != nil {
		tail = string(w.src[fd.EndByte():body.StartByte()])
	}
	if overrideRe.MatchString(tail) {
		m.Override = true
	}
	m.Pure = pureRe.MatchString(tail)
	m.Deleted = deletedRe.MatchString(tail)
	cls.Methods = append(cls.Methods, m)
}

// findFunctionDeclarator locates the function declarator of a member declaration,
// looking through reference, pointer and template wrappers but not into bodies.
func findFunctionDeclarator(n *sitter.Node) *sitter.Node {
	if n.Type() == "function_declarator" {
		return n
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		switch c.Type() {
		case "compound_statement", "field_initializer_list", "parameter_list":
			continue
		}
		if fd := findFunctionDeclarator(c); fd != nil {
			return fd
		}
	}
	return nil
}
