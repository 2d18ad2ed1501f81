// Package translate rewrites C++ type expressions that mention project classes
// into expressions over their generated wrappers, collecting the headers the
// rewritten expression needs.
package translate

import (
	"fmt"
	"regexp"
	"strings"
)

// Node is one parsed type expression:
//
//	Prefix Name< Args... >( Params... )Suffix
type Node struct {
	// Prefix holds leading qualifiers such as "const ".
	Prefix string
	Name   string
	// Literal marks a numeric template argument.
	Literal bool
	HasArgs bool
	Args    []*Node
	// IsFunc marks a function signature such as "void( int )".
	IsFunc bool
	Params []*Node
	// Suffix is the trailing qualifier text as written, e.g. " const &".
	Suffix string

	// Set on translated trees.
	Rule Rule
	// Original is the project class a RuleWrapper node was rewritten from.
	Original string
	// Container is the container kind of a RuleContainer or RuleIndirection node.
	Container string
}

// String renders the node with single spaces inside angle brackets and ", " separators.
func (n *Node) String() string {
	var b strings.Builder
	n.write(&b)
	return b.String()
}

func (n *Node) write(b *strings.Builder) {
	b.WriteString(n.Prefix)
	b.WriteString(n.Name)
	if n.HasArgs {
		if len(n.Args) == 0 {
			b.WriteString("<>")
		} else {
			b.WriteString("< ")
			for i, a := range n.Args {
				if i > 0 {
					b.WriteString(", ")
				}
				a.write(b)
			}
			b.WriteString(" >")
		}
	}
	if n.IsFunc {
		if len(n.Params) == 0 {
			b.WriteString("()")
		} else {
			b.WriteString("( ")
			for i, p := range n.Params {
				if i > 0 {
					b.WriteString(", ")
				}
				p.write(b)
			}
			b.WriteString(" )")
		}
	}
	b.WriteString(n.Suffix)
}

// Depth returns the template nesting depth of the node (1 for a plain name).
func (n *Node) Depth() int {
	d := 0
	for _, a := range n.Args {
		d = max(d, a.Depth())
	}
	for _, p := range n.Params {
		d = max(d, p.Depth())
	}
	return d + 1
}

// Base returns the node's type without prefix and suffix qualifiers.
func (n *Node) Base() *Node {
	cp := *n
	cp.Prefix, cp.Suffix = "", ""
	return &cp
}

// IsConst reports whether the node carries a const qualifier.
func (n *Node) IsConst() bool {
	return strings.Contains(" "+n.Prefix+" ", " const ") || hasWord(n.Suffix, "const")
}

// IsReference reports whether the node is an lvalue or rvalue reference.
func (n *Node) IsReference() bool { return strings.Contains(n.Suffix, "&") }

// IsPointer reports whether the node is a raw pointer.
func (n *Node) IsPointer() bool { return strings.Contains(n.Suffix, "*") }

var wordRe = regexp.MustCompile(`[A-Za-z_][A-Za-z0-9_]*`)

func hasWord(s, w string) bool {
	for _, m := range wordRe.FindAllString(s, -1) {
		if m == w {
			return true
		}
	}
	return false
}

var spaceRe = regexp.MustCompile(`\s+`)

// typeKeywords continue a multi-word builtin name such as "unsigned long int".
var typeKeywords = map[string]bool{
	"unsigned": true, "signed": true, "long": true, "short": true,
	"int": true, "char": true, "double": true,
}

var prefixKeywords = map[string]bool{
	"const": true, "volatile": true, "typename": true, "struct": true, "class": true, "enum": true,
}

type exprParser struct {
	src string
	pos int
}

// Parse parses a type expression.
func Parse(expr string) (*Node, error) {
	p := &exprParser{src: expr}
	n, err := p.node()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return nil, fmt.Errorf("type %q: unexpected %q at offset %d", expr, p.src[p.pos:], p.pos)
	}
	return n, nil
}

func (p *exprParser) skipSpace() {
	for p.pos < len(p.src) && (p.src[p.pos] == ' ' || p.src[p.pos] == '\t' || p.src[p.pos] == '\n' || p.src[p.pos] == '\r') {
		p.pos++
	}
}

func (p *exprParser) peekIdent() string {
	i := p.pos
	for i < len(p.src) && isIdent(p.src[i]) {
		i++
	}
	return p.src[p.pos:i]
}

func isIdent(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

func (p *exprParser) node() (*Node, error) {
	n := &Node{}
	p.skipSpace()
	start := p.pos

	// prefix qualifiers
	for {
		p.skipSpace()
		id := p.peekIdent()
		if !prefixKeywords[id] {
			break
		}
		p.pos += len(id)
	}
	p.skipSpace()
	n.Prefix = collapse(p.src[start:p.pos])

	if p.pos >= len(p.src) {
		return nil, fmt.Errorf("type %q: missing type name", p.src)
	}

	// numeric literal argument
	if c := p.src[p.pos]; (c >= '0' && c <= '9') || c == '-' {
		litStart := p.pos
		p.pos++
		for p.pos < len(p.src) && isIdent(p.src[p.pos]) {
			p.pos++
		}
		n.Name = p.src[litStart:p.pos]
		n.Literal = true
		return n, nil
	}

	name, err := p.qualifiedName()
	if err != nil {
		return nil, err
	}
	n.Name = name

	p.skipSpace()
	if p.pos < len(p.src) && p.src[p.pos] == '<' {
		p.pos++
		n.HasArgs = true
		if n.Args, err = p.list('>'); err != nil {
			return nil, err
		}
	}
	p.skipSpace()
	if p.pos < len(p.src) && p.src[p.pos] == '(' {
		p.pos++
		n.IsFunc = true
		if n.Params, err = p.list(')'); err != nil {
			return nil, err
		}
	}

	// suffix: everything up to the next separator at this level
	sufStart := p.pos
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if c == ',' || c == '>' || c == ')' {
			break
		}
		if c == '<' || c == '(' {
			return nil, fmt.Errorf("type %q: unexpected %q at offset %d", p.src, c, p.pos)
		}
		p.pos++
	}
	n.Suffix = strings.TrimRight(collapse(p.src[sufStart:p.pos]), " ")
	return n, nil
}

func (p *exprParser) qualifiedName() (string, error) {
	var b strings.Builder
	if strings.HasPrefix(p.src[p.pos:], "::") {
		p.pos += 2
	}
	for {
		p.skipSpace()
		id := p.peekIdent()
		if id == "" {
			return "", fmt.Errorf("type %q: expected identifier at offset %d", p.src, p.pos)
		}
		b.WriteString(id)
		p.pos += len(id)

		save := p.pos
		p.skipSpace()
		if strings.HasPrefix(p.src[p.pos:], "::") {
			p.pos += 2
			b.WriteString("::")
			continue
		}
		// multi-word builtin types
		if typeKeywords[id] {
			if next := p.peekIdent(); typeKeywords[next] {
				b.WriteString(" ")
				continue
			}
		}
		p.pos = save
		return b.String(), nil
	}
}

func (p *exprParser) list(closer byte) ([]*Node, error) {
	var out []*Node
	p.skipSpace()
	if p.pos < len(p.src) && p.src[p.pos] == closer {
		p.pos++
		return out, nil
	}
	for {
		n, err := p.node()
		if err != nil {
			return nil, err
		}
		out = append(out, n)
		p.skipSpace()
		if p.pos >= len(p.src) {
			return nil, fmt.Errorf("type %q: missing %q", p.src, closer)
		}
		switch p.src[p.pos] {
		case ',':
			p.pos++
		case closer:
			p.pos++
			return out, nil
		default:
			return nil, fmt.Errorf("type %q: unexpected %q at offset %d", p.src, p.src[p.pos], p.pos)
		}
	}
}

func collapse(s string) string {
	return spaceRe.ReplaceAllString(s, " ")
}
