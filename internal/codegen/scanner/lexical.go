package scanner

import (
	"slices"
)

type tokKind int

const (
	tokIdent tokKind = iota
	tokNumber
	tokPunct
)

type token struct {
	kind tokKind
	text string
	line int
}

// tokenize splits C++ source into identifiers, numbers and punctuation.
// Comments, string and character literals and preprocessor lines are dropped.
func tokenize(src []byte) []token {
	var toks []token
	line := 1
	atLineStart := true
	n := len(src)
	for i := 0; i < n; {
		c := src[i]
		switch {
		case c == '\n':
			line++
			atLineStart = true
			i++
			continue
		case c == ' ' || c == '\t' || c == '\r' || c == '\f' || c == '\v':
			i++
			continue
		case c == '#' && atLineStart:
			for i < n && src[i] != '\n' {
				if src[i] == '\\' && i+1 < n && src[i+1] == '\n' {
					line++
					i += 2
					continue
				}
				if src[i] == '/' && i+1 < n && src[i+1] == '*' {
					i = skipBlockComment(src, i, &line)
					continue
				}
				i++
			}
			continue
		}
		atLineStart = false

		switch {
		case c == '/' && i+1 < n && src[i+1] == '/':
			for i < n && src[i] != '\n' {
				i++
			}
		case c == '/' && i+1 < n && src[i+1] == '*':
			i = skipBlockComment(src, i, &line)
		case c == '"' || c == '\'':
			i = skipQuoted(src, i, &line)
		case isIdentStart(c):
			start := i
			for i < n && isIdentPart(src[i]) {
				i++
			}
			// Raw string literal prefix.
			if i < n && src[i] == '"' && src[i-1] == 'R' {
				i = skipRawString(src, i, &line)
				continue
			}
			toks = append(toks, token{kind: tokIdent, text: string(src[start:i]), line: line})
		case c >= '0' && c <= '9':
			start := i
			for i < n && (isIdentPart(src[i]) || src[i] == '.' || src[i] == '\'') {
				i++
			}
			toks = append(toks, token{kind: tokNumber, text: string(src[start:i]), line: line})
		case c == ':' && i+1 < n && src[i+1] == ':':
			toks = append(toks, token{kind: tokPunct, text: "::", line: line})
			i += 2
		default:
			toks = append(toks, token{kind: tokPunct, text: string(c), line: line})
			i++
		}
	}
	return toks
}

func skipBlockComment(src []byte, i int, line *int) int {
	i += 2
	for i < len(src) {
		if src[i] == '\n' {
			*line++
		}
		if src[i] == '*' && i+1 < len(src) && src[i+1] == '/' {
			return i + 2
		}
		i++
	}
	return i
}

func skipQuoted(src []byte, i int, line *int) int {
	q := src[i]
	i++
	for i < len(src) {
		switch src[i] {
		case '\\':
			i += 2
			continue
		case '\n':
			*line++
		case q:
			return i + 1
		}
		i++
	}
	return i
}

// skipRawString skips R"delim( ... )delim". i points at the opening quote.
func skipRawString(src []byte, i int, line *int) int {
	open := i + 1
	j := open
	for j < len(src) && src[j] != '(' {
		j++
	}
	closing := ")" + string(src[open:j]) + "\""
	for k := j; k < len(src); k++ {
		if src[k] == '\n' {
			*line++
		}
		if src[k] == ')' && k+len(closing) <= len(src) && string(src[k:k+len(closing)]) == closing {
			return k + len(closing)
		}
	}
	return len(src)
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// isMacroName reports whether an identifier follows the upper-case macro convention.
func isMacroName(s string) bool {
	if s == "" || s[0] < 'A' || s[0] > 'Z' {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !(c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_') {
			return false
		}
	}
	return true
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

// LexicalParser recognizes namespaces, class heads, base clauses, access
// sections and member function declarations from a token stream.
type LexicalParser struct{}

func (LexicalParser) Name() string { return ParserLexical }

func (LexicalParser) Parse(path string, src []byte) (*File, error) {
	toks := tokenize(src)
	p := &lexParser{toks: toks, file: &File{Path: path, Macros: macroCalls(toks)}}
	p.scope(nil, nil, false, Private)
	return p.file, nil
}

// macroCalls finds upper-case identifiers directly followed by an opening parenthesis.
func macroCalls(toks []token) []MacroCall {
	var out []MacroCall
	for i := 0; i+1 < len(toks); i++ {
		if toks[i].kind != tokIdent || toks[i+1].text != "(" || !isMacroName(toks[i].text) {
			continue
		}
		call := MacroCall{Name: toks[i].text, Line: toks[i].line}
		arg := ""
		j := i + 2
		for ; j < len(toks) && (toks[j].kind == tokIdent || toks[j].text == "::"); j++ {
			if toks[j].kind == tokIdent {
				arg = toks[j].text
			}
		}
		if j < len(toks) && (toks[j].text == "," || toks[j].text == ")") {
			call.Arg = arg
		}
		out = append(out, call)
	}
	return out
}

type lexParser struct {
	toks []token
	pos  int
	file *File
}

func (p *lexParser) eof() bool { return p.pos >= len(p.toks) }

func (p *lexParser) peek(off int) token {
	if p.pos+off < len(p.toks) && p.pos+off >= 0 {
		return p.toks[p.pos+off]
	}
	return token{kind: tokPunct}
}

func (p *lexParser) is(off int, text string) bool { return p.peek(off).text == text }

// skipGroup skips a balanced group starting at the current open token.
func (p *lexParser) skipGroup(open, close string) {
	depth := 0
	for !p.eof() {
		t := p.toks[p.pos].text
		p.pos++
		switch t {
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return
			}
		}
	}
}

// skipStatement skips to and past the next ';' at brace depth zero.
func (p *lexParser) skipStatement() {
	for !p.eof() {
		switch p.toks[p.pos].text {
		case ";":
			p.pos++
			return
		case "{":
			p.skipGroup("{", "}")
			continue
		case "}":
			return
		}
		p.pos++
	}
}

// scope parses declarations until the matching '}' (when inBraces) or EOF.
// access is the initial member access of a class body.
func (p *lexParser) scope(ns []string, cls *ClassDecl, inBraces bool, access Access) {
	for !p.eof() {
		t := p.peek(0)
		switch t.text {
		case "}":
			p.pos++
			if inBraces {
				return
			}
			continue
		case ";":
			p.pos++
			continue
		case "inline":
			if p.is(1, "namespace") {
				p.pos++
				continue
			}
		case "namespace":
			p.namespace(ns)
			continue
		case "template":
			p.pos++
			if p.is(0, "<") {
				p.skipAngles()
			}
			continue
		case "class", "struct", "union":
			if p.classHead(ns, cls) {
				continue
			}
		case "enum", "friend", "using", "typedef", "static_assert":
			p.skipStatement()
			continue
		case "extern":
			if p.is(1, "{") {
				p.pos += 2
				p.scope(ns, nil, true, Private)
				continue
			}
		case "public", "protected", "private":
			if cls != nil && p.is(1, ":") {
				access = Access(t.text)
				p.pos += 2
				continue
			}
		}
		p.member(cls, access)
	}
}

func (p *lexParser) skipAngles() {
	depth := 0
	for !p.eof() {
		t := p.toks[p.pos].text
		p.pos++
		switch t {
		case "<":
			depth++
		case ">":
			depth--
			if depth == 0 {
				return
			}
		case "(":
			p.pos--
			p.skipGroup("(", ")")
		case ";", "{":
			p.pos--
			return
		}
	}
}

func (p *lexParser) namespace(ns []string) {
	p.pos++
	var segs []string
	for !p.eof() {
		t := p.peek(0)
		if t.kind == tokIdent {
			segs = append(segs, t.text)
			p.pos++
			continue
		}
		if t.text == "::" {
			p.pos++
			continue
		}
		break
	}
	switch {
	case p.is(0, "{"):
		p.pos++
		p.scope(append(slices.Clone(ns), segs...), nil, true, Private)
	default:
		// alias or malformed
		p.skipStatement()
	}
}

// classHead handles a class-key at the current position. It returns false when
// the tokens are not a class declaration (an elaborated type specifier).
func (p *lexParser) classHead(ns []string, outer *ClassDecl) bool {
	start := p.pos
	keyword := p.peek(0).text
	line := p.peek(0).line
	if p.pos > 0 && p.toks[p.pos-1].text == "enum" {
		return false
	}
	p.pos++

	var name string
	for !p.eof() {
		t := p.peek(0)
		if t.kind == tokIdent && t.text != "final" {
			name = t.text
			p.pos++
			continue
		}
		if t.text == "final" {
			p.pos++
			continue
		}
		if t.text == "<" {
			// explicit specialization; not something we wrap
			p.skipAngles()
			continue
		}
		if t.text == "::" {
			p.pos++
			continue
		}
		break
	}
	if name == "" {
		p.pos = start
		return false
	}

	decl := &ClassDecl{Name: name, Namespace: slices.Clone(ns), Line: line}
	if outer != nil {
		decl.Namespace = append(decl.Namespace, outer.Name)
	}
	defAccess := Private
	if keyword != "class" {
		defAccess = Public
	}

	switch {
	case p.is(0, ";"):
		p.pos++
		decl.Forward = true
		p.file.Classes = append(p.file.Classes, decl)
		return true
	case p.is(0, ":"):
		p.pos++
		decl.Bases = p.baseClause(defAccess)
		if !p.is(0, "{") {
			p.pos = start
			return false
		}
	case p.is(0, "{"):
	default:
		p.pos = start
		return false
	}

	p.pos++
	p.file.Classes = append(p.file.Classes, decl)
	p.scope(ns, decl, true, defAccess)
	// Trailing declarators after the closing brace.
	p.skipStatement()
	return true
}

func (p *lexParser) baseClause(defAccess Access) []Base {
	var bases []Base
	cur := Base{Access: defAccess}
	var name []string
	flush := func() {
		if len(name) > 0 {
			for i, s := range name {
				if s == "::" && i == 0 {
					continue
				}
				cur.Name += s
			}
			bases = append(bases, cur)
		}
		cur = Base{Access: defAccess}
		name = nil
	}
	for !p.eof() {
		t := p.peek(0)
		switch {
		case t.text == "{" || t.text == ";":
			flush()
			return bases
		case t.text == ",":
			flush()
			p.pos++
		case t.text == "virtual":
			cur.Virtual = true
			p.pos++
		case t.text == "public" || t.text == "protected" || t.text == "private":
			cur.Access = Access(t.text)
			p.pos++
		case t.text == "<":
			p.skipAngles()
		case t.kind == tokIdent || t.text == "::":
			name = append(name, t.text)
			p.pos++
		default:
			p.pos++
		}
	}
	flush()
	return bases
}

// member consumes one declaration inside a scope and records it when it is a
// member function of cls.
func (p *lexParser) member(cls *ClassDecl, access Access) {
	start := p.pos
	line := p.peek(0).line
	sawParams := false
	inInit := false
	var head []token
	for !p.eof() {
		t := p.peek(0)
		switch t.text {
		case ";":
			head = p.toks[start:p.pos]
			p.pos++
			p.record(cls, access, head, line)
			return
		case "}":
			// end of enclosing scope; leave it for the caller
			p.record(cls, access, p.toks[start:p.pos], line)
			return
		case "(":
			p.skipGroup("(", ")")
			if !inInit {
				sawParams = true
			}
			continue
		case "[":
			p.skipGroup("[", "]")
			continue
		case ":":
			if sawParams && !inInit {
				head = p.toks[start:p.pos]
				inInit = true
			}
		case "{":
			prev := p.peek(-1)
			if inInit && (prev.kind == tokIdent || prev.text == ">") {
				p.skipGroup("{", "}")
				continue
			}
			if !inInit {
				head = p.toks[start:p.pos]
			}
			p.skipGroup("{", "}")
			if p.is(0, ";") {
				p.pos++
			}
			p.record(cls, access, head, line)
			return
		}
		p.pos++
	}
}

// record inspects a declaration head and appends a Method when it declares one.
func (p *lexParser) record(cls *ClassDecl, access Access, head []token, line int) {
	if cls == nil || len(head) == 0 {
		return
	}
	open := -1
	for i, t := range head {
		if t.text == "(" {
			open = i
			break
		}
	}
	if open < 1 {
		return
	}
	nameTok := head[open-1]
	if nameTok.kind != tokIdent {
		return
	}
	// matching close paren
	depth, closeIdx := 0, -1
	for i := open; i < len(head); i++ {
		switch head[i].text {
		case "(":
			depth++
		case ")":
			depth--
		}
		if depth == 0 {
			closeIdx = i
			break
		}
	}
	if closeIdx < 0 {
		return
	}
	m := Method{Name: nameTok.text, Access: access, Line: line}
	destructor := open >= 2 && head[open-2].text == "~"
	m.Constructor = !destructor && m.Name == cls.Name && (open < 2 || head[open-2].text != "::")
	if destructor {
		m.Name = "~" + m.Name
	}
	tail := head[closeIdx+1:]
	for i, t := range tail {
		switch t.text {
		case "override", "final":
			m.Override = true
		case "=":
			if i+1 < len(tail) {
				switch tail[i+1].text {
				case "0":
					m.Pure = true
				case "delete":
					m.Deleted = true
				}
			}
		}
	}
	cls.Methods = append(cls.Methods, m)
}
