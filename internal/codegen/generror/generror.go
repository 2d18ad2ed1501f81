// Package generror defines the fatal error kinds raised during a generation run.
//
// Every error aborts the run. The kinds only exist so that the CLI can tell the
// developer what to fix: the manifest, the declaration sources, or the filesystem.
package generror

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a generation failure.
type Kind int

const (
	// KindConfiguration marks a disagreement between the manifest and the source tree.
	KindConfiguration Kind = iota + 1
	// KindParseAmbiguity marks a required marker that could not be located or classified unambiguously.
	KindParseAmbiguity
	// KindIO marks a read, write or directory creation failure.
	KindIO
)

func (k Kind) String() string {
	switch k {
	case KindConfiguration:
		return "ConfigurationError"
	case KindParseAmbiguity:
		return "ParseAmbiguityError"
	case KindIO:
		return "IOError"
	default:
		return "UnknownError"
	}
}

// Error is the single canonical error type of the generator.
type Error struct {
	Kind Kind
	// Class is the fully qualified class the failure is attributed to, if any.
	Class string
	// File is the file that was being read or written, if any.
	File string
	// Pattern is the declaration shape or manifest key that was expected, if any.
	Pattern string
	Detail  string
	Err     error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.String())
	if e.Class != "" {
		fmt.Fprintf(&b, " [class %s]", e.Class)
	}
	if e.File != "" {
		fmt.Fprintf(&b, " [file %s]", e.File)
	}
	if e.Pattern != "" {
		fmt.Fprintf(&b, " [expected %q]", e.Pattern)
	}
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Configuration builds a ConfigurationError.
func Configuration(class, file, pattern, detail string) *Error {
	return &Error{Kind: KindConfiguration, Class: class, File: file, Pattern: pattern, Detail: detail}
}

// Ambiguity builds a ParseAmbiguityError.
func Ambiguity(class, file, pattern, detail string) *Error {
	return &Error{Kind: KindParseAmbiguity, Class: class, File: file, Pattern: pattern, Detail: detail}
}

// IO builds an IOError wrapping err.
func IO(file, detail string, err error) *Error {
	return &Error{Kind: KindIO, File: file, Detail: detail, Err: err}
}

// WithClass returns err attributed to class when it is an *Error without a class yet.
// Other errors are wrapped into a ConfigurationError for that class.
func WithClass(err error, class string) error {
	if err == nil {
		return nil
	}
	var ge *Error
	if errors.As(err, &ge) {
		if ge.Class == "" {
			cp := *ge
			cp.Class = class
			return &cp
		}
		return err
	}
	return &Error{Kind: KindConfiguration, Class: class, Err: err}
}

// IsKind reports whether err carries a generror of the given kind.
func IsKind(err error, kind Kind) bool {
	var ge *Error
	if errors.As(err, &ge) {
		return ge.Kind == kind
	}
	return false
}
