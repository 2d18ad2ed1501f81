package emitter

import (
	"github.com/Alia5/apigen/internal/codegen/manifest"
	"github.com/Alia5/apigen/internal/codegen/tables"
)

// Gate is how an entry is emitted at the configured project version.
type Gate int

const (
	// GatePresent emits the entry unconditionally.
	GatePresent Gate = iota
	// GateGuarded emits the entry inside the deprecation #ifdef.
	GateGuarded
	// GateOmitted drops the entry.
	GateOmitted
)

func (g Gate) String() string {
	switch g {
	case GateGuarded:
		return "guarded"
	case GateOmitted:
		return "omitted"
	default:
		return "present"
	}
}

// DeprecationGate decides how an entry carrying d is emitted at version current.
// Entries are present before their warning version, guarded from the warning
// version (or from the start, without one) and omitted at or past removal.
func DeprecationGate(d *manifest.Deprecation, current tables.Version) Gate {
	if d == nil {
		return GatePresent
	}
	if !current.Less(d.Removal) {
		return GateOmitted
	}
	if !d.HasWarning || !current.Less(d.Warning) {
		return GateGuarded
	}
	return GatePresent
}

// deprecationNote is the doc line describing the schedule of d.
func deprecationNote(d *manifest.Deprecation) string {
	if d == nil {
		return ""
	}
	lib := ""
	if d.Library != "" {
		lib = " of " + d.Library
	}
	if d.HasWarning {
		return "Deprecated from version " + d.Warning.String() + lib + "; removed in version " + d.Removal.String() + lib + "."
	}
	return "Deprecated; removed in version " + d.Removal.String() + lib + "."
}

func guard(symbol, text string) string {
	return "#ifdef " + symbol + "\n" + text + "\n#endif // " + symbol
}
