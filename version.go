package wdl

import "strings"

// Version identifies the WDL language version a document is written in.
type Version int

const (
	// Draft2 is the implicit version used when a document has no "version"
	// directive.
	Draft2 Version = iota
	// V1_0 is WDL 1.0: introduces a mandatory "input {}" section and the
	// Directory type.
	V1_0
	// Development is WDL 2.0 / "development": adds the "hints" section.
	Development
)

// String renders the version the way it appears in a "version" directive.
func (v Version) String() string {
	switch v {
	case Draft2:
		return "draft-2"
	case V1_0:
		return "1.0"
	case Development:
		return "development"
	default:
		return "unknown"
	}
}

// dialect is the set of grammar feature flags that distinguish the three
// supported versions' CST productions. A single parser is parameterized by
// a dialect value instead of being duplicated three times; see DESIGN.md
// for the rationale.
type dialect struct {
	version Version

	// hasDirectoryType allows "Directory" as a primitive type name.
	hasDirectoryType bool
	// requiresInputSection requires a task/workflow's inputs to be declared
	// inside an explicit "input { }" block rather than as bare leading
	// declarations.
	requiresInputSection bool
	// hasHintsSection allows a task's "hints { }" block.
	hasHintsSection bool
}

func dialectFor(v Version) dialect {
	switch v {
	case Draft2:
		return dialect{version: v}
	case V1_0:
		return dialect{version: v, hasDirectoryType: true, requiresInputSection: true}
	case Development:
		return dialect{version: v, hasDirectoryType: true, requiresInputSection: true, hasHintsSection: true}
	default:
		return dialect{version: v}
	}
}

// DetectVersion scans source for a leading "version <major.minor>"
// directive (the first non-blank, non-comment line). Absence implies
// Draft2, per spec section 4.1.
func DetectVersion(source string) Version {
	for _, line := range strings.Split(source, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		fields := strings.Fields(trimmed)
		if len(fields) >= 2 && fields[0] == "version" {
			switch fields[1] {
			case "1.0":
				return V1_0
			case "2.0", "development":
				return Development
			default:
				return Draft2
			}
		}
		// First non-blank, non-comment line isn't a version directive: stop
		// looking, since "version" must be the first statement if present.
		return Draft2
	}
	return Draft2
}
