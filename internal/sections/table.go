package sections

import (
	"regexp"
	"strings"
)

// Name is a recognized top-level section keyword, e.g. "Strategy".
type Name string

// Class tells how a parse tree node relates to a section.
type Class int

const (
	// ClassOther nodes are not sections (tokens, comments, wrappers).
	ClassOther Class = iota
	// ClassDedicated nodes have a kind that maps directly onto a Name.
	ClassDedicated
	// ClassGeneric nodes carry their Name in a distinguished child token.
	ClassGeneric
)

func (c Class) String() string {
	switch c {
	case ClassOther:
		return "other"
	case ClassDedicated:
		return "dedicated"
	case ClassGeneric:
		return "generic"
	}
	return "unknown"
}

// DefaultNames is the header keyword list shared by the text extractor,
// the tree walker and the fallback parser.
var DefaultNames = []Name{
	"Notes",
	"Parameters",
	"Import",
	"Strategy",
	"Data",
	"Template",
	"Settings",
	"Charts",
	"Include",
	"Library",
	"Scan",
	"TestData",
	"Combined",
	"Benchmark",
	"OptimizeSettings",
	"OrderSettings",
	"ScanSettings",
	"TestSettings",
	"WalkForward",
	"StatsGroup",
	"StratData",
	"Namespace",
}

// Table is the immutable header configuration. Build it with NewTable and
// share it; no method mutates it.
type Table struct {
	names        []Name
	known        map[Name]bool
	header       *regexp.Regexp
	dedicated    map[string]Name
	kindOf       map[Name]string
	generic      map[string]bool
	genericOrder []string
	nameToken    string
	root         string
	wrappers     map[string]bool
	permissive   map[Name]bool
}

// Spec describes a Table. Zero fields fall back to the defaults used by the
// RealTest grammar.
type Spec struct {
	Names          []Name
	DedicatedKinds map[string]Name
	GenericKinds   []string
	NameToken      string
	RootKind       string
	WrapperKinds   []string
	Permissive     []Name
}

// Default is the table for the RealTest grammar.
var Default = NewTable(Spec{})

// NewTable builds a Table, filling unset fields with defaults.
func NewTable(s Spec) *Table {
	if len(s.Names) == 0 {
		s.Names = DefaultNames
	}
	if s.DedicatedKinds == nil {
		s.DedicatedKinds = map[string]Name{
			"notes_section":      "Notes",
			"parameters_section": "Parameters",
			"charts_section":     "Charts",
			"benchmark_section":  "Benchmark",
			"strategy_section":   "Strategy",
		}
	}
	if len(s.GenericKinds) == 0 {
		s.GenericKinds = []string{"generic_section"}
	}
	if s.NameToken == "" {
		s.NameToken = "SECTION_NAME"
	}
	if s.RootKind == "" {
		s.RootKind = "start"
	}
	if s.WrapperKinds == nil {
		s.WrapperKinds = []string{"section", "statement", "item"}
	}
	if s.Permissive == nil {
		s.Permissive = []Name{"Notes"}
	}

	t := &Table{
		names:      append([]Name(nil), s.Names...),
		known:      make(map[Name]bool, len(s.Names)),
		dedicated:  make(map[string]Name, len(s.DedicatedKinds)),
		kindOf:     make(map[Name]string, len(s.DedicatedKinds)),
		generic:    make(map[string]bool, len(s.GenericKinds)),
		nameToken:  s.NameToken,
		root:       s.RootKind,
		wrappers:   make(map[string]bool, len(s.WrapperKinds)),
		permissive: make(map[Name]bool, len(s.Permissive)),
	}

	quoted := make([]string, len(s.Names))
	for i, n := range s.Names {
		t.known[n] = true
		quoted[i] = regexp.QuoteMeta(string(n))
	}
	t.header = regexp.MustCompile(`^(` + strings.Join(quoted, "|") + `)\b[ \t]*:(.*)$`)

	for kind, n := range s.DedicatedKinds {
		t.dedicated[kind] = n
		t.kindOf[n] = kind
	}
	for _, k := range s.GenericKinds {
		t.generic[k] = true
		t.genericOrder = append(t.genericOrder, k)
	}
	for _, k := range s.WrapperKinds {
		t.wrappers[k] = true
	}
	for _, n := range s.Permissive {
		t.permissive[n] = true
	}
	return t
}

// Names returns a copy of the recognized names in table order.
func (t *Table) Names() []Name {
	return append([]Name(nil), t.names...)
}

// Known reports whether n is a recognized header keyword.
func (t *Table) Known(n Name) bool {
	return t.known[n]
}

// MatchHeader reports whether line is a top-level section header and returns
// its name and trimmed inline value. The line must not carry its terminator.
func (t *Table) MatchHeader(line string) (Name, string, bool) {
	m := t.header.FindStringSubmatch(line)
	if m == nil {
		return "", "", false
	}
	return Name(m[1]), strings.TrimSpace(m[2]), true
}

// Classify maps a tree node kind onto its section class. For dedicated kinds
// the Name is returned as well; generic kinds need their name token read.
func (t *Table) Classify(kind string) (Class, Name) {
	if n, ok := t.dedicated[kind]; ok {
		return ClassDedicated, n
	}
	if t.generic[kind] {
		return ClassGeneric, ""
	}
	return ClassOther, ""
}

// KindFor returns the dedicated tree kind for n, or the first generic kind
// when n has no rule of its own.
func (t *Table) KindFor(n Name) (kind string, dedicated bool) {
	if k, ok := t.kindOf[n]; ok {
		return k, true
	}
	if len(t.genericOrder) == 0 {
		return "", false
	}
	return t.genericOrder[0], false
}

// NameToken is the token kind holding a generic section's name.
func (t *Table) NameToken() string {
	return t.nameToken
}

// RootKind is the expected kind of a parse tree root.
func (t *Table) RootKind() string {
	return t.root
}

// IsWrapper reports whether kind is a transparent wrapper layer directly
// below the root.
func (t *Table) IsWrapper(kind string) bool {
	return t.wrappers[kind]
}

// Permissive reports whether n historically has a free-text body rule.
func (t *Table) Permissive(n Name) bool {
	return t.permissive[n]
}
