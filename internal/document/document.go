// Package document defines the ordered unit model threaded through the
// correction pipeline. A Unit is one paragraph or line of text; corrections
// substitute its Current text in place and never merge, split, insert, or
// delete units, so a processed Document always has the same length and
// order as the one it was built from.
package document

// Unit is the atomic item the pipeline corrects. Index is its identity and
// never changes. Original is kept untouched for audit/diff purposes; every
// stage that runs mutates Current. Per-unit stage failures are recorded as
// metadata on the unit rather than aborting the document.
type Unit struct {
	Index        int
	Original     string
	Current      string
	RulesApplied []string
	LLMApplied   bool
	Skipped      bool
	RuleError    string
	LLMError     string
}

// Changed reports whether any stage altered the unit's text.
func (u *Unit) Changed() bool {
	return u.Current != u.Original
}

// Document is an ordered sequence of units in original document order.
type Document struct {
	units []*Unit
}

// New builds a Document from extracted unit texts, one unit per element,
// preserving order. Current starts equal to Original.
func New(texts []string) *Document {
	units := make([]*Unit, len(texts))
	for i, t := range texts {
		units[i] = &Unit{Index: i, Original: t, Current: t}
	}
	return &Document{units: units}
}

// Len returns the number of units.
func (d *Document) Len() int {
	return len(d.units)
}

// Units returns the units in index order. Callers may mutate unit contents
// but must not reorder or resize the slice.
func (d *Document) Units() []*Unit {
	return d.units
}

// Unit returns the unit at index i.
func (d *Document) Unit(i int) *Unit {
	return d.units[i]
}

// Texts returns the Current text of every unit in index order, ready for
// reassembly by the document I/O adapter.
func (d *Document) Texts() []string {
	out := make([]string, len(d.units))
	for i, u := range d.units {
		out[i] = u.Current
	}
	return out
}
