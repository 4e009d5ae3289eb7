package embryo

// ExteriorName is the output label of the exterior pseudo-object.
const ExteriorName = "exterior"

// UndifferentiatedName labels cells whose fate is still a list of
// candidate tissues rather than a single one.
const UndifferentiatedName = "undifferentiated"

// LabelKind discriminates the three outcomes of resolving a snapshot id.
type LabelKind uint8

const (
	// LabelUnresolved marks a snapshot with neither a name/fate entry nor
	// exterior status. Unresolved snapshots never reach output tables.
	LabelUnresolved LabelKind = iota
	// LabelExterior marks the exterior sentinel of a timepoint.
	LabelExterior
	// LabelName is a resolved cell name or tissue fate.
	LabelName
)

// Label is the canonical identity of a snapshot at one resolution: a cell
// name, a tissue fate, the exterior, or an unresolved marker. The zero
// value is the unresolved marker. Labels are comparable and used as
// aggregation keys.
type Label struct {
	Kind LabelKind
	Name string
}

// Unresolved is the marker for snapshots that cannot be named.
var Unresolved = Label{Kind: LabelUnresolved}

// Exterior is the label of the exterior pseudo-object.
var Exterior = Label{Kind: LabelExterior, Name: ExteriorName}

// NameLabel wraps a resolved cell or tissue name.
func NameLabel(name string) Label {
	return Label{Kind: LabelName, Name: name}
}

// IsResolved reports whether l can appear in output tables.
func (l Label) IsResolved() bool { return l.Kind != LabelUnresolved }

// IsExterior reports whether l is the exterior pseudo-object.
func (l Label) IsExterior() bool { return l.Kind == LabelExterior }

// String returns the output spelling of the label. Unresolved labels have
// no spelling; callers must filter them out before rendering.
func (l Label) String() string {
	if l.Kind == LabelUnresolved {
		return "<unresolved>"
	}
	return l.Name
}
