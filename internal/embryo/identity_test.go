package embryo

import (
	"errors"
	"testing"
)

func TestRebrandCellName(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"a10.0004*", "A10.4*"},
		{"b7.0007_", "B7.7_"},
		{"a9.0048_", "a9.48_"},
		{"b10.0017*", "B10.17*"},
		{"a7.0008*", "A7.8*"},
		// Already at or below the 8-cell stage: no walk.
		{"A4.0001_", "A4.1_"},
		{"b4.0002*", "b4.2*"},
		// No dot: the label is returned verbatim.
		{"unnamed", "unnamed"},
		{"1340307", "1340307"},
	}
	for _, tt := range tests {
		got, err := RebrandCellName(tt.raw)
		if err != nil {
			t.Errorf("RebrandCellName(%q) error: %v", tt.raw, err)
			continue
		}
		if got != tt.want {
			t.Errorf("RebrandCellName(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestRebrandCellNameMalformed(t *testing.T) {
	for _, raw := range []string{"a.0004*", "ax.0004*", "a10.x*", "a10.*"} {
		_, err := RebrandCellName(raw)
		var malformed *MalformedInputError
		if !errors.As(err, &malformed) {
			t.Errorf("RebrandCellName(%q) error = %v, want MalformedInputError", raw, err)
		}
	}
}

func newTestTree(t *testing.T) *Tree {
	t.Helper()
	tree, err := BuildTree(DefaultCodec(), RawTree{
		Volume: map[SnapshotID]float64{
			40001: 0, 40002: 100, 40003: 200,
		},
		Contacts: map[SnapshotID]map[SnapshotID]float64{},
		Names: map[SnapshotID]string{
			40002: "a7.0008*",
		},
		Fates: map[SnapshotID][]string{
			40002: {"Head Epidermis"},
			40003: {"head epidermis", "1st lineage, notochord"},
		},
	})
	if err != nil {
		t.Fatalf("BuildTree: %v", err)
	}
	return tree
}

func TestTissueLabel(t *testing.T) {
	tree := newTestTree(t)
	tests := []struct {
		id   SnapshotID
		want Label
	}{
		{40002, NameLabel("head epidermis")},
		{40003, NameLabel(UndifferentiatedName)},
		{40001, Exterior},
		{40004, Unresolved},
	}
	for _, tt := range tests {
		got, err := tree.TissueLabel(tt.id)
		if err != nil {
			t.Fatalf("TissueLabel(%d): %v", tt.id, err)
		}
		if got != tt.want {
			t.Errorf("TissueLabel(%d) = %v, want %v", tt.id, got, tt.want)
		}
	}
}

func TestCellLabel(t *testing.T) {
	tree := newTestTree(t)
	tests := []struct {
		id   SnapshotID
		want Label
	}{
		{40002, NameLabel("A7.8*")},
		{40001, Exterior},
		{40003, Unresolved},
	}
	for _, tt := range tests {
		got, err := tree.CellLabel(tt.id)
		if err != nil {
			t.Fatalf("CellLabel(%d): %v", tt.id, err)
		}
		if got != tt.want {
			t.Errorf("CellLabel(%d) = %v, want %v", tt.id, got, tt.want)
		}
	}
}

func TestBuildTreeMissingTag(t *testing.T) {
	_, err := BuildTree(DefaultCodec(), RawTree{Contacts: map[SnapshotID]map[SnapshotID]float64{}})
	var malformed *MalformedInputError
	if !errors.As(err, &malformed) {
		t.Fatalf("BuildTree without volume: error = %v, want MalformedInputError", err)
	}
}

func TestBuildTreeRekeysByTimepoint(t *testing.T) {
	tree, err := BuildTree(DefaultCodec(), RawTree{
		Volume: map[SnapshotID]float64{
			40002: 100, 40003: 200, 50002: 110,
		},
		Contacts: map[SnapshotID]map[SnapshotID]float64{
			40002: {40003: 12.5},
			50002: {50001: 7.25},
		},
	})
	if err != nil {
		t.Fatalf("BuildTree: %v", err)
	}
	if got := tree.Timepoints(); len(got) != 2 || got[0] != 4 || got[1] != 5 {
		t.Fatalf("Timepoints() = %v, want [4 5]", got)
	}
	if len(tree.Volume[4]) != 2 || tree.Volume[5][50002] != 110 {
		t.Errorf("volume re-keying wrong: %+v", tree.Volume)
	}
	if tree.Contacts[5][50002][50001] != 7.25 {
		t.Errorf("contact re-keying wrong: %+v", tree.Contacts)
	}
}
