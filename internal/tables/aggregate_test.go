package tables

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/acov-bio/acov/internal/embryo"
)

// toyTree builds the 3-snapshot-per-timepoint fixture: one exterior
// sentinel and two named cells with known volumes and contact surfaces.
func toyTree(t *testing.T) *embryo.Tree {
	t.Helper()
	tree, err := embryo.BuildTree(embryo.DefaultCodec(), embryo.RawTree{
		Volume: map[embryo.SnapshotID]float64{
			40002: 100,
			40003: 200,
		},
		Contacts: map[embryo.SnapshotID]map[embryo.SnapshotID]float64{
			40002: {40001: 50, 40003: 30},
			40003: {40001: 60, 40002: 30},
		},
		Names: map[embryo.SnapshotID]string{
			40002: "a7.0008*",
			40003: "b7.0007_",
		},
		Fates: map[embryo.SnapshotID][]string{
			40002: {"Head Epidermis"},
			40003: {"Head Epidermis"},
		},
	})
	if err != nil {
		t.Fatalf("BuildTree: %v", err)
	}
	return tree
}

func TestNamedAggregateOrderIndependence(t *testing.T) {
	tree := toyTree(t)
	values := map[embryo.SnapshotID]float64{}
	total := 0.0
	for i := 0; i < 40; i++ {
		v := float64(i) * 1.5
		id := embryo.SnapshotID(40002 + i%2) // alternate the two named cells
		values[embryo.SnapshotID(int(id)+10000*(i/2))] = v
		total += v
	}
	// All ids resolve through the tissue at tp 4; others are unresolved,
	// which still aggregate (filtering happens later).
	sums, counts, err := NamedAggregate(values, tree.TissueLabel)
	if err != nil {
		t.Fatalf("NamedAggregate: %v", err)
	}
	got := 0.0
	n := 0
	for _, v := range sums {
		got += v
	}
	for _, c := range counts {
		n += c
	}
	if math.Abs(got-total) > 1e-9 {
		t.Errorf("aggregated total = %v, want %v", got, total)
	}
	if n != len(values) {
		t.Errorf("aggregated count = %d, want %d", n, len(values))
	}
}

func TestBuildGlobalCellResolution(t *testing.T) {
	tree := toyTree(t)
	got, err := BuildGlobal(tree, tree.CellLabel)
	if err != nil {
		t.Fatalf("BuildGlobal: %v", err)
	}
	want := []GlobalRow{
		{Tp: 4, Object: "A7.8*", Volume: 100, CellCount: 1},
		{Tp: 4, Object: "B7.7_", Volume: 200, CellCount: 1},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("cell global table mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildGlobalTissueResolution(t *testing.T) {
	tree := toyTree(t)
	got, err := BuildGlobal(tree, tree.TissueLabel)
	if err != nil {
		t.Fatalf("BuildGlobal: %v", err)
	}
	want := []GlobalRow{
		{Tp: 4, Object: "head epidermis", Volume: 300, CellCount: 2},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("tissue global table mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildContactsCellResolution(t *testing.T) {
	tree := toyTree(t)
	got, err := BuildContacts(tree, tree.CellLabel)
	if err != nil {
		t.Fatalf("BuildContacts: %v", err)
	}
	want := []ContactRow{
		{Tp: 4, Object: "A7.8*", Neighbor: "B7.7_", Surface: 30},
		{Tp: 4, Object: "A7.8*", Neighbor: "exterior", Surface: 50},
		{Tp: 4, Object: "B7.7_", Neighbor: "A7.8*", Surface: 30},
		{Tp: 4, Object: "B7.7_", Neighbor: "exterior", Surface: 60},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("cell contacts mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildContactsTissueResolutionDropsSelfPairs(t *testing.T) {
	tree := toyTree(t)
	got, err := BuildContacts(tree, tree.TissueLabel)
	if err != nil {
		t.Fatalf("BuildContacts: %v", err)
	}
	// The two epidermis cells touch each other; that surface collapses
	// into a self-pair and is dropped. Only the exterior contact remains,
	// merged across both cells.
	want := []ContactRow{
		{Tp: 4, Object: "head epidermis", Neighbor: "exterior", Surface: 110},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("tissue contacts mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildContactsNeverEmitsExteriorSourceOrSelfPair(t *testing.T) {
	tree := toyTree(t)
	for _, name := range []embryo.NameFunc{tree.CellLabel, tree.TissueLabel} {
		rows, err := BuildContacts(tree, name)
		if err != nil {
			t.Fatalf("BuildContacts: %v", err)
		}
		for _, row := range rows {
			if row.Object == embryo.ExteriorName {
				t.Errorf("contact row with exterior source: %+v", row)
			}
			if row.Object == row.Neighbor {
				t.Errorf("self-pair contact row: %+v", row)
			}
		}
	}
}

func TestBuildContactsExcludesUnresolvedNeighbors(t *testing.T) {
	// 40004 has neither a name nor exterior status; contacts targeting it
	// must be dropped, and its own contacts must not produce rows.
	tree, err := embryo.BuildTree(embryo.DefaultCodec(), embryo.RawTree{
		Volume: map[embryo.SnapshotID]float64{40002: 100, 40004: 50},
		Contacts: map[embryo.SnapshotID]map[embryo.SnapshotID]float64{
			40002: {40004: 25, 40001: 10},
			40004: {40002: 25},
		},
		Names: map[embryo.SnapshotID]string{40002: "a7.0008*"},
	})
	if err != nil {
		t.Fatalf("BuildTree: %v", err)
	}
	got, err := BuildContacts(tree, tree.CellLabel)
	if err != nil {
		t.Fatalf("BuildContacts: %v", err)
	}
	want := []ContactRow{
		{Tp: 4, Object: "A7.8*", Neighbor: "exterior", Surface: 10},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("unresolved filtering mismatch (-want +got):\n%s", diff)
	}
}
