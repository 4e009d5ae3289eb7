package tables

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestEmbryoTable(t *testing.T) {
	tree := toyTree(t)
	global, err := BuildGlobal(tree, tree.TissueLabel)
	if err != nil {
		t.Fatal(err)
	}
	contacts, err := BuildContacts(tree, tree.TissueLabel)
	if err != nil {
		t.Fatal(err)
	}
	got, err := EmbryoTable(global, contacts)
	if err != nil {
		t.Fatalf("EmbryoTable: %v", err)
	}
	want := []EmbryoRow{
		{Tp: 4, Volume: 300, TotalSurface: 110, CellCount: 2},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("embryo table mismatch (-want +got):\n%s", diff)
	}
}

func TestEmbryoTableMissingExteriorSurface(t *testing.T) {
	global := []GlobalRow{{Tp: 7, Object: "head epidermis", Volume: 10, CellCount: 1}}
	contacts := []ContactRow{{Tp: 7, Object: "head epidermis", Neighbor: "mesenchyme", Surface: 3}}
	_, err := EmbryoTable(global, contacts)
	var integrity *DataIntegrityError
	if !errors.As(err, &integrity) {
		t.Fatalf("EmbryoTable error = %v, want DataIntegrityError", err)
	}
}

func TestAttachEmbryoCellCount(t *testing.T) {
	res := ResolutionTables{
		Global: []GlobalRow{
			{Tp: 1, Object: "a"}, {Tp: 2, Object: "a"},
		},
		Contacts: []ContactRow{
			{Tp: 1, Object: "a", Neighbor: "exterior"},
			{Tp: 2, Object: "a", Neighbor: "exterior"},
		},
	}
	embryoRows := []EmbryoRow{
		{Tp: 1, CellCount: 64},
		{Tp: 2, CellCount: 76},
	}
	AttachEmbryoCellCount(&res, embryoRows)
	if res.Global[0].EmbryoCellCount != 64 || res.Global[1].EmbryoCellCount != 76 {
		t.Errorf("global broadcast wrong: %+v", res.Global)
	}
	if res.Contacts[0].EmbryoCellCount != 64 || res.Contacts[1].EmbryoCellCount != 76 {
		t.Errorf("contacts broadcast wrong: %+v", res.Contacts)
	}
}
