package tables

import (
	"errors"
	"math"
	"testing"
)

func TestAttachSurfaceGeometry(t *testing.T) {
	tree := toyTree(t)
	global, err := BuildGlobal(tree, tree.CellLabel)
	if err != nil {
		t.Fatal(err)
	}
	contacts, err := BuildContacts(tree, tree.CellLabel)
	if err != nil {
		t.Fatal(err)
	}
	AttachSurfaceGeometry(global, contacts)

	// A7.8* touches B7.7_ (30) and the exterior (50).
	if got := global[0].TotalSurface; got != 80 {
		t.Errorf("A7.8* TotalSurface = %v, want 80", got)
	}
	if got := global[1].TotalSurface; got != 90 {
		t.Errorf("B7.7_ TotalSurface = %v, want 90", got)
	}
	for _, row := range contacts {
		var total float64
		switch row.Object {
		case "A7.8*":
			total = 80
		case "B7.7_":
			total = 90
		}
		if want := row.Surface / total; math.Abs(row.SurfaceRatio-want) > 1e-12 {
			t.Errorf("%s/%s SurfaceRatio = %v, want %v", row.Object, row.Neighbor, row.SurfaceRatio, want)
		}
	}
}

func TestAttachVolumeRatio(t *testing.T) {
	global := []GlobalRow{
		{Tp: 4, Object: "a", Volume: 100},
		{Tp: 4, Object: "b", Volume: 200},
	}
	embryoRows := []EmbryoRow{{Tp: 4, Volume: 300}}
	AttachVolumeRatio(global, embryoRows)
	if math.Abs(global[0].VolumeRatio-1.0/3.0) > 1e-12 {
		t.Errorf("VolumeRatio = %v, want 1/3", global[0].VolumeRatio)
	}
	if math.Abs(global[1].VolumeRatio-2.0/3.0) > 1e-12 {
		t.Errorf("VolumeRatio = %v, want 2/3", global[1].VolumeRatio)
	}
}

func TestValidateContacts(t *testing.T) {
	global := []GlobalRow{{Tp: 4, Object: "a"}}
	good := []ContactRow{{Tp: 4, Object: "a", Neighbor: "exterior"}}
	if err := ValidateContacts(global, good); err != nil {
		t.Errorf("ValidateContacts(good) = %v", err)
	}
	bad := []ContactRow{{Tp: 4, Object: "ghost", Neighbor: "exterior"}}
	err := ValidateContacts(global, bad)
	var integrity *DataIntegrityError
	if !errors.As(err, &integrity) {
		t.Errorf("ValidateContacts(bad) = %v, want DataIntegrityError", err)
	}
}

func TestBuildGeometryMode(t *testing.T) {
	tree := toyTree(t)
	ds, err := Build(tree, "toy", true)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !ds.Geometry {
		t.Error("Geometry flag not set")
	}
	if len(ds.Embryo) != 1 || ds.Embryo[0].Volume != 300 {
		t.Fatalf("embryo table = %+v", ds.Embryo)
	}
	if ds.Tissue.Global[0].VolumeRatio != 1 {
		t.Errorf("tissue volume ratio = %v, want 1", ds.Tissue.Global[0].VolumeRatio)
	}
	if ds.Cell.Global[0].EmbryoCellCount != 2 {
		t.Errorf("embryo cell count not attached: %+v", ds.Cell.Global[0])
	}
}

func TestBuildWithoutGeometryLeavesDerivedZero(t *testing.T) {
	tree := toyTree(t)
	ds, err := Build(tree, "toy", false)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if ds.Cell.Global[0].TotalSurface != 0 || ds.Cell.Global[0].VolumeRatio != 0 {
		t.Errorf("geometry fields populated without geometry mode: %+v", ds.Cell.Global[0])
	}
	if ds.Cell.Global[0].EmbryoCellCount != 2 {
		t.Errorf("embryo cell count missing: %+v", ds.Cell.Global[0])
	}
}

func TestParseResolution(t *testing.T) {
	for _, ok := range []string{"embryo", "tissue", "cell"} {
		if _, err := ParseResolution(ok); err != nil {
			t.Errorf("ParseResolution(%q) = %v", ok, err)
		}
	}
	if _, err := ParseResolution("organ"); err == nil {
		t.Error("ParseResolution(organ): want error")
	}
}
