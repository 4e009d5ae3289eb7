package tables

import "github.com/acov-bio/acov/internal/embryo"

// Build derives the full multi-resolution dataset of one embryo: cell and
// tissue resolutions from the property tree, the embryo reduction from
// the tissue resolution, and (in geometry mode) the derived surface and
// volume ratios.
func Build(tree *embryo.Tree, name string, geometry bool) (*Dataset, error) {
	ds := &Dataset{Name: name, Geometry: geometry}

	resolutions := []struct {
		out  *ResolutionTables
		name embryo.NameFunc
	}{
		{&ds.Cell, tree.CellLabel},
		{&ds.Tissue, tree.TissueLabel},
	}
	for _, res := range resolutions {
		global, err := BuildGlobal(tree, res.name)
		if err != nil {
			return nil, err
		}
		contacts, err := BuildContacts(tree, res.name)
		if err != nil {
			return nil, err
		}
		if err := ValidateContacts(global, contacts); err != nil {
			return nil, err
		}
		res.out.Global = global
		res.out.Contacts = contacts
	}

	embryoRows, err := EmbryoTable(ds.Tissue.Global, ds.Tissue.Contacts)
	if err != nil {
		return nil, err
	}
	ds.Embryo = embryoRows

	if geometry {
		AttachSurfaceGeometry(ds.Tissue.Global, ds.Tissue.Contacts)
		AttachSurfaceGeometry(ds.Cell.Global, ds.Cell.Contacts)
		AttachVolumeRatio(ds.Tissue.Global, ds.Embryo)
		AttachVolumeRatio(ds.Cell.Global, ds.Embryo)
	}

	AttachEmbryoCellCount(&ds.Tissue, ds.Embryo)
	AttachEmbryoCellCount(&ds.Cell, ds.Embryo)
	return ds, nil
}
