package tables

// Derived geometry. Everything here runs as one grouped aggregation
// followed by a map join, never a per-row scan over distinct objects.

type tpObject struct {
	tp     int
	object string
}

// AttachSurfaceGeometry computes each object's total surface (the sum of
// its contact rows at that timepoint) onto the global table, and the
// per-contact surface ratio (surface over the source object's total) onto
// the contacts table. Objects without contact rows keep a zero total.
func AttachSurfaceGeometry(global []GlobalRow, contacts []ContactRow) {
	totals := make(map[tpObject]float64)
	for _, row := range contacts {
		totals[tpObject{row.Tp, row.Object}] += row.Surface
	}
	for i := range global {
		global[i].TotalSurface = totals[tpObject{global[i].Tp, global[i].Object}]
	}
	for i := range contacts {
		if total := totals[tpObject{contacts[i].Tp, contacts[i].Object}]; total > 0 {
			contacts[i].SurfaceRatio = contacts[i].Surface / total
		}
	}
}

// AttachVolumeRatio divides each object's volume by the embryo volume at
// the same timepoint.
func AttachVolumeRatio(global []GlobalRow, embryoRows []EmbryoRow) {
	volumes := make(map[int]float64, len(embryoRows))
	for _, row := range embryoRows {
		volumes[row.Tp] = row.Volume
	}
	for i := range global {
		if v := volumes[global[i].Tp]; v > 0 {
			global[i].VolumeRatio = global[i].Volume / v
		}
	}
}

// ValidateContacts checks that every contact row's source object exists in
// the global table at the same timepoint.
func ValidateContacts(global []GlobalRow, contacts []ContactRow) error {
	known := make(map[tpObject]bool, len(global))
	for _, row := range global {
		known[tpObject{row.Tp, row.Object}] = true
	}
	for _, row := range contacts {
		if !known[tpObject{row.Tp, row.Object}] {
			return integrityf("contact row references %q at timepoint %d, absent from the global table", row.Object, row.Tp)
		}
	}
	return nil
}
