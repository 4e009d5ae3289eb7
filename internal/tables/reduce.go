package tables

import (
	"sort"

	"github.com/acov-bio/acov/internal/embryo"
)

// EmbryoTable folds a sub-resolution pair of tables into the whole-embryo
// table: per timepoint, the summed volume and cell count of every
// resolved object, and the summed surface of every contact row facing the
// exterior. A live timepoint without an exterior-facing contact is a
// DataIntegrityError.
func EmbryoTable(global []GlobalRow, contacts []ContactRow) ([]EmbryoRow, error) {
	type totals struct {
		volume    float64
		cellCount int
	}
	byTp := make(map[int]*totals)
	for _, row := range global {
		t := byTp[row.Tp]
		if t == nil {
			t = &totals{}
			byTp[row.Tp] = t
		}
		t.volume += row.Volume
		t.cellCount += row.CellCount
	}

	exteriorSurface := make(map[int]float64)
	exteriorSeen := make(map[int]bool)
	for _, row := range contacts {
		if row.Neighbor != embryo.ExteriorName {
			continue
		}
		exteriorSurface[row.Tp] += row.Surface
		exteriorSeen[row.Tp] = true
	}

	tps := make([]int, 0, len(byTp))
	for tp := range byTp {
		tps = append(tps, tp)
	}
	sort.Ints(tps)

	rows := make([]EmbryoRow, 0, len(tps))
	for _, tp := range tps {
		if !exteriorSeen[tp] {
			return nil, integrityf("timepoint %d has live cells but no exterior-facing surface", tp)
		}
		rows = append(rows, EmbryoRow{
			Tp:           tp,
			Volume:       byTp[tp].volume,
			TotalSurface: exteriorSurface[tp],
			CellCount:    byTp[tp].cellCount,
		})
	}
	return rows, nil
}

// AttachEmbryoCellCount broadcasts the embryo-resolution cell count onto
// every global and contact row by timepoint.
func AttachEmbryoCellCount(res *ResolutionTables, embryoRows []EmbryoRow) {
	counts := make(map[int]int, len(embryoRows))
	for _, row := range embryoRows {
		counts[row.Tp] = row.CellCount
	}
	for i := range res.Global {
		res.Global[i].EmbryoCellCount = counts[res.Global[i].Tp]
	}
	for i := range res.Contacts {
		res.Contacts[i].EmbryoCellCount = counts[res.Contacts[i].Tp]
	}
}
