package align

import (
	"fmt"
	"math"

	"github.com/acov-bio/acov/internal/tables"
)

// VoxelCorrection maps each observed timepoint of one embryo to the
// linear-dimension scale factor normalizing its acquisition to the target
// volume. Volumes scale by corr^3, surfaces by corr^2.
type VoxelCorrection map[int]float64

// FitVoxelCorrection fits a robust line of embryo volume against timepoint
// and derives, for every observed timepoint, the correction
// cbrt(targetVolume / fittedVolume(tp)).
func FitVoxelCorrection(rows []tables.EmbryoRow, targetVolume float64, cfg RobustFitConfig) (VoxelCorrection, LineFit, error) {
	xs := make([]float64, len(rows))
	ys := make([]float64, len(rows))
	for i, row := range rows {
		xs[i] = float64(row.Tp)
		ys[i] = row.Volume
	}
	fit, err := RobustLineFit(xs, ys, cfg)
	if err != nil {
		return nil, LineFit{}, fmt.Errorf("voxelsize fit: %w", err)
	}

	corr := make(VoxelCorrection, len(rows))
	for _, row := range rows {
		predicted := fit.At(float64(row.Tp))
		if predicted <= 0 {
			return nil, LineFit{}, fmt.Errorf("voxelsize fit predicts non-positive volume %g at timepoint %d", predicted, row.Tp)
		}
		corr[row.Tp] = math.Cbrt(targetVolume / predicted)
	}
	return corr, fit, nil
}

// ApplyVoxelCorrection rescales every table of a dataset in place with the
// same per-timepoint factor: volumes cubically, surfaces quadratically.
// The derived ratios are scale-invariant and stay untouched. Applying a
// correction twice compounds it; callers must only rewrite unaligned
// tables.
func ApplyVoxelCorrection(ds *tables.Dataset, corr VoxelCorrection) {
	for i := range ds.Embryo {
		c := corr[ds.Embryo[i].Tp]
		if c == 0 {
			continue
		}
		ds.Embryo[i].Volume *= c * c * c
		ds.Embryo[i].TotalSurface *= c * c
	}
	for _, res := range []*tables.ResolutionTables{&ds.Tissue, &ds.Cell} {
		for i := range res.Global {
			c := corr[res.Global[i].Tp]
			if c == 0 {
				continue
			}
			res.Global[i].Volume *= c * c * c
			res.Global[i].TotalSurface *= c * c
		}
		for i := range res.Contacts {
			c := corr[res.Contacts[i].Tp]
			if c == 0 {
				continue
			}
			res.Contacts[i].Surface *= c * c
		}
	}
}
