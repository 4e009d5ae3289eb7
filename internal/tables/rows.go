// Package tables turns an embryo's property tree into the normalized
// multi-resolution tables that downstream analyses consume: per-object
// global tables, directed contact tables, and the whole-embryo reduction.
package tables

import "github.com/acov-bio/acov/internal/config"

// Resolution is the granularity of aggregation.
type Resolution string

const (
	ResolutionEmbryo Resolution = "embryo"
	ResolutionTissue Resolution = "tissue"
	ResolutionCell   Resolution = "cell"
)

// ParseResolution validates a resolution name.
func ParseResolution(s string) (Resolution, error) {
	switch Resolution(s) {
	case ResolutionEmbryo, ResolutionTissue, ResolutionCell:
		return Resolution(s), nil
	default:
		return "", &config.ConfigurationError{Detail: "unknown resolution " + s}
	}
}

// GlobalRow is one (object, timepoint) observation: the summed volume and
// snapshot count of all cells aggregated under the object's label.
// TotalSurface and VolumeRatio are only populated in geometry mode;
// Minutes is only populated after temporal alignment.
type GlobalRow struct {
	Tp              int
	Object          string
	Volume          float64
	CellCount       int
	TotalSurface    float64
	VolumeRatio     float64
	EmbryoCellCount int
	Minutes         *int64
}

// ContactRow is one directed contact observation: the surface Object
// shares with Neighbor at Tp. Object is always a resolved, non-exterior
// label; Neighbor may be any resolved label including "exterior". Each
// unordered pair is stored from one direction only, as inherited from the
// source snapshot entries. SurfaceRatio is only populated in geometry
// mode; Minutes only after temporal alignment.
type ContactRow struct {
	Tp              int
	Object          string
	Neighbor        string
	Surface         float64
	SurfaceRatio    float64
	EmbryoCellCount int
	Minutes         *int64
}

// EmbryoRow is the whole-embryo reduction at one timepoint: total volume,
// exterior-facing surface and live cell count.
type EmbryoRow struct {
	Tp           int
	Volume       float64
	TotalSurface float64
	CellCount    int
	Minutes      *int64
}

// ResolutionTables pairs the global and contacts tables of one
// sub-embryo resolution.
type ResolutionTables struct {
	Global   []GlobalRow
	Contacts []ContactRow
}

// Dataset is the durable artifact derived from one embryo: the embryo
// reduction plus the tissue and cell resolutions. After persistence it is
// mutated in place by the cross-embryo aligner, never recreated.
type Dataset struct {
	Name     string
	Geometry bool
	Embryo   []EmbryoRow
	Tissue   ResolutionTables
	Cell     ResolutionTables
}
