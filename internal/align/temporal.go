package align

import (
	"fmt"
	"math"
	"sort"

	"github.com/acov-bio/acov/internal/config"
	"github.com/acov-bio/acov/internal/tables"
)

// RangeError reports a cell count outside a series' observed range, a
// failed interpolation bracket, or a cross-embryo shared range too small
// to fit a line through.
type RangeError struct {
	Detail string
}

func (e *RangeError) Error() string {
	return "alignment range: " + e.Detail
}

func rangef(format string, args ...any) *RangeError {
	return &RangeError{Detail: fmt.Sprintf(format, args...)}
}

// CountSeries is one embryo's (timepoint, cell count) observations,
// ordered by timepoint. Counts are non-decreasing in healthy data but may
// plateau for several timepoints.
type CountSeries struct {
	Tps    []int
	Counts []int
}

// NewCountSeries extracts the count series from an embryo table.
func NewCountSeries(rows []tables.EmbryoRow) CountSeries {
	s := CountSeries{
		Tps:    make([]int, len(rows)),
		Counts: make([]int, len(rows)),
	}
	for i, row := range rows {
		s.Tps[i] = row.Tp
		s.Counts[i] = row.CellCount
	}
	sort.Sort(byTp(s))
	return s
}

type byTp CountSeries

func (s byTp) Len() int      { return len(s.Tps) }
func (s byTp) Swap(i, j int) {
	s.Tps[i], s.Tps[j] = s.Tps[j], s.Tps[i]
	s.Counts[i], s.Counts[j] = s.Counts[j], s.Counts[i]
}
func (s byTp) Less(i, j int) bool { return s.Tps[i] < s.Tps[j] }

// MinCount and MaxCount bound the observed counts.
func (s CountSeries) MinCount() int {
	m := s.Counts[0]
	for _, c := range s.Counts {
		if c < m {
			m = c
		}
	}
	return m
}

func (s CountSeries) MaxCount() int {
	m := s.Counts[0]
	for _, c := range s.Counts {
		if c > m {
			m = c
		}
	}
	return m
}

// Has reports whether n appears exactly in the series.
func (s CountSeries) Has(n int) bool {
	for _, c := range s.Counts {
		if c == n {
			return true
		}
	}
	return false
}

// FindT returns the timepoint at which the embryo reached n cells. An
// exact count match (possibly a plateau) yields the midpoint of the first
// and last timepoints sharing it; otherwise the result is linearly
// interpolated between the latest timepoint strictly below n and the
// earliest strictly above. Counts outside the observed range, or with no
// valid bracket, are a RangeError; extrapolation is never silent.
func (s CountSeries) FindT(n int) (float64, error) {
	if len(s.Tps) == 0 {
		return 0, rangef("empty count series")
	}

	if s.Has(n) {
		minTp, maxTp := math.MaxInt, math.MinInt
		for i, c := range s.Counts {
			if c != n {
				continue
			}
			if s.Tps[i] < minTp {
				minTp = s.Tps[i]
			}
			if s.Tps[i] > maxTp {
				maxTp = s.Tps[i]
			}
		}
		return (float64(minTp) + float64(maxTp)) / 2, nil
	}

	hasSmall, hasLarge := false, false
	var tSmall, tLarge int
	var countSmall, countLarge int
	for i, c := range s.Counts {
		if c < n && (!hasSmall || s.Tps[i] > tSmall) {
			hasSmall, tSmall, countSmall = true, s.Tps[i], c
		}
		if c > n && (!hasLarge || s.Tps[i] < tLarge) {
			hasLarge, tLarge, countLarge = true, s.Tps[i], c
		}
	}
	if !hasSmall || !hasLarge {
		return 0, rangef("cell count %d is outside the observed range [%d, %d]", n, s.MinCount(), s.MaxCount())
	}
	return float64(tSmall) + float64(tLarge-tSmall)*float64(n-countSmall)/float64(countLarge-countSmall), nil
}

// Coefficients maps an embryo's timepoints onto the reference clock:
// reference_t = A*t + B.
type Coefficients struct {
	A float64
	B float64
}

// At maps one timepoint onto the reference clock.
func (c Coefficients) At(tp float64) float64 {
	return c.A*tp + c.B
}

// FitTemporal fits the linear mapping from an embryo's clock to the
// reference clock, anchored on the cell counts both embryos traverse. For
// every integer count in the intersection of the two observed ranges that
// appears in at least one series, the two FindT timepoints form one
// sample; the mapping is the least-squares line through those samples.
// Fewer than two shared samples is a RangeError.
func FitTemporal(ref, series CountSeries) (Coefficients, error) {
	if len(ref.Tps) == 0 || len(series.Tps) == 0 {
		return Coefficients{}, rangef("empty count series")
	}
	first := ref.MinCount()
	if m := series.MinCount(); m > first {
		first = m
	}
	last := ref.MaxCount()
	if m := series.MaxCount(); m < last {
		last = m
	}

	var refTimes, times []float64
	for n := first; n <= last; n++ {
		if !ref.Has(n) && !series.Has(n) {
			continue
		}
		refT, err := ref.FindT(n)
		if err != nil {
			return Coefficients{}, err
		}
		t, err := series.FindT(n)
		if err != nil {
			return Coefficients{}, err
		}
		refTimes = append(refTimes, refT)
		times = append(times, t)
	}
	if len(times) < 2 {
		return Coefficients{}, rangef("only %d shared cell counts between embryos, need at least 2", len(times))
	}

	fit := olsFit(times, refTimes)
	return Coefficients{A: fit.Slope, B: fit.Intercept}, nil
}

// MinutesPostFertilization converts one timepoint to whole minutes on the
// reference clock using the reference embryo's acquisition metadata.
func MinutesPostFertilization(tp int, c Coefficients, ref config.Reference) int64 {
	scaled := c.At(float64(tp))
	return int64(math.Floor((scaled*ref.TimePointIntervalSeconds + ref.StartSeconds) / 60))
}

// ApplyTemporalAlignment attaches minutes_post_fertilization to every row
// of every resolution. The timepoint column is kept untouched.
func ApplyTemporalAlignment(ds *tables.Dataset, c Coefficients, ref config.Reference) {
	minutes := func(tp int) *int64 {
		m := MinutesPostFertilization(tp, c, ref)
		return &m
	}
	for i := range ds.Embryo {
		ds.Embryo[i].Minutes = minutes(ds.Embryo[i].Tp)
	}
	for _, res := range []*tables.ResolutionTables{&ds.Tissue, &ds.Cell} {
		for i := range res.Global {
			res.Global[i].Minutes = minutes(res.Global[i].Tp)
		}
		for i := range res.Contacts {
			res.Contacts[i].Minutes = minutes(res.Contacts[i].Tp)
		}
	}
}
