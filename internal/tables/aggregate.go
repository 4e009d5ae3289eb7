package tables

import (
	"sort"

	"github.com/acov-bio/acov/internal/embryo"
)

// NamedAggregate folds a per-snapshot value map into per-label sums and
// per-label contributor counts. Summation is commutative and associative,
// so the result is independent of map iteration order.
func NamedAggregate(values map[embryo.SnapshotID]float64, name embryo.NameFunc) (map[embryo.Label]float64, map[embryo.Label]int, error) {
	sums := make(map[embryo.Label]float64)
	counts := make(map[embryo.Label]int)
	for id, v := range values {
		label, err := name(id)
		if err != nil {
			return nil, nil, err
		}
		sums[label] += v
		counts[label]++
	}
	return sums, counts, nil
}

// BuildGlobal aggregates the volume property by label for every
// timepoint. Exterior and unresolved labels are excluded; every remaining
// label yields one row per timepoint carrying its summed volume and the
// number of contributing snapshots.
func BuildGlobal(tree *embryo.Tree, name embryo.NameFunc) ([]GlobalRow, error) {
	var rows []GlobalRow
	for _, tp := range tree.Timepoints() {
		sums, counts, err := NamedAggregate(tree.Volume[tp], name)
		if err != nil {
			return nil, err
		}
		labels := make([]embryo.Label, 0, len(sums))
		for label := range sums {
			if !label.IsResolved() || label.IsExterior() {
				continue
			}
			labels = append(labels, label)
		}
		sort.Slice(labels, func(i, j int) bool { return labels[i].Name < labels[j].Name })
		for _, label := range labels {
			rows = append(rows, GlobalRow{
				Tp:        tp,
				Object:    label.Name,
				Volume:    sums[label],
				CellCount: counts[label],
			})
		}
	}
	return rows, nil
}

// BuildContacts aggregates each live snapshot's contact surfaces by label,
// tags the aggregate with the snapshot's own label, and merges same-label
// aggregates per timepoint by summing shared neighbors. Rows whose source
// is exterior or unresolved, whose neighbor is unresolved, or that pair an
// object with itself are excluded.
func BuildContacts(tree *embryo.Tree, name embryo.NameFunc) ([]ContactRow, error) {
	var rows []ContactRow
	for _, tp := range tree.Timepoints() {
		merged := make(map[embryo.Label]map[embryo.Label]float64)
		for id := range tree.Volume[tp] {
			contacts := tree.Contacts[tp][id]
			if len(contacts) == 0 {
				continue
			}
			source, err := name(id)
			if err != nil {
				return nil, err
			}
			if !source.IsResolved() || source.IsExterior() {
				continue
			}
			sums, _, err := NamedAggregate(contacts, name)
			if err != nil {
				return nil, err
			}
			bucket := merged[source]
			if bucket == nil {
				bucket = make(map[embryo.Label]float64)
				merged[source] = bucket
			}
			for neighbor, surface := range sums {
				bucket[neighbor] += surface
			}
		}

		sources := make([]embryo.Label, 0, len(merged))
		for source := range merged {
			sources = append(sources, source)
		}
		sort.Slice(sources, func(i, j int) bool { return sources[i].Name < sources[j].Name })
		for _, source := range sources {
			bucket := merged[source]
			neighbors := make([]embryo.Label, 0, len(bucket))
			for neighbor := range bucket {
				if !neighbor.IsResolved() || neighbor == source {
					continue
				}
				neighbors = append(neighbors, neighbor)
			}
			sort.Slice(neighbors, func(i, j int) bool { return neighbors[i].Name < neighbors[j].Name })
			for _, neighbor := range neighbors {
				rows = append(rows, ContactRow{
					Tp:       tp,
					Object:   source.Name,
					Neighbor: neighbor.Name,
					Surface:  bucket[neighbor],
				})
			}
		}
	}
	return rows, nil
}
