package embryo

import "sort"

// Tag names one anatomical property in an Astec property file.
type Tag string

// The fixed tag vocabulary of an Astec property file.
const (
	TagContactSurface Tag = "cell_contact_surface"
	TagVolume         Tag = "cell_volume"
	TagName           Tag = "cell_name"
	TagFate           Tag = "cell_fate"
	TagLineage        Tag = "cell_lineage"
	TagTissueFate     Tag = "tissuefate_guignard_2020"
)

// TimeDependentTags lists the properties whose values differ between
// snapshots of the same biological cell. They are re-keyed by timepoint
// when the tree is built.
var TimeDependentTags = []Tag{TagContactSurface, TagVolume}

// Tree holds one embryo's raw segmentation, keyed by property.
// Time-dependent properties carry an intermediate timepoint level;
// time-independent ones are keyed by snapshot id directly.
//
// The Volume map is the authoritative enumeration of cells alive at a
// timepoint. Contacts, Names and Fates are looked up and may be
// incomplete; absence resolves to exterior or unresolved.
type Tree struct {
	Codec IDCodec

	// Volume: timepoint -> snapshot -> segmented volume.
	Volume map[int]map[SnapshotID]float64
	// Contacts: timepoint -> snapshot -> neighbor snapshot -> shared surface.
	Contacts map[int]map[SnapshotID]map[SnapshotID]float64

	// Names: snapshot -> raw lineage name (e.g. "a10.0004*").
	Names map[SnapshotID]string
	// Fates: snapshot -> one or more tissue fates.
	Fates map[SnapshotID][]string
	// Lineage: snapshot -> successor snapshots at the next timepoint.
	Lineage map[SnapshotID][]SnapshotID
	// TissueFates: snapshot -> tissue fate classification labels.
	TissueFates map[SnapshotID][]string
}

// RawTree is the flat, pre-re-keying form produced by a loader:
// time-dependent properties are still keyed by snapshot id alone.
type RawTree struct {
	Volume      map[SnapshotID]float64
	Contacts    map[SnapshotID]map[SnapshotID]float64
	Names       map[SnapshotID]string
	Fates       map[SnapshotID][]string
	Lineage     map[SnapshotID][]SnapshotID
	TissueFates map[SnapshotID][]string
}

// BuildTree re-keys the time-dependent properties of raw by timepoint.
// The volume and contact surface properties are required; their absence
// is a MalformedInputError.
func BuildTree(codec IDCodec, raw RawTree) (*Tree, error) {
	if raw.Volume == nil {
		return nil, malformedf("property file is missing the %q tag", TagVolume)
	}
	if raw.Contacts == nil {
		return nil, malformedf("property file is missing the %q tag", TagContactSurface)
	}

	t := &Tree{
		Codec:       codec,
		Volume:      make(map[int]map[SnapshotID]float64),
		Contacts:    make(map[int]map[SnapshotID]map[SnapshotID]float64),
		Names:       raw.Names,
		Fates:       raw.Fates,
		Lineage:     raw.Lineage,
		TissueFates: raw.TissueFates,
	}
	for id, v := range raw.Volume {
		tp := codec.Timepoint(id)
		if t.Volume[tp] == nil {
			t.Volume[tp] = make(map[SnapshotID]float64)
		}
		t.Volume[tp][id] = v
	}
	for id, contacts := range raw.Contacts {
		tp := codec.Timepoint(id)
		if t.Contacts[tp] == nil {
			t.Contacts[tp] = make(map[SnapshotID]map[SnapshotID]float64)
		}
		t.Contacts[tp][id] = contacts
	}
	return t, nil
}

// Timepoints returns the timepoints with at least one live cell, ascending.
func (t *Tree) Timepoints() []int {
	tps := make([]int, 0, len(t.Volume))
	for tp := range t.Volume {
		tps = append(tps, tp)
	}
	sort.Ints(tps)
	return tps
}
