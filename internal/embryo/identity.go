package embryo

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// NameFunc resolves a snapshot id into a label at one resolution.
// TissueLabel and CellLabel are the two implementations.
type NameFunc func(id SnapshotID) (Label, error)

// TissueLabel resolves a snapshot into its tissue fate. A single fate is
// lowercased; multiple candidate fates collapse to "undifferentiated".
// Snapshots without a fate entry are the exterior sentinel or unresolved.
func (t *Tree) TissueLabel(id SnapshotID) (Label, error) {
	fates, ok := t.Fates[id]
	switch {
	case !ok || len(fates) == 0:
		if t.Codec.IsExterior(id) {
			return Exterior, nil
		}
		return Unresolved, nil
	case len(fates) > 1:
		return NameLabel(UndifferentiatedName), nil
	default:
		return NameLabel(strings.ToLower(fates[0])), nil
	}
}

// CellLabel resolves a snapshot into its rebranded cell name, falling back
// to exterior or unresolved when the snapshot carries no name.
func (t *Tree) CellLabel(id SnapshotID) (Label, error) {
	raw, ok := t.Names[id]
	if !ok {
		if t.Codec.IsExterior(id) {
			return Exterior, nil
		}
		return Unresolved, nil
	}
	name, err := RebrandCellName(raw)
	if err != nil {
		return Unresolved, err
	}
	return NameLabel(name), nil
}

// RebrandCellName rewrites a raw ascidian lineage code
// ("<letter><generation>.<proximity><symmetry>", e.g. "a10.0004*") into
// its human-readable form ("A10.4*"). The letter is uppercased when the
// lineage descends from a proximity-1 founder of the canonical 8-cell
// stage, found by walking the proximity back to generation 4: an odd
// proximity rounds up to the next even one before each halving. The walk
// uses real division; only the final ==1 test matters, so fractional
// intermediate values are expected.
//
// Strings without a '.' are returned unchanged (malformed labels appear
// in some acquisitions). Anything else that fails to parse is a
// MalformedInputError.
func RebrandCellName(raw string) (string, error) {
	left, right, ok := strings.Cut(raw, ".")
	if !ok {
		return raw, nil
	}
	if len(left) < 2 || len(right) < 2 {
		return "", malformedf("cell name %q: expected <letter><generation>.<proximity><symmetry>", raw)
	}

	letter := left[:1]
	generation, err := strconv.Atoi(left[1:])
	if err != nil {
		return "", malformedf("cell name %q: bad generation %q", raw, left[1:])
	}
	proximity, err := strconv.Atoi(right[:len(right)-1])
	if err != nil {
		return "", malformedf("cell name %q: bad proximity %q", raw, right[:len(right)-1])
	}
	symmetry := right[len(right)-1:]

	founderGeneration, founderProximity := generation, float64(proximity)
	for founderGeneration > 4 {
		if math.Mod(founderProximity, 2) != 0 {
			founderProximity++
		}
		founderProximity /= 2
		founderGeneration--
	}
	if founderProximity == 1 {
		letter = strings.ToUpper(letter)
	}

	return fmt.Sprintf("%s%d.%d%s", letter, generation, proximity, symmetry), nil
}
