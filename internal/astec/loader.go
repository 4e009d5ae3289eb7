package astec

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/acov-bio/acov/internal/embryo"
)

// cellTag is the element holding one snapshot's value; its cell-id
// attribute carries the snapshot id.
const (
	cellTag      = "cell"
	cellIDAttrib = "cell-id"
)

// node is one parsed element: either a property tag or a decoded snapshot
// id, discriminated by key kind, with either a literal payload or child
// nodes. The tag-or-id key avoids the ambiguity of stringly-keyed maps.
type node struct {
	tag      string
	id       embryo.SnapshotID
	isCell   bool
	value    *Value
	children []node
}

// Load reads and parses an Astec property file.
func Load(path string) (embryo.RawTree, error) {
	f, err := os.Open(path)
	if err != nil {
		return embryo.RawTree{}, err
	}
	defer f.Close()
	raw, err := Parse(f)
	if err != nil {
		return embryo.RawTree{}, fmt.Errorf("%s: %w", path, err)
	}
	return raw, nil
}

// Parse decodes an Astec property document into the flat raw tree.
// Unknown property tags are skipped so newer Astec exports still load.
func Parse(r io.Reader) (embryo.RawTree, error) {
	dec := xml.NewDecoder(r)

	// Find the document root.
	var rootStart *xml.StartElement
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return embryo.RawTree{}, &embryo.MalformedInputError{Detail: "empty property file"}
		}
		if err != nil {
			return embryo.RawTree{}, err
		}
		if start, ok := tok.(xml.StartElement); ok {
			rootStart = &start
			break
		}
	}

	root, err := parseNode(dec, *rootStart)
	if err != nil {
		return embryo.RawTree{}, err
	}

	raw := embryo.RawTree{}
	for _, prop := range root.children {
		if prop.isCell {
			return embryo.RawTree{}, &embryo.MalformedInputError{Detail: "cell element at property level"}
		}
		if err := addProperty(&raw, prop); err != nil {
			return embryo.RawTree{}, err
		}
	}
	return raw, nil
}

// parseNode recursively descends from a start element, collecting either
// child nodes or a literal payload.
func parseNode(dec *xml.Decoder, start xml.StartElement) (node, error) {
	n := node{tag: start.Name.Local}
	if start.Name.Local == cellTag {
		id, err := cellID(start)
		if err != nil {
			return node{}, err
		}
		n.isCell = true
		n.id = id
	}

	var text []byte
	for {
		tok, err := dec.Token()
		if err != nil {
			return node{}, err
		}
		switch tok := tok.(type) {
		case xml.StartElement:
			child, err := parseNode(dec, tok)
			if err != nil {
				return node{}, err
			}
			n.children = append(n.children, child)
		case xml.CharData:
			text = append(text, tok...)
		case xml.EndElement:
			payload := strings.TrimSpace(string(text))
			if len(n.children) == 0 && payload != "" {
				v, err := parseLiteral(payload)
				if err != nil {
					return node{}, err
				}
				n.value = &v
			}
			return n, nil
		}
	}
}

func cellID(start xml.StartElement) (embryo.SnapshotID, error) {
	for _, attr := range start.Attr {
		if attr.Name.Local == cellIDAttrib {
			id, err := strconv.ParseInt(attr.Value, 10, 64)
			if err != nil {
				return 0, &embryo.MalformedInputError{Detail: "bad cell-id " + strconv.Quote(attr.Value)}
			}
			return embryo.SnapshotID(id), nil
		}
	}
	return 0, &embryo.MalformedInputError{Detail: "cell element without cell-id"}
}

// addProperty dispatches one property element into the raw tree.
func addProperty(raw *embryo.RawTree, prop node) error {
	switch embryo.Tag(prop.tag) {
	case embryo.TagVolume:
		raw.Volume = map[embryo.SnapshotID]float64{}
		return eachCell(prop, func(id embryo.SnapshotID, cell node) error {
			v, ok := scalar(cell)
			if !ok {
				return badPayload(prop.tag, id)
			}
			raw.Volume[id] = v
			return nil
		})
	case embryo.TagContactSurface:
		raw.Contacts = map[embryo.SnapshotID]map[embryo.SnapshotID]float64{}
		return eachCell(prop, func(id embryo.SnapshotID, cell node) error {
			contacts := map[embryo.SnapshotID]float64{}
			for _, neighbor := range cell.children {
				if !neighbor.isCell {
					return badPayload(prop.tag, id)
				}
				v, ok := scalar(neighbor)
				if !ok {
					return badPayload(prop.tag, neighbor.id)
				}
				contacts[neighbor.id] = v
			}
			raw.Contacts[id] = contacts
			return nil
		})
	case embryo.TagName:
		raw.Names = map[embryo.SnapshotID]string{}
		return eachCell(prop, func(id embryo.SnapshotID, cell node) error {
			if cell.value == nil || cell.value.Kind != ValueString {
				return badPayload(prop.tag, id)
			}
			raw.Names[id] = cell.value.Str
			return nil
		})
	case embryo.TagFate:
		raw.Fates = map[embryo.SnapshotID][]string{}
		return eachCell(prop, func(id embryo.SnapshotID, cell node) error {
			if cell.value == nil {
				return badPayload(prop.tag, id)
			}
			fates, ok := cell.value.Strings()
			if !ok {
				return badPayload(prop.tag, id)
			}
			raw.Fates[id] = fates
			return nil
		})
	case embryo.TagTissueFate:
		raw.TissueFates = map[embryo.SnapshotID][]string{}
		return eachCell(prop, func(id embryo.SnapshotID, cell node) error {
			if cell.value == nil {
				return badPayload(prop.tag, id)
			}
			fates, ok := cell.value.Strings()
			if !ok {
				return badPayload(prop.tag, id)
			}
			raw.TissueFates[id] = fates
			return nil
		})
	case embryo.TagLineage:
		raw.Lineage = map[embryo.SnapshotID][]embryo.SnapshotID{}
		return eachCell(prop, func(id embryo.SnapshotID, cell node) error {
			if cell.value == nil {
				return badPayload(prop.tag, id)
			}
			ids, ok := cell.value.IDs()
			if !ok {
				return badPayload(prop.tag, id)
			}
			raw.Lineage[id] = ids
			return nil
		})
	default:
		// Unknown property: ignored.
		return nil
	}
}

func eachCell(prop node, fn func(id embryo.SnapshotID, cell node) error) error {
	for _, cell := range prop.children {
		if !cell.isCell {
			return &embryo.MalformedInputError{Detail: "non-cell child under " + prop.tag}
		}
		if err := fn(cell.id, cell); err != nil {
			return err
		}
	}
	return nil
}

func scalar(cell node) (float64, bool) {
	if cell.value == nil {
		return 0, false
	}
	return cell.value.Number()
}

func badPayload(tag string, id embryo.SnapshotID) error {
	return &embryo.MalformedInputError{Detail: fmt.Sprintf("%s: unexpected payload for cell %d", tag, id)}
}
