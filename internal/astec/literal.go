// Package astec loads Astec property files (the XML produced by the
// segmentation pipeline) into an embryo.RawTree. The file is a flat tree:
// one element per property tag, holding <cell cell-id="..."> elements
// whose text payloads are Python literals (ints, floats, quoted strings,
// or lists of those).
package astec

import (
	"strconv"
	"strings"

	"github.com/acov-bio/acov/internal/embryo"
)

// ValueKind discriminates decoded literal values.
type ValueKind uint8

const (
	ValueInt ValueKind = iota
	ValueFloat
	ValueString
	ValueList
)

// Value is one decoded literal payload.
type Value struct {
	Kind  ValueKind
	Int   int64
	Float float64
	Str   string
	List  []Value
}

// Number returns the value as a float64 for int and float kinds.
func (v Value) Number() (float64, bool) {
	switch v.Kind {
	case ValueInt:
		return float64(v.Int), true
	case ValueFloat:
		return v.Float, true
	default:
		return 0, false
	}
}

// Strings returns the value as a list of strings: a bare string becomes a
// one-element list, a list must hold strings only.
func (v Value) Strings() ([]string, bool) {
	switch v.Kind {
	case ValueString:
		return []string{v.Str}, true
	case ValueList:
		out := make([]string, 0, len(v.List))
		for _, item := range v.List {
			if item.Kind != ValueString {
				return nil, false
			}
			out = append(out, item.Str)
		}
		return out, true
	default:
		return nil, false
	}
}

// IDs returns the value as a list of snapshot ids.
func (v Value) IDs() ([]embryo.SnapshotID, bool) {
	items := v.List
	if v.Kind == ValueInt {
		items = []Value{v}
	} else if v.Kind != ValueList {
		return nil, false
	}
	out := make([]embryo.SnapshotID, 0, len(items))
	for _, item := range items {
		if item.Kind != ValueInt {
			return nil, false
		}
		out = append(out, embryo.SnapshotID(item.Int))
	}
	return out, true
}

// parseLiteral decodes the Python-literal payload conventions used by
// Astec files: integers, floats, single- or double-quoted strings, and
// flat lists of those.
func parseLiteral(s string) (Value, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Value{}, &embryo.MalformedInputError{Detail: "empty literal"}
	}

	if s[0] == '[' {
		if s[len(s)-1] != ']' {
			return Value{}, &embryo.MalformedInputError{Detail: "unterminated list literal " + strconv.Quote(s)}
		}
		inner := strings.TrimSpace(s[1 : len(s)-1])
		list := Value{Kind: ValueList}
		if inner == "" {
			return list, nil
		}
		for _, part := range splitTopLevel(inner) {
			item, err := parseLiteral(part)
			if err != nil {
				return Value{}, err
			}
			list.List = append(list.List, item)
		}
		return list, nil
	}

	if s[0] == '\'' || s[0] == '"' {
		if len(s) < 2 || s[len(s)-1] != s[0] {
			return Value{}, &embryo.MalformedInputError{Detail: "unterminated string literal " + strconv.Quote(s)}
		}
		return Value{Kind: ValueString, Str: s[1 : len(s)-1]}, nil
	}

	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return Value{Kind: ValueInt, Int: i}, nil
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return Value{Kind: ValueFloat, Float: f}, nil
	}
	return Value{}, &embryo.MalformedInputError{Detail: "unrecognized literal " + strconv.Quote(s)}
}

// splitTopLevel splits a list body on commas outside quotes. Astec lists
// are flat, so nesting does not need to be tracked.
func splitTopLevel(s string) []string {
	var parts []string
	var quote byte
	start := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '\'' || c == '"':
			quote = c
		case c == ',':
			parts = append(parts, strings.TrimSpace(s[start:i]))
			start = i + 1
		}
	}
	parts = append(parts, strings.TrimSpace(s[start:]))
	return parts
}
