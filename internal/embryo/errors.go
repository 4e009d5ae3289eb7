package embryo

import "fmt"

// MalformedInputError reports raw segmentation data that does not follow
// the Astec conventions: a lineage name with an unparseable syntax, or a
// property file missing a required tag.
type MalformedInputError struct {
	Detail string
}

func (e *MalformedInputError) Error() string {
	return "malformed input: " + e.Detail
}

func malformedf(format string, args ...any) *MalformedInputError {
	return &MalformedInputError{Detail: fmt.Sprintf(format, args...)}
}
