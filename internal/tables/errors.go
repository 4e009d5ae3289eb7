package tables

import "fmt"

// DataIntegrityError reports derived tables that contradict each other: a
// live timepoint without an exterior-facing surface, or a contact row
// whose source object is missing from the global table.
type DataIntegrityError struct {
	Detail string
}

func (e *DataIntegrityError) Error() string {
	return "data integrity: " + e.Detail
}

func integrityf(format string, args ...any) *DataIntegrityError {
	return &DataIntegrityError{Detail: fmt.Sprintf(format, args...)}
}
