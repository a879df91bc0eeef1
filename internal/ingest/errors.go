package ingest

import "fmt"

// DecodeError means the input bytes could not be interpreted as the
// expected format at all. Nothing from the upload is committed.
type DecodeError struct {
	Format string // "csv", "document"
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("cannot decode input as %s: %v", e.Format, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// RowConstructionError means one normalized row failed required-field
// validation. The whole upload is rejected so no partial batch remains.
type RowConstructionError struct {
	Row    int
	Reason string
}

func (e *RowConstructionError) Error() string {
	return fmt.Sprintf("row %d: %s", e.Row, e.Reason)
}
