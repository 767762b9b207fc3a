package domain

import "fmt"

// FormatError reports input that is not headerless CSV as a whole.
type FormatError struct {
	Dataset string
	Reason  string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("invalid CSV format in %s: %s", e.Dataset, e.Reason)
}

// ValidationError reports the first row that failed shape or type checks.
// Row is the 1-based file line the record starts on, or the record index
// when the rows did not come from a file. Field names the failing integer column, if any; Expected
// and Got are set for column-count shortfalls.
type ValidationError struct {
	Dataset  string
	Row      int
	Field    string
	Expected int
	Got      int
	Err      error
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid row %d in %s: expected at least %d columns, got %d",
			e.Row, e.Dataset, e.Expected, e.Got)
	}
	return fmt.Sprintf("invalid data type in row %d of %s: %s should be an integer: %v",
		e.Row, e.Dataset, e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// StorageError is a persistence failure other than a duplicate id.
// Chunk is the 0-based chunk index of a batched write, or -1.
type StorageError struct {
	Op    string
	Table string
	Chunk int
	Err   error
}

func (e *StorageError) Error() string {
	switch {
	case e.Chunk >= 0:
		return fmt.Sprintf("storage: %s %s chunk %d: %v", e.Op, e.Table, e.Chunk, e.Err)
	case e.Table != "":
		return fmt.Sprintf("storage: %s %s: %v", e.Op, e.Table, e.Err)
	default:
		return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
	}
}

func (e *StorageError) Unwrap() error { return e.Err }

// SizeLimitError rejects a whole submission whose row count exceeds Limit.
type SizeLimitError struct {
	Dataset string
	Rows    int
	Limit   int
}

func (e *SizeLimitError) Error() string {
	return fmt.Sprintf("file too large: %s has %d rows, maximum %d allowed", e.Dataset, e.Rows, e.Limit)
}

// UnknownDatasetError is returned for names that map to no DatasetKind.
type UnknownDatasetError struct {
	Name string
}

func (e *UnknownDatasetError) Error() string {
	return fmt.Sprintf("unknown dataset %q: expected departments, jobs or hired_employees", e.Name)
}
