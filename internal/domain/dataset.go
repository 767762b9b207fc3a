package domain

import (
	"path"
	"strings"
)

// DatasetKind identifies one of the three ingestible datasets.
type DatasetKind int

const (
	KindDepartment DatasetKind = iota + 1
	KindJob
	KindHiredEmployee
)

// Kinds lists every dataset in dependency order (parents first).
var Kinds = []DatasetKind{KindDepartment, KindJob, KindHiredEmployee}

// String returns the dataset name, which is also the table name and the
// base name of the CSV file the dataset arrives in.
func (k DatasetKind) String() string {
	switch k {
	case KindDepartment:
		return "departments"
	case KindJob:
		return "jobs"
	case KindHiredEmployee:
		return "hired_employees"
	default:
		return "unknown"
	}
}

// MinFields is the minimum number of fields a row of this dataset carries.
func (k DatasetKind) MinFields() int {
	if k == KindHiredEmployee {
		return 5
	}
	return 2
}

// ParseDatasetKind maps a dataset name or file name ("jobs", "jobs.csv",
// "uploads/jobs.csv") to its kind.
func ParseDatasetKind(name string) (DatasetKind, error) {
	base := path.Base(strings.ReplaceAll(strings.TrimSpace(name), `\`, "/"))
	base = strings.TrimSuffix(strings.ToLower(base), ".csv")
	for _, k := range Kinds {
		if base == k.String() {
			return k, nil
		}
	}
	return 0, &UnknownDatasetError{Name: name}
}
