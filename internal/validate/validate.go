// Package validate checks raw CSV field rows for the three hiring datasets
// and coerces them into typed domain records. It never touches storage:
// a batch either converts completely or the first offending row is reported.
package validate

import (
	"strconv"
	"strings"

	"github.com/camilotorresmestra/globant-de/internal/domain"
)

// CheckHeaderless rejects input whose first field is not an integer id.
// No header row is ever expected, so one is an error rather than skipped.
func CheckHeaderless(kind domain.DatasetKind, rows [][]string) error {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return &domain.FormatError{Dataset: kind.String(), Reason: "no rows"}
	}
	if _, err := parseInt(rows[0][0]); err != nil {
		return &domain.FormatError{
			Dataset: kind.String(),
			Reason:  "first column should be an integer id, no header row is expected",
		}
	}
	return nil
}

// Departments converts rows of at least two fields: id, department.
func Departments(rows [][]string) ([]domain.Department, error) {
	out := make([]domain.Department, 0, len(rows))
	err := each(domain.KindDepartment, rows, func(idx int, r []string) error {
		id, err := intField(domain.KindDepartment, idx, "id", r[0])
		if err != nil {
			return err
		}
		out = append(out, domain.Department{ID: id, Name: r[1]})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Jobs converts rows of at least two fields: id, job.
func Jobs(rows [][]string) ([]domain.Job, error) {
	out := make([]domain.Job, 0, len(rows))
	err := each(domain.KindJob, rows, func(idx int, r []string) error {
		id, err := intField(domain.KindJob, idx, "id", r[0])
		if err != nil {
			return err
		}
		out = append(out, domain.Job{ID: id, Title: r[1]})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// HiredEmployees converts rows of at least five fields:
// id, name, datetime, department_id, job_id. Name and datetime pass through.
func HiredEmployees(rows [][]string) ([]domain.HiredEmployee, error) {
	const kind = domain.KindHiredEmployee
	out := make([]domain.HiredEmployee, 0, len(rows))
	err := each(kind, rows, func(idx int, r []string) error {
		id, err := intField(kind, idx, "id", r[0])
		if err != nil {
			return err
		}
		deptID, err := intField(kind, idx, "department_id", r[3])
		if err != nil {
			return err
		}
		jobID, err := intField(kind, idx, "job_id", r[4])
		if err != nil {
			return err
		}
		out = append(out, domain.HiredEmployee{
			ID:           id,
			Name:         r[1],
			HiredAt:      r[2],
			DepartmentID: deptID,
			JobID:        jobID,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// each enforces the column-count rule and hands every row (1-based index)
// to fn, stopping at the first error.
func each(kind domain.DatasetKind, rows [][]string, fn func(idx int, r []string) error) error {
	want := kind.MinFields()
	for i, r := range rows {
		idx := i + 1
		if len(r) < want {
			return &domain.ValidationError{
				Dataset:  kind.String(),
				Row:      idx,
				Expected: want,
				Got:      len(r),
			}
		}
		if err := fn(idx, r); err != nil {
			return err
		}
	}
	return nil
}

func intField(kind domain.DatasetKind, idx int, field, raw string) (int64, error) {
	v, err := parseInt(raw)
	if err != nil {
		return 0, &domain.ValidationError{
			Dataset: kind.String(),
			Row:     idx,
			Field:   field,
			Err:     err,
		}
	}
	return v, nil
}

func parseInt(s string) (int64, error) {
	return strconv.ParseInt(strings.TrimSpace(s), 10, 64)
}
