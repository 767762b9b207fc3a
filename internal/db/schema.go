package db

import "strings"

// ColumnType is a portable column type; dialects map it to engine types.
type ColumnType int

const (
	Integer ColumnType = iota + 1
	Text
)

// Column is one column of a Table.
type Column struct {
	Name string
	Type ColumnType
}

// Table describes a destination table. Key is the primary key column and
// the conflict target for every insert.
type Table struct {
	Name    string
	Key     string
	Columns []Column
}

// ColumnNames returns the column names in declaration order.
func (t Table) ColumnNames() []string {
	out := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		out[i] = c.Name
	}
	return out
}

// ColumnList is ColumnNames joined for use in SQL.
func (t Table) ColumnList() string {
	return strings.Join(t.ColumnNames(), ", ")
}

var (
	Departments = Table{
		Name: "departments",
		Key:  "id",
		Columns: []Column{
			{Name: "id", Type: Integer},
			{Name: "department", Type: Text},
		},
	}

	Jobs = Table{
		Name: "jobs",
		Key:  "id",
		Columns: []Column{
			{Name: "id", Type: Integer},
			{Name: "job", Type: Text},
		},
	}

	HiredEmployees = Table{
		Name: "hired_employees",
		Key:  "id",
		Columns: []Column{
			{Name: "id", Type: Integer},
			{Name: "name", Type: Text},
			{Name: "datetime", Type: Text},
			{Name: "department_id", Type: Integer},
			{Name: "job_id", Type: Integer},
		},
	}
)

// Tables is the full schema of the loader.
var Tables = []Table{Departments, Jobs, HiredEmployees}
