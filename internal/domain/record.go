package domain

// Department is a row of departments.csv.
type Department struct {
	ID   int64
	Name string
}

// Job is a row of jobs.csv.
type Job struct {
	ID    int64
	Title string
}

// HiredEmployee is a row of hired_employees.csv. HiredAt is kept verbatim
// (ISO-8601-like text); DepartmentID and JobID are not required to resolve.
type HiredEmployee struct {
	ID           int64
	Name         string
	HiredAt      string
	DepartmentID int64
	JobID        int64
}
