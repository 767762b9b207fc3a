// Package analytics computes the two fixed 2021 hiring reports. Each report
// runs one portable SELECT and does the aggregation in Go, so the same code
// serves every storage backend.
package analytics

import (
	"context"
	"sort"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/camilotorresmestra/globant-de/internal/db"
	"github.com/camilotorresmestra/globant-de/internal/domain"
	"github.com/camilotorresmestra/globant-de/internal/logging"
	"github.com/camilotorresmestra/globant-de/internal/metrics"
)

// ReportYear is the calendar year both reports cover.
const ReportYear = "2021"

// Querier is the read side of db.Store.
type Querier interface {
	Query(ctx context.Context, query string, args ...any) ([]db.Row, error)
}

// QuarterlyHires counts hires per quarter for one (department, job) pair.
// Department is nil for hires whose department id does not resolve.
type QuarterlyHires struct {
	Department *string `json:"department"`
	Job        string  `json:"job"`
	Q1         int     `json:"Q1"`
	Q2         int     `json:"Q2"`
	Q3         int     `json:"Q3"`
	Q4         int     `json:"Q4"`
}

// DepartmentHires is one department's total hires in ReportYear.
type DepartmentHires struct {
	ID         int64  `json:"id"`
	Department string `json:"department"`
	TotalHired int64  `json:"total_hired"`
}

// hiresInYear: departments are left joined, jobs inner joined.
const hiresInYear = `SELECT d.department AS department, j.job AS job, h.datetime AS datetime
FROM hired_employees h
LEFT JOIN departments d ON d.id = h.department_id
JOIN jobs j ON j.id = h.job_id
WHERE h.datetime LIKE '` + ReportYear + `%'`

const hiresPerDepartment = `SELECT d.id AS id, d.department AS department, COUNT(h.id) AS total_hired
FROM hired_employees h
JOIN departments d ON d.id = h.department_id
WHERE h.datetime LIKE '` + ReportYear + `%'
GROUP BY d.id, d.department`

// Engine runs the reports against a Querier.
type Engine struct {
	q   Querier
	log logrus.FieldLogger
	job string
}

// New returns an Engine reading from q. A nil log discards output.
func New(q Querier, log logrus.FieldLogger) *Engine {
	if log == nil {
		log = logging.Discard()
	}
	return &Engine{q: q, log: log, job: "hiring_etl"}
}

// WithJob sets the job label used for metrics.
func (e *Engine) WithJob(job string) *Engine {
	if job != "" {
		e.job = job
	}
	return e
}

type pairKey struct {
	dept    string
	hasDept bool
	job     string
}

// QuarterlyHiringReport counts ReportYear hires per department, job and
// quarter. The month is read from characters 6-7 of the hire timestamp;
// rows where that is not a month number are skipped. Rows are ordered by
// department (missing department first), then job.
func (e *Engine) QuarterlyHiringReport(ctx context.Context) ([]QuarterlyHires, error) {
	start := time.Now()
	rows, err := e.q.Query(ctx, hiresInYear)
	metrics.RecordStep(e.job, "report_quarterly", err, time.Since(start))
	if err != nil {
		return nil, &domain.StorageError{Op: "query", Table: db.HiredEmployees.Name, Chunk: -1, Err: err}
	}

	var (
		order   []pairKey
		buckets = map[pairKey]*QuarterlyHires{}
		skipped int
		noDept  int
	)
	for _, r := range rows {
		job, ok := db.String(r["job"])
		if !ok {
			continue
		}
		ts, _ := db.String(r["datetime"])
		q, ok := quarter(ts)
		if !ok {
			skipped++
			e.log.WithFields(logrus.Fields{"datetime": ts, "job": job}).Debug("hire skipped: no month in timestamp")
			continue
		}

		dept, hasDept := db.String(r["department"])
		if !hasDept {
			noDept++
		}
		k := pairKey{dept: dept, hasDept: hasDept, job: job}
		b, seen := buckets[k]
		if !seen {
			b = &QuarterlyHires{Job: job}
			if hasDept {
				name := dept
				b.Department = &name
			}
			buckets[k] = b
			order = append(order, k)
		}
		switch q {
		case 1:
			b.Q1++
		case 2:
			b.Q2++
		case 3:
			b.Q3++
		case 4:
			b.Q4++
		}
	}

	sort.Slice(order, func(i, j int) bool {
		a, b := order[i], order[j]
		if a.hasDept != b.hasDept {
			return !a.hasDept
		}
		if a.dept != b.dept {
			return a.dept < b.dept
		}
		return a.job < b.job
	})

	out := make([]QuarterlyHires, 0, len(order))
	for _, k := range order {
		out = append(out, *buckets[k])
	}
	e.log.WithFields(logrus.Fields{
		"hires":              len(rows),
		"pairs":              len(out),
		"skipped":            skipped,
		"missing_department": noDept,
	}).Debug("quarterly report computed")
	return out, nil
}

// AboveMeanDepartments returns departments whose ReportYear hires strictly
// exceed the mean over departments with at least one hire, ordered by
// total descending, then id ascending.
func (e *Engine) AboveMeanDepartments(ctx context.Context) ([]DepartmentHires, error) {
	start := time.Now()
	rows, err := e.q.Query(ctx, hiresPerDepartment)
	metrics.RecordStep(e.job, "report_above_mean", err, time.Since(start))
	if err != nil {
		return nil, &domain.StorageError{Op: "query", Table: db.HiredEmployees.Name, Chunk: -1, Err: err}
	}

	all := make([]DepartmentHires, 0, len(rows))
	var sum int64
	for _, r := range rows {
		id, ok := db.Int64(r["id"])
		if !ok {
			continue
		}
		total, _ := db.Int64(r["total_hired"])
		name, _ := db.String(r["department"])
		all = append(all, DepartmentHires{ID: id, Department: name, TotalHired: total})
		sum += total
	}

	// total > sum/n, kept in integers.
	n := int64(len(all))
	out := make([]DepartmentHires, 0, len(all))
	for _, d := range all {
		if d.TotalHired*n > sum {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalHired != out[j].TotalHired {
			return out[i].TotalHired > out[j].TotalHired
		}
		return out[i].ID < out[j].ID
	})

	e.log.WithFields(logrus.Fields{"departments": n, "hires": sum, "above_mean": len(out)}).Debug("above-mean report computed")
	return out, nil
}

// quarter maps a timestamp such as "2021-04-15T..." to 1..4.
func quarter(ts string) (int, bool) {
	if len(ts) < 7 {
		return 0, false
	}
	m, err := strconv.Atoi(ts[5:7])
	if err != nil || m < 1 || m > 12 {
		return 0, false
	}
	return (m-1)/3 + 1, true
}
