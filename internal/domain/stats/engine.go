package stats

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/docscode/clinic/internal/domain/directory"
)

// The engine is pure read-side computation over a snapshot of a doctor's
// patients. Nothing here mutates the store; results are deterministic for
// a given snapshot and clock reading, so callers may run these in parallel
// with writes and with each other.

// Granularity selects the bucketing period for visit-count series.
type Granularity string

const (
	Weekly  Granularity = "weekly"
	Monthly Granularity = "monthly"
	Yearly  Granularity = "yearly"
)

// ParseGranularity accepts the wire form case-insensitively.
func ParseGranularity(s string) (Granularity, bool) {
	switch Granularity(strings.ToLower(s)) {
	case Weekly:
		return Weekly, true
	case Monthly:
		return Monthly, true
	case Yearly:
		return Yearly, true
	}
	return "", false
}

// SortOrder selects the directory ordering.
type SortOrder string

const (
	SortLatest       SortOrder = "latest"
	SortMostVisits   SortOrder = "most_visits"
	SortFewestVisits SortOrder = "fewest_visits"
)

// Stats is the dashboard counter pair.
type Stats struct {
	Total int `json:"totalPatients"`
	Today int `json:"patientsToday"`
}

// Bucket is one labelled point of a visit-count series.
type Bucket struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// Query drives FilterAndSort.
type Query struct {
	Search string
	Gender string // "", "All", or a directory.Gender value
	Sort   SortOrder
}

// Active reports whether a patient has at least one visit. Every read path
// in this engine excludes inactive patients through this one predicate.
func Active(p *directory.Patient) bool {
	return p != nil && len(p.Visits) > 0
}

func activeOnly(patients []*directory.Patient) []*directory.Patient {
	out := make([]*directory.Patient, 0, len(patients))
	for _, p := range patients {
		if Active(p) {
			out = append(out, p)
		}
	}
	return out
}

// ComputeStats counts active patients and how many of them have a visit in
// the current UTC day, from midnight through now.
func ComputeStats(patients []*directory.Patient, now time.Time) Stats {
	now = now.UTC()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	var s Stats
	for _, p := range patients {
		if !Active(p) {
			continue
		}
		s.Total++
		for _, v := range p.Visits {
			t := v.CreatedAt.UTC()
			if !t.Before(dayStart) && !t.After(now) {
				s.Today++
				break
			}
		}
	}
	return s
}

var weekdayLabels = []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

var monthLabels = []string{
	"Jan", "Feb", "Mar", "Apr", "May", "Jun",
	"Jul", "Aug", "Sep", "Oct", "Nov", "Dec",
}

// VisitSeries buckets every visit of every active patient into a labelled
// series. Weekly and Monthly are fully zero-filled regardless of data
// sparsity; Yearly emits one bucket per distinct year, ascending, and a
// single zero bucket for the current year when there are no visits at all.
func VisitSeries(patients []*directory.Patient, g Granularity, now time.Time) []Bucket {
	now = now.UTC()

	switch g {
	case Weekly:
		return weeklySeries(patients, now)
	case Monthly:
		return monthlySeries(patients, now)
	case Yearly:
		return yearlySeries(patients, now)
	}
	return nil
}

func weeklySeries(patients []*directory.Patient, now time.Time) []Bucket {
	// Window runs from the most recent Sunday at 00:00 UTC through now.
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	weekStart := day.AddDate(0, 0, -int(day.Weekday()))

	buckets := make([]Bucket, len(weekdayLabels))
	for i, label := range weekdayLabels {
		buckets[i] = Bucket{Label: label}
	}
	for _, p := range activeOnly(patients) {
		for _, v := range p.Visits {
			t := v.CreatedAt.UTC()
			if t.Before(weekStart) || t.After(now) {
				continue
			}
			// Monday occupies slot 0, Sunday slot 6.
			idx := (int(t.Weekday()) + 6) % 7
			buckets[idx].Count++
		}
	}
	return buckets
}

func monthlySeries(patients []*directory.Patient, now time.Time) []Bucket {
	buckets := make([]Bucket, len(monthLabels))
	for i, label := range monthLabels {
		buckets[i] = Bucket{Label: label}
	}
	for _, p := range activeOnly(patients) {
		for _, v := range p.Visits {
			t := v.CreatedAt.UTC()
			if t.Year() != now.Year() {
				continue
			}
			buckets[int(t.Month())-1].Count++
		}
	}
	return buckets
}

func yearlySeries(patients []*directory.Patient, now time.Time) []Bucket {
	counts := make(map[int]int)
	for _, p := range activeOnly(patients) {
		for _, v := range p.Visits {
			counts[v.CreatedAt.UTC().Year()]++
		}
	}
	if len(counts) == 0 {
		return []Bucket{{Label: strconv.Itoa(now.Year())}}
	}

	years := make([]int, 0, len(counts))
	for y := range counts {
		years = append(years, y)
	}
	sort.Ints(years)

	buckets := make([]Bucket, 0, len(years))
	for _, y := range years {
		buckets = append(buckets, Bucket{Label: strconv.Itoa(y), Count: counts[y]})
	}
	return buckets
}

// DefaultLatestN is how many patients LatestPatients returns when the
// caller does not say.
const DefaultLatestN = 5

// LatestPatients ranks active patients by their most recent visit,
// newest first, ties broken by patientId ascending, and returns the
// first n.
func LatestPatients(patients []*directory.Patient, n int) []*directory.Patient {
	if n <= 0 {
		n = DefaultLatestN
	}
	ranked := activeOnly(patients)
	sort.SliceStable(ranked, func(i, j int) bool {
		ti := ranked[i].LastVisit().CreatedAt
		tj := ranked[j].LastVisit().CreatedAt
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return ranked[i].PatientID < ranked[j].PatientID
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// FilterAndSort applies the directory view pipeline: active patients only,
// case-insensitive substring search on name or patientId, optional gender
// filter, then the requested ordering.
func FilterAndSort(patients []*directory.Patient, q Query) []*directory.Patient {
	search := strings.ToLower(strings.TrimSpace(q.Search))
	gender := strings.TrimSpace(q.Gender)
	filterGender := gender != "" && !strings.EqualFold(gender, "All")

	out := make([]*directory.Patient, 0, len(patients))
	for _, p := range patients {
		if !Active(p) {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(p.Name), search) &&
			!strings.Contains(strings.ToLower(p.PatientID), search) {
			continue
		}
		if filterGender && !strings.EqualFold(string(p.Gender), gender) {
			continue
		}
		out = append(out, p)
	}

	switch q.Sort {
	case SortMostVisits:
		sort.SliceStable(out, func(i, j int) bool {
			if len(out[i].Visits) != len(out[j].Visits) {
				return len(out[i].Visits) > len(out[j].Visits)
			}
			return out[i].PatientID < out[j].PatientID
		})
	case SortFewestVisits:
		sort.SliceStable(out, func(i, j int) bool {
			if len(out[i].Visits) != len(out[j].Visits) {
				return len(out[i].Visits) < len(out[j].Visits)
			}
			return out[i].PatientID < out[j].PatientID
		})
	default: // SortLatest
		sort.SliceStable(out, func(i, j int) bool {
			ti := out[i].LastVisit().CreatedAt
			tj := out[j].LastVisit().CreatedAt
			if !ti.Equal(tj) {
				return ti.After(tj)
			}
			return out[i].PatientID < out[j].PatientID
		})
	}
	return out
}
