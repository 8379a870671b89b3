package timelog

import (
	"fmt"
	"sort"
	"time"
)

// Date is a calendar day in some location
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf returns the calendar day of t in loc
func DateOf(t time.Time, loc *time.Location) Date {
	y, m, d := t.In(loc).Date()
	return Date{Year: y, Month: m, Day: d}
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// Before reports whether d is an earlier day than o
func (d Date) Before(o Date) bool {
	if d.Year != o.Year {
		return d.Year < o.Year
	}
	if d.Month != o.Month {
		return d.Month < o.Month
	}
	return d.Day < o.Day
}

// ByDay buckets closed sessions by the local date of their start. Open
// sessions are left out until stopped. A malformed log yields an empty
// table together with the parse error.
func ByDay(log string, loc *time.Location) (map[Date]int, error) {
	table := map[Date]int{}
	records, err := Parse(log)
	if err != nil {
		return table, err
	}
	for _, r := range records {
		if r.IsOpen() {
			continue
		}
		table[DateOf(r.StartTime(), loc)] += r.Duration
	}
	return table, nil
}

// Merge adds every entry of src into dst
func Merge(dst, src map[Date]int) {
	for d, secs := range src {
		dst[d] += secs
	}
}

// Days returns the keys of table in chronological order
func Days(table map[Date]int) []Date {
	days := make([]Date, 0, len(table))
	for d := range table {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	return days
}
