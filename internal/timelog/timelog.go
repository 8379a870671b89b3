// Package timelog encodes the work sessions of a task.
//
// A log is a string of records, each "<start>,<seconds>;". The start is a
// fractional unix timestamp and seconds is the whole-second length of the
// session. A record with zero seconds is an open session: the timer was
// started and has not been stopped yet. Only the last record may be open.
//
//	1671365268.58338,6224;1671378590.05254,0;
package timelog

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

const (
	recordSep = ";"
	fieldSep  = ","
	openTail  = ",0;"
)

var (
	// ErrMalformed is wrapped by every parse failure.
	ErrMalformed = errors.New("malformed duration log")

	// ErrNoOpenSession is returned by Stop when the log has no open record.
	ErrNoOpenSession = errors.New("no open session")

	// ErrClockSkew is returned by Stop when now precedes the open record's start.
	ErrClockSkew = errors.New("stop time before session start")
)

// SyntaxError describes the record that failed to parse
type SyntaxError struct {
	Record int
	Text   string
	Reason string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%v: record %d %q: %s", ErrMalformed, e.Record, e.Text, e.Reason)
}

func (e *SyntaxError) Unwrap() error { return ErrMalformed }

// Record is one work session
type Record struct {
	Start    float64 // seconds since the unix epoch
	Duration int     // whole seconds; 0 while open
}

// IsOpen reports whether the session is still running
func (r Record) IsOpen() bool {
	return r.Duration == 0
}

// StartTime returns the session start as a time.Time
func (r Record) StartTime() time.Time {
	sec, frac := math.Modf(r.Start)
	return time.Unix(int64(sec), int64(math.Round(frac*1e6))*int64(time.Microsecond))
}

// Stamp converts t to the fractional timestamp stored in a log.
// Precision is one microsecond.
func Stamp(t time.Time) float64 {
	return float64(t.UnixMicro()) / 1e6
}

// Parse decodes a log. The empty string is a valid log with no records.
func Parse(log string) ([]Record, error) {
	if log == "" {
		return nil, nil
	}
	if !strings.HasSuffix(log, recordSep) {
		return nil, &SyntaxError{Record: -1, Text: log, Reason: "missing trailing separator"}
	}

	raw := strings.Split(strings.TrimSuffix(log, recordSep), recordSep)
	records := make([]Record, 0, len(raw))
	for i, text := range raw {
		fields := strings.Split(text, fieldSep)
		if len(fields) != 2 {
			return nil, &SyntaxError{Record: i, Text: text, Reason: "want start,seconds"}
		}
		start, err := strconv.ParseFloat(fields[0], 64)
		if err != nil || math.IsNaN(start) || math.IsInf(start, 0) {
			return nil, &SyntaxError{Record: i, Text: text, Reason: "bad start timestamp"}
		}
		dur, err := parseSeconds(fields[1])
		if err != nil {
			return nil, &SyntaxError{Record: i, Text: text, Reason: "bad duration"}
		}
		if dur == 0 && i != len(raw)-1 {
			return nil, &SyntaxError{Record: i, Text: text, Reason: "open session before last record"}
		}
		records = append(records, Record{Start: start, Duration: dur})
	}
	return records, nil
}

// parseSeconds accepts only the form Encode writes: decimal digits with no
// sign and no leading zero. "00" or "+0" would read as an open session that
// Stop and the ",0;" suffix checks could not see.
func parseSeconds(s string) (int, error) {
	if s == "" || (len(s) > 1 && s[0] == '0') {
		return 0, strconv.ErrSyntax
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, strconv.ErrSyntax
		}
	}
	return strconv.Atoi(s)
}

// Encode serializes records. It does not validate them.
func Encode(records []Record) string {
	var b strings.Builder
	for _, r := range records {
		b.WriteString(formatStamp(r.Start))
		b.WriteString(fieldSep)
		b.WriteString(strconv.Itoa(r.Duration))
		b.WriteString(recordSep)
	}
	return b.String()
}

// formatStamp prints the shortest exact decimal form, keeping at least one
// fractional digit so whole seconds read as "1000.0".
func formatStamp(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// Open returns the trailing open record, if any.
func Open(log string) (Record, bool, error) {
	records, err := Parse(log)
	if err != nil {
		return Record{}, false, err
	}
	if len(records) == 0 || !records[len(records)-1].IsOpen() {
		return Record{}, false, nil
	}
	return records[len(records)-1], true, nil
}

// Start begins a session at now. When the log already ends with an open
// session it is returned unchanged and resumed is true; the caller derives
// the elapsed time from that record's start.
func Start(log string, now time.Time) (updated string, resumed bool, err error) {
	_, open, err := Open(log)
	if err != nil {
		return log, false, err
	}
	if open {
		return log, true, nil
	}
	return log + formatStamp(Stamp(now)) + openTail, false, nil
}

// Stop closes the open session with the whole seconds elapsed until now.
// Only the trailing duration field is rewritten, so the stored start stays
// byte-identical. A session shorter than one second is dropped.
func Stop(log string, now time.Time) (string, error) {
	rec, open, err := Open(log)
	if err != nil {
		return log, err
	}
	if !open {
		return log, ErrNoOpenSession
	}

	elapsed := now.Sub(rec.StartTime())
	if elapsed < 0 {
		return log, ErrClockSkew
	}
	body := strings.TrimSuffix(log, recordSep)
	secs := int(elapsed / time.Second)
	if secs == 0 {
		i := strings.LastIndex(body, recordSep)
		if i < 0 {
			return "", nil
		}
		return body[:i+1], nil
	}
	// Cut at the open record's own duration field.
	i := strings.LastIndex(body, fieldSep)
	return body[:i+1] + strconv.Itoa(secs) + recordSep, nil
}

// Elapsed returns how long the open session has been running at now.
func Elapsed(log string, now time.Time) (time.Duration, bool, error) {
	rec, open, err := Open(log)
	if err != nil || !open {
		return 0, false, err
	}
	d := now.Sub(rec.StartTime())
	if d < 0 {
		d = 0
	}
	return d, true, nil
}

// Total sums the closed sessions. A malformed log counts as empty and the
// parse error is returned alongside the zero total.
func Total(log string) (int, error) {
	records, err := Parse(log)
	if err != nil {
		return 0, err
	}
	total := 0
	for _, r := range records {
		total += r.Duration
	}
	return total, nil
}

// TotalAt is Total plus the whole seconds of a running session at now.
func TotalAt(log string, now time.Time) (int, error) {
	total, err := Total(log)
	if err != nil {
		return 0, err
	}
	elapsed, open, err := Elapsed(log, now)
	if err != nil {
		return 0, err
	}
	if open {
		total += int(elapsed / time.Second)
	}
	return total, nil
}

// Format renders seconds as H:MM:SS, or M:SS below one hour.
func Format(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	h := seconds / 3600
	m := seconds % 3600 / 60
	s := seconds % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
