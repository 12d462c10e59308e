// Package tzsrc implements the declaration parser: line-oriented parsing
// of the IANA tzdb source language (Rule, Zone, Link) plus the two
// supporting tables, iso3166.tab and zone1970.tab.
//
// It generalizes the go-tz tzdata package, which only parsed Rule/Zone/
// Link, to also parse iso3166.tab and zone1970.tab — required by this
// module's country/default-zone modeling but absent from the distilled
// teacher package. The per-line error reporting style (a ParseError
// carrying file name, line number, and line text) is kept from go-tz's
// tzdata.parseError.
package tzsrc

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/tzkit/tzdb/internal/lex"
)

// ParseError reports a malformed declaration line.
type ParseError struct {
	File string
	Line int
	Text string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d: %v (in %q)", e.File, e.Line, e.Err, e.Text)
}

func (e *ParseError) Unwrap() error { return e.Err }

func parseErr(file string, line int, text string, err error) error {
	return &ParseError{File: file, Line: line, Text: text, Err: err}
}

// DayRuleKind identifies which of the three day-of-month recurrence forms
// a Rule's ON field (or a Zone's UNTIL day field) uses.
type DayRuleKind int

const (
	// EqualToDate fires on a fixed day-of-month.
	EqualToDate DayRuleKind = iota
	// WeekdayAfterOrOn fires on the earliest day >= Day with weekday Weekday.
	WeekdayAfterOrOn
	// WeekdayBeforeOrOn fires on the latest day <= Day with weekday Weekday;
	// Day may exceed the month length, denoting "last weekday of month".
	WeekdayBeforeOrOn
)

// DayRule describes the day-of-month on which a recurring transition
// fires within a given year and month.
type DayRule struct {
	Kind    DayRuleKind
	Day     int
	Weekday time.Weekday
}

// RuleLine is one source Rule line, not yet expanded into per-year
// occurrences.
type RuleLine struct {
	Name     string
	From, To int // years; lex.MinYear/MaxYear sentinels for "min"/"max"
	In       time.Month
	On       DayRule
	AtSecs   int
	AtKind   lex.DateKind
	SaveSecs int
	Letter   string // abbreviation substitution; "" if "-"
}

// ZoneRuleForm identifies how a Zone line's RULES field selects savings.
type ZoneRuleForm int

const (
	// ZoneRuleNone means the zone never observes savings ("-").
	ZoneRuleNone ZoneRuleForm = iota
	// ZoneRuleFixed means RULES is itself an H:M:S savings amount.
	ZoneRuleFixed
	// ZoneRuleNamed means RULES names a rule bundle.
	ZoneRuleNamed
)

// ZoneLine is one line (initial or continuation) of a Zone entry.
type ZoneLine struct {
	Name          string // set only on the first line of the entry
	Continuation  bool
	StdOffSecs    int
	RuleForm      ZoneRuleForm
	RuleFixedSecs int
	RuleName      string
	Format        string
	Until         Until
}

// Until is a Zone line's UNTIL field.
type Until struct {
	Defined bool
	Year    int
	Month   time.Month
	Day     DayRule
	AtSecs  int
	AtKind  lex.DateKind
}

// LinkLine is one source Link line.
type LinkLine struct {
	Main, Alias string
}

// CountryLine is one row of iso3166.tab.
type CountryLine struct {
	Code, Name string
}

// ZoneCoordLine is one row of zone1970.tab.
type ZoneCoordLine struct {
	Codes           []string
	LatSecs, LonSecs int
	Zone            string
}

// File is the parsed content of one continent source file.
type File struct {
	RuleLines []RuleLine
	ZoneLines []ZoneLine
	LinkLines []LinkLine
}

// Parse parses one continent tzdb source file (e.g. "europe").
func Parse(r io.Reader, filename string) (*File, error) {
	f := &File{}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNo := 0
	expectingContinuation := false

	for scanner.Scan() {
		lineNo++
		rawLine := scanner.Text()
		fields := lex.Fields(rawLine)
		if len(fields) == 0 {
			continue
		}

		if expectingContinuation {
			zl, err := parseZoneContinuation(fields)
			if err != nil {
				return nil, parseErr(filename, lineNo, rawLine, err)
			}
			f.ZoneLines = append(f.ZoneLines, zl)
			expectingContinuation = zl.Until.Defined
			continue
		}

		switch fields[0] {
		case "Rule":
			rl, err := parseRule(fields)
			if err != nil {
				return nil, parseErr(filename, lineNo, rawLine, err)
			}
			f.RuleLines = append(f.RuleLines, rl)
		case "Zone":
			zl, err := parseZoneInitial(fields)
			if err != nil {
				return nil, parseErr(filename, lineNo, rawLine, err)
			}
			f.ZoneLines = append(f.ZoneLines, zl)
			expectingContinuation = zl.Until.Defined
		case "Link":
			ll, err := parseLink(fields)
			if err != nil {
				return nil, parseErr(filename, lineNo, rawLine, err)
			}
			f.LinkLines = append(f.LinkLines, ll)
		default:
			return nil, parseErr(filename, lineNo, rawLine, fmt.Errorf("unknown command %q", fields[0]))
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("tzsrc: reading %s: %w", filename, err)
	}
	return f, nil
}

func parseYear(s string) (int, error) {
	y, ok := lex.PeekYear(s)
	if !ok {
		return 0, fmt.Errorf("invalid year %q", s)
	}
	return y, nil
}

func parseDayRule(s string) (DayRule, error) {
	if day, ok := lex.PeekDayInMonth(s); ok {
		return DayRule{Kind: EqualToDate, Day: day}, nil
	}
	if strings.HasPrefix(s, "last") {
		wd, err := lex.ParseWeekday(s[4:])
		if err != nil {
			return DayRule{}, fmt.Errorf("invalid day rule %q: %w", s, err)
		}
		return DayRule{Kind: WeekdayBeforeOrOn, Day: 31, Weekday: wd}, nil
	}
	if i := strings.Index(s, ">="); i >= 0 {
		wd, err := lex.ParseWeekday(s[:i])
		if err != nil {
			return DayRule{}, fmt.Errorf("invalid day rule %q: %w", s, err)
		}
		day, ok := lex.PeekDayInMonth(s[i+2:])
		if !ok {
			return DayRule{}, fmt.Errorf("invalid day rule %q", s)
		}
		return DayRule{Kind: WeekdayAfterOrOn, Day: day, Weekday: wd}, nil
	}
	if i := strings.Index(s, "<="); i >= 0 {
		wd, err := lex.ParseWeekday(s[:i])
		if err != nil {
			return DayRule{}, fmt.Errorf("invalid day rule %q: %w", s, err)
		}
		day, ok := lex.PeekDayInMonth(s[i+2:])
		if !ok {
			return DayRule{}, fmt.Errorf("invalid day rule %q", s)
		}
		return DayRule{Kind: WeekdayBeforeOrOn, Day: day, Weekday: wd}, nil
	}
	// Bare weekday means "on or after the 1st".
	if wd, err := lex.ParseWeekday(s); err == nil {
		return DayRule{Kind: WeekdayAfterOrOn, Day: 1, Weekday: wd}, nil
	}
	return DayRule{}, fmt.Errorf("invalid day rule %q", s)
}

func parseRule(fields []string) (RuleLine, error) {
	if len(fields) != 10 {
		return RuleLine{}, fmt.Errorf("Rule line must have 10 fields, got %d", len(fields))
	}
	var errs []error
	name := fields[1]

	from, err := parseYear(fields[2])
	if err != nil {
		errs = append(errs, fmt.Errorf("FROM: %w", err))
	}

	var to int
	switch strings.ToLower(fields[3]) {
	case "only":
		to = from
	default:
		to, err = parseYear(fields[3])
		if err != nil {
			errs = append(errs, fmt.Errorf("TO: %w", err))
		}
	}

	if fields[4] != "-" {
		errs = append(errs, fmt.Errorf("unsupported Rule TYPE %q", fields[4]))
	}

	month, err := lex.ParseMonth(fields[5])
	if err != nil {
		errs = append(errs, fmt.Errorf("IN: %w", err))
	}

	on, err := parseDayRule(fields[6])
	if err != nil {
		errs = append(errs, fmt.Errorf("ON: %w", err))
	}

	atSecs, atKind, err := lex.ParseHMS(fields[7])
	if err != nil {
		errs = append(errs, fmt.Errorf("AT: %w", err))
	}

	saveSecs, err := lex.ParseHMSSigned(fields[8])
	if err != nil {
		errs = append(errs, fmt.Errorf("SAVE: %w", err))
	}

	letter := fields[9]
	if letter == "-" {
		letter = ""
	}

	if len(errs) > 0 {
		return RuleLine{}, errors.Join(errs...)
	}
	return RuleLine{
		Name: name, From: from, To: to, In: month, On: on,
		AtSecs: atSecs, AtKind: atKind, SaveSecs: saveSecs, Letter: letter,
	}, nil
}

func parseZoneRuleField(s string) (ZoneRuleForm, int, string, error) {
	if s == "-" {
		return ZoneRuleNone, 0, "", nil
	}
	if secs, _, err := lex.ParseHMS(s); err == nil {
		return ZoneRuleFixed, secs, "", nil
	}
	return ZoneRuleNamed, 0, s, nil
}

func parseStdOff(s string) (int, error) {
	secs, _, err := lex.ParseHMS(strings.TrimPrefix(s, "-"))
	if err != nil {
		return 0, err
	}
	if strings.HasPrefix(s, "-") {
		secs = -secs
	}
	return secs, nil
}

func parseUntil(fields []string) (Until, error) {
	if len(fields) == 0 {
		return Until{}, nil
	}
	var errs []error
	u := Until{Defined: true, Month: time.January, Day: DayRule{Kind: EqualToDate, Day: 1}}

	year, err := parseYear(fields[0])
	if err != nil {
		errs = append(errs, fmt.Errorf("UNTIL year: %w", err))
	}
	u.Year = year

	if len(fields) > 1 {
		u.Month, err = lex.ParseMonth(fields[1])
		if err != nil {
			errs = append(errs, fmt.Errorf("UNTIL month: %w", err))
		}
	}
	if len(fields) > 2 {
		u.Day, err = parseDayRule(fields[2])
		if err != nil {
			errs = append(errs, fmt.Errorf("UNTIL day: %w", err))
		}
	}
	if len(fields) > 3 {
		u.AtSecs, u.AtKind, err = lex.ParseHMS(fields[3])
		if err != nil {
			errs = append(errs, fmt.Errorf("UNTIL time: %w", err))
		}
	}
	if len(fields) > 4 {
		errs = append(errs, fmt.Errorf("too many UNTIL fields"))
	}
	if len(errs) > 0 {
		return Until{}, errors.Join(errs...)
	}
	return u, nil
}

func parseZoneInitial(fields []string) (ZoneLine, error) {
	if len(fields) < 4 {
		return ZoneLine{}, fmt.Errorf("Zone line must have at least 4 fields, got %d", len(fields))
	}
	zl, err := parseZoneBody(fields[2:])
	if err != nil {
		return ZoneLine{}, err
	}
	zl.Name = fields[1]
	return zl, nil
}

func parseZoneContinuation(fields []string) (ZoneLine, error) {
	if len(fields) < 2 {
		return ZoneLine{}, fmt.Errorf("Zone continuation must have at least 2 fields, got %d", len(fields))
	}
	zl, err := parseZoneBody(fields)
	if err != nil {
		return ZoneLine{}, err
	}
	zl.Continuation = true
	return zl, nil
}

func parseZoneBody(fields []string) (ZoneLine, error) {
	var errs []error
	var zl ZoneLine

	stdoff, err := parseStdOff(fields[0])
	if err != nil {
		errs = append(errs, fmt.Errorf("STDOFF: %w", err))
	}
	zl.StdOffSecs = stdoff

	form, fixed, name, err := parseZoneRuleField(fields[1])
	if err != nil {
		errs = append(errs, fmt.Errorf("RULES: %w", err))
	}
	zl.RuleForm, zl.RuleFixedSecs, zl.RuleName = form, fixed, name

	if len(fields) < 3 {
		errs = append(errs, fmt.Errorf("missing FORMAT field"))
	} else {
		zl.Format = fields[2]
		if err := validateFormat(zl.Format); err != nil {
			errs = append(errs, fmt.Errorf("FORMAT: %w", err))
		}
	}

	if len(fields) > 3 {
		u, err := parseUntil(fields[3:])
		if err != nil {
			errs = append(errs, err)
		}
		zl.Until = u
	}

	if len(errs) > 0 {
		return ZoneLine{}, errors.Join(errs...)
	}
	return zl, nil
}

// validateFormat checks that a Zone FORMAT string is one of the three
// recognized shapes: a literal, a STD/DST pair, or a %s substitution
// template (with %% escaped and no other bare %).
func validateFormat(format string) error {
	if strings.Contains(format, "/") {
		return nil
	}
	for i := 0; i < len(format); i++ {
		if format[i] != '%' {
			continue
		}
		if i+1 >= len(format) {
			return fmt.Errorf("dangling %% in format %q", format)
		}
		switch format[i+1] {
		case 's', '%':
			i++
		default:
			return fmt.Errorf("invalid %%-escape in format %q", format)
		}
	}
	return nil
}

func parseLink(fields []string) (LinkLine, error) {
	if len(fields) != 3 {
		return LinkLine{}, fmt.Errorf("Link line must have 3 fields, got %d", len(fields))
	}
	return LinkLine{Main: fields[1], Alias: fields[2]}, nil
}

// ParseISO3166 parses iso3166.tab: tab-separated CODE and NAME per line.
func ParseISO3166(r io.Reader) ([]CountryLine, error) {
	var rows []CountryLine
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if strings.HasPrefix(line, "#") || strings.TrimSpace(line) == "" {
			continue
		}
		parts := strings.SplitN(line, "\t", 2)
		if len(parts) != 2 {
			return nil, parseErr("iso3166.tab", lineNo, line, fmt.Errorf("expected CODE<TAB>NAME"))
		}
		rows = append(rows, CountryLine{Code: parts[0], Name: parts[1]})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("tzsrc: reading iso3166.tab: %w", err)
	}
	return rows, nil
}

// ParseZone1970 parses zone1970.tab: comma-separated country codes, a
// fixed-width lat/long coordinate, a zone name, and optional trailing
// comment columns (ignored).
func ParseZone1970(r io.Reader) ([]ZoneCoordLine, error) {
	var rows []ZoneCoordLine
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if strings.HasPrefix(line, "#") || strings.TrimSpace(line) == "" {
			continue
		}
		parts := strings.Split(line, "\t")
		if len(parts) < 3 {
			return nil, parseErr("zone1970.tab", lineNo, line, fmt.Errorf("expected CODES<TAB>COORDS<TAB>ZONE"))
		}
		lat, lon, err := lex.ParseLatLong(parts[1])
		if err != nil {
			return nil, parseErr("zone1970.tab", lineNo, line, err)
		}
		rows = append(rows, ZoneCoordLine{
			Codes:    strings.Split(parts[0], ","),
			LatSecs:  lat,
			LonSecs:  lon,
			Zone:     parts[2],
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("tzsrc: reading zone1970.tab: %w", err)
	}
	return rows, nil
}

// TrimVersion trims the trailing whitespace (including a final newline)
// from the content of the "version" archive member.
func TrimVersion(b []byte) string {
	return strings.TrimSpace(string(b))
}
