// Package tzdb compiles the IANA time zone database source distribution
// into a compact, queryable in-memory model and answers UTC<->wall-clock
// conversion queries against it.
//
// The entry point is Compile, which accepts the raw bytes of a tzdb
// release (.tar.gz) and opts describing the external tables (country
// aliases, default-zone overrides) and the MaxYear ceiling for open-ended
// rules. The returned *TimezoneDB is immutable and safe for concurrent
// read-only use by WallFromUTC, UTCFromWall, and DefaultZoneForCountry.
package tzdb

import "github.com/tzkit/tzdb/internal/lex"

// Instant is a signed count of seconds since 1970-01-01T00:00:00Z.
type Instant = int64

// BeginOfTime and EndOfTime are the sentinels used for open intervals:
// the first range of every zone starts at BeginOfTime, and the last
// epoch of every Zone entry ends at EndOfTime.
const (
	BeginOfTime Instant = -1 << 63
	EndOfTime   Instant = 1<<63 - 1
)

// DateKind tags how a raw clock reading from the source is resolved to a
// UTC instant. It is the single place (see ResolveToUTC) where this
// distinction is interpreted; callers should never branch on it
// elsewhere.
type DateKind = lex.DateKind

const (
	// Wall is local time under the zone's standard offset plus whatever
	// savings were active immediately before this reading.
	Wall = lex.Wall
	// Standard is local time under the zone's standard offset, ignoring
	// savings entirely.
	Standard = lex.Standard
	// UTC is already a UTC reading; no offset is applied.
	UTC = lex.UTC
)

// ResolveToUTC is the single total function that turns a raw (kind, local)
// reading into a true UTC instant, given the standard offset in force and
// the savings offset that was active immediately before this reading.
// local is itself a calendar instant (seconds-since-epoch as if the
// broken-down fields were UTC), i.e. the output of
// internal/calendar.InstantFromDate.
func ResolveToUTC(kind DateKind, local int64, standardOffsetSeconds, previousSavingsSeconds int32) int64 {
	switch kind {
	case UTC:
		return local
	case Standard:
		return local - int64(standardOffsetSeconds)
	default: // Wall
		return local - int64(standardOffsetSeconds) - int64(previousSavingsSeconds)
	}
}

// TimeRange is one entry in a compiled zone's transition table: the
// offset and abbreviation in force from Since (inclusive) until the next
// range's Since (or forever, for the last range).
//
// Invariants (maintained by construction in compileZone; an over-long
// abbreviation is rejected with an Overflow error): non-empty per zone;
// Ranges[0].Since == BeginOfTime; strictly increasing Since; no two
// adjacent ranges share both OffsetSeconds and Abbreviation.
type TimeRange struct {
	Since         Instant
	OffsetSeconds int32
	Abbreviation  string // <= 5 bytes
}

// Timezone is a named zone and its compiled transition table. An alias
// (created by a Link declaration) shares its target's Ranges slice
// header rather than copying it.
type Timezone struct {
	Name                     string // <= 32 bytes
	AliasOf                  *Timezone
	CoordinateLatitudeSeconds  int32
	CoordinateLongitudeSeconds int32
	Ranges                   []TimeRange
}

// Country is an ISO 3166-1 entry with the ordered list of zones observed
// within it. Timezones[0] is the default zone for the country.
type Country struct {
	Code      string // 2 bytes
	Name      string // <= 60 bytes
	Timezones []*Timezone
}

// TimezoneDB is the compiled, immutable root of the model. Countries are
// sorted by Code and Timezones are sorted by Name.
type TimezoneDB struct {
	IANAVersion string
	Countries   []*Country
	Timezones   []*Timezone
}

// CountryAlias is one externally-supplied country-alias row (see
// Options.CountryAliases): after the country table is built, for each
// alias whose MainCode exists, an additional Country entry sharing the
// main country's zone list is inserted.
type CountryAlias struct {
	AliasCode, AliasName, MainCode string
}

// DefaultZoneOverride is one externally-supplied default-zone override
// (see Options.DefaultZoneOverrides): after zone attachment, the named
// zone is moved to the front of its country's zone list.
type DefaultZoneOverride struct {
	CountryCode, ZoneName string
}

// Options configures a single Compile call.
type Options struct {
	// MaxYear is the ceiling substituted for a Rule's TO field when it is
	// the literal "max". Zero means the default, 2500.
	MaxYear int

	// CountryAliases and DefaultZoneOverrides are optional externally
	// supplied tables; see CountryAlias and DefaultZoneOverride. Compile
	// never hard-codes either list.
	CountryAliases       []CountryAlias
	DefaultZoneOverrides []DefaultZoneOverride
}

const defaultMaxYear = 2500

func (o Options) maxYear() int {
	if o.MaxYear == 0 {
		return defaultMaxYear
	}
	return o.MaxYear
}

// ConversionStatus classifies the result of UTCFromWall.
type ConversionStatus int

const (
	// OK means the wall time maps to exactly one UTC instant.
	OK ConversionStatus = iota
	// Ambiguous means the wall time maps to two UTC instants (fall-back).
	Ambiguous
	// Invalid means the wall time maps to no UTC instant (spring-forward
	// gap).
	Invalid
)

func (s ConversionStatus) String() string {
	switch s {
	case OK:
		return "OK"
	case Ambiguous:
		return "AMBIGUOUS"
	case Invalid:
		return "INVALID"
	default:
		return "UNKNOWN"
	}
}

// Conversion is the result of UTCFromWall.
type Conversion struct {
	Status       ConversionStatus
	Earlier      Instant
	Later        Instant
	ClosestValid Instant
}
