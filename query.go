package tzdb

import "sort"

// RangeAt returns the TimeRange in force at instant: the last range whose
// Since is <= instant. A transition instant itself belongs to the range
// that starts there, never the one that just ended.
func (tz *Timezone) RangeAt(instant Instant) TimeRange {
	i := sort.Search(len(tz.Ranges), func(i int) bool { return tz.Ranges[i].Since > instant })
	return tz.Ranges[i-1]
}

// WallFromUTC converts a UTC instant to the local wall-clock instant,
// offset, and abbreviation in force at that time. This direction is
// total: every UTC instant maps to exactly one local reading.
//
// A nil zone, a zone with no ranges (the bare "UTC" pseudo-timezone), and
// any instant before the Unix epoch are all treated as plain UTC: the
// instant is returned unchanged, with a zero offset, per the "no
// timezones before the epoch" simplification.
func WallFromUTC(tz *Timezone, instant Instant) (local int64, offsetSeconds int32, abbreviation string) {
	if tz == nil || len(tz.Ranges) == 0 || instant < 0 {
		return instant, 0, "UTC"
	}
	r := tz.RangeAt(instant)
	return instant + int64(r.OffsetSeconds), r.OffsetSeconds, r.Abbreviation
}

// UTCFromWall converts a local wall-clock instant back to UTC. Because a
// zone's offset can change, this direction is not total: a spring-forward
// transition skips a span of wall times (Invalid) and a fall-back
// transition repeats one (Ambiguous).
//
// A nil zone and any local instant earlier than one full day after the
// epoch (local < 86400, including every negative instant) both report OK
// with all three instants equal to local, unchanged.
func UTCFromWall(tz *Timezone, local int64) Conversion {
	if tz == nil || local < 24*3600 {
		return Conversion{Status: OK, Earlier: local, Later: local, ClosestValid: local}
	}

	for i, r := range tz.Ranges {
		to := Instant(EndOfTime)
		var hasNext bool
		var next TimeRange
		if i+1 < len(tz.Ranges) {
			next = tz.Ranges[i+1]
			to = next.Since
			hasNext = true
		}

		utc := local - int64(r.OffsetSeconds)
		if utc > to {
			continue
		}

		if hasNext {
			utcWithNext := local - int64(next.OffsetSeconds)
			if utcWithNext >= to {
				return Conversion{Status: Ambiguous, Earlier: utc, Later: utcWithNext, ClosestValid: utc}
			}
		}

		if utc < r.Since {
			if i == 0 {
				// Invalid only because the very first range starts at
				// BeginOfTime; ignore timezones before the epoch and
				// return the input unchanged.
				return Conversion{Status: OK, Earlier: local, Later: local, ClosestValid: local}
			}
			previous := tz.Ranges[i-1]
			utcWithPrevious := local - int64(previous.OffsetSeconds)
			return Conversion{Status: Invalid, Earlier: utcWithPrevious, Later: utc, ClosestValid: r.Since}
		}

		return Conversion{Status: OK, Earlier: utc, Later: utc, ClosestValid: utc}
	}

	panic("tzdb: UTCFromWall: no range matched (last range's to must be EndOfTime)")
}

// DefaultZoneForCountry returns the default zone for an ISO 3166-1 code
// (Country.Timezones[0]), per the zone1970.tab declaration order and any
// Options.DefaultZoneOverrides applied during Compile. A known country
// with no zones (e.g. BV) yields a nil zone and no error; WallFromUTC and
// UTCFromWall treat a nil zone as UTC.
func (db *TimezoneDB) DefaultZoneForCountry(code string) (*Timezone, error) {
	c, err := db.CountryByCode(code)
	if err != nil {
		return nil, err
	}
	if len(c.Timezones) == 0 {
		return nil, nil
	}
	return c.Timezones[0], nil
}

// WallFromUTCForCountry resolves code's default zone and converts instant
// through it, the equivalent of passing DefaultZoneForCountry's result to
// WallFromUTC. It fails only when the country itself is unknown.
func (db *TimezoneDB) WallFromUTCForCountry(code string, instant Instant) (local int64, offsetSeconds int32, abbreviation string, err error) {
	tz, err := db.DefaultZoneForCountry(code)
	if err != nil {
		return instant, 0, "", err
	}
	local, offsetSeconds, abbreviation = WallFromUTC(tz, instant)
	return local, offsetSeconds, abbreviation, nil
}

// UTCFromWallForCountry resolves code's default zone and converts local
// through it, the equivalent of passing DefaultZoneForCountry's result to
// UTCFromWall. It fails only when the country itself is unknown.
func (db *TimezoneDB) UTCFromWallForCountry(code string, local int64) (Conversion, error) {
	tz, err := db.DefaultZoneForCountry(code)
	if err != nil {
		return Conversion{}, err
	}
	return UTCFromWall(tz, local), nil
}

// CountryByCode looks up a Country by its ISO 3166-1 code via binary
// search (Countries is sorted by Code).
func (db *TimezoneDB) CountryByCode(code string) (*Country, error) {
	i := sort.Search(len(db.Countries), func(i int) bool { return db.Countries[i].Code >= code })
	if i < len(db.Countries) && db.Countries[i].Code == code {
		return db.Countries[i], nil
	}
	return nil, newError(UnresolvedReference, "unknown country code %q", code)
}

// ZoneByName looks up a Timezone by name via binary search (Timezones is
// sorted by Name). Aliases (Link targets) are included.
func (db *TimezoneDB) ZoneByName(name string) (*Timezone, error) {
	i := sort.Search(len(db.Timezones), func(i int) bool { return db.Timezones[i].Name >= name })
	if i < len(db.Timezones) && db.Timezones[i].Name == name {
		return db.Timezones[i], nil
	}
	return nil, newError(UnresolvedReference, "unknown zone %q", name)
}
