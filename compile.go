package tzdb

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/tzkit/tzdb/internal/calendar"
	"github.com/tzkit/tzdb/internal/inflate"
	"github.com/tzkit/tzdb/internal/tartab"
	"github.com/tzkit/tzdb/tzsrc"
)

// requiredSourceFiles are the continent files every real tzdb release
// carries; a release missing one of these is treated as corrupt rather
// than silently compiled with gaps.
var requiredSourceFiles = []string{
	"africa", "antarctica", "asia", "australasia", "europe", "northamerica", "southamerica",
}

// optionalSourceFiles supply legacy Link aliases (backward) and the
// fixed-offset Etc/* zones (etcetera); older or trimmed releases may omit
// either without being corrupt.
var optionalSourceFiles = []string{"backward", "etcetera"}

// Compile builds a TimezoneDB from the raw bytes of an IANA tzdb release
// (a gzipped tar archive). It is the sole entry point of this package; on
// error no partial TimezoneDB is returned.
func Compile(archive []byte, opts Options) (*TimezoneDB, error) {
	raw, err := inflate.Gunzip(archive)
	if err != nil {
		return nil, wrapError(CorruptArchive, err)
	}

	var allRules []tzsrc.RuleLine
	var allZones []tzsrc.ZoneLine
	var allLinks []tzsrc.LinkLine

	for _, name := range requiredSourceFiles {
		data, ferr := tartab.Find(raw, name)
		if ferr != nil {
			return nil, wrapError(CorruptArchive, fmt.Errorf("member %q: %w", name, ferr))
		}
		if data == nil {
			return nil, newError(CorruptArchive, "member %q not found", name)
		}
		f, perr := tzsrc.Parse(bytes.NewReader(data), name)
		if perr != nil {
			return nil, wrapError(MalformedDeclaration, perr)
		}
		allRules = append(allRules, f.RuleLines...)
		allZones = append(allZones, f.ZoneLines...)
		allLinks = append(allLinks, f.LinkLines...)
	}
	for _, name := range optionalSourceFiles {
		data, ferr := tartab.Find(raw, name)
		if ferr != nil {
			continue
		}
		f, perr := tzsrc.Parse(bytes.NewReader(data), name)
		if perr != nil {
			return nil, wrapError(MalformedDeclaration, perr)
		}
		allRules = append(allRules, f.RuleLines...)
		allZones = append(allZones, f.ZoneLines...)
		allLinks = append(allLinks, f.LinkLines...)
	}

	var version string
	if data, verr := tartab.Find(raw, "version"); verr == nil {
		version = tzsrc.TrimVersion(data)
	}

	iso3166Data, err := tartab.Find(raw, "iso3166.tab")
	if err != nil {
		return nil, wrapError(CorruptArchive, fmt.Errorf("member iso3166.tab: %w", err))
	}
	if iso3166Data == nil {
		return nil, newError(CorruptArchive, "member iso3166.tab not found")
	}
	countryRows, err := tzsrc.ParseISO3166(bytes.NewReader(iso3166Data))
	if err != nil {
		return nil, wrapError(MalformedDeclaration, err)
	}

	zone1970Data, err := tartab.Find(raw, "zone1970.tab")
	if err != nil {
		return nil, wrapError(CorruptArchive, fmt.Errorf("member zone1970.tab: %w", err))
	}
	if zone1970Data == nil {
		return nil, newError(CorruptArchive, "member zone1970.tab not found")
	}
	coordRows, err := tzsrc.ParseZone1970(bytes.NewReader(zone1970Data))
	if err != nil {
		return nil, wrapError(MalformedDeclaration, err)
	}

	bundles, err := expandRuleLines(allRules, opts.maxYear())
	if err != nil {
		return nil, err
	}

	linkTargets := make(map[string]bool, len(allLinks))
	for _, l := range allLinks {
		linkTargets[l.Alias] = true
	}

	type zoneGroup struct {
		name   string
		epochs []tzsrc.ZoneLine
	}
	var groups []*zoneGroup
	var current *zoneGroup
	for _, zl := range allZones {
		if !zl.Continuation {
			current = &zoneGroup{name: zl.Name}
			groups = append(groups, current)
		}
		if current == nil {
			return nil, newError(MalformedDeclaration, "zone continuation line with no preceding Zone line")
		}
		current.epochs = append(current.epochs, zl)
	}

	timezones := make(map[string]*Timezone, len(groups)+len(allLinks))
	var ordered []*Timezone
	for _, g := range groups {
		if linkTargets[g.name] {
			return nil, newError(MalformedDeclaration, "zone %q is also the target of a Link alias", g.name)
		}
		if len(g.name) > 32 {
			return nil, newError(Overflow, "zone name %q exceeds 32 bytes", g.name)
		}
		tz, cerr := compileZone(g.name, g.epochs, bundles)
		if cerr != nil {
			return nil, cerr
		}
		timezones[g.name] = tz
		ordered = append(ordered, tz)
	}

	// Alias resolution happens strictly after every non-alias zone is
	// compiled, so a Link may appear before its target in source order.
	for _, l := range allLinks {
		main, ok := timezones[l.Main]
		if !ok {
			return nil, newError(UnresolvedReference, "link %q refers to unknown zone %q", l.Alias, l.Main)
		}
		if len(l.Alias) > 32 {
			return nil, newError(Overflow, "zone name %q exceeds 32 bytes", l.Alias)
		}
		alias := &Timezone{Name: l.Alias, AliasOf: main, Ranges: main.Ranges}
		timezones[l.Alias] = alias
		ordered = append(ordered, alias)
	}

	for _, row := range coordRows {
		tz, ok := timezones[row.Zone]
		if !ok {
			return nil, newError(UnresolvedReference, "zone1970.tab references unknown zone %q", row.Zone)
		}
		tz.CoordinateLatitudeSeconds = int32(row.LatSecs)
		tz.CoordinateLongitudeSeconds = int32(row.LonSecs)
	}

	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Name < ordered[j].Name })

	countries, err := buildCountries(countryRows, coordRows, timezones, opts)
	if err != nil {
		return nil, err
	}

	return &TimezoneDB{IANAVersion: version, Countries: countries, Timezones: ordered}, nil
}

// compileZone runs the range compiler (spec §4.6) for a single zone's
// ordered epochs (its Zone line plus any continuation lines), against
// the already-expanded rule bundles.
func compileZone(name string, epochs []tzsrc.ZoneLine, bundles map[string]*ruleBundle) (*Timezone, error) {
	var ranges []TimeRange
	cursor := BeginOfTime
	var previousSavings int32
	ruleIdx := make(map[string]int)

	for _, ep := range epochs {
		stdOff := int32(ep.StdOffSecs)
		var fixedSavings int32
		var bundleName string
		switch ep.RuleForm {
		case tzsrc.ZoneRuleNone:
		case tzsrc.ZoneRuleFixed:
			fixedSavings = int32(ep.RuleFixedSecs)
		case tzsrc.ZoneRuleNamed:
			bundleName = ep.RuleName
		}

		var epochUntil Instant
		if ep.Until.Defined {
			y, m, d, derr := resolveDayRule(ep.Until.Year, ep.Until.Month, ep.Until.Day)
			if derr != nil {
				return nil, wrapError(MalformedDeclaration, fmt.Errorf("zone %q UNTIL: %w", name, derr))
			}
			midnight, cerr := calendar.InstantFromDate(y, int(m), d, 0, 0, 0)
			if cerr != nil {
				return nil, wrapError(MalformedDeclaration, fmt.Errorf("zone %q UNTIL: %w", name, cerr))
			}
			local := midnight + int64(ep.Until.AtSecs)
			epochUntil = ResolveToUTC(ep.Until.AtKind, local, stdOff, previousSavings)
		} else {
			epochUntil = EndOfTime
		}

		if len(ranges) == 0 {
			abbr, aerr := resolveAbbreviation(ep.Format, "", 0)
			if aerr != nil {
				return nil, wrapError(Overflow, fmt.Errorf("zone %q: %w", name, aerr))
			}
			ranges = append(ranges, TimeRange{Since: BeginOfTime, OffsetSeconds: stdOff + fixedSavings, Abbreviation: abbr})
		}

		if bundleName != "" {
			bundle := bundles[bundleName]
			if bundle == nil {
				return nil, newError(UnresolvedReference, "zone %q references undefined rule set %q", name, bundleName)
			}
			if verr := sortOrValidate(bundle, stdOff, bundleName); verr != nil {
				return nil, verr
			}

			idx := ruleIdx[bundleName]
			for idx < len(bundle.rules) {
				r := bundle.rules[idx]
				ruleSince := ResolveToUTC(r.kind, r.activeSinceLocal, stdOff, previousSavings)
				if ruleSince >= epochUntil || ruleSince <= cursor {
					previousSavings = r.savingsSeconds
					break
				}

				cursor = ruleSince
				abbr, aerr := resolveAbbreviation(ep.Format, r.abbrevSub, r.savingsSeconds)
				if aerr != nil {
					return nil, wrapError(Overflow, fmt.Errorf("zone %q: %w", name, aerr))
				}
				candidate := TimeRange{Since: cursor, OffsetSeconds: stdOff + r.savingsSeconds, Abbreviation: abbr}
				last := ranges[len(ranges)-1]
				if last.OffsetSeconds == candidate.OffsetSeconds && last.Abbreviation == candidate.Abbreviation {
					previousSavings = r.savingsSeconds
					break
				}

				if idx+1 < len(bundle.rules) {
					next := bundle.rules[idx+1]
					nextSince := ResolveToUTC(next.kind, next.activeSinceLocal, stdOff, r.savingsSeconds)
					if nextSince < epochUntil && nextSince-cursor < 2*24*3600 {
						return nil, newError(SuspectOrdering, "zone %q: successive savings transitions less than 48h apart around %d", name, cursor)
					}
				}

				ranges = append(ranges, candidate)
				previousSavings = r.savingsSeconds
				idx++
			}
			ruleIdx[bundleName] = idx
		}

		if cursor < epochUntil {
			cursor = epochUntil
		}
	}

	if len(ranges) == 0 {
		return nil, newError(MalformedDeclaration, "zone %q has no Zone lines", name)
	}
	return &Timezone{Name: name, Ranges: ranges}, nil
}
