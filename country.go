package tzdb

import (
	"sort"

	"github.com/tzkit/tzdb/tzsrc"
)

// zonelessCountries lists ISO 3166-1 codes allowed to have no zone1970.tab
// entry: uninhabited territories that nonetheless get a country code
// (Bouvet Island, Heard Island and McDonald Islands).
var zonelessCountries = map[string]bool{
	"BV": true,
	"HM": true,
}

// buildCountries assembles the Country table from iso3166.tab and
// zone1970.tab, then applies Options.CountryAliases and
// Options.DefaultZoneOverrides. Neither table is ever hard-coded: both
// come solely from the archive and from opts.
func buildCountries(countryRows []tzsrc.CountryLine, coordRows []tzsrc.ZoneCoordLine, timezones map[string]*Timezone, opts Options) ([]*Country, error) {
	byCode := make(map[string]*Country, len(countryRows))
	var countries []*Country
	for _, row := range countryRows {
		if len(row.Code) != 2 || len(row.Name) > 60 {
			return nil, newError(Overflow, "country %q (%s) does not fit a 2-byte code and 60-byte name", row.Code, row.Name)
		}
		c := &Country{Code: row.Code, Name: row.Name}
		byCode[row.Code] = c
		countries = append(countries, c)
	}

	for _, row := range coordRows {
		tz, ok := timezones[row.Zone]
		if !ok {
			return nil, newError(UnresolvedReference, "zone1970.tab references unknown zone %q", row.Zone)
		}
		for _, code := range row.Codes {
			c, ok := byCode[code]
			if !ok {
				return nil, newError(UnresolvedReference, "zone1970.tab references unknown country %q", code)
			}
			c.Timezones = append(c.Timezones, tz)
		}
	}

	for _, c := range countries {
		if len(c.Timezones) == 0 && !zonelessCountries[c.Code] {
			return nil, newError(UnresolvedReference, "country %q (%s) has no zone1970.tab entry", c.Code, c.Name)
		}
	}

	for _, alias := range opts.CountryAliases {
		main, ok := byCode[alias.MainCode]
		if !ok {
			continue
		}
		if len(alias.AliasCode) != 2 || len(alias.AliasName) > 60 {
			return nil, newError(Overflow, "country alias %q (%s) does not fit a 2-byte code and 60-byte name", alias.AliasCode, alias.AliasName)
		}
		c := &Country{Code: alias.AliasCode, Name: alias.AliasName, Timezones: main.Timezones}
		byCode[alias.AliasCode] = c
		countries = append(countries, c)
	}

	for _, ov := range opts.DefaultZoneOverrides {
		c, ok := byCode[ov.CountryCode]
		if !ok {
			return nil, newError(UnresolvedReference, "default-zone override refers to unknown country %q", ov.CountryCode)
		}
		found := -1
		for i, tz := range c.Timezones {
			if tz.Name == ov.ZoneName {
				found = i
				break
			}
		}
		if found < 0 {
			return nil, newError(UnresolvedReference, "default-zone override: country %q has no zone %q", ov.CountryCode, ov.ZoneName)
		}
		// Rotate in place so alias countries sharing this slice see the
		// new default too.
		tz := c.Timezones[found]
		copy(c.Timezones[1:found+1], c.Timezones[:found])
		c.Timezones[0] = tz
	}

	sort.Slice(countries, func(i, j int) bool { return countries[i].Code < countries[j].Code })
	return countries, nil
}
