package tzdb

import "testing"

func fixedTZ() *Timezone {
	return &Timezone{
		Name: "Test/Zone",
		Ranges: []TimeRange{
			{Since: BeginOfTime, OffsetSeconds: 3600, Abbreviation: "CET"},
			{Since: 100000, OffsetSeconds: 7200, Abbreviation: "CEST"},
			{Since: 200000, OffsetSeconds: 3600, Abbreviation: "CET"},
		},
	}
}

func TestRangeAtBoundaries(t *testing.T) {
	tz := fixedTZ()
	if r := tz.RangeAt(BeginOfTime); r.Abbreviation != "CET" {
		t.Errorf("RangeAt(BeginOfTime) = %+v", r)
	}
	if r := tz.RangeAt(99999); r.Abbreviation != "CET" {
		t.Errorf("RangeAt(99999) = %+v, want CET", r)
	}
	if r := tz.RangeAt(100000); r.Abbreviation != "CEST" {
		t.Errorf("RangeAt(100000) = %+v, want CEST (transition instant belongs to new range)", r)
	}
	if r := tz.RangeAt(EndOfTime); r.Abbreviation != "CET" {
		t.Errorf("RangeAt(EndOfTime) = %+v, want CET", r)
	}
}

func TestWallFromUTCTotal(t *testing.T) {
	tz := fixedTZ()
	local, offset, abbr := WallFromUTC(tz, 150000)
	if offset != 7200 || abbr != "CEST" || local != 150000+7200 {
		t.Errorf("WallFromUTC(150000) = (%d, %d, %q)", local, offset, abbr)
	}
}

func TestWallFromUTCGuards(t *testing.T) {
	tz := fixedTZ()

	if local, offset, abbr := WallFromUTC(nil, 0); local != 0 || offset != 0 || abbr != "UTC" {
		t.Errorf("WallFromUTC(nil, 0) = (%d, %d, %q), want (0, 0, UTC)", local, offset, abbr)
	}
	if local, offset, abbr := WallFromUTC(&Timezone{Name: "Etc/UTC"}, 12345); local != 12345 || offset != 0 || abbr != "UTC" {
		t.Errorf("WallFromUTC(no-ranges zone, 12345) = (%d, %d, %q), want (12345, 0, UTC)", local, offset, abbr)
	}
	if local, offset, abbr := WallFromUTC(tz, -500); local != -500 || offset != 0 || abbr != "UTC" {
		t.Errorf("WallFromUTC(tz, -500) = (%d, %d, %q), want (-500, 0, UTC)", local, offset, abbr)
	}
}

func TestUTCFromWallUnambiguous(t *testing.T) {
	tz := fixedTZ()
	conv := UTCFromWall(tz, 150000+7200)
	if conv.Status != OK {
		t.Fatalf("status = %v, want OK", conv.Status)
	}
	if conv.Earlier != 150000 {
		t.Errorf("Earlier = %d, want 150000", conv.Earlier)
	}
}

func TestUTCFromWallGuards(t *testing.T) {
	if conv := UTCFromWall(nil, 12345); conv.Status != OK || conv.Earlier != 12345 || conv.Later != 12345 || conv.ClosestValid != 12345 {
		t.Errorf("UTCFromWall(nil, 12345) = %+v, want all instants 12345, OK", conv)
	}
	tz := fixedTZ()
	if conv := UTCFromWall(tz, 42); conv.Status != OK || conv.Earlier != 42 || conv.Later != 42 || conv.ClosestValid != 42 {
		t.Errorf("UTCFromWall(tz, 42) = %+v, want all instants 42, OK (wall < 86400 guard)", conv)
	}
}

func TestUTCFromWallGapAndOverlap(t *testing.T) {
	// Spring forward: offset goes 3600 -> 7200 at Since=100000. Local
	// times in [100000+3600, 100000+7200) = [103600, 107200) never
	// occurred.
	tz := &Timezone{
		Name: "Gap/Zone",
		Ranges: []TimeRange{
			{Since: BeginOfTime, OffsetSeconds: 3600, Abbreviation: "A"},
			{Since: 100000, OffsetSeconds: 7200, Abbreviation: "B"},
		},
	}
	conv := UTCFromWall(tz, 105000)
	if conv.Status != Invalid {
		t.Fatalf("status = %v, want Invalid", conv.Status)
	}
	if conv.ClosestValid != 100000 {
		t.Errorf("ClosestValid = %d, want 100000 (the transition instant)", conv.ClosestValid)
	}

	// Fall back: offset goes 7200 -> 3600 at Since=100000. Local times in
	// [100000+3600, 100000+7200) = [103600, 107200) occurred twice.
	tz = &Timezone{
		Name: "Overlap/Zone",
		Ranges: []TimeRange{
			{Since: BeginOfTime, OffsetSeconds: 7200, Abbreviation: "B"},
			{Since: 100000, OffsetSeconds: 3600, Abbreviation: "A"},
		},
	}
	conv = UTCFromWall(tz, 105000)
	if conv.Status != Ambiguous {
		t.Fatalf("status = %v, want Ambiguous", conv.Status)
	}
	if conv.Earlier != 105000-7200 || conv.Later != 105000-3600 {
		t.Errorf("Earlier=%d Later=%d, want %d/%d", conv.Earlier, conv.Later, 105000-7200, 105000-3600)
	}
}

func TestZoneByNameAndCountryByCodeUnknown(t *testing.T) {
	db := &TimezoneDB{
		Countries: []*Country{{Code: "DE", Name: "Germany"}},
		Timezones: []*Timezone{{Name: "Europe/Berlin"}},
	}
	if _, err := db.ZoneByName("Europe/Paris"); err == nil {
		t.Error("expected error for unknown zone")
	}
	if _, err := db.CountryByCode("FR"); err == nil {
		t.Error("expected error for unknown country")
	}
	if tz, err := db.ZoneByName("Europe/Berlin"); err != nil || tz.Name != "Europe/Berlin" {
		t.Errorf("ZoneByName(Europe/Berlin) = %v, %v", tz, err)
	}
}

func TestCountryConvenienceWrappers(t *testing.T) {
	berlin := fixedTZ()
	berlin.Name = "Europe/Berlin"
	db := &TimezoneDB{
		Countries: []*Country{{Code: "DE", Name: "Germany", Timezones: []*Timezone{berlin}}},
		Timezones: []*Timezone{berlin},
	}

	local, offset, abbr, err := db.WallFromUTCForCountry("DE", 150000)
	if err != nil {
		t.Fatalf("WallFromUTCForCountry(DE): %v", err)
	}
	if offset != 7200 || abbr != "CEST" || local != 150000+7200 {
		t.Errorf("WallFromUTCForCountry(DE, 150000) = (%d, %d, %q)", local, offset, abbr)
	}

	conv, err := db.UTCFromWallForCountry("DE", 150000+7200)
	if err != nil {
		t.Fatalf("UTCFromWallForCountry(DE): %v", err)
	}
	if conv.Status != OK || conv.Earlier != 150000 {
		t.Errorf("UTCFromWallForCountry(DE, ...) = %+v, want OK/150000", conv)
	}

	if _, _, _, err := db.WallFromUTCForCountry("FR", 0); err == nil {
		t.Error("WallFromUTCForCountry(FR): expected error for unknown country")
	}
	if _, err := db.UTCFromWallForCountry("FR", 0); err == nil {
		t.Error("UTCFromWallForCountry(FR): expected error for unknown country")
	}
}
