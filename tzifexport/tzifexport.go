// Package tzifexport adapts a compiled tzdb.Timezone into the tzif
// package's File type, so it can be written out as a binary TZif file
// (RFC 8536) understood by system libc/zdump tooling. The tzif package
// itself is a self-contained binary codec; this package is
// the bridge from this module's range-table domain model to it.
package tzifexport

import (
	"fmt"
	"math"

	"github.com/tzkit/tzdb"
	"github.com/tzkit/tzdb/tzif"
)

type typeKey struct {
	offset int32
	abbrev string
}

// Build renders tz as a version-2 tzif.File: a 32-bit V1 block (with
// out-of-range transition times clamped, as the format requires) plus the
// full-precision 64-bit V2 block. Local time types are deduplicated by
// (offset, abbreviation); a type's DST flag is a heuristic (offset
// differs from the zone's most common offset), since TimeRange does not
// separately record which offsets originated from a Rule's savings vs. a
// Zone's standard offset.
func Build(tz *tzdb.Timezone) (tzif.File, error) {
	if len(tz.Ranges) == 0 {
		return tzif.File{}, fmt.Errorf("tzifexport: zone %q has no ranges", tz.Name)
	}

	modeOffset := mostCommonOffset(tz.Ranges)

	var types []tzif.LocalTimeTypeRecord
	var designation []byte
	seen := make(map[typeKey]uint8)

	typeIndexFor := func(r tzdb.TimeRange) (uint8, error) {
		key := typeKey{r.OffsetSeconds, r.Abbreviation}
		if idx, ok := seen[key]; ok {
			return idx, nil
		}
		if len(types) >= 256 {
			return 0, fmt.Errorf("tzifexport: zone %q has more than 256 distinct local time types", tz.Name)
		}
		idx := uint8(len(types))
		designationIdx := len(designation)
		designation = append(designation, []byte(r.Abbreviation)...)
		designation = append(designation, 0)
		types = append(types, tzif.LocalTimeTypeRecord{
			Utoff: r.OffsetSeconds,
			Dst:   r.OffsetSeconds != modeOffset,
			Idx:   uint8(designationIdx),
		})
		seen[key] = idx
		return idx, nil
	}

	// The type of tz.Ranges[0] is the type in force before any recorded
	// transition; it occupies an index but contributes no transition
	// entry of its own.
	if _, err := typeIndexFor(tz.Ranges[0]); err != nil {
		return tzif.File{}, err
	}

	var transitionTimes64 []int64
	var transitionTypes []uint8
	for _, r := range tz.Ranges[1:] {
		idx, err := typeIndexFor(r)
		if err != nil {
			return tzif.File{}, err
		}
		transitionTimes64 = append(transitionTimes64, r.Since)
		transitionTypes = append(transitionTypes, idx)
	}

	v1Times := make([]int32, len(transitionTimes64))
	for i, t := range transitionTimes64 {
		v1Times[i] = clampInt32(t)
	}

	v1Header := tzif.Header{
		Version: tzif.V1,
		Timecnt: uint32(len(v1Times)),
		Typecnt: uint32(len(types)),
		Charcnt: uint32(len(designation)),
	}
	v1Data := tzif.V1DataBlock{
		TransitionTimes:     v1Times,
		TransitionTypes:     transitionTypes,
		LocalTimeTypeRecord: types,
		TimeZoneDesignation: designation,
	}

	v2Header := tzif.Header{
		Version: tzif.V2,
		Timecnt: uint32(len(transitionTimes64)),
		Typecnt: uint32(len(types)),
		Charcnt: uint32(len(designation)),
	}
	v2Data := tzif.V2DataBlock{
		TransitionTimes:     transitionTimes64,
		TransitionTypes:     transitionTypes,
		LocalTimeTypeRecord: types,
		TimeZoneDesignation: designation,
	}

	f := tzif.File{
		Version:  tzif.V2,
		V1Header: v1Header,
		V1Data:   v1Data,
		V2Header: v2Header,
		V2Data:   v2Data,
		V2Footer: tzif.Footer{},
	}
	if err := tzif.Validate(f); err != nil {
		return tzif.File{}, fmt.Errorf("tzifexport: zone %q: built an invalid tzif.File: %w", tz.Name, err)
	}
	return f, nil
}

func mostCommonOffset(ranges []tzdb.TimeRange) int32 {
	counts := make(map[int32]int, len(ranges))
	for _, r := range ranges {
		counts[r.OffsetSeconds]++
	}
	var best int32
	bestCount := -1
	// Ties break on the smaller (more "standard", i.e. less-advanced)
	// offset, matching the convention that standard time is the lower of
	// a standard/DST pair.
	for off, c := range counts {
		if c > bestCount || (c == bestCount && off < best) {
			best, bestCount = off, c
		}
	}
	return best
}

func clampInt32(v int64) int32 {
	switch {
	case v < math.MinInt32:
		return math.MinInt32
	case v > math.MaxInt32:
		return math.MaxInt32
	default:
		return int32(v)
	}
}
