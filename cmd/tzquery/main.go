package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/tzkit/tzdb"
)

var (
	archiveFlag = flag.String("archive", "", "path to a tzdata archive.tar.gz")
	zoneFlag    = flag.String("zone", "", "zone name, e.g. Europe/Berlin")
	utcFlag     = flag.Int64("utc", 0, "query the wall-clock reading at this UTC instant (seconds since epoch)")
	wallFlag    = flag.Int64("wall", 0, "query the UTC instant(s) for this wall-clock reading (seconds since epoch, as if UTC)")
)

func main() {
	flag.Parse()
	if *archiveFlag == "" || *zoneFlag == "" {
		fmt.Println("Usage: tzquery -archive <file> -zone <name> (-utc <instant> | -wall <instant>)")
		os.Exit(1)
	}
	if (*utcFlag == 0) == (*wallFlag == 0) {
		fmt.Println("exactly one of -utc or -wall is required")
		os.Exit(1)
	}

	archive, err := os.ReadFile(*archiveFlag)
	if err != nil {
		fmt.Println("reading archive:", err)
		os.Exit(1)
	}

	db, err := tzdb.Compile(archive, tzdb.Options{})
	if err != nil {
		fmt.Println("compiling:", err)
		os.Exit(1)
	}

	tz, err := db.ZoneByName(*zoneFlag)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	if *utcFlag != 0 {
		local, offset, abbrev := tzdb.WallFromUTC(tz, *utcFlag)
		fmt.Printf("%s at UTC %d -> local %d, offset %+d, abbreviation %s\n", tz.Name, *utcFlag, local, offset, abbrev)
		return
	}

	c := tzdb.UTCFromWall(tz, *wallFlag)
	switch c.Status {
	case tzdb.OK:
		fmt.Printf("%s wall %d -> UTC %d\n", tz.Name, *wallFlag, c.Earlier)
	case tzdb.Ambiguous:
		fmt.Printf("%s wall %d -> AMBIGUOUS, earlier %d or later %d\n", tz.Name, *wallFlag, c.Earlier, c.Later)
	case tzdb.Invalid:
		fmt.Printf("%s wall %d -> INVALID, closest valid instant %d\n", tz.Name, *wallFlag, c.ClosestValid)
	}
}
