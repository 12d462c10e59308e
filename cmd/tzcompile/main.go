package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/tzkit/tzdb"
)

var maxYearFlag = flag.Int("maxyear", 0, "ceiling substituted for rule TO \"max\" (0 = default)")

func main() {
	flag.Parse()
	args := flag.Args()
	if len(args) != 1 {
		fmt.Println("Usage: tzcompile <tzdata archive.tar.gz>")
		os.Exit(1)
	}

	archive, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Println("reading archive:", err)
		os.Exit(1)
	}

	db, err := tzdb.Compile(archive, tzdb.Options{MaxYear: *maxYearFlag})
	if err != nil {
		fmt.Println("compiling:", err)
		os.Exit(1)
	}

	fmt.Printf("IANA version %s\n", db.IANAVersion)
	fmt.Printf("  %d zones\n", len(db.Timezones))
	fmt.Printf("  %d countries\n", len(db.Countries))

	var aliasCount, rangeCount int
	for _, tz := range db.Timezones {
		if tz.AliasOf != nil {
			aliasCount++
			continue
		}
		rangeCount += len(tz.Ranges)
	}
	fmt.Printf("  %d aliases\n", aliasCount)
	fmt.Printf("  %d transition ranges across non-alias zones\n", rangeCount)
}
