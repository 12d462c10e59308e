package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/google/go-cmp/cmp"
	"github.com/tzkit/tzdb"
)

func main() {
	if err := run(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func run() error {
	flag.Parse()
	args := flag.Args()
	if len(args) != 2 {
		return fmt.Errorf("Usage: tzdiff <tzdata archive A.tar.gz> <tzdata archive B.tar.gz>")
	}

	af, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	bf, err := os.ReadFile(args[1])
	if err != nil {
		return err
	}

	adb, err := tzdb.Compile(af, tzdb.Options{})
	if err != nil {
		return fmt.Errorf("compiling %s: %w", args[0], err)
	}
	bdb, err := tzdb.Compile(bf, tzdb.Options{})
	if err != nil {
		return fmt.Errorf("compiling %s: %w", args[1], err)
	}

	if diff := cmp.Diff(adb, bdb); diff != "" {
		fmt.Println("archives are different: -A +B")
		fmt.Println(diff)
	} else {
		fmt.Println("archives produce identical compiled databases")
	}

	return nil
}
