//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

// Command fpsi-gen synthesizes a matched pair of sender/receiver value
// files (spec §4.4) for exercising the fuzzy PSI pipeline end to end.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/markkurossi/fuzzypsi/dataset"
	"github.com/markkurossi/fuzzypsi/env"
	"github.com/markkurossi/fuzzypsi/fperr"
	"github.com/markkurossi/fuzzypsi/report"
	"github.com/markkurossi/fuzzypsi/valuefile"
)

func main() {
	nx := flag.Int("nx", 1000, "sender set size")
	ny := flag.Int("ny", 1000, "receiver set size")
	delta := flag.Int("delta", 50, "match radius")
	target := flag.Int("t", 100, "target number of receiver values with a matching sender value")
	k := flag.Int("k", 32, "value width in bits (32 for IPv4, 128 for IPv6)")
	disjoint := flag.Bool("disjoint", false, "require pairwise-disjoint receiver neighborhoods")
	xOut := flag.String("x", "x.txt", "sender value file to write")
	yOut := flag.String("y", "y.txt", "receiver value file to write")
	summary := flag.Bool("summary", false, "print a synthesis summary table")
	flag.Parse()

	config := &env.Config{}
	params := dataset.Params{
		NX:       *nx,
		NY:       *ny,
		Delta:    *delta,
		T:        *target,
		Disjoint: *disjoint,
		K:        *k,
	}

	result, err := dataset.Synthesize(config, params)
	if err != nil {
		if _, ok := fperr.KindOf(err); ok {
			log.Printf("synthesis failed: %v", err)
			os.Exit(fperr.ExitCode(err))
		}
		log.Printf("synthesis failed: %v", err)
		os.Exit(1)
	}

	if err := valuefile.WriteValues(*xOut, result.X); err != nil {
		log.Printf("writing %s: %v", *xOut, err)
		os.Exit(2)
	}
	if err := valuefile.WriteValues(*yOut, result.Y); err != nil {
		log.Printf("writing %s: %v", *yOut, err)
		os.Exit(2)
	}

	if *summary {
		report.PrintDataset(params, result)
	} else {
		fmt.Printf("wrote %d sender values to %s, %d receiver values to %s (%d/%d target matches)\n",
			len(result.X), *xOut, len(result.Y), *yOut, result.Matched, params.T)
	}
}
