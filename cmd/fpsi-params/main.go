//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

// Command fpsi-params selects and validates a labeled-HE parameter
// file (spec §4.5.1, §6).
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/markkurossi/fuzzypsi/fperr"
	"github.com/markkurossi/fuzzypsi/heparams"
	"github.com/markkurossi/fuzzypsi/report"
)

func main() {
	senderItems := flag.Int("sender-items", 0, "sender set size to select parameters for")
	receiverItems := flag.Int("receiver-items", 0, "receiver set size to select parameters for")
	out := flag.String("out", "", "parameter file to write (default: print to stdout)")
	show := flag.String("show", "", "print an existing parameter file as a table instead of selecting one")
	flag.Parse()

	if *show != "" {
		data, err := os.ReadFile(*show)
		if err != nil {
			log.Printf("reading %s: %v", *show, err)
			os.Exit(2)
		}
		f, err := heparams.Unmarshal(data)
		if err != nil {
			log.Printf("parsing %s: %v", *show, err)
			os.Exit(fperr.ExitCode(err))
		}
		report.PrintParams(f)
		return
	}

	if *senderItems <= 0 {
		fmt.Fprintln(os.Stderr, "fpsi-params: -sender-items is required unless -show is given")
		os.Exit(1)
	}
	f, err := heparams.Select(*senderItems, *receiverItems)
	if err != nil {
		log.Printf("selecting parameters: %v", err)
		os.Exit(fperr.ExitCode(err))
	}

	data, err := f.Marshal()
	if err != nil {
		log.Printf("marshaling parameters: %v", err)
		os.Exit(fperr.ExitCode(err))
	}

	if *out == "" {
		os.Stdout.Write(data)
		fmt.Println()
		return
	}
	if err := os.WriteFile(*out, data, 0o644); err != nil {
		log.Printf("writing %s: %v", *out, err)
		os.Exit(2)
	}
}
