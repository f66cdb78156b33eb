//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

// Command fpsi-receiver runs the receiver side of one fuzzy PSI
// session (spec §4.7): it contributes its value set Y and, on
// success, learns the subset of Y matched by some sender value within
// delta.
package main

import (
	"flag"
	"log"
	"os"

	"github.com/markkurossi/fuzzypsi/env"
	"github.com/markkurossi/fuzzypsi/fperr"
	"github.com/markkurossi/fuzzypsi/heparams"
	"github.com/markkurossi/fuzzypsi/ot"
	"github.com/markkurossi/fuzzypsi/pipeline"
	"github.com/markkurossi/fuzzypsi/psi"
	"github.com/markkurossi/fuzzypsi/report"
	"github.com/markkurossi/fuzzypsi/valuefile"
	"github.com/markkurossi/fuzzypsi/wire"
)

func main() {
	addr := flag.String("addr", ":8080", "address to listen on")
	yFile := flag.String("y", "y.txt", "receiver value file")
	resultFile := flag.String("out", "result.txt", "result file to write")
	delta := flag.Int("delta", 50, "match radius")
	k := flag.Int("k", 32, "value width in bits (32 for IPv4, 128 for IPv6)")
	protocolName := flag.String("protocol", "labeled-he", "PSI back-end: labeled-he or okvs")
	paramsFile := flag.String("params", "", "labeled-HE parameter file (required for -protocol=labeled-he)")
	timeout := flag.Duration("timeout", env.DefaultTimeout, "network receive timeout")
	workers := flag.Int("workers", 0, "worker pool size (default: NumCPU)")
	verbose := flag.Bool("v", false, "print a timing report on success")
	flag.Parse()

	protocol, err := parseProtocol(*protocolName)
	if err != nil {
		log.Printf("%v", err)
		os.Exit(1)
	}

	values, err := valuefile.ReadValues(*yFile)
	if err != nil {
		log.Printf("reading %s: %v", *yFile, err)
		os.Exit(2)
	}

	config := &env.Config{Workers: *workers, Timeout: *timeout}

	opts := psi.Options{Config: config}
	if protocol == psi.ProtocolLabeledHE {
		if *paramsFile == "" {
			log.Printf("-params is required for -protocol=labeled-he")
			os.Exit(1)
		}
		data, err := os.ReadFile(*paramsFile)
		if err != nil {
			log.Printf("reading %s: %v", *paramsFile, err)
			os.Exit(2)
		}
		params, err := heparams.Unmarshal(data)
		if err != nil {
			log.Printf("parsing %s: %v", *paramsFile, err)
			os.Exit(fperr.ExitCode(err))
		}
		opts.HEParams = params
	} else {
		opts.BaseOT = ot.NewCO()
	}

	timing := report.NewTiming()

	log.Printf("listening on %s", *addr)
	conn, err := wire.Listen(*addr)
	if err != nil {
		log.Printf("listening on %s: %v", *addr, err)
		os.Exit(3)
	}
	defer conn.Close()
	opts.Conn = conn
	timing.Sample("Connect", nil)

	matched, err := pipeline.ReceiverRun(config, values, *delta, *k, protocol, opts)
	if err != nil {
		log.Printf("receiver: %v", err)
		os.Exit(fperr.ExitCode(err))
	}
	timing.Sample("Run", []string{report.FileSize(conn.Stats.Sum()).String()})

	if err := valuefile.WriteResult(*resultFile, matched); err != nil {
		log.Printf("writing %s: %v", *resultFile, err)
		os.Exit(2)
	}
	log.Printf("%d of %d receiver values matched, written to %s", len(matched), len(values), *resultFile)

	if *verbose {
		timing.Print(conn.Stats)
	}
}

func parseProtocol(name string) (psi.Protocol, error) {
	switch name {
	case "labeled-he":
		return psi.ProtocolLabeledHE, nil
	case "okvs":
		return psi.ProtocolOKVS, nil
	default:
		return psi.ProtocolUnsupported, fperr.Newf(fperr.ParameterInvalid, "fpsi-receiver",
			"unknown protocol %q, want labeled-he or okvs", name)
	}
}
