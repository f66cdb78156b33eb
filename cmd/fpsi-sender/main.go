//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

// Command fpsi-sender runs the sender side of one fuzzy PSI session
// (spec §4.7): it contributes its value set X and, on success, learns
// nothing about the intersection.
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
	addr := flag.String("addr", "localhost:8080", "receiver address to dial")
	xFile := flag.String("x", "x.txt", "sender value file")
	delta := flag.Int("delta", 50, "match radius")
	k := flag.Int("k", 32, "value width in bits (32 for IPv4, 128 for IPv6)")
	protocolName := flag.String("protocol", "labeled-he", "PSI back-end: labeled-he or okvs")
	paramsFile := flag.String("params", "", "labeled-HE parameter file (required for -protocol=labeled-he)")
	timeout := flag.Duration("timeout", env.DefaultTimeout, "network dial/receive timeout")
	workers := flag.Int("workers", 0, "worker pool size (default: NumCPU)")
	verbose := flag.Bool("v", false, "print a timing report on success")
	flag.Parse()

	protocol, err := parseProtocol(*protocolName)
	if err != nil {
		log.Printf("%v", err)
		os.Exit(1)
	}

	values, err := valuefile.ReadValues(*xFile)
	if err != nil {
		log.Printf("reading %s: %v", *xFile, err)
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

	conn, err := wire.Dial(*addr, *timeout)
	if err != nil {
		log.Printf("dialing %s: %v", *addr, err)
		os.Exit(3)
	}
	defer conn.Close()
	opts.Conn = conn
	timing.Sample("Connect", nil)

	if err := pipeline.SenderRun(config, values, *delta, *k, protocol, opts); err != nil {
		log.Printf("sender: %v", err)
		os.Exit(fperr.ExitCode(err))
	}
	timing.Sample("Run", []string{report.FileSize(conn.Stats.Sum()).String()})

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
		return psi.ProtocolUnsupported, fperr.Newf(fperr.ParameterInvalid, "fpsi-sender",
			"unknown protocol %q, want labeled-he or okvs", name)
	}
}
