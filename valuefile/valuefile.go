//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

// Package valuefile implements the plain-text value and result file
// formats of spec §6: line-oriented, one record per line, `#`-prefixed
// lines ignored when reading values. No prefix-map file format is
// implemented.
package valuefile

import (
	"bufio"
	"io"
	"math/big"
	"os"
	"strconv"
	"strings"

	"github.com/markkurossi/fuzzypsi/fperr"
)

// ReadValues reads a value source file: one decimal id per line,
// blank lines and `#`-prefixed lines ignored.
func ReadValues(path string) ([]*big.Int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var values []*big.Int
	r := bufio.NewReader(f)
	lineno := 0
	for {
		line, err := r.ReadString('\n')
		lineno++
		trimmed := strings.TrimSpace(line)
		if trimmed != "" && !strings.HasPrefix(trimmed, "#") {
			v, ok := new(big.Int).SetString(trimmed, 10)
			if !ok {
				return nil, fperr.Newf(fperr.InvalidInput, "valuefile.ReadValues",
					"%s:%d: invalid decimal value %q", path, lineno, trimmed)
			}
			values = append(values, v)
		}
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, err
		}
	}
	return values, nil
}

// WriteValues writes values as a value source file, one decimal id
// per line.
func WriteValues(path string, values []*big.Int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, v := range values {
		if _, err := w.WriteString(v.String()); err != nil {
			return err
		}
		if err := w.WriteByte('\n'); err != nil {
			return err
		}
	}
	return w.Flush()
}

// WriteResult writes a result file: the receiver ids found to be in
// the intersection, one per line, 1-based index prefixed.
func WriteResult(path string, values []*big.Int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for i, v := range values {
		if _, err := w.WriteString(strconv.Itoa(i + 1)); err != nil {
			return err
		}
		if err := w.WriteByte(' '); err != nil {
			return err
		}
		if _, err := w.WriteString(v.String()); err != nil {
			return err
		}
		if err := w.WriteByte('\n'); err != nil {
			return err
		}
	}
	return w.Flush()
}
