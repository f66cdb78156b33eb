//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package report

import (
	"fmt"
	"os"
	"strings"

	"github.com/markkurossi/fuzzypsi/heparams"
	"github.com/markkurossi/tabulate"
)

// PrintParams renders a labeled-HE parameter file (spec §6's Π) as a
// table, for the fpsi-params CLI's -show mode.
func PrintParams(f *heparams.File) {
	tab := tabulate.New(tabulate.UnicodeLight)
	tab.Header("Parameter").SetAlign(tabulate.ML)
	tab.Header("Value").SetAlign(tabulate.ML)

	rows := []struct {
		name  string
		value string
	}{
		{"hash_func_count", fmt.Sprintf("%d", f.TableParams.HashFuncCount)},
		{"table_size", fmt.Sprintf("%d", f.TableParams.TableSize)},
		{"max_items_per_bin", fmt.Sprintf("%d", f.TableParams.MaxItemsPerBin)},
		{"felts_per_item", fmt.Sprintf("%d", f.ItemParams.FeltsPerItem)},
		{"ps_low_degree", fmt.Sprintf("%d", f.QueryParams.PSLowDegree)},
		{"query_powers", intsJoin(f.QueryParams.QueryPowers)},
		{"plain_modulus", fmt.Sprintf("%d", f.SealParams.PlainModulus)},
		{"poly_modulus_degree", fmt.Sprintf("%d", f.SealParams.PolyModulusDegree)},
		{"coeff_modulus_bits", intsJoin(f.SealParams.CoeffModulusBits)},
	}
	for _, r := range rows {
		row := tab.Row()
		row.Column(r.name)
		row.Column(r.value)
	}
	tab.Print(os.Stdout)
}

func intsJoin(vs []int) string {
	strs := make([]string, len(vs))
	for i, v := range vs {
		strs[i] = fmt.Sprintf("%d", v)
	}
	return strings.Join(strs, ",")
}
