//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package report

import (
	"fmt"
	"os"

	"github.com/markkurossi/fuzzypsi/dataset"
	"github.com/markkurossi/tabulate"
)

// PrintDataset renders a synthesized dataset's summary, for the
// fpsi-gen CLI's -summary mode.
func PrintDataset(p dataset.Params, r *dataset.Result) {
	tab := tabulate.New(tabulate.UnicodeLight)
	tab.Header("Metric").SetAlign(tabulate.ML)
	tab.Header("Value").SetAlign(tabulate.MR)

	rows := []struct {
		name  string
		value string
	}{
		{"|X| (sender)", fmt.Sprintf("%d", len(r.X))},
		{"|Y| (receiver)", fmt.Sprintf("%d", len(r.Y))},
		{"delta", fmt.Sprintf("%d", p.Delta)},
		{"target matches", fmt.Sprintf("%d", p.T)},
		{"achieved matches", fmt.Sprintf("%d", r.Matched)},
		{"disjoint neighborhoods", fmt.Sprintf("%v", p.Disjoint)},
		{"value width (bits)", fmt.Sprintf("%d", p.K)},
	}
	for _, row := range rows {
		tr := tab.Row()
		tr.Column(row.name)
		tr.Column(row.value)
	}
	if r.Matched < p.T {
		row := tab.Row()
		row.Column("warning").SetFormat(tabulate.FmtBold)
		row.Column(fmt.Sprintf("only reached %d/%d target matches", r.Matched, p.T)).
			SetFormat(tabulate.FmtBold)
	}
	tab.Print(os.Stdout)
}
