package report

import (
	"fmt"
	"io"
	"math/big"
	"os"
	"slices"

	"github.com/schollz/progressbar/v3"

	"vesting-audit/vesting"
)

// Options control the fold behind a report.
type Options struct {
	Workers      int
	ShowProgress bool
}

// Build folds entries into a report. A single worker folds sequentially and
// can draw a progress bar on stderr; more workers fold chunks in parallel
// without one. Both paths produce the same report for the same input.
func Build(entries []vesting.Entry, referenceBlock *big.Int, opts Options) (*vesting.Report, error) {
	if opts.Workers > 1 {
		return vesting.AggregateParallel(entries, referenceBlock, opts.Workers)
	}

	agg := vesting.NewAccumulator(referenceBlock)
	var pbar *progressbar.ProgressBar
	if opts.ShowProgress {
		pbar = progressbar.NewOptions(len(entries),
			progressbar.OptionSetDescription("auditing accounts"),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionFullWidth(),
			progressbar.OptionShowCount(),
			progressbar.OptionShowIts())
	}
	for _, entry := range entries {
		if err := agg.Add(entry); err != nil {
			return nil, err
		}
		if pbar != nil {
			pbar.Add(1)
		}
	}
	if pbar != nil {
		pbar.Finish()
		fmt.Fprintln(os.Stderr)
	}
	return agg.Report(), nil
}

// Render writes the report as fixed-width text. Fully released accounts are
// listed in sorted order; partially locked rows keep the report's own order.
// maxRows caps each bucket, zero means unlimited.
func Render(w io.Writer, rep *vesting.Report, maxRows int) {
	fmt.Fprintf(w, "Vesting status at finalized block %s\n", rep.ReferenceBlock.String())
	fmt.Fprintf(w, "Accounts audited: %d (%d schedules)\n", rep.Accounts, rep.Schedules)
	fmt.Fprintln(w)

	released := rep.FullyReleased.ToSlice()
	slices.Sort(released)
	fmt.Fprintf(w, "Fully released accounts: %d\n", len(released))
	for i, account := range released {
		if maxRows > 0 && i == maxRows {
			fmt.Fprintf(w, "  ... and %d more\n", len(released)-maxRows)
			break
		}
		fmt.Fprintf(w, "  %s\n", account)
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Accounts with funds still locked: %d\n", len(rep.PartiallyLocked))
	if len(rep.PartiallyLocked) > 0 {
		width := len("ACCOUNT")
		for _, row := range rep.PartiallyLocked {
			if len(row.Account) > width {
				width = len(row.Account)
			}
		}
		fmt.Fprintf(w, "  %-*s  %s\n", width, "ACCOUNT", "STILL LOCKED")
		for i, row := range rep.PartiallyLocked {
			if maxRows > 0 && i == maxRows {
				fmt.Fprintf(w, "  ... and %d more\n", len(rep.PartiallyLocked)-maxRows)
				break
			}
			fmt.Fprintf(w, "  %-*s  %s\n", width, row.Account, vesting.DisplayUnits(row.StillLocked))
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Total released:     %s\n", vesting.DisplayUnits(rep.TotalReleased))
	fmt.Fprintf(w, "Total still locked: %s\n", vesting.DisplayUnits(rep.TotalStillLocked))
}
