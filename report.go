package regionvar

import (
	"fmt"
	"io"
)

// PrintSummary writes the per-region mean counters as a small text table:
// one block per region, one line per breadth category.
func PrintSummary(w io.Writer, store *Store) error {
	rows, err := store.SummarizeByRegion()
	if err != nil {
		return err
	}

	for _, row := range rows {
		fmt.Fprintln(w, row.Region)
		for _, c := range Categories {
			fmt.Fprintf(w, "%s %g\n", c.Label(), row.Mean(c))
		}
	}
	return nil
}
