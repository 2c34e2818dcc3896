package export

import (
	"fmt"
	"strings"

	"PriceBand/internal/engine"
)

// Summary renders a human-readable batch report, one line per security.
func Summary(results []engine.Result) string {
	var b strings.Builder
	ok, failed := 0, 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			fmt.Fprintf(&b, "%-12s FAILED  %v\n", r.SecurityID, r.Err)
			continue
		}
		ok++
		defined := 0
		for _, bd := range r.Boundaries {
			if bd.Defined {
				defined++
			}
		}
		fmt.Fprintf(&b, "%-12s ok      open=%.2f prev_close=%.2f days=%d excluded=%d slots=%d\n",
			r.SecurityID, r.OpenPrice, r.PrevClose, r.DaysUsed, r.DaysExcluded, defined)
	}
	fmt.Fprintf(&b, "total: %d ok, %d failed\n", ok, failed)
	return b.String()
}
