package export

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"PriceBand/internal/model"
)

// CSVWriter serializes boundary tables, one file per security, named
// recent_<CODE>.csv under Dir. Rounding happens here and only here: lower
// bounds are floored, upper bounds are ceiled, to Precision decimals.
type CSVWriter struct {
	Dir       string
	Precision int
}

// NewCSVWriter creates a writer targeting dir with the given precision.
func NewCSVWriter(dir string, precision int) *CSVWriter {
	if precision < 0 {
		precision = 2
	}
	return &CSVWriter{Dir: dir, Precision: precision}
}

// Write emits the boundary table for one security and returns the written
// path. Undefined boundaries are dropped.
func (w *CSVWriter) Write(securityID string, boundaries []model.Boundary) (string, error) {
	if w.Dir != "" {
		if err := os.MkdirAll(w.Dir, 0755); err != nil {
			return "", fmt.Errorf("create output dir: %w", err)
		}
	}
	path := filepath.Join(w.Dir, fmt.Sprintf("recent_%s.csv", securityID))

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if err := cw.Write([]string{"TimeStamp", "lowerbound", "upperbound"}); err != nil {
		return "", fmt.Errorf("write header: %w", err)
	}
	for _, b := range boundaries {
		if !b.Defined {
			continue
		}
		row := []string{
			b.Slot.String(),
			formatPrice(floorTo(b.Lower, w.Precision), w.Precision),
			formatPrice(ceilTo(b.Upper, w.Precision), w.Precision),
		}
		if err := cw.Write(row); err != nil {
			return "", fmt.Errorf("write row %s: %w", b.Slot, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return "", fmt.Errorf("flush %s: %w", path, err)
	}
	return path, nil
}

// roundEps guards the floor/ceil against binary representation error, so a
// value that is exactly on a cent (like 10.29) is not pushed a cent down or up.
const roundEps = 1e-9

// floorTo floors v at the given number of decimals, the conservative choice
// for lower bounds.
func floorTo(v float64, decimals int) float64 {
	scale := math.Pow(10, float64(decimals))
	return math.Floor(v*scale+roundEps) / scale
}

// ceilTo ceils v at the given number of decimals, the expansive choice for
// upper bounds.
func ceilTo(v float64, decimals int) float64 {
	scale := math.Pow(10, float64(decimals))
	return math.Ceil(v*scale-roundEps) / scale
}

func formatPrice(v float64, decimals int) string {
	return strconv.FormatFloat(v, 'f', decimals, 64)
}
