package source

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// LoadOpenTable reads a security-to-opening-price lookup table from a CSV
// file with columns SecurityID,OpenPrice (header optional).
func LoadOpenTable(path string) (TableOpen, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open price table: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	table := make(TableOpen)
	line := 0
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("price table row %d: %w", line+1, err)
		}
		line++
		if len(rec) < 2 {
			return nil, fmt.Errorf("price table row %d: need 2 columns, got %d", line, len(rec))
		}
		code := strings.TrimSpace(rec[0])
		raw := strings.TrimSpace(rec[1])

		// Tolerate a header row.
		if line == 1 {
			if _, err := strconv.ParseFloat(raw, 64); err != nil {
				continue
			}
		}
		price, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("price table row %d: bad price %q: %w", line, raw, err)
		}
		table[code] = price
	}
	if len(table) == 0 {
		return nil, fmt.Errorf("price table %s holds no entries", path)
	}
	return table, nil
}
