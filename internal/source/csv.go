package source

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"PriceBand/internal/model"
	"PriceBand/internal/session"
)

// CSVLoader reads minute bars from CSV files. Path may be a single file or a
// directory of files, one file per security (the security id falls back to
// the file stem when the data carries no code column).
type CSVLoader struct {
	Path string
}

// NewCSVLoader creates a loader rooted at path.
func NewCSVLoader(path string) *CSVLoader {
	return &CSVLoader{Path: path}
}

func (l *CSVLoader) Name() string { return "csv" }

// Load reads all files under the path and groups bars into per-security,
// per-date day series, days ascending.
func (l *CSVLoader) Load() (map[string][]*model.DaySeries, error) {
	info, err := os.Stat(l.Path)
	if err != nil {
		return nil, fmt.Errorf("stat input: %w", err)
	}

	var files []string
	if info.IsDir() {
		entries, err := os.ReadDir(l.Path)
		if err != nil {
			return nil, fmt.Errorf("read input dir: %w", err)
		}
		for _, e := range entries {
			if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".csv") {
				continue
			}
			files = append(files, filepath.Join(l.Path, e.Name()))
		}
	} else {
		files = []string{l.Path}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: no csv files under %s", ErrNoTradingData, l.Path)
	}

	byDay := make(map[string]map[time.Time]*model.DaySeries)
	for _, f := range files {
		if err := l.loadFile(f, byDay); err != nil {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}
	if len(byDay) == 0 {
		return nil, fmt.Errorf("%w: no rows in %s", ErrNoTradingData, l.Path)
	}

	out := make(map[string][]*model.DaySeries, len(byDay))
	for code, days := range byDay {
		series := make([]*model.DaySeries, 0, len(days))
		for _, d := range days {
			series = append(series, d)
		}
		sort.Slice(series, func(i, j int) bool { return series[i].Date.Before(series[j].Date) })
		out[code] = series
	}
	return out, nil
}

// columns maps the header names we accept to field positions.
type columns struct {
	security, date, timestamp int
	open, high, low, close    int
	volume, turnover          int
}

func resolveColumns(header []string) (columns, error) {
	idx := func(names ...string) int {
		for i, h := range header {
			h = strings.ToLower(strings.TrimSpace(h))
			for _, n := range names {
				if h == n {
					return i
				}
			}
		}
		return -1
	}
	c := columns{
		security:  idx("securityid", "stockcode", "code", "symbol"),
		date:      idx("date"),
		timestamp: idx("timestamp", "time"),
		open:      idx("openprice", "open"),
		high:      idx("highprice", "high"),
		low:       idx("lowprice", "low"),
		close:     idx("closeprice", "close"),
		volume:    idx("volume", "vol"),
		turnover:  idx("turnover", "value", "amount"),
	}
	if c.date < 0 || c.timestamp < 0 || c.close < 0 {
		return c, fmt.Errorf("header missing required columns (need Date, TimeStamp, ClosePrice): %v", header)
	}
	return c, nil
}

func (l *CSVLoader) loadFile(path string, byDay map[string]map[time.Time]*model.DaySeries) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return fmt.Errorf("read header: %w", err)
	}
	cols, err := resolveColumns(header)
	if err != nil {
		return err
	}

	// Security id for files without a code column.
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	line := 1
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("read row %d: %w", line+1, err)
		}
		line++

		bar, code, err := parseRow(rec, cols, stem)
		if err != nil {
			log.Printf("[WARN] %s row %d skipped: %v", filepath.Base(path), line, err)
			continue
		}

		days, ok := byDay[code]
		if !ok {
			days = make(map[time.Time]*model.DaySeries)
			byDay[code] = days
		}
		day, ok := days[bar.Date]
		if !ok {
			day = model.NewDaySeries(code, bar.Date)
			days[bar.Date] = day
		}
		if _, dup := day.Bars[bar.Slot]; dup {
			return fmt.Errorf("row %d: duplicate bar for %s %s %s",
				line, code, bar.Date.Format("2006-01-02"), bar.Slot)
		}
		day.Bars[bar.Slot] = bar
	}
	return nil
}

func parseRow(rec []string, cols columns, stem string) (model.MinuteBar, string, error) {
	get := func(i int) string {
		if i < 0 || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	code := get(cols.security)
	if code == "" {
		code = stem
	}

	date, err := time.Parse("2006-01-02", get(cols.date))
	if err != nil {
		return model.MinuteBar{}, "", fmt.Errorf("bad date %q: %w", get(cols.date), err)
	}
	slot, err := session.ParseSlot(get(cols.timestamp))
	if err != nil {
		return model.MinuteBar{}, "", err
	}

	num := func(i int) (float64, error) {
		s := get(i)
		if s == "" {
			return 0, nil
		}
		return strconv.ParseFloat(s, 64)
	}
	bar := model.MinuteBar{SecurityID: code, Date: date, Slot: slot}
	if bar.Open, err = num(cols.open); err != nil {
		return model.MinuteBar{}, "", fmt.Errorf("bad open: %w", err)
	}
	if bar.High, err = num(cols.high); err != nil {
		return model.MinuteBar{}, "", fmt.Errorf("bad high: %w", err)
	}
	if bar.Low, err = num(cols.low); err != nil {
		return model.MinuteBar{}, "", fmt.Errorf("bad low: %w", err)
	}
	if bar.Close, err = num(cols.close); err != nil {
		return model.MinuteBar{}, "", fmt.Errorf("bad close: %w", err)
	}
	if bar.Volume, err = num(cols.volume); err != nil {
		return model.MinuteBar{}, "", fmt.Errorf("bad volume: %w", err)
	}
	if bar.Turnover, err = num(cols.turnover); err != nil {
		return model.MinuteBar{}, "", fmt.Errorf("bad turnover: %w", err)
	}
	return bar, code, nil
}
