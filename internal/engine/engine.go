package engine

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"PriceBand/internal/bounds"
	"PriceBand/internal/history"
	"PriceBand/internal/model"
	"PriceBand/internal/session"
	"PriceBand/internal/source"
	"PriceBand/internal/volatility"
)

// AllSecurities expands to every security code present in the source.
const AllSecurities = "ALL"

// Options carries the knobs the boundary pipeline honors. Zero values are
// filled in by Engine.New from the defaults.
type Options struct {
	Session    session.Session
	WindowSize int
	AllowShort bool
	Divisor    volatility.DivisorPolicy
	NoData     bounds.NoDataPolicy
	Workers    int
}

// Result is the outcome of one security's task: either its boundary table or
// the error that terminated it. Failures never abort sibling tasks.
type Result struct {
	SecurityID   string
	OpenPrice    float64
	PrevClose    float64
	DaysUsed     int
	DaysExcluded int
	Boundaries   []model.Boundary
	Err          error
}

// Engine runs the boundary computation over a batch of securities.
type Engine struct {
	loader source.Loader
	opens  source.OpenPrices
	opts   Options
}

// New creates an Engine. Missing options fall back to defaults: the A-share
// session, a 14-day window, divide-by-available, omit-on-no-data, 4 workers.
func New(loader source.Loader, opens source.OpenPrices, opts Options) *Engine {
	if len(opts.Session.Ranges) == 0 {
		opts.Session = session.Default()
	}
	if opts.WindowSize <= 0 {
		opts.WindowSize = 14
	}
	if !opts.Divisor.Valid() {
		opts.Divisor = volatility.DivideByAvailable
	}
	if !opts.NoData.Valid() {
		opts.NoData = bounds.NoDataOmit
	}
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	return &Engine{loader: loader, opens: opens, opts: opts}
}

// Run executes the pipeline for the requested codes (or AllSecurities) as of
// target. A zero target means "after all available data": the most recent day
// in the source supplies the previous close. Results keep the order of the
// requested codes (sorted when expanded from AllSecurities); each task's
// failure is carried in its Result.
func (e *Engine) Run(ctx context.Context, codes []string, target time.Time) ([]Result, error) {
	series, err := e.loader.Load()
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}

	codes = expandCodes(codes, series)
	results := make([]Result, len(codes))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.opts.Workers)
	for i, code := range codes {
		i, code := i, code
		g.Go(func() error {
			select {
			case <-ctx.Done():
				results[i] = Result{SecurityID: code, Err: ctx.Err()}
				return nil
			default:
			}
			results[i] = e.runTask(code, series[code], target)
			return nil
		})
	}
	_ = g.Wait() // tasks never return errors, failures live in their Result
	return results, nil
}

// runTask runs one security through window selection, movement computation,
// aggregation, and boundary generation.
func (e *Engine) runTask(code string, days []*model.DaySeries, target time.Time) Result {
	res := Result{SecurityID: code}
	if len(days) == 0 {
		res.Err = fmt.Errorf("%w: %s", source.ErrUnknownSecurity, code)
		return res
	}

	if target.IsZero() {
		target = days[len(days)-1].Date.AddDate(0, 0, 1)
	}

	window, err := history.Select(days, target, e.opts.WindowSize, e.opts.AllowShort)
	if err != nil {
		res.Err = err
		return res
	}

	moves := make([]volatility.DayMovement, 0, len(window))
	for _, day := range window {
		m, ok := volatility.ComputeDay(day, e.opts.Session)
		if !ok {
			log.Printf("[WARN] %s: day %s excluded, no usable reference price",
				code, day.Date.Format("2006-01-02"))
			res.DaysExcluded++
			continue
		}
		moves = append(moves, m)
	}
	res.DaysUsed = len(moves)
	if res.DaysUsed == 0 {
		res.Err = fmt.Errorf("%w: every day in the window lacked a reference price for %s",
			history.ErrInsufficientHistory, code)
		return res
	}

	res.OpenPrice, err = e.opens.Resolve(code)
	if err != nil {
		res.Err = fmt.Errorf("resolve opening price for %s: %w", code, err)
		return res
	}

	res.PrevClose = e.prevClose(code, window, res.OpenPrice)

	profile := volatility.Aggregate(moves, e.opts.WindowSize, e.opts.Divisor)
	res.Boundaries = bounds.Generate(profile, e.opts.Session, res.OpenPrice, res.PrevClose, e.opts.NoData)
	return res
}

// prevClose is the close at the last in-session slot of the most recent
// selected day, falling back to the opening price when absent.
func (e *Engine) prevClose(code string, window []*model.DaySeries, openPrice float64) float64 {
	latest := window[0] // window is in descending date order
	if bar, ok := latest.LastInSession(e.opts.Session); ok && bar.Close > 0 {
		return bar.Close
	}
	log.Printf("[WARN] %s: no close on %s, falling back to opening price",
		code, latest.Date.Format("2006-01-02"))
	return openPrice
}

func expandCodes(codes []string, series map[string][]*model.DaySeries) []string {
	expand := len(codes) == 0
	for _, c := range codes {
		if c == AllSecurities {
			expand = true
			break
		}
	}
	if !expand {
		return codes
	}
	all := make([]string, 0, len(series))
	for code := range series {
		all = append(all, code)
	}
	sort.Strings(all)
	return all
}
