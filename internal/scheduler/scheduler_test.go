package scheduler

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"PriceBand/internal/engine"
	"PriceBand/internal/export"
	"PriceBand/internal/model"
	"PriceBand/internal/session"
	"PriceBand/internal/store"
)

type memLoader struct {
	data map[string][]*model.DaySeries
}

func (m *memLoader) Name() string                                 { return "mem" }
func (m *memLoader) Load() (map[string][]*model.DaySeries, error) { return m.data, nil }

type captureRecorder struct {
	runs  []*store.RunRecord
	tasks []*store.TaskRecord
}

func (c *captureRecorder) RecordRun(r *store.RunRecord) error   { c.runs = append(c.runs, r); return nil }
func (c *captureRecorder) RecordTask(t *store.TaskRecord) error { c.tasks = append(c.tasks, t); return nil }
func (c *captureRecorder) Close() error                         { return nil }

type fixedOpen float64

func (f fixedOpen) Resolve(string) (float64, error) { return float64(f), nil }

func seriesFor(code string, closes map[string]float64) []*model.DaySeries {
	day := model.NewDaySeries(code, time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC))
	for ts, c := range closes {
		slot, err := session.ParseSlot(ts)
		if err != nil {
			panic(err)
		}
		day.Bars[slot] = model.MinuteBar{SecurityID: code, Date: day.Date, Slot: slot, Close: c}
	}
	return []*model.DaySeries{day}
}

func TestRunNowWritesAndRecords(t *testing.T) {
	loader := &memLoader{data: map[string][]*model.DaySeries{
		"600000": seriesFor("600000", map[string]float64{
			"09:30:00": 10.00, "09:31:00": 10.20, "15:00:00": 10.50,
		}),
		// One bar only, close at 09:30: succeeds with a 1-day window.
		"600001": seriesFor("600001", map[string]float64{
			"09:30:00": 20.00,
		}),
	}}

	eng := engine.New(loader, fixedOpen(11.00), engine.Options{WindowSize: 1})
	outDir := t.TempDir()
	rec := &captureRecorder{}
	sched := NewScheduler(context.Background(), eng, export.NewCSVWriter(outDir, 2), rec, []string{engine.AllSecurities}, 1)

	results := sched.RunNow()
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	for _, r := range results {
		if r.Err != nil {
			t.Fatalf("%s failed: %v", r.SecurityID, r.Err)
		}
	}

	for _, code := range []string{"600000", "600001"} {
		path := filepath.Join(outDir, "recent_"+code+".csv")
		if _, err := os.Stat(path); err != nil {
			t.Errorf("expected output file %s: %v", path, err)
		}
	}

	if len(rec.runs) != 1 {
		t.Fatalf("expected 1 run record, got %d", len(rec.runs))
	}
	if rec.runs[0].RunID == "" {
		t.Error("run record should carry an id")
	}
	if len(rec.tasks) != 2 {
		t.Fatalf("expected 2 task records, got %d", len(rec.tasks))
	}
	for _, task := range rec.tasks {
		if task.Status != "OK" {
			t.Errorf("%s: expected OK, got %s (%s)", task.SecurityID, task.Status, task.Error)
		}
		if task.RunID != rec.runs[0].RunID {
			t.Errorf("%s: task not linked to run", task.SecurityID)
		}
		if task.OutputPath == "" {
			t.Errorf("%s: expected an output path", task.SecurityID)
		}
	}
}

func TestRunNowRecordsFailures(t *testing.T) {
	loader := &memLoader{data: map[string][]*model.DaySeries{
		"600000": seriesFor("600000", map[string]float64{
			"09:30:00": 10.00, "09:31:00": 10.20, "15:00:00": 10.50,
		}),
	}}

	// 999999 is absent from the source.
	eng := engine.New(loader, fixedOpen(11.00), engine.Options{WindowSize: 1})
	rec := &captureRecorder{}
	sched := NewScheduler(context.Background(), eng, export.NewCSVWriter(t.TempDir(), 2), rec,
		[]string{"600000", "999999"}, 1)

	results := sched.RunNow()
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Err != nil {
		t.Errorf("600000 should succeed, got %v", results[0].Err)
	}
	if results[1].Err == nil {
		t.Error("999999 should fail")
	}

	var failed *store.TaskRecord
	for _, task := range rec.tasks {
		if task.SecurityID == "999999" {
			failed = task
		}
	}
	if failed == nil {
		t.Fatal("expected a task record for 999999")
	}
	if failed.Status != "FAILED" || failed.Error == "" {
		t.Errorf("expected FAILED with an error message, got %+v", failed)
	}
}

func TestRegisterBadCron(t *testing.T) {
	sched := NewScheduler(context.Background(), nil, nil, store.NewNoopRecorder(), nil, 1)
	if err := sched.Register("not a cron spec"); err == nil {
		t.Error("expected error for invalid cron expression")
	}
	if err := sched.Register("0 25 9 * * 1-5"); err != nil {
		t.Errorf("valid spec rejected: %v", err)
	}
}
