package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"PriceBand/internal/engine"
	"PriceBand/internal/export"
	"PriceBand/internal/store"
)

// Scheduler runs the boundary batch, either on demand or on a cron cadence
// (watch mode recomputes every trading morning).
type Scheduler struct {
	Cron     *cron.Cron
	Engine   *engine.Engine
	Writer   *export.CSVWriter
	Recorder store.Recorder
	Codes    []string
	Window   int
	Ctx      context.Context
}

// NewScheduler creates a Scheduler over the assembled pipeline.
func NewScheduler(ctx context.Context, eng *engine.Engine, w *export.CSVWriter, rec store.Recorder, codes []string, window int) *Scheduler {
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds()),
		Engine:   eng,
		Writer:   w,
		Recorder: rec,
		Codes:    codes,
		Window:   window,
		Ctx:      ctx,
	}
}

// Register wires the daily recompute task.
func (s *Scheduler) Register(dailyCron string) error {
	if _, err := s.Cron.AddFunc(dailyCron, s.dailyTask); err != nil {
		return fmt.Errorf("register daily task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	s.Cron.Stop()
	log.Println("[INFO] scheduler stopped")
}

func (s *Scheduler) dailyTask() {
	log.Println("[INFO] running scheduled boundary batch")
	s.RunNow()
}

// RunNow executes one full batch: compute, export, record. It returns the
// per-security results for the caller to inspect.
func (s *Scheduler) RunNow() []engine.Result {
	results, err := s.Engine.Run(s.Ctx, s.Codes, time.Time{})
	if err != nil {
		log.Printf("[ERROR] batch run: %v", err)
		return nil
	}

	run := store.NewRunRecord(s.Window, len(results))
	if err := s.Recorder.RecordRun(run); err != nil {
		log.Printf("[ERROR] record run: %v", err)
	}

	for i := range results {
		res := &results[i]
		task := &store.TaskRecord{
			RunID:        run.RunID,
			SecurityID:   res.SecurityID,
			Status:       "OK",
			OpenPrice:    res.OpenPrice,
			PrevClose:    res.PrevClose,
			DaysUsed:     res.DaysUsed,
			DaysExcluded: res.DaysExcluded,
		}
		if res.Err != nil {
			task.Status = "FAILED"
			task.Error = res.Err.Error()
		} else {
			for _, b := range res.Boundaries {
				if b.Defined {
					task.SlotCount++
				}
			}
			path, err := s.Writer.Write(res.SecurityID, res.Boundaries)
			if err != nil {
				log.Printf("[ERROR] write output for %s: %v", res.SecurityID, err)
				res.Err = err
				task.Status = "FAILED"
				task.Error = err.Error()
			} else {
				task.OutputPath = path
				log.Printf("[INFO] %s: results saved to %s", res.SecurityID, path)
			}
		}
		if err := s.Recorder.RecordTask(task); err != nil {
			log.Printf("[ERROR] record task %s: %v", res.SecurityID, err)
		}
	}

	fmt.Print(export.Summary(results))
	return results
}
