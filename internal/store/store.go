package store

import (
	"time"

	"github.com/google/uuid"
)

// RunRecord describes one batch execution.
type RunRecord struct {
	RunID      string
	StartedAt  time.Time
	WindowSize int
	TaskCount  int
}

// NewRunRecord allocates a run record with a fresh id.
func NewRunRecord(windowSize, taskCount int) *RunRecord {
	return &RunRecord{
		RunID:      uuid.NewString(),
		StartedAt:  time.Now(),
		WindowSize: windowSize,
		TaskCount:  taskCount,
	}
}

// TaskRecord describes one security's outcome within a run.
type TaskRecord struct {
	RunID        string
	SecurityID   string
	Status       string // "OK" or "FAILED"
	Error        string
	OpenPrice    float64
	PrevClose    float64
	DaysUsed     int
	DaysExcluded int
	SlotCount    int
	OutputPath   string
}

// Recorder persists run history for later inspection.
type Recorder interface {
	RecordRun(run *RunRecord) error
	RecordTask(task *TaskRecord) error
	Close() error
}
