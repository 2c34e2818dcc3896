package store

import (
	"database/sql"
	"fmt"
	"log"
	"sync"

	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists run history to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			run_id      TEXT PRIMARY KEY,
			started_at  INTEGER NOT NULL,
			window_size INTEGER,
			task_count  INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at)`,

		`CREATE TABLE IF NOT EXISTS task_results (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id        TEXT NOT NULL,
			security_id   TEXT NOT NULL,
			status        TEXT,
			error         TEXT,
			open_price    REAL,
			prev_close    REAL,
			days_used     INTEGER,
			days_excluded INTEGER,
			slot_count    INTEGER,
			output_path   TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_task_run ON task_results(run_id)`,
		`CREATE INDEX IF NOT EXISTS idx_task_security ON task_results(security_id)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordRun(run *RunRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO runs (run_id, started_at, window_size, task_count)
		VALUES (?,?,?,?)`,
		run.RunID, run.StartedAt.Unix(), run.WindowSize, run.TaskCount,
	)
	return err
}

func (r *SQLiteRecorder) RecordTask(task *TaskRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO task_results
		(run_id, security_id, status, error, open_price, prev_close,
		 days_used, days_excluded, slot_count, output_path)
		VALUES (?,?,?,?,?,?,?,?,?,?)`,
		task.RunID, task.SecurityID, task.Status, task.Error,
		task.OpenPrice, task.PrevClose,
		task.DaysUsed, task.DaysExcluded, task.SlotCount, task.OutputPath,
	)
	return err
}

func (r *SQLiteRecorder) Close() error {
	log.Println("[INFO] closing sqlite recorder")
	return r.db.Close()
}
