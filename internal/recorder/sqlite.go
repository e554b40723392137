package recorder

import (
	"database/sql"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"MissionSentinel/internal/model"

	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists feed history to a SQLite database.
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

	// WAL mode for better concurrent read performance (dashboards read while the bot writes).
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
		`CREATE TABLE IF NOT EXISTS refresh_history (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp     INTEGER NOT NULL,
			kind          TEXT NOT NULL,
			issued_at     INTEGER,
			mission_count INTEGER,
			ok            INTEGER NOT NULL,
			error         TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_refresh_ts ON refresh_history(timestamp)`,

		`CREATE TABLE IF NOT EXISTS daily_deals (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp      INTEGER NOT NULL,
			deal_type      TEXT,
			amount         INTEGER,
			resource       TEXT,
			credits        INTEGER,
			change_percent REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_deals_ts ON daily_deals(timestamp)`,

		`CREATE TABLE IF NOT EXISTS deep_dives (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp INTEGER NOT NULL,
			rotation  INTEGER NOT NULL,
			variant   TEXT,
			code_name TEXT,
			biome     TEXT,
			stages    TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_dives_rotation ON deep_dives(rotation)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordRefresh(evt *RefreshEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ok := 0
	if evt.OK {
		ok = 1
	}
	_, err := r.db.Exec(`INSERT INTO refresh_history
		(timestamp, kind, issued_at, mission_count, ok, error)
		VALUES (?,?,?,?,?,?)`,
		time.Now().Unix(), string(evt.Kind), evt.IssuedAt.Unix(),
		evt.Missions, ok, evt.Error,
	)
	return err
}

func (r *SQLiteRecorder) RecordDailyDeal(deal *model.DailyDeal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO daily_deals
		(timestamp, deal_type, amount, resource, credits, change_percent)
		VALUES (?,?,?,?,?,?)`,
		time.Now().Unix(), string(deal.DealType), deal.Amount,
		deal.Resource, deal.Credits, deal.ChangePercent,
	)
	return err
}

func (r *SQLiteRecorder) RecordDeepDive(rotation time.Time, variant string, dd *model.DeepDive) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Compact stage summary, one "primary/secondary" pair per stage.
	stages := make([]string, 0, len(dd.Stages))
	for _, s := range dd.Stages {
		stages = append(stages, s.Primary+"/"+s.Secondary)
	}

	_, err := r.db.Exec(`INSERT INTO deep_dives
		(timestamp, rotation, variant, code_name, biome, stages)
		VALUES (?,?,?,?,?,?)`,
		time.Now().Unix(), rotation.Unix(), variant,
		dd.CodeName, dd.Biome, strings.Join(stages, "; "),
	)
	return err
}

func (r *SQLiteRecorder) Close() error {
	log.Println("[INFO] closing sqlite recorder")
	return r.db.Close()
}
