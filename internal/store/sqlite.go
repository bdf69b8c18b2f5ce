package store

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"RateCast/internal/model"
)

const dateLayout = "2006-01-02"

// SQLiteStore persists rate history and run output to a SQLite database.
type SQLiteStore struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteStore opens (or creates) the SQLite database and runs migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode for better concurrent read performance (dashboard reads while
	// the pipeline writes).
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS exchange_rates (
			currency_code TEXT NOT NULL,
			date          TEXT NOT NULL,
			rate          REAL NOT NULL,
			PRIMARY KEY (currency_code, date)
		)`,
		`CREATE TABLE IF NOT EXISTS forecasts (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id         TEXT NOT NULL,
			currency_code  TEXT NOT NULL,
			run_date       TEXT NOT NULL,
			target_date    TEXT NOT NULL,
			predicted_rate REAL NOT NULL,
			generated_at   INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_forecasts_run ON forecasts(run_date)`,

		`CREATE TABLE IF NOT EXISTS recommendations (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id         TEXT NOT NULL,
			currency_code  TEXT NOT NULL,
			run_date       TEXT NOT NULL,
			risk_indicator REAL NOT NULL,
			rank           INTEGER NOT NULL,
			status         TEXT NOT NULL,
			reason         TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE INDEX IF NOT EXISTS idx_recommendations_run ON recommendations(run_date)`,

		`CREATE TABLE IF NOT EXISTS runs (
			run_date     TEXT PRIMARY KEY,
			run_id       TEXT NOT NULL,
			completed_at INTEGER NOT NULL
		)`,
	}

	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:40], err)
		}
	}
	return nil
}

func (s *SQLiteStore) SaveRates(code string, pts []model.RatePoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT OR IGNORE INTO exchange_rates (currency_code, date, rate) VALUES (?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, p := range pts {
		// Gap-filled points belong to one run's series, not to history.
		if p.Filled {
			continue
		}
		if _, err := stmt.Exec(code, p.Date.Format(dateLayout), p.Rate); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) LoadRates(code string, upTo time.Time) ([]model.RatePoint, error) {
	rows, err := s.db.Query(
		`SELECT date, rate FROM exchange_rates WHERE currency_code = ? AND date <= ? ORDER BY date`,
		code, upTo.Format(dateLayout))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pts []model.RatePoint
	for rows.Next() {
		var d string
		var r float64
		if err := rows.Scan(&d, &r); err != nil {
			return nil, err
		}
		date, err := time.Parse(dateLayout, d)
		if err != nil {
			return nil, err
		}
		pts = append(pts, model.RatePoint{Date: date, Rate: r})
	}
	return pts, rows.Err()
}

func (s *SQLiteStore) LatestRateDate(code string) (time.Time, bool, error) {
	var d sql.NullString
	err := s.db.QueryRow(
		`SELECT MAX(date) FROM exchange_rates WHERE currency_code = ?`, code).Scan(&d)
	if err != nil {
		return time.Time{}, false, err
	}
	if !d.Valid {
		return time.Time{}, false, nil
	}
	date, err := time.Parse(dateLayout, d.String)
	if err != nil {
		return time.Time{}, false, err
	}
	return date, true, nil
}

func (s *SQLiteStore) Publication(runDate time.Time) (*Publication, error) {
	day := runDate.Format(dateLayout)

	var runID string
	var completed int64
	err := s.db.QueryRow(`SELECT run_id, completed_at FROM runs WHERE run_date = ?`, day).
		Scan(&runID, &completed)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	pub := &Publication{
		RunID:       runID,
		RunDate:     runDate,
		CompletedAt: time.Unix(completed, 0),
	}

	fr, err := s.db.Query(
		`SELECT currency_code, target_date, predicted_rate, generated_at FROM forecasts
		 WHERE run_date = ? ORDER BY currency_code, target_date`, day)
	if err != nil {
		return nil, err
	}
	defer fr.Close()
	for fr.Next() {
		var code, target string
		var pred float64
		var generated int64
		if err := fr.Scan(&code, &target, &pred, &generated); err != nil {
			return nil, err
		}
		td, err := time.Parse(dateLayout, target)
		if err != nil {
			return nil, err
		}
		pub.Forecasts = append(pub.Forecasts, model.ForecastPoint{
			Code: code, TargetDate: td, Predicted: pred, GeneratedAt: time.Unix(generated, 0),
		})
	}
	if err := fr.Err(); err != nil {
		return nil, err
	}

	// Status precedence mirrors the table as published: ranked rows by rank,
	// then unscored, then excluded rows by currency code.
	rr, err := s.db.Query(
		`SELECT currency_code, risk_indicator, rank, status, reason FROM recommendations
		 WHERE run_date = ?
		 ORDER BY CASE status WHEN 'ranked' THEN 0 WHEN 'unscored' THEN 1 ELSE 2 END,
		          rank, currency_code`, day)
	if err != nil {
		return nil, err
	}
	defer rr.Close()
	for rr.Next() {
		rec := model.Recommendation{RunDate: runDate}
		if err := rr.Scan(&rec.Code, &rec.Risk, &rec.Rank, &rec.Status, &rec.Reason); err != nil {
			return nil, err
		}
		pub.Recommendations = append(pub.Recommendations, rec)
	}
	return pub, rr.Err()
}

func (s *SQLiteStore) Publish(pub *Publication) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	day := pub.RunDate.Format(dateLayout)

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// The runs primary key rejects a second publication for the same day.
	if _, err := tx.Exec(`INSERT INTO runs (run_date, run_id, completed_at) VALUES (?,?,?)`,
		day, pub.RunID, pub.CompletedAt.Unix()); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for _, f := range pub.Forecasts {
		if _, err := tx.Exec(
			`INSERT INTO forecasts (run_id, currency_code, run_date, target_date, predicted_rate, generated_at)
			 VALUES (?,?,?,?,?,?)`,
			pub.RunID, f.Code, day, f.TargetDate.Format(dateLayout), f.Predicted, f.GeneratedAt.Unix()); err != nil {
			return fmt.Errorf("insert forecast: %w", err)
		}
	}
	for _, r := range pub.Recommendations {
		if _, err := tx.Exec(
			`INSERT INTO recommendations (run_id, currency_code, run_date, risk_indicator, rank, status, reason)
			 VALUES (?,?,?,?,?,?,?)`,
			pub.RunID, r.Code, day, r.Risk, r.Rank, r.Status, r.Reason); err != nil {
			return fmt.Errorf("insert recommendation: %w", err)
		}
	}

	return tx.Commit()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
