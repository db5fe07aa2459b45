// Package store provides a SQLite-backed log of daily meter readings that
// can stand in for the configured usage history.
package store

import (
	"database/sql"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/theirongolddev/kburn/internal/model"

	_ "modernc.org/sqlite" // register sqlite driver
)

// Readings is a SQLite file of daily kWh readings keyed by day number.
type Readings struct {
	db *sql.DB
}

// Open opens or creates the readings database at the given path.
func Open(dbPath string) (*Readings, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o750); err != nil {
		return nil, fmt.Errorf("creating readings dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)")
	if err != nil {
		return nil, fmt.Errorf("opening readings db: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Readings{db: db}, nil
}

// Close closes the database.
func (r *Readings) Close() error {
	return r.db.Close()
}

// Record stores a reading, replacing any earlier reading for the same day.
func (r *Readings) Record(s model.UsageSample) error {
	if err := checkReading(s); err != nil {
		return fmt.Errorf("recording reading: %w", err)
	}

	_, err := r.db.Exec(insertReadingSQL, s.Day, s.KWh, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("recording reading: %w", err)
	}
	return nil
}

// RecordAll stores readings in one transaction. Either every reading is
// stored or, on the first invalid reading or write failure, none are.
func (r *Readings) RecordAll(samples []model.UsageSample) error {
	for _, s := range samples {
		if err := checkReading(s); err != nil {
			return fmt.Errorf("recording readings: %w", err)
		}
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("recording readings: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(insertReadingSQL)
	if err != nil {
		return fmt.Errorf("recording readings: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	now := time.Now().UTC().Format(time.RFC3339)
	for _, s := range samples {
		if _, err := stmt.Exec(s.Day, s.KWh, now); err != nil {
			return fmt.Errorf("recording day %d: %w", s.Day, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("recording readings: %w", err)
	}
	return nil
}

const insertReadingSQL = `INSERT OR REPLACE INTO readings (day, kwh, recorded_at) VALUES (?, ?, ?)`

func checkReading(s model.UsageSample) error {
	if s.Day <= 0 {
		return fmt.Errorf("day %d must be positive", s.Day)
	}
	if math.IsNaN(s.KWh) || math.IsInf(s.KWh, 0) || s.KWh < 0 {
		return fmt.Errorf("day %d: %g kWh must be a non-negative number", s.Day, s.KWh)
	}
	return nil
}

// Samples returns every reading in increasing day order.
func (r *Readings) Samples() ([]model.UsageSample, error) {
	rows, err := r.db.Query("SELECT day, kwh FROM readings ORDER BY day")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var samples []model.UsageSample
	for rows.Next() {
		var s model.UsageSample
		if err := rows.Scan(&s.Day, &s.KWh); err != nil {
			return nil, err
		}
		samples = append(samples, s)
	}
	return samples, rows.Err()
}

// Recent returns the last n readings in increasing day order.
func (r *Readings) Recent(n int) ([]model.UsageSample, error) {
	all, err := r.Samples()
	if err != nil {
		return nil, err
	}
	if n >= 0 && len(all) > n {
		all = all[len(all)-n:]
	}
	return all, nil
}

// Delete removes the reading for day. Deleting a missing day is not an error.
func (r *Readings) Delete(day int) error {
	_, err := r.db.Exec("DELETE FROM readings WHERE day = ?", day)
	return err
}

// Count returns the number of stored readings.
func (r *Readings) Count() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM readings").Scan(&count)
	return count, err
}

// LoadSamples opens the database at path, reads every sample and closes it.
func LoadSamples(path string) ([]model.UsageSample, error) {
	r, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = r.Close() }()
	return r.Samples()
}
