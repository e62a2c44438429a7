package simulation

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"github.com/vmihailenco/msgpack/v5"
)

// ResultDB stores sweep runs: one row per run, its swept values, and its reporter summary
type ResultDB struct {
	db *sql.DB
}

func OpenResultDB(filename string) (*ResultDB, error) {
	// every pooled connection gets foreign keys through the dsn
	db, err := sql.Open("sqlite3", filename+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// params holds the msgpack encoded full parameter map
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			sweep TEXT NOT NULL,
			combination INTEGER NOT NULL,
			iteration INTEGER NOT NULL,
			steps INTEGER NOT NULL,
			params BLOB NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create runs table: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS run_variables (
			run_id TEXT NOT NULL,
			name TEXT NOT NULL,
			value REAL NOT NULL,
			PRIMARY KEY (run_id, name),
			FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create run_variables table: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS run_metrics (
			run_id TEXT NOT NULL,
			name TEXT NOT NULL,
			final REAL NOT NULL,
			mean REAL NOT NULL,
			PRIMARY KEY (run_id, name),
			FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create run_metrics table: %w", err)
	}

	return &ResultDB{db: db}, nil
}

func (rdb *ResultDB) Close() error {
	return rdb.db.Close()
}

// StoreRun writes one run and its children in a single transaction
func (rdb *ResultDB) StoreRun(rec *RunRecord) (err error) {
	params, err := msgpack.Marshal(rec.Params)
	if err != nil {
		return fmt.Errorf("failed to marshal params: %w", err)
	}

	tx, err := rdb.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	_, err = tx.Exec(
		"INSERT INTO runs (id, sweep, combination, iteration, steps, params) VALUES (?, ?, ?, ?, ?, ?)",
		rec.RunID, rec.Sweep, rec.Combination, rec.Iteration, rec.Steps, params,
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	for name, value := range rec.Variables {
		_, err = tx.Exec(
			"INSERT INTO run_variables (run_id, name, value) VALUES (?, ?, ?)",
			rec.RunID, name, value,
		)
		if err != nil {
			return fmt.Errorf("failed to insert run variable %s: %w", name, err)
		}
	}

	for name, final := range rec.Final {
		_, err = tx.Exec(
			"INSERT INTO run_metrics (run_id, name, final, mean) VALUES (?, ?, ?, ?)",
			rec.RunID, name, final, rec.Mean[name],
		)
		if err != nil {
			return fmt.Errorf("failed to insert run metric %s: %w", name, err)
		}
	}

	return tx.Commit()
}

// DeleteSweep removes every run of a sweep
func (rdb *ResultDB) DeleteSweep(sweep string) error {
	if _, err := rdb.db.Exec("DELETE FROM runs WHERE sweep = ?", sweep); err != nil {
		return fmt.Errorf("failed to delete runs: %w", err)
	}
	return nil
}

// GetRuns loads every run of a sweep ordered by combination and iteration
func (rdb *ResultDB) GetRuns(sweep string) ([]*RunRecord, error) {
	rows, err := rdb.db.Query(`
		SELECT id, combination, iteration, steps, params FROM runs
		WHERE sweep = ?
		ORDER BY combination ASC, iteration ASC
	`, sweep)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var records []*RunRecord
	for rows.Next() {
		var data []byte
		rec := &RunRecord{
			Sweep:     sweep,
			Variables: make(map[string]float64),
		}
		rec.Final = make(map[string]float64)
		rec.Mean = make(map[string]float64)

		if err := rows.Scan(&rec.RunID, &rec.Combination, &rec.Iteration, &rec.Steps, &data); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		if err := msgpack.Unmarshal(data, &rec.Params); err != nil {
			return nil, fmt.Errorf("failed to unmarshal params of run %s: %w", rec.RunID, err)
		}
		records = append(records, rec)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}
	rows.Close()

	for _, rec := range records {
		if err := rdb.loadChildren(rec); err != nil {
			return nil, err
		}
	}
	return records, nil
}

func (rdb *ResultDB) loadChildren(rec *RunRecord) error {
	rows, err := rdb.db.Query("SELECT name, value FROM run_variables WHERE run_id = ?", rec.RunID)
	if err != nil {
		return fmt.Errorf("failed to query run variables: %w", err)
	}
	for rows.Next() {
		var name string
		var value float64
		if err := rows.Scan(&name, &value); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan run variable: %w", err)
		}
		rec.Variables[name] = value
	}
	rows.Close()

	rows, err = rdb.db.Query("SELECT name, final, mean FROM run_metrics WHERE run_id = ?", rec.RunID)
	if err != nil {
		return fmt.Errorf("failed to query run metrics: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var name string
		var final, mean float64
		if err := rows.Scan(&name, &final, &mean); err != nil {
			return fmt.Errorf("failed to scan run metric: %w", err)
		}
		rec.Final[name] = final
		rec.Mean[name] = mean
	}
	return rows.Err()
}
