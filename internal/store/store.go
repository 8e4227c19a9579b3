// Package store handles SQLite persistence of daily key history.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/verte-zerg/keycast/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// DayLayout is the format of the day column.
const DayLayout = "2006-01-02"

// Store wraps SQLite access for key history.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS key_history (
			day TEXT NOT NULL,
			username TEXT NOT NULL,
			key_name TEXT NOT NULL,
			presses INTEGER NOT NULL,
			PRIMARY KEY (day, username, key_name)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_key_history_user_day ON key_history(username, day);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// AddCounts adds per-key press deltas for user on day.
func (s *Store) AddCounts(ctx context.Context, user, day string, counts model.KeyCounts) (err error) {
	if len(counts) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO key_history (day, username, key_name, presses) VALUES (?, ?, ?, ?)
		 ON CONFLICT(day, username, key_name) DO UPDATE SET presses = presses + excluded.presses`)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := stmt.Close(); cerr != nil {
			// Best-effort statement close.
			_ = cerr
		}
	}()
	for key, n := range counts {
		if n == 0 {
			continue
		}
		if _, err = stmt.ExecContext(ctx, day, user, key, n); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// ListDays returns one aggregate per recorded day, oldest first.
func (s *Store) ListDays(ctx context.Context, cfg model.StatsConfig) ([]model.DayAggregate, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if cfg.User != "" {
		clauses = append(clauses, "username = ?")
		args = append(args, cfg.User)
	}
	if cfg.Since != nil {
		clauses = append(clauses, "day >= ?")
		args = append(args, cfg.Since.Format(DayLayout))
	}
	query := fmt.Sprintf(`SELECT day, SUM(presses) AS total, COUNT(DISTINCT key_name) AS distinct_keys
		FROM key_history
		WHERE %s
		GROUP BY day
		ORDER BY day ASC`, strings.Join(clauses, " AND "))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var days []model.DayAggregate
	for rows.Next() {
		var agg model.DayAggregate
		if err := rows.Scan(&agg.Day, &agg.Total, &agg.Distinct); err != nil {
			return nil, err
		}
		days = append(days, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return days, nil
}

// ListKeyAggregatesForDays sums presses per key across days.
func (s *Store) ListKeyAggregatesForDays(ctx context.Context, user string, days []string) ([]model.KeyAggregate, error) {
	if len(days) == 0 {
		return nil, nil
	}
	args := make([]any, 0, len(days)+1)
	for _, d := range days {
		args = append(args, d)
	}
	userClause := ""
	if user != "" {
		userClause = " AND username = ?"
		args = append(args, user)
	}
	query := fmt.Sprintf(`SELECT key_name, SUM(presses) AS total
		FROM key_history
		WHERE day IN (%s)%s
		GROUP BY key_name
		ORDER BY total DESC, key_name ASC`, placeholders(len(days)), userClause)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var result []model.KeyAggregate
	for rows.Next() {
		var agg model.KeyAggregate
		if err := rows.Scan(&agg.Key, &agg.Count); err != nil {
			return nil, err
		}
		result = append(result, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// ListKeyCountsForDays returns per-day counts for the selected keys.
func (s *Store) ListKeyCountsForDays(ctx context.Context, user string, days, keys []string) (map[string]map[string]int, error) {
	if len(days) == 0 || len(keys) == 0 {
		return map[string]map[string]int{}, nil
	}
	args := make([]any, 0, len(days)+len(keys)+1)
	for _, d := range days {
		args = append(args, d)
	}
	for _, k := range keys {
		args = append(args, k)
	}
	userClause := ""
	if user != "" {
		userClause = " AND username = ?"
		args = append(args, user)
	}
	query := fmt.Sprintf(`SELECT day, key_name, SUM(presses)
		FROM key_history
		WHERE day IN (%s) AND key_name IN (%s)%s
		GROUP BY day, key_name`, placeholders(len(days)), placeholders(len(keys)), userClause)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	result := map[string]map[string]int{}
	for rows.Next() {
		var day, key string
		var count int
		if err := rows.Scan(&day, &key, &count); err != nil {
			return nil, err
		}
		if _, ok := result[day]; !ok {
			result[day] = map[string]int{}
		}
		result[day][key] = count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// DeleteUser removes all history rows of user.
func (s *Store) DeleteUser(ctx context.Context, user string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM key_history WHERE username = ?`, user)
	return err
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}
