package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/cardintel-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS card_entries (
	id             TEXT PRIMARY KEY,
	sport          TEXT NOT NULL DEFAULT '',
	year           INTEGER NOT NULL,
	manufacturer   TEXT NOT NULL DEFAULT '',
	set_name       TEXT NOT NULL DEFAULT '',
	player_name    TEXT NOT NULL,
	card_number    TEXT NOT NULL DEFAULT '',
	parallel       TEXT NOT NULL DEFAULT '',
	avg_raw_price  REAL NOT NULL DEFAULT 0,
	avg_psa9_price REAL NOT NULL DEFAULT 0,
	avg_psa10_price REAL NOT NULL DEFAULT 0,
	sample_size    INTEGER NOT NULL DEFAULT 0,
	last_updated   DATETIME NOT NULL DEFAULT (datetime('now')),
	UNIQUE(player_name, year, set_name, card_number, parallel)
);

CREATE TABLE IF NOT EXISTS price_cache (
	key        TEXT PRIMARY KEY,
	prices     TEXT NOT NULL,
	cached_at  DATETIME NOT NULL DEFAULT (datetime('now')),
	expires_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_card_entries_player ON card_entries(player_name);
CREATE INDEX IF NOT EXISTS idx_card_entries_year ON card_entries(year);
CREATE INDEX IF NOT EXISTS idx_price_cache_expires_at ON price_cache(expires_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

const sqliteEntryColumns = `id, sport, year, manufacturer, set_name, player_name,
	card_number, parallel, avg_raw_price, avg_psa9_price, avg_psa10_price, sample_size, last_updated`

func (s *SQLiteStore) FindEntry(ctx context.Context, q EntryQuery) (*model.LocalCardEntry, error) {
	query := `SELECT ` + sqliteEntryColumns + ` FROM card_entries
	          WHERE LOWER(player_name) LIKE ? AND year = ?`
	args := []any{like(q.Player), q.Year}

	if q.SetName != "" {
		query += ` AND LOWER(set_name) LIKE ?`
		args = append(args, like(q.SetName))
	}
	if q.Manufacturer != "" {
		query += ` AND LOWER(manufacturer) LIKE ?`
		args = append(args, like(q.Manufacturer))
	}
	if q.CardNumber != "" {
		query += ` AND card_number = ?`
		args = append(args, q.CardNumber)
	}
	query += ` LIMIT 1`

	row := s.db.QueryRowContext(ctx, query, args...)
	return scanEntry(row, "sqlite: find entry")
}

func (s *SQLiteStore) FindEntryFuzzy(ctx context.Context, q EntryQuery) (*model.LocalCardEntry, error) {
	query := `SELECT ` + sqliteEntryColumns + ` FROM card_entries
	          WHERE LOWER(player_name) LIKE ? AND year BETWEEN ? AND ?`
	args := []any{like(q.Player), q.Year - 1, q.Year + 1}

	if aliases := ManufacturerAliases(q.Manufacturer); len(aliases) > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(aliases)), ", ")
		query += ` AND UPPER(manufacturer) IN (` + placeholders + `)`
		for _, a := range aliases {
			args = append(args, a)
		}
	}
	query += ` LIMIT 1`

	row := s.db.QueryRowContext(ctx, query, args...)
	return scanEntry(row, "sqlite: find entry fuzzy")
}

func (s *SQLiteStore) UpsertEntry(ctx context.Context, entry model.LocalCardEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.LastUpdated.IsZero() {
		entry.LastUpdated = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO card_entries
		 (id, sport, year, manufacturer, set_name, player_name, card_number, parallel,
		  avg_raw_price, avg_psa9_price, avg_psa10_price, sample_size, last_updated)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(player_name, year, set_name, card_number, parallel) DO UPDATE SET
		   sport = excluded.sport, manufacturer = excluded.manufacturer,
		   avg_raw_price = excluded.avg_raw_price, avg_psa9_price = excluded.avg_psa9_price,
		   avg_psa10_price = excluded.avg_psa10_price, sample_size = excluded.sample_size,
		   last_updated = excluded.last_updated`,
		entry.ID, entry.Sport, entry.Year, entry.Manufacturer, entry.SetName,
		entry.PlayerName, entry.CardNumber, entry.Parallel,
		entry.AvgRawPrice, entry.AvgPSA9Price, entry.AvgPSA10Price,
		entry.SampleSize, entry.LastUpdated,
	)
	return eris.Wrap(err, "sqlite: upsert entry")
}

func (s *SQLiteStore) UpdateEntryPrice(ctx context.Context, id string, cond model.Condition, price float64, sampleSize int) error {
	col, err := priceColumn(cond)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx,
		fmt.Sprintf(`UPDATE card_entries SET %s = ?, sample_size = ?, last_updated = ? WHERE id = ?`, col),
		price, sampleSize, time.Now().UTC(), id,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update entry price %s", id)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "sqlite: rows affected")
	}
	if n == 0 {
		return eris.Errorf("entry not found: %s", id)
	}
	return nil
}

func (s *SQLiteStore) SearchEntries(ctx context.Context, player string, limit int) ([]model.LocalCardEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+sqliteEntryColumns+` FROM card_entries
		 WHERE LOWER(player_name) LIKE ? ORDER BY year DESC, set_name LIMIT ?`,
		like(player), limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: search entries")
	}
	defer rows.Close()

	var entries []model.LocalCardEntry
	for rows.Next() {
		e, err := scanEntry(rows, "sqlite: scan entry")
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}
	return entries, eris.Wrap(rows.Err(), "sqlite: search entries iterate")
}

func (s *SQLiteStore) GetCachedPrices(ctx context.Context, key string) ([]float64, error) {
	var pricesJSON string
	err := s.db.QueryRowContext(ctx,
		`SELECT prices FROM price_cache WHERE key = ? AND expires_at > datetime('now')`,
		key,
	).Scan(&pricesJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: get cached prices")
	}

	var prices []float64
	if err := json.Unmarshal([]byte(pricesJSON), &prices); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal cached prices")
	}
	return prices, nil
}

func (s *SQLiteStore) SetCachedPrices(ctx context.Context, key string, prices []float64, ttl time.Duration) error {
	pricesJSON, err := json.Marshal(prices)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal prices")
	}

	now := time.Now().UTC()
	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO price_cache (key, prices, cached_at, expires_at) VALUES (?, ?, ?, ?)`,
		key, string(pricesJSON), now, now.Add(ttl),
	)
	return eris.Wrap(err, "sqlite: set cached prices")
}

func (s *SQLiteStore) DeleteExpiredPrices(ctx context.Context) (int, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM price_cache WHERE expires_at <= datetime('now')`,
	)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: delete expired prices")
	}
	n, err := res.RowsAffected()
	return int(n), eris.Wrap(err, "sqlite: rows affected")
}

// helpers

func like(s string) string {
	return "%" + strings.ToLower(strings.TrimSpace(s)) + "%"
}

func priceColumn(cond model.Condition) (string, error) {
	switch cond {
	case model.ConditionPSA10:
		return "avg_psa10_price", nil
	case model.ConditionPSA9:
		return "avg_psa9_price", nil
	case model.ConditionRaw:
		return "avg_raw_price", nil
	}
	return "", eris.Errorf("unknown condition: %s", cond)
}

type scannable interface {
	Scan(dest ...any) error
}

func scanEntry(row scannable, wrap string) (*model.LocalCardEntry, error) {
	var e model.LocalCardEntry
	err := row.Scan(&e.ID, &e.Sport, &e.Year, &e.Manufacturer, &e.SetName,
		&e.PlayerName, &e.CardNumber, &e.Parallel,
		&e.AvgRawPrice, &e.AvgPSA9Price, &e.AvgPSA10Price,
		&e.SampleSize, &e.LastUpdated)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, wrap)
	}
	return &e, nil
}
