package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/cardintel-cli/internal/db"
	"github.com/sells-group/cardintel-cli/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

// NewPostgresFromPool wraps an existing pool. Used by tests to inject a
// pgxmock pool.
func NewPostgresFromPool(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool, closeFn: pool.Close}
}

// Pool returns the underlying database pool for subsystems that need
// direct query access (e.g., bulk catalog seeding).
func (s *PostgresStore) Pool() db.Pool {
	return s.pool
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS card_entries (
	id              TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	sport           TEXT NOT NULL DEFAULT '',
	year            INTEGER NOT NULL,
	manufacturer    TEXT NOT NULL DEFAULT '',
	set_name        TEXT NOT NULL DEFAULT '',
	player_name     TEXT NOT NULL,
	card_number     TEXT NOT NULL DEFAULT '',
	parallel        TEXT NOT NULL DEFAULT '',
	avg_raw_price   DOUBLE PRECISION NOT NULL DEFAULT 0,
	avg_psa9_price  DOUBLE PRECISION NOT NULL DEFAULT 0,
	avg_psa10_price DOUBLE PRECISION NOT NULL DEFAULT 0,
	sample_size     INTEGER NOT NULL DEFAULT 0,
	last_updated    TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE(player_name, year, set_name, card_number, parallel)
);

CREATE TABLE IF NOT EXISTS price_cache (
	key        TEXT PRIMARY KEY,
	prices     JSONB NOT NULL,
	cached_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	expires_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_card_entries_player ON card_entries(player_name);
CREATE INDEX IF NOT EXISTS idx_card_entries_year ON card_entries(year);
CREATE INDEX IF NOT EXISTS idx_price_cache_expires_at ON price_cache(expires_at);
`

func (s *PostgresStore) Ping(ctx context.Context) error {
	return eris.Wrap(s.pool.Ping(ctx), "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

const pgEntryColumns = `id, sport, year, manufacturer, set_name, player_name,
	card_number, parallel, avg_raw_price, avg_psa9_price, avg_psa10_price, sample_size, last_updated`

func (s *PostgresStore) FindEntry(ctx context.Context, q EntryQuery) (*model.LocalCardEntry, error) {
	query := `SELECT ` + pgEntryColumns + ` FROM card_entries
	          WHERE player_name ILIKE $1 AND year = $2`
	args := []any{like(q.Player), q.Year}
	argIdx := 3

	if q.SetName != "" {
		query += fmt.Sprintf(` AND set_name ILIKE $%d`, argIdx)
		args = append(args, like(q.SetName))
		argIdx++
	}
	if q.Manufacturer != "" {
		query += fmt.Sprintf(` AND manufacturer ILIKE $%d`, argIdx)
		args = append(args, like(q.Manufacturer))
		argIdx++
	}
	if q.CardNumber != "" {
		query += fmt.Sprintf(` AND card_number = $%d`, argIdx)
		args = append(args, q.CardNumber)
		argIdx++
	}
	query += ` LIMIT 1`

	return s.queryEntry(ctx, query, args, "postgres: find entry")
}

func (s *PostgresStore) FindEntryFuzzy(ctx context.Context, q EntryQuery) (*model.LocalCardEntry, error) {
	query := `SELECT ` + pgEntryColumns + ` FROM card_entries
	          WHERE player_name ILIKE $1 AND year BETWEEN $2 AND $3`
	args := []any{like(q.Player), q.Year - 1, q.Year + 1}
	argIdx := 4

	if aliases := ManufacturerAliases(q.Manufacturer); len(aliases) > 0 {
		var placeholders []string
		for _, a := range aliases {
			placeholders = append(placeholders, fmt.Sprintf("$%d", argIdx))
			args = append(args, a)
			argIdx++
		}
		query += ` AND UPPER(manufacturer) IN (` + strings.Join(placeholders, ", ") + `)`
	}
	query += ` LIMIT 1`

	return s.queryEntry(ctx, query, args, "postgres: find entry fuzzy")
}

func (s *PostgresStore) queryEntry(ctx context.Context, query string, args []any, wrap string) (*model.LocalCardEntry, error) {
	var e model.LocalCardEntry
	err := s.pool.QueryRow(ctx, query, args...).Scan(
		&e.ID, &e.Sport, &e.Year, &e.Manufacturer, &e.SetName,
		&e.PlayerName, &e.CardNumber, &e.Parallel,
		&e.AvgRawPrice, &e.AvgPSA9Price, &e.AvgPSA10Price,
		&e.SampleSize, &e.LastUpdated,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, wrap)
	}
	return &e, nil
}

func (s *PostgresStore) UpsertEntry(ctx context.Context, entry model.LocalCardEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.LastUpdated.IsZero() {
		entry.LastUpdated = time.Now().UTC()
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO card_entries
		 (id, sport, year, manufacturer, set_name, player_name, card_number, parallel,
		  avg_raw_price, avg_psa9_price, avg_psa10_price, sample_size, last_updated)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		 ON CONFLICT (player_name, year, set_name, card_number, parallel) DO UPDATE SET
		   sport = $2, manufacturer = $4, avg_raw_price = $9, avg_psa9_price = $10,
		   avg_psa10_price = $11, sample_size = $12, last_updated = $13`,
		entry.ID, entry.Sport, entry.Year, entry.Manufacturer, entry.SetName,
		entry.PlayerName, entry.CardNumber, entry.Parallel,
		entry.AvgRawPrice, entry.AvgPSA9Price, entry.AvgPSA10Price,
		entry.SampleSize, entry.LastUpdated,
	)
	return eris.Wrap(err, "postgres: upsert entry")
}

func (s *PostgresStore) UpdateEntryPrice(ctx context.Context, id string, cond model.Condition, price float64, sampleSize int) error {
	col, err := priceColumn(cond)
	if err != nil {
		return err
	}

	tag, err := s.pool.Exec(ctx,
		fmt.Sprintf(`UPDATE card_entries SET %s = $1, sample_size = $2, last_updated = $3 WHERE id = $4`, col),
		price, sampleSize, time.Now().UTC(), id,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update entry price %s", id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("entry not found: %s", id)
	}
	return nil
}

func (s *PostgresStore) SearchEntries(ctx context.Context, player string, limit int) ([]model.LocalCardEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.pool.Query(ctx,
		`SELECT `+pgEntryColumns+` FROM card_entries
		 WHERE player_name ILIKE $1 ORDER BY year DESC, set_name LIMIT $2`,
		like(player), limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: search entries")
	}
	defer rows.Close()

	var entries []model.LocalCardEntry
	for rows.Next() {
		var e model.LocalCardEntry
		if err := rows.Scan(&e.ID, &e.Sport, &e.Year, &e.Manufacturer, &e.SetName,
			&e.PlayerName, &e.CardNumber, &e.Parallel,
			&e.AvgRawPrice, &e.AvgPSA9Price, &e.AvgPSA10Price,
			&e.SampleSize, &e.LastUpdated); err != nil {
			return nil, eris.Wrap(err, "postgres: scan entry")
		}
		entries = append(entries, e)
	}
	return entries, eris.Wrap(rows.Err(), "postgres: search entries iterate")
}

func (s *PostgresStore) GetCachedPrices(ctx context.Context, key string) ([]float64, error) {
	var pricesJSON []byte
	err := s.pool.QueryRow(ctx,
		`SELECT prices FROM price_cache WHERE key = $1 AND expires_at > now()`,
		key,
	).Scan(&pricesJSON)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: get cached prices")
	}

	var prices []float64
	if err := json.Unmarshal(pricesJSON, &prices); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal cached prices")
	}
	return prices, nil
}

func (s *PostgresStore) SetCachedPrices(ctx context.Context, key string, prices []float64, ttl time.Duration) error {
	pricesJSON, err := json.Marshal(prices)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal prices")
	}

	now := time.Now().UTC()
	_, err = s.pool.Exec(ctx,
		`INSERT INTO price_cache (key, prices, cached_at, expires_at) VALUES ($1, $2, $3, $4)
		 ON CONFLICT (key) DO UPDATE SET prices = $2, cached_at = $3, expires_at = $4`,
		key, pricesJSON, now, now.Add(ttl),
	)
	return eris.Wrap(err, "postgres: set cached prices")
}

func (s *PostgresStore) DeleteExpiredPrices(ctx context.Context) (int, error) {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM price_cache WHERE expires_at <= now()`,
	)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: delete expired prices")
	}
	return int(tag.RowsAffected()), nil
}

// SeedEntries bulk-loads catalog entries with upsert semantics via a temp
// table and COPY.
func (s *PostgresStore) SeedEntries(ctx context.Context, entries []model.LocalCardEntry) (int64, error) {
	rows := make([][]any, 0, len(entries))
	now := time.Now().UTC()
	for _, e := range entries {
		if e.ID == "" {
			e.ID = uuid.New().String()
		}
		if e.LastUpdated.IsZero() {
			e.LastUpdated = now
		}
		rows = append(rows, []any{
			e.ID, e.Sport, e.Year, e.Manufacturer, e.SetName, e.PlayerName,
			e.CardNumber, e.Parallel, e.AvgRawPrice, e.AvgPSA9Price,
			e.AvgPSA10Price, e.SampleSize, e.LastUpdated,
		})
	}

	columns := []string{
		"id", "sport", "year", "manufacturer", "set_name", "player_name",
		"card_number", "parallel", "avg_raw_price", "avg_psa9_price",
		"avg_psa10_price", "sample_size", "last_updated",
	}

	// A first-time seed into an empty table can skip the temp-table upsert
	// and COPY straight in.
	var hasRows bool
	if err := s.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM card_entries)`).Scan(&hasRows); err != nil {
		return 0, eris.Wrap(err, "postgres: check card_entries")
	}
	if !hasRows {
		return db.CopyFrom(ctx, s.pool, "card_entries", columns, rows)
	}

	cfg := db.UpsertConfig{
		Table:        "card_entries",
		Columns:      columns,
		ConflictKeys: []string{"player_name", "year", "set_name", "card_number", "parallel"},
		UpdateCols: []string{
			"sport", "manufacturer", "avg_raw_price", "avg_psa9_price",
			"avg_psa10_price", "sample_size", "last_updated",
		},
	}
	return db.BulkUpsert(ctx, s.pool, cfg, rows)
}
