// Package store persists aggregated lang tables in PostgreSQL.
package store

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/Skidy89/simple-language-loader/internal/loader"
	"github.com/Skidy89/simple-language-loader/internal/parser"
	"github.com/Skidy89/simple-language-loader/internal/textutil"
	"github.com/Skidy89/simple-language-loader/internal/worker"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

// rowsPerStatement bounds the number of rows in one multi-row upsert.
const rowsPerStatement = 500

const schemaSQL = `
CREATE TABLE IF NOT EXISTS lang_entries (
	resource   TEXT        NOT NULL,
	key        TEXT        NOT NULL,
	raw_value  TEXT        NOT NULL,
	kind       TEXT        NOT NULL,
	checksum   TEXT        NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (resource, key)
)`

const upsertSuffix = `
ON CONFLICT (resource, key) DO UPDATE
SET raw_value = EXCLUDED.raw_value,
    kind = EXCLUDED.kind,
    checksum = EXCLUDED.checksum,
    updated_at = now()
WHERE lang_entries.checksum <> EXCLUDED.checksum`

const pruneSQL = `DELETE FROM lang_entries WHERE resource = $1 AND NOT (key = ANY($2))`

const pruneResourcesSQL = `DELETE FROM lang_entries WHERE NOT (resource = ANY($1))`

const selectSQL = `SELECT resource, key, raw_value FROM lang_entries`

// DB is the subset of *pgxpool.Pool used by the store.
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Begin(ctx context.Context) (pgx.Tx, error)
}

var _ DB = (*pgxpool.Pool)(nil)

// PublishResult counts the rows changed by Publish.
type PublishResult struct {
	Resources int
	Upserted  int64
	Pruned    int64
}

// EntryStore reads and writes lang entries.
type EntryStore struct {
	db DB
}

// NewEntryStore creates a store on db.
func NewEntryStore(db DB) *EntryStore {
	return &EntryStore{db: db}
}

// Connect opens a connection pool and verifies it.
func Connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect PostgreSQL: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping PostgreSQL: %w", err)
	}
	log.Info().Msg("Connected to PostgreSQL")
	return pool, nil
}

// EnsureSchema creates the lang_entries table if needed.
func (s *EntryStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create lang_entries: %w", err)
	}
	return nil
}

type entryRow struct {
	key   string
	raw   string
	kind  string
	check string
}

// Publish makes the stored entries mirror table in one transaction: entries are
// upserted, keys a resource no longer defines are deleted and so are resources
// missing from table. Unchanged entries are left untouched.
func (s *EntryStore) Publish(ctx context.Context, table loader.Table) (PublishResult, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return PublishResult{}, fmt.Errorf("begin publish: %w", err)
	}
	defer tx.Rollback(ctx)

	ids := table.Resources()
	var res PublishResult
	for _, id := range ids {
		raw := table[id]
		rows := make([]entryRow, 0, len(raw))
		keys := make([]string, 0, len(raw))
		for _, key := range sortedKeys(raw) {
			value := raw[key]
			rows = append(rows, entryRow{
				key:   key,
				raw:   value,
				kind:  parser.Decode(value).Kind.String(),
				check: textutil.Hash(value),
			})
			keys = append(keys, key)
		}

		for _, batch := range worker.Batch(rows, rowsPerStatement) {
			sql, args := upsertStatement(id, batch)
			tag, err := tx.Exec(ctx, sql, args...)
			if err != nil {
				return res, fmt.Errorf("upsert entries of %s: %w", id, err)
			}
			res.Upserted += tag.RowsAffected()
		}

		tag, err := tx.Exec(ctx, pruneSQL, id, keys)
		if err != nil {
			return res, fmt.Errorf("prune entries of %s: %w", id, err)
		}
		res.Pruned += tag.RowsAffected()
		res.Resources++
	}

	tag, err := tx.Exec(ctx, pruneResourcesSQL, ids)
	if err != nil {
		return res, fmt.Errorf("prune removed resources: %w", err)
	}
	res.Pruned += tag.RowsAffected()

	if err := tx.Commit(ctx); err != nil {
		return res, fmt.Errorf("commit publish: %w", err)
	}

	log.Info().
		Int("resources", res.Resources).
		Int64("upserted", res.Upserted).
		Int64("pruned", res.Pruned).
		Msg("Published lang entries")
	return res, nil
}

// Fetch reads every stored entry back into a table.
func (s *EntryStore) Fetch(ctx context.Context) (loader.Table, error) {
	rows, err := s.db.Query(ctx, selectSQL)
	if err != nil {
		return nil, fmt.Errorf("query lang entries: %w", err)
	}
	defer rows.Close()

	table := loader.Table{}
	for rows.Next() {
		var resource, key, raw string
		if err := rows.Scan(&resource, &key, &raw); err != nil {
			return nil, fmt.Errorf("scan lang entry: %w", err)
		}
		if table[resource] == nil {
			table[resource] = parser.RawTable{}
		}
		table[resource][key] = raw
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read lang entries: %w", err)
	}
	return table, nil
}

func upsertStatement(resource string, rows []entryRow) (string, []any) {
	var b strings.Builder
	b.WriteString("INSERT INTO lang_entries (resource, key, raw_value, kind, checksum) VALUES ")
	args := make([]any, 0, len(rows)*5)
	for i, r := range rows {
		if i > 0 {
			b.WriteString(", ")
		}
		n := i * 5
		fmt.Fprintf(&b, "($%d, $%d, $%d, $%d, $%d)", n+1, n+2, n+3, n+4, n+5)
		args = append(args, resource, r.key, r.raw, r.kind, r.check)
	}
	b.WriteString(upsertSuffix)
	return b.String(), args
}

func sortedKeys(raw parser.RawTable) []string {
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
