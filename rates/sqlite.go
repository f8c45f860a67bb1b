package rates

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/etnz/fiscal/date"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"
)

// forex quotes are stored as assets of type CURRENCY named like "USDEUR=X".
const schema = `
CREATE TABLE IF NOT EXISTS assets (
	id         TEXT PRIMARY KEY,
	symbol     TEXT NOT NULL UNIQUE,
	asset_type TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS quotes (
	asset_id TEXT NOT NULL REFERENCES assets(id),
	date     TEXT NOT NULL,
	close    TEXT NOT NULL,
	PRIMARY KEY (asset_id, date)
);`

const currencyAsset = "CURRENCY"

// symbol returns the asset symbol of a pair.
func symbol(p Pair) string { return p.String() + "=X" }

// SQLStore is a Source backed by a SQL database of quotes.
type SQLStore struct {
	db *sql.DB
}

// OpenSQL opens, and initializes if needed, a SQLite quote database.
func OpenSQL(ctx context.Context, dsn string) (*SQLStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("cannot open quote database: %w", err)
	}
	// a single connection keeps in-memory databases alive and shared.
	db.SetMaxOpenConns(1)
	s := NewSQLStore(db)
	if err := s.Init(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// NewSQLStore returns a store over an open database.
func NewSQLStore(db *sql.DB) *SQLStore { return &SQLStore{db: db} }

// Init creates the tables.
func (s *SQLStore) Init(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("cannot create quote tables: %w", err)
	}
	return nil
}

func (s *SQLStore) Close() error { return s.db.Close() }

// assetID returns the id of the pair's asset, ok is false if it does not exist.
func (s *SQLStore) assetID(ctx context.Context, p Pair) (id string, ok bool, err error) {
	err = s.db.QueryRowContext(ctx,
		`SELECT id FROM assets WHERE symbol = ? AND asset_type = ?`, symbol(p), currencyAsset).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("cannot find asset %s: %w", symbol(p), err)
	}
	return id, true, nil
}

// Save stores the quotes of a pair, replacing existing quotes on the same days.
func (s *SQLStore) Save(ctx context.Context, p Pair, h *date.History[decimal.Decimal]) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO assets (id, symbol, asset_type) VALUES (?, ?, ?) ON CONFLICT(symbol) DO NOTHING`,
		uuid.NewString(), symbol(p), currencyAsset)
	if err != nil {
		return fmt.Errorf("cannot create asset %s: %w", symbol(p), err)
	}
	var id string
	if err := tx.QueryRowContext(ctx, `SELECT id FROM assets WHERE symbol = ?`, symbol(p)).Scan(&id); err != nil {
		return fmt.Errorf("cannot find asset %s: %w", symbol(p), err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT OR REPLACE INTO quotes (asset_id, date, close) VALUES (?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for day, v := range h.Values() {
		if _, err := stmt.ExecContext(ctx, id, day.String(), v.String()); err != nil {
			return fmt.Errorf("cannot save %s quote on %s: %w", p, day, err)
		}
	}
	return tx.Commit()
}

// Fetch returns the quotes of the pair within r. When the pair is unknown
// the quotes of the inverse pair are inverted.
func (s *SQLStore) Fetch(ctx context.Context, p Pair, r date.Range) (*date.History[decimal.Decimal], error) {
	id, ok, err := s.assetID(ctx, p)
	if err != nil {
		return nil, err
	}
	if ok {
		return s.quotes(ctx, id, r)
	}
	id, ok, err = s.assetID(ctx, p.Inverse())
	if err != nil {
		return nil, err
	}
	if !ok {
		return new(date.History[decimal.Decimal]), nil
	}
	h, err := s.quotes(ctx, id, r)
	if err != nil {
		return nil, err
	}
	return invert(h), nil
}

func (s *SQLStore) quotes(ctx context.Context, assetID string, r date.Range) (*date.History[decimal.Decimal], error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT substr(q.date, 1, 10), CAST(q.close AS TEXT) FROM quotes q
		 WHERE q.asset_id = ? AND substr(q.date, 1, 10) BETWEEN ? AND ?
		 ORDER BY q.date`,
		assetID, r.From.String(), r.To.String())
	if err != nil {
		return nil, fmt.Errorf("cannot query quotes: %w", err)
	}
	defer rows.Close()

	h := new(date.History[decimal.Decimal])
	for rows.Next() {
		var day, closeStr string
		if err := rows.Scan(&day, &closeStr); err != nil {
			return nil, err
		}
		on, err := date.Parse(day)
		if err != nil {
			return nil, fmt.Errorf("invalid quote date %q: %w", day, err)
		}
		v, err := decimal.NewFromString(closeStr)
		if err != nil {
			return nil, fmt.Errorf("invalid quote %q on %s: %w", closeStr, day, err)
		}
		h.Append(on, v)
	}
	return h, rows.Err()
}
