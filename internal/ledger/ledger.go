// internal/ledger/ledger.go
//
// A record of issued cards and the bingos called on them, kept in SQLite.
// The ledger is write-mostly bookkeeping for /stats; a player's card never
// depends on it, so callers treat its errors as warnings.

package ledger

import (
	"context"
	"database/sql"

	"github.com/robalobadob/bingo/internal/board"
	"github.com/robalobadob/bingo/internal/card"
)

// Store wraps the ledger tables.
type Store struct{ db *sql.DB }

// NewStore returns a Store over a migrated database.
func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// RecordCard inserts a row for a newly dealt card. dailyDate is empty for
// cards that are not the daily card.
func (s *Store) RecordCard(ctx context.Context, c *card.Card, dailyDate string) error {
	var daily any
	if dailyDate != "" {
		daily = dailyDate
	}
	_, err := s.db.ExecContext(ctx, `
        INSERT OR IGNORE INTO cards (id, card_key, generated, catalog_version, daily_date)
        VALUES (?, ?, ?, ?, ?)`,
		c.ID, c.Key, c.Generated, c.CatalogVersion, daily,
	)
	return err
}

// RecordWin inserts one bingo for a card.
func (s *Store) RecordWin(ctx context.Context, cardID string, line board.Line) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO wins (card_id, line) VALUES (?, ?)`, cardID, line.String())
	return err
}

// Celebrate implements card.Celebrator by recording the win.
func (s *Store) Celebrate(ctx context.Context, c *card.Card, line board.Line) error {
	return s.RecordWin(ctx, c.ID, line)
}

// LineCount is how many bingos were called on one line.
type LineCount struct {
	Line  string `json:"line"`
	Count int    `json:"count"`
}

// Stats summarises the ledger.
type Stats struct {
	Cards        int         `json:"cards"`
	Generated    int         `json:"generated"`
	Daily        int         `json:"daily"`
	Wins         int         `json:"wins"`
	CardsWithWin int         `json:"cardsWithWin"`
	ByLine       []LineCount `json:"byLine"`
}

// Stats returns totals and wins per line, most frequent first.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	if err := s.db.QueryRowContext(ctx, `
        SELECT COUNT(1),
               COALESCE(SUM(generated), 0),
               COUNT(daily_date)
        FROM cards`,
	).Scan(&st.Cards, &st.Generated, &st.Daily); err != nil {
		return st, err
	}
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1), COUNT(DISTINCT card_id) FROM wins`,
	).Scan(&st.Wins, &st.CardsWithWin); err != nil {
		return st, err
	}

	rows, err := s.db.QueryContext(ctx, `
        SELECT line, COUNT(1) AS n
        FROM wins
        GROUP BY line
        ORDER BY n DESC, line ASC`)
	if err != nil {
		return st, err
	}
	defer rows.Close()
	st.ByLine = []LineCount{}
	for rows.Next() {
		var lc LineCount
		if err := rows.Scan(&lc.Line, &lc.Count); err != nil {
			return st, err
		}
		st.ByLine = append(st.ByLine, lc)
	}
	return st, rows.Err()
}
