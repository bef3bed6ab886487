package store

import (
	"context"
	"fmt"

	"marketsim/internal/market"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store archives simulation output to Postgres. It is a pure sink: nothing in
// the simulation ever reads from it.
type Store struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) EnsureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS company_history (
    ticker     TEXT             NOT NULL,
    week       INT              NOT NULL,
    price      DOUBLE PRECISION NOT NULL,
    revenue    DOUBLE PRECISION NOT NULL,
    expenses   DOUBLE PRECISION NOT NULL,
    net_income DOUBLE PRECISION NOT NULL,
    eps        DOUBLE PRECISION NOT NULL,
    cash       DOUBLE PRECISION NOT NULL,
    debt       DOUBLE PRECISION NOT NULL,
    equity     DOUBLE PRECISION NOT NULL,
    shares     DOUBLE PRECISION NOT NULL,
    PRIMARY KEY (ticker, week)
);
CREATE TABLE IF NOT EXISTS company_events (
    id       UUID PRIMARY KEY,
    ticker   TEXT NOT NULL,
    week     INT  NOT NULL,
    kind     TEXT NOT NULL,
    headline TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS company_events_ticker_week ON company_events (ticker, week);`
	if _, err := s.pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// ArchiveTick persists the latest history point for every company plus any
// events stamped with the current week. Batched; conflicts are ignored so
// replays after a restart are harmless.
func (s *Store) ArchiveTick(ctx context.Context, u *market.Universe) error {
	week := u.Week()
	batch := &pgx.Batch{}
	for _, c := range u.Companies {
		if len(c.History) == 0 {
			continue
		}
		h := c.History[len(c.History)-1]
		batch.Queue(`INSERT INTO company_history
			(ticker, week, price, revenue, expenses, net_income, eps, cash, debt, equity, shares)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
			ON CONFLICT (ticker, week) DO NOTHING`,
			c.Ticker, h.Week, h.Price, h.Revenue, h.Expenses, h.NetIncome, h.EPS,
			h.Cash, h.Debt, h.Equity, h.Shares)
		for i := len(c.Events) - 1; i >= 0 && c.Events[i].Week == week; i-- {
			ev := c.Events[i]
			batch.Queue(`INSERT INTO company_events (id, ticker, week, kind, headline)
				VALUES ($1,$2,$3,$4,$5)
				ON CONFLICT (id) DO NOTHING`,
				ev.ID, c.Ticker, ev.Week, ev.Kind, ev.Headline)
		}
	}
	if batch.Len() == 0 {
		return nil
	}
	if err := s.pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("archive week %d: %w", week, err)
	}
	return nil
}
