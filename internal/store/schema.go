package store

import "context"

// EnsureSchema creates the game tables if they do not exist yet.
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	statements := []string{
		`CREATE SCHEMA IF NOT EXISTS sim`,
		`CREATE TABLE IF NOT EXISTS sim.companies (
			id               text PRIMARY KEY,
			name             text NOT NULL,
			value            double precision NOT NULL,
			share_price      double precision NOT NULL,
			available_funds  double precision NOT NULL,
			total_shares     bigint NOT NULL,
			shares_remaining bigint NOT NULL,
			cooldown_until   timestamptz,
			loan_taken       boolean NOT NULL DEFAULT false,
			loan_amount      double precision NOT NULL DEFAULT 0,
			loan_taken_at    timestamptz,
			last_trade_at    timestamptz,
			rank             integer NOT NULL DEFAULT 0,
			value_change     double precision NOT NULL DEFAULT 0,
			disqualified     boolean NOT NULL DEFAULT false,
			updated_at       timestamptz NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS sim.investments (
			id              text PRIMARY KEY,
			buyer_id        text NOT NULL REFERENCES sim.companies(id),
			seller_id       text NOT NULL REFERENCES sim.companies(id),
			amount          double precision NOT NULL,
			shares_acquired bigint NOT NULL,
			outcome         text NOT NULL,
			multiplier      double precision NOT NULL,
			created_at      timestamptz NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS investments_seller_idx ON sim.investments (seller_id)`,
		`CREATE TABLE IF NOT EXISTS sim.transactions (
			id         text PRIMARY KEY,
			type       text NOT NULL,
			amount     double precision NOT NULL,
			outcome    text,
			from_id    text,
			to_id      text,
			created_at timestamptz NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS transactions_created_idx ON sim.transactions (created_at DESC)`,
	}
	for _, stmt := range statements {
		if _, err := p.pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
