package store

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"simvest/internal/engine"
)

// Postgres persists game state across restarts. All engine-level
// serialization happens in the coordinator; the store only reads and
// writes rows.
type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func (p *Postgres) GetCompany(ctx context.Context, id string) (engine.Company, error) {
	var c engine.Company
	err := p.pool.QueryRow(ctx, `
		SELECT id, name, value, share_price, available_funds, total_shares, shares_remaining,
		       cooldown_until, loan_taken, loan_amount, loan_taken_at, last_trade_at,
		       rank, value_change, disqualified
		FROM sim.companies
		WHERE id = $1
	`, id).Scan(
		&c.ID, &c.Name, &c.Value, &c.SharePrice, &c.AvailableFunds, &c.TotalShares, &c.SharesRemaining,
		&c.CooldownUntil, &c.LoanTaken, &c.LoanAmount, &c.LoanTakenAt, &c.LastTradeAt,
		&c.Rank, &c.ValueChange, &c.Disqualified,
	)
	if err == pgx.ErrNoRows {
		return engine.Company{}, engine.ErrCompanyNotFound
	}
	return c, err
}

func (p *Postgres) SaveCompany(ctx context.Context, c engine.Company) error {
	_, err := p.pool.Exec(ctx, `
		INSERT INTO sim.companies
		    (id, name, value, share_price, available_funds, total_shares, shares_remaining,
		     cooldown_until, loan_taken, loan_amount, loan_taken_at, last_trade_at,
		     rank, value_change, disqualified, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, now())
		ON CONFLICT (id) DO UPDATE SET
		    name = $2, value = $3, share_price = $4, available_funds = $5,
		    total_shares = $6, shares_remaining = $7, cooldown_until = $8,
		    loan_taken = $9, loan_amount = $10, loan_taken_at = $11,
		    last_trade_at = $12, rank = $13, value_change = $14,
		    disqualified = $15, updated_at = now()
	`, c.ID, c.Name, c.Value, c.SharePrice, c.AvailableFunds, c.TotalShares, c.SharesRemaining,
		c.CooldownUntil, c.LoanTaken, c.LoanAmount, c.LoanTakenAt, c.LastTradeAt,
		c.Rank, c.ValueChange, c.Disqualified)
	return err
}

func (p *Postgres) ListCompanies(ctx context.Context) ([]engine.Company, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT id, name, value, share_price, available_funds, total_shares, shares_remaining,
		       cooldown_until, loan_taken, loan_amount, loan_taken_at, last_trade_at,
		       rank, value_change, disqualified
		FROM sim.companies
		ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []engine.Company
	for rows.Next() {
		var c engine.Company
		if err := rows.Scan(
			&c.ID, &c.Name, &c.Value, &c.SharePrice, &c.AvailableFunds, &c.TotalShares, &c.SharesRemaining,
			&c.CooldownUntil, &c.LoanTaken, &c.LoanAmount, &c.LoanTakenAt, &c.LastTradeAt,
			&c.Rank, &c.ValueChange, &c.Disqualified,
		); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (p *Postgres) AppendInvestment(ctx context.Context, inv engine.Investment) error {
	_, err := p.pool.Exec(ctx, `
		INSERT INTO sim.investments
		    (id, buyer_id, seller_id, amount, shares_acquired, outcome, multiplier, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, inv.ID, inv.BuyerID, inv.SellerID, inv.Amount, inv.SharesAcquired, string(inv.Outcome), inv.Multiplier, inv.CreatedAt)
	return err
}

func (p *Postgres) AppendTransaction(ctx context.Context, tx engine.Transaction) error {
	_, err := p.pool.Exec(ctx, `
		INSERT INTO sim.transactions
		    (id, type, amount, outcome, from_id, to_id, created_at)
		VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), NULLIF($6, ''), $7)
	`, tx.ID, string(tx.Type), tx.Amount, string(tx.Outcome), tx.FromID, tx.ToID, tx.CreatedAt)
	return err
}

func (p *Postgres) CountInvestmentsBySeller(ctx context.Context, sellerID string) (int, error) {
	var count int
	err := p.pool.QueryRow(ctx, `
		SELECT COUNT(1) FROM sim.investments WHERE seller_id = $1
	`, sellerID).Scan(&count)
	return count, err
}

func (p *Postgres) ListTransactions(ctx context.Context, limit int) ([]engine.Transaction, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := p.pool.Query(ctx, `
		SELECT id, type, amount, COALESCE(outcome, ''), COALESCE(from_id, ''), COALESCE(to_id, ''), created_at
		FROM sim.transactions
		ORDER BY created_at DESC, id DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []engine.Transaction
	for rows.Next() {
		var t engine.Transaction
		var txType, outcome string
		if err := rows.Scan(&t.ID, &txType, &t.Amount, &outcome, &t.FromID, &t.ToID, &t.CreatedAt); err != nil {
			return nil, err
		}
		t.Type = engine.TransactionType(txType)
		t.Outcome = engine.InvestmentResult(outcome)
		out = append(out, t)
	}
	return out, rows.Err()
}
