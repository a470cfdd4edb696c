package engine

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Coordinator owns the atomicity contract for the company pool. A single
// lock covers the whole read-validate-mutate sequence: the roster is a
// few dozen companies and every mutation ends with a full-table rank
// pass, so per-company locking buys nothing here.
type Coordinator struct {
	store Repository
	dice  OutcomeSource
	ranks *RankEngine
	cfg   Config
	log   *slog.Logger
	mu    sync.RWMutex
}

func NewCoordinator(store Repository, dice OutcomeSource, ranks *RankEngine, cfg Config, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.TotalShares <= 0 {
		cfg = DefaultConfig()
	}
	return &Coordinator{
		store: store,
		dice:  dice,
		ranks: ranks,
		cfg:   cfg,
		log:   logger,
	}
}

// Invest commits amount of the buyer's funds toward the seller, resolves
// the stochastic outcome and applies the resulting deltas to both
// parties. Validation happens before any mutation; a rejected request
// leaves both companies untouched.
func (c *Coordinator) Invest(ctx context.Context, buyerID, sellerID string, amount float64) (Investment, error) {
	if amount <= 0 {
		return Investment{}, fmt.Errorf("amount must be > 0")
	}
	if buyerID == sellerID {
		return Investment{}, ErrSelfInvestment
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	buyer, err := c.store.GetCompany(ctx, buyerID)
	if err != nil {
		return Investment{}, err
	}
	seller, err := c.store.GetCompany(ctx, sellerID)
	if err != nil {
		return Investment{}, err
	}

	now := time.Now()
	if buyer.Disqualified || seller.Disqualified {
		return Investment{}, ErrDisqualified
	}
	if buyer.AvailableFunds < amount {
		return Investment{}, ErrInsufficientFunds
	}
	if buyer.InCooldown(now) {
		return Investment{}, ErrInCooldown
	}

	outcome := c.dice.Resolve()
	shares := int64(math.Floor(amount * outcome.Multiplier))
	if seller.SharesRemaining-shares < 0 {
		return Investment{}, fmt.Errorf("%w: seller has %d shares remaining, outcome requires %d", ErrInvariant, seller.SharesRemaining, shares)
	}

	incoming, err := c.store.CountInvestmentsBySeller(ctx, sellerID)
	if err != nil {
		return Investment{}, err
	}

	buyer.AvailableFunds -= amount
	buyer.Value = clampMoney(buyer.Value - outcome.Penalty)
	buyer.SharePrice = SharePrice(buyer.Value, c.cfg.TotalShares)
	buyer.LastTradeAt = &now
	if outcome.Cooldown > 0 {
		until := now.Add(outcome.Cooldown)
		buyer.CooldownUntil = &until
	} else {
		buyer.CooldownUntil = nil
	}

	seller.SharesRemaining -= shares
	committed := seller.TotalShares - seller.SharesRemaining
	seller.Value = Revalue(seller.Value, incoming+1, committed)
	seller.SharePrice = SharePrice(seller.Value, c.cfg.TotalShares)

	investment := Investment{
		ID:             uuid.NewString(),
		BuyerID:        buyerID,
		SellerID:       sellerID,
		Amount:         amount,
		SharesAcquired: shares,
		Outcome:        outcome.Result(),
		Multiplier:     outcome.Multiplier,
		CreatedAt:      now,
	}

	if err := c.store.SaveCompany(ctx, buyer); err != nil {
		return Investment{}, err
	}
	if err := c.store.SaveCompany(ctx, seller); err != nil {
		return Investment{}, err
	}
	if err := c.store.AppendInvestment(ctx, investment); err != nil {
		return Investment{}, err
	}
	if err := c.store.AppendTransaction(ctx, Transaction{
		ID:        uuid.NewString(),
		Type:      TxInvestment,
		Amount:    amount,
		Outcome:   investment.Outcome,
		FromID:    buyerID,
		ToID:      sellerID,
		CreatedAt: now,
	}); err != nil {
		return Investment{}, err
	}
	if err := c.recomputeRanksLocked(ctx); err != nil {
		return Investment{}, err
	}

	c.log.Info("investment resolved",
		"buyer", buyerID,
		"seller", sellerID,
		"amount", amount,
		"outcome", investment.Outcome,
		"shares", shares,
	)
	return investment, nil
}

// TakeLoan credits the company's spendable funds. One loan per company
// for the session; the flag never resets.
func (c *Coordinator) TakeLoan(ctx context.Context, companyID string, amount float64) (Transaction, error) {
	if amount <= 0 {
		return Transaction{}, fmt.Errorf("amount must be > 0")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	company, err := c.store.GetCompany(ctx, companyID)
	if err != nil {
		return Transaction{}, err
	}
	if company.Disqualified {
		return Transaction{}, ErrDisqualified
	}
	if company.LoanTaken {
		return Transaction{}, ErrAlreadyLoaned
	}

	now := time.Now()
	company.AvailableFunds += amount
	company.LoanTaken = true
	company.LoanAmount = amount
	company.LoanTakenAt = &now

	if err := c.store.SaveCompany(ctx, company); err != nil {
		return Transaction{}, err
	}
	transaction := Transaction{
		ID:        uuid.NewString(),
		Type:      TxLoan,
		Amount:    amount,
		ToID:      companyID,
		CreatedAt: now,
	}
	if err := c.store.AppendTransaction(ctx, transaction); err != nil {
		return Transaction{}, err
	}
	if err := c.recomputeRanksLocked(ctx); err != nil {
		return Transaction{}, err
	}

	c.log.Info("loan taken", "company", companyID, "amount", amount)
	return transaction, nil
}

// Disqualify removes a company from all trading. Terminal: the engine
// offers no path back.
func (c *Coordinator) Disqualify(ctx context.Context, companyID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	company, err := c.store.GetCompany(ctx, companyID)
	if err != nil {
		return err
	}
	if company.Disqualified {
		return nil
	}
	company.Disqualified = true
	if err := c.store.SaveCompany(ctx, company); err != nil {
		return err
	}
	c.log.Info("company disqualified", "company", companyID)
	return nil
}

// GetCompany returns a read-only snapshot of one company.
func (c *Coordinator) GetCompany(ctx context.Context, companyID string) (Company, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.store.GetCompany(ctx, companyID)
}

// ListCompanies returns a snapshot of the roster ordered by rank.
func (c *Coordinator) ListCompanies(ctx context.Context) ([]Company, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	companies, err := c.store.ListCompanies(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(companies, func(i, j int) bool {
		if companies[i].Rank == companies[j].Rank {
			return companies[i].ID < companies[j].ID
		}
		return companies[i].Rank < companies[j].Rank
	})
	return companies, nil
}

// ListTransactions returns up to limit ledger entries, most recent first.
func (c *Coordinator) ListTransactions(ctx context.Context, limit int) ([]Transaction, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.store.ListTransactions(ctx, limit)
}

// recomputeRanksLocked runs the full-table rank pass. Callers hold the
// write lock, so the pass always sees a consistent snapshot.
func (c *Coordinator) recomputeRanksLocked(ctx context.Context) error {
	companies, err := c.store.ListCompanies(ctx)
	if err != nil {
		return err
	}
	for _, company := range c.ranks.Recompute(companies) {
		if err := c.store.SaveCompany(ctx, company); err != nil {
			return err
		}
	}
	return nil
}

// Penalties may push a valuation below zero on paper; the engine clamps
// at zero rather than carrying negative worth.
func clampMoney(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
