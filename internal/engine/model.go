package engine

import (
	"errors"
	"time"
)

const (
	// DefaultTotalShares is the per-company share count used to derive
	// share price from valuation. Fixed at game configuration time.
	DefaultTotalShares = int64(1000)

	DefaultStartingValue = float64(500_000)
	DefaultStartingFunds = float64(50_000)
)

var (
	ErrCompanyNotFound   = errors.New("company not found")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrInCooldown        = errors.New("company is in cooldown")
	ErrDisqualified      = errors.New("company is disqualified")
	ErrAlreadyLoaned     = errors.New("company already has a loan")
	ErrSelfInvestment    = errors.New("company cannot invest in itself")
	ErrInvariant         = errors.New("invariant violation")
)

type InvestmentResult string

const (
	ResultFull     InvestmentResult = "full"
	ResultPartial  InvestmentResult = "partial"
	ResultNegative InvestmentResult = "negative"
)

type TransactionType string

const (
	TxInvestment TransactionType = "investment"
	TxLoan       TransactionType = "loan"
	TxReturn     TransactionType = "return"
)

type Company struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	Value           float64    `json:"value"`
	SharePrice      float64    `json:"share_price"`
	AvailableFunds  float64    `json:"available_funds"`
	TotalShares     int64      `json:"total_shares"`
	SharesRemaining int64      `json:"shares_remaining"`
	CooldownUntil   *time.Time `json:"cooldown_until,omitempty"`
	LoanTaken       bool       `json:"loan_taken"`
	LoanAmount      float64    `json:"loan_amount,omitempty"`
	LoanTakenAt     *time.Time `json:"loan_taken_at,omitempty"`
	LastTradeAt     *time.Time `json:"last_trade_at,omitempty"`
	Rank            int        `json:"rank"`
	ValueChange     float64    `json:"value_change"`
	Disqualified    bool       `json:"disqualified"`
}

// InCooldown compares against the caller's clock; an elapsed CooldownUntil
// is treated as absent, it is never cached or cleared eagerly.
func (c Company) InCooldown(now time.Time) bool {
	return c.CooldownUntil != nil && c.CooldownUntil.After(now)
}

type Investment struct {
	ID             string           `json:"id"`
	BuyerID        string           `json:"buyer_id"`
	SellerID       string           `json:"seller_id"`
	Amount         float64          `json:"amount"`
	SharesAcquired int64            `json:"shares_acquired"`
	Outcome        InvestmentResult `json:"outcome"`
	Multiplier     float64          `json:"multiplier"`
	CreatedAt      time.Time        `json:"created_at"`
}

type Transaction struct {
	ID        string           `json:"id"`
	Type      TransactionType  `json:"type"`
	Amount    float64          `json:"amount"`
	Outcome   InvestmentResult `json:"outcome,omitempty"`
	FromID    string           `json:"from_id,omitempty"`
	ToID      string           `json:"to_id,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
}

type Config struct {
	TotalShares   int64
	StartingValue float64
	StartingFunds float64
}

func DefaultConfig() Config {
	return Config{
		TotalShares:   DefaultTotalShares,
		StartingValue: DefaultStartingValue,
		StartingFunds: DefaultStartingFunds,
	}
}
