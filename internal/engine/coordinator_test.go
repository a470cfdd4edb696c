package engine_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"sync"
	"testing"
	"time"

	"simvest/internal/engine"
	"simvest/internal/store"
)

type fixedOutcome struct {
	outcome engine.Outcome
}

func (f fixedOutcome) Resolve() engine.Outcome { return f.outcome }

func fullOutcome() engine.Outcome {
	return engine.Outcome{Label: "full", Probability: 1.0 / 12, Multiplier: 1}
}

func smallPenaltyOutcome() engine.Outcome {
	return engine.Outcome{Label: "small-penalty", Probability: 3.0 / 12, Penalty: 5_000, Cooldown: 10 * time.Minute}
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestCoordinator(t *testing.T, outcome engine.Outcome, companies ...engine.Company) (*engine.Coordinator, *store.Memory) {
	t.Helper()
	repo := store.NewMemory()
	for _, c := range companies {
		if err := repo.SaveCompany(context.Background(), c); err != nil {
			t.Fatalf("seed company: %v", err)
		}
	}
	coordinator := engine.NewCoordinator(
		repo,
		fixedOutcome{outcome: outcome},
		engine.NewRankEngineWithNoise(func() float64 { return 0 }),
		engine.DefaultConfig(),
		quietLogger(),
	)
	return coordinator, repo
}

func testBuyer() engine.Company {
	return engine.Company{
		ID: "BUYERX", Name: "Buyer X",
		Value: 500_000, AvailableFunds: 10_000,
		TotalShares: 1000, SharesRemaining: 1000,
	}
}

func testSeller() engine.Company {
	return engine.Company{
		ID: "SELLRX", Name: "Seller X",
		Value: 500_000, AvailableFunds: 10_000,
		TotalShares: 1000, SharesRemaining: 1000,
	}
}

func TestInvestFullOutcome(t *testing.T) {
	ctx := context.Background()
	coordinator, repo := newTestCoordinator(t, fullOutcome(), testBuyer(), testSeller())

	investment, err := coordinator.Invest(ctx, "BUYERX", "SELLRX", 1000)
	if err != nil {
		t.Fatalf("invest: %v", err)
	}
	if investment.SharesAcquired != 1000 {
		t.Fatalf("shares acquired = %d, want 1000", investment.SharesAcquired)
	}
	if investment.Outcome != engine.ResultFull {
		t.Fatalf("outcome = %s, want full", investment.Outcome)
	}
	if investment.Multiplier != 1 {
		t.Fatalf("multiplier = %v, want 1", investment.Multiplier)
	}

	buyer, err := repo.GetCompany(ctx, "BUYERX")
	if err != nil {
		t.Fatal(err)
	}
	if buyer.AvailableFunds != 9_000 {
		t.Fatalf("buyer funds = %v, want 9000", buyer.AvailableFunds)
	}
	if buyer.Value != 500_000 {
		t.Fatalf("buyer value = %v, want unchanged 500000", buyer.Value)
	}
	if buyer.CooldownUntil != nil {
		t.Fatal("buyer should not be in cooldown after a full outcome")
	}
	if buyer.LastTradeAt == nil {
		t.Fatal("buyer last trade timestamp not set")
	}

	seller, err := repo.GetCompany(ctx, "SELLRX")
	if err != nil {
		t.Fatal(err)
	}
	if seller.SharesRemaining != 0 {
		t.Fatalf("seller shares remaining = %d, want 0", seller.SharesRemaining)
	}
	if math.Abs(seller.Value-1_950_000) > 1e-6 {
		t.Fatalf("seller value = %v, want 1950000", seller.Value)
	}
	if math.Abs(seller.SharePrice-1950) > 1e-6 {
		t.Fatalf("seller share price = %v, want 1950", seller.SharePrice)
	}

	transactions, err := coordinator.ListTransactions(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(transactions) != 1 || transactions[0].Type != engine.TxInvestment {
		t.Fatalf("expected one investment transaction, got %+v", transactions)
	}
}

func TestInvestSmallPenalty(t *testing.T) {
	ctx := context.Background()
	coordinator, repo := newTestCoordinator(t, smallPenaltyOutcome(), testBuyer(), testSeller())

	before := time.Now()
	investment, err := coordinator.Invest(ctx, "BUYERX", "SELLRX", 1000)
	if err != nil {
		t.Fatalf("invest: %v", err)
	}
	if investment.SharesAcquired != 0 || investment.Outcome != engine.ResultNegative {
		t.Fatalf("penalty outcome mismatch: %+v", investment)
	}

	buyer, err := repo.GetCompany(ctx, "BUYERX")
	if err != nil {
		t.Fatal(err)
	}
	if buyer.Value != 495_000 {
		t.Fatalf("buyer value = %v, want 495000", buyer.Value)
	}
	if buyer.CooldownUntil == nil {
		t.Fatal("buyer cooldown not set")
	}
	until := *buyer.CooldownUntil
	if until.Before(before.Add(10*time.Minute)) || until.After(time.Now().Add(10*time.Minute+time.Second)) {
		t.Fatalf("cooldown until %v, want ~now+10m", until)
	}

	// No shares moved, but the seller still counts the incoming investor.
	seller, err := repo.GetCompany(ctx, "SELLRX")
	if err != nil {
		t.Fatal(err)
	}
	if seller.SharesRemaining != 1000 {
		t.Fatalf("seller shares remaining = %d, want 1000", seller.SharesRemaining)
	}
	if math.Abs(seller.Value-650_000) > 1e-6 {
		t.Fatalf("seller value = %v, want 650000", seller.Value)
	}

	if _, err := coordinator.Invest(ctx, "BUYERX", "SELLRX", 100); !errors.Is(err, engine.ErrInCooldown) {
		t.Fatalf("second invest: got %v, want ErrInCooldown", err)
	}
}

func TestInvestPenaltyClampsValueAtZero(t *testing.T) {
	ctx := context.Background()
	buyer := testBuyer()
	buyer.Value = 10_000
	largePenalty := engine.Outcome{Label: "large-penalty", Probability: 1.0 / 12, Penalty: 50_000, Cooldown: 30 * time.Minute}
	coordinator, repo := newTestCoordinator(t, largePenalty, buyer, testSeller())

	if _, err := coordinator.Invest(ctx, "BUYERX", "SELLRX", 1000); err != nil {
		t.Fatalf("invest: %v", err)
	}
	after, err := repo.GetCompany(ctx, "BUYERX")
	if err != nil {
		t.Fatal(err)
	}
	if after.Value != 0 {
		t.Fatalf("buyer value = %v, want clamped to 0", after.Value)
	}
	if after.SharePrice != 0 {
		t.Fatalf("buyer share price = %v, want 0", after.SharePrice)
	}
	if after.AvailableFunds != 9_000 {
		t.Fatalf("buyer funds = %v, want 9000", after.AvailableFunds)
	}
}

func TestInvestCooldownExpiryIsLazy(t *testing.T) {
	ctx := context.Background()
	buyer := testBuyer()
	past := time.Now().Add(-time.Minute)
	buyer.CooldownUntil = &past
	coordinator, _ := newTestCoordinator(t, fullOutcome(), buyer, testSeller())

	if _, err := coordinator.Invest(ctx, "BUYERX", "SELLRX", 100); err != nil {
		t.Fatalf("expired cooldown should not block: %v", err)
	}
}

func TestInvestInsufficientFundsLeavesStateUnchanged(t *testing.T) {
	ctx := context.Background()
	coordinator, repo := newTestCoordinator(t, fullOutcome(), testBuyer(), testSeller())

	buyerBefore, _ := repo.GetCompany(ctx, "BUYERX")
	sellerBefore, _ := repo.GetCompany(ctx, "SELLRX")

	for i := 0; i < 3; i++ {
		if _, err := coordinator.Invest(ctx, "BUYERX", "SELLRX", 20_000); !errors.Is(err, engine.ErrInsufficientFunds) {
			t.Fatalf("got %v, want ErrInsufficientFunds", err)
		}
	}

	buyerAfter, _ := repo.GetCompany(ctx, "BUYERX")
	sellerAfter, _ := repo.GetCompany(ctx, "SELLRX")
	if buyerAfter != buyerBefore {
		t.Fatalf("buyer mutated by rejected invest:\nbefore %+v\nafter  %+v", buyerBefore, buyerAfter)
	}
	if sellerAfter != sellerBefore {
		t.Fatalf("seller mutated by rejected invest:\nbefore %+v\nafter  %+v", sellerBefore, sellerAfter)
	}
}

func TestInvestValidation(t *testing.T) {
	ctx := context.Background()

	t.Run("self investment", func(t *testing.T) {
		coordinator, _ := newTestCoordinator(t, fullOutcome(), testBuyer())
		if _, err := coordinator.Invest(ctx, "BUYERX", "BUYERX", 100); !errors.Is(err, engine.ErrSelfInvestment) {
			t.Fatalf("got %v, want ErrSelfInvestment", err)
		}
	})

	t.Run("unknown buyer", func(t *testing.T) {
		coordinator, _ := newTestCoordinator(t, fullOutcome(), testSeller())
		if _, err := coordinator.Invest(ctx, "GHOSTX", "SELLRX", 100); !errors.Is(err, engine.ErrCompanyNotFound) {
			t.Fatalf("got %v, want ErrCompanyNotFound", err)
		}
	})

	t.Run("disqualified buyer", func(t *testing.T) {
		buyer := testBuyer()
		buyer.Disqualified = true
		coordinator, _ := newTestCoordinator(t, fullOutcome(), buyer, testSeller())
		if _, err := coordinator.Invest(ctx, "BUYERX", "SELLRX", 100); !errors.Is(err, engine.ErrDisqualified) {
			t.Fatalf("got %v, want ErrDisqualified", err)
		}
	})

	t.Run("disqualified seller", func(t *testing.T) {
		seller := testSeller()
		seller.Disqualified = true
		coordinator, _ := newTestCoordinator(t, fullOutcome(), testBuyer(), seller)
		if _, err := coordinator.Invest(ctx, "BUYERX", "SELLRX", 100); !errors.Is(err, engine.ErrDisqualified) {
			t.Fatalf("got %v, want ErrDisqualified", err)
		}
	})
}

func TestInvestSellerShareInvariant(t *testing.T) {
	ctx := context.Background()
	seller := testSeller()
	seller.SharesRemaining = 10
	coordinator, repo := newTestCoordinator(t, fullOutcome(), testBuyer(), seller)

	if _, err := coordinator.Invest(ctx, "BUYERX", "SELLRX", 1000); !errors.Is(err, engine.ErrInvariant) {
		t.Fatalf("got %v, want ErrInvariant", err)
	}
	buyer, _ := repo.GetCompany(ctx, "BUYERX")
	if buyer.AvailableFunds != 10_000 {
		t.Fatalf("buyer funds mutated on aborted invest: %v", buyer.AvailableFunds)
	}
	after, _ := repo.GetCompany(ctx, "SELLRX")
	if after.SharesRemaining != 10 {
		t.Fatalf("seller shares mutated on aborted invest: %d", after.SharesRemaining)
	}
}

func TestInvestConcurrentDoubleSpend(t *testing.T) {
	ctx := context.Background()
	buyer := testBuyer()
	buyer.AvailableFunds = 1000
	sellerA := testSeller()
	sellerB := testSeller()
	sellerB.ID = "SELLRY"
	sellerB.Name = "Seller Y"
	coordinator, repo := newTestCoordinator(t, fullOutcome(), buyer, sellerA, sellerB)

	var wg sync.WaitGroup
	results := make(chan error, 2)
	for _, sellerID := range []string{"SELLRX", "SELLRY"} {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			_, err := coordinator.Invest(ctx, "BUYERX", id, 1000)
			results <- err
		}(sellerID)
	}
	wg.Wait()
	close(results)

	var successes, rejections int
	for err := range results {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, engine.ErrInsufficientFunds):
			rejections++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if successes != 1 || rejections != 1 {
		t.Fatalf("got %d successes and %d rejections, want exactly 1 and 1", successes, rejections)
	}
	after, _ := repo.GetCompany(ctx, "BUYERX")
	if after.AvailableFunds != 0 {
		t.Fatalf("buyer funds = %v after concurrent invests, want 0", after.AvailableFunds)
	}
}

func TestTakeLoan(t *testing.T) {
	ctx := context.Background()
	coordinator, repo := newTestCoordinator(t, fullOutcome(), testBuyer())

	transaction, err := coordinator.TakeLoan(ctx, "BUYERX", 5_000)
	if err != nil {
		t.Fatalf("take loan: %v", err)
	}
	if transaction.Type != engine.TxLoan || transaction.ToID != "BUYERX" || transaction.Amount != 5_000 {
		t.Fatalf("loan transaction mismatch: %+v", transaction)
	}

	company, _ := repo.GetCompany(ctx, "BUYERX")
	if company.AvailableFunds != 15_000 {
		t.Fatalf("funds = %v, want 15000", company.AvailableFunds)
	}
	if !company.LoanTaken || company.LoanAmount != 5_000 || company.LoanTakenAt == nil {
		t.Fatalf("loan bookkeeping mismatch: %+v", company)
	}

	for i := 0; i < 3; i++ {
		if _, err := coordinator.TakeLoan(ctx, "BUYERX", 1_000); !errors.Is(err, engine.ErrAlreadyLoaned) {
			t.Fatalf("repeat loan: got %v, want ErrAlreadyLoaned", err)
		}
	}
	company, _ = repo.GetCompany(ctx, "BUYERX")
	if company.AvailableFunds != 15_000 {
		t.Fatalf("funds changed by rejected loans: %v", company.AvailableFunds)
	}
}

func TestTakeLoanDisqualified(t *testing.T) {
	ctx := context.Background()
	company := testBuyer()
	company.Disqualified = true
	coordinator, _ := newTestCoordinator(t, fullOutcome(), company)

	if _, err := coordinator.TakeLoan(ctx, "BUYERX", 1_000); !errors.Is(err, engine.ErrDisqualified) {
		t.Fatalf("got %v, want ErrDisqualified", err)
	}
	if _, err := coordinator.TakeLoan(ctx, "GHOSTX", 1_000); !errors.Is(err, engine.ErrCompanyNotFound) {
		t.Fatalf("got %v, want ErrCompanyNotFound", err)
	}
}

func TestRanksConsistentAfterInvest(t *testing.T) {
	ctx := context.Background()
	coordinator, _ := newTestCoordinator(t, fullOutcome(), testBuyer(), testSeller())

	if _, err := coordinator.Invest(ctx, "BUYERX", "SELLRX", 1000); err != nil {
		t.Fatal(err)
	}
	companies, err := coordinator.ListCompanies(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(companies) != 2 {
		t.Fatalf("got %d companies, want 2", len(companies))
	}
	// Seller was revalued to ~1.95M, buyer stayed at 500k.
	if companies[0].ID != "SELLRX" || companies[0].Rank != 1 {
		t.Fatalf("rank 1 = %s (%d), want SELLRX", companies[0].ID, companies[0].Rank)
	}
	if companies[1].ID != "BUYERX" || companies[1].Rank != 2 {
		t.Fatalf("rank 2 = %s (%d), want BUYERX", companies[1].ID, companies[1].Rank)
	}
}

func TestSeedRoster(t *testing.T) {
	ctx := context.Background()
	repo := store.NewMemory()
	coordinator := engine.NewCoordinator(
		repo,
		engine.NewResolver(1),
		engine.NewRankEngine(1),
		engine.DefaultConfig(),
		quietLogger(),
	)

	if err := coordinator.SeedRoster(ctx); err != nil {
		t.Fatalf("seed: %v", err)
	}
	companies, err := coordinator.ListCompanies(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(companies) != 40 {
		t.Fatalf("got %d companies, want 40", len(companies))
	}
	seen := make(map[int]bool, len(companies))
	for _, c := range companies {
		if c.Rank < 1 || c.Rank > len(companies) || seen[c.Rank] {
			t.Fatalf("bad rank %d for %s", c.Rank, c.ID)
		}
		seen[c.Rank] = true
		if c.Value != engine.DefaultStartingValue || c.AvailableFunds != engine.DefaultStartingFunds {
			t.Fatalf("seeded company %s has wrong starting figures: %+v", c.ID, c)
		}
	}

	// Seeding again must not duplicate the roster.
	if err := coordinator.SeedRoster(ctx); err != nil {
		t.Fatal(err)
	}
	companies, _ = coordinator.ListCompanies(ctx)
	if len(companies) != 40 {
		t.Fatalf("second seed changed roster size to %d", len(companies))
	}
}

func TestDisqualifyIsTerminal(t *testing.T) {
	ctx := context.Background()
	coordinator, repo := newTestCoordinator(t, fullOutcome(), testBuyer(), testSeller())

	if err := coordinator.Disqualify(ctx, "BUYERX"); err != nil {
		t.Fatal(err)
	}
	if err := coordinator.Disqualify(ctx, "BUYERX"); err != nil {
		t.Fatalf("repeat disqualify should be a no-op: %v", err)
	}
	company, _ := repo.GetCompany(ctx, "BUYERX")
	if !company.Disqualified {
		t.Fatal("company not disqualified")
	}
	if _, err := coordinator.Invest(ctx, "BUYERX", "SELLRX", 100); !errors.Is(err, engine.ErrDisqualified) {
		t.Fatalf("got %v, want ErrDisqualified", err)
	}
}
