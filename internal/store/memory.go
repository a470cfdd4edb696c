package store

import (
	"context"
	"sync"

	"simvest/internal/engine"
)

// Memory keeps the whole game state in process. Suitable for a single
// game session; state is lost on restart.
type Memory struct {
	mu           sync.RWMutex
	companies    map[string]engine.Company
	investments  []engine.Investment
	transactions []engine.Transaction
	bySeller     map[string]int
}

func NewMemory() *Memory {
	return &Memory{
		companies: make(map[string]engine.Company),
		bySeller:  make(map[string]int),
	}
}

func (m *Memory) GetCompany(_ context.Context, id string) (engine.Company, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	company, ok := m.companies[id]
	if !ok {
		return engine.Company{}, engine.ErrCompanyNotFound
	}
	return company, nil
}

func (m *Memory) SaveCompany(_ context.Context, company engine.Company) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.companies[company.ID] = company
	return nil
}

func (m *Memory) ListCompanies(_ context.Context) ([]engine.Company, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]engine.Company, 0, len(m.companies))
	for _, company := range m.companies {
		out = append(out, company)
	}
	return out, nil
}

func (m *Memory) AppendInvestment(_ context.Context, investment engine.Investment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.investments = append(m.investments, investment)
	m.bySeller[investment.SellerID]++
	return nil
}

func (m *Memory) AppendTransaction(_ context.Context, transaction engine.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transactions = append(m.transactions, transaction)
	return nil
}

func (m *Memory) CountInvestmentsBySeller(_ context.Context, sellerID string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.bySeller[sellerID], nil
}

// ListTransactions returns up to limit entries, most recent first.
func (m *Memory) ListTransactions(_ context.Context, limit int) ([]engine.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := len(m.transactions)
	if limit <= 0 || limit > n {
		limit = n
	}
	out := make([]engine.Transaction, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		out = append(out, m.transactions[i])
	}
	return out, nil
}
