package engine

import "context"

// Repository is the coordinator's storage collaborator. Implementations
// return copies; callers never observe another caller's in-progress
// mutation through a returned record. Lookups for unknown ids return
// ErrCompanyNotFound.
type Repository interface {
	GetCompany(ctx context.Context, id string) (Company, error)
	SaveCompany(ctx context.Context, company Company) error
	ListCompanies(ctx context.Context) ([]Company, error)
	AppendInvestment(ctx context.Context, investment Investment) error
	AppendTransaction(ctx context.Context, transaction Transaction) error
	CountInvestmentsBySeller(ctx context.Context, sellerID string) (int, error)
	ListTransactions(ctx context.Context, limit int) ([]Transaction, error)
}
