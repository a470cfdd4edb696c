package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	cl "simvest/internal/cli"
	"simvest/internal/config"

	"github.com/spf13/cobra"
)

func main() {
	cfg := config.LoadCLIFromEnv()
	apiBase := cfg.APIBaseURL

	root := &cobra.Command{
		Use:          "svt",
		Short:        "Simvest operator CLI",
		SilenceUsage: true,
	}

	root.AddCommand(
		newCompaniesCmd(&apiBase),
		newInvestCmd(&apiBase),
		newLoanCmd(&apiBase),
		newTxnsCmd(&apiBase),
		newDisqualifyCmd(&apiBase),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newClient(apiBase *string) *cl.Client {
	return cl.NewClient(strings.TrimRight(strings.TrimSpace(*apiBase), "/"))
}

func requestContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), 30*time.Second)
}

func newCompaniesCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "companies [id]",
		Short: "List the company leaderboard or inspect one company",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := requestContext(cmd)
			defer cancel()
			client := newClient(apiBase)

			if len(args) == 1 {
				company, err := client.CompanyDetail(ctx, strings.ToUpper(strings.TrimSpace(args[0])))
				if err != nil {
					return err
				}
				renderCompanyDetail(company)
				return nil
			}
			companies, err := client.ListCompanies(ctx)
			if err != nil {
				return err
			}
			renderCompaniesTable(companies)
			return nil
		},
	}
}

func newInvestCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "invest <buyer> <seller> <amount>",
		Short: "Invest the buyer's funds into the seller",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := parseAmount(args[2])
			if err != nil {
				return err
			}
			ctx, cancel := requestContext(cmd)
			defer cancel()
			client := newClient(apiBase)
			investment, err := client.Invest(ctx,
				strings.ToUpper(strings.TrimSpace(args[0])),
				strings.ToUpper(strings.TrimSpace(args[1])),
				amount,
			)
			if err != nil {
				return err
			}
			renderInvestment(investment)
			return nil
		},
	}
}

func newLoanCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "loan <company> <amount>",
		Short: "Take the company's one-time loan",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := parseAmount(args[1])
			if err != nil {
				return err
			}
			ctx, cancel := requestContext(cmd)
			defer cancel()
			client := newClient(apiBase)
			transaction, err := client.TakeLoan(ctx, strings.ToUpper(strings.TrimSpace(args[0])), amount)
			if err != nil {
				return err
			}
			printSuccess(fmt.Sprintf("Loan granted: %.2f to %s (tx %s)", transaction.Amount, transaction.ToID, transaction.ID))
			return nil
		},
	}
}

func newTxnsCmd(apiBase *string) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "txns",
		Short: "Show recent transactions, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := requestContext(cmd)
			defer cancel()
			client := newClient(apiBase)
			transactions, err := client.ListTransactions(ctx, limit)
			if err != nil {
				return err
			}
			renderTransactions(transactions)
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 25, "maximum entries to show")
	return cmd
}

func newDisqualifyCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "disqualify <company>",
		Short: "Remove a company from trading (irreversible)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := requestContext(cmd)
			defer cancel()
			client := newClient(apiBase)
			id := strings.ToUpper(strings.TrimSpace(args[0]))
			if err := client.Disqualify(ctx, id); err != nil {
				return err
			}
			printWarn(fmt.Sprintf("%s disqualified.", id))
			return nil
		},
	}
}

func parseAmount(raw string) (float64, error) {
	amount, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || amount <= 0 {
		return 0, fmt.Errorf("amount must be a number > 0")
	}
	return amount, nil
}
