package main

import (
	"time"

	"simvest/internal/engine"

	"github.com/fatih/color"
)

var (
	accent  = color.New(color.FgCyan, color.Bold)
	success = color.New(color.FgGreen, color.Bold)
	warn    = color.New(color.FgYellow, color.Bold)
	danger  = color.New(color.FgRed, color.Bold)
	neutral = color.New(color.FgHiWhite)
)

func printSuccess(msg string) {
	success.Println(msg)
}

func printWarn(msg string) {
	warn.Println(msg)
}

func renderCompaniesTable(companies []engine.Company) {
	accent.Printf("%-5s %-8s %-22s %14s %12s %12s %8s\n", "RANK", "ID", "NAME", "VALUE", "SHARE", "FUNDS", "CHANGE")
	for _, c := range companies {
		line := neutral
		if c.Disqualified {
			line = danger
		}
		line.Printf("%-5d %-8s %-22s %14.2f %12.2f %12.2f %7.2f%%\n",
			c.Rank, c.ID, c.Name, c.Value, c.SharePrice, c.AvailableFunds, c.ValueChange)
	}
}

func renderCompanyDetail(c engine.Company) {
	accent.Printf("%s: %s\n", c.ID, c.Name)
	neutral.Printf("  rank:             %d\n", c.Rank)
	neutral.Printf("  value:            %.2f\n", c.Value)
	neutral.Printf("  share price:      %.2f\n", c.SharePrice)
	neutral.Printf("  available funds:  %.2f\n", c.AvailableFunds)
	neutral.Printf("  shares remaining: %d / %d\n", c.SharesRemaining, c.TotalShares)
	neutral.Printf("  value change:     %.2f%%\n", c.ValueChange)
	if c.LoanTaken {
		warn.Printf("  loan:             %.2f taken %s\n", c.LoanAmount, formatTime(c.LoanTakenAt))
	}
	if c.CooldownUntil != nil && c.CooldownUntil.After(time.Now()) {
		warn.Printf("  cooldown until:   %s\n", c.CooldownUntil.Format(time.RFC3339))
	}
	if c.Disqualified {
		danger.Println("  DISQUALIFIED")
	}
}

func renderInvestment(inv engine.Investment) {
	switch inv.Outcome {
	case engine.ResultFull:
		success.Printf("FULL outcome: %d shares acquired for %.2f\n", inv.SharesAcquired, inv.Amount)
	case engine.ResultPartial:
		warn.Printf("PARTIAL outcome (x%.2f): %d shares acquired for %.2f\n", inv.Multiplier, inv.SharesAcquired, inv.Amount)
	default:
		danger.Printf("NEGATIVE outcome: no shares, %.2f spent, buyer penalized\n", inv.Amount)
	}
	neutral.Printf("  investment id: %s\n", inv.ID)
}

func renderTransactions(transactions []engine.Transaction) {
	accent.Printf("%-24s %-11s %12s %-8s %-8s %-9s\n", "TIME", "TYPE", "AMOUNT", "FROM", "TO", "OUTCOME")
	for _, t := range transactions {
		neutral.Printf("%-24s %-11s %12.2f %-8s %-8s %-9s\n",
			t.CreatedAt.Format(time.RFC3339), t.Type, t.Amount, orDash(t.FromID), orDash(t.ToID), orDash(string(t.Outcome)))
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func formatTime(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format(time.RFC3339)
}
