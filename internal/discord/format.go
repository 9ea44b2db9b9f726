package discord

import (
	"fmt"
	"strings"
	"time"

	"github.com/NgigiN/fintrack/internal/finance"
	"github.com/NgigiN/fintrack/internal/market"
	"github.com/NgigiN/fintrack/internal/store"
)

// listLimit caps how many transactions a listing shows.
const listLimit = 15

func formatSummary(month time.Time, s finance.Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📊 **Summary for %s**\n\n", month.Format("January 2006"))
	fmt.Fprintf(&b, "**Income**: %s\n", s.TotalIncome.StringFixed(2))
	fmt.Fprintf(&b, "**Expenses**: %s\n", s.TotalExpense.StringFixed(2))
	fmt.Fprintf(&b, "**Balance**: %s\n", s.Balance.StringFixed(2))
	fmt.Fprintf(&b, "**Reservation**: %s\n", s.Reservation.StringFixed(2))
	fmt.Fprintf(&b, "**Health score**: %d/100", finance.HealthScore(s))
	return b.String()
}

func formatList(month time.Time, txs []finance.Transaction, state func(string) store.SyncState) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📒 **%s**\n\n", month.Format("January 2006"))

	limit := listLimit
	if len(txs) < limit {
		limit = len(txs)
	}
	for _, t := range txs[:limit] {
		sign := "-"
		if t.Kind == finance.Income {
			sign = "+"
		}
		var flags []string
		if t.IsFixed {
			flags = append(flags, "fixed")
		}
		if state(t.ID) == store.Pending {
			flags = append(flags, "saving…")
		}
		suffix := ""
		if len(flags) > 0 {
			suffix = " _(" + strings.Join(flags, ", ") + ")_"
		}
		fmt.Fprintf(&b, "`%s` %s **%s%s** %s (%s)%s\n",
			shortID(t.ID), t.Date.Format("Jan 2"), sign, t.Amount.StringFixed(2), t.Description, t.Category, suffix)
	}
	if len(txs) > limit {
		fmt.Fprintf(&b, "... and %d more transactions\n", len(txs)-limit)
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatPortfolio(p market.Portfolio) string {
	var b strings.Builder
	b.WriteString("💼 **Portfolio**\n\n")
	for _, pos := range p.Positions {
		note := ""
		if pos.Source != market.SourceLive {
			note = " _(" + string(pos.Source) + ")_"
		}
		fmt.Fprintf(&b, "**%s** (%s): %s%s\n", pos.Investment.Name, pos.Investment.Type, pos.Value.StringFixed(2), note)
	}
	fmt.Fprintf(&b, "\n**Invested**: %s\n", p.Invested.StringFixed(2))
	fmt.Fprintf(&b, "**Current**: %s\n", p.Value.StringFixed(2))
	fmt.Fprintf(&b, "**Profit**: %s (%s%%)", p.Profit.StringFixed(2), p.ProfitPct.StringFixed(2))
	return b.String()
}

func formatAnnual(year int, months [12]finance.MonthTotals) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📅 **Projection for %d**\n```\n", year)
	fmt.Fprintf(&b, "%-4s %12s %12s %12s %12s\n", "", "income", "expense", "invested", "balance")
	for _, m := range months {
		fmt.Fprintf(&b, "%-4s %12s %12s %12s %12s\n", m.Month.String()[:3],
			m.Income.StringFixed(2), m.Expense.StringFixed(2), m.Investment.StringFixed(2), m.Balance.StringFixed(2))
	}
	b.WriteString("```")
	return b.String()
}
