// Package tips derives budget advice from a transaction list without any
// remote call.
package tips

import (
	"fmt"
	"sort"

	"github.com/NgigiN/fintrack/internal/finance"
	"github.com/shopspring/decimal"
)

const (
	HighSpending    = "⚠️ Careful! You have already spent more than 90% of what you earned."
	NegativeBalance = "🚨 Your balance is negative. Avoid new non-essential expenses."
)

var spendRatio = decimal.NewFromFloat(0.9)

type CategoryTotal struct {
	Category finance.Category
	Total    decimal.Decimal
}

// Analyze returns tips in a fixed order: spending ratio, negative balance,
// largest expense category. Callers usually show only the first.
func Analyze(txs []finance.Transaction, balance decimal.Decimal) []string {
	var tips []string

	income, expense := decimal.Zero, decimal.Zero
	for _, t := range txs {
		switch t.Kind {
		case finance.Income:
			income = income.Add(t.Amount)
		case finance.Expense:
			expense = expense.Add(t.Amount)
		}
	}

	if income.IsPositive() && expense.GreaterThan(income.Mul(spendRatio)) {
		tips = append(tips, HighSpending)
	}
	if balance.IsNegative() {
		tips = append(tips, NegativeBalance)
	}
	if totals := ExpenseByCategory(txs); len(totals) > 0 {
		top := totals[0]
		tips = append(tips, fmt.Sprintf("💡 Your largest expense is **%s** (%s). Try to cut back here.", top.Category, top.Total.StringFixed(2)))
	}
	return tips
}

// ExpenseByCategory sums expenses per category, largest first. Ties keep the
// order in which the categories first appear.
func ExpenseByCategory(txs []finance.Transaction) []CategoryTotal {
	index := map[finance.Category]int{}
	var totals []CategoryTotal
	for _, t := range txs {
		if t.Kind != finance.Expense {
			continue
		}
		i, ok := index[t.Category]
		if !ok {
			i = len(totals)
			index[t.Category] = i
			totals = append(totals, CategoryTotal{Category: t.Category, Total: decimal.Zero})
		}
		totals[i].Total = totals[i].Total.Add(t.Amount)
	}
	sort.SliceStable(totals, func(i, j int) bool {
		return totals[i].Total.GreaterThan(totals[j].Total)
	})
	return totals
}

// First returns the first tip or fallback when there is none.
func First(tips []string, fallback string) string {
	if len(tips) == 0 {
		return fallback
	}
	return tips[0]
}
