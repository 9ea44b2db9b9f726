package tips

import (
	"testing"

	"github.com/NgigiN/fintrack/internal/finance"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tx(kind finance.Kind, cat finance.Category, amount string) finance.Transaction {
	return finance.Transaction{Kind: kind, Category: cat, Amount: decimal.RequireFromString(amount)}
}

func TestAnalyzeHighSpendingWarning(t *testing.T) {
	txs := []finance.Transaction{
		tx(finance.Income, finance.Salary, "1000"),
		tx(finance.Expense, finance.Food, "950"),
	}

	got := Analyze(txs, decimal.NewFromInt(50))

	require.Len(t, got, 2)
	assert.Equal(t, HighSpending, got[0])
	assert.NotContains(t, got, NegativeBalance)
}

func TestAnalyzeBothWarningsInOrder(t *testing.T) {
	txs := []finance.Transaction{
		tx(finance.Income, finance.Salary, "1000"),
		tx(finance.Expense, finance.Housing, "1010"),
	}

	got := Analyze(txs, decimal.NewFromInt(-10))

	require.Len(t, got, 3)
	assert.Equal(t, HighSpending, got[0])
	assert.Equal(t, NegativeBalance, got[1])
}

func TestAnalyzeNegativeBalanceOnly(t *testing.T) {
	got := Analyze(nil, decimal.NewFromInt(-10))
	assert.Equal(t, []string{NegativeBalance}, got)
}

func TestAnalyzeNoIncomeSkipsRatio(t *testing.T) {
	got := Analyze([]finance.Transaction{tx(finance.Expense, finance.Food, "10")}, decimal.Zero)
	require.Len(t, got, 1)
	assert.NotEqual(t, HighSpending, got[0])
}

func TestAnalyzeTopCategory(t *testing.T) {
	txs := []finance.Transaction{
		tx(finance.Expense, finance.Transport, "100"),
		tx(finance.Expense, finance.Food, "120"),
		tx(finance.Expense, finance.Food, "180"),
	}

	got := Analyze(txs, decimal.Zero)

	require.Len(t, got, 1)
	assert.Contains(t, got[0], "**Food**")
	assert.Contains(t, got[0], "300.00")
	assert.NotContains(t, got[0], "Transport")
}

func TestExpenseByCategoryStableTies(t *testing.T) {
	txs := []finance.Transaction{
		tx(finance.Expense, finance.Leisure, "50"),
		tx(finance.Expense, finance.Health, "50"),
		tx(finance.Income, finance.Salary, "999"),
		tx(finance.Expense, finance.Education, "70"),
	}

	got := ExpenseByCategory(txs)

	require.Len(t, got, 3)
	assert.Equal(t, finance.Education, got[0].Category)
	assert.Equal(t, finance.Leisure, got[1].Category)
	assert.Equal(t, finance.Health, got[2].Category)
}

func TestFirst(t *testing.T) {
	assert.Equal(t, "fallback", First(nil, "fallback"))
	assert.Equal(t, "a", First([]string{"a", "b"}, "fallback"))
}
