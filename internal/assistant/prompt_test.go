package assistant

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/NgigiN/fintrack/internal/finance"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(d int) time.Time {
	return time.Date(2026, time.March, d, 12, 0, 0, 0, time.UTC)
}

func TestRecentNewestFirstAndCapped(t *testing.T) {
	var txs []finance.Transaction
	for i := 1; i <= 12; i++ {
		txs = append(txs, finance.Transaction{ID: fmt.Sprint(i), Date: day(i)})
	}

	got := Recent(txs, 10)

	require.Len(t, got, 10)
	assert.Equal(t, "12", got[0].ID)
	assert.Equal(t, "3", got[9].ID)
	assert.Equal(t, "1", txs[0].ID, "input must not be reordered")
}

func TestSummarize(t *testing.T) {
	c := Context{
		Balance: decimal.RequireFromString("-12.5"),
		Transactions: []finance.Transaction{
			{Description: "Lunch", Category: finance.Food, Amount: decimal.NewFromInt(20), Kind: finance.Expense, Date: day(3)},
			{Description: "Pay", Category: finance.Salary, Amount: decimal.NewFromInt(1000), Kind: finance.Income, Date: day(5)},
		},
	}

	got := Summarize("Ana", c)

	assert.Contains(t, got, "User name: Ana")
	assert.Contains(t, got, "Current balance: -12.50")
	lunch := strings.Index(got, "2026-03-03: Lunch (Food) | 20.00 (expense)")
	pay := strings.Index(got, "2026-03-05: Pay (Salary) | 1000.00 (income)")
	require.NotEqual(t, -1, lunch)
	require.NotEqual(t, -1, pay)
	assert.Less(t, pay, lunch)
}

func TestBuildPrompt(t *testing.T) {
	got, err := BuildPrompt("Ana", Context{}, `I spent "50" on pizza`, day(15))
	require.NoError(t, err)

	assert.Contains(t, got, `"Ana"`)
	assert.Contains(t, got, `"I spent \"50\" on pizza"`)
	assert.Contains(t, got, "2026-03-15")
	assert.Contains(t, got, "Food | Housing")
	assert.Contains(t, got, "riskAssessment")
}
