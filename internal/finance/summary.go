package finance

import (
	"time"

	"github.com/shopspring/decimal"
)

type Summary struct {
	TotalIncome  decimal.Decimal `json:"totalIncome"`
	TotalExpense decimal.Decimal `json:"totalExpense"`
	Balance      decimal.Decimal `json:"balance"`
	Reservation  decimal.Decimal `json:"reservation"`
}

// InMonth reports whether t counts toward the month containing month.
// Fixed entries recur in every month from the month of their date onward.
// The calendar month of t is taken in month's location.
func InMonth(t Transaction, month time.Time) bool {
	ty, tm, _ := t.Date.In(month.Location()).Date()
	my, mm, _ := month.Date()
	if ty == my && tm == mm {
		return true
	}
	if !t.IsFixed {
		return false
	}
	return ty < my || (ty == my && tm < mm)
}

// MonthSummary totals the transactions that count toward the given month.
func MonthSummary(txs []Transaction, month time.Time, reservation decimal.Decimal) Summary {
	s := Summary{
		TotalIncome:  decimal.Zero,
		TotalExpense: decimal.Zero,
		Reservation:  reservation,
	}
	for _, t := range txs {
		if !InMonth(t, month) {
			continue
		}
		switch t.Kind {
		case Income:
			s.TotalIncome = s.TotalIncome.Add(t.Amount)
		case Expense:
			s.TotalExpense = s.TotalExpense.Add(t.Amount)
		}
	}
	s.Balance = s.TotalIncome.Sub(s.TotalExpense)
	return s
}

// Balance is income minus expense over every transaction given.
func Balance(txs []Transaction) decimal.Decimal {
	b := decimal.Zero
	for _, t := range txs {
		switch t.Kind {
		case Income:
			b = b.Add(t.Amount)
		case Expense:
			b = b.Sub(t.Amount)
		}
	}
	return b
}

type MonthTotals struct {
	Month      time.Month      `json:"month"`
	Income     decimal.Decimal `json:"income"`
	Expense    decimal.Decimal `json:"expense"`
	Investment decimal.Decimal `json:"investment"`
	Balance    decimal.Decimal `json:"balance"`
}

// AnnualProjection spreads the year's cash flow over twelve months using the
// same fixed-entry rule as MonthSummary. Investments count as outflow in the
// month they were made.
func AnnualProjection(txs []Transaction, investments []Investment, year int, loc *time.Location) [12]MonthTotals {
	if loc == nil {
		loc = time.UTC
	}
	var out [12]MonthTotals
	for i := range out {
		month := time.Date(year, time.Month(i+1), 1, 0, 0, 0, 0, loc)
		s := MonthSummary(txs, month, decimal.Zero)
		out[i] = MonthTotals{
			Month:      month.Month(),
			Income:     s.TotalIncome,
			Expense:    s.TotalExpense,
			Investment: decimal.Zero,
		}
	}
	for _, inv := range investments {
		made := inv.CreatedAt.In(loc)
		if made.Year() != year {
			continue
		}
		m := made.Month() - 1
		out[m].Investment = out[m].Investment.Add(inv.AmountInvested)
	}
	for i := range out {
		out[i].Balance = out[i].Income.Sub(out[i].Expense).Sub(out[i].Investment)
	}
	return out
}

// HealthScore rates a month from 0 to 100: up to 50 for the savings ratio,
// 30 when expenses stay below income, 20 for holding a reservation.
func HealthScore(s Summary) int {
	score := 0
	ratio := decimal.Zero
	if s.TotalIncome.IsPositive() {
		ratio = s.TotalIncome.Sub(s.TotalExpense).Div(s.TotalIncome)
	}
	switch {
	case ratio.GreaterThan(decimal.NewFromFloat(0.20)):
		score += 50
	case ratio.GreaterThan(decimal.NewFromFloat(0.10)):
		score += 30
	case ratio.IsPositive():
		score += 10
	}
	if s.TotalExpense.LessThan(s.TotalIncome) {
		score += 30
	}
	if s.Reservation.IsPositive() {
		score += 20
	}
	return score
}

// CommittedCost estimates next month's locked-in spending: fixed expenses plus
// installments that have not reached their last part.
func CommittedCost(txs []Transaction) decimal.Decimal {
	total := decimal.Zero
	for _, t := range txs {
		if t.Kind != Expense {
			continue
		}
		if t.IsFixed {
			total = total.Add(t.Amount)
			continue
		}
		if t.Installment != nil && t.Installment.Current < t.Installment.Total {
			total = total.Add(t.Amount)
		}
	}
	return total
}
