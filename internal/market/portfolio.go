package market

import (
	"github.com/NgigiN/fintrack/internal/finance"
	"github.com/shopspring/decimal"
)

type ValueSource string

const (
	SourceLive     ValueSource = "live"
	SourceSnapshot ValueSource = "snapshot"
	SourceCost     ValueSource = "cost"
)

type Position struct {
	Investment finance.Investment
	Value      decimal.Decimal
	Source     ValueSource
}

type Allocation struct {
	Type  finance.InvestmentType
	Value decimal.Decimal
}

type Portfolio struct {
	Positions  []Position
	Invested   decimal.Decimal
	Value      decimal.Decimal
	Profit     decimal.Decimal
	ProfitPct  decimal.Decimal
	Allocation []Allocation
}

var hundred = decimal.NewFromInt(100)

// Value returns what a position is worth: the live price times the quantity,
// otherwise the stored snapshot when positive, otherwise the cost basis.
func Value(inv finance.Investment, quotes map[string]Quote) (decimal.Decimal, ValueSource) {
	if q, ok := quotes[Symbol(inv.Name)]; ok {
		return q.Price.Mul(inv.Quantity), SourceLive
	}
	if inv.CurrentValue.IsPositive() {
		return inv.CurrentValue, SourceSnapshot
	}
	return inv.AmountInvested, SourceCost
}

// Valuate totals the positions with live quotes where available. Stored
// investments are not modified.
func Valuate(invs []finance.Investment, quotes map[string]Quote) Portfolio {
	p := Portfolio{Invested: decimal.Zero, Value: decimal.Zero, ProfitPct: decimal.Zero}
	byType := map[finance.InvestmentType]int{}

	for _, inv := range invs {
		v, src := Value(inv, quotes)
		p.Positions = append(p.Positions, Position{Investment: inv, Value: v, Source: src})
		p.Invested = p.Invested.Add(inv.AmountInvested)
		p.Value = p.Value.Add(v)

		i, ok := byType[inv.Type]
		if !ok {
			i = len(p.Allocation)
			byType[inv.Type] = i
			p.Allocation = append(p.Allocation, Allocation{Type: inv.Type, Value: decimal.Zero})
		}
		p.Allocation[i].Value = p.Allocation[i].Value.Add(v)
	}

	p.Profit = p.Value.Sub(p.Invested)
	if p.Invested.IsPositive() {
		p.ProfitPct = p.Profit.Div(p.Invested).Mul(hundred)
	}
	return p
}

// Symbols lists the investment names to quote.
func Symbols(invs []finance.Investment) []string {
	out := make([]string, 0, len(invs))
	for _, inv := range invs {
		out = append(out, inv.Name)
	}
	return out
}
