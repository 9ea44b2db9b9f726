package quickentry

import (
	"testing"
	"time"

	"github.com/NgigiN/fintrack/internal/finance"
)

var now = time.Date(2026, time.March, 15, 9, 30, 0, 0, time.UTC)

func TestParseVariants(t *testing.T) {
	cases := []struct {
		line         string
		kind         finance.Kind
		amount       string
		desc         string
		category     finance.Category
		fixed        bool
		installments int
		date         time.Time
	}{
		{"+1200 Monthly salary #salary fixed", finance.Income, "1200", "Monthly salary", finance.Salary, true, 1, now},
		{"-300 TV #leisure x3", finance.Expense, "300", "TV", finance.Leisure, false, 3, now},
		{"-25.50 Lunch at the market #Food", finance.Expense, "25.5", "Lunch at the market", finance.Food, false, 1, now},
		{"- 1,250.00 Rent #housing fixed @2026-03-05", finance.Expense, "1250", "Rent", finance.Housing, true, 1, time.Date(2026, time.March, 5, 0, 0, 0, 0, time.UTC)},
		{"+80", finance.Income, "80", "Other", finance.Other, false, 1, now},
		{"-40 #transport", finance.Expense, "40", "Transport", finance.Transport, false, 1, now},
	}

	for _, c := range cases {
		e, err := Parse(c.line, now)
		if err != nil {
			t.Fatalf("expected parse ok for %q, got err: %v", c.line, err)
		}
		d := e.Draft
		if d.Kind != c.kind {
			t.Fatalf("%q: wrong kind. want %s got %s", c.line, c.kind, d.Kind)
		}
		if d.Amount.String() != c.amount {
			t.Fatalf("%q: wrong amount. want %s got %s", c.line, c.amount, d.Amount)
		}
		if d.Description != c.desc {
			t.Fatalf("%q: wrong description. want %q got %q", c.line, c.desc, d.Description)
		}
		if d.Category != c.category {
			t.Fatalf("%q: wrong category. want %s got %s", c.line, c.category, d.Category)
		}
		if d.IsFixed != c.fixed {
			t.Fatalf("%q: wrong fixed flag. want %v got %v", c.line, c.fixed, d.IsFixed)
		}
		if e.Installments != c.installments {
			t.Fatalf("%q: wrong installments. want %d got %d", c.line, c.installments, e.Installments)
		}
		if !d.Date.Equal(c.date) {
			t.Fatalf("%q: wrong date. want %s got %s", c.line, c.date, d.Date)
		}
	}
}

func TestParseRejects(t *testing.T) {
	lines := []string{
		"Lunch 25",
		"-0 nothing",
		"-25 Lunch #snacks",
		"-25 Lunch @15/03/2026",
		"+100 Bonus x2",
		"-100 Gym fixed x12",
		"-100 Gym x0",
		"",
	}
	for _, line := range lines {
		if _, err := Parse(line, now); err == nil {
			t.Fatalf("expected error for %q", line)
		}
	}
}

func TestLooks(t *testing.T) {
	for line, want := range map[string]bool{
		"-25 Lunch":       true,
		" +1200 salary":   true,
		"- 5 coffee":      true,
		"how am I doing?": false,
		"!summary":        false,
		"-":               false,
	} {
		if got := Looks(line); got != want {
			t.Fatalf("Looks(%q) = %v, want %v", line, got, want)
		}
	}
}
