package quickentry

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/NgigiN/fintrack/internal/finance"
	"github.com/shopspring/decimal"
)

// Entry is a parsed one-line transaction. Installments is 1 for a single
// charge.
type Entry struct {
	Draft        finance.Draft
	Installments int
}

var (
	// +1200 Monthly salary #salary fixed
	// -300.50 TV #leisure x3 @2026-03-10
	lineRe        = regexp.MustCompile(`^([+-])\s*([\d,]*\d(?:\.\d{1,2})?)(?:\s+(.*))?$`)
	installmentRe = regexp.MustCompile(`(?i)^x(\d{1,3})$`)
	startRe       = regexp.MustCompile(`^[+-]\s*\d`)
)

// Looks reports whether line is meant as a quick entry.
func Looks(line string) bool {
	return startRe.MatchString(strings.TrimSpace(line))
}

// Parse reads a quick entry. The sign gives the direction, #tag the category,
// xN an installment count, "fixed" a recurring entry and @YYYY-MM-DD the date.
// Anything else is the description.
func Parse(line string, now time.Time) (*Entry, error) {
	matches := lineRe.FindStringSubmatch(strings.TrimSpace(line))
	if matches == nil {
		return nil, fmt.Errorf("not a quick entry, expected e.g. \"-25.50 Lunch #food\"")
	}

	amount, err := decimal.NewFromString(strings.ReplaceAll(matches[2], ",", ""))
	if err != nil {
		return nil, fmt.Errorf("failed to parse amount: %w", err)
	}
	if !amount.IsPositive() {
		return nil, fmt.Errorf("amount must be greater than zero")
	}

	e := &Entry{
		Draft: finance.Draft{
			Amount:   amount,
			Kind:     finance.Expense,
			Category: finance.Other,
			Date:     now,
		},
		Installments: 1,
	}
	if matches[1] == "+" {
		e.Draft.Kind = finance.Income
	}

	var words []string
	for _, tok := range strings.Fields(matches[3]) {
		switch {
		case strings.HasPrefix(tok, "#") && len(tok) > 1:
			label := tok[1:]
			if !finance.IsCategory(label) {
				return nil, fmt.Errorf("unknown category %q", label)
			}
			e.Draft.Category = finance.ParseCategory(label)
		case strings.HasPrefix(tok, "@") && len(tok) > 1:
			date, err := time.ParseInLocation("2006-01-02", tok[1:], now.Location())
			if err != nil {
				return nil, fmt.Errorf("failed to parse date: %w", err)
			}
			e.Draft.Date = date
		case strings.EqualFold(tok, "fixed"):
			e.Draft.IsFixed = true
		case installmentRe.MatchString(tok):
			n, _ := strconv.Atoi(installmentRe.FindStringSubmatch(tok)[1])
			if n < 1 {
				return nil, fmt.Errorf("installment count must be at least 1")
			}
			e.Installments = n
		default:
			words = append(words, tok)
		}
	}

	e.Draft.Description = strings.Join(words, " ")
	if e.Draft.Description == "" {
		e.Draft.Description = string(e.Draft.Category)
	}

	if e.Installments > 1 {
		if e.Draft.Kind != finance.Expense {
			return nil, fmt.Errorf("installments only apply to expenses")
		}
		if e.Draft.IsFixed {
			return nil, fmt.Errorf("a fixed entry cannot be split into installments")
		}
	}

	return e, nil
}
