package finance

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ErrNotFound is returned by repositories and the store when a record does not exist.
var ErrNotFound = errors.New("record not found")

// Kind is the direction of a transaction.
type Kind string

const (
	Income  Kind = "income"
	Expense Kind = "expense"
)

type Category string

const (
	Salary    Category = "Salary"
	Food      Category = "Food"
	Housing   Category = "Housing"
	Transport Category = "Transport"
	Leisure   Category = "Leisure"
	Health    Category = "Health"
	Education Category = "Education"
	Other     Category = "Other"
)

// Categories lists the closed label set in display order.
var Categories = []Category{Salary, Food, Housing, Transport, Leisure, Health, Education, Other}

// SalaryLabel is the reserved description of the recurring salary entry.
const SalaryLabel = "Monthly Salary"

// ParseCategory matches a label case-insensitively. Unknown labels become Other.
func ParseCategory(label string) Category {
	label = strings.TrimSpace(label)
	for _, c := range Categories {
		if strings.EqualFold(string(c), label) {
			return c
		}
	}
	return Other
}

// IsCategory reports whether label names one of the known categories.
func IsCategory(label string) bool {
	label = strings.TrimSpace(label)
	for _, c := range Categories {
		if strings.EqualFold(string(c), label) {
			return true
		}
	}
	return false
}

type Installment struct {
	Current int `json:"current"`
	Total   int `json:"total"`
}

// Transaction is a single income or expense entry. For installment purchases
// Amount is the per-installment share.
type Transaction struct {
	ID          string          `json:"id"`
	UserID      string          `json:"userId"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Kind        Kind            `json:"type"`
	Category    Category        `json:"category"`
	Date        time.Time       `json:"date"`
	IsFixed     bool            `json:"isFixed"`
	Installment *Installment    `json:"installment,omitempty"`
}

// Draft is a transaction that has not been given an identity yet.
type Draft struct {
	Description string
	Amount      decimal.Decimal
	Kind        Kind
	Category    Category
	Date        time.Time
	IsFixed     bool
	Installment *Installment
}

// Transaction materialises the draft for the given identity.
func (d Draft) Transaction(id, userID string) Transaction {
	var inst *Installment
	if d.Installment != nil {
		cp := *d.Installment
		inst = &cp
	}
	return Transaction{
		ID:          id,
		UserID:      userID,
		Description: d.Description,
		Amount:      d.Amount,
		Kind:        d.Kind,
		Category:    d.Category,
		Date:        d.Date,
		IsFixed:     d.IsFixed,
		Installment: inst,
	}
}

// TransactionPatch carries the fields of a partial update. Nil fields are left alone.
type TransactionPatch struct {
	Description *string
	Amount      *decimal.Decimal
	Kind        *Kind
	Category    *Category
	Date        *time.Time
	IsFixed     *bool
}

// Apply returns t with the non-nil patch fields written over it.
func (p TransactionPatch) Apply(t Transaction) Transaction {
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Amount != nil {
		t.Amount = *p.Amount
	}
	if p.Kind != nil {
		t.Kind = *p.Kind
	}
	if p.Category != nil {
		t.Category = *p.Category
	}
	if p.Date != nil {
		t.Date = *p.Date
	}
	if p.IsFixed != nil {
		t.IsFixed = *p.IsFixed
	}
	return t
}

// IsSalary reports whether t carries the fixed salary signature.
func (t Transaction) IsSalary() bool {
	return t.Kind == Income && t.IsFixed && t.Description == SalaryLabel
}

type InvestmentType string

const (
	Stocks      InvestmentType = "Stocks"
	REITs       InvestmentType = "REITs"
	FixedIncome InvestmentType = "FixedIncome"
	Crypto      InvestmentType = "Crypto"
	Funds       InvestmentType = "Funds"
	OtherAsset  InvestmentType = "Other"
)

var InvestmentTypes = []InvestmentType{Stocks, REITs, FixedIncome, Crypto, Funds, OtherAsset}

func ParseInvestmentType(label string) InvestmentType {
	for _, t := range InvestmentTypes {
		if strings.EqualFold(string(t), strings.TrimSpace(label)) {
			return t
		}
	}
	return OtherAsset
}

// Investment is a position. CurrentValue is a stored snapshot and may be stale.
type Investment struct {
	ID             string          `json:"id"`
	UserID         string          `json:"userId"`
	Name           string          `json:"name"`
	Type           InvestmentType  `json:"type"`
	AmountInvested decimal.Decimal `json:"amountInvested"`
	CurrentValue   decimal.Decimal `json:"currentValue"`
	Quantity       decimal.Decimal `json:"quantity"`
	CreatedAt      time.Time       `json:"date"`
}

type InvestmentPatch struct {
	Name           *string
	Type           *InvestmentType
	AmountInvested *decimal.Decimal
	CurrentValue   *decimal.Decimal
	Quantity       *decimal.Decimal
}

func (p InvestmentPatch) Apply(inv Investment) Investment {
	if p.Name != nil {
		inv.Name = *p.Name
	}
	if p.Type != nil {
		inv.Type = *p.Type
	}
	if p.AmountInvested != nil {
		inv.AmountInvested = *p.AmountInvested
	}
	if p.CurrentValue != nil {
		inv.CurrentValue = *p.CurrentValue
	}
	if p.Quantity != nil {
		inv.Quantity = *p.Quantity
	}
	return inv
}

// Dashboard pages with a stored widget ordering.
const (
	PagePrincipal = "principal"
	PageAnalytics = "analytics"
)

type Profile struct {
	ID          string              `json:"id"`
	Name        string              `json:"name"`
	Avatar      string              `json:"avatar,omitempty"`
	IsPremium   bool                `json:"isPremium"`
	TrialStart  *time.Time          `json:"trialStart,omitempty"`
	Layouts     map[string][]string `json:"dashboardLayouts,omitempty"`
	Reservation decimal.Decimal     `json:"reservation"`
}

// FirstName is the first word of the display name, or fallback when empty.
func (p Profile) FirstName(fallback string) string {
	fields := strings.Fields(p.Name)
	if len(fields) == 0 {
		return fallback
	}
	return fields[0]
}

type Theme string

const (
	Light Theme = "light"
	Dark  Theme = "dark"
)
