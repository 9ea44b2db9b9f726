package storage

import (
	"time"

	"github.com/NgigiN/fintrack/internal/finance"
	"github.com/shopspring/decimal"
)

// transactionRow is the durable shape of a finance.Transaction.
type transactionRow struct {
	ID                 string          `gorm:"column:id;primaryKey"`
	UserID             string          `gorm:"column:user_id;index;not null"`
	Description        string          `gorm:"column:description"`
	Amount             decimal.Decimal `gorm:"column:amount;type:decimal(15,2)"`
	Type               string          `gorm:"column:type"`
	Category           string          `gorm:"column:category"`
	Date               time.Time       `gorm:"column:date;index"`
	IsFixed            bool            `gorm:"column:is_fixed"`
	InstallmentCurrent *int            `gorm:"column:installment_current"`
	InstallmentTotal   *int            `gorm:"column:installment_total"`
	CreatedAt          time.Time       `gorm:"column:created_at"`
}

func (transactionRow) TableName() string { return "transactions" }

func transactionToRow(t finance.Transaction) transactionRow {
	row := transactionRow{
		ID:          t.ID,
		UserID:      t.UserID,
		Description: t.Description,
		Amount:      t.Amount,
		Type:        string(t.Kind),
		Category:    string(t.Category),
		Date:        t.Date.UTC(),
		IsFixed:     t.IsFixed,
	}
	if t.Installment != nil {
		cur, total := t.Installment.Current, t.Installment.Total
		row.InstallmentCurrent = &cur
		row.InstallmentTotal = &total
	}
	return row
}

func transactionFromRow(row transactionRow) finance.Transaction {
	t := finance.Transaction{
		ID:          row.ID,
		UserID:      row.UserID,
		Description: row.Description,
		Amount:      row.Amount,
		Kind:        finance.Kind(row.Type),
		Category:    finance.ParseCategory(row.Category),
		Date:        row.Date,
		IsFixed:     row.IsFixed,
	}
	if row.InstallmentCurrent != nil && row.InstallmentTotal != nil {
		t.Installment = &finance.Installment{
			Current: *row.InstallmentCurrent,
			Total:   *row.InstallmentTotal,
		}
	}
	return t
}

type investmentRow struct {
	ID             string          `gorm:"column:id;primaryKey"`
	UserID         string          `gorm:"column:user_id;index;not null"`
	Name           string          `gorm:"column:name"`
	Type           string          `gorm:"column:type"`
	AmountInvested decimal.Decimal `gorm:"column:amount_invested;type:decimal(20,8)"`
	CurrentValue   decimal.Decimal `gorm:"column:current_value;type:decimal(20,8)"`
	Quantity       decimal.Decimal `gorm:"column:quantity;type:decimal(20,8)"`
	CreatedAt      time.Time       `gorm:"column:created_at;index"`
}

func (investmentRow) TableName() string { return "investments" }

func investmentToRow(inv finance.Investment) investmentRow {
	return investmentRow{
		ID:             inv.ID,
		UserID:         inv.UserID,
		Name:           inv.Name,
		Type:           string(inv.Type),
		AmountInvested: inv.AmountInvested,
		CurrentValue:   inv.CurrentValue,
		Quantity:       inv.Quantity,
		CreatedAt:      inv.CreatedAt.UTC(),
	}
}

func investmentFromRow(row investmentRow) finance.Investment {
	return finance.Investment{
		ID:             row.ID,
		UserID:         row.UserID,
		Name:           row.Name,
		Type:           finance.ParseInvestmentType(row.Type),
		AmountInvested: row.AmountInvested,
		CurrentValue:   row.CurrentValue,
		Quantity:       row.Quantity,
		CreatedAt:      row.CreatedAt,
	}
}

type profileRow struct {
	ID                 string              `gorm:"column:id;primaryKey"`
	Name               string              `gorm:"column:name"`
	Avatar             string              `gorm:"column:avatar"`
	IsPremium          bool                `gorm:"column:is_premium"`
	TrialStart         *time.Time          `gorm:"column:trial_start"`
	DashboardLayouts   map[string][]string `gorm:"column:dashboard_layouts;serializer:json"`
	ReservationBalance decimal.Decimal     `gorm:"column:reservation_balance;type:decimal(15,2)"`
	UpdatedAt          time.Time           `gorm:"column:updated_at"`
}

func (profileRow) TableName() string { return "profiles" }

func profileToRow(p finance.Profile) profileRow {
	return profileRow{
		ID:                 p.ID,
		Name:               p.Name,
		Avatar:             p.Avatar,
		IsPremium:          p.IsPremium,
		TrialStart:         p.TrialStart,
		DashboardLayouts:   copyLayouts(p.Layouts),
		ReservationBalance: p.Reservation,
	}
}

func profileFromRow(row profileRow) finance.Profile {
	return finance.Profile{
		ID:          row.ID,
		Name:        row.Name,
		Avatar:      row.Avatar,
		IsPremium:   row.IsPremium,
		TrialStart:  row.TrialStart,
		Layouts:     copyLayouts(row.DashboardLayouts),
		Reservation: row.ReservationBalance,
	}
}

func copyLayouts(in map[string][]string) map[string][]string {
	if in == nil {
		return nil
	}
	out := make(map[string][]string, len(in))
	for page, ids := range in {
		out[page] = append([]string(nil), ids...)
	}
	return out
}
