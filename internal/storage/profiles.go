package storage

import (
	"context"
	"fmt"

	"github.com/NgigiN/fintrack/internal/finance"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func (d *Database) GetProfile(ctx context.Context, id string) (finance.Profile, error) {
	var row profileRow
	if err := d.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return finance.Profile{}, fmt.Errorf("failed to load profile %s: %w", id, notFound(err))
	}
	return profileFromRow(row), nil
}

func (d *Database) SaveProfile(ctx context.Context, p finance.Profile) error {
	row := profileToRow(p)
	if err := d.db.WithContext(ctx).Save(&row).Error; err != nil {
		return fmt.Errorf("failed to save profile %s: %w", p.ID, err)
	}
	return nil
}

// AddToReservation adds amount to the stored running total and returns the new total.
func (d *Database) AddToReservation(ctx context.Context, id string, amount decimal.Decimal) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row profileRow
		if err := tx.First(&row, "id = ?", id).Error; err != nil {
			return notFound(err)
		}
		row.ReservationBalance = row.ReservationBalance.Add(amount)
		if err := tx.Save(&row).Error; err != nil {
			return err
		}
		total = row.ReservationBalance
		return nil
	})
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to update reservation for %s: %w", id, err)
	}
	return total, nil
}

// SaveLayout replaces the widget ordering of one dashboard page.
func (d *Database) SaveLayout(ctx context.Context, id, page string, widgetIDs []string) error {
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row profileRow
		if err := tx.First(&row, "id = ?", id).Error; err != nil {
			return notFound(err)
		}
		if row.DashboardLayouts == nil {
			row.DashboardLayouts = map[string][]string{}
		}
		row.DashboardLayouts[page] = append([]string(nil), widgetIDs...)
		return tx.Save(&row).Error
	})
	if err != nil {
		return fmt.Errorf("failed to save %s layout for %s: %w", page, id, err)
	}
	return nil
}
