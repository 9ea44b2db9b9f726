package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/NgigiN/fintrack/internal/finance"
	"github.com/google/uuid"
)

func (d *Database) ListInvestments(ctx context.Context, userID string) ([]finance.Investment, error) {
	var rows []investmentRow
	err := d.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list investments: %w", err)
	}

	out := make([]finance.Investment, 0, len(rows))
	for _, row := range rows {
		out = append(out, investmentFromRow(row))
	}
	return out, nil
}

func (d *Database) CreateInvestment(ctx context.Context, inv finance.Investment) (finance.Investment, error) {
	row := investmentToRow(inv)
	row.ID = uuid.NewString()
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}

	if err := d.db.WithContext(ctx).Create(&row).Error; err != nil {
		return finance.Investment{}, fmt.Errorf("failed to save investment: %w", err)
	}
	return investmentFromRow(row), nil
}

func (d *Database) UpdateInvestment(ctx context.Context, id string, patch finance.InvestmentPatch) (finance.Investment, error) {
	var row investmentRow
	if err := d.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return finance.Investment{}, fmt.Errorf("failed to load investment %s: %w", id, notFound(err))
	}

	updated := investmentToRow(patch.Apply(investmentFromRow(row)))
	if err := d.db.WithContext(ctx).Save(&updated).Error; err != nil {
		return finance.Investment{}, fmt.Errorf("failed to update investment %s: %w", id, err)
	}
	return investmentFromRow(updated), nil
}

func (d *Database) DeleteInvestment(ctx context.Context, id string) error {
	res := d.db.WithContext(ctx).Delete(&investmentRow{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete investment %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("failed to delete investment %s: %w", id, ErrNotFound)
	}
	return nil
}
