package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/NgigiN/fintrack/internal/finance"
	"github.com/google/uuid"
)

func (d *Database) ListTransactions(ctx context.Context, userID string) ([]finance.Transaction, error) {
	var rows []transactionRow
	err := d.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("date desc").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	out := make([]finance.Transaction, 0, len(rows))
	for _, row := range rows {
		out = append(out, transactionFromRow(row))
	}
	return out, nil
}

// CreateTransaction stores t under a fresh server id and returns the stored record.
func (d *Database) CreateTransaction(ctx context.Context, t finance.Transaction) (finance.Transaction, error) {
	row := transactionToRow(t)
	row.ID = uuid.NewString()
	row.CreatedAt = time.Now().UTC()

	if err := d.db.WithContext(ctx).Create(&row).Error; err != nil {
		return finance.Transaction{}, fmt.Errorf("failed to save transaction: %w", err)
	}
	return transactionFromRow(row), nil
}

func (d *Database) UpdateTransaction(ctx context.Context, id string, patch finance.TransactionPatch) (finance.Transaction, error) {
	var row transactionRow
	if err := d.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return finance.Transaction{}, fmt.Errorf("failed to load transaction %s: %w", id, notFound(err))
	}

	updated := transactionToRow(patch.Apply(transactionFromRow(row)))
	updated.CreatedAt = row.CreatedAt
	if err := d.db.WithContext(ctx).Save(&updated).Error; err != nil {
		return finance.Transaction{}, fmt.Errorf("failed to update transaction %s: %w", id, err)
	}
	return transactionFromRow(updated), nil
}

func (d *Database) DeleteTransaction(ctx context.Context, id string) error {
	res := d.db.WithContext(ctx).Delete(&transactionRow{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete transaction %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("failed to delete transaction %s: %w", id, ErrNotFound)
	}
	return nil
}
