package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/NgigiN/fintrack/internal/finance"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// AddTransaction inserts the draft at the head of the list under a temporary
// id, then creates it remotely. On success the temporary record is swapped in
// place for the stored one; on failure it is removed and the error returned.
// Without a logged-in user nothing happens and ErrNoUser is returned.
func (s *Store) AddTransaction(ctx context.Context, draft finance.Draft) (finance.Transaction, error) {
	s.mu.Lock()
	if s.user == nil {
		s.mu.Unlock()
		return finance.Transaction{}, ErrNoUser
	}
	tempID := s.newID()
	local := draft.Transaction(tempID, s.user.ID)
	if local.Date.IsZero() {
		local.Date = s.now()
	}
	s.transactions = append([]finance.Transaction{local}, s.transactions...)
	s.ops[tempID] = &op{state: Pending}
	ev := s.eventLocked(EventAdded, tempID)
	s.mu.Unlock()
	ev.publish()

	saved, err := s.repo.CreateTransaction(ctx, local)

	s.mu.Lock()
	o := s.ops[tempID]
	if o == nil {
		// logged out while in flight
		s.mu.Unlock()
		return saved, err
	}
	if err != nil {
		o.state = RolledBack
		var removed bool
		s.transactions, removed = removeByID(s.transactions, tempID, transactionID)
		ev := s.eventLocked(EventRolledBack, tempID)
		s.mu.Unlock()
		if removed {
			ev.publish()
		}
		s.log.Error("create transaction failed, rolled back",
			zap.String("temp_id", tempID),
			zap.String("description", local.Description),
			zap.Error(err))
		return finance.Transaction{}, err
	}

	o.state = Confirmed
	o.finalID = saved.ID
	if o.cancelled {
		s.mu.Unlock()
		s.log.Info("transaction removed before confirmation, deleting remote copy",
			zap.String("temp_id", tempID), zap.String("id", saved.ID))
		if err := s.repo.DeleteTransaction(ctx, saved.ID); err != nil {
			s.log.Error("delete of cancelled transaction failed", zap.String("id", saved.ID), zap.Error(err))
		}
		return saved, nil
	}
	s.transactions, _ = replaceByID(s.transactions, tempID, transactionID, saved)
	ev = s.eventLocked(EventConfirmed, saved.ID)
	s.mu.Unlock()
	ev.publish()

	return saved, nil
}

// AddInstallments splits a purchase into n monthly parts, each carrying its
// share of the total. The description gets an "(i/n)" suffix.
func (s *Store) AddInstallments(ctx context.Context, draft finance.Draft, n int) ([]finance.Transaction, error) {
	if n < 2 {
		t, err := s.AddTransaction(ctx, draft)
		if err != nil {
			return nil, err
		}
		return []finance.Transaction{t}, nil
	}
	if draft.Date.IsZero() {
		draft.Date = s.now()
	}

	share := draft.Amount.Div(decimal.NewFromInt(int64(n))).Round(2)
	var (
		out  []finance.Transaction
		errs []error
	)
	for i := 0; i < n; i++ {
		part := draft
		part.Description = fmt.Sprintf("%s (%d/%d)", draft.Description, i+1, n)
		part.Amount = share
		part.Date = draft.Date.AddDate(0, i, 0)
		part.IsFixed = false
		part.Installment = &finance.Installment{Current: i + 1, Total: n}

		t, err := s.AddTransaction(ctx, part)
		if errors.Is(err, ErrNoUser) {
			return nil, err
		}
		if err != nil {
			errs = append(errs, err)
			continue
		}
		out = append(out, t)
	}
	return out, errors.Join(errs...)
}

// RemoveTransaction drops the record locally, then deletes it remotely. When
// the delete fails the whole previous list is restored.
func (s *Store) RemoveTransaction(ctx context.Context, id string) error {
	s.mu.Lock()
	id = s.resolveLocked(id)
	if o, ok := s.ops[id]; ok && o.state == Pending {
		o.cancelled = true
		s.transactions, _ = removeByID(s.transactions, id, transactionID)
		ev := s.eventLocked(EventRemoved, id)
		s.mu.Unlock()
		ev.publish()
		return nil
	}

	snapshot := s.transactions
	var removed bool
	s.transactions, removed = removeByID(s.transactions, id, transactionID)
	if !removed {
		s.mu.Unlock()
		return ErrNotFound
	}
	ev := s.eventLocked(EventRemoved, id)
	s.mu.Unlock()
	ev.publish()

	if err := s.repo.DeleteTransaction(ctx, id); err != nil {
		s.mu.Lock()
		s.transactions = snapshot
		ev := s.eventLocked(EventRestored, id)
		s.mu.Unlock()
		ev.publish()

		s.log.Error("delete transaction failed, restored list", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

// UpdateTransaction applies a partial update locally and remotely, restoring
// the previous record if the remote update fails.
func (s *Store) UpdateTransaction(ctx context.Context, id string, patch finance.TransactionPatch) (finance.Transaction, error) {
	s.mu.Lock()
	id = s.resolveLocked(id)
	if o, ok := s.ops[id]; ok && o.state == Pending {
		s.mu.Unlock()
		return finance.Transaction{}, ErrPending
	}
	i := indexByID(s.transactions, id, transactionID)
	if i < 0 {
		s.mu.Unlock()
		return finance.Transaction{}, ErrNotFound
	}
	prev := s.transactions[i]
	s.transactions, _ = replaceByID(s.transactions, id, transactionID, patch.Apply(prev))
	ev := s.eventLocked(EventUpdated, id)
	s.mu.Unlock()
	ev.publish()

	saved, err := s.repo.UpdateTransaction(ctx, id, patch)

	s.mu.Lock()
	if err != nil {
		s.transactions, _ = replaceByID(s.transactions, id, transactionID, prev)
	} else {
		s.transactions, _ = replaceByID(s.transactions, id, transactionID, saved)
	}
	ev = s.eventLocked(EventUpdated, id)
	s.mu.Unlock()
	ev.publish()

	if err != nil {
		s.log.Error("update transaction failed, rolled back", zap.String("id", id), zap.Error(err))
		return finance.Transaction{}, err
	}
	return saved, nil
}

// SetFixedSalary replaces every fixed salary entry with a single one of the
// given amount, or with none when amount is zero. Each removal is independent,
// so a partial failure can leave local and remote copies out of step; the
// failures are joined into the returned error.
func (s *Store) SetFixedSalary(ctx context.Context, amount decimal.Decimal) error {
	s.mu.Lock()
	if s.user == nil {
		s.mu.Unlock()
		return ErrNoUser
	}
	var ids []string
	for _, t := range s.transactions {
		if t.IsSalary() {
			ids = append(ids, t.ID)
		}
	}
	now := s.now()
	s.mu.Unlock()

	var errs []error
	for _, id := range ids {
		if err := s.RemoveTransaction(ctx, id); err != nil {
			errs = append(errs, fmt.Errorf("remove salary %s: %w", id, err))
		}
	}

	if amount.IsPositive() {
		_, err := s.AddTransaction(ctx, finance.Draft{
			Description: finance.SalaryLabel,
			Amount:      amount,
			Kind:        finance.Income,
			Category:    finance.Salary,
			Date:        now,
			IsFixed:     true,
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("add salary: %w", err))
		}
	}
	return errors.Join(errs...)
}
