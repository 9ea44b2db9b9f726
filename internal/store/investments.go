package store

import (
	"context"

	"github.com/NgigiN/fintrack/internal/finance"
	"go.uber.org/zap"
)

// AddInvestment follows the same optimistic contract as AddTransaction.
func (s *Store) AddInvestment(ctx context.Context, inv finance.Investment) (finance.Investment, error) {
	s.mu.Lock()
	if s.user == nil {
		s.mu.Unlock()
		return finance.Investment{}, ErrNoUser
	}
	tempID := s.newID()
	inv.ID = tempID
	inv.UserID = s.user.ID
	if inv.CreatedAt.IsZero() {
		inv.CreatedAt = s.now()
	}
	s.investments = append([]finance.Investment{inv}, s.investments...)
	s.ops[tempID] = &op{state: Pending}
	ev := s.eventLocked(EventInvestments, tempID)
	s.mu.Unlock()
	ev.publish()

	saved, err := s.repo.CreateInvestment(ctx, inv)

	s.mu.Lock()
	o := s.ops[tempID]
	if o == nil {
		s.mu.Unlock()
		return saved, err
	}
	if err != nil {
		o.state = RolledBack
		s.investments, _ = removeByID(s.investments, tempID, investmentID)
	} else {
		o.state = Confirmed
		o.finalID = saved.ID
		s.investments, _ = replaceByID(s.investments, tempID, investmentID, saved)
	}
	cancelled := o.cancelled
	ev = s.eventLocked(EventInvestments, tempID)
	s.mu.Unlock()
	ev.publish()

	if err != nil {
		s.log.Error("create investment failed, rolled back", zap.String("name", inv.Name), zap.Error(err))
		return finance.Investment{}, err
	}
	if cancelled {
		if err := s.repo.DeleteInvestment(ctx, saved.ID); err != nil {
			s.log.Error("delete of cancelled investment failed", zap.String("id", saved.ID), zap.Error(err))
		}
	}
	return saved, nil
}

func (s *Store) RemoveInvestment(ctx context.Context, id string) error {
	s.mu.Lock()
	id = s.resolveLocked(id)
	if o, ok := s.ops[id]; ok && o.state == Pending {
		o.cancelled = true
		s.investments, _ = removeByID(s.investments, id, investmentID)
		ev := s.eventLocked(EventInvestments, id)
		s.mu.Unlock()
		ev.publish()
		return nil
	}
	snapshot := s.investments
	var removed bool
	s.investments, removed = removeByID(s.investments, id, investmentID)
	if !removed {
		s.mu.Unlock()
		return ErrNotFound
	}
	ev := s.eventLocked(EventInvestments, id)
	s.mu.Unlock()
	ev.publish()

	if err := s.repo.DeleteInvestment(ctx, id); err != nil {
		s.mu.Lock()
		s.investments = snapshot
		ev := s.eventLocked(EventInvestments, id)
		s.mu.Unlock()
		ev.publish()

		s.log.Error("delete investment failed, restored list", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

// UpdateInvestment re-saves a position, e.g. to refresh its stored value snapshot.
func (s *Store) UpdateInvestment(ctx context.Context, id string, patch finance.InvestmentPatch) (finance.Investment, error) {
	s.mu.Lock()
	id = s.resolveLocked(id)
	if o, ok := s.ops[id]; ok && o.state == Pending {
		s.mu.Unlock()
		return finance.Investment{}, ErrPending
	}
	i := indexByID(s.investments, id, investmentID)
	if i < 0 {
		s.mu.Unlock()
		return finance.Investment{}, ErrNotFound
	}
	prev := s.investments[i]
	s.investments, _ = replaceByID(s.investments, id, investmentID, patch.Apply(prev))
	ev := s.eventLocked(EventInvestments, id)
	s.mu.Unlock()
	ev.publish()

	saved, err := s.repo.UpdateInvestment(ctx, id, patch)

	s.mu.Lock()
	if err != nil {
		s.investments, _ = replaceByID(s.investments, id, investmentID, prev)
	} else {
		s.investments, _ = replaceByID(s.investments, id, investmentID, saved)
	}
	ev = s.eventLocked(EventInvestments, id)
	s.mu.Unlock()
	ev.publish()

	if err != nil {
		s.log.Error("update investment failed, rolled back", zap.String("id", id), zap.Error(err))
		return finance.Investment{}, err
	}
	return saved, nil
}
