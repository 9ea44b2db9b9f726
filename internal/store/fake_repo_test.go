package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/NgigiN/fintrack/internal/finance"
	"github.com/shopspring/decimal"
)

// fakeRepo is an in-memory Repository with switchable failures.
type fakeRepo struct {
	mu       sync.Mutex
	seq      int
	txs      map[string]finance.Transaction
	invs     map[string]finance.Investment
	profiles map[string]finance.Profile

	createErr      error
	deleteErr      error
	updateErr      error
	reservationErr error
	layoutErr      error

	// gate, when set, holds every CreateTransaction until it receives.
	gate chan struct{}
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		txs:      map[string]finance.Transaction{},
		invs:     map[string]finance.Investment{},
		profiles: map[string]finance.Profile{},
	}
}

func (r *fakeRepo) nextID(prefix string) string {
	r.seq++
	return fmt.Sprintf("%s-%d", prefix, r.seq)
}

func (r *fakeRepo) seed(txs ...finance.Transaction) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range txs {
		r.txs[t.ID] = t
	}
}

func (r *fakeRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.txs)
}

func (r *fakeRepo) ListTransactions(_ context.Context, userID string) ([]finance.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []finance.Transaction
	for _, t := range r.txs {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

func (r *fakeRepo) CreateTransaction(_ context.Context, t finance.Transaction) (finance.Transaction, error) {
	r.mu.Lock()
	gate := r.gate
	r.mu.Unlock()
	if gate != nil {
		<-gate
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return finance.Transaction{}, r.createErr
	}
	t.ID = r.nextID("tx")
	r.txs[t.ID] = t
	return t, nil
}

func (r *fakeRepo) UpdateTransaction(_ context.Context, id string, patch finance.TransactionPatch) (finance.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateErr != nil {
		return finance.Transaction{}, r.updateErr
	}
	t, ok := r.txs[id]
	if !ok {
		return finance.Transaction{}, finance.ErrNotFound
	}
	t = patch.Apply(t)
	r.txs[id] = t
	return t, nil
}

func (r *fakeRepo) DeleteTransaction(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.deleteErr != nil {
		return r.deleteErr
	}
	if _, ok := r.txs[id]; !ok {
		return finance.ErrNotFound
	}
	delete(r.txs, id)
	return nil
}

func (r *fakeRepo) ListInvestments(_ context.Context, userID string) ([]finance.Investment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []finance.Investment
	for _, inv := range r.invs {
		if inv.UserID == userID {
			out = append(out, inv)
		}
	}
	return out, nil
}

func (r *fakeRepo) CreateInvestment(_ context.Context, inv finance.Investment) (finance.Investment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return finance.Investment{}, r.createErr
	}
	inv.ID = r.nextID("inv")
	r.invs[inv.ID] = inv
	return inv, nil
}

func (r *fakeRepo) UpdateInvestment(_ context.Context, id string, patch finance.InvestmentPatch) (finance.Investment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateErr != nil {
		return finance.Investment{}, r.updateErr
	}
	inv, ok := r.invs[id]
	if !ok {
		return finance.Investment{}, finance.ErrNotFound
	}
	inv = patch.Apply(inv)
	r.invs[id] = inv
	return inv, nil
}

func (r *fakeRepo) DeleteInvestment(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.deleteErr != nil {
		return r.deleteErr
	}
	delete(r.invs, id)
	return nil
}

func (r *fakeRepo) GetProfile(_ context.Context, id string) (finance.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[id]
	if !ok {
		return finance.Profile{}, fmt.Errorf("load profile %s: %w", id, finance.ErrNotFound)
	}
	return p, nil
}

func (r *fakeRepo) SaveProfile(_ context.Context, p finance.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.profiles[p.ID] = p
	return nil
}

func (r *fakeRepo) AddToReservation(_ context.Context, id string, amount decimal.Decimal) (decimal.Decimal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.reservationErr != nil {
		return decimal.Zero, r.reservationErr
	}
	p := r.profiles[id]
	p.Reservation = p.Reservation.Add(amount)
	r.profiles[id] = p
	return p.Reservation, nil
}

func (r *fakeRepo) SaveLayout(_ context.Context, id, page string, widgetIDs []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.layoutErr != nil {
		return r.layoutErr
	}
	p := r.profiles[id]
	if p.Layouts == nil {
		p.Layouts = map[string][]string{}
	}
	p.Layouts[page] = append([]string(nil), widgetIDs...)
	r.profiles[id] = p
	return nil
}
