package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/NgigiN/fintrack/internal/finance"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var (
	ErrNoUser        = errors.New("no user logged in")
	ErrInvalidAmount = errors.New("amount must be positive")
	ErrPending       = errors.New("record is not confirmed yet")
	ErrNotFound      = finance.ErrNotFound
)

// SyncState tracks an optimistic insert against its remote confirmation.
type SyncState int

const (
	Unknown SyncState = iota
	Pending
	Confirmed
	RolledBack
)

func (s SyncState) String() string {
	switch s {
	case Pending:
		return "pending"
	case Confirmed:
		return "confirmed"
	case RolledBack:
		return "rolled_back"
	}
	return "unknown"
}

// op follows one temporary id from insert to confirmation or rollback.
type op struct {
	state   SyncState
	finalID string
	// cancelled is set when the record was removed locally before the remote
	// create returned; the confirmed record is then deleted remotely.
	cancelled bool
}

// Store holds the session data of the logged-in user. Every mutation updates
// local state first and then writes through the repository, undoing the local
// change when the write fails.
type Store struct {
	mu   sync.Mutex
	repo Repository
	log  *zap.Logger

	now   func() time.Time
	newID func() string

	user         *finance.Profile
	transactions []finance.Transaction
	investments  []finance.Investment
	ops          map[string]*op
	selected     time.Time
	theme        finance.Theme

	subs    []subscriber
	nextSub int
}

type Option func(*Store)

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func WithIDGenerator(newID func() string) Option {
	return func(s *Store) { s.newID = newID }
}

func New(repo Repository, log *zap.Logger, opts ...Option) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Store{
		repo:  repo,
		log:   log,
		now:   time.Now,
		newID: uuid.NewString,
		ops:   map[string]*op{},
		theme: finance.Light,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.selected = s.now()
	return s
}

// Login loads (or creates) the profile of userID and hydrates the session.
func (s *Store) Login(ctx context.Context, userID, name string) error {
	profile, err := s.repo.GetProfile(ctx, userID)
	switch {
	case errors.Is(err, finance.ErrNotFound):
		profile = finance.Profile{ID: userID, Name: name, Reservation: decimal.Zero}
		if err := s.repo.SaveProfile(ctx, profile); err != nil {
			return fmt.Errorf("create profile: %w", err)
		}
	case err != nil:
		return fmt.Errorf("load profile: %w", err)
	}

	txs, err := s.repo.ListTransactions(ctx, userID)
	if err != nil {
		return fmt.Errorf("load transactions: %w", err)
	}
	invs, err := s.repo.ListInvestments(ctx, userID)
	if err != nil {
		return fmt.Errorf("load investments: %w", err)
	}

	s.mu.Lock()
	s.user = &profile
	s.transactions = txs
	s.investments = invs
	s.ops = map[string]*op{}
	s.selected = s.now()
	ev := s.eventLocked(EventHydrated, "")
	s.mu.Unlock()
	ev.publish()

	s.log.Info("session hydrated",
		zap.String("user_id", userID),
		zap.Int("transactions", len(txs)),
		zap.Int("investments", len(invs)))
	return nil
}

func (s *Store) Logout() {
	s.mu.Lock()
	s.user = nil
	s.transactions = nil
	s.investments = nil
	s.ops = map[string]*op{}
	ev := s.eventLocked(EventCleared, "")
	s.mu.Unlock()
	ev.publish()
}

// User returns a copy of the current profile, or false when nobody is logged in.
func (s *Store) User() (finance.Profile, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return finance.Profile{}, false
	}
	p := *s.user
	p.Layouts = copyLayouts(s.user.Layouts)
	return p, true
}

func (s *Store) Transactions() []finance.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneTransactions(s.transactions)
}

func (s *Store) Investments() []finance.Investment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]finance.Investment(nil), s.investments...)
}

func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.transactions)
}

// ResolveID maps a temporary id to the server id once its create is confirmed.
func (s *Store) ResolveID(id string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resolveLocked(id)
}

func (s *Store) resolveLocked(id string) string {
	if o, ok := s.ops[id]; ok && o.finalID != "" {
		return o.finalID
	}
	return id
}

func (s *Store) SyncState(id string) SyncState {
	s.mu.Lock()
	defer s.mu.Unlock()
	if o, ok := s.ops[id]; ok {
		return o.state
	}
	if indexByID(s.transactions, id, transactionID) >= 0 || indexByID(s.investments, id, investmentID) >= 0 {
		return Confirmed
	}
	return Unknown
}

func (s *Store) SelectedMonth() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected
}

func (s *Store) SetSelectedMonth(t time.Time) {
	s.mu.Lock()
	s.selected = t
	ev := s.eventLocked(EventPreferences, "")
	s.mu.Unlock()
	ev.publish()
}

func (s *Store) Theme() finance.Theme {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.theme
}

func (s *Store) ToggleTheme() finance.Theme {
	s.mu.Lock()
	if s.theme == finance.Dark {
		s.theme = finance.Light
	} else {
		s.theme = finance.Dark
	}
	theme := s.theme
	ev := s.eventLocked(EventPreferences, "")
	s.mu.Unlock()
	ev.publish()
	return theme
}

// Summary totals the selected month.
func (s *Store) Summary() finance.Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	reservation := decimal.Zero
	if s.user != nil {
		reservation = s.user.Reservation
	}
	return finance.MonthSummary(s.transactions, s.selected, reservation)
}

// MonthTransactions returns the transactions that count toward the selected month.
func (s *Store) MonthTransactions() []finance.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []finance.Transaction
	for _, t := range s.transactions {
		if finance.InMonth(t, s.selected) {
			out = append(out, t)
		}
	}
	return cloneTransactions(out)
}

func (s *Store) AnnualProjection(year int) [12]finance.MonthTotals {
	s.mu.Lock()
	defer s.mu.Unlock()
	return finance.AnnualProjection(s.transactions, s.investments, year, s.selected.Location())
}

// AddToReservation accumulates a positive amount into the running reservation
// and persists it.
func (s *Store) AddToReservation(ctx context.Context, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}

	s.mu.Lock()
	if s.user == nil {
		s.mu.Unlock()
		return ErrNoUser
	}
	userID := s.user.ID
	s.user.Reservation = s.user.Reservation.Add(amount)
	ev := s.eventLocked(EventProfile, userID)
	s.mu.Unlock()
	ev.publish()

	total, err := s.repo.AddToReservation(ctx, userID, amount)

	s.mu.Lock()
	if s.user == nil || s.user.ID != userID {
		s.mu.Unlock()
		return err
	}
	if err != nil {
		s.user.Reservation = s.user.Reservation.Sub(amount)
	} else {
		s.user.Reservation = total
	}
	ev = s.eventLocked(EventProfile, userID)
	s.mu.Unlock()
	ev.publish()

	if err != nil {
		s.log.Error("reservation update failed, rolled back", zap.String("user_id", userID), zap.Error(err))
		return err
	}
	return nil
}

// UpdateLayout replaces the widget ordering of a dashboard page and persists it.
func (s *Store) UpdateLayout(ctx context.Context, page string, widgetIDs []string) error {
	s.mu.Lock()
	if s.user == nil {
		s.mu.Unlock()
		return ErrNoUser
	}
	userID := s.user.ID
	if s.user.Layouts == nil {
		s.user.Layouts = map[string][]string{}
	}
	prev, had := s.user.Layouts[page]
	s.user.Layouts[page] = append([]string(nil), widgetIDs...)
	ev := s.eventLocked(EventProfile, userID)
	s.mu.Unlock()
	ev.publish()

	err := s.repo.SaveLayout(ctx, userID, page, widgetIDs)
	if err == nil {
		return nil
	}

	s.mu.Lock()
	if s.user != nil && s.user.ID == userID {
		if had {
			s.user.Layouts[page] = prev
		} else {
			delete(s.user.Layouts, page)
		}
	}
	ev = s.eventLocked(EventProfile, userID)
	s.mu.Unlock()
	ev.publish()

	s.log.Error("layout update failed, rolled back", zap.String("page", page), zap.Error(err))
	return err
}

func copyLayouts(in map[string][]string) map[string][]string {
	if in == nil {
		return nil
	}
	out := make(map[string][]string, len(in))
	for k, v := range in {
		out[k] = append([]string(nil), v...)
	}
	return out
}

func cloneTransactions(in []finance.Transaction) []finance.Transaction {
	if in == nil {
		return nil
	}
	out := make([]finance.Transaction, len(in))
	for i, t := range in {
		if t.Installment != nil {
			inst := *t.Installment
			t.Installment = &inst
		}
		out[i] = t
	}
	return out
}

func transactionID(t finance.Transaction) string { return t.ID }
func investmentID(inv finance.Investment) string { return inv.ID }

func indexByID[T any](items []T, id string, idOf func(T) string) int {
	for i, item := range items {
		if idOf(item) == id {
			return i
		}
	}
	return -1
}

// removeByID returns a new slice without the item; the input is left untouched.
func removeByID[T any](items []T, id string, idOf func(T) string) ([]T, bool) {
	i := indexByID(items, id, idOf)
	if i < 0 {
		return items, false
	}
	out := make([]T, 0, len(items)-1)
	out = append(out, items[:i]...)
	return append(out, items[i+1:]...), true
}

// replaceByID returns a copy of items with the matching item swapped for v, in place.
func replaceByID[T any](items []T, id string, idOf func(T) string, v T) ([]T, bool) {
	i := indexByID(items, id, idOf)
	if i < 0 {
		return items, false
	}
	out := append([]T(nil), items...)
	out[i] = v
	return out, true
}
