package assistant

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/NgigiN/fintrack/internal/finance"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var (
	ErrNoPendingAction = errors.New("no pending action")
	ErrEmptyMessage    = errors.New("empty message")
	ErrBusy            = errors.New("a reply is already in progress")
)

type State string

const (
	StateIdle      State = "idle"
	StateAwaiting  State = "awaiting_response"
	StateResponded State = "responded"
	StateErrored   State = "errored"
)

type ActionState string

const (
	ActionStateNone      ActionState = "none"
	ActionStateStaged    ActionState = "staged"
	ActionStateCommitted ActionState = "committed"
	ActionStateCancelled ActionState = "cancelled"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	Role    Role
	Content string
}

const (
	greeting      = "Hi! I'm your financial assistant. How can I help with your money today?"
	riskCheckText = "Check whether this new transaction affects my future balance."
)

// Ledger is the part of the store a session reads from and commits to.
type Ledger interface {
	User() (finance.Profile, bool)
	Transactions() []finance.Transaction
	AddTransaction(ctx context.Context, draft finance.Draft) (finance.Transaction, error)
}

// PendingAction is a transaction proposed by the assistant and awaiting the
// user's decision.
type PendingAction struct {
	Type ActionType
	Data ActionData
}

// Draft resolves the proposal into a transaction draft, filling in defaults
// for anything the model left out.
func (p PendingAction) Draft(now time.Time) finance.Draft {
	kind := finance.Expense
	switch p.Type {
	case ActionAddIncome:
		kind = finance.Income
	case ActionAddTransaction:
		if strings.EqualFold(p.Data.Type, string(finance.Income)) {
			kind = finance.Income
		}
	}

	desc := strings.TrimSpace(p.Data.Description)
	if desc == "" {
		if kind == finance.Income {
			desc = "Income via assistant"
		} else {
			desc = "Expense via assistant"
		}
	}

	amount := decimal.Zero
	if p.Data.Amount != nil {
		amount = p.Data.Amount.Abs()
	}

	return finance.Draft{
		Description: desc,
		Amount:      amount,
		Kind:        kind,
		Category:    finance.ParseCategory(p.Data.Category),
		Date:        parseDate(p.Data.Date, now),
	}
}

func parseDate(s string, now time.Time) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return now
	}
	if t, err := time.ParseInLocation("2006-01-02", s, now.Location()); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	return now
}

// stageable reports whether an action proposes a new transaction.
func stageable(a *Action) bool {
	if a == nil || a.Data.empty() {
		return false
	}
	switch a.Type {
	case ActionAddExpense, ActionAddIncome, ActionAddTransaction:
		return true
	}
	return false
}

// Session is one chat conversation. It stages at most one proposed
// transaction at a time.
type Session struct {
	responder Responder
	ledger    Ledger
	bubble    *Bubble
	log       *zap.Logger
	now       func() time.Time

	mu          sync.Mutex
	state       State
	messages    []Message
	pending     *PendingAction
	actionState ActionState
}

// NewSession starts a conversation. bubble may be nil.
func NewSession(responder Responder, ledger Ledger, bubble *Bubble, log *zap.Logger) *Session {
	if log == nil {
		log = zap.NewNop()
	}
	return &Session{
		responder:   responder,
		ledger:      ledger,
		bubble:      bubble,
		log:         log,
		now:         time.Now,
		state:       StateIdle,
		messages:    []Message{{Role: RoleAssistant, Content: greeting}},
		actionState: ActionStateNone,
	}
}

func (s *Session) snapshot() (string, Context) {
	name := "friend"
	if p, ok := s.ledger.User(); ok {
		name = p.FirstName(name)
	}
	txs := s.ledger.Transactions()
	return name, Context{Transactions: txs, Balance: finance.Balance(txs)}
}

// Send posts a user message and waits for the reply. A proposed transaction
// in the reply replaces any previously staged one.
func (s *Session) Send(ctx context.Context, text string) (Response, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Response{}, ErrEmptyMessage
	}

	s.mu.Lock()
	if s.state == StateAwaiting {
		s.mu.Unlock()
		return Response{}, ErrBusy
	}
	s.messages = append(s.messages, Message{Role: RoleUser, Content: text})
	s.state = StateAwaiting
	s.pending = nil
	s.actionState = ActionStateNone
	s.mu.Unlock()

	name, c := s.snapshot()
	resp := s.responder.Respond(ctx, name, c, text)

	s.mu.Lock()
	if err := ctx.Err(); err != nil {
		s.state = StateErrored
		s.messages = append(s.messages, Message{Role: RoleAssistant, Content: "Sorry, something went wrong on my side."})
		s.mu.Unlock()
		return Response{}, err
	}
	s.messages = append(s.messages, Message{Role: RoleAssistant, Content: resp.Message})
	if stageable(resp.Action) {
		s.pending = &PendingAction{Type: resp.Action.Type, Data: *resp.Action.Data}
		s.actionState = ActionStateStaged
	}
	s.state = StateResponded
	s.mu.Unlock()

	if s.bubble != nil {
		s.bubble.Show(resp.Risk)
	}
	return resp, nil
}

// Confirm commits the staged transaction through the ledger.
func (s *Session) Confirm(ctx context.Context) (finance.Transaction, error) {
	s.mu.Lock()
	p := s.pending
	if p == nil {
		s.mu.Unlock()
		return finance.Transaction{}, ErrNoPendingAction
	}
	s.pending = nil
	s.mu.Unlock()

	t, err := s.ledger.AddTransaction(ctx, p.Draft(s.now()))

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.actionState = ActionStateNone
		s.messages = append(s.messages, Message{Role: RoleAssistant, Content: "❌ I couldn't add that transaction."})
		s.log.Error("commit assistant action", zap.String("type", string(p.Type)), zap.Error(err))
		return finance.Transaction{}, err
	}
	s.actionState = ActionStateCommitted
	s.messages = append(s.messages, Message{Role: RoleAssistant, Content: "✅ Done! Transaction added."})
	return t, nil
}

// Cancel discards the staged transaction.
func (s *Session) Cancel() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending == nil {
		return ErrNoPendingAction
	}
	s.pending = nil
	s.actionState = ActionStateCancelled
	s.messages = append(s.messages, Message{Role: RoleAssistant, Content: "👍 Cancelled. Anything else?"})
	return nil
}

// CheckRisk asks for a fresh risk assessment without touching the
// conversation. It is skipped while a reply is in progress.
func (s *Session) CheckRisk(ctx context.Context) (RiskAssessment, bool) {
	if s.Busy() {
		return RiskAssessment{}, false
	}
	name, c := s.snapshot()
	resp := s.responder.Respond(ctx, name, c, riskCheckText)
	if ctx.Err() != nil {
		return RiskAssessment{}, false
	}
	if s.bubble != nil {
		s.bubble.Show(resp.Risk)
	}
	return resp.Risk, true
}

func (s *Session) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == StateAwaiting
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) ActionState() ActionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.actionState
}

func (s *Session) Pending() (PendingAction, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending == nil {
		return PendingAction{}, false
	}
	return *s.pending, true
}

func (s *Session) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Message(nil), s.messages...)
}
