package discord

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/NgigiN/fintrack/internal/assistant"
	"github.com/NgigiN/fintrack/internal/finance"
	"github.com/NgigiN/fintrack/internal/storage"
	"github.com/NgigiN/fintrack/internal/store"
	"github.com/bwmarrin/discordgo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChannel struct {
	mu      sync.Mutex
	seq     int
	sent    []string
	deleted []string

	// posting, when set, is signalled and then held until release receives.
	posting chan struct{}
	release chan struct{}
}

func (f *fakeChannel) ChannelMessageSend(_ string, content string, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	if f.posting != nil {
		f.posting <- struct{}{}
		<-f.release
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	f.sent = append(f.sent, content)
	return &discordgo.Message{ID: fmt.Sprintf("m%d", f.seq), Content: content}, nil
}

func (f *fakeChannel) ChannelMessageDelete(_ string, id string, _ ...discordgo.RequestOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, id)
	return nil
}

type cannedResponder struct {
	resp assistant.Response
}

func (c *cannedResponder) Respond(context.Context, string, assistant.Context, string) assistant.Response {
	return c.resp
}

func newTestBot(t *testing.T, resp assistant.Response) (*Bot, *store.Store, *fakeChannel) {
	t.Helper()
	db, err := storage.NewDatabase("sqlite:" + filepath.Join(t.TempDir(), "bot.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	s := store.New(db, nil)
	require.NoError(t, s.Login(context.Background(), "u1", "Ana Souza"))

	ch := &fakeChannel{}
	b := newBot("chan", ch, Deps{Store: s, Assistant: &cannedResponder{resp: resp}})
	t.Cleanup(b.Stop)
	return b, s, ch
}

func TestQuickEntryAndSummary(t *testing.T) {
	b, s, _ := newTestBot(t, assistant.Response{})
	ctx := context.Background()

	reply := b.dispatch(ctx, "+1000 Pay #salary")
	assert.Contains(t, reply, "Tracked income")
	reply = b.dispatch(ctx, "-250.5 Groceries #food")
	assert.Contains(t, reply, "Groceries")
	require.Equal(t, 2, s.Count())

	summary := b.dispatch(ctx, "!summary")
	assert.Contains(t, summary, "**Income**: 1000.00")
	assert.Contains(t, summary, "**Expenses**: 250.50")
	assert.Contains(t, summary, "**Balance**: 749.50")

	list := b.dispatch(ctx, "!list")
	assert.Contains(t, list, "Groceries")
	assert.Contains(t, list, "-250.50")
}

func TestQuickEntryInstallments(t *testing.T) {
	b, s, _ := newTestBot(t, assistant.Response{})

	reply := b.dispatch(context.Background(), "-300 TV #leisure x3")

	assert.Contains(t, reply, "3 installments of 100.00")
	assert.Equal(t, 3, s.Count())
}

func TestInvalidQuickEntry(t *testing.T) {
	b, s, _ := newTestBot(t, assistant.Response{})
	reply := b.dispatch(context.Background(), "-25 Lunch #snacks")
	assert.Contains(t, reply, "Invalid entry")
	assert.Equal(t, 0, s.Count())
}

func TestDeleteByPrefix(t *testing.T) {
	b, s, _ := newTestBot(t, assistant.Response{})
	ctx := context.Background()
	tx, err := s.AddTransaction(ctx, finance.Draft{Description: "Coffee", Amount: decimal.NewFromInt(5), Kind: finance.Expense, Category: finance.Food})
	require.NoError(t, err)

	assert.Equal(t, "Deleted.", b.dispatch(ctx, "!delete "+tx.ID[:8]))
	assert.Equal(t, 0, s.Count())
	assert.Contains(t, b.dispatch(ctx, "!delete nope"), "No transaction")
}

func TestSalaryAndReserve(t *testing.T) {
	b, s, _ := newTestBot(t, assistant.Response{})
	ctx := context.Background()

	assert.Contains(t, b.dispatch(ctx, "!salary 5000"), "5000.00")
	assert.Contains(t, b.dispatch(ctx, "!salary 6000"), "6000.00")
	txs := s.Transactions()
	require.Len(t, txs, 1)
	assert.True(t, txs[0].IsSalary())

	assert.Contains(t, b.dispatch(ctx, "!reserve 100"), "100.00")
	assert.Contains(t, b.dispatch(ctx, "!reserve 50"), "150.00")
	assert.Contains(t, b.dispatch(ctx, "!reserve -5"), "greater than zero")
}

func TestInvestAndPortfolioWithoutQuotes(t *testing.T) {
	b, s, _ := newTestBot(t, assistant.Response{})
	ctx := context.Background()

	assert.Contains(t, b.dispatch(ctx, "!invest petr4 stocks 10 300"), "PETR4")
	require.Len(t, s.Investments(), 1)

	p := b.dispatch(ctx, "!portfolio")
	assert.Contains(t, p, "**PETR4** (Stocks): 300.00 _(snapshot)_")
	assert.Contains(t, p, "**Profit**: 0.00")
}

func TestLayoutMonthThemeAnnual(t *testing.T) {
	b, s, _ := newTestBot(t, assistant.Response{})
	ctx := context.Background()

	assert.Contains(t, b.dispatch(ctx, "!layout principal balance chart tips"), "saved")
	u, _ := s.User()
	assert.Equal(t, []string{"balance", "chart", "tips"}, u.Layouts[finance.PagePrincipal])
	assert.Contains(t, b.dispatch(ctx, "!layout kitchen a b"), "Unknown page")

	assert.Contains(t, b.dispatch(ctx, "!month 2025-12"), "December 2025")
	assert.Equal(t, 2025, s.SelectedMonth().Year())

	assert.Contains(t, b.dispatch(ctx, "!theme"), "dark")
	assert.Contains(t, b.dispatch(ctx, "!annual"), "Projection for 2025")
	assert.Contains(t, b.dispatch(ctx, "!annual abc"), "Invalid year")
}

func TestChatStagesAndConfirms(t *testing.T) {
	amount := decimal.NewFromInt(42)
	b, s, ch := newTestBot(t, assistant.Response{
		Message: "Pizza night, Ana?",
		Action:  &assistant.Action{Type: assistant.ActionAddExpense, Data: &assistant.ActionData{Description: "Pizza", Amount: &amount, Category: "Food"}},
		Risk:    assistant.RiskAssessment{Level: assistant.RiskMedium, Message: "Food is climbing."},
	})
	ctx := context.Background()

	reply := b.dispatch(ctx, "I spent 42 on pizza")
	assert.Contains(t, reply, "Pizza night, Ana?")
	assert.Contains(t, reply, "!confirm")

	ch.mu.Lock()
	require.NotEmpty(t, ch.sent)
	assert.True(t, strings.Contains(ch.sent[len(ch.sent)-1], "Food is climbing."))
	ch.mu.Unlock()

	assert.Contains(t, b.dispatch(ctx, "!confirm"), "Done")
	require.Equal(t, 1, s.Count())
	assert.Equal(t, "Pizza", s.Transactions()[0].Description)
	assert.Equal(t, "Nothing to confirm.", b.dispatch(ctx, "!confirm"))

	assert.Equal(t, "", b.dispatch(ctx, "!dismiss"))
	ch.mu.Lock()
	assert.NotEmpty(t, ch.deleted)
	ch.mu.Unlock()
	assert.Equal(t, "No tip on display.", b.dispatch(ctx, "!dismiss"))
}

func TestChatCancel(t *testing.T) {
	b, s, _ := newTestBot(t, assistant.Response{
		Message: "Add it?",
		Action:  &assistant.Action{Type: assistant.ActionAddIncome, Data: &assistant.ActionData{Description: "Gift"}},
	})
	ctx := context.Background()

	b.dispatch(ctx, "grandma sent me money")
	assert.Contains(t, b.dispatch(ctx, "!cancel"), "Cancelled")
	assert.Equal(t, "Nothing to cancel.", b.dispatch(ctx, "!cancel"))
	assert.Equal(t, 0, s.Count())
}

func TestUnknownCommandAndTips(t *testing.T) {
	b, _, _ := newTestBot(t, assistant.Response{})
	ctx := context.Background()

	assert.Contains(t, b.dispatch(ctx, "!frobnicate"), "Unknown command")
	assert.Contains(t, b.dispatch(ctx, "!tips"), "No tips")
	b.dispatch(ctx, "-10 Snack #food")
	assert.Contains(t, b.dispatch(ctx, "!tips"), "**Food**")
	assert.Contains(t, b.dispatch(ctx, "!help"), "!summary")
}

func TestBubbleHiddenWhilePostingIsDeleted(t *testing.T) {
	b, _, ch := newTestBot(t, assistant.Response{})
	ch.posting = make(chan struct{})
	ch.release = make(chan struct{})

	done := make(chan struct{})
	go func() {
		defer close(done)
		b.showBubble(assistant.RiskAssessment{Level: assistant.RiskHigh, Message: "Balance is negative"})
	}()

	<-ch.posting
	b.hideBubble(assistant.RiskAssessment{})
	close(ch.release)
	<-done

	ch.mu.Lock()
	defer ch.mu.Unlock()
	require.Len(t, ch.sent, 1)
	assert.Equal(t, []string{fmt.Sprintf("m%d", ch.seq)}, ch.deleted)
	b.mu.Lock()
	assert.Empty(t, b.bubbleMsgID)
	b.mu.Unlock()
}

func TestFormatRiskTitlesLevel(t *testing.T) {
	got := formatRisk(assistant.RiskAssessment{Level: assistant.RiskMedium, Message: "Watch dining out"})
	assert.True(t, strings.HasPrefix(got, "⚠️ **Medium risk**: Watch dining out"))
}
