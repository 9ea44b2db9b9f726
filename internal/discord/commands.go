package discord

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/NgigiN/fintrack/internal/assistant"
	"github.com/NgigiN/fintrack/internal/finance"
	"github.com/NgigiN/fintrack/internal/market"
	"github.com/NgigiN/fintrack/internal/quickentry"
	"github.com/NgigiN/fintrack/internal/store"
	"github.com/NgigiN/fintrack/internal/tips"
	"github.com/shopspring/decimal"
)

const helpText = "**Commands**\n" +
	"`-25.50 Lunch #food` / `+1200 Salary #salary fixed` / `-300 TV #leisure x3` add a transaction\n" +
	"`!summary` `!tips` `!list` `!annual [year]` `!portfolio`\n" +
	"`!delete <id>` `!salary <amount>` `!reserve <amount>` `!month YYYY-MM` `!theme`\n" +
	"`!invest <ticker> <type> <qty> <amount>` `!layout <page> <widget ids...>`\n" +
	"`!confirm` `!cancel` `!dismiss`\n" +
	"Anything else goes to the assistant."

// dispatch handles one message and returns the reply to post, if any.
func (b *Bot) dispatch(ctx context.Context, content string) string {
	content = strings.TrimSpace(content)
	if content == "" {
		return ""
	}

	if quickentry.Looks(content) {
		return b.handleQuickEntry(ctx, content)
	}
	if !strings.HasPrefix(content, "!") {
		return b.handleChat(ctx, content)
	}

	args := strings.Fields(content)
	switch strings.ToLower(args[0]) {
	case "!help":
		return helpText
	case "!summary":
		return formatSummary(b.store.SelectedMonth(), b.store.Summary())
	case "!tips":
		return b.handleTips()
	case "!list":
		return b.handleList()
	case "!delete":
		return b.handleDelete(ctx, args[1:])
	case "!salary":
		return b.handleSalary(ctx, args[1:])
	case "!reserve":
		return b.handleReserve(ctx, args[1:])
	case "!layout":
		return b.handleLayout(ctx, args[1:])
	case "!invest":
		return b.handleInvest(ctx, args[1:])
	case "!portfolio":
		return b.handlePortfolio(ctx)
	case "!annual":
		return b.handleAnnual(args[1:])
	case "!month":
		return b.handleMonth(args[1:])
	case "!theme":
		return fmt.Sprintf("Theme set to **%s**.", b.store.ToggleTheme())
	case "!confirm":
		return b.handleConfirm(ctx)
	case "!cancel":
		if err := b.chat.Cancel(); err != nil {
			return "Nothing to cancel."
		}
		return lastMessage(b.chat)
	case "!dismiss":
		if !b.bubble.Dismiss() {
			return "No tip on display."
		}
		return ""
	}
	return fmt.Sprintf("Unknown command %s. Try !help", args[0])
}

func (b *Bot) handleQuickEntry(ctx context.Context, content string) string {
	entry, err := quickentry.Parse(content, time.Now())
	if err != nil {
		return fmt.Sprintf("Invalid entry: %v", err)
	}

	if entry.Installments > 1 {
		added, err := b.store.AddInstallments(ctx, entry.Draft, entry.Installments)
		if err != nil {
			return fmt.Sprintf("Added %d of %d installments: %v", len(added), entry.Installments, err)
		}
		return fmt.Sprintf("Tracked %s in %d installments of %s (%s)",
			entry.Draft.Description, entry.Installments, added[0].Amount.StringFixed(2), entry.Draft.Category)
	}

	t, err := b.store.AddTransaction(ctx, entry.Draft)
	if err != nil {
		return fmt.Sprintf("Failed to save transaction: %v", err)
	}
	return fmt.Sprintf("Tracked %s: %s %s in %s [%s]", t.Kind, t.Amount.StringFixed(2), t.Description, t.Category, shortID(t.ID))
}

func (b *Bot) handleChat(ctx context.Context, content string) string {
	resp, err := b.chat.Send(ctx, content)
	if errors.Is(err, assistant.ErrBusy) {
		return "Still thinking about your last message..."
	}
	if err != nil {
		return lastMessage(b.chat)
	}

	reply := resp.Message
	if p, ok := b.chat.Pending(); ok {
		d := p.Draft(time.Now())
		reply += fmt.Sprintf("\n\n📝 Proposed %s: **%s** %s (%s)\nReply `!confirm` to add it or `!cancel`.",
			d.Kind, d.Description, d.Amount.StringFixed(2), d.Category)
	}
	return reply
}

func (b *Bot) handleConfirm(ctx context.Context) string {
	_, err := b.chat.Confirm(ctx)
	if errors.Is(err, assistant.ErrNoPendingAction) {
		return "Nothing to confirm."
	}
	return lastMessage(b.chat)
}

func (b *Bot) handleTips() string {
	list := tips.Analyze(b.store.MonthTransactions(), b.store.Summary().Balance)
	if len(list) == 0 {
		return "No tips right now. Keep it up!"
	}
	return strings.Join(list, "\n")
}

func (b *Bot) handleList() string {
	txs := b.store.MonthTransactions()
	if len(txs) == 0 {
		return fmt.Sprintf("No transactions in %s.", b.store.SelectedMonth().Format("January 2006"))
	}
	return formatList(b.store.SelectedMonth(), txs, b.store.SyncState)
}

func (b *Bot) handleDelete(ctx context.Context, args []string) string {
	if len(args) != 1 {
		return "Usage: !delete <id>"
	}
	id, ok := b.findTransaction(args[0])
	if !ok {
		return fmt.Sprintf("No transaction matches %s.", args[0])
	}
	if err := b.store.RemoveTransaction(ctx, id); err != nil {
		return fmt.Sprintf("Failed to delete transaction, restored it: %v", err)
	}
	return "Deleted."
}

// findTransaction resolves a full id or a unique id prefix.
func (b *Bot) findTransaction(ref string) (string, bool) {
	var match string
	for _, t := range b.store.Transactions() {
		if t.ID == ref {
			return t.ID, true
		}
		if strings.HasPrefix(t.ID, ref) {
			if match != "" {
				return "", false
			}
			match = t.ID
		}
	}
	return match, match != ""
}

func (b *Bot) handleSalary(ctx context.Context, args []string) string {
	if len(args) != 1 {
		return "Usage: !salary <amount> (0 removes it)"
	}
	amount, err := parseAmount(args[0])
	if err != nil || amount.IsNegative() {
		return fmt.Sprintf("Invalid amount: %s", args[0])
	}
	if err := b.store.SetFixedSalary(ctx, amount); err != nil {
		return fmt.Sprintf("Salary partly updated: %v", err)
	}
	if amount.IsZero() {
		return "Fixed salary removed."
	}
	return fmt.Sprintf("Fixed salary set to %s.", amount.StringFixed(2))
}

func (b *Bot) handleReserve(ctx context.Context, args []string) string {
	if len(args) != 1 {
		return "Usage: !reserve <amount>"
	}
	amount, err := parseAmount(args[0])
	if err != nil {
		return fmt.Sprintf("Invalid amount: %s", args[0])
	}
	if err := b.store.AddToReservation(ctx, amount); err != nil {
		if errors.Is(err, store.ErrInvalidAmount) {
			return "The amount must be greater than zero."
		}
		return fmt.Sprintf("Failed to update reservation: %v", err)
	}
	return fmt.Sprintf("Reservation is now %s.", b.store.Summary().Reservation.StringFixed(2))
}

func (b *Bot) handleLayout(ctx context.Context, args []string) string {
	if len(args) < 2 {
		return "Usage: !layout <principal|analytics> <widget ids...>"
	}
	page := strings.ToLower(args[0])
	if page != finance.PagePrincipal && page != finance.PageAnalytics {
		return fmt.Sprintf("Unknown page %s.", args[0])
	}
	if err := b.store.UpdateLayout(ctx, page, args[1:]); err != nil {
		return fmt.Sprintf("Failed to save layout: %v", err)
	}
	return fmt.Sprintf("Layout of %s saved: %s", page, strings.Join(args[1:], ", "))
}

func (b *Bot) handleInvest(ctx context.Context, args []string) string {
	if len(args) != 4 {
		return "Usage: !invest <ticker> <type> <qty> <amount>"
	}
	qty, err := parseAmount(args[2])
	if err != nil || !qty.IsPositive() {
		return fmt.Sprintf("Invalid quantity: %s", args[2])
	}
	amount, err := parseAmount(args[3])
	if err != nil || !amount.IsPositive() {
		return fmt.Sprintf("Invalid amount: %s", args[3])
	}

	inv, err := b.store.AddInvestment(ctx, finance.Investment{
		Name:           market.Symbol(args[0]),
		Type:           finance.ParseInvestmentType(args[1]),
		AmountInvested: amount,
		CurrentValue:   amount,
		Quantity:       qty,
	})
	if err != nil {
		return fmt.Sprintf("Failed to save investment: %v", err)
	}
	return fmt.Sprintf("Tracked %s %s x%s for %s", inv.Type, inv.Name, inv.Quantity, inv.AmountInvested.StringFixed(2))
}

func (b *Bot) handlePortfolio(ctx context.Context) string {
	invs := b.store.Investments()
	if len(invs) == 0 {
		return "No investments yet. Use !invest to add one."
	}
	var quotes map[string]market.Quote
	if b.quotes != nil {
		quotes = b.quotes.Quotes(ctx, market.Symbols(invs))
	}
	return formatPortfolio(market.Valuate(invs, quotes))
}

func (b *Bot) handleAnnual(args []string) string {
	year := b.store.SelectedMonth().Year()
	if len(args) == 1 {
		y, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Sprintf("Invalid year: %s", args[0])
		}
		year = y
	}
	return formatAnnual(year, b.store.AnnualProjection(year))
}

func (b *Bot) handleMonth(args []string) string {
	if len(args) != 1 {
		return "Usage: !month YYYY-MM"
	}
	month, err := time.ParseInLocation("2006-01", args[0], time.Local)
	if err != nil {
		return fmt.Sprintf("Invalid month: %s", args[0])
	}
	b.store.SetSelectedMonth(month)
	return fmt.Sprintf("Showing %s.", month.Format("January 2006"))
}

func lastMessage(s *assistant.Session) string {
	msgs := s.Messages()
	return msgs[len(msgs)-1].Content
}

func parseAmount(raw string) (decimal.Decimal, error) {
	return decimal.NewFromString(strings.ReplaceAll(raw, ",", ""))
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
