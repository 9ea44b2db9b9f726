package discord

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/NgigiN/fintrack/internal/assistant"
	"github.com/NgigiN/fintrack/internal/config"
	"github.com/NgigiN/fintrack/internal/market"
	"github.com/NgigiN/fintrack/internal/store"
	"github.com/NgigiN/fintrack/internal/tips"
	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// replyTimeout bounds the work done for a single chat message.
const replyTimeout = 60 * time.Second

type messenger interface {
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageDelete(channelID string, messageID string, options ...discordgo.RequestOption) error
}

type Deps struct {
	Store     *store.Store
	Assistant assistant.Responder
	Quotes    *market.Client
	Log       *zap.Logger
}

type Bot struct {
	session   *discordgo.Session
	out       messenger
	store     *store.Store
	chat      *assistant.Session
	bubble    *assistant.Bubble
	monitor   *assistant.Monitor
	quotes    *market.Client
	log       *zap.Logger
	channelID string
	startTime time.Time

	mu          sync.Mutex
	bubbleGen   uint64
	bubbleMsgID string
	unsubscribe func()
}

func NewBot(cfg *config.Config, deps Deps) (*Bot, error) {
	if err := cfg.RequireDiscord(); err != nil {
		return nil, err
	}
	session, err := discordgo.New("Bot " + cfg.DiscordBotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create Discord session: %w", err)
	}

	bot := newBot(cfg.DiscordChannelId, session, deps)
	bot.session = session

	session.AddHandler(bot.handleMessage)
	session.Identify.Intents = discordgo.IntentGuildMessages | discordgo.IntentMessageContent

	return bot, nil
}

func newBot(channelID string, out messenger, deps Deps) *Bot {
	log := deps.Log
	if log == nil {
		log = zap.NewNop()
	}
	b := &Bot{
		out:       out,
		store:     deps.Store,
		quotes:    deps.Quotes,
		log:       log,
		channelID: channelID,
		startTime: time.Now(),
	}
	b.bubble = assistant.NewBubble(assistant.DefaultBubbleTTL, b.showBubble, b.hideBubble)
	b.chat = assistant.NewSession(deps.Assistant, deps.Store, b.bubble, log)
	b.monitor = assistant.NewMonitor(deps.Store.Count(), func(ctx context.Context) {
		ctx, cancel := context.WithTimeout(ctx, replyTimeout)
		defer cancel()
		b.chat.CheckRisk(ctx)
	}, log, assistant.WithBusy(b.chat.Busy))
	return b
}

func (b *Bot) Start() error {
	b.mu.Lock()
	b.unsubscribe = b.store.Subscribe(b.monitor.Observe)
	b.mu.Unlock()

	if b.session != nil {
		if err := b.session.Open(); err != nil {
			return fmt.Errorf("failed to open Discord connection: %w", err)
		}
	}

	summary := b.store.Summary()
	if tip := tips.Analyze(b.store.MonthTransactions(), summary.Balance); len(tip) > 0 {
		level := assistant.RiskLow
		if summary.Balance.IsNegative() {
			level = assistant.RiskHigh
		}
		b.bubble.Show(assistant.RiskAssessment{Level: level, Message: tip[0]})
	}
	return nil
}

func (b *Bot) Stop() {
	b.monitor.Stop()
	b.mu.Lock()
	if b.unsubscribe != nil {
		b.unsubscribe()
		b.unsubscribe = nil
	}
	b.mu.Unlock()
	b.bubble.Dismiss()
	if b.session != nil {
		b.session.Close()
	}
}

// Connected reports whether the gateway connection is up.
func (b *Bot) Connected() bool {
	return b.session != nil && b.session.State != nil && b.session.DataReady
}

func (b *Bot) Uptime() time.Duration {
	return time.Since(b.startTime)
}

func (b *Bot) handleMessage(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.ID == s.State.User.ID {
		return //bot's messages
	}

	if m.ChannelID != b.channelID {
		return //specific to the channel
	}

	ctx, cancel := context.WithTimeout(context.Background(), replyTimeout)
	defer cancel()

	if reply := b.dispatch(ctx, m.Content); reply != "" {
		b.send(reply)
	}
}

func (b *Bot) send(content string) {
	if _, err := b.out.ChannelMessageSend(b.channelID, content); err != nil {
		b.log.Error("send message", zap.Error(err))
	}
}

// showBubble posts the tip. A hide that lands while the post is in flight
// bumps bubbleGen, and the late message is deleted here instead.
func (b *Bot) showBubble(r assistant.RiskAssessment) {
	b.mu.Lock()
	b.bubbleGen++
	gen := b.bubbleGen
	b.mu.Unlock()

	msg, err := b.out.ChannelMessageSend(b.channelID, formatRisk(r))
	if err != nil {
		b.log.Error("post risk bubble", zap.Error(err))
		return
	}

	b.mu.Lock()
	current := b.bubbleGen == gen
	if current {
		b.bubbleMsgID = msg.ID
	}
	b.mu.Unlock()
	if !current {
		b.deleteBubble(msg.ID)
	}
}

func (b *Bot) hideBubble(assistant.RiskAssessment) {
	b.mu.Lock()
	b.bubbleGen++
	id := b.bubbleMsgID
	b.bubbleMsgID = ""
	b.mu.Unlock()
	if id != "" {
		b.deleteBubble(id)
	}
}

func (b *Bot) deleteBubble(id string) {
	if err := b.out.ChannelMessageDelete(b.channelID, id); err != nil {
		b.log.Warn("delete risk bubble", zap.String("message_id", id), zap.Error(err))
	}
}

func formatRisk(r assistant.RiskAssessment) string {
	icon := "💡"
	switch r.Level {
	case assistant.RiskHigh:
		icon = "🚨"
	case assistant.RiskMedium:
		icon = "⚠️"
	}
	return fmt.Sprintf("%s **%s risk**: %s\n_!dismiss to hide_", icon, cases.Title(language.English).String(string(r.Level)), r.Message)
}
