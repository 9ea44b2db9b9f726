package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/NgigiN/fintrack/internal/assistant"
	"github.com/NgigiN/fintrack/internal/discord"
	"github.com/NgigiN/fintrack/internal/export"
	"github.com/NgigiN/fintrack/internal/finance"
	"github.com/NgigiN/fintrack/internal/httpapi"
	"github.com/NgigiN/fintrack/internal/market"
	"github.com/NgigiN/fintrack/internal/tips"
	"go.uber.org/zap"
)

type botCmd struct {
	NoHTTP bool `name:"no-http" help:"Do not serve the HTTP API."`
}

func (c *botCmd) Run(g *globals) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, err := setup(ctx, g)
	if err != nil {
		return err
	}
	defer a.close()

	ai, err := a.assistant(ctx)
	if err != nil {
		return err
	}

	bot, err := discord.NewBot(a.cfg, discord.Deps{
		Store:     a.store,
		Assistant: ai,
		Quotes:    market.NewClient(a.cfg.BrapiToken, a.log.Named("market")),
		Log:       a.log.Named("discord"),
	})
	if err != nil {
		return fmt.Errorf("Failed to initialize the discord bot: %w", err)
	}
	if err := bot.Start(); err != nil {
		return fmt.Errorf("Failed to start bot: %w", err)
	}

	if !c.NoHTTP {
		srv := httpapi.New(a.store, bot, a.log.Named("http"))
		go func() {
			if err := srv.Run(ctx, a.cfg.HTTPAddr); err != nil {
				a.log.Error("http server stopped", zap.Error(err))
			}
		}()
	}

	a.log.Info("Bot is running...")
	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc

	cancel()
	bot.Stop()
	a.log.Info("Bot stopped.")
	return nil
}

type summaryCmd struct {
	Month string `help:"Month to summarize as YYYY-MM. Defaults to the current month."`
}

func selectMonth(a *app, raw string) error {
	if raw == "" {
		return nil
	}
	month, err := time.ParseInLocation("2006-01", raw, time.Local)
	if err != nil {
		return fmt.Errorf("invalid month %q, expected YYYY-MM", raw)
	}
	a.store.SetSelectedMonth(month)
	return nil
}

func (c *summaryCmd) Run(g *globals) error {
	a, err := setup(context.Background(), g)
	if err != nil {
		return err
	}
	defer a.close()
	if err := selectMonth(a, c.Month); err != nil {
		return err
	}

	s := a.store.Summary()
	fmt.Printf("Summary for %s\n", a.store.SelectedMonth().Format("January 2006"))
	fmt.Printf("  Income:       %s\n", s.TotalIncome.StringFixed(2))
	fmt.Printf("  Expenses:     %s\n", s.TotalExpense.StringFixed(2))
	fmt.Printf("  Balance:      %s\n", s.Balance.StringFixed(2))
	fmt.Printf("  Reservation:  %s\n", s.Reservation.StringFixed(2))
	fmt.Printf("  Health score: %d/100\n", finance.HealthScore(s))
	fmt.Printf("  Committed next month: %s\n", finance.CommittedCost(a.store.Transactions()).StringFixed(2))
	return nil
}

type tipsCmd struct {
	Month string `help:"Month to analyze as YYYY-MM. Defaults to the current month."`
}

func (c *tipsCmd) Run(g *globals) error {
	a, err := setup(context.Background(), g)
	if err != nil {
		return err
	}
	defer a.close()
	if err := selectMonth(a, c.Month); err != nil {
		return err
	}

	list := tips.Analyze(a.store.MonthTransactions(), a.store.Summary().Balance)
	if len(list) == 0 {
		fmt.Println("No tips right now.")
		return nil
	}
	for _, t := range list {
		fmt.Println(t)
	}
	return nil
}

type askCmd struct {
	Yes     bool     `short:"y" help:"Add any transaction the assistant proposes without asking."`
	Message []string `arg:"" help:"Question or instruction for the assistant."`
}

func (c *askCmd) Run(g *globals) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	a, err := setup(ctx, g)
	if err != nil {
		return err
	}
	defer a.close()

	ai, err := a.assistant(ctx)
	if err != nil {
		return err
	}
	session := assistant.NewSession(ai, a.store, nil, a.log.Named("session"))

	resp, err := session.Send(ctx, strings.Join(c.Message, " "))
	if err != nil {
		return err
	}
	fmt.Println(resp.Message)
	fmt.Printf("[%s risk] %s\n", resp.Risk.Level, resp.Risk.Message)

	p, ok := session.Pending()
	if !ok {
		return nil
	}
	d := p.Draft(time.Now())
	fmt.Printf("Proposed %s: %s %s (%s)\n", d.Kind, d.Description, d.Amount.StringFixed(2), d.Category)
	if !c.Yes {
		fmt.Println("Run again with --yes to add it.")
		return nil
	}
	t, err := session.Confirm(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Added %s.\n", t.ID)
	return nil
}

type exportCmd struct {
	Out string `default:"jsonfile:out.json" help:"Where to write [jsonfile:/path/file.json es8:http://myelasticsearch:9200]"`
}

func (c *exportCmd) Run(g *globals) error {
	ctx := context.Background()
	a, err := setup(ctx, g)
	if err != nil {
		return err
	}
	defer a.close()

	sink, err := export.Open(c.Out, a.log.Named("export"))
	if err != nil {
		return err
	}
	txs := a.store.Transactions()
	if err := sink.Write(ctx, txs); err != nil {
		return err
	}
	fmt.Printf("Exported %d transactions to %s\n", len(txs), c.Out)
	return nil
}
