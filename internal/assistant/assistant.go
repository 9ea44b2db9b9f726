// Package assistant turns free-text messages into advice, proposed
// transactions and a risk assessment, using remote models when configured and
// local heuristics otherwise.
package assistant

import (
	"context"
	"time"

	"github.com/NgigiN/fintrack/internal/tips"
	"go.uber.org/zap"
)

const (
	SourceOffline  = "offline"
	SourceFallback = "fallback"
)

// Responder answers one message. Respond never fails: when no backend can
// answer, a locally generated reply is returned.
type Responder interface {
	Respond(ctx context.Context, name string, c Context, message string) Response
}

type Assistant struct {
	backends []Backend
	log      *zap.Logger
	now      func() time.Time
}

// New returns an assistant over backends, tried in order. With no backends it
// runs offline.
func New(backends []Backend, log *zap.Logger) *Assistant {
	if log == nil {
		log = zap.NewNop()
	}
	return &Assistant{backends: backends, log: log, now: time.Now}
}

func (a *Assistant) Offline() bool { return len(a.backends) == 0 }

func (a *Assistant) Respond(ctx context.Context, name string, c Context, message string) Response {
	local := tips.Analyze(c.Transactions, c.Balance)

	if a.Offline() {
		return Response{
			Message: "Hi " + name + "! I'm running in offline mode. Add an API key to the settings so I can get smarter. 🤖",
			Risk: RiskAssessment{
				Level:   localRisk(c),
				Message: tips.First(local, "Offline mode active."),
			},
			Source: SourceOffline,
		}
	}

	prompt, err := BuildPrompt(name, c, message, a.now())
	if err != nil {
		a.log.Error("build prompt", zap.Error(err))
		return a.fallback(c, local)
	}

	for _, b := range a.backends {
		if err := ctx.Err(); err != nil {
			break
		}
		text, err := b.Generate(ctx, prompt)
		if err != nil {
			a.log.Warn("backend failed, trying next", zap.String("backend", b.Name()), zap.Error(err))
			continue
		}
		resp, err := ParseResponse(text)
		if err != nil {
			a.log.Warn("backend returned an invalid reply, trying next", zap.String("backend", b.Name()), zap.Error(err))
			continue
		}
		resp.Source = b.Name()
		a.log.Debug("assistant reply", zap.String("backend", b.Name()), zap.String("risk", string(resp.Risk.Level)))
		return resp
	}

	a.log.Error("all backends failed, using local analysis", zap.Int("backends", len(a.backends)))
	return a.fallback(c, local)
}

func (a *Assistant) fallback(c Context, local []string) Response {
	return Response{
		Message: "I'm having trouble connecting right now, but I analyzed your data locally: " + tips.First(local, "Everything looks fine."),
		Risk: RiskAssessment{
			Level:   localRisk(c),
			Message: tips.First(local, "AI unavailable."),
		},
		Source: SourceFallback,
	}
}

func localRisk(c Context) RiskLevel {
	if c.Balance.IsNegative() {
		return RiskHigh
	}
	return RiskLow
}
