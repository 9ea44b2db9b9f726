package assistant

import (
	"sync"
	"time"
)

const DefaultBubbleTTL = 8 * time.Second

// Bubble holds the risk tip currently on display. A new tip replaces the old
// one and hides itself after the TTL unless dismissed first.
type Bubble struct {
	ttl    time.Duration
	onShow func(RiskAssessment)
	onHide func(RiskAssessment)

	mu      sync.Mutex
	current *RiskAssessment
	gen     int
	timer   *time.Timer
}

// NewBubble creates a bubble. Either callback may be nil; both run outside
// the bubble's lock.
func NewBubble(ttl time.Duration, onShow, onHide func(RiskAssessment)) *Bubble {
	if ttl <= 0 {
		ttl = DefaultBubbleTTL
	}
	return &Bubble{ttl: ttl, onShow: onShow, onHide: onHide}
}

func (b *Bubble) Show(r RiskAssessment) {
	b.mu.Lock()
	prev := b.current
	b.current = &r
	b.gen++
	gen := b.gen
	if b.timer != nil {
		b.timer.Stop()
	}
	b.timer = time.AfterFunc(b.ttl, func() { b.hide(gen) })
	b.mu.Unlock()

	if prev != nil && b.onHide != nil {
		b.onHide(*prev)
	}
	if b.onShow != nil {
		b.onShow(r)
	}
}

// Dismiss hides the current tip right away.
func (b *Bubble) Dismiss() bool {
	b.mu.Lock()
	gen := b.gen
	b.mu.Unlock()
	return b.hide(gen)
}

func (b *Bubble) hide(gen int) bool {
	b.mu.Lock()
	if gen != b.gen || b.current == nil {
		b.mu.Unlock()
		return false
	}
	r := *b.current
	b.current = nil
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
	b.mu.Unlock()

	if b.onHide != nil {
		b.onHide(r)
	}
	return true
}

func (b *Bubble) Current() (RiskAssessment, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.current == nil {
		return RiskAssessment{}, false
	}
	return *b.current, true
}
