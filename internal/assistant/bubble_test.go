package assistant

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBubbleAutoHides(t *testing.T) {
	hidden := make(chan RiskAssessment, 1)
	b := NewBubble(20*time.Millisecond, nil, func(r RiskAssessment) { hidden <- r })

	b.Show(RiskAssessment{Level: RiskLow, Message: "tip"})
	_, ok := b.Current()
	require.True(t, ok)

	select {
	case r := <-hidden:
		assert.Equal(t, "tip", r.Message)
	case <-time.After(time.Second):
		t.Fatal("bubble did not hide")
	}
	_, ok = b.Current()
	assert.False(t, ok)
}

func TestBubbleReplaceAndDismiss(t *testing.T) {
	var hidden []string
	b := NewBubble(time.Minute, nil, func(r RiskAssessment) { hidden = append(hidden, r.Message) })

	b.Show(RiskAssessment{Message: "first"})
	b.Show(RiskAssessment{Message: "second"})
	cur, ok := b.Current()
	require.True(t, ok)
	assert.Equal(t, "second", cur.Message)

	assert.True(t, b.Dismiss())
	assert.False(t, b.Dismiss())
	assert.Equal(t, []string{"first", "second"}, hidden)
}
