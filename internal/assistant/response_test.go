package assistant

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseResponseValid(t *testing.T) {
	text := "```json\n" + `{
		"message": "Got it, Ana!",
		"action": {"type": "add_expense", "data": {"description": "Lunch", "amount": 50, "category": "Food"}},
		"riskAssessment": {"riskLevel": "medium", "message": "Watch the food budget."},
		"confidence": 0.9
	}` + "\n```"

	resp, err := ParseResponse(text)
	require.NoError(t, err)

	assert.Equal(t, "Got it, Ana!", resp.Message)
	assert.Equal(t, RiskMedium, resp.Risk.Level)
	assert.Equal(t, "Watch the food budget.", resp.Risk.Message)
	require.NotNil(t, resp.Action)
	assert.Equal(t, ActionAddExpense, resp.Action.Type)
	require.NotNil(t, resp.Action.Data.Amount)
	assert.Equal(t, "50", resp.Action.Data.Amount.String())
	require.NotNil(t, resp.Confidence)
	assert.InDelta(t, 0.9, *resp.Confidence, 1e-9)
}

func TestParseResponseEmptyStringsAccepted(t *testing.T) {
	resp, err := ParseResponse(`{"message": "", "riskAssessment": {"riskLevel": "low", "message": ""}}`)
	require.NoError(t, err)
	assert.Empty(t, resp.Message)
	assert.Nil(t, resp.Action)
}

func TestParseResponseRejects(t *testing.T) {
	cases := map[string]string{
		"missing risk assessment": `{"message": "hi"}`,
		"missing message":         `{"riskAssessment": {"riskLevel": "low", "message": "ok"}}`,
		"unknown risk level":      `{"message": "hi", "riskAssessment": {"riskLevel": "extreme", "message": "ok"}}`,
		"missing risk message":    `{"message": "hi", "riskAssessment": {"riskLevel": "low"}}`,
		"unknown action type":     `{"message": "hi", "action": {"type": "transfer"}, "riskAssessment": {"riskLevel": "low", "message": "ok"}}`,
		"action without type":     `{"message": "hi", "action": {}, "riskAssessment": {"riskLevel": "low", "message": "ok"}}`,
		"action not an object":    `{"message": "hi", "action": "none", "riskAssessment": {"riskLevel": "low", "message": "ok"}}`,
		"not json":                `Sure! Here is your answer.`,
		"trailing prose":          `{"message": "hi", "riskAssessment": {"riskLevel": "low", "message": "ok"}} hope that helps`,
		"null":                    `null`,
	}
	for name, text := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseResponse(text)
			assert.ErrorIs(t, err, ErrInvalidResponse)
		})
	}
}

func TestStripFences(t *testing.T) {
	assert.Equal(t, `{"a":1}`, stripFences("  ```json\n{\"a\":1}\n```  "))
	assert.Equal(t, `{"a":1}`, stripFences("```{\"a\":1}```"))
	assert.Equal(t, `{"a":1}`, stripFences(`{"a":1}`))
}
