package assistant

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var ErrInvalidResponse = errors.New("invalid model response")

type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

type ActionType string

const (
	ActionAddExpense        ActionType = "add_expense"
	ActionAddIncome         ActionType = "add_income"
	ActionAddTransaction    ActionType = "add_transaction"
	ActionRemoveTransaction ActionType = "remove_transaction"
	ActionNone              ActionType = "none"
)

type RiskAssessment struct {
	Level   RiskLevel `json:"riskLevel"`
	Message string    `json:"message"`
}

// ActionData is the free-form payload of a proposed action. Every field is optional.
type ActionData struct {
	Description string           `json:"description,omitempty"`
	Amount      *decimal.Decimal `json:"amount,omitempty"`
	Category    string           `json:"category,omitempty"`
	Type        string           `json:"type,omitempty"`
	Date        string           `json:"date,omitempty"`
}

func (d *ActionData) empty() bool {
	return d == nil || (d.Description == "" && d.Amount == nil && d.Category == "" && d.Type == "" && d.Date == "")
}

type Action struct {
	Type ActionType  `json:"type"`
	Data *ActionData `json:"data,omitempty"`
}

// Response is a validated reply. Source names the backend that produced it,
// or "offline" / "fallback" for locally generated replies.
type Response struct {
	Message    string
	Action     *Action
	Risk       RiskAssessment
	Confidence *float64
	Source     string
}

// wireResponse is the contract a model reply must satisfy. Pointers tell a
// missing field apart from an empty one.
type wireResponse struct {
	Message        *string     `json:"message" validate:"required"`
	Action         *wireAction `json:"action"`
	RiskAssessment *wireRisk   `json:"riskAssessment" validate:"required"`
	Confidence     *float64    `json:"confidence"`
}

type wireAction struct {
	Type string      `json:"type" validate:"required,oneof=add_expense add_income add_transaction remove_transaction none"`
	Data *ActionData `json:"data" validate:"-"`
}

type wireRisk struct {
	RiskLevel string  `json:"riskLevel" validate:"required,oneof=low medium high"`
	Message   *string `json:"message" validate:"required"`
}

var validate = validator.New()

// ParseResponse strips code fences from a model reply, decodes it, and checks
// it against the response contract.
func ParseResponse(text string) (Response, error) {
	cleaned := stripFences(text)

	var w wireResponse
	if err := json.Unmarshal([]byte(cleaned), &w); err != nil {
		return Response{}, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	if err := validate.Struct(&w); err != nil {
		return Response{}, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	resp := Response{
		Message: *w.Message,
		Risk: RiskAssessment{
			Level:   RiskLevel(w.RiskAssessment.RiskLevel),
			Message: *w.RiskAssessment.Message,
		},
		Confidence: w.Confidence,
	}
	if w.Action != nil {
		resp.Action = &Action{Type: ActionType(w.Action.Type), Data: w.Action.Data}
	}
	return resp, nil
}

func stripFences(text string) string {
	text = strings.TrimSpace(text)
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")
	return strings.TrimSpace(text)
}
