package assistant

import (
	"fmt"
	"sort"
	"strings"
	"text/template"
	"time"

	"github.com/NgigiN/fintrack/internal/finance"
	"github.com/shopspring/decimal"
)

// recentLimit is how many transactions the prompt carries.
const recentLimit = 10

// Context is the financial data a reply is grounded on.
type Context struct {
	Transactions []finance.Transaction
	Balance      decimal.Decimal
}

var promptTemplate = template.Must(template.New("prompt").Parse(`You are "RoboFin", a smart and proactive personal finance assistant.

YOUR GOALS:
1. Answer the user with friendly advice, ALWAYS calling them by name: "{{.Name}}".
2. IDENTIFY whether the user wants to add a transaction (expense or income) and structure it.
3. ASSESS the user's current financial risk. If a new transaction is added, judge whether it puts the balance at risk.

USER DATA:
{{.Summary}}

USER QUESTION OR ACTION: {{printf "%q" .Message}}

REQUIRED OUTPUT:
Reply with ONLY one valid JSON object, no markdown, with this structure:
{
  "message": "Your reply (use emojis, be brief and friendly with {{.Name}})",
  "action": {
    "type": "add_expense" | "add_income" | "none",
    "data": {
      "description": "e.g. Lunch",
      "amount": 50.00,
      "category": "{{.Categories}}",
      "date": "YYYY-MM-DD (use today, {{.Today}}, when not given)"
    }
  },
  "riskAssessment": {
    "riskLevel": "high" | "medium" | "low",
    "message": "A short alert (max 10 words) or tip based on the balance and the impact of the new transaction."
  },
  "confidence": 0.0 to 1.0
}

RULES:
- "I spent 50 at the market" means action.type = "add_expense".
- "I received 1000" means action.type = "add_income".
- If the balance is negative or the new expense makes it negative, riskLevel = "high".
- If the user only says hello, riskAssessment is a short greeting or a generic tip.

IMPORTANT:
- Do NOT use markdown.
- Do NOT use backticks.
- Do NOT write text outside the JSON.
- Return ONLY the JSON object.
`))

type promptData struct {
	Name       string
	Summary    string
	Message    string
	Categories string
	Today      string
}

// BuildPrompt renders the instruction for one request.
func BuildPrompt(name string, c Context, message string, today time.Time) (string, error) {
	labels := make([]string, len(finance.Categories))
	for i, cat := range finance.Categories {
		labels[i] = string(cat)
	}

	var b strings.Builder
	err := promptTemplate.Execute(&b, promptData{
		Name:       name,
		Summary:    Summarize(name, c),
		Message:    message,
		Categories: strings.Join(labels, " | "),
		Today:      today.Format("2006-01-02"),
	})
	if err != nil {
		return "", fmt.Errorf("render prompt: %w", err)
	}
	return b.String(), nil
}

// Summarize renders the balance and the most recent transactions.
func Summarize(name string, c Context) string {
	var b strings.Builder
	fmt.Fprintf(&b, "User name: %s\n", name)
	fmt.Fprintf(&b, "Current balance: %s\n", c.Balance.StringFixed(2))
	b.WriteString("Recent transactions:\n")
	for _, t := range Recent(c.Transactions, recentLimit) {
		fmt.Fprintf(&b, "- %s: %s (%s) | %s (%s)\n",
			t.Date.Format("2006-01-02"), t.Description, t.Category, t.Amount.StringFixed(2), t.Kind)
	}
	return strings.TrimRight(b.String(), "\n")
}

// Recent returns up to n transactions, newest first.
func Recent(txs []finance.Transaction, n int) []finance.Transaction {
	sorted := append([]finance.Transaction(nil), txs...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.After(sorted[j].Date)
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}
