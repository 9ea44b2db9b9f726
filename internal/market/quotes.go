// Package market looks up live quotes and values a portfolio with them.
package market

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	brapiURL   = "https://brapi.dev/api/quote"
	maxRetries = 3
)

var errNoResult = errors.New("no quote in response")

type Quote struct {
	Symbol        string          `json:"symbol"`
	Price         decimal.Decimal `json:"currentPrice"`
	ChangePercent decimal.Decimal `json:"changePercent"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

type brapiResult struct {
	Symbol              string          `json:"symbol"`
	RegularMarketPrice  decimal.Decimal `json:"regularMarketPrice"`
	RegularMarketChange decimal.Decimal `json:"regularMarketChangePercent"`
}

type brapiResponse struct {
	Results []brapiResult `json:"results"`
}

type Client struct {
	BaseURL string
	Token   string
	HTTP    *http.Client
	// NewBackOff builds the retry policy for one symbol.
	NewBackOff func() backoff.BackOff

	log *zap.Logger
	now func() time.Time
}

func NewClient(token string, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	if token == "" {
		token = "public"
	}
	return &Client{
		BaseURL: brapiURL,
		Token:   token,
		HTTP:    &http.Client{Timeout: 10 * time.Second},
		NewBackOff: func() backoff.BackOff {
			return backoff.WithMaxRetries(backoff.NewExponentialBackOff(), maxRetries)
		},
		log: log,
		now: time.Now,
	}
}

// Quotes fetches every distinct symbol concurrently. Lookups that fail are
// logged and left out of the result; the call itself never fails.
func (c *Client) Quotes(ctx context.Context, symbols []string) map[string]Quote {
	quotes := map[string]Quote{}
	seen := map[string]bool{}

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for _, s := range symbols {
		s = Symbol(s)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true

		wg.Add(1)
		go func(symbol string) {
			defer wg.Done()
			q, err := c.quote(ctx, symbol)
			if err != nil {
				c.log.Warn("quote lookup failed", zap.String("symbol", symbol), zap.Error(err))
				return
			}
			mu.Lock()
			quotes[Symbol(q.Symbol)] = q
			mu.Unlock()
		}(s)
	}
	wg.Wait()

	return quotes
}

func (c *Client) quote(ctx context.Context, symbol string) (Quote, error) {
	endpoint := fmt.Sprintf("%s/%s?token=%s", strings.TrimRight(c.BaseURL, "/"), url.PathEscape(symbol), url.QueryEscape(c.Token))

	op := func() (brapiResult, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return brapiResult{}, backoff.Permanent(err)
		}
		resp, err := c.HTTP.Do(req)
		if err != nil {
			return brapiResult{}, err
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusUnauthorized:
			return brapiResult{}, backoff.Permanent(fmt.Errorf("unauthorized, check BRAPI_TOKEN"))
		case resp.StatusCode >= 500:
			return brapiResult{}, fmt.Errorf("status %d", resp.StatusCode)
		case resp.StatusCode != http.StatusOK:
			return brapiResult{}, backoff.Permanent(fmt.Errorf("status %d", resp.StatusCode))
		}

		var body brapiResponse
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			return brapiResult{}, backoff.Permanent(err)
		}
		if len(body.Results) == 0 {
			return brapiResult{}, backoff.Permanent(errNoResult)
		}
		return body.Results[0], nil
	}

	res, err := backoff.RetryWithData(op, backoff.WithContext(c.NewBackOff(), ctx))
	if err != nil {
		return Quote{}, err
	}
	if res.Symbol == "" {
		res.Symbol = symbol
	}
	return Quote{
		Symbol:        res.Symbol,
		Price:         res.RegularMarketPrice,
		ChangePercent: res.RegularMarketChange,
		UpdatedAt:     c.now(),
	}, nil
}

// Symbol normalises a ticker the way investments store their names.
func Symbol(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}
