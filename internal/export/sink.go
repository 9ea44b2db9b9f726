// Package export writes transactions to external sinks.
package export

import (
	"context"
	"fmt"
	"strings"

	"github.com/NgigiN/fintrack/internal/finance"
	"go.uber.org/zap"
)

type Sink interface {
	Write(ctx context.Context, txs []finance.Transaction) error
}

// Open picks a sink from a URL of the form "jsonfile:/path/out.json" or
// "es8:http://host:9200[,http://other:9200]".
func Open(target string, log *zap.Logger) (Sink, error) {
	scheme, rest, ok := strings.Cut(target, ":")
	if !ok || rest == "" {
		return nil, fmt.Errorf("invalid export target %q", target)
	}
	switch scheme {
	case "jsonfile":
		return NewJSONFile(rest), nil
	case "es8":
		return NewElasticsearch(log, strings.Split(rest, ",")...), nil
	}
	return nil, fmt.Errorf("unknown export scheme %q", scheme)
}
