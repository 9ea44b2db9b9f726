package export

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/NgigiN/fintrack/internal/finance"
	"github.com/cenkalti/backoff/v4"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esutil"
	"go.uber.org/zap"
)

const (
	esIndex = "fintrack-transactions"
	esFlush = 2048
)

type Elasticsearch struct {
	addresses []string
	index     string
	log       *zap.Logger
}

func NewElasticsearch(log *zap.Logger, urls ...string) *Elasticsearch {
	if log == nil {
		log = zap.NewNop()
	}
	if len(urls) == 0 {
		urls = []string{"http://localhost:9200"}
	}
	return &Elasticsearch{addresses: urls, index: esIndex, log: log}
}

func (e *Elasticsearch) client() (*elasticsearch.Client, error) {
	retryBackoff := backoff.NewExponentialBackOff()

	return elasticsearch.NewClient(elasticsearch.Config{
		Addresses:     e.addresses,
		RetryOnStatus: []int{502, 503, 504, 429},
		RetryBackoff: func(i int) time.Duration {
			if i == 1 {
				retryBackoff.Reset()
			}
			return retryBackoff.NextBackOff()
		},
		MaxRetries: 5,
	})
}

// Write bulk-indexes the transactions keyed by id, so re-exporting the same
// records overwrites them.
func (e *Elasticsearch) Write(ctx context.Context, txs []finance.Transaction) error {
	es, err := e.client()
	if err != nil {
		return err
	}

	bi, err := esutil.NewBulkIndexer(esutil.BulkIndexerConfig{
		Index:         e.index,
		FlushBytes:    esFlush,
		Client:        es,
		NumWorkers:    4,
		FlushInterval: 10 * time.Second,
	})
	if err != nil {
		return err
	}

	if res, err := es.Indices.Create(e.index, es.Indices.Create.WithContext(ctx)); err != nil {
		e.log.Warn("create index", zap.String("index", e.index), zap.Error(err))
	} else {
		res.Body.Close()
	}

	for _, t := range txs {
		data, err := json.Marshal(t)
		if err != nil {
			return err
		}

		err = bi.Add(ctx, esutil.BulkIndexerItem{
			Action:     "index",
			DocumentID: t.ID,
			Body:       bytes.NewReader(data),
			OnFailure: func(ctx context.Context, item esutil.BulkIndexerItem, res esutil.BulkIndexerResponseItem, err error) {
				if err != nil {
					e.log.Error("index transaction", zap.String("id", item.DocumentID), zap.Error(err))
				} else {
					e.log.Error("index transaction",
						zap.String("id", item.DocumentID),
						zap.String("type", res.Error.Type),
						zap.String("reason", res.Error.Reason))
				}
			},
		})
		if err != nil {
			return err
		}
	}

	if err := bi.Close(ctx); err != nil {
		return err
	}

	stats := bi.Stats()
	if stats.NumFailed > 0 {
		return fmt.Errorf("failed indexing %d of %d transactions", stats.NumFailed, stats.NumAdded)
	}
	e.log.Info("exported transactions", zap.Uint64("indexed", stats.NumFlushed), zap.String("index", e.index))
	return nil
}
