package export

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/NgigiN/fintrack/internal/finance"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample() []finance.Transaction {
	return []finance.Transaction{
		{ID: "t1", UserID: "u1", Description: "Lunch", Amount: decimal.RequireFromString("25.5"), Kind: finance.Expense, Category: finance.Food, Date: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)},
		{ID: "t2", UserID: "u1", Description: "Pay", Amount: decimal.NewFromInt(1000), Kind: finance.Income, Category: finance.Salary, Date: time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC), IsFixed: true},
	}
}

func TestOpen(t *testing.T) {
	s, err := Open("jsonfile:/tmp/out.json", nil)
	require.NoError(t, err)
	assert.IsType(t, &JSONFile{}, s)

	s, err = Open("es8:http://a:9200,http://b:9200", nil)
	require.NoError(t, err)
	require.IsType(t, &Elasticsearch{}, s)
	assert.Equal(t, []string{"http://a:9200", "http://b:9200"}, s.(*Elasticsearch).addresses)

	_, err = Open("ftp:somewhere", nil)
	assert.Error(t, err)
	_, err = Open("jsonfile:", nil)
	assert.Error(t, err)
}

func TestJSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")

	require.NoError(t, NewJSONFile(path).Write(context.Background(), sample()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var got []map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	require.Len(t, got, 2)
	assert.Equal(t, "Lunch", got[0]["description"])
	assert.Equal(t, "expense", got[0]["type"])
	assert.Equal(t, true, got[1]["isFixed"])
}

func TestJSONFileEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	require.NoError(t, NewJSONFile(path).Write(context.Background(), nil))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}

func TestElasticsearchBulkIndex(t *testing.T) {
	var (
		mu  sync.Mutex
		ids []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		if !strings.HasSuffix(r.URL.Path, "/_bulk") {
			_, _ = w.Write([]byte(`{"acknowledged": true}`))
			return
		}

		var items []string
		sc := bufio.NewScanner(r.Body)
		for sc.Scan() {
			var meta map[string]struct {
				ID string `json:"_id"`
			}
			if json.Unmarshal(sc.Bytes(), &meta) != nil {
				continue
			}
			if m, ok := meta["index"]; ok {
				mu.Lock()
				ids = append(ids, m.ID)
				mu.Unlock()
				items = append(items, `{"index": {"_id": "`+m.ID+`", "status": 201}}`)
			}
		}
		_, _ = w.Write([]byte(`{"took": 1, "errors": false, "items": [` + strings.Join(items, ",") + `]}`))
	}))
	defer srv.Close()

	err := NewElasticsearch(nil, srv.URL).Write(context.Background(), sample())

	require.NoError(t, err)
	mu.Lock()
	defer mu.Unlock()
	assert.ElementsMatch(t, []string{"t1", "t2"}, ids)
}
