package export

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/NgigiN/fintrack/internal/finance"
)

type JSONFile struct {
	path string
}

func NewJSONFile(path string) *JSONFile {
	return &JSONFile{path: path}
}

// Write replaces the file with the transactions as an indented JSON array.
func (j *JSONFile) Write(_ context.Context, txs []finance.Transaction) error {
	if txs == nil {
		txs = []finance.Transaction{}
	}
	data, err := json.MarshalIndent(txs, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(j.path), ".export-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), j.path)
}
