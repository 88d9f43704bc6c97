// Package source loads rate quotes from outside the process and keeps the converter
// configured with them.
package source

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"go-currency-converter/domain"
)

// Source supplies the direct quotes a converter is configured with
type Source interface {
	Quotes(ctx context.Context) ([]domain.Quote, error)
}

// fileSource reads quotes from a JSON document on disk
type fileSource struct {
	// path of the rates document
	path string
}

// NewFileSource constructs a Source reading path. The file is read on every call so edits
// are picked up by the next refresh. The document looks like
//
//	{"rates": [{"from": "CAD", "to": "GBP", "rate": 0.58}]}
func NewFileSource(path string) Source {
	return &fileSource{path: path}
}

// Quotes reads and decodes the rates document
func (s *fileSource) Quotes(ctx context.Context) ([]domain.Quote, error) {
	type document struct {
		Rates []domain.Quote `json:"rates"`
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	bytes, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("reading rates file: %w", err)
	}

	var doc document
	if err := json.Unmarshal(bytes, &doc); err != nil {
		return nil, fmt.Errorf("decoding rates file [%v]: %w", s.path, err)
	}
	return doc.Rates, nil
}
