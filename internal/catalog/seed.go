package catalog

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"
)

//go:embed catalog.json
var catalogJSON []byte

//go:embed catalog.schema.json
var schemaJSON []byte

type document struct {
	Version    int        `json:"version"`
	Categories []Category `json:"categories"`
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
	defaultErr     error
)

// Default returns the built-in clinical catalog. It is parsed and validated
// once per process.
func Default() (*Catalog, error) {
	defaultOnce.Do(func() {
		defaultCatalog, defaultErr = Load(catalogJSON)
	})
	return defaultCatalog, defaultErr
}

// Load builds a Catalog from catalog JSON.
func Load(raw []byte) (*Catalog, error) {
	if err := validateDocument(raw); err != nil {
		return nil, err
	}
	var doc document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return New(doc.Categories)
}
