package food

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
)

//go:embed data/catalog.json
var defaultCatalogJSON []byte

// Document is the JSON layout of a catalog file.
type Document struct {
	Version string   `json:"version"`
	Foods   []Record `json:"foods"`
}

// ParseJSON builds a catalog from a JSON document.
func ParseJSON(data []byte) (*Catalog, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}
	return NewCatalog(doc.Version, doc.Foods)
}

// ReadJSON builds a catalog from a reader.
func ReadJSON(r io.Reader) (*Catalog, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	return ParseJSON(data)
}

// DefaultDocument returns the embedded catalog document.
func DefaultDocument() (Document, error) {
	var doc Document
	if err := json.Unmarshal(defaultCatalogJSON, &doc); err != nil {
		return Document{}, fmt.Errorf("failed to decode embedded catalog: %w", err)
	}
	return doc, nil
}

// DefaultCatalog returns the embedded catalog.
func DefaultCatalog() (*Catalog, error) {
	return ParseJSON(defaultCatalogJSON)
}
