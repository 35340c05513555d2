package catalog

import (
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed sample_catalog.yaml
var sampleCatalogYAML []byte

// SampleCatalog is the static dataset used as a last-resort fallback
type SampleCatalog struct {
	Categories []string       `yaml:"categories"`
	Products   []CatalogEntry `yaml:"products"`
}

var (
	sampleOnce sync.Once
	sample     SampleCatalog
	sampleErr  error
)

// LoadSampleCatalog parses the embedded dataset once
func LoadSampleCatalog() (SampleCatalog, error) {
	sampleOnce.Do(func() {
		if err := yaml.Unmarshal(sampleCatalogYAML, &sample); err != nil {
			sampleErr = fmt.Errorf("parse sample catalog: %w", err)
		}
	})
	return sample, sampleErr
}

// ByID returns the sample product with id
func (s SampleCatalog) ByID(id int) (CatalogEntry, bool) {
	for _, p := range s.Products {
		if p.ID == id {
			return p, true
		}
	}
	return CatalogEntry{}, false
}

// ByCategory returns the sample products in category
func (s SampleCatalog) ByCategory(category string) []CatalogEntry {
	var out []CatalogEntry
	for _, p := range s.Products {
		if p.Category == category {
			out = append(out, p)
		}
	}
	return out
}
