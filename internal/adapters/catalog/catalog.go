// Package catalog loads brand size guides from YAML documents.
package catalog

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/baditaflorin/go_fit_predictor/internal/adapters/normalizer"
	"github.com/baditaflorin/go_fit_predictor/internal/core/domain"
	"github.com/baditaflorin/go_fit_predictor/internal/ports"
	"gopkg.in/yaml.v3"
)

//go:embed default_catalog.yaml
var defaultCatalog []byte

// ErrGuideNotFound is returned when no guide matches a brand and category.
var ErrGuideNotFound = errors.New("size guide not found")

// document is the on-disk catalog layout.
type document struct {
	Guides []domain.SizeGuide `yaml:"guides"`
}

// Catalog is an immutable, validated set of size guides.
type Catalog struct {
	guides []domain.SizeGuide
	index  map[string]int
}

// Default returns the catalog embedded in the binary.
func Default() (*Catalog, error) {
	return DefaultWith(normalizer.NewAliasNormalizer())
}

// DefaultWith returns the embedded catalog with size labels normalized by norm.
func DefaultWith(norm ports.Normalizer) (*Catalog, error) {
	return Load(bytes.NewReader(defaultCatalog), norm)
}

// LoadFile reads a catalog from a YAML file.
func LoadFile(path string, norm ports.Normalizer) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	defer f.Close()

	return Load(f, norm)
}

// Load decodes and validates a YAML catalog. Size labels are normalized
// with norm; duplicate labels within one guide are rejected.
func Load(r io.Reader, norm ports.Normalizer) (*Catalog, error) {
	var doc document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}

	c := &Catalog{
		guides: make([]domain.SizeGuide, 0, len(doc.Guides)),
		index:  make(map[string]int, len(doc.Guides)),
	}

	for i, guide := range doc.Guides {
		guide.Brand = strings.TrimSpace(guide.Brand)
		guide.Category = strings.TrimSpace(guide.Category)
		if guide.Brand == "" {
			return nil, fmt.Errorf("guide %d: brand is required", i)
		}

		key := indexKey(guide.Brand, guide.Category)
		if _, exists := c.index[key]; exists {
			return nil, fmt.Errorf("guide %d: duplicate guide %s/%s", i, guide.Brand, guide.Category)
		}

		seen := make(map[string]struct{}, len(guide.Measurements))
		entries := make([]domain.SizeEntry, 0, len(guide.Measurements))
		for j, entry := range guide.Measurements {
			entry.Size = norm.Normalize(entry.Size)
			if entry.Size == "" {
				return nil, fmt.Errorf("guide %s/%s: size %d has no label", guide.Brand, guide.Category, j)
			}
			if _, dup := seen[entry.Size]; dup {
				return nil, fmt.Errorf("guide %s/%s: duplicate size %q", guide.Brand, guide.Category, entry.Size)
			}
			seen[entry.Size] = struct{}{}
			entries = append(entries, entry)
		}
		guide.Measurements = entries

		c.index[key] = len(c.guides)
		c.guides = append(c.guides, guide)
	}

	return c, nil
}

// Lookup returns the guide for a brand and category, matched case-insensitively.
func (c *Catalog) Lookup(brand, category string) (domain.SizeGuide, error) {
	i, ok := c.index[indexKey(brand, category)]
	if !ok {
		return domain.SizeGuide{}, fmt.Errorf("%w: %s/%s", ErrGuideNotFound, brand, category)
	}
	return c.guides[i], nil
}

// Guides returns all guides in catalog order.
func (c *Catalog) Guides() []domain.SizeGuide {
	out := make([]domain.SizeGuide, len(c.guides))
	copy(out, c.guides)
	return out
}

// Brands returns the distinct brand names in catalog order.
func (c *Catalog) Brands() []string {
	seen := make(map[string]struct{})
	var brands []string
	for _, guide := range c.guides {
		key := strings.ToLower(guide.Brand)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		brands = append(brands, guide.Brand)
	}
	return brands
}

// Len returns the number of guides.
func (c *Catalog) Len() int {
	return len(c.guides)
}

func indexKey(brand, category string) string {
	return strings.ToLower(strings.TrimSpace(brand)) + "\x00" + strings.ToLower(strings.TrimSpace(category))
}
