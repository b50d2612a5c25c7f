package normalizer

import (
	"strings"

	"github.com/baditaflorin/go_fit_predictor/internal/ports"
)

// aliases maps spelled-out size names to the letter labels used by size guides.
var aliases = map[string]string{
	"EXTRA SMALL":       "XS",
	"X-SMALL":           "XS",
	"X SMALL":           "XS",
	"SMALL":             "S",
	"MEDIUM":            "M",
	"MED":               "M",
	"LARGE":             "L",
	"EXTRA LARGE":       "XL",
	"X-LARGE":           "XL",
	"X LARGE":           "XL",
	"EXTRA EXTRA LARGE": "XXL",
	"XX-LARGE":          "XXL",
	"2XL":               "XXL",
	"XXL":               "XXL",
}

// AliasNormalizer applies the default normalization and then maps known
// long forms such as "medium" or "extra large" to letter sizes. Unknown
// brand labels are returned in their default-normalized form.
type AliasNormalizer struct {
	base ports.Normalizer
}

// NewAliasNormalizer creates a new alias-aware normalizer.
func NewAliasNormalizer() ports.Normalizer {
	return &AliasNormalizer{base: NewDefaultNormalizer()}
}

// Normalize converts the label to its canonical letter size when known.
func (n *AliasNormalizer) Normalize(label string) string {
	normalized := n.base.Normalize(label)
	if alias, ok := aliases[normalized]; ok {
		return alias
	}
	if alias, ok := aliases[strings.ReplaceAll(normalized, "_", " ")]; ok {
		return alias
	}
	return normalized
}

// NormalizerFactory creates the normalizer for the requested strategy.
type NormalizerFactory struct{}

// NewNormalizerFactory creates a new normalizer factory.
func NewNormalizerFactory() *NormalizerFactory {
	return &NormalizerFactory{}
}

// NormalizerType selects a normalization strategy.
type NormalizerType int

const (
	// DefaultNormalizerType only trims and upper-cases labels
	DefaultNormalizerType NormalizerType = iota
	// AliasNormalizerType also maps long size names to letter sizes
	AliasNormalizerType
)

// CreateNormalizer creates a normalizer of the specified type.
func (f *NormalizerFactory) CreateNormalizer(normalizerType NormalizerType) ports.Normalizer {
	switch normalizerType {
	case AliasNormalizerType:
		return NewAliasNormalizer()
	default:
		return NewDefaultNormalizer()
	}
}
