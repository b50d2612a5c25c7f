package normalizer

import (
	"strings"
	"unicode"

	"github.com/baditaflorin/go_fit_predictor/internal/ports"
)

// DefaultNormalizer trims a size label, collapses inner whitespace and upper-cases it.
type DefaultNormalizer struct{}

// NewDefaultNormalizer creates a new default normalizer.
func NewDefaultNormalizer() ports.Normalizer {
	return &DefaultNormalizer{}
}

// Normalize converts the label to its canonical spelling.
func (n *DefaultNormalizer) Normalize(label string) string {
	return strings.Join(strings.FieldsFunc(strings.ToUpper(label), unicode.IsSpace), " ")
}
