package ports

// Normalizer defines the interface for size label normalization.
type Normalizer interface {
	Normalize(label string) string
}
