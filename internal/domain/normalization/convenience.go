package normalization

import "sync"

var (
	defaultNormalizer     *MessageNormalizer //nolint:gochecknoglobals // read-only after construction
	defaultNormalizerOnce sync.Once          //nolint:gochecknoglobals // guards defaultNormalizer
)

// Normalize cleans raw message text with a shared default normalizer.
func Normalize(raw string) string {
	return GetDefaultNormalizer().Normalize(raw)
}

// GetDefaultNormalizer returns the shared default normalizer.
func GetDefaultNormalizer() *MessageNormalizer {
	defaultNormalizerOnce.Do(func() {
		defaultNormalizer = NewMessageNormalizer()
	})
	return defaultNormalizer
}
