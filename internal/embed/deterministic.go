package embed

import (
	"context"
	"crypto/sha256"
)

// DeterministicDim is the vector dimension of the offline provider.
const DeterministicDim = 32

// Deterministic is an offline Provider that derives a vector from the
// SHA-256 digest of each text: each of the first 32 digest bytes maps
// to a float in [-1, 1]. The same text always yields the same vector.
type Deterministic struct{}

// Embed implements Provider.
func (Deterministic) Embed(_ context.Context, texts []string) ([][]float64, error) {
	vectors := make([][]float64, len(texts))
	for i, text := range texts {
		sum := sha256.Sum256([]byte(text))
		vec := make([]float64, DeterministicDim)
		for d := 0; d < DeterministicDim; d++ {
			vec[d] = float64(sum[d])/127.5 - 1
		}
		vectors[i] = vec
	}
	return vectors, nil
}
