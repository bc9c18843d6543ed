package knowledge

import "math"

// embeddingDim is the fixed length of pseudo-embedding vectors.
const embeddingDim = 128

// Embed computes a deterministic pseudo-embedding for local similarity
// ranking: character codes are folded into a fixed-length vector which is
// then L2-normalized. This is NOT a semantic embedding; it only gives stable,
// cheap cosine comparisons between locally stored texts.
func Embed(text string) []float64 {
	vec := make([]float64, embeddingDim)
	for i, r := range text {
		vec[i%embeddingDim] += float64(r)
	}
	var norm float64
	for _, v := range vec {
		norm += v * v
	}
	if norm == 0 {
		return vec
	}
	norm = math.Sqrt(norm)
	for i := range vec {
		vec[i] /= norm
	}
	return vec
}

// Cosine returns the cosine similarity of two equal-length vectors. Since
// Embed produces unit vectors this reduces to a dot product; the guard keeps
// the function correct for arbitrary inputs.
func Cosine(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
