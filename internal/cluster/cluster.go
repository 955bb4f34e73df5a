// Package cluster implements single-pass greedy centroid clustering
// over embedding vectors. The result is deterministic for a given
// input order and threshold.
package cluster

import "math"

// DefaultThreshold is the cosine similarity at or above which a vector
// joins an existing cluster.
const DefaultThreshold = 0.80

// Cluster is a set of input indices with the running mean of their
// vectors. It exists only within one Assign invocation.
type Cluster struct {
	// Indices are positions in the original input, in join order.
	Indices []int

	// Centroid is the incremental mean of member vectors.
	Centroid []float64
}

// CosineSimilarity returns the cosine of the angle between a and b.
// A zero-norm operand yields 0; there is no division by zero.
func CosineSimilarity(a, b []float64) float64 {
	var dot, normA, normB float64
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		dot += a[i] * b[i]
	}
	for _, v := range a {
		normA += v * v
	}
	for _, v := range b {
		normB += v * v
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Assign clusters vectors greedily in input order. Each vector joins
// the existing cluster with the strictly highest centroid similarity
// when that similarity meets the threshold, otherwise it starts a new
// cluster. Ties keep the earliest-created cluster. Clusters come back
// in creation order and their index sets partition the input exactly.
func Assign(vectors [][]float64, threshold float64) []Cluster {
	var clusters []Cluster

	for i, vec := range vectors {
		best := -1
		bestSim := math.Inf(-1)
		for c := range clusters {
			sim := CosineSimilarity(vec, clusters[c].Centroid)
			if sim > bestSim {
				bestSim = sim
				best = c
			}
		}

		if best >= 0 && bestSim >= threshold {
			cl := &clusters[best]
			cl.Indices = append(cl.Indices, i)
			n := float64(len(cl.Indices))
			for d := range cl.Centroid {
				v := 0.0
				if d < len(vec) {
					v = vec[d]
				}
				cl.Centroid[d] = cl.Centroid[d]*(n-1)/n + v/n
			}
			continue
		}

		centroid := make([]float64, len(vec))
		copy(centroid, vec)
		clusters = append(clusters, Cluster{
			Indices:  []int{i},
			Centroid: centroid,
		})
	}

	return clusters
}
