package similarity

import "math"

// MeanPool averages rows into a single vector. Rows with a width different
// from the first row are ignored.
func MeanPool(rows [][]float32) []float32 {
	if len(rows) == 0 {
		return nil
	}

	width := len(rows[0])
	sum := make([]float64, width)
	count := 0
	for _, row := range rows {
		if len(row) != width {
			continue
		}
		for i, v := range row {
			sum[i] += float64(v)
		}
		count++
	}

	if count == 0 || width == 0 {
		return nil
	}

	out := make([]float32, width)
	for i, v := range sum {
		out[i] = float32(v / float64(count))
	}
	return out
}

// Cosine returns the cosine similarity of a and b, or 0 when either has zero
// norm or the lengths differ.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
