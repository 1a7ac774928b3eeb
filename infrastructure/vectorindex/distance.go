package vectorindex

// squaredL2 returns the squared Euclidean distance between two vectors of
// equal length. Skipping the square root preserves ordering and avoids the
// extra work on every comparison.
func squaredL2(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}
