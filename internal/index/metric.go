package index

import "math"

// Distance returns the Euclidean distance between a and b.
// Both slices must have the same length; callers validate dimensions
// before reaching this point.
func Distance(a, b []float32) float32 {
	return float32(math.Sqrt(float64(SquaredDistance(a, b))))
}

// SquaredDistance returns the squared Euclidean distance between a and b.
// Cheaper than Distance when only relative ordering matters.
func SquaredDistance(a, b []float32) float32 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return float32(sum)
}

// mean computes the component-wise mean of points. All points share the
// same dimension. Returns nil for an empty input.
func mean(points [][]float32) []float32 {
	if len(points) == 0 {
		return nil
	}
	dims := len(points[0])
	acc := make([]float64, dims)
	for _, p := range points {
		for i, v := range p {
			acc[i] += float64(v)
		}
	}
	out := make([]float32, dims)
	n := float64(len(points))
	for i, v := range acc {
		out[i] = float32(v / n)
	}
	return out
}

// midpoint returns the component-wise midpoint of a and b.
func midpoint(a, b []float32) []float32 {
	out := make([]float32, len(a))
	for i := range a {
		out[i] = (a[i] + b[i]) / 2
	}
	return out
}
