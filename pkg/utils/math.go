package utils

import "math"

// NormalizeL2 scales x in place to unit L2 norm, accumulating in float64 so long
// embedding vectors keep their precision. Zero and non-finite vectors are left as is.
func NormalizeL2(x []float32) {
	var sum float64
	for _, v := range x {
		sum += float64(v) * float64(v)
	}
	if sum == 0 || math.IsInf(sum, 0) || math.IsNaN(sum) {
		return
	}
	inv := 1 / math.Sqrt(sum)
	for i, v := range x {
		x[i] = float32(float64(v) * inv)
	}
}
